package browser

import (
	"io/ioutil"
	"net"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// LeaserService starts and stops chrome processes on behalf of the Pool
type LeaserService interface {
	Acquire() (string, error) // returns port number
	Return(port string) error
	Cleanup() (string, error)
	Count() (string, error)
}

// ErrBrowserNotFound returned when a port was never leased
var ErrBrowserNotFound = errors.New("browser not found")

func randPort() string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		log.Warn().Err(err).Msg("unable to get port using default 9222")
		return "9222"
	}
	_, port, _ := net.SplitHostPort(l.Addr().String())
	l.Close()
	return port
}

func randProfile(tmp string) (string, error) {
	if err := os.MkdirAll(tmp, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create profile root")
	}
	profile, err := ioutil.TempDir(tmp, "gcd")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temporary profile directory")
	}
	// an empty profile would have us deleting from the working directory on exit
	if profile == "" {
		return "", errors.New("profile directory was empty")
	}
	return profile, nil
}

// RemoveTmpContents that the browser created
func RemoveTmpContents(tmp string) error {
	if tmp == "" {
		return nil
	}
	files, err := filepath.Glob(filepath.Join(tmp, "gcd*"))
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := os.RemoveAll(file); err != nil {
			return err
		}
	}
	return nil
}
