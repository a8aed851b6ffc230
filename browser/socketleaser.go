package browser

import (
	"context"
	"io/ioutil"
	"net"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// DefaultSocket the leaser service listens on
const DefaultSocket = "pagek.sock"

// SocketLeaser asks a leaser service on a unix socket for browsers, for
// running checks from inside a container while chrome runs outside of it.
type SocketLeaser struct {
	leaserClient http.Client
}

// NewSocketLeaser for browsers, if socketPath is empty DefaultSocket is used
func NewSocketLeaser(socketPath string) *SocketLeaser {
	if socketPath == "" {
		socketPath = DefaultSocket
	}
	s := &SocketLeaser{}
	s.leaserClient = http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", socketPath)
			},
		},
	}
	return s
}

func (s *SocketLeaser) get(path string) (string, error) {
	resp, err := s.leaserClient.Get("http://unix" + path)
	if err != nil {
		return "", err
	}

	body, err := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return "", err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return string(body), nil
	case http.StatusNotFound:
		return "", ErrBrowserNotFound
	}
	return "", errors.Errorf("leaser returned %d: %s", resp.StatusCode, string(body))
}

// Acquire a new browser
func (s *SocketLeaser) Acquire() (string, error) {
	return s.get("/acquire")
}

// Count how many browsers
func (s *SocketLeaser) Count() (string, error) {
	return s.get("/count")
}

// Return (and kill) the browser
func (s *SocketLeaser) Return(port string) error {
	_, err := s.get("/return?port=" + url.QueryEscape(port))
	return err
}

// Cleanup all old browser processes the service started
func (s *SocketLeaser) Cleanup() (string, error) {
	return s.get("/cleanup")
}
