package browser

import (
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
)

// LocalLeaser runs chrome as a child of this process
type LocalLeaser struct {
	browserLock sync.RWMutex
	browsers    map[string]*gcd.Gcd
	chrome      string
	tmp         string
}

// NewLocalLeaser that starts chrome from chromePath, if empty FindChrome is used
func NewLocalLeaser(chromePath string) *LocalLeaser {
	chrome, tmp := FindChrome()
	if chromePath != "" {
		chrome = chromePath
	}
	return &LocalLeaser{
		browsers: make(map[string]*gcd.Gcd),
		chrome:   chrome,
		tmp:      tmp,
	}
}

// Acquire starts a new chrome process and returns its debugger port
func (s *LocalLeaser) Acquire() (string, error) {
	if s.chrome == "" {
		return "", errors.New("no chrome binary for this platform, set a chrome path")
	}

	profileDir, err := randProfile(s.tmp)
	if err != nil {
		return "", err
	}

	b := gcd.NewChromeDebugger()
	b.DeleteProfileOnExit()
	b.AddFlags(startupFlags)

	port := randPort()
	if err := b.StartProcess(s.chrome, profileDir, port); err != nil {
		return "", errors.Wrapf(err, "failed to start %s", s.chrome)
	}

	s.browserLock.Lock()
	s.browsers[port] = b
	s.browserLock.Unlock()
	log.Debug().Str("port", port).Msg("started chrome")
	return port, nil
}

// Count of running browsers
func (s *LocalLeaser) Count() (string, error) {
	s.browserLock.RLock()
	count := len(s.browsers)
	s.browserLock.RUnlock()
	return strconv.Itoa(count), nil
}

// Return stops the browser listening on port
func (s *LocalLeaser) Return(port string) error {
	s.browserLock.Lock()
	defer s.browserLock.Unlock()

	b, ok := s.browsers[port]
	if !ok {
		return ErrBrowserNotFound
	}
	delete(s.browsers, port)
	return b.ExitProcess()
}

// Cleanup stops every browser this leaser started and removes left over profiles
func (s *LocalLeaser) Cleanup() (string, error) {
	s.browserLock.Lock()
	for port, b := range s.browsers {
		if err := b.ExitProcess(); err != nil {
			log.Warn().Err(err).Str("port", port).Msg("failed to exit browser")
		}
		delete(s.browsers, port)
	}
	s.browserLock.Unlock()

	if err := RemoveTmpContents(s.tmp); err != nil {
		return "", err
	}
	return "ok", nil
}
