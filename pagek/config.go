package pagek

import (
	"io"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// LeaserType selects how browsers are started
type LeaserType string

// revive:exported
const (
	LocalLeaser  LeaserType = "local"
	SocketLeaser LeaserType = "socket"
)

// PageConfig declares one page to check, see the check package
type PageConfig struct {
	Name    string   `toml:"name"`
	Path    string   `toml:"path"`
	Title   string   `toml:"title"`
	URL     string   `toml:"url"`
	Root    string   `toml:"root"`
	Present []string `toml:"present"`
	Visible []string `toml:"visible"`
	Hidden  []string `toml:"hidden"`
	Absent  []string `toml:"absent"`
}

// Config for pagek, durations are time.ParseDuration strings
type Config struct {
	BaseURL      string        `toml:"base_url"`
	ImplicitWait string        `toml:"implicit_wait"`
	Timeout      string        `toml:"timeout"`
	DataPath     string        `toml:"datadir"`
	ChromePath   string        `toml:"chrome"`
	NumBrowsers  int           `toml:"numbrowsers"`
	Leaser       LeaserType    `toml:"leaser"`
	Pages        []*PageConfig `toml:"pages"`
}

// DefaultConfig used when no file is given
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      "http://localhost/",
		ImplicitWait: "0s",
		Timeout:      DefaultWaitTimeout.String(),
		DataPath:     "pagektmp",
		NumBrowsers:  1,
		Leaser:       LocalLeaser,
	}
}

// LoadConfig decodes a toml document on top of DefaultConfig
func LoadConfig(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	if err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate durations, browser count and leaser type
func (c *Config) Validate() error {
	if _, err := c.ImplicitWaitDuration(); err != nil {
		return err
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if c.NumBrowsers < 1 {
		return errors.Errorf("numbrowsers must be at least 1, got %d", c.NumBrowsers)
	}
	switch c.Leaser {
	case LocalLeaser, SocketLeaser:
	default:
		return errors.Errorf("unknown leaser %q", c.Leaser)
	}
	for i, p := range c.Pages {
		if p.Name == "" {
			return errors.Errorf("page %d has no name", i)
		}
	}
	return nil
}

// ImplicitWaitDuration parsed, empty means zero
func (c *Config) ImplicitWaitDuration() (time.Duration, error) {
	return parseDuration("implicit_wait", c.ImplicitWait, 0)
}

// TimeoutDuration parsed, empty means DefaultWaitTimeout
func (c *Config) TimeoutDuration() (time.Duration, error) {
	return parseDuration("timeout", c.Timeout, DefaultWaitTimeout)
}

func parseDuration(field, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", field)
	}
	if d < 0 {
		return 0, errors.Errorf("%s must not be negative", field)
	}
	return d, nil
}

// NewSetup builds the test session context for a session from this config
func (c *Config) NewSetup(session Session) (*Setup, error) {
	implicit, err := c.ImplicitWaitDuration()
	if err != nil {
		return nil, err
	}
	timeout, err := c.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	if err := session.SetImplicitWait(implicit); err != nil {
		return nil, errors.Wrap(err, "failed to set implicit wait")
	}
	return &Setup{
		BaseURL:             c.BaseURL,
		Session:             session,
		DefaultImplicitWait: implicit,
		Timeout:             timeout,
	}, nil
}
