package pagek

import (
	"context"
	"time"
)

// SearchRoot is anything elements can be looked up under, the session itself
// or an element scoping a page.
type SearchRoot interface {
	// FindElement returns the first match or an error matching ErrNoSuchElement
	FindElement(ctx context.Context, loc Locator) (Element, error)
	// FindElements returns all matches, an empty slice is not an error
	FindElements(ctx context.Context, loc Locator) ([]Element, error)
}

// Element found in a page
type Element interface {
	SearchRoot
	IsDisplayed(ctx context.Context) (bool, error)
}

// Session is the live handle to a browser under automation
type Session interface {
	SearchRoot
	// Navigate to a web page
	Navigate(ctx context.Context, url string) error
	Title(ctx context.Context) (string, error)
	CurrentURL(ctx context.Context) (string, error)
	// SetImplicitWait sets how long every lookup polls before reporting not found
	SetImplicitWait(d time.Duration) error
	ImplicitWait() time.Duration
}

// Setup is the test session context page objects are built from. Owned by the caller.
type Setup struct {
	BaseURL             string
	Session             Session
	DefaultImplicitWait time.Duration
	Timeout             time.Duration // per wait ceiling, DefaultWaitTimeout if zero
	PollInterval        time.Duration // DefaultPollInterval if zero
}

// WaitTimeout for explicit waits
func (s *Setup) WaitTimeout() time.Duration {
	if s.Timeout <= 0 {
		return DefaultWaitTimeout
	}
	return s.Timeout
}

// NewWait for explicit waits in this session
func (s *Setup) NewWait() *Wait {
	w := NewWait(s.WaitTimeout())
	if s.PollInterval > 0 {
		w.PollInterval = s.PollInterval
	}
	return w
}
