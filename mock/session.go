package mock

import (
	"context"
	"sync"
	"time"

	"gitlab.com/pagek/pagek"
)

// Session is a fake pagek.Session. Every method delegates to its Fn field and
// flags the matching Called field, MakeMockSession wires them to an in-memory page.
type Session struct {
	mu sync.Mutex

	NavigateFn     func(ctx context.Context, url string) error
	NavigateCalled bool

	TitleFn     func(ctx context.Context) (string, error)
	TitleCalled bool

	CurrentURLFn     func(ctx context.Context) (string, error)
	CurrentURLCalled bool

	FindElementFn     func(ctx context.Context, loc pagek.Locator) (pagek.Element, error)
	FindElementCalled bool

	FindElementsFn     func(ctx context.Context, loc pagek.Locator) ([]pagek.Element, error)
	FindElementsCalled bool

	SetImplicitWaitFn     func(d time.Duration) error
	SetImplicitWaitCalled bool

	ImplicitWaitFn     func() time.Duration
	ImplicitWaitCalled bool

	// in-memory state used by the default functions
	Doc          *Document
	URL          string
	PageTitle    string
	Visited      []string
	WaitHistory  []time.Duration // every SetImplicitWait value, in order
	LookupWaits  []time.Duration // implicit wait in effect at each lookup
	implicitWait time.Duration
}

// Navigate implements pagek.Session
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.called(&s.NavigateCalled)
	return s.NavigateFn(ctx, url)
}

// Title implements pagek.Session
func (s *Session) Title(ctx context.Context) (string, error) {
	s.called(&s.TitleCalled)
	return s.TitleFn(ctx)
}

// CurrentURL implements pagek.Session
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	s.called(&s.CurrentURLCalled)
	return s.CurrentURLFn(ctx)
}

// FindElement implements pagek.SearchRoot
func (s *Session) FindElement(ctx context.Context, loc pagek.Locator) (pagek.Element, error) {
	s.called(&s.FindElementCalled)
	return s.FindElementFn(ctx, loc)
}

// FindElements implements pagek.SearchRoot
func (s *Session) FindElements(ctx context.Context, loc pagek.Locator) ([]pagek.Element, error) {
	s.called(&s.FindElementsCalled)
	return s.FindElementsFn(ctx, loc)
}

// SetImplicitWait implements pagek.Session
func (s *Session) SetImplicitWait(d time.Duration) error {
	s.called(&s.SetImplicitWaitCalled)
	return s.SetImplicitWaitFn(d)
}

// ImplicitWait implements pagek.Session
func (s *Session) ImplicitWait() time.Duration {
	s.called(&s.ImplicitWaitCalled)
	return s.ImplicitWaitFn()
}

// SetTitle changes the title the default TitleFn reports
func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	s.PageTitle = title
	s.mu.Unlock()
}

// SetTitleAfter changes the title once delay has passed
func (s *Session) SetTitleAfter(delay time.Duration, title string) {
	time.AfterFunc(delay, func() {
		s.SetTitle(title)
	})
}

// Waits returns copies of the implicit wait history and the waits seen by lookups
func (s *Session) Waits() (set []time.Duration, lookups []time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set = append(set, s.WaitHistory...)
	lookups = append(lookups, s.LookupWaits...)
	return set, lookups
}

func (s *Session) called(flag *bool) {
	s.mu.Lock()
	*flag = true
	s.mu.Unlock()
}

func (s *Session) recordLookup() {
	s.mu.Lock()
	s.LookupWaits = append(s.LookupWaits, s.implicitWait)
	s.mu.Unlock()
}

// MakeMockSession returns a session backed by an empty in-memory document at about:blank
func MakeMockSession() *Session {
	s := &Session{Doc: NewDocument(), URL: "about:blank"}

	s.NavigateFn = func(ctx context.Context, url string) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.URL = url
		s.Visited = append(s.Visited, url)
		return nil
	}

	s.TitleFn = func(ctx context.Context) (string, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.PageTitle, nil
	}

	s.CurrentURLFn = func(ctx context.Context) (string, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.URL, nil
	}

	s.FindElementFn = func(ctx context.Context, loc pagek.Locator) (pagek.Element, error) {
		s.recordLookup()
		return s.Doc.findElement(loc)
	}

	s.FindElementsFn = func(ctx context.Context, loc pagek.Locator) ([]pagek.Element, error) {
		s.recordLookup()
		return s.Doc.findElements(loc), nil
	}

	s.SetImplicitWaitFn = func(d time.Duration) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.implicitWait = d
		s.WaitHistory = append(s.WaitHistory, d)
		return nil
	}

	s.ImplicitWaitFn = func() time.Duration {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.implicitWait
	}

	return s
}
