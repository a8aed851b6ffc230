// Package page provides the base type for page objects. Concrete pages embed
// *Page and pass themselves to New so optional hooks can be discovered:
//
//	type LoginPage struct {
//		*page.Page
//	}
//
//	func NewLoginPage(setup *pagek.Setup, t page.TestingT) *LoginPage {
//		p := &LoginPage{}
//		p.Page = page.New(setup, t, p)
//		return p
//	}
//
//	func (p *LoginPage) ExpectedTitle() string { return "Login" }
//	func (p *LoginPage) ExpectedURL() string   { return "/login" }
package page

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"gitlab.com/pagek/pagek"
)

// TestingT is the assertion sink, *testing.T and require.TestingT both satisfy it.
// FailNow must stop the current test, page methods still return right after calling it.
type TestingT interface {
	Errorf(format string, args ...interface{})
	FailNow()
}

type tHelper interface {
	Helper()
}

// Titled pages declare the title IsCurrentPage expects
type Titled interface {
	ExpectedTitle() string
}

// Located pages declare the url fragment IsCurrentURL expects
type Located interface {
	ExpectedURL() string
}

// Rooted pages scope all element lookups under their own root element
type Rooted interface {
	RootElement() pagek.SearchRoot
}

// Page is the base of every page object
type Page struct {
	setup   *pagek.Setup
	session pagek.Session
	root    pagek.SearchRoot
	t       TestingT
	decl    interface{}
}

// New page for setup. decl is the concrete page, queried once for the Titled,
// Located and Rooted hooks, it may be nil.
func New(setup *pagek.Setup, t TestingT, decl interface{}) *Page {
	p := &Page{
		setup:   setup,
		session: setup.Session,
		root:    setup.Session,
		t:       t,
		decl:    decl,
	}

	if rooted, ok := decl.(Rooted); ok {
		if root := rooted.RootElement(); root != nil {
			p.root = root
		}
	}
	return p
}

// Setup this page was built from
func (p *Page) Setup() *pagek.Setup {
	return p.setup
}

// Session driving this page
func (p *Page) Session() pagek.Session {
	return p.session
}

// Root all element lookups are scoped to
func (p *Page) Root() pagek.SearchRoot {
	return p.root
}

// Title blocks until the session reports a non-empty title and returns it
func (p *Page) Title(ctx context.Context) (string, error) {
	var title string
	err := p.wait().Until(ctx, func(ctx context.Context) (bool, error) {
		var err error
		title, err = p.session.Title(ctx)
		if err != nil {
			return false, err
		}
		return title != "", nil
	})
	if err != nil {
		return "", errors.Wrap(err, "waiting for page title")
	}
	return title, nil
}

// IsCurrentPage asserts the session title equals the declared title. A mismatch
// fails the test and returns false.
func (p *Page) IsCurrentPage(ctx context.Context) bool {
	p.helper()
	titled, ok := p.decl.(Titled)
	if !ok {
		return p.fail("page declares no expected title (missing ExpectedTitle)")
	}

	expected := titled.ExpectedTitle()
	if expected != "" {
		if _, err := p.Title(ctx); err != nil {
			log.Ctx(ctx).Debug().Err(err).Msg("title never became available")
		}
	}

	actual, err := p.session.Title(ctx)
	if err != nil {
		return p.fail(fmt.Sprintf("unable to read page title: %s", err))
	}

	if !assert.Equal(p.t, expected, actual,
		fmt.Sprintf("Expected page title: %s. Actual page title: %s", expected, actual)) {
		p.t.FailNow()
		return false
	}
	return true
}

// IsCurrentURL asserts the current url contains the declared fragment. A mismatch
// fails the test and returns false.
func (p *Page) IsCurrentURL(ctx context.Context) bool {
	p.helper()
	located, ok := p.decl.(Located)
	if !ok {
		return p.fail("page declares no expected url (missing ExpectedURL)")
	}

	current, err := p.session.CurrentURL(ctx)
	if err != nil {
		return p.fail(fmt.Sprintf("unable to read current url: %s", err))
	}

	if !assert.Contains(p.t, current, located.ExpectedURL()) {
		p.t.FailNow()
		return false
	}
	return true
}

// Open navigates to the base url joined with fragment
func (p *Page) Open(ctx context.Context, fragment string) error {
	url := p.setup.BaseURL + fragment
	log.Ctx(ctx).Debug().Str("url", url).Msg("opening page")
	if err := p.session.Navigate(ctx, url); err != nil {
		return errors.Wrapf(err, "failed to open %s", url)
	}
	return nil
}

// CurrentURL of the session, no waiting
func (p *Page) CurrentURL(ctx context.Context) (string, error) {
	return p.session.CurrentURL(ctx)
}

func (p *Page) wait() *pagek.Wait {
	return p.setup.NewWait()
}

func (p *Page) helper() {
	if h, ok := p.t.(tHelper); ok {
		h.Helper()
	}
}

// fail reports msg and stops the test, the false is for callers whose FailNow returns
func (p *Page) fail(msg string) bool {
	p.helper()
	assert.Fail(p.t, msg)
	p.t.FailNow()
	return false
}
