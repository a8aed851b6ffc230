package page_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/pagek/mock"
	"gitlab.com/pagek/page"
	"gitlab.com/pagek/pagek"
)

const defaultImplicitWait = 7 * time.Second

type homePage struct {
	*page.Page
	root pagek.SearchRoot
}

func (h *homePage) ExpectedTitle() string { return "Home" }
func (h *homePage) ExpectedURL() string   { return "/home" }

func (h *homePage) RootElement() pagek.SearchRoot {
	return h.root
}

// bare has none of the optional hooks
type bare struct {
	*page.Page
}

func newSetup(t *testing.T) (*pagek.Setup, *mock.Session) {
	session := mock.MakeMockSession()
	require.NoError(t, session.SetImplicitWait(defaultImplicitWait))
	return &pagek.Setup{
		BaseURL:             "http://example.com",
		Session:             session,
		DefaultImplicitWait: defaultImplicitWait,
		Timeout:             300 * time.Millisecond,
		PollInterval:        10 * time.Millisecond,
	}, session
}

func newHome(setup *pagek.Setup, t page.TestingT, root pagek.SearchRoot) *homePage {
	h := &homePage{root: root}
	h.Page = page.New(setup, t, h)
	return h
}

func TestOpen(t *testing.T) {
	setup, session := newSetup(t)
	home := newHome(setup, &mock.T{}, nil)

	require.NoError(t, home.Open(context.Background(), "/foo"))
	require.Equal(t, []string{"http://example.com/foo"}, session.Visited)

	current, err := home.CurrentURL(context.Background())
	require.NoError(t, err)
	require.Equal(t, "http://example.com/foo", current)
}

func TestOpenError(t *testing.T) {
	setup, session := newSetup(t)
	session.NavigateFn = func(ctx context.Context, url string) error {
		return errors.New("net::ERR_CONNECTION_REFUSED")
	}
	home := newHome(setup, &mock.T{}, nil)

	err := home.Open(context.Background(), "/foo")
	require.Error(t, err)
	require.Contains(t, err.Error(), "http://example.com/foo")
}

func TestTitleWaitsForNonEmpty(t *testing.T) {
	setup, session := newSetup(t)
	session.SetTitleAfter(50*time.Millisecond, "Home")
	home := newHome(setup, &mock.T{}, nil)

	title, err := home.Title(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Home", title)
}

func TestTitleTimeout(t *testing.T) {
	setup, _ := newSetup(t)
	home := newHome(setup, &mock.T{}, nil)

	_, err := home.Title(context.Background())
	require.True(t, errors.Is(err, pagek.ErrTimedOut), "got %v", err)
}

func TestIsCurrentPage(t *testing.T) {
	setup, session := newSetup(t)
	session.SetTitle("Home")
	mt := &mock.T{}
	home := newHome(setup, mt, nil)

	require.True(t, home.IsCurrentPage(context.Background()))
	require.False(t, mt.HasFailed())
}

func TestIsCurrentPageMismatch(t *testing.T) {
	setup, session := newSetup(t)
	session.SetTitle("Login")
	mt := &mock.T{}
	home := newHome(setup, mt, nil)

	require.False(t, home.IsCurrentPage(context.Background()))
	require.True(t, mt.HasFailed())
	msgs := mt.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Expected page title: Home. Actual page title: Login")
}

func TestIsCurrentPageWithoutHook(t *testing.T) {
	setup, _ := newSetup(t)
	mt := &mock.T{}
	b := &bare{}
	b.Page = page.New(setup, mt, b)

	require.False(t, b.IsCurrentPage(context.Background()))
	require.True(t, mt.HasFailed())
	require.False(t, b.IsCurrentURL(context.Background()))
}

func TestIsCurrentURL(t *testing.T) {
	setup, _ := newSetup(t)
	mt := &mock.T{}
	home := newHome(setup, mt, nil)

	require.NoError(t, home.Open(context.Background(), "/home?tab=1"))
	require.True(t, home.IsCurrentURL(context.Background()))
	require.False(t, mt.HasFailed())

	require.NoError(t, home.Open(context.Background(), "/login"))
	require.False(t, home.IsCurrentURL(context.Background()))
	require.True(t, mt.HasFailed())
}

func TestNilRootFallsBackToSession(t *testing.T) {
	setup, session := newSetup(t)
	home := newHome(setup, &mock.T{}, nil)
	require.Equal(t, pagek.SearchRoot(session), home.Root())
}
