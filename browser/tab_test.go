package browser_test

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/pagek/browser"
	"gitlab.com/pagek/pagek"
)

func testServer() (string, *http.Server) {
	srv := &http.Server{Handler: http.FileServer(http.Dir("testdata/"))}
	testListener, _ := net.Listen("tcp", "127.0.0.1:0")
	_, testServerPort, _ := net.SplitHostPort(testListener.Addr().String())
	go func() {
		if err := srv.Serve(testListener); err != http.ErrServerClosed {
			log.Fatalf("Serve(): %s", err)
		}
	}()

	return testServerPort, srv
}

// withTab skips unless a chrome binary is available
func withTab(t *testing.T, fn func(ctx context.Context, tab *browser.Tab, base string)) {
	chrome := os.Getenv("PAGEK_CHROME")
	if chrome == "" {
		chrome, _ = browser.FindChrome()
	}
	if chrome == "" {
		t.Skip("chrome not found")
	}
	if _, err := os.Stat(chrome); err != nil {
		t.Skipf("chrome not found at %s", chrome)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	leaser := browser.NewLocalLeaser(chrome)
	pool := browser.NewPool(1, leaser)
	require.NoError(t, pool.Init(ctx))
	defer leaser.Cleanup()
	defer pool.Close(ctx)

	tab, err := pool.Take(ctx)
	require.NoError(t, err)
	defer pool.Return(ctx, tab)

	port, srv := testServer()
	defer srv.Shutdown(ctx)

	fn(ctx, tab, fmt.Sprintf("http://127.0.0.1:%s/", port))
}

func TestTabNavigate(t *testing.T) {
	withTab(t, func(ctx context.Context, tab *browser.Tab, base string) {
		require.NoError(t, tab.Navigate(ctx, base+"login.html"))

		title, err := tab.Title(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Login", title)

		url, err := tab.CurrentURL(ctx)
		require.NoError(t, err)
		assert.Equal(t, base+"login.html", url)
	})
}

func TestTabFindElements(t *testing.T) {
	withTab(t, func(ctx context.Context, tab *browser.Tab, base string) {
		require.NoError(t, tab.Navigate(ctx, base+"login.html"))

		for _, loc := range []pagek.Locator{
			pagek.ByID("username"),
			pagek.ByName("password"),
			pagek.ByCSS("form > button"),
			pagek.ByClassName("wide"),
			pagek.ByTagName("form"),
			pagek.ByXPath("//button[@type='submit']"),
		} {
			_, err := tab.FindElement(ctx, loc)
			assert.NoError(t, err, loc.String())
		}

		inputs, err := tab.FindElements(ctx, pagek.ByTagName("input"))
		require.NoError(t, err)
		assert.Len(t, inputs, 3)

		_, err = tab.FindElement(ctx, pagek.ByID("nope"))
		assert.True(t, pagek.IsNotFound(err))

		none, err := tab.FindElements(ctx, pagek.ByID("nope"))
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestTabElementScope(t *testing.T) {
	withTab(t, func(ctx context.Context, tab *browser.Tab, base string) {
		require.NoError(t, tab.Navigate(ctx, base+"login.html"))

		footer, err := tab.FindElement(ctx, pagek.ByID("footer"))
		require.NoError(t, err)

		_, err = footer.FindElement(ctx, pagek.ByClassName("note"))
		assert.NoError(t, err)

		_, err = footer.FindElement(ctx, pagek.ByID("username"))
		assert.True(t, pagek.IsNotFound(err))

		_, err = footer.FindElement(ctx, pagek.ByXPath("//span"))
		assert.True(t, errors.Is(err, pagek.ErrUnsupportedLocator))
	})
}

func TestTabIsDisplayed(t *testing.T) {
	withTab(t, func(ctx context.Context, tab *browser.Tab, base string) {
		require.NoError(t, tab.Navigate(ctx, base+"login.html"))

		var expected = map[string]bool{
			"username": true,
			"submit":   true,
			"token":    false,
			"hidden":   false,
			"nested":   false,
		}
		for id, visible := range expected {
			el, err := tab.FindElement(ctx, pagek.ByID(id))
			require.NoError(t, err, id)
			displayed, err := el.IsDisplayed(ctx)
			require.NoError(t, err, id)
			assert.Equal(t, visible, displayed, id)
		}
	})
}

func TestTabImplicitWait(t *testing.T) {
	withTab(t, func(ctx context.Context, tab *browser.Tab, base string) {
		require.NoError(t, tab.Navigate(ctx, base+"login.html"))

		// without implicit wait the late element may not be there yet
		require.NoError(t, tab.SetImplicitWait(5*time.Second))
		assert.Equal(t, 5*time.Second, tab.ImplicitWait())

		_, err := tab.FindElement(ctx, pagek.ByID("late"))
		assert.NoError(t, err)

		require.NoError(t, tab.SetImplicitWait(0))
		start := time.Now()
		_, err = tab.FindElement(ctx, pagek.ByID("never"))
		assert.True(t, pagek.IsNotFound(err))
		assert.True(t, time.Since(start) < time.Second)

		assert.Error(t, tab.SetImplicitWait(-time.Second))
	})
}
