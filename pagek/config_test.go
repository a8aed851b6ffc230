package pagek_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gitlab.com/pagek/mock"
	"gitlab.com/pagek/pagek"
)

const testConfig = `
base_url = "http://localhost:8080"
implicit_wait = "2s"
timeout = "5s"
numbrowsers = 2

[[pages]]
name = "login"
path = "/login"
title = "Login"
url = "/login"
present = ["id:username", "id:password"]
absent = ["css:.error"]

[[pages]]
name = "home"
path = "/"
root = "#main"
`

func TestLoadConfig(t *testing.T) {
	cfg, err := pagek.LoadConfig(strings.NewReader(testConfig))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", cfg.BaseURL)
	require.Equal(t, 2, cfg.NumBrowsers)
	require.Equal(t, pagek.LocalLeaser, cfg.Leaser)
	require.Len(t, cfg.Pages, 2)
	require.Equal(t, []string{"id:username", "id:password"}, cfg.Pages[0].Present)
	require.Equal(t, "#main", cfg.Pages[1].Root)

	wait, err := cfg.ImplicitWaitDuration()
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, wait)
}

func TestLoadConfigInvalid(t *testing.T) {
	var inputs = []string{
		`implicit_wait = "soon"`,
		`timeout = "-1s"`,
		`numbrowsers = 0`,
		`leaser = "remote"`,
		"[[pages]]\npath = \"/\"",
	}
	for _, in := range inputs {
		if _, err := pagek.LoadConfig(strings.NewReader(in)); err == nil {
			t.Fatalf("expected error for %q\n", in)
		}
	}
}

func TestNewSetup(t *testing.T) {
	cfg := pagek.DefaultConfig()
	cfg.ImplicitWait = "3s"
	cfg.Timeout = ""

	session := mock.MakeMockSession()
	setup, err := cfg.NewSetup(session)
	require.NoError(t, err)
	require.Equal(t, 3*time.Second, setup.DefaultImplicitWait)
	require.Equal(t, 3*time.Second, session.ImplicitWait())
	require.Equal(t, pagek.DefaultWaitTimeout, setup.WaitTimeout())
}
