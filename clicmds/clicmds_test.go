package clicmds_test

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"gitlab.com/pagek/check"
	"gitlab.com/pagek/clicmds"
	"gitlab.com/pagek/store"
)

func testApp(out *bytes.Buffer) *cli.App {
	app := cli.NewApp()
	app.Writer = out
	app.Commands = []*cli.Command{
		{
			Name:    "check",
			Aliases: []string{"c"},
			Action:  clicmds.Check,
			Flags:   clicmds.CheckFlags(),
		},
		{
			Name:    "results",
			Aliases: []string{"r"},
			Action:  clicmds.Results,
			Flags:   clicmds.ResultsFlags(),
		},
	}
	return app
}

func TestCheckWithoutPages(t *testing.T) {
	var out bytes.Buffer
	err := testApp(&out).Run([]string{"app", "c", "--url", "http://example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no pages")
}

func TestCheckInvalidConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "pagek-cli")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "pages.toml")
	require.NoError(t, ioutil.WriteFile(path, []byte(`
timeout = "soon"

[[pages]]
name = "home"
`), 0644))

	var out bytes.Buffer
	err = testApp(&out).Run([]string{"app", "c", "--config", path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timeout")

	err = testApp(&out).Run([]string{"app", "c", "--leaser", "docker", "--url", "http://example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown leaser")
}

func TestResults(t *testing.T) {
	dir, err := ioutil.TempDir("", "pagek-cli")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	s, err := store.Open(dir)
	require.NoError(t, err)
	now := time.Now()
	require.NoError(t, s.Save(&check.Result{RunID: "run1", Page: "home", URL: "http://example.com/", Passed: true, Started: now}))
	require.NoError(t, s.Save(&check.Result{RunID: "run1", Page: "login", Passed: false, Failures: []string{"id:user is still present"}, Started: now.Add(time.Second)}))
	require.NoError(t, s.Save(&check.Result{RunID: "run2", Page: "home", Passed: true, Started: now.Add(time.Minute)}))
	require.NoError(t, s.Close())

	var out bytes.Buffer
	require.NoError(t, testApp(&out).Run([]string{"app", "r", "--datadir", dir, "--run", "run1"}))
	assert.Contains(t, out.String(), "Had 2 results")
	assert.Contains(t, out.String(), "run1 PASS home http://example.com/")
	assert.Contains(t, out.String(), "run1 FAIL login")
	assert.Contains(t, out.String(), "id:user is still present")
	assert.NotContains(t, out.String(), "run2")

	out.Reset()
	require.NoError(t, testApp(&out).Run([]string{"app", "r", "--datadir", dir, "--dump"}))
	assert.Contains(t, out.String(), "run2")

	out.Reset()
	err = testApp(&out).Run([]string{"app", "r", "--datadir", dir, "--run", "run3"})
	require.Error(t, err)
}
