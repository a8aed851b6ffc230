package store_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/pagek/check"
	"gitlab.com/pagek/store"
)

func testResult(run, page string, started time.Time, passed bool) *check.Result {
	r := &check.Result{
		RunID:    run,
		Page:     page,
		URL:      "http://example.com/" + page,
		Passed:   passed,
		Started:  started,
		Duration: 150 * time.Millisecond,
	}
	if !passed {
		r.Failures = []string{"css:#x is still visible"}
	}
	return r
}

func TestResultStore(t *testing.T) {
	path := "testdata/results"
	os.RemoveAll(path)
	defer os.RemoveAll(path)

	s, err := store.Open(path)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, s.Save(testResult("run1", "login", now.Add(time.Second), true)))
	require.NoError(t, s.Save(testResult("run1", "home", now, false)))
	require.NoError(t, s.Save(testResult("run2", "login", now.Add(time.Hour), true)))
	require.NoError(t, s.Close())

	// reopen to read back from disk
	s, err = store.Open(path)
	require.NoError(t, err)
	defer s.Close()

	results, err := s.Results("run1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "home", results[0].Page)
	assert.False(t, results[0].Passed)
	assert.Equal(t, []string{"css:#x is still visible"}, results[0].Failures)
	assert.Equal(t, 150*time.Millisecond, results[0].Duration)
	assert.True(t, now.Equal(results[0].Started))
	assert.Equal(t, "login", results[1].Page)

	all, err := s.Results("")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	runs, err := s.Runs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"run1", "run2"}, runs)
}

func TestResultStorePrefixIsolation(t *testing.T) {
	s, err := store.Open("")
	require.NoError(t, err)
	defer s.Close()

	now := time.Now()
	require.NoError(t, s.Save(testResult("run1", "a", now, true)))
	require.NoError(t, s.Save(testResult("run10", "b", now, true)))

	results, err := s.Results("run1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Page)

	none, err := s.Results("missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestResultStoreSaveInvalid(t *testing.T) {
	s, err := store.Open("")
	require.NoError(t, err)
	defer s.Close()

	assert.Error(t, s.Save(&check.Result{Page: "login"}))
	assert.Error(t, s.Save(&check.Result{RunID: "run1"}))
}

func TestMakeKey(t *testing.T) {
	key := store.MakeKey("result", "run1", "login")
	assert.Equal(t, "result:run1:login", string(key))
	assert.Equal(t, "result", string(store.GetPredicate(key)))
	assert.Equal(t, "run1:login", string(store.GetID(key)))
}
