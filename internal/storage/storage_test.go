package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptest/internal/config"
	"scriptest/internal/domain"
)

func sampleRun(runID string, failedNames ...string) (domain.RunResult, []domain.TestFailure) {
	failed := map[string]bool{}
	for _, n := range failedNames {
		failed[n] = true
	}
	run := domain.RunResult{
		RunID:     runID,
		StartedAt: time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC),
		Duration:  2 * time.Second,
		Workers:   2,
	}
	var failures []domain.TestFailure
	for i, name := range []string{"a_test.js", "b_test.js", "c_test.js"} {
		ref := domain.NewTestFileRef("/work/tests/"+name, "tests")
		outcome := domain.Outcome{Status: domain.StatusPassed, Duration: 100 * time.Millisecond}
		if failed[name] {
			outcome.Status = domain.StatusFailed
			outcome.Err = errors.New("boom")
			failures = append(failures, domain.TestFailure{
				TestName:   name,
				FilePath:   ref.Path,
				Message:    "Error: boom",
				StackTrace: []string{"at Object.<anonymous> (/work/tests/" + name + ":1:7)"},
				File:       ref.Path,
				Line:       1,
			})
		}
		run.Units = append(run.Units, domain.UnitResult{Ref: ref, Index: i, Outcome: outcome})
	}
	return run, failures
}

func exerciseStorage(t *testing.T, st Storage) {
	_, err := st.Load()
	assert.ErrorIs(t, err, ErrNoResults)

	run, failures := sampleRun("run-1", "b_test.js")
	require.NoError(t, st.Save(run, failures))

	out, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, "run-1", out.Meta.RunID)
	assert.Equal(t, 3, out.Meta.TotalTestFiles)
	assert.Equal(t, 1, out.Meta.FailedTestFiles)
	require.Len(t, out.Units, 3)
	assert.Equal(t, domain.StatusFailed, out.Units[1].Status)
	require.Len(t, out.Details, 1)
	assert.Equal(t, "Error: boom", out.Details[0].Message)
	assert.Equal(t, []string{"at Object.<anonymous> (/work/tests/b_test.js:1:7)"}, out.Details[0].StackTrace)
	assert.Equal(t, map[string]struct{}{"/work/tests/b_test.js": {}}, out.FailedPaths())

	// Resolved flags survive a rewrite
	out.Details[0].Resolved = true
	require.NoError(t, st.SaveOutput(out))
	reloaded, err := st.Load()
	require.NoError(t, err)
	assert.True(t, reloaded.Details[0].Resolved)

	// A newer run replaces what Load returns
	run2, failures2 := sampleRun("run-2", "a_test.js", "c_test.js")
	require.NoError(t, st.Save(run2, failures2))
	latest, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, "run-2", latest.Meta.RunID)
	assert.Equal(t, 2, latest.Meta.FailedTestFiles)
	assert.Len(t, latest.Details, 2)
}

func TestJSONStorage(t *testing.T) {
	st := NewJSONStorage(filepath.Join(t.TempDir(), ".scriptest", "last-run.json"))
	exerciseStorage(t, st)
}

func TestSQLStorage_SQLite(t *testing.T) {
	st, err := OpenSQLStorage("sqlite", filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer st.Close()

	exerciseStorage(t, st)
}

func TestNew(t *testing.T) {
	cfg := config.New()
	cfg.BaseDir = t.TempDir()

	st, err := New(cfg)
	require.NoError(t, err)
	js, ok := st.(*JSONStorage)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(cfg.BaseDir, config.DefaultResultsFile), js.Path())

	cfg.Storage = config.StorageConfig{Driver: "sqlite", DSN: filepath.Join(cfg.BaseDir, "r.db")}
	st, err = New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &SQLStorage{}, st)
	st.(*SQLStorage).Close()

	cfg.Storage = config.StorageConfig{Driver: "csv"}
	_, err = New(cfg)
	assert.Error(t, err)
}
