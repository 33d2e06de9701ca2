package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun() RunResult {
	return RunResult{
		RunID:     "6f1c",
		StartedAt: time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Workers:   1,
		Units: []UnitResult{
			{Ref: NewTestFileRef("tests/a_test.js", "tests"), Outcome: Outcome{Status: StatusPassed, Duration: time.Second}},
			{Ref: NewTestFileRef("tests/b_test.js", "tests"), Index: 1, Outcome: Outcome{Status: StatusFailed, Err: errors.New("boom")}, LogPath: "logs/002_b_test.js.log"},
			{Ref: NewTestFileRef("other/c_test.js", "other"), Index: 2, Outcome: Outcome{Status: StatusPassed}},
		},
	}
}

func TestRunResult_Counts(t *testing.T) {
	r := sampleRun()
	assert.Equal(t, 3, r.Total())
	assert.Equal(t, 1, r.Failed())
	assert.Equal(t, 2, r.Passed())
	assert.False(t, r.OK())

	failed := r.FailedUnits()
	require.Len(t, failed, 1)
	assert.Equal(t, "b_test.js", failed[0].Ref.Name)

	assert.True(t, RunResult{}.OK())
}

func TestOutcome(t *testing.T) {
	assert.True(t, Outcome{Status: StatusPassed}.Passed())
	assert.Equal(t, "", Outcome{Status: StatusPassed}.ErrorMessage())
	assert.Equal(t, "boom", Outcome{Status: StatusFailed, Err: errors.New("boom")}.ErrorMessage())
}

func TestNewTestResultsOutput(t *testing.T) {
	out := NewTestResultsOutput(sampleRun(), nil)

	assert.Equal(t, "6f1c", out.Meta.RunID)
	assert.Equal(t, 3, out.Meta.TotalTestFiles)
	assert.Equal(t, 1, out.Meta.FailedTestFiles)
	assert.Equal(t, 2, out.Meta.PassedTestFiles)
	assert.Equal(t, 1.5, out.Meta.DurationSeconds)
	assert.Equal(t, "2026-10-18T09:30:00Z", out.Meta.Timestamp)
	assert.NotNil(t, out.Details)

	require.Len(t, out.Units, 3)
	assert.Equal(t, StatusFailed, out.Units[1].Status)
	assert.Equal(t, "logs/002_b_test.js.log", out.Units[1].LogPath)

	assert.Equal(t, map[string]struct{}{"tests/b_test.js": {}}, out.FailedPaths())
}

func TestNewTestFileRef(t *testing.T) {
	ref := NewTestFileRef("func_req_tests/formTests/contact_test.js", "./func_req_tests/formTests")
	assert.Equal(t, "contact_test.js", ref.Name)
	assert.Equal(t, "./func_req_tests/formTests", ref.Dir)
}
