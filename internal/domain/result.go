package domain

import "time"

// Status is the terminal state of a test unit
type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
)

// Outcome is what a single test unit produced when executed
type Outcome struct {
	Status   Status
	Err      error         // Set when Status is failed
	Output   string        // Combined output captured while loading the file
	Duration time.Duration // Time taken to execute
}

// Passed reports whether the outcome is a pass
func (o Outcome) Passed() bool {
	return o.Status == StatusPassed
}

// ErrorMessage returns the failure message, or "" for a passing outcome
func (o Outcome) ErrorMessage() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// UnitResult pairs a discovered file with its outcome
type UnitResult struct {
	Ref     TestFileRef
	Index   int // Discovery index
	Outcome Outcome
	LogPath string // Where the unit's captured output was written, if anywhere
}

// RunResult is the aggregate of all unit outcomes for one invocation.
// Units are kept in discovery order.
type RunResult struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Workers   int
	Units     []UnitResult
}

func (r RunResult) Total() int {
	return len(r.Units)
}

func (r RunResult) Failed() int {
	n := 0
	for _, u := range r.Units {
		if !u.Outcome.Passed() {
			n++
		}
	}
	return n
}

func (r RunResult) Passed() int {
	return r.Total() - r.Failed()
}

// OK is true when no unit failed
func (r RunResult) OK() bool {
	return r.Failed() == 0
}

// FailedUnits returns the failing units in discovery order
func (r RunResult) FailedUnits() []UnitResult {
	var failed []UnitResult
	for _, u := range r.Units {
		if !u.Outcome.Passed() {
			failed = append(failed, u)
		}
	}
	return failed
}

// TestResultsMeta contains metadata about a test run
type TestResultsMeta struct {
	RunID           string  `json:"run_id"`
	TotalTestFiles  int     `json:"total_test_files"`
	FailedTestFiles int     `json:"failed_test_files"`
	PassedTestFiles int     `json:"passed_test_files"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Workers         int     `json:"workers"`
	Timestamp       string  `json:"timestamp"`
}

// UnitRecord is the persisted form of a unit result
type UnitRecord struct {
	Name            string  `json:"name"`
	FilePath        string  `json:"file_path"`
	Status          Status  `json:"status"`
	DurationSeconds float64 `json:"duration_seconds"`
	LogPath         string  `json:"log_path,omitempty"`
}

// TestResultsOutput is the complete output structure for test results
type TestResultsOutput struct {
	Meta    TestResultsMeta `json:"meta"`
	Units   []UnitRecord    `json:"units"`
	Details []TestFailure   `json:"details"`
}

// NewTestResultsOutput flattens a run into its persisted document
func NewTestResultsOutput(result RunResult, failures []TestFailure) *TestResultsOutput {
	units := make([]UnitRecord, 0, len(result.Units))
	for _, u := range result.Units {
		units = append(units, UnitRecord{
			Name:            u.Ref.Name,
			FilePath:        u.Ref.Path,
			Status:          u.Outcome.Status,
			DurationSeconds: u.Outcome.Duration.Seconds(),
			LogPath:         u.LogPath,
		})
	}
	if failures == nil {
		failures = []TestFailure{}
	}
	return &TestResultsOutput{
		Meta: TestResultsMeta{
			RunID:           result.RunID,
			TotalTestFiles:  result.Total(),
			FailedTestFiles: result.Failed(),
			PassedTestFiles: result.Passed(),
			Duration:        result.Duration.String(),
			DurationSeconds: result.Duration.Seconds(),
			Workers:         result.Workers,
			Timestamp:       result.StartedAt.Format(time.RFC3339),
		},
		Units:   units,
		Details: failures,
	}
}

// FailedPaths returns the file paths of failed units keyed for set lookups
func (o *TestResultsOutput) FailedPaths() map[string]struct{} {
	paths := make(map[string]struct{})
	for _, u := range o.Units {
		if u.Status == StatusFailed {
			paths[u.FilePath] = struct{}{}
		}
	}
	return paths
}
