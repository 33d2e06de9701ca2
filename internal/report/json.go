package report

import (
	"encoding/json"

	"scriptest/internal/domain"
)

// JSONSink writes the results document used by storage, so the report and the
// persisted last run share one schema
type JSONSink struct{}

func (JSONSink) Format() string { return "json" }

func (JSONSink) Filename(stem string) string { return stem + ".json" }

func (JSONSink) Render(result domain.RunResult, failures []domain.TestFailure) ([]byte, error) {
	data, err := json.MarshalIndent(domain.NewTestResultsOutput(result, failures), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
