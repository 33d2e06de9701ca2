package parser

import "scriptest/internal/domain"

// Parser extracts failure details from a failed unit
type Parser interface {
	ParseFailure(result domain.UnitResult) domain.TestFailure
}

// ParseAll runs p over every failed unit of a run, in discovery order
func ParseAll(p Parser, result domain.RunResult) []domain.TestFailure {
	failures := []domain.TestFailure{}
	for _, u := range result.FailedUnits() {
		failures = append(failures, p.ParseFailure(u))
	}
	return failures
}
