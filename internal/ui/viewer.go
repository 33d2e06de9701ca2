package ui

import "scriptest/internal/domain"

// Viewer displays stored run results
type Viewer interface {
	View(results *domain.TestResultsOutput) error
}
