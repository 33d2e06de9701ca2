package ui

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptest/internal/domain"
	"scriptest/internal/storage"
)

func TestErrorViewer_NoFailures(t *testing.T) {
	var buf bytes.Buffer
	st := storage.NewJSONStorage(filepath.Join(t.TempDir(), "last-run.json"))

	err := NewErrorViewer(&buf, st).View(&domain.TestResultsOutput{})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No test failures found!")
}

func TestToggleResolved(t *testing.T) {
	results := &domain.TestResultsOutput{Details: []domain.TestFailure{{TestName: "a"}, {TestName: "b"}}}

	ToggleResolved(results, 1)
	assert.True(t, results.Details[1].Resolved)
	assert.Equal(t, 1, countUnresolved(results.Details))

	ToggleResolved(results, 1)
	assert.False(t, results.Details[1].Resolved)

	// out of range is ignored
	ToggleResolved(results, 5)
	assert.Equal(t, 2, countUnresolved(results.Details))
}

func TestFormatFailureDetails(t *testing.T) {
	stack := make([]string, 12)
	for i := range stack {
		stack[i] = "at frame"
	}
	failure := domain.TestFailure{
		TestName:   "cart_test.js",
		FilePath:   "shop/cart_test.js",
		File:       "/abs/shop/cart_test.js",
		Line:       7,
		Message:    "Error: [boom]",
		StackTrace: stack,
	}

	text := formatFailureDetails(failure, "/report/logs/001_cart_test.js.log")
	assert.Contains(t, text, "Test: cart_test.js")
	assert.Contains(t, text, "Location: /abs/shop/cart_test.js:7")
	assert.Contains(t, text, "Log: /report/logs/001_cart_test.js.log")
	assert.Contains(t, text, "Error: [boom[]")
	assert.Contains(t, text, "... and 2 more lines")
}

func TestFormatFailureStats(t *testing.T) {
	assert.Contains(t, formatFailureStats(domain.TestFailure{}, 3), "Unknown path")
	assert.Contains(t, formatFailureStats(domain.TestFailure{}, 3), "Test 3")
	assert.Contains(t, formatFailureStats(domain.TestFailure{Resolved: true}, 1), "resolved")
	assert.Contains(t, listItemText(domain.TestFailure{TestName: "x", Resolved: true}, 0), "✓")
}
