package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/acarl005/stripansi"

	"scriptest/internal/domain"
)

// maxDetailLines bounds how much captured output is kept in a failure record
const maxDetailLines = 200

var (
	// Error: boom / TypeError: x is not a function / AssertionError [ERR_ASSERTION]: ...
	errorLinePattern = regexp.MustCompile(`^\s*(?:Uncaught\s+)?((?:[A-Z][A-Za-z]*)?(?:Error|Exception))(?:\s*\[[^\]]*\])?:\s*(.*)$`)
	// at fn (/path/file.js:12:5) / at /path/file.js:12:5
	nodeFramePattern = regexp.MustCompile(`^\s+at\s+(?:.*?\()?([^()]+?):(\d+):(\d+)\)?\s*$`)
	// File "/path/file.py", line 12, in <module>
	pythonFramePattern = regexp.MustCompile(`^\s+File "([^"]+)", line (\d+)`)
)

// OutputParser parses captured interpreter output of failed units
type OutputParser struct{}

// NewOutputParser creates a new OutputParser
func NewOutputParser() *OutputParser {
	return &OutputParser{}
}

// ParseFailure builds a failure record from a unit's outcome and captured output.
// When the output carries no recognisable error line the outcome's error is used as the message.
func (p *OutputParser) ParseFailure(result domain.UnitResult) domain.TestFailure {
	output := stripansi.Strip(result.Outcome.Output)
	lines := strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n")

	failure := domain.TestFailure{
		TestName:     result.Ref.Name,
		FilePath:     result.Ref.Path,
		ErrorDetails: tail(lines, maxDetailLines),
		StackTrace:   []string{},
	}

	var messageLines []string
	inMessage, found := false, false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if m := errorLinePattern.FindStringSubmatch(line); m != nil && !found {
			messageLines = append(messageLines, fmt.Sprintf("%s: %s", m[1], m[2]))
			inMessage, found = true, true
			continue
		}

		if file, lineNo, ok := parseFrame(line); ok {
			inMessage = false
			failure.StackTrace = append(failure.StackTrace, trimmed)
			// First frame inside the test file itself, not the interpreter internals
			if failure.File == "" && sameFile(file, result.Ref) {
				failure.File = file
				failure.Line = lineNo
			}
			continue
		}

		// Multi-line assertion messages continue until the first frame
		if inMessage && trimmed != "" {
			messageLines = append(messageLines, trimmed)
		}
	}

	failure.Message = strings.Join(messageLines, "\n")
	if failure.Message == "" {
		failure.Message = result.Outcome.ErrorMessage()
	}
	return failure
}

// ParseFailures parses every failed unit of a run, in discovery order
func (p *OutputParser) ParseFailures(result domain.RunResult) []domain.TestFailure {
	return ParseAll(p, result)
}

func parseFrame(line string) (string, int, bool) {
	var m []string
	if m = nodeFramePattern.FindStringSubmatch(line); m == nil {
		if m = pythonFramePattern.FindStringSubmatch(line); m == nil {
			return "", 0, false
		}
	}
	var n int
	fmt.Sscanf(m[2], "%d", &n)
	return strings.TrimPrefix(m[1], "file://"), n, true
}

func sameFile(file string, ref domain.TestFileRef) bool {
	return strings.HasSuffix(file, "/"+ref.Name) || strings.HasSuffix(file, "\\"+ref.Name) || file == ref.Name
}

func tail(lines []string, n int) string {
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
