package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"scriptest/internal/discovery"
	"scriptest/internal/domain"
)

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	white  = color.New(color.FgWhite)
)

// Formatter formats and displays console output
type Formatter struct {
	out io.Writer
}

// NewFormatter creates a new Formatter writing to out
func NewFormatter(out io.Writer) *Formatter {
	return &Formatter{out: out}
}

// PrintCleaned announces that the report directory was wiped
func (f *Formatter) PrintCleaned() {
	fmt.Fprintln(f.out, "Cleaned report directory.")
}

// ScanObserver returns a discovery observer that echoes the scan to the console
func (f *Formatter) ScanObserver() discovery.Observer {
	return discovery.Observer{
		DirectoryScanned: func(dir string) {
			fmt.Fprintf(f.out, "Scanning directory: %s\n", dir)
		},
		FileAdded: func(ref domain.TestFileRef) {
			fmt.Fprintf(f.out, "Adding test file: %s\n", ref.Path)
		},
		Warned: func(w discovery.Warning) {
			yellow.Fprintln(f.out, w.String())
		},
	}
}

// PrintTestList prints discovered files grouped by their configured directory.
// Files whose path is in failedPaths (from the last run) are marked with [F].
func (f *Formatter) PrintTestList(refs []domain.TestFileRef, failedPaths map[string]struct{}) {
	green.Fprintf(f.out, "Found %d test file(s):\n\n", len(refs))

	groups, order := groupRefs(refs)
	for gi, dir := range order {
		cyan.Fprintln(f.out, dir)
		files := groups[dir]
		for i, ref := range files {
			connector := "├── "
			if i == len(files)-1 {
				connector = "└── "
			}
			marker := ""
			if _, ok := failedPaths[ref.Path]; ok {
				marker = " " + red.Sprint("[F]")
			}
			fmt.Fprintf(f.out, "%s%s%s\n", connector, ref.Name, marker)
		}
		if gi < len(order)-1 {
			fmt.Fprintln(f.out)
		}
	}
}

func groupRefs(refs []domain.TestFileRef) (map[string][]domain.TestFileRef, []string) {
	groups := make(map[string][]domain.TestFileRef)
	var order []string
	for _, ref := range refs {
		if _, ok := groups[ref.Dir]; !ok {
			order = append(order, ref.Dir)
		}
		groups[ref.Dir] = append(groups[ref.Dir], ref)
	}
	return groups, order
}

// PrintMetaStats prints the statistics of a stored run followed by its failures
func (f *Formatter) PrintMetaStats(output *domain.TestResultsOutput) {
	meta := output.Meta

	fmt.Fprintln(f.out)
	cyan.Fprintln(f.out, "╔═══════════════════════════════════════════════════════════════╗")
	cyan.Fprintln(f.out, "║                    Test Execution Statistics                  ║")
	cyan.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(f.out)

	rows := []struct {
		label string
		value string
		c     *color.Color
	}{
		{"Run ID", meta.RunID, white},
		{"Total Test Files", fmt.Sprint(meta.TotalTestFiles), white},
		{"Passed Test Files", fmt.Sprint(meta.PassedTestFiles), green},
		{"Failed Test Files", fmt.Sprint(meta.FailedTestFiles), red},
		{"Duration", fmt.Sprintf("%.2fs", meta.DurationSeconds), white},
		{"Workers", fmt.Sprint(meta.Workers), white},
		{"Timestamp", meta.Timestamp, white},
	}

	fmt.Fprintln(f.out, "┌─────────────────────────────────┬──────────────────────────────────────┐")
	for i, row := range rows {
		fmt.Fprintf(f.out, "│ %-31s │ ", row.label)
		row.c.Fprintf(f.out, "%-36s", row.value)
		fmt.Fprintln(f.out, " │")
		if i < len(rows)-1 {
			fmt.Fprintln(f.out, "├─────────────────────────────────┼──────────────────────────────────────┤")
		}
	}
	fmt.Fprintln(f.out, "└─────────────────────────────────┴──────────────────────────────────────┘")

	fmt.Fprintln(f.out)
	if meta.FailedTestFiles == 0 {
		green.Fprintln(f.out, "✓ All tests passed!")
		return
	}
	red.Fprintf(f.out, "✗ %d test file(s) failed\n\n", meta.FailedTestFiles)
	f.printFailedTree(output.Details)
}

// printFailedTree prints failures under the directory of their file
func (f *Formatter) printFailedTree(failures []domain.TestFailure) {
	var order []string
	byDir := make(map[string][]domain.TestFailure)
	for _, failure := range failures {
		dir := "."
		if i := strings.LastIndex(failure.FilePath, "/"); i > 0 {
			dir = failure.FilePath[:i]
		}
		if _, ok := byDir[dir]; !ok {
			order = append(order, dir)
		}
		byDir[dir] = append(byDir[dir], failure)
	}

	for _, dir := range order {
		cyan.Fprintln(f.out, dir)
		items := byDir[dir]
		for i, failure := range items {
			connector, indent := "  |_", "  |    "
			if i == len(items)-1 {
				connector, indent = "   |_", "        "
			}
			yellow.Fprintf(f.out, "%s%s", connector, failure.TestName)
			if failure.Resolved {
				fmt.Fprint(f.out, " (resolved)")
			}
			fmt.Fprintln(f.out)
			if failure.Message != "" {
				red.Fprintf(f.out, "%s%s\n", indent, firstLine(failure.Message))
			}
		}
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
