// Package report turns a finished run into console output, report artifacts
// and the process exit code.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"scriptest/internal/domain"
	"scriptest/internal/exitcodes"
)

// ExitCode maps a run to the process exit code: 0 iff no unit failed
func ExitCode(result domain.RunResult) int {
	if result.Failed() == 0 {
		return exitcodes.Success
	}
	return exitcodes.TestFailure
}

// Reporter prints the run summary
type Reporter struct {
	out io.Writer
}

// NewReporter creates a Reporter writing to out
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// Report prints per-unit status, the totals and a summary table, and returns the exit code
func (r *Reporter) Report(result domain.RunResult) int {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	fmt.Fprintln(r.out)
	for _, u := range result.Units {
		if u.Outcome.Passed() {
			green.Fprintf(r.out, "  ✓ %s", u.Ref.Name)
			fmt.Fprintf(r.out, " (%s)\n", formatDuration(u.Outcome.Duration.Seconds()))
			continue
		}
		red.Fprintf(r.out, "  ✗ %s", u.Ref.Name)
		fmt.Fprintf(r.out, " (%s)\n", formatDuration(u.Outcome.Duration.Seconds()))
		if msg := firstLine(u.Outcome.ErrorMessage()); msg != "" {
			fmt.Fprintf(r.out, "      %s\n", msg)
		}
	}
	fmt.Fprintln(r.out)

	r.printTable(result)

	fmt.Fprintf(r.out, "Total tests executed: %d\n", result.Total())
	if failed := result.Failed(); failed > 0 {
		red.Fprintf(r.out, "%d test(s) failed.\n", failed)
	} else {
		green.Fprintln(r.out, "All tests passed successfully.")
	}

	return ExitCode(result)
}

func (r *Reporter) printTable(result domain.RunResult) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("Test Execution Statistics")
	t.AppendHeader(table.Row{"Directory", "Tests", "Passed", "Failed", "Duration"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Directory", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Duration", Align: text.AlignRight},
	})

	for _, d := range groupByDirectory(result) {
		t.AppendRow(table.Row{d.dir, d.total, d.passed, d.failed, formatDuration(d.seconds)})
	}

	switch {
	case result.Total() == 0:
		t.SetStyle(table.StyleLight)
	case result.OK():
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}
	if color.NoColor {
		t.SetStyle(table.StyleLight)
	}

	t.AppendFooter(table.Row{"TOTAL", result.Total(), result.Passed(), result.Failed(), formatDuration(result.Duration.Seconds())})
	t.Render()
}

type dirStats struct {
	dir                   string
	total, passed, failed int
	seconds               float64
}

// groupByDirectory keeps directories in the order they were first seen
func groupByDirectory(result domain.RunResult) []*dirStats {
	var order []*dirStats
	byDir := make(map[string]*dirStats)
	for _, u := range result.Units {
		d, ok := byDir[u.Ref.Dir]
		if !ok {
			d = &dirStats{dir: u.Ref.Dir}
			byDir[u.Ref.Dir] = d
			order = append(order, d)
		}
		d.total++
		if u.Outcome.Passed() {
			d.passed++
		} else {
			d.failed++
		}
		d.seconds += u.Outcome.Duration.Seconds()
	}
	return order
}

func formatDuration(seconds float64) string {
	return fmt.Sprintf("%.2fs", seconds)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
