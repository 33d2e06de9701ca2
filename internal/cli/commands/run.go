package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/log"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"scriptest/internal/config"
	"scriptest/internal/discovery"
	"scriptest/internal/domain"
	"scriptest/internal/execution"
	"scriptest/internal/exitcodes"
	"scriptest/internal/metrics"
	"scriptest/internal/parser"
	"scriptest/internal/report"
	"scriptest/internal/shim"
	"scriptest/internal/storage"
	"scriptest/internal/ui"
	"scriptest/internal/workspace"
)

// RunCommand handles the run command
type RunCommand struct {
	config *config.Config
	logger log.Logger
	loader shim.Loader
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(cfg *config.Config, logger log.Logger) *RunCommand {
	return &RunCommand{
		config: cfg,
		logger: logger,
	}
}

// SetLoader replaces the interpreter command with another loader, e.g. a shim.FuncLoader
func (rc *RunCommand) SetLoader(loader shim.Loader) {
	rc.loader = loader
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return rc.Run(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// Run discovers, executes and reports. It returns nil when every unit passed,
// a *exitcodes.TestFailureError when some failed and a *exitcodes.RuntimeError
// when the run itself could not be carried out.
func (rc *RunCommand) Run(ctx context.Context, out, errOut io.Writer) error {
	cfg := rc.config
	formatter := ui.NewFormatter(out)

	st, err := storage.New(cfg)
	if err != nil {
		return exitcodes.NewRuntimeError(err)
	}
	defer closeStorage(st, rc.logger)

	// Decided before the report directory is touched, a no-op rerun keeps the last reports
	var lastFailed map[string]struct{}
	if cfg.Flags.OnlyFailed {
		last, err := st.Load()
		if err != nil && !errors.Is(err, storage.ErrNoResults) {
			return exitcodes.NewRuntimeError(fmt.Errorf("failed to load last run: %w", err))
		}
		if last == nil || last.Meta.FailedTestFiles == 0 {
			color.New(color.FgYellow).Fprintln(out, "No failed tests from the last run")
			return nil
		}
		lastFailed = last.FailedPaths()
	}

	// The report directory is owned by the run, nothing executes before it is clean
	ws, err := workspace.Prepare(cfg.GetReportDir(), rc.inputDirs()...)
	if err != nil {
		return exitcodes.NewRuntimeError(err)
	}
	if ws.Cleaned() {
		formatter.PrintCleaned()
	}

	scanner := discovery.NewScanner(cfg.Suffix, rc.logger)
	scanner.SetObserver(formatter.ScanObserver())
	scan, err := scanner.Scan(cfg.BaseDir, cfg.Directories)
	if err != nil {
		return exitcodes.NewRuntimeError(err)
	}

	filter := discovery.NewFilter()
	refs := filter.FilterByName(scan.Files, cfg.Flags.NameFilter)
	if lastFailed != nil {
		refs = filter.FilterByPaths(refs, lastFailed)
	}

	runID := uuid.New().String()
	loader := rc.loader
	if loader == nil {
		env := append(cfg.Environ(), "SCRIPTEST_RUN_ID="+runID)
		loader = shim.NewCommandLoader(cfg.Command, cfg.BaseDir, env)
	}

	units, err := shim.Generate(refs, loader)
	if err != nil {
		return exitcodes.NewRuntimeError(err)
	}

	pool := execution.NewWorkerPool(cfg.Workers, runID, ws, rc.logger)
	if !cfg.Flags.NoProgress && len(units) > 0 {
		pool.SetProgress(ui.NewProgressBar(len(units), errOut))
	}

	var executor execution.Executor = pool

	rc.logger.Info("Starting run", "run_id", runID, "units", len(units), "workers", cfg.Workers)
	result, err := executor.Execute(ctx, units)
	if err != nil {
		return exitcodes.NewRuntimeError(err)
	}

	code := report.NewReporter(out).Report(result)

	failures := parser.NewOutputParser().ParseFailures(result)
	if err := rc.writeArtifacts(ws, result, failures); err != nil {
		return exitcodes.NewRuntimeError(err)
	}

	if err := st.Save(result, failures); err != nil {
		return exitcodes.NewRuntimeError(fmt.Errorf("failed to save test results: %w", err))
	}

	if cfg.MetricsFile != "" {
		recorder := metrics.NewRecorder()
		recorder.Record(result)
		if err := recorder.WriteTextfile(cfg.ResolvePath(cfg.MetricsFile)); err != nil {
			return exitcodes.NewRuntimeError(err)
		}
	}

	if code != exitcodes.Success {
		return &exitcodes.TestFailureError{Failed: result.Failed(), Total: result.Total()}
	}
	return nil
}

// inputDirs lists the directories the report directory must never contain
func (rc *RunCommand) inputDirs() []string {
	dirs := []string{rc.config.BaseDir}
	for _, d := range rc.config.Directories {
		dirs = append(dirs, rc.config.ResolvePath(d))
	}
	return dirs
}

func (rc *RunCommand) writeArtifacts(ws *workspace.Workspace, result domain.RunResult, failures []domain.TestFailure) error {
	sinks, err := report.NewSinks(rc.config.Formats)
	if err != nil {
		return err
	}
	paths, err := report.WriteAll(ws, rc.config.ReportFilename, sinks, result, failures)
	if err != nil {
		return err
	}
	for _, p := range paths {
		rc.logger.Info("Wrote report", "path", p)
	}
	return nil
}

func closeStorage(st storage.Storage, logger log.Logger) {
	if c, ok := st.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.Warn("Failed to close storage", "err", err)
		}
	}
}
