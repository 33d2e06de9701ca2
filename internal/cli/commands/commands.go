package commands

import (
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"

	"scriptest/internal/cli"
	"scriptest/internal/config"
	"scriptest/internal/logging"
)

// Commands holds all CLI commands
type Commands struct {
	config   *config.Config
	Run      *RunCommand
	List     *ListCommand
	Failures *FailuresCommand
}

// NewCommands creates all commands sharing cfg. The config is replaced in place
// by the PreRunE hook once flags are parsed.
func NewCommands(cfg *config.Config) *Commands {
	logger := logging.Discard()
	return &Commands{
		config:   cfg,
		Run:      NewRunCommand(cfg, logger),
		List:     NewListCommand(cfg, logger),
		Failures: NewFailuresCommand(cfg, logger),
	}
}

// prepare loads the effective config and the logger before a command runs
func (c *Commands) prepare(flags *cli.Flags) error {
	loaded, err := config.Load(flags.ToConfigFlags())
	if err != nil {
		return err
	}
	*c.config = *loaded

	logger, err := logging.New(os.Stderr, c.config.LogLevel)
	if err != nil {
		return err
	}
	c.setLogger(logger)
	return nil
}

func (c *Commands) setLogger(logger log.Logger) {
	c.Run.logger = logger
	c.List.logger = logger
	c.Failures.logger = logger
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags) {
	preRun := func(cmd *cobra.Command, args []string) error {
		return c.prepare(flags)
	}

	// Shared by every command
	rootCmd.PersistentFlags().StringVarP(&flags.ConfigFile, "config", "c", "", "Path to the config file (default <base-dir>/"+config.DefaultConfigFile+")")
	rootCmd.PersistentFlags().StringVarP(&flags.BaseDir, "base-dir", "b", "", "Directory the test directories are relative to")
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "Log level: trace, debug, info, warn, error")

	// Run command
	runCmd := &cobra.Command{
		Use:     "run",
		Short:   "Discover and run test scripts",
		Long:    "Scan the configured directories for test scripts, run each one as an isolated test unit and report the results",
		RunE:    c.Run.Execute,
		PreRunE: preRun,
	}
	runCmd.Flags().StringArrayVarP(&flags.Directories, "dir", "d", nil, "Directory to scan, repeatable (replaces the configured list)")
	runCmd.Flags().StringVarP(&flags.Suffix, "suffix", "s", "", "File name suffix of test scripts (default \""+config.DefaultSuffix+"\")")
	runCmd.Flags().IntVarP(&flags.Workers, "workers", "p", 0, "Number of units to run at once (default 1)")
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter tests by name pattern (supports wildcards, e.g., 'login*' or '*form*')")
	runCmd.Flags().BoolVar(&flags.OnlyFailed, "failed", false, "Run only tests that failed in the last run")
	runCmd.Flags().StringVar(&flags.ReportDir, "report-dir", "", "Report directory, cleaned before every run (default \""+config.DefaultReportDir+"\")")
	runCmd.Flags().StringArrayVar(&flags.Formats, "format", nil, "Report format: json, html, junit (repeatable)")
	runCmd.Flags().BoolVar(&flags.NoProgress, "no-progress", false, "Disable the progress bar")
	runCmd.Flags().StringVar(&flags.MetricsFile, "metrics-file", "", "Write prometheus metrics for the run to this file")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List discovered tests",
		Long:    "Scan and list all test scripts without running them. Files that failed in the last run are marked [F]",
		RunE:    c.List.Execute,
		PreRunE: preRun,
	}
	listCmd.Flags().StringArrayVarP(&flags.Directories, "dir", "d", nil, "Directory to scan, repeatable (replaces the configured list)")
	listCmd.Flags().StringVarP(&flags.Suffix, "suffix", "s", "", "File name suffix of test scripts")
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter tests by name pattern (supports wildcards)")
	rootCmd.AddCommand(listCmd)

	// Failures command
	failuresCmd := &cobra.Command{
		Use:     "failures",
		Short:   "View test failures of the last run",
		Long:    "Display test failures from the last run in an interactive viewer. Press r to mark a failure resolved",
		RunE:    c.Failures.Execute,
		PreRunE: preRun,
	}
	failuresCmd.Flags().BoolVar(&flags.Plain, "plain", false, "Print the failures instead of opening the viewer")
	rootCmd.AddCommand(failuresCmd)
}

// NewRootCommand builds the scriptest command tree
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "scriptest",
		Short:         "Test script discovery and aggregation runner",
		Long:          `Discovers standalone test scripts in a list of directories, runs each one as an isolated test unit, and reports the aggregate result with a deterministic exit code.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var flags cli.Flags
	cmds := NewCommands(config.New())
	cmds.Register(rootCmd, &flags)
	return rootCmd
}
