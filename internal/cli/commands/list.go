package commands

import (
	"errors"

	"github.com/ethereum/go-ethereum/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"scriptest/internal/config"
	"scriptest/internal/discovery"
	"scriptest/internal/exitcodes"
	"scriptest/internal/storage"
	"scriptest/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config *config.Config
	logger log.Logger
}

// NewListCommand creates a new ListCommand
func NewListCommand(cfg *config.Config, logger log.Logger) *ListCommand {
	return &ListCommand{
		config: cfg,
		logger: logger,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	formatter := ui.NewFormatter(out)

	scanner := discovery.NewScanner(lc.config.Suffix, lc.logger)
	scanner.SetObserver(discovery.Observer{
		Warned: formatter.ScanObserver().Warned,
	})
	scan, err := scanner.Scan(lc.config.BaseDir, lc.config.Directories)
	if err != nil {
		return exitcodes.NewRuntimeError(err)
	}

	refs := discovery.NewFilter().FilterByName(scan.Files, lc.config.Flags.NameFilter)
	if len(refs) == 0 {
		color.New(color.FgYellow).Fprintln(out, "No tests found")
		return nil
	}

	formatter.PrintTestList(refs, lc.lastFailures())
	return nil
}

// lastFailures returns the failed paths of the stored run. Storage problems only
// cost the markers, the listing still works.
func (lc *ListCommand) lastFailures() map[string]struct{} {
	st, err := storage.New(lc.config)
	if err != nil {
		lc.logger.Warn("Failed to open results storage", "err", err)
		return nil
	}
	defer closeStorage(st, lc.logger)

	last, err := st.Load()
	if err != nil {
		if !errors.Is(err, storage.ErrNoResults) {
			lc.logger.Warn("Failed to load last run", "err", err)
		}
		return nil
	}
	return last.FailedPaths()
}
