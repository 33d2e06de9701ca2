package commands

import (
	"errors"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"scriptest/internal/config"
	"scriptest/internal/exitcodes"
	"scriptest/internal/storage"
	"scriptest/internal/ui"
)

// FailuresCommand handles the failures command
type FailuresCommand struct {
	config *config.Config
	logger log.Logger
}

// NewFailuresCommand creates a new FailuresCommand
func NewFailuresCommand(cfg *config.Config, logger log.Logger) *FailuresCommand {
	return &FailuresCommand{
		config: cfg,
		logger: logger,
	}
}

// Execute runs the command
func (fc *FailuresCommand) Execute(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	st, err := storage.New(fc.config)
	if err != nil {
		return exitcodes.NewRuntimeError(err)
	}
	defer closeStorage(st, fc.logger)

	results, err := st.Load()
	if errors.Is(err, storage.ErrNoResults) {
		color.New(color.FgYellow).Fprintln(out, "No stored run found, run `scriptest run` first")
		return nil
	}
	if err != nil {
		return exitcodes.NewRuntimeError(err)
	}

	// The viewer needs a terminal, anything else gets the printed summary
	if fc.config.Flags.Plain || out != os.Stdout || !isatty.IsTerminal(os.Stdout.Fd()) {
		ui.NewFormatter(out).PrintMetaStats(results)
		return nil
	}
	var viewer ui.Viewer = ui.NewErrorViewer(out, st)
	return viewer.View(results)
}
