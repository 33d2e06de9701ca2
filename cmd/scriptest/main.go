package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"scriptest/internal/cli/commands"
	"scriptest/internal/exitcodes"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := commands.NewRootCommand(version)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !exitcodes.IsTestFailureError(err) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	code := exitcodes.FromError(err)
	stop()
	os.Exit(code)
}
