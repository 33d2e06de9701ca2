package shim

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// CommandLoader hands each file to an interpreter process, e.g. `node <file>`.
// A zero exit status is a pass.
type CommandLoader struct {
	command []string
	dir     string
	env     []string
}

// NewCommandLoader creates a loader running command with the unit's absolute path appended.
// dir is the working directory, env is added on top of the current environment.
func NewCommandLoader(command []string, dir string, env []string) *CommandLoader {
	return &CommandLoader{
		command: append([]string(nil), command...),
		dir:     dir,
		env:     append([]string(nil), env...),
	}
}

// Load runs the interpreter for the unit's file
func (l *CommandLoader) Load(ctx context.Context, unit *TestUnit) (string, error) {
	if len(l.command) == 0 {
		return "", &LoadError{Path: unit.AbsPath, ExitCode: -1, Err: errors.New("empty command")}
	}
	if _, err := os.Stat(unit.AbsPath); err != nil {
		return "", &LoadError{Path: unit.AbsPath, ExitCode: -1, Err: err}
	}

	args := append(append([]string(nil), l.command[1:]...), unit.AbsPath)
	cmd := exec.CommandContext(ctx, l.command[0], args...)
	cmd.Dir = l.dir

	// Start with current environment
	cmd.Env = append(os.Environ(), l.env...)
	cmd.Env = append(cmd.Env, fmt.Sprintf("SCRIPTEST_UNIT=%s", unit.Name()))

	output, err := cmd.CombinedOutput()
	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return string(output), &LoadError{Path: unit.AbsPath, ExitCode: exitCode, Err: err}
	}
	return string(output), nil
}
