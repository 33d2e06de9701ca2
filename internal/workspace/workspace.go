// Package workspace owns the report directory for the duration of a run.
//
// The directory is removed and recreated before any unit executes so that
// artifacts from a previous run can never leak into the current one. Every
// unit writes its captured output to its own file under logs/.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const logsDirName = "logs"

// ScratchWriteError is returned when the report directory cannot be cleaned or written.
// It is fatal to the run.
type ScratchWriteError struct {
	Path string
	Op   string
	Err  error
}

func (e *ScratchWriteError) Error() string {
	return fmt.Sprintf("scratch %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ScratchWriteError) Unwrap() error {
	return e.Err
}

// IsScratchWriteError checks if the error is or wraps a ScratchWriteError
func IsScratchWriteError(err error) bool {
	var scratchErr *ScratchWriteError
	return errors.As(err, &scratchErr)
}

// Workspace is a prepared report directory
type Workspace struct {
	dir     string
	cleaned bool
}

// ErrProtectedPath marks a report directory that would delete the run's own inputs
var ErrProtectedPath = errors.New("report directory contains test inputs")

// Prepare removes dir (if present) and recreates it with an empty logs directory.
// dir must not be, or contain, any of the protected paths (base and scan directories).
func Prepare(dir string, protected ...string) (*Workspace, error) {
	if dir == "" {
		return nil, &ScratchWriteError{Path: dir, Op: "prepare", Err: errors.New("empty directory path")}
	}
	for _, p := range protected {
		if p != "" && contains(dir, p) {
			return nil, &ScratchWriteError{Path: dir, Op: "prepare", Err: fmt.Errorf("%w: %s", ErrProtectedPath, p)}
		}
	}

	ws := &Workspace{dir: dir}
	if _, err := os.Stat(dir); err == nil {
		if err := os.RemoveAll(dir); err != nil {
			return nil, &ScratchWriteError{Path: dir, Op: "clean", Err: err}
		}
		ws.cleaned = true
	}

	if err := os.MkdirAll(filepath.Join(dir, logsDirName), 0755); err != nil {
		return nil, &ScratchWriteError{Path: dir, Op: "create", Err: err}
	}
	return ws, nil
}

// contains reports whether path is dir itself or lies below it
func contains(dir, path string) bool {
	rel, err := filepath.Rel(canonical(dir), canonical(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// canonical returns the absolute, symlink-free form of p where it can be resolved
func canonical(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	return filepath.Clean(p)
}

// Dir returns the report directory
func (w *Workspace) Dir() string {
	return w.dir
}

// Cleaned reports whether a previous run's directory was removed
func (w *Workspace) Cleaned() bool {
	return w.cleaned
}

// Path joins name onto the report directory
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// LogPath returns the per-unit log file path. The discovery index keeps paths
// unique even when two directories contain files with the same name.
func (w *Workspace) LogPath(index int, name string) string {
	clean := unsafeChars.ReplaceAllString(name, "_")
	clean = strings.Trim(clean, "_")
	if clean == "" {
		clean = "unit"
	}
	return filepath.Join(w.dir, logsDirName, fmt.Sprintf("%03d_%s.log", index+1, clean))
}

// WriteLog writes a unit's captured output and returns the file path
func (w *Workspace) WriteLog(index int, name, output string) (string, error) {
	path := w.LogPath(index, name)
	if err := os.WriteFile(path, []byte(output), 0644); err != nil {
		return "", &ScratchWriteError{Path: path, Op: "write", Err: err}
	}
	return path, nil
}

// WriteFile writes an artifact into the report directory
func (w *Workspace) WriteFile(name string, data []byte) (string, error) {
	path := w.Path(name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", &ScratchWriteError{Path: path, Op: "write", Err: err}
	}
	return path, nil
}
