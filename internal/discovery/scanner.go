package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/log"

	"scriptest/internal/domain"
)

// ErrDirectoryNotFound marks a configured directory that does not exist
var ErrDirectoryNotFound = errors.New("directory not found")

// Warning is a non-fatal discovery problem
type Warning struct {
	Dir string // Directory as configured
	Err error
}

func (w Warning) String() string {
	if errors.Is(w.Err, ErrDirectoryNotFound) {
		return fmt.Sprintf("Directory not found: %s", w.Dir)
	}
	return fmt.Sprintf("%s: %v", w.Dir, w.Err)
}

// Observer receives progress while scanning. Any method may be left nil.
type Observer struct {
	DirectoryScanned func(dir string)
	FileAdded        func(ref domain.TestFileRef)
	Warned           func(w Warning)
}

// Result is the output of a scan
type Result struct {
	Files    []domain.TestFileRef
	Warnings []Warning
}

// Scanner finds test files in an ordered list of directories
type Scanner struct {
	suffix   string
	log      log.Logger
	observer Observer
}

// NewScanner creates a new Scanner matching files that end with suffix
func NewScanner(suffix string, logger log.Logger) *Scanner {
	return &Scanner{suffix: suffix, log: logger}
}

// SetObserver sets the progress observer
func (s *Scanner) SetObserver(o Observer) {
	s.observer = o
}

// Scan lists each directory (relative to baseDir) in order and returns the files
// whose name ends with the suffix. Directories are not walked recursively. Missing
// directories produce a warning and the scan continues.
func (s *Scanner) Scan(baseDir string, dirs []string) (Result, error) {
	var result Result
	seen := make(map[string]bool)

	for _, dir := range dirs {
		full := dir
		if !filepath.IsAbs(full) {
			full = filepath.Join(baseDir, dir)
		}

		info, err := os.Stat(full)
		if err != nil || !info.IsDir() {
			w := Warning{Dir: dir, Err: ErrDirectoryNotFound}
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				w.Err = fmt.Errorf("%w: %v", ErrDirectoryNotFound, err)
			}
			s.warn(&result, w)
			continue
		}

		if s.observer.DirectoryScanned != nil {
			s.observer.DirectoryScanned(dir)
		}
		s.log.Debug("Scanning directory", "dir", dir, "path", full)

		entries, err := os.ReadDir(full)
		if err != nil {
			return result, fmt.Errorf("read directory %s: %w", dir, err)
		}

		for _, entry := range entries {
			if !s.matches(full, entry) {
				continue
			}
			path := filepath.Join(full, entry.Name())
			key := filepath.Clean(path)
			if abs, err := filepath.Abs(path); err == nil {
				key = abs
			}
			if seen[key] {
				continue
			}
			seen[key] = true

			ref := domain.NewTestFileRef(path, dir)
			result.Files = append(result.Files, ref)
			if s.observer.FileAdded != nil {
				s.observer.FileAdded(ref)
			}
			s.log.Debug("Adding test file", "path", path)
		}
	}

	return result, nil
}

func (s *Scanner) matches(dir string, entry fs.DirEntry) bool {
	if !strings.HasSuffix(entry.Name(), s.suffix) {
		return false
	}
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	// Follow the link, only links to regular files are tests
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	if err != nil {
		s.log.Debug("Skipping unreadable symlink", "name", entry.Name(), "err", err)
		return false
	}
	return info.Mode().IsRegular()
}

func (s *Scanner) warn(result *Result, w Warning) {
	result.Warnings = append(result.Warnings, w)
	s.log.Warn("Skipping test directory", "dir", w.Dir, "err", w.Err)
	if s.observer.Warned != nil {
		s.observer.Warned(w)
	}
}
