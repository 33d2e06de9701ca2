package domain

import "path/filepath"

// TestFileRef is a discovered test file
type TestFileRef struct {
	Path string // Path as discovered (base dir joined with the configured directory)
	Dir  string // Configured directory the file was found in
	Name string // Just the filename, used as the display name
}

// NewTestFileRef builds a ref for a file found in dir
func NewTestFileRef(path, dir string) TestFileRef {
	return TestFileRef{
		Path: path,
		Dir:  dir,
		Name: filepath.Base(path),
	}
}
