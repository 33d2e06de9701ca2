package shim

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// EntryPoint is an in-process test body. Anything written to w is captured as output.
type EntryPoint func(ctx context.Context, w io.Writer) error

// FuncLoader runs entry points registered under a file's display name,
// without spawning a process.
type FuncLoader struct {
	mu      sync.RWMutex
	entries map[string]EntryPoint
}

// NewFuncLoader creates an empty FuncLoader
func NewFuncLoader() *FuncLoader {
	return &FuncLoader{entries: make(map[string]EntryPoint)}
}

// Register binds an entry point to a file name, e.g. "login_test.js"
func (l *FuncLoader) Register(name string, fn EntryPoint) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[name] = fn
}

// Load runs the entry point registered for the unit
func (l *FuncLoader) Load(ctx context.Context, unit *TestUnit) (string, error) {
	l.mu.RLock()
	fn, ok := l.entries[unit.Name()]
	l.mu.RUnlock()
	if !ok {
		return "", &LoadError{Path: unit.AbsPath, ExitCode: -1, Err: fmt.Errorf("no entry point registered for %s", unit.Name())}
	}

	var buf bytes.Buffer
	if err := fn(ctx, &buf); err != nil {
		return buf.String(), &LoadError{Path: unit.AbsPath, ExitCode: 1, Err: err}
	}
	return buf.String(), nil
}
