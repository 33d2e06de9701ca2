// Package shim turns discovered test files into executable test units.
//
// A TestUnit loads and runs its file exactly once through a Loader. Any error
// or panic raised while loading becomes the unit's Failed outcome; everything
// else is Passed.
package shim

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"scriptest/internal/domain"
)

// State is the lifecycle state of a TestUnit
type State int

const (
	StateCreated State = iota
	StateRunning
	StatePassed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StatePassed:
		return "passed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Loader loads and executes the file behind a unit, returning any captured output
type Loader interface {
	Load(ctx context.Context, unit *TestUnit) (output string, err error)
}

// TestUnit wraps one discovered file
type TestUnit struct {
	Ref     domain.TestFileRef
	AbsPath string
	Index   int

	loader  Loader
	once    sync.Once
	mu      sync.Mutex
	state   State
	outcome domain.Outcome
}

// NewTestUnit resolves the ref's path and wraps it
func NewTestUnit(ref domain.TestFileRef, index int, loader Loader) (*TestUnit, error) {
	abs, err := filepath.Abs(ref.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", ref.Path, err)
	}
	return &TestUnit{
		Ref:     ref,
		AbsPath: abs,
		Index:   index,
		loader:  loader,
		state:   StateCreated,
	}, nil
}

// Generate produces one unit per ref, in order
func Generate(refs []domain.TestFileRef, loader Loader) ([]*TestUnit, error) {
	units := make([]*TestUnit, 0, len(refs))
	for i, ref := range refs {
		u, err := NewTestUnit(ref, i, loader)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, nil
}

// Name returns the display name
func (u *TestUnit) Name() string {
	return u.Ref.Name
}

// State returns the current lifecycle state
func (u *TestUnit) State() State {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Outcome returns the recorded outcome. It is the zero value until the unit finished.
func (u *TestUnit) Outcome() domain.Outcome {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.outcome
}

// Execute runs the unit once. Later calls return the recorded outcome without re-running.
func (u *TestUnit) Execute(ctx context.Context) domain.Outcome {
	u.once.Do(func() {
		u.setState(StateRunning)
		start := time.Now()
		output, err := u.load(ctx)

		outcome := domain.Outcome{
			Status:   domain.StatusPassed,
			Output:   output,
			Duration: time.Since(start),
		}
		if err != nil {
			outcome.Status = domain.StatusFailed
			outcome.Err = err
		}

		u.mu.Lock()
		u.outcome = outcome
		if outcome.Passed() {
			u.state = StatePassed
		} else {
			u.state = StateFailed
		}
		u.mu.Unlock()
	})
	return u.Outcome()
}

func (u *TestUnit) load(ctx context.Context) (output string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &LoadError{
				Path: u.AbsPath,
				Err:  fmt.Errorf("unexpected panic: %+v\n%s", r, string(debug.Stack())),
			}
		}
	}()
	if u.loader == nil {
		return "", &LoadError{Path: u.AbsPath, Err: fmt.Errorf("no loader configured")}
	}
	return u.loader.Load(ctx, u)
}

func (u *TestUnit) setState(s State) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state = s
}
