package execution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptest/internal/domain"
	"scriptest/internal/logging"
	"scriptest/internal/shim"
	"scriptest/internal/workspace"
)

type recordingProgress struct {
	mu       sync.Mutex
	updates  int
	last     [3]int
	finished bool
}

func (p *recordingProgress) Update(completed, passed, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates++
	p.last = [3]int{completed, passed, failed}
}

func (p *recordingProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finished = true
}

type failingLogs struct{}

func (failingLogs) WriteLog(int, string, string) (string, error) {
	return "", errors.New("read-only file system")
}

func buildUnits(t *testing.T, loader shim.Loader, names ...string) []*shim.TestUnit {
	t.Helper()
	var refs []domain.TestFileRef
	for _, n := range names {
		refs = append(refs, domain.NewTestFileRef(filepath.Join("tests", n), "tests"))
	}
	units, err := shim.Generate(refs, loader)
	require.NoError(t, err)
	return units
}

func resultNames(r domain.RunResult) []string {
	var out []string
	for _, u := range r.Units {
		out = append(out, u.Ref.Name)
	}
	return out
}

func TestWorkerPool_Execute(t *testing.T) {
	loader := shim.NewFuncLoader()
	var calls atomic.Int32
	for i, name := range []string{"a_test.js", "b_test.js", "c_test.js", "d_test.js", "e_test.js"} {
		delay := time.Duration(5-i) * 3 * time.Millisecond
		loader.Register(name, func(ctx context.Context, w io.Writer) error {
			calls.Add(1)
			time.Sleep(delay)
			fmt.Fprintf(w, "ran %s\n", name)
			return nil
		})
	}
	loader.Register("boom_test.js", func(ctx context.Context, w io.Writer) error {
		calls.Add(1)
		return errors.New("boom")
	})

	names := []string{"a_test.js", "boom_test.js", "b_test.js", "c_test.js", "unregistered_test.js", "d_test.js", "e_test.js"}

	for _, workers := range []int{1, 3, 16} {
		t.Run(fmt.Sprintf("%d workers", workers), func(t *testing.T) {
			calls.Store(0)
			units := buildUnits(t, loader, names...)
			progress := &recordingProgress{}

			pool := NewWorkerPool(workers, "run-1", nil, logging.Discard())
			pool.SetProgress(progress)

			result, err := pool.Execute(context.Background(), units)
			require.NoError(t, err)

			// One outcome per unit, in discovery order
			assert.Equal(t, names, resultNames(result))
			assert.Equal(t, 7, result.Total())
			assert.Equal(t, 2, result.Failed())
			assert.Equal(t, 5, result.Passed())
			assert.False(t, result.OK())
			assert.Equal(t, int32(6), calls.Load(), "each registered entry point runs once")

			for i, u := range result.Units {
				assert.Equal(t, i, u.Index)
			}
			assert.Contains(t, result.Units[1].Outcome.ErrorMessage(), "boom")
			assert.Contains(t, result.Units[4].Outcome.ErrorMessage(), "no entry point registered")

			assert.Equal(t, 7, progress.updates)
			assert.Equal(t, [3]int{7, 5, 2}, progress.last)
			assert.True(t, progress.finished)
			assert.Equal(t, "run-1", result.RunID)
		})
	}
}

func TestWorkerPool_EmptyRun(t *testing.T) {
	pool := NewWorkerPool(4, "run", nil, logging.Discard())
	result, err := pool.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total())
	assert.True(t, result.OK())
}

func TestWorkerPool_WritesUnitLogs(t *testing.T) {
	ws, err := workspace.Prepare(filepath.Join(t.TempDir(), "report"))
	require.NoError(t, err)

	loader := shim.NewFuncLoader()
	loader.Register("same_test.js", func(ctx context.Context, w io.Writer) error {
		fmt.Fprint(w, "output")
		return nil
	})

	// Two files with the same name from different directories get distinct logs
	units := buildUnits(t, loader, "same_test.js", "same_test.js")
	result, err := NewWorkerPool(2, "run", ws, logging.Discard()).Execute(context.Background(), units)
	require.NoError(t, err)

	require.NotEmpty(t, result.Units[0].LogPath)
	assert.NotEqual(t, result.Units[0].LogPath, result.Units[1].LogPath)
	for _, u := range result.Units {
		data, err := os.ReadFile(u.LogPath)
		require.NoError(t, err)
		assert.Equal(t, "output", string(data))
	}
}

func TestWorkerPool_LogWriteFailureKeepsOutcome(t *testing.T) {
	loader := shim.NewFuncLoader()
	loader.Register("a_test.js", func(ctx context.Context, w io.Writer) error { return nil })

	result, err := NewWorkerPool(1, "run", failingLogs{}, logging.Discard()).
		Execute(context.Background(), buildUnits(t, loader, "a_test.js"))
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Empty(t, result.Units[0].LogPath)
}

func TestWorkerPool_IdempotentTotals(t *testing.T) {
	loader := shim.NewFuncLoader()
	loader.Register("a_test.js", func(ctx context.Context, w io.Writer) error { return nil })
	loader.Register("b_test.js", func(ctx context.Context, w io.Writer) error { return errors.New("no") })

	pool := NewWorkerPool(2, "run", nil, logging.Discard())
	first, err := pool.Execute(context.Background(), buildUnits(t, loader, "a_test.js", "b_test.js"))
	require.NoError(t, err)
	second, err := pool.Execute(context.Background(), buildUnits(t, loader, "a_test.js", "b_test.js"))
	require.NoError(t, err)

	assert.Equal(t, first.Total(), second.Total())
	assert.Equal(t, first.Failed(), second.Failed())
}

func TestWorkerPool_CancelledRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var started atomic.Int32
	loader := shim.NewFuncLoader()
	for _, n := range []string{"a_test.js", "b_test.js", "c_test.js"} {
		loader.Register(n, func(ctx context.Context, w io.Writer) error {
			started.Add(1)
			cancel()
			return nil
		})
	}

	pool := NewWorkerPool(1, "run", nil, logging.Discard())
	_, err := pool.Execute(ctx, buildUnits(t, loader, "a_test.js", "b_test.js", "c_test.js"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), started.Load(), "no unit starts after cancellation")
}
