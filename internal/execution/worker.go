package execution

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"scriptest/internal/domain"
	"scriptest/internal/shim"
)

// WorkerPool executes units with a fixed number of workers.
// With one worker units run sequentially in discovery order.
type WorkerPool struct {
	workers  int
	runID    string
	logs     LogWriter
	progress Progress
	log      log.Logger
}

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(workers int, runID string, logs LogWriter, logger log.Logger) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	return &WorkerPool{
		workers: workers,
		runID:   runID,
		logs:    logs,
		log:     logger.New("component", "worker-pool"),
	}
}

// SetProgress sets the progress reporter for the worker pool
func (wp *WorkerPool) SetProgress(progress Progress) {
	wp.progress = progress
}

// Execute runs every unit exactly once. The returned units are in the order given,
// whatever order they completed in. A failing unit never stops the run.
// Once ctx is cancelled no further unit starts and an error wrapping ctx.Err() is returned.
func (wp *WorkerPool) Execute(ctx context.Context, units []*shim.TestUnit) (domain.RunResult, error) {
	result := domain.RunResult{
		RunID:     wp.runID,
		StartedAt: time.Now(),
		Workers:   wp.workers,
		Units:     make([]domain.UnitResult, len(units)),
	}
	if len(units) == 0 {
		return result, nil
	}

	workerCount := wp.workers
	if workerCount > len(units) {
		workerCount = len(units)
	}

	queue := make(chan int, len(units))
	for i := range units {
		queue <- i
	}
	close(queue)

	var mu sync.Mutex
	var completed, passed, failed int

	var wg sync.WaitGroup
	for w := 1; w <= workerCount; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := range queue {
				// Drain the queue without starting anything once cancelled
				if ctx.Err() != nil {
					continue
				}
				unitResult := wp.run(ctx, units[i], i, workerID)

				mu.Lock()
				// Each slot is written by exactly one worker
				result.Units[i] = unitResult
				completed++
				if unitResult.Outcome.Passed() {
					passed++
				} else {
					failed++
				}
				if wp.progress != nil {
					wp.progress.Update(completed, passed, failed)
				}
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	if wp.progress != nil {
		wp.progress.Finish()
	}
	result.Duration = time.Since(result.StartedAt)
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run cancelled after %d of %d units: %w", completed, len(units), err)
	}
	return result, nil
}

func (wp *WorkerPool) run(ctx context.Context, unit *shim.TestUnit, index, workerID int) domain.UnitResult {
	wp.log.Debug("Running test unit", "name", unit.Name(), "worker", workerID)
	outcome := unit.Execute(ctx)

	unitResult := domain.UnitResult{
		Ref:     unit.Ref,
		Index:   index,
		Outcome: outcome,
	}

	if wp.logs != nil {
		path, err := wp.logs.WriteLog(index, unit.Name(), outcome.Output)
		if err != nil {
			wp.log.Warn("Failed to write unit log", "name", unit.Name(), "err", err)
		} else {
			unitResult.LogPath = path
		}
	}

	if outcome.Passed() {
		wp.log.Debug("Test unit passed", "name", unit.Name(), "duration", outcome.Duration)
	} else {
		wp.log.Info("Test unit failed", "name", unit.Name(), "duration", outcome.Duration, "err", outcome.Err)
	}
	return unitResult
}
