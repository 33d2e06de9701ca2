package execution

import (
	"context"

	"scriptest/internal/domain"
	"scriptest/internal/shim"
)

// Executor executes test units and returns the aggregated run
type Executor interface {
	Execute(ctx context.Context, units []*shim.TestUnit) (domain.RunResult, error)
}

// Progress receives running counts while units complete
type Progress interface {
	Update(completed, passed, failed int)
	Finish()
}

// LogWriter persists a unit's captured output and returns where it was written
type LogWriter interface {
	WriteLog(index int, name, output string) (string, error)
}
