package storage

import (
	"errors"
	"fmt"

	"scriptest/internal/config"
	"scriptest/internal/domain"
)

// ErrNoResults is returned by Load when no run has been stored yet
var ErrNoResults = errors.New("no stored test results")

// Storage persists and loads test run results (e.g. for the failures viewer and run --failed).
type Storage interface {
	Save(result domain.RunResult, failures []domain.TestFailure) error
	Load() (*domain.TestResultsOutput, error)
	// SaveOutput writes the full output (e.g. after marking failures resolved).
	SaveOutput(output *domain.TestResultsOutput) error
}

// New returns the storage selected by the config's driver
func New(cfg *config.Config) (Storage, error) {
	switch cfg.Storage.Driver {
	case "json", "":
		return NewJSONStorage(cfg.GetResultsPath()), nil
	case "mysql", "sqlite":
		return OpenSQLStorage(cfg.Storage.Driver, cfg.Storage.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
