package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"scriptest/internal/domain"
)

// schema is portable between MySQL and SQLite
var schema = []string{
	`CREATE TABLE IF NOT EXISTS scriptest_runs (
		run_id VARCHAR(64) NOT NULL PRIMARY KEY,
		seq BIGINT NOT NULL,
		started_at VARCHAR(64) NOT NULL,
		total INTEGER NOT NULL,
		passed INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		duration VARCHAR(64) NOT NULL,
		duration_seconds DOUBLE NOT NULL,
		workers INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS scriptest_units (
		run_id VARCHAR(64) NOT NULL,
		position INTEGER NOT NULL,
		name VARCHAR(255) NOT NULL,
		file_path TEXT NOT NULL,
		status VARCHAR(16) NOT NULL,
		duration_seconds DOUBLE NOT NULL,
		log_path TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS scriptest_failures (
		run_id VARCHAR(64) NOT NULL,
		position INTEGER NOT NULL,
		test_name VARCHAR(255) NOT NULL,
		file_path TEXT NOT NULL,
		message TEXT NOT NULL,
		error_details TEXT NOT NULL,
		stack_trace TEXT NOT NULL,
		file TEXT NOT NULL,
		line INTEGER NOT NULL,
		resolved INTEGER NOT NULL
	)`,
}

// SQLStorage keeps a history of runs in a SQL database. Load returns the latest run.
type SQLStorage struct {
	db *sql.DB
}

// OpenSQLStorage connects with the given driver ("mysql" or "sqlite") and creates the tables
func OpenSQLStorage(driver, dsn string) (*SQLStorage, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s results database: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s results database: %w", driver, err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create results tables: %w", err)
		}
	}
	return &SQLStorage{db: db}, nil
}

// Close closes the database handle
func (s *SQLStorage) Close() error {
	return s.db.Close()
}

// Save records the run as the newest entry in the history
func (s *SQLStorage) Save(result domain.RunResult, failures []domain.TestFailure) error {
	return s.SaveOutput(domain.NewTestResultsOutput(result, failures))
}

// SaveOutput writes (or rewrites) one run and all of its rows
func (s *SQLStorage) SaveOutput(output *domain.TestResultsOutput) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	runID := output.Meta.RunID
	for _, table := range []string{"scriptest_failures", "scriptest_units", "scriptest_runs"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE run_id = ?", runID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	m := output.Meta
	if _, err := tx.Exec(
		`INSERT INTO scriptest_runs (run_id, seq, started_at, total, passed, failed, duration, duration_seconds, workers)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, time.Now().UnixNano(), m.Timestamp, m.TotalTestFiles, m.PassedTestFiles, m.FailedTestFiles,
		m.Duration, m.DurationSeconds, m.Workers,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, u := range output.Units {
		if _, err := tx.Exec(
			`INSERT INTO scriptest_units (run_id, position, name, file_path, status, duration_seconds, log_path)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, i, u.Name, u.FilePath, string(u.Status), u.DurationSeconds, u.LogPath,
		); err != nil {
			return fmt.Errorf("insert unit %s: %w", u.Name, err)
		}
	}

	for i, f := range output.Details {
		stack, err := json.Marshal(f.StackTrace)
		if err != nil {
			return fmt.Errorf("marshal stack trace: %w", err)
		}
		resolved := 0
		if f.Resolved {
			resolved = 1
		}
		if _, err := tx.Exec(
			`INSERT INTO scriptest_failures (run_id, position, test_name, file_path, message, error_details, stack_trace, file, line, resolved)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, i, f.TestName, f.FilePath, f.Message, f.ErrorDetails, string(stack), f.File, f.Line, resolved,
		); err != nil {
			return fmt.Errorf("insert failure %s: %w", f.TestName, err)
		}
	}

	return tx.Commit()
}

// Load reads the most recently saved run
func (s *SQLStorage) Load() (*domain.TestResultsOutput, error) {
	var out domain.TestResultsOutput
	m := &out.Meta
	err := s.db.QueryRow(
		`SELECT run_id, started_at, total, passed, failed, duration, duration_seconds, workers
		 FROM scriptest_runs ORDER BY seq DESC LIMIT 1`,
	).Scan(&m.RunID, &m.Timestamp, &m.TotalTestFiles, &m.PassedTestFiles, &m.FailedTestFiles,
		&m.Duration, &m.DurationSeconds, &m.Workers)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoResults
	}
	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}

	units, err := s.loadUnits(m.RunID)
	if err != nil {
		return nil, err
	}
	out.Units = units

	failures, err := s.loadFailures(m.RunID)
	if err != nil {
		return nil, err
	}
	out.Details = failures
	return &out, nil
}

func (s *SQLStorage) loadUnits(runID string) ([]domain.UnitRecord, error) {
	rows, err := s.db.Query(
		`SELECT name, file_path, status, duration_seconds, log_path
		 FROM scriptest_units WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("load units: %w", err)
	}
	defer rows.Close()

	units := []domain.UnitRecord{}
	for rows.Next() {
		var u domain.UnitRecord
		var status string
		if err := rows.Scan(&u.Name, &u.FilePath, &status, &u.DurationSeconds, &u.LogPath); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		u.Status = domain.Status(status)
		units = append(units, u)
	}
	return units, rows.Err()
}

func (s *SQLStorage) loadFailures(runID string) ([]domain.TestFailure, error) {
	rows, err := s.db.Query(
		`SELECT test_name, file_path, message, error_details, stack_trace, file, line, resolved
		 FROM scriptest_failures WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("load failures: %w", err)
	}
	defer rows.Close()

	failures := []domain.TestFailure{}
	for rows.Next() {
		var f domain.TestFailure
		var stack string
		var resolved int
		if err := rows.Scan(&f.TestName, &f.FilePath, &f.Message, &f.ErrorDetails, &stack, &f.File, &f.Line, &resolved); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		if err := json.Unmarshal([]byte(stack), &f.StackTrace); err != nil {
			return nil, fmt.Errorf("parse stack trace: %w", err)
		}
		f.Resolved = resolved == 1
		failures = append(failures, f)
	}
	return failures, rows.Err()
}
