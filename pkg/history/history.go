// Package history keeps a local ledger of sync runs in SQLite so operators
// can see which hosts failed in earlier runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/sitelogs/pkg/errors"
	"github.com/DeBrosOfficial/sitelogs/pkg/fleetsync"
	"github.com/DeBrosOfficial/sitelogs/pkg/logs"
)

const schema = `
CREATE TABLE IF NOT EXISTS sync_runs (
	id          TEXT PRIMARY KEY,
	site        TEXT NOT NULL,
	env         TEXT NOT NULL,
	destination TEXT NOT NULL,
	succeeded   INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	started_at  INTEGER NOT NULL,
	finished_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sync_runs_started ON sync_runs(started_at);
CREATE TABLE IF NOT EXISTS sync_hosts (
	run_id  TEXT NOT NULL REFERENCES sync_runs(id),
	address TEXT NOT NULL,
	role    TEXT NOT NULL,
	error   TEXT NOT NULL DEFAULT '',
	skipped INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (run_id, role, address)
);
`

// schemaVersion is stored in PRAGMA user_version.
const schemaVersion = 1

// Ledgers before version 1 keyed hosts by address alone, which rejected runs
// where an app and a db host share an address.
var rebuildHosts = []string{
	`CREATE TABLE sync_hosts_new (
		run_id  TEXT NOT NULL REFERENCES sync_runs(id),
		address TEXT NOT NULL,
		role    TEXT NOT NULL,
		error   TEXT NOT NULL DEFAULT '',
		skipped INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, role, address)
	)`,
	`INSERT INTO sync_hosts_new (run_id, address, role, error) SELECT run_id, address, role, error FROM sync_hosts`,
	`DROP TABLE sync_hosts`,
	`ALTER TABLE sync_hosts_new RENAME TO sync_hosts`,
}

// Run is one recorded sync run.
type Run struct {
	ID          string
	Env         logs.EnvironmentRef
	Destination string
	Succeeded   int
	Failed      int
	Started     time.Time
	Finished    time.Time
}

// Duration is the wall time of the run.
func (r Run) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// HostResult is the outcome of one host within a run. Error is empty on
// success. Skipped hosts were never started because the run was cancelled.
type HostResult struct {
	Host    logs.Host
	Error   string
	Skipped bool
}

// Store is the run ledger.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens or creates the ledger at path.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		logger.Warn("Failed to enable WAL mode", zap.Error(err))
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}
	if err := migrate(db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

func migrate(db *sql.DB, logger *zap.Logger) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return err
	}
	if version >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, stmt := range rebuildHosts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logger.Debug("Migrated history database", zap.Int("from", version), zap.Int("to", schemaVersion))
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a finished sync report.
func (s *Store) Record(ctx context.Context, r *fleetsync.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sync_runs (id, site, env, destination, succeeded, failed, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID.String(), r.Env.Site, r.Env.Env, r.Destination,
		len(r.Succeeded), len(r.Failed), r.Started.UnixNano(), r.Finished.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	insertHost := `INSERT INTO sync_hosts (run_id, address, role, error, skipped) VALUES (?, ?, ?, ?, ?)`
	for _, h := range r.Succeeded {
		if _, err := tx.ExecContext(ctx, insertHost, r.RunID.String(), h.Address, string(h.Role), "", false); err != nil {
			return fmt.Errorf("failed to record host %s: %w", h, err)
		}
	}
	for _, f := range r.Failed {
		if _, err := tx.ExecContext(ctx, insertHost, r.RunID.String(), f.Host.Address, string(f.Host.Role), f.Err.Error(), false); err != nil {
			return fmt.Errorf("failed to record host %s: %w", f.Host, err)
		}
	}
	for _, h := range r.Skipped {
		if _, err := tx.ExecContext(ctx, insertHost, r.RunID.String(), h.Address, string(h.Role), "", true); err != nil {
			return fmt.Errorf("failed to record host %s: %w", h, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Debug("Recorded sync run", zap.String("run_id", r.RunID.String()))
	return nil
}

// Recent returns up to limit runs, newest first. An empty site returns runs
// of every site.
func (s *Store) Recent(ctx context.Context, site string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, site, env, destination, succeeded, failed, started_at, finished_at
		FROM sync_runs
		WHERE ? = '' OR site = ?
		ORDER BY started_at DESC
		LIMIT ?`, site, site, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished int64
		)
		if err := rows.Scan(&r.ID, &r.Env.Site, &r.Env.Env, &r.Destination, &r.Succeeded, &r.Failed, &started, &finished); err != nil {
			return nil, err
		}
		r.Started = time.Unix(0, started)
		r.Finished = time.Unix(0, finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Hosts returns the per-host outcome of a run, app hosts first.
func (s *Store) Hosts(ctx context.Context, runID string) ([]HostResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT address, role, error, skipped FROM sync_hosts
		WHERE run_id = ?
		ORDER BY role, address`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query hosts: %w", err)
	}
	defer rows.Close()

	var out []HostResult
	for rows.Next() {
		var (
			hr   HostResult
			role string
		)
		if err := rows.Scan(&hr.Host.Address, &role, &hr.Error, &hr.Skipped); err != nil {
			return nil, err
		}
		hr.Host.Role = logs.HostRole(role)
		out = append(out, hr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.NewNotFoundError("sync run", runID)
	}
	return out, nil
}
