package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"agora/internal/domain"
)

// Journal persists the actions each agent has taken, so decision prompts
// can remind an agent what it has been up to lately. It is best-effort
// local state; losing it only costs prompt context.
type Journal struct {
	db *sql.DB
}

// Open opens (or creates) the journal database at dbPath and runs the
// schema migration.
func Open(dbPath string) (*Journal, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	// WAL mode for better concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal db: %w", err)
	}
	return &Journal{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS actions (
			id         TEXT PRIMARY KEY,
			agent_id   INTEGER NOT NULL,
			kind       TEXT NOT NULL,
			detail     TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_actions_agent ON actions(agent_id, created_at DESC)
	`)
	return err
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores one action for an agent.
func (j *Journal) Record(ctx context.Context, agentID int64, kind, detail string) error {
	now := time.Now().UTC()
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO actions (id, agent_id, kind, detail, created_at) VALUES (?, ?, ?, ?, ?)",
		ulid.Make().String(), agentID, kind, detail, now.Format(time.RFC3339Nano),
	)
	return err
}

// Recent returns an agent's last n actions, newest first.
func (j *Journal) Recent(ctx context.Context, agentID int64, n int) ([]domain.ActionRecord, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := j.db.QueryContext(ctx,
		"SELECT kind, detail, created_at FROM actions WHERE agent_id = ? ORDER BY created_at DESC LIMIT ?",
		agentID, n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.ActionRecord
	for rows.Next() {
		var rec domain.ActionRecord
		var at string
		if err := rows.Scan(&rec.Kind, &rec.Detail, &at); err != nil {
			return nil, err
		}
		rec.At, _ = time.Parse(time.RFC3339Nano, at)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Prune deletes actions older than the cutoff and returns how many rows
// were removed.
func (j *Journal) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res, err := j.db.ExecContext(ctx,
		"DELETE FROM actions WHERE created_at < ?",
		cutoff.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
