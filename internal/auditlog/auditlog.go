// Package auditlog persists one row per completed tool call in a local
// sqlite database. Recording is best-effort: a failed insert is logged and
// never fails the call it describes.
package auditlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nextlevelbuilder/aosgate/internal/tools"
)

const schema = `
CREATE TABLE IF NOT EXISTS tool_calls (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	ts             TEXT NOT NULL,
	tool           TEXT NOT NULL,
	subject        TEXT NOT NULL DEFAULT '',
	correlation_id TEXT NOT NULL DEFAULT '',
	host           TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL,
	error_code     TEXT NOT NULL DEFAULT '',
	duration_ms    INTEGER NOT NULL,
	commands       TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_tool_calls_ts ON tool_calls(ts);
`

// Entry is one recorded call as returned by Recent.
type Entry struct {
	ID            int64     `json:"id"`
	Time          time.Time `json:"time"`
	Tool          string    `json:"tool"`
	Subject       string    `json:"subject,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Host          string    `json:"host,omitempty"`
	Status        string    `json:"status"`
	ErrorCode     string    `json:"error_code,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
	Commands      []string  `json:"commands"`
}

// Store is the sqlite-backed audit trail. Safe for concurrent use; sqlite
// serializes writers internally.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open creates or opens the database at path and ensures the schema.
func Open(path string, log *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init audit log schema: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Record implements tools.AuditRecorder.
func (s *Store) Record(ctx context.Context, entry tools.AuditEntry) {
	commands, err := json.Marshal(entry.Commands)
	if err != nil {
		commands = []byte("[]")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tool_calls (ts, tool, subject, correlation_id, host, status, error_code, duration_ms, commands)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Time.UTC().Format(time.RFC3339Nano),
		entry.Tool, entry.Subject, entry.CorrelationID, entry.Host,
		entry.Status, entry.ErrorCode, entry.DurationMS, string(commands))
	if err != nil {
		s.log.Error("auditlog.insert_failed", "tool", entry.Tool, "error", err)
	}
}

// Recent returns the latest calls, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ts, tool, subject, correlation_id, host, status, error_code, duration_ms, commands
		 FROM tool_calls ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var ts, commands string
		if err := rows.Scan(&e.ID, &ts, &e.Tool, &e.Subject, &e.CorrelationID,
			&e.Host, &e.Status, &e.ErrorCode, &e.DurationMS, &commands); err != nil {
			return nil, err
		}
		e.Time, _ = time.Parse(time.RFC3339Nano, ts)
		if err := json.Unmarshal([]byte(commands), &e.Commands); err != nil {
			e.Commands = []string{}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
