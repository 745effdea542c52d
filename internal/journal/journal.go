// Package journal persists shell transcript entries in sqlite so history
// survives restarts.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/five82/handset/internal/history"
)

// Record is a persisted transcript entry.
type Record struct {
	Session string
	history.Entry
}

// Journal writes entries for one session. Its Record method satisfies
// history.Recorder.
type Journal struct {
	db      *sql.DB
	session string
}

var _ history.Recorder = (*Journal)(nil)

// Open opens or creates the journal database at path and applies migrations.
// Every Journal gets a fresh session id.
func Open(ctx context.Context, path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil && !errors.Is(err, os.ErrNotExist) {
		_ = db.Close()
		return nil, fmt.Errorf("chmod journal: %w", err)
	}
	if err := ApplyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Journal{db: db, session: uuid.NewString()}, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Session returns the id stamped on entries written by this Journal.
func (j *Journal) Session() string {
	return j.session
}

// Record inserts e. Re-recording the same entry id is a no-op.
func (j *Journal) Record(ctx context.Context, e history.Entry) error {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO entries(entry_id, session_id, kind, text, recorded_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, j.session, e.Kind.String(), e.Text, at.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries across all sessions, oldest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := j.db.QueryContext(ctx, `
SELECT entry_id, session_id, kind, text, recorded_at FROM (
	SELECT seq, entry_id, session_id, kind, text, recorded_at
	FROM entries ORDER BY seq DESC LIMIT ?
) ORDER BY seq ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec  Record
			kind string
			at   string
		)
		if err := rows.Scan(&rec.ID, &rec.Session, &kind, &rec.Text, &at); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		rec.Kind = history.ParseKind(kind)
		if parsed, err := time.Parse(time.RFC3339Nano, at); err == nil {
			rec.At = parsed
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return out, nil
}

// Commands returns the texts of the most recent limit command entries, oldest
// first, for seeding the recall buffer.
func (j *Journal) Commands(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := j.db.QueryContext(ctx, `
SELECT text FROM (
	SELECT seq, text FROM entries WHERE kind = ? ORDER BY seq DESC LIMIT ?
) ORDER BY seq ASC`, history.KindCommand.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("query journal commands: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("scan journal command: %w", err)
		}
		out = append(out, text)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal commands: %w", err)
	}
	return out, nil
}
