package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS invocations (
	id          TEXT PRIMARY KEY,
	call_site   TEXT NOT NULL,
	signature   TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	tokens      TEXT NOT NULL,
	code        TEXT NOT NULL,
	message     TEXT NOT NULL,
	bound       INTEGER NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_invocations_signature ON invocations (signature);
CREATE INDEX IF NOT EXISTS idx_invocations_created_at ON invocations (created_at);
`

const selectColumns = "SELECT id, call_site, signature, fingerprint, tokens, code, message, bound, created_at FROM invocations"

// Store is a history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history %s: %w", path, err)
	}
	// One writer at a time; SQLite would otherwise report SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema in %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts rec.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	tokens, err := json.Marshal(rec.Tokens)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO invocations (id, call_site, signature, fingerprint, tokens, code, message, bound, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		rec.ID, rec.CallSite, rec.Signature, rec.Fingerprint, string(tokens),
		rec.Code, rec.Message, rec.Bound, rec.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("saving invocation %s: %w", rec.ID, err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Record, error) {
	return s.query(ctx, selectColumns+" ORDER BY created_at DESC LIMIT ?", limit)
}

// BySignature returns up to limit records with the given signature,
// newest first.
func (s *Store) BySignature(ctx context.Context, signature string, limit int) ([]*Record, error) {
	return s.query(ctx, selectColumns+" WHERE signature = ? ORDER BY created_at DESC LIMIT ?", signature, limit)
}

// PruneBefore deletes records created before t and returns how many were
// removed.
func (s *Store) PruneBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM invocations WHERE created_at < ?", t.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("pruning history: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) query(ctx context.Context, query string, args ...interface{}) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var (
			rec     Record
			tokens  string
			created int64
		)
		if err := rows.Scan(&rec.ID, &rec.CallSite, &rec.Signature, &rec.Fingerprint,
			&tokens, &rec.Code, &rec.Message, &rec.Bound, &created); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(tokens), &rec.Tokens); err != nil {
			return nil, fmt.Errorf("decoding tokens of %s: %w", rec.ID, err)
		}
		rec.CreatedAt = time.Unix(0, created)
		records = append(records, &rec)
	}
	return records, rows.Err()
}
