package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/narrative/pkg/narrative/internalerr"
	"github.com/cognicore/narrative/pkg/narrative/mention"
	"github.com/cognicore/narrative/pkg/narrative/report"
	"github.com/cognicore/narrative/pkg/narrative/store"
)

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite database with WAL mode enabled and creates the
// schema if needed.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS mention_cache (
	cache_key TEXT PRIMARY KEY,
	fetched_at TEXT NOT NULL,
	payload TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS briefs (
	id TEXT PRIMARY KEY,
	brand TEXT NOT NULL,
	mode TEXT,
	created_at TEXT NOT NULL,
	payload TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_briefs_brand_created ON briefs(brand COLLATE NOCASE, created_at);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// GetCachedMentions returns the cached mentions for key if younger than maxAge.
func (s *sqliteStore) GetCachedMentions(ctx context.Context, key string, maxAge time.Duration, now time.Time) ([]*mention.Mention, bool, error) {
	var fetchedAt, payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT fetched_at, payload FROM mention_cache WHERE cache_key = ?`, key,
	).Scan(&fetchedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	at, err := time.Parse(timeLayout, fetchedAt)
	if err != nil {
		return nil, false, fmt.Errorf("cache entry %s: bad timestamp %q: %w", key, fetchedAt, err)
	}
	if !store.Fresh(at, now, maxAge) {
		return nil, false, nil
	}

	var mentions []*mention.Mention
	if err := json.Unmarshal([]byte(payload), &mentions); err != nil {
		return nil, false, fmt.Errorf("cache entry %s: %w", key, err)
	}
	return mentions, true, nil
}

// PutCachedMentions inserts or replaces the cache entry for key.
func (s *sqliteStore) PutCachedMentions(ctx context.Context, key string, mentions []*mention.Mention, at time.Time) error {
	if mentions == nil {
		mentions = []*mention.Mention{}
	}
	payload, err := json.Marshal(mentions)
	if err != nil {
		return err
	}

	const stmt = `
INSERT INTO mention_cache (cache_key, fetched_at, payload)
VALUES (?, ?, ?)
ON CONFLICT(cache_key) DO UPDATE SET
	fetched_at=excluded.fetched_at,
	payload=excluded.payload;
`
	_, err = s.db.ExecContext(ctx, stmt, key, at.UTC().Format(timeLayout), string(payload))
	return err
}

// SaveBrief inserts or replaces a brief by id.
func (s *sqliteStore) SaveBrief(ctx context.Context, b report.Brief) error {
	if b.ID == "" {
		return fmt.Errorf("save brief: %w: empty id", internalerr.ErrInvalidInput)
	}
	payload, err := json.Marshal(b)
	if err != nil {
		return err
	}

	const stmt = `
INSERT INTO briefs (id, brand, mode, created_at, payload)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	brand=excluded.brand,
	mode=excluded.mode,
	created_at=excluded.created_at,
	payload=excluded.payload;
`
	_, err = s.db.ExecContext(ctx, stmt,
		b.ID,
		b.Brand,
		string(b.Mode),
		b.CreatedAt.UTC().Format(timeLayout),
		string(payload),
	)
	return err
}

// GetBrief returns a brief by id.
func (s *sqliteStore) GetBrief(ctx context.Context, id string) (report.Brief, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM briefs WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return report.Brief{}, fmt.Errorf("brief %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return report.Brief{}, err
	}
	return decodeBrief(payload)
}

// ListBriefs returns the newest briefs for brand (any brand when empty).
func (s *sqliteStore) ListBriefs(ctx context.Context, brand string, limit int) ([]report.Brief, error) {
	if limit <= 0 {
		limit = -1
	}

	query := `SELECT payload FROM briefs ORDER BY created_at DESC, id DESC LIMIT ?`
	args := []any{limit}
	if brand != "" {
		query = `SELECT payload FROM briefs WHERE brand = ? COLLATE NOCASE ORDER BY created_at DESC, id DESC LIMIT ?`
		args = []any{brand, limit}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []report.Brief
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		b, err := decodeBrief(payload)
		if err != nil {
			return nil, err
		}
		results = append(results, b)
	}
	return results, rows.Err()
}

func decodeBrief(payload string) (report.Brief, error) {
	var b report.Brief
	if err := json.Unmarshal([]byte(payload), &b); err != nil {
		return report.Brief{}, fmt.Errorf("decode brief: %w", err)
	}
	return b, nil
}
