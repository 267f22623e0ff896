package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/semplan/pkg/semplan/internalerr"
	"github.com/cognicore/semplan/pkg/semplan/store"
)

// timeFormat has fixed width so text ordering matches time ordering.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// schema if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	// busy_timeout is per connection, so it goes in the DSN for every pooled one
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)"
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS plans (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	keywords INTEGER NOT NULL DEFAULT 0,
	budget REAL NOT NULL DEFAULT 0,
	body TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_plans_created ON plans(created_at);

CREATE TABLE IF NOT EXISTS suggestions (
	seed TEXT PRIMARY KEY,
	suggestions TEXT NOT NULL,
	fetched_at TEXT NOT NULL
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SavePlan inserts or updates a plan
func (s *sqliteStore) SavePlan(ctx context.Context, p store.Plan) error {
	if p.ID == "" {
		return fmt.Errorf("save plan: empty id: %w", internalerr.ErrInvalidInput)
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO plans (id, name, created_at, keywords, budget, body)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name=excluded.name,
	created_at=excluded.created_at,
	keywords=excluded.keywords,
	budget=excluded.budget,
	body=excluded.body;
`, p.ID, p.Name, p.CreatedAt.UTC().Format(timeFormat), p.Keywords, p.Budget, string(p.Body))
	return err
}

// GetPlan retrieves a plan with its body
func (s *sqliteStore) GetPlan(ctx context.Context, id string) (store.Plan, error) {
	var (
		p       store.Plan
		created string
		body    string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, name, created_at, keywords, budget, body FROM plans WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &created, &p.Keywords, &p.Budget, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Plan{}, fmt.Errorf("plan %q: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Plan{}, err
	}
	if p.CreatedAt, err = time.Parse(timeFormat, created); err != nil {
		return store.Plan{}, fmt.Errorf("plan %q: parse created_at: %w", id, err)
	}
	p.Body = []byte(body)
	return p, nil
}

// ListPlans returns the newest plans first, without bodies
func (s *sqliteStore) ListPlans(ctx context.Context, limit int) ([]store.Plan, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, created_at, keywords, budget
FROM plans
ORDER BY created_at DESC, id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Plan
	for rows.Next() {
		var (
			p       store.Plan
			created string
		)
		if err := rows.Scan(&p.ID, &p.Name, &created, &p.Keywords, &p.Budget); err != nil {
			return nil, err
		}
		if p.CreatedAt, err = time.Parse(timeFormat, created); err != nil {
			return nil, fmt.Errorf("plan %q: parse created_at: %w", p.ID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeletePlansBefore removes plans created before the cutoff
func (s *sqliteStore) DeletePlansBefore(ctx context.Context, before time.Time) (int, error) {
	return s.deleteBefore(ctx, `DELETE FROM plans WHERE created_at < ?`, before)
}

// PutSuggestions caches autocomplete suggestions for a seed
func (s *sqliteStore) PutSuggestions(ctx context.Context, seed string, suggestions []string, fetchedAt time.Time) error {
	if suggestions == nil {
		suggestions = []string{}
	}
	data, err := json.Marshal(suggestions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO suggestions (seed, suggestions, fetched_at)
VALUES (?, ?, ?)
ON CONFLICT(seed) DO UPDATE SET
	suggestions=excluded.suggestions,
	fetched_at=excluded.fetched_at;
`, seed, string(data), fetchedAt.UTC().Format(timeFormat))
	return err
}

// GetSuggestions returns cached suggestions no older than maxAge
func (s *sqliteStore) GetSuggestions(ctx context.Context, seed string, maxAge time.Duration, now time.Time) ([]string, bool, error) {
	var data, fetched string
	err := s.db.QueryRowContext(ctx, `
SELECT suggestions, fetched_at FROM suggestions WHERE seed = ?`, seed).Scan(&data, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	fetchedAt, err := time.Parse(timeFormat, fetched)
	if err != nil {
		return nil, false, fmt.Errorf("suggestions %q: parse fetched_at: %w", seed, err)
	}
	if now.Sub(fetchedAt) > maxAge {
		return nil, false, nil
	}

	var out []string
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// DeleteSuggestionsBefore drops cache entries fetched before the cutoff
func (s *sqliteStore) DeleteSuggestionsBefore(ctx context.Context, before time.Time) (int, error) {
	return s.deleteBefore(ctx, `DELETE FROM suggestions WHERE fetched_at < ?`, before)
}

func (s *sqliteStore) deleteBefore(ctx context.Context, query string, before time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, query, before.UTC().Format(timeFormat))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
