package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vovakirdan/reversi-server/internal/store"
)

// Schema creates the result ledger. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS game_results (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	room        INTEGER NOT NULL,
	black       INTEGER NOT NULL,
	white       INTEGER NOT NULL,
	winner      TEXT NOT NULL DEFAULT '',
	finished_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_game_results_finished ON game_results(finished_at DESC);
`

// MaxListLimit caps ListResults.
const MaxListLimit = 500

// SQLiteStore implements store.ResultStore for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ store.ResultStore = (*SQLiteStore)(nil)

// New opens the database at dbPath and applies Schema.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, ApplySchema)
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply schema on an in-memory database.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; it also keeps ":memory:"
	// databases alive across queries.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// ApplySchema creates the tables used by SQLiteStore.
func ApplySchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveResult inserts res and sets its ID.
func (s *SQLiteStore) SaveResult(ctx context.Context, res *store.GameResult) error {
	query := `
		INSERT INTO game_results (room, black, white, winner, finished_at)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, res.Room, res.Black, res.White, res.Winner, res.FinishedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	res.ID = id
	return nil
}

// ListResults returns up to limit results, most recent first.
func (s *SQLiteStore) ListResults(ctx context.Context, limit int) ([]*store.GameResult, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	query := `
		SELECT id, room, black, white, winner, finished_at
		FROM game_results
		ORDER BY finished_at DESC, id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []*store.GameResult
	for rows.Next() {
		var (
			res        store.GameResult
			finishedAt int64
		)
		if err := rows.Scan(&res.ID, &res.Room, &res.Black, &res.White, &res.Winner, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		res.FinishedAt = time.UnixMilli(finishedAt)
		results = append(results, &res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}
