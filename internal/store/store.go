package store

import (
	"context"
	"time"
)

// GameResult is the final disc count of one finished game.
type GameResult struct {
	ID         int64
	Room       int
	Black      int
	White      int
	Winner     string // "black", "white" or "" on a draw
	FinishedAt time.Time
}

// ResultStore persists finished games. Results are append-only and never
// read back into room state.
type ResultStore interface {
	SaveResult(ctx context.Context, res *GameResult) error
	// ListResults returns up to limit results, most recent first.
	ListResults(ctx context.Context, limit int) ([]*GameResult, error)
	Close() error
}
