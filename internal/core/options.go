package core

import (
	"time"

	"github.com/rs/zerolog"
)

// DefaultSubscriberBuffer is the per-channel event buffer used when Options
// leaves it unset.
const DefaultSubscriberBuffer = 16

// Options tunes the room coordinator.
type Options struct {
	// ClearBoardOnSeatLeft empties the board when one player leaves mid-game.
	// When false the board is frozen as it was.
	ClearBoardOnSeatLeft bool
	// SubscriberBuffer is the number of events a push channel may lag behind
	// before it is dropped.
	SubscriberBuffer int
	// OnFinished is called from the room's goroutine when a game ends.
	// It must not block. If it panics the finishing move stays committed and
	// its caller gets ErrInternal.
	OnFinished func(GameResult)
	Logger     *zerolog.Logger
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		ClearBoardOnSeatLeft: true,
		SubscriberBuffer:     DefaultSubscriberBuffer,
	}
}

func (o Options) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}

func (o Options) buffer() int {
	if o.SubscriberBuffer <= 0 {
		return DefaultSubscriberBuffer
	}
	return o.SubscriberBuffer
}

// GameResult is the final disc count of a finished game.
type GameResult struct {
	Room       int
	Black      int
	White      int
	Winner     Seat // SeatNone on a draw
	FinishedAt time.Time
}
