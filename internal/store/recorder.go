package store

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultRecorderBuffer = 64
	saveTimeout           = 5 * time.Second
)

// Recorder persists results off the caller's goroutine. Record never blocks;
// results that do not fit in the queue are logged and dropped.
type Recorder struct {
	store ResultStore
	queue chan GameResult
	log   zerolog.Logger
}

// NewRecorder builds a recorder writing to st.
func NewRecorder(st ResultStore, buffer int, logger *zerolog.Logger) *Recorder {
	if buffer <= 0 {
		buffer = defaultRecorderBuffer
	}
	log := zerolog.Nop()
	if logger != nil {
		log = logger.With().Str("component", "recorder").Logger()
	}
	return &Recorder{
		store: st,
		queue: make(chan GameResult, buffer),
		log:   log,
	}
}

// Record queues res for persistence and reports whether it was accepted.
func (r *Recorder) Record(res GameResult) bool {
	select {
	case r.queue <- res:
		return true
	default:
		r.log.Warn().Int("room", res.Room).Msg("result queue full, dropping result")
		return false
	}
}

// Run writes queued results until ctx is done, then flushes what is left.
func (r *Recorder) Run(ctx context.Context) {
	for {
		select {
		case res := <-r.queue:
			r.save(context.WithoutCancel(ctx), res)
		case <-ctx.Done():
			r.flush(context.WithoutCancel(ctx))
			return
		}
	}
}

func (r *Recorder) flush(ctx context.Context) {
	for {
		select {
		case res := <-r.queue:
			r.save(ctx, res)
		default:
			return
		}
	}
}

func (r *Recorder) save(ctx context.Context, res GameResult) {
	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()

	if err := r.store.SaveResult(ctx, &res); err != nil {
		r.log.Error().Err(err).Int("room", res.Room).Msg("failed to save result")
		return
	}
	r.log.Info().Int64("id", res.ID).Int("room", res.Room).Str("winner", res.Winner).Msg("result saved")
}
