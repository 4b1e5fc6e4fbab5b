package http

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/reversi-server/internal/core"
)

const (
	defaultKeepalive = 15 * time.Second
	releaseTimeout   = 2 * time.Second
	writeTimeout     = 5 * time.Second
)

// PushHandlers serves long-lived push channels over SSE and WebSocket.
type PushHandlers struct {
	coord     Coordinator
	keepalive time.Duration
	log       *zerolog.Logger
}

// NewPushHandlers creates push handlers; keepalive <= 0 uses the default.
func NewPushHandlers(coord Coordinator, keepalive time.Duration, logger *zerolog.Logger) *PushHandlers {
	if keepalive <= 0 {
		keepalive = defaultKeepalive
	}
	return &PushHandlers{coord: coord, keepalive: keepalive, log: logger}
}

// release unsubscribes sub once its transport is gone. The request context
// is usually cancelled by then, so a detached one is used.
func (h *PushHandlers) release(ctx context.Context, sub *core.Subscriber) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	removed, err := h.coord.Unsubscribe(ctx, sub)
	if err != nil && !errors.Is(err, core.ErrUnavailable) {
		h.log.Warn().Err(err).Str("subscriber", sub.ID).Msg("unsubscribe failed")
		return
	}
	h.log.Debug().Str("subscriber", sub.ID).Int("target", sub.Target).Bool("removed", removed).Msg("push channel closed")
}
