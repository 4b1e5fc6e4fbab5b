package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/reversi-server/internal/utils"
)

// Presence defaults: browsers heartbeat roughly every 7s.
const (
	DefaultSessionTTL    = 25 * time.Second
	DefaultSweepInterval = 10 * time.Second
)

// PresenceMonitor expires sessions whose heartbeat went stale. It goes
// through Registry.Leave like any client would.
type PresenceMonitor struct {
	registry *Registry
	tokens   *TokenStore
	interval time.Duration
	ttl      time.Duration
	log      zerolog.Logger
}

// NewPresenceMonitor builds a monitor; zero durations fall back to defaults.
func NewPresenceMonitor(registry *Registry, interval, ttl time.Duration, logger *zerolog.Logger) *PresenceMonitor {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	log := zerolog.Nop()
	if logger != nil {
		log = logger.With().Str("component", "presence").Logger()
	}
	return &PresenceMonitor{
		registry: registry,
		tokens:   registry.Tokens(),
		interval: interval,
		ttl:      ttl,
		log:      log,
	}
}

// Run sweeps every interval until ctx is done.
func (m *PresenceMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(ctx); n > 0 {
				m.log.Info().Int("expired", n).Msg("presence sweep")
			}
		}
	}
}

// Sweep expires every stale session once and returns how many it expired.
// Sessions heartbeated after the scan are skipped.
func (m *PresenceMonitor) Sweep(ctx context.Context) int {
	expired := 0
	for _, candidate := range m.tokens.Expired(m.ttl) {
		sess, ok := m.tokens.TakeIfStale(candidate.Token, m.ttl)
		if !ok {
			continue
		}
		expired++
		if err := m.registry.Leave(ctx, sess.Room, Identity{Token: sess.Token}); err != nil {
			m.log.Warn().Err(err).Int("room", sess.Room).Str("token", utils.Mask(sess.Token)).Msg("expire session")
		}
	}
	return expired
}
