package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/reversi-server/internal/config"
	"github.com/vovakirdan/reversi-server/internal/core"
	"github.com/vovakirdan/reversi-server/internal/store"
	"github.com/vovakirdan/reversi-server/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/reversi-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	registry        *core.Registry
	presence        *core.PresenceMonitor
	store           store.ResultStore
	recorder        *store.Recorder
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	a := &App{
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}

	if cfg.ResultsDBPath != "" {
		st, err := sqlite.New(cfg.ResultsDBPath)
		if err != nil {
			return nil, fmt.Errorf("init result store: %w", err)
		}
		a.store = st
		a.recorder = store.NewRecorder(st, 0, logger)
		logger.Info().Str("db_path", cfg.ResultsDBPath).Msg("result ledger enabled")
	}

	opts := core.Options{
		ClearBoardOnSeatLeft: cfg.ClearBoardOnSeatLeft,
		SubscriberBuffer:     cfg.SubscriberBuffer,
		Logger:               logger,
	}
	if a.recorder != nil {
		opts.OnFinished = func(res core.GameResult) {
			a.recorder.Record(resultFromCore(res))
		}
	}

	a.registry = core.NewRegistry(core.NewTokenStore(), opts)
	a.presence = core.NewPresenceMonitor(a.registry, cfg.SweepInterval, cfg.SessionTTL, logger)

	// a nil *SQLiteStore must not become a non-nil interface
	var results store.ResultStore
	if a.store != nil {
		results = a.store
	}
	a.server = transporthttp.NewServer(a.registry, results, cfg, logger)

	return a, nil
}

func resultFromCore(res core.GameResult) store.GameResult {
	return store.GameResult{
		Room:       res.Room,
		Black:      res.Black,
		White:      res.White,
		Winner:     string(res.Winner),
		FinishedAt: res.FinishedAt,
	}
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	coreCtx, stopCore := context.WithCancel(context.Background())
	defer stopCore()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.registry.Run(coreCtx)
	}()
	go func() {
		defer wg.Done()
		a.presence.Run(coreCtx)
	}()
	if a.recorder != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.recorder.Run(coreCtx)
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		stopCore()
		wg.Wait()
		a.cleanup()
		return err
	case <-ctx.Done():
		// Stopping the rooms closes every push channel, which lets streaming
		// handlers return before Shutdown waits on them.
		stopCore()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		err := a.server.Shutdown(shutdownCtx)
		wg.Wait()
		a.cleanup()
		if err != nil {
			return err
		}
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
