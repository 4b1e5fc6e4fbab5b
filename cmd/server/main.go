package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/reversi-server/internal/app"
	"github.com/vovakirdan/reversi-server/internal/auth"
	"github.com/vovakirdan/reversi-server/internal/config"
	"github.com/vovakirdan/reversi-server/internal/log"
)

type options struct {
	configPath    string
	logLevel      string
	addr          string
	sessionTTL    time.Duration
	sweepInterval time.Duration
	tokenTTL      time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "reversi-server",
		Short:         "Four-room Reversi server with SSE and WebSocket push",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.yaml (default: ./config.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	bindServeFlags(root, opts)

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	bindServeFlags(serve, opts)

	adminToken := &cobra.Command{
		Use:   "admin-token",
		Short: "Print a signed bearer token for /admin/reset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(opts)
			if err != nil {
				return err
			}
			token, err := auth.GenerateAdminToken(&auth.JWTConfig{
				Secret: []byte(cfg.AdminSecret),
				Issuer: cfg.AdminIssuer,
				TTL:    opts.tokenTTL,
			})
			if err != nil {
				return fmt.Errorf("generate admin token: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	adminToken.Flags().DurationVar(&opts.tokenTTL, "ttl", time.Hour, "token lifetime; 0 means no expiry")

	root.AddCommand(serve, adminToken)
	return root
}

func bindServeFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVar(&opts.addr, "addr", "", "HTTP listen address")
	cmd.Flags().DurationVar(&opts.sessionTTL, "session-ttl", 0, "expire seats not heard from within this duration")
	cmd.Flags().DurationVar(&opts.sweepInterval, "sweep-interval", 0, "how often stale seats are expired")
}

// loadConfig resolves configuration and applies flag overrides on top.
func loadConfig(opts *options) (config.Config, *zerolog.Logger, error) {
	bootstrap := log.New(opts.logLevel)

	cfg, path, err := config.Load(bootstrap, opts.configPath)
	if err != nil {
		return cfg, bootstrap, fmt.Errorf("load config: %w", err)
	}
	cfg.UpdateFrom(config.Config{
		Addr:          opts.addr,
		LogLevel:      opts.logLevel,
		SessionTTL:    opts.sessionTTL,
		SweepInterval: opts.sweepInterval,
	})

	logger := log.New(cfg.LogLevel)
	logger.Debug().Str("config", path).Msg("configuration loaded")
	return cfg, logger, nil
}

func runServe(ctx context.Context, opts *options) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := loadConfig(opts)
	if err != nil {
		return err
	}

	application, err := app.New(&cfg, logger)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Dur("session_ttl", cfg.SessionTTL).
		Bool("clear_board_on_seat_left", cfg.ClearBoardOnSeatLeft).
		Msg("starting reversi server")
	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
