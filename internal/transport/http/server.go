package http

import (
	stdhttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/reversi-server/internal/auth"
	"github.com/vovakirdan/reversi-server/internal/config"
	"github.com/vovakirdan/reversi-server/internal/store"
)

// NewServer builds the HTTP server. results may be nil, in which case
// /results is not registered.
func NewServer(coord Coordinator, results store.ResultStore, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	admin := &auth.JWTConfig{Secret: []byte(cfg.AdminSecret), Issuer: cfg.AdminIssuer}
	game := NewGameHandlers(coord, admin, logger)
	push := NewPushHandlers(coord, cfg.KeepaliveInterval, logger)
	limiter := newRateLimiter(cfg.RateLimit, time.Minute)

	router.GET("/health", healthHandler)
	router.GET("/subscribe", push.SSE)
	router.GET("/ws", push.WebSocket)
	router.GET("/lobby", game.Lobby)
	router.GET("/rooms/:id", game.Room)

	actions := router.Group("/", RateLimitMiddleware(limiter, logger))
	{
		actions.POST("/action", game.Action)
		actions.POST("/move", game.Move)
	}

	router.POST("/admin/reset", AdminMiddleware(admin, logger), game.AdminReset)

	if results != nil {
		router.GET("/results", NewResultHandlers(results, logger).List)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
