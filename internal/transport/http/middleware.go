package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/reversi-server/internal/auth"
	"github.com/vovakirdan/reversi-server/internal/proto"
)

const (
	errCodeUnauthorized = "unauthorized"
	errCodeRateLimited  = "rate_limited"
)

var (
	errMissingBearer = errors.New("missing authorization header")
	errBadBearer     = errors.New("invalid authorization header format")
)

// authorizeAdmin checks the bearer token when admin tokens are enabled.
func authorizeAdmin(c *gin.Context, cfg *auth.JWTConfig) error {
	if !cfg.Enabled() {
		return nil
	}
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return errMissingBearer
	}

	// Extract token from "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return errBadBearer
	}

	_, err := auth.ValidateAdminToken(cfg, parts[1])
	return err
}

func rejectAdmin(c *gin.Context, err error, logger *zerolog.Logger) {
	logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("admin request rejected")
	status := http.StatusUnauthorized
	if errors.Is(err, auth.ErrNotAdmin) {
		status = http.StatusForbidden
	}
	c.AbortWithStatusJSON(status, proto.ErrorResponse{Error: err.Error(), Code: errCodeUnauthorized})
}

// AdminMiddleware guards admin routes with HS256 bearer tokens. With no
// secret configured every request passes.
func AdminMiddleware(cfg *auth.JWTConfig, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authorizeAdmin(c, cfg); err != nil {
			rejectAdmin(c, err, logger)
			return
		}
		c.Next()
	}
}

// RateLimitMiddleware rejects clients that exceed the limiter's budget.
func RateLimitMiddleware(limiter *rateLimiter, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			logger.Warn().Str("client", c.ClientIP()).Str("path", c.Request.URL.Path).Msg("rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, proto.ErrorResponse{Error: "rate limit exceeded", Code: errCodeRateLimited})
			return
		}
		c.Next()
	}
}

// LoggerMiddleware creates a middleware that logs HTTP requests.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Process request
		c.Next()

		// Log after request
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}
