package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// LoggingConfig configura RequestLogger.
type LoggingConfig struct {
	Logger        *slog.Logger
	SlowThreshold time.Duration
	SkipPaths     []string
}

// RequestLogger loguea cada request con su request id. 5xx sale como error,
// 4xx y requests lentos como warn.
func RequestLogger(cfg LoggingConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.SlowThreshold == 0 {
		cfg.SlowThreshold = 500 * time.Millisecond
	}
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		attrs := []slog.Attr{
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", duration),
			slog.String("client_ip", c.ClientIP()),
		}
		if user := Session(c); user != nil {
			attrs = append(attrs, slog.String("user_id", user.ID))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		level := slog.LevelInfo
		msg := "request completed"
		switch {
		case status >= 500:
			level, msg = slog.LevelError, "request failed"
		case status >= 400:
			level, msg = slog.LevelWarn, "request error"
		case duration > cfg.SlowThreshold:
			level, msg = slog.LevelWarn, "slow request"
		}
		cfg.Logger.LogAttrs(c.Request.Context(), level, msg, attrs...)
	}
}
