package logger

import (
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Config struct {
	Level     slog.Level
	Plaintext bool
}

// SetupDefault installs the process-wide slog handler: JSON for machine
// consumption, plaintext when a human is watching.
func SetupDefault(cfg Config) {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.Plaintext {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, opts)))
	} else {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, opts)))
	}
}

// Requests logs one line per HTTP request with a generated request id.
func Requests(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqLog := log.With(
			"reqID", uuid.NewString(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"from", c.ClientIP(),
		)
		reqLog.Debug("request received")

		c.Next()

		reqLog.Info("request completed",
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
