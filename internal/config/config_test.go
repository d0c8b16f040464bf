package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/nalgeon/be"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PASTEIMG_NONCE_SECRET", "test-secret")

	cfg, err := Load()
	be.Err(t, err, nil)

	be.Equal(t, cfg.HTTPAddr, ":8080")
	be.Equal(t, cfg.Endpoint, DefaultEndpoint)
	be.Equal(t, cfg.MaxBytes, int64(2*1024*1024))
	be.Equal(t, len(cfg.AllowedTypes), 5)
	be.Equal(t, cfg.MaxUploadsPerMinute, 10)
	be.Equal(t, cfg.ForwardTimeout, 30*time.Second)
	be.Equal(t, cfg.LogLevel, slog.LevelInfo)
	be.Equal(t, cfg.Verbose, false)
}

func TestLoadRequiresNonceSecret(t *testing.T) {
	t.Setenv("PASTEIMG_NONCE_SECRET", "")

	_, err := Load()
	be.Err(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PASTEIMG_NONCE_SECRET", "test-secret")
	t.Setenv("PASTEIMG_MAX_SIZE_MB", "5")
	t.Setenv("PASTEIMG_ALLOWED_TYPES", "image/png image/webp")
	t.Setenv("PASTEIMG_MAX_UPLOADS_PER_MINUTE", "3")
	t.Setenv("PASTEIMG_FORWARD_TIMEOUT", "10s")
	t.Setenv("PASTEIMG_VERBOSE", "true")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	be.Err(t, err, nil)

	be.Equal(t, cfg.MaxBytes, int64(5*1024*1024))
	be.Equal(t, cfg.AllowedTypes, []string{"image/png", "image/webp"})
	be.Equal(t, cfg.MaxUploadsPerMinute, 3)
	be.Equal(t, cfg.ForwardTimeout, 10*time.Second)
	be.Equal(t, cfg.Verbose, true)
	be.Equal(t, cfg.LogLevel, slog.LevelDebug)
}

func TestLoadRejectsBadSize(t *testing.T) {
	t.Setenv("PASTEIMG_NONCE_SECRET", "test-secret")
	t.Setenv("PASTEIMG_MAX_SIZE_MB", "zero")

	_, err := Load()
	be.Err(t, err)
}
