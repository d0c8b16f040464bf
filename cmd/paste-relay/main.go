package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pasteimg/pasteimg-go/internal/auth"
	"github.com/pasteimg/pasteimg-go/internal/config"
	"github.com/pasteimg/pasteimg-go/internal/domain"
	"github.com/pasteimg/pasteimg-go/internal/logger"
	"github.com/pasteimg/pasteimg-go/internal/metrics"
	"github.com/pasteimg/pasteimg-go/internal/relay"
	"github.com/pasteimg/pasteimg-go/internal/security"
	"github.com/pasteimg/pasteimg-go/internal/upload"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.SetupDefault(logger.Config{Level: cfg.LogLevel, Plaintext: cfg.LogPlaintext})
	log := slog.Default()

	uploadCfg := domain.UploadConfig{
		Endpoint:     cfg.Endpoint,
		MaxBytes:     cfg.MaxBytes,
		AllowedTypes: cfg.AllowedTypes,
	}

	handler := relay.NewHandler(
		uploadCfg,
		security.NewSlidingWindow(cfg.MaxUploadsPerMinute, security.DefaultRateWindow),
		security.NewNonces(cfg.NonceSecret, security.DefaultNonceTTL),
		security.NewEventLog(log, cfg.Verbose),
		upload.NewForwarder(cfg.Endpoint, cfg.ForwardTimeout),
		metrics.New(nil),
		log,
	)

	jwksClient := auth.NewJWKSClient(cfg.Auth.JWKSUrl, cfg.Auth.JWKSCacheTTL)
	router := relay.NewRouter(handler, jwksClient, auth.Config{
		JWKSUrl:      cfg.Auth.JWKSUrl,
		Issuer:       cfg.Auth.Issuer,
		Audience:     cfg.Auth.Audience,
		JWKSCacheTTL: cfg.Auth.JWKSCacheTTL,
	}, log)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Info("Starting paste relay", "addr", cfg.HTTPAddr, "endpoint", cfg.Endpoint)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
