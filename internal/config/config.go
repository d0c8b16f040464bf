package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultEndpoint is the hosted image service uploads go to when no
// private endpoint is configured.
const DefaultEndpoint = "https://www.image2url.com/api/upload"

type Config struct {
	HTTPAddr string

	// Upload pipeline
	Endpoint     string
	MaxBytes     int64
	AllowedTypes []string

	// Relay gate
	MaxUploadsPerMinute int
	NonceSecret         string
	ForwardTimeout      time.Duration
	Verbose             bool

	LogLevel     slog.Level
	LogPlaintext bool

	Auth AuthConfig
}

type AuthConfig struct {
	JWKSUrl      string
	Issuer       string
	Audience     string
	JWKSCacheTTL int // seconds
}

func Load() (*Config, error) {
	maxSizeMB, err := strconv.ParseFloat(getEnv("PASTEIMG_MAX_SIZE_MB", "2"), 64)
	if err != nil || maxSizeMB <= 0 {
		return nil, fmt.Errorf("invalid PASTEIMG_MAX_SIZE_MB: %q", os.Getenv("PASTEIMG_MAX_SIZE_MB"))
	}

	maxPerMinute, err := strconv.Atoi(getEnv("PASTEIMG_MAX_UPLOADS_PER_MINUTE", "10"))
	if err != nil || maxPerMinute <= 0 {
		return nil, fmt.Errorf("invalid PASTEIMG_MAX_UPLOADS_PER_MINUTE: %q", os.Getenv("PASTEIMG_MAX_UPLOADS_PER_MINUTE"))
	}

	forwardTimeout := 30 * time.Second
	if s := getEnv("PASTEIMG_FORWARD_TIMEOUT", ""); s != "" {
		forwardTimeout, err = time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid PASTEIMG_FORWARD_TIMEOUT: %w", err)
		}
	}

	nonceSecret := getEnv("PASTEIMG_NONCE_SECRET", "")
	if nonceSecret == "" {
		return nil, fmt.Errorf("PASTEIMG_NONCE_SECRET is required")
	}

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "INFO"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	jwksCacheTTL := 900
	if s := getEnv("AUTH_JWKS_CACHE_TTL", ""); s != "" {
		if ttl, err := strconv.Atoi(s); err == nil {
			jwksCacheTTL = ttl
		}
	}

	return &Config{
		HTTPAddr:     getEnv("PASTEIMG_HTTP_ADDR", ":8080"),
		Endpoint:     getEnv("PASTEIMG_ENDPOINT", DefaultEndpoint),
		MaxBytes:     int64(maxSizeMB * 1024 * 1024),
		AllowedTypes: strings.Fields(getEnv("PASTEIMG_ALLOWED_TYPES", "image/jpeg image/png image/gif image/webp image/svg+xml")),

		MaxUploadsPerMinute: maxPerMinute,
		NonceSecret:         nonceSecret,
		ForwardTimeout:      forwardTimeout,
		Verbose:             getEnv("PASTEIMG_VERBOSE", "") == "true",

		LogLevel:     logLevel,
		LogPlaintext: getEnv("LOG_PLAINTEXT", "") == "true",

		Auth: AuthConfig{
			JWKSUrl:      getEnv("AUTH_JWKS_URL", "http://user-service:3000/.well-known/jwks.json"),
			Issuer:       getEnv("AUTH_ISSUER", "http://user-service:3000"),
			Audience:     getEnv("AUTH_AUDIENCE", "pasteimg"),
			JWKSCacheTTL: jwksCacheTTL,
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
