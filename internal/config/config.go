package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/neri-gut/jwparse/internal/keys"
)

type Config struct {
	Port string

	// Auth for the HTTP API.
	APIKey string

	// Publication discovery endpoint. Empty selects the default CDN.
	CDNBaseURL string

	// Key derivation. Defaults to the compiled-in master key; the
	// override exists for fixtures and future key rotation.
	MasterKey string

	// Per-document decode pool size.
	WorkerCount int

	// Upload limit for the HTTP extract endpoint.
	MaxUploadBytes int64
}

func Load() Config {
	cfg := Config{
		Port:           envOr("PORT", "8091"),
		APIKey:         os.Getenv("JWPARSE_API_KEY"),
		CDNBaseURL:     os.Getenv("JW_CDN_URL"),
		MasterKey:      envOr("JWPUB_MASTER_KEY", keys.DefaultMasterKey),
		WorkerCount:    envInt("WORKER_COUNT", 4),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 104857600), // 100MB
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 104857600
	}

	return cfg
}

// ValidateServe checks the settings the HTTP API requires.
func (c Config) ValidateServe() error {
	if c.APIKey == "" {
		return fmt.Errorf("JWPARSE_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
