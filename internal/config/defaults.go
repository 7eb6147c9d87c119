package config

import (
	"os"
	"path/filepath"

	"review-transformer/internal/domain"
)

// Batch pacing defaults. The inter-batch delay exists to stay under the
// transformation service's per-caller rate limit.
const (
	DefaultMaxBatchSize      = 10
	DefaultInterBatchDelayMs = 3000
	DefaultRequestTimeoutMs  = 60000
)

// DefaultSettings returns baseline local configuration for first launch.
func DefaultSettings() domain.Settings {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return domain.Settings{
		ServiceURL:        "http://localhost:8090/transform",
		ListenAddr:        ":8080",
		StoreKind:         domain.StoreKindSQLite,
		StorePath:         filepath.Join(homeDir, ".review-transformer", "records.db"),
		RedisAddr:         "localhost:6379",
		MaxBatchSize:      DefaultMaxBatchSize,
		MaxBatchTokens:    0,
		InterBatchDelayMs: DefaultInterBatchDelayMs,
		RequestTimeoutMs:  DefaultRequestTimeoutMs,
		TargetLanguage:    "en",
		Style:             domain.StyleProfessional,
	}
}

// Normalize clamps out-of-range values back to safe defaults.
func Normalize(cfg domain.Settings) domain.Settings {
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = DefaultMaxBatchSize
	}
	if cfg.InterBatchDelayMs < 0 {
		cfg.InterBatchDelayMs = DefaultInterBatchDelayMs
	}
	if cfg.RequestTimeoutMs <= 0 {
		cfg.RequestTimeoutMs = DefaultRequestTimeoutMs
	}
	if cfg.MaxBatchTokens < 0 {
		cfg.MaxBatchTokens = 0
	}
	if !domain.ValidStyle(cfg.Style) {
		cfg.Style = domain.StyleProfessional
	}
	if !domain.ValidStoreKind(cfg.StoreKind) {
		cfg.StoreKind = domain.StoreKindSQLite
	}
	return cfg
}
