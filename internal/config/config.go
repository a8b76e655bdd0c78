// Package config resolves application settings from the environment.
//
// Every setting has a STILLWRITER_-prefixed environment variable and a code
// default. For local development a .env file in the working directory is
// loaded first (missing file is fine).
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Default model ids. The creative model writes the analysis and scene prose;
// the structured model converts prose into schema-constrained JSON and is
// deliberately the cheaper, faster tier.
const (
	DefaultCreativeModel   = "gemini-2.5-pro"
	DefaultStructuredModel = "gemini-2.5-flash"
)

// Default canonical image bounds.
const (
	DefaultMaxWidth  = 1024
	DefaultMaxHeight = 768
)

// Config holds all runtime settings for the stillwriter binaries.
type Config struct {
	// GeminiAPIKey authenticates calls to the Gemini API.
	GeminiAPIKey string

	// CreativeModel generates the still analysis and the scene prose.
	CreativeModel string

	// StructuredModel converts scene prose into schema-constrained JSON.
	StructuredModel string

	// Bucket is the S3 bucket holding canonical images.
	Bucket string

	// Table is the DynamoDB table holding image and screenplay records.
	Table string

	// Addr is the HTTP listen address for stillwriterd.
	Addr string

	// MaxWidth and MaxHeight bound canonical image dimensions.
	MaxWidth  int
	MaxHeight int
}

// Load reads configuration from a .env file (if present) and the environment.
// It returns an error only for settings that have no usable default: the
// Gemini API key.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded settings from .env file")
	}

	cfg := &Config{
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		CreativeModel:   envOrDefault("STILLWRITER_CREATIVE_MODEL", DefaultCreativeModel),
		StructuredModel: envOrDefault("STILLWRITER_STRUCTURED_MODEL", DefaultStructuredModel),
		Bucket:          os.Getenv("STILLWRITER_BUCKET"),
		Table:           os.Getenv("STILLWRITER_TABLE"),
		Addr:            envOrDefault("STILLWRITER_ADDR", ":8080"),
		MaxWidth:        envOrDefaultInt("STILLWRITER_MAX_WIDTH", DefaultMaxWidth),
		MaxHeight:       envOrDefaultInt("STILLWRITER_MAX_HEIGHT", DefaultMaxHeight),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	return cfg, nil
}

// RequireStores validates that the settings for the AWS-backed stores are
// present. The CLI runs on in-memory stores and skips this check.
func (c *Config) RequireStores() error {
	if c.Bucket == "" {
		return fmt.Errorf("STILLWRITER_BUCKET is not set")
	}
	if c.Table == "" {
		return fmt.Errorf("STILLWRITER_TABLE is not set")
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warn().Str("var", key).Str("value", v).Msg("Ignoring non-positive or malformed setting")
		return def
	}
	return n
}
