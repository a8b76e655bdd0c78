package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("STILLWRITER_CREATIVE_MODEL", "")
	t.Setenv("STILLWRITER_STRUCTURED_MODEL", "")
	t.Setenv("STILLWRITER_ADDR", "")
	t.Setenv("STILLWRITER_MAX_WIDTH", "")
	t.Setenv("STILLWRITER_MAX_HEIGHT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.GeminiAPIKey != "test-key" {
		t.Errorf("GeminiAPIKey = %q, want test-key", cfg.GeminiAPIKey)
	}
	if cfg.CreativeModel != DefaultCreativeModel {
		t.Errorf("CreativeModel = %q, want %q", cfg.CreativeModel, DefaultCreativeModel)
	}
	if cfg.StructuredModel != DefaultStructuredModel {
		t.Errorf("StructuredModel = %q, want %q", cfg.StructuredModel, DefaultStructuredModel)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Addr)
	}
	if cfg.MaxWidth != DefaultMaxWidth || cfg.MaxHeight != DefaultMaxHeight {
		t.Errorf("bounds = %dx%d, want %dx%d", cfg.MaxWidth, cfg.MaxHeight, DefaultMaxWidth, DefaultMaxHeight)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("STILLWRITER_CREATIVE_MODEL", "gemini-x")
	t.Setenv("STILLWRITER_MAX_WIDTH", "640")
	t.Setenv("STILLWRITER_MAX_HEIGHT", "480")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CreativeModel != "gemini-x" {
		t.Errorf("CreativeModel = %q, want gemini-x", cfg.CreativeModel)
	}
	if cfg.MaxWidth != 640 || cfg.MaxHeight != 480 {
		t.Errorf("bounds = %dx%d, want 640x480", cfg.MaxWidth, cfg.MaxHeight)
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() error = nil, want missing key error")
	}
	if !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Errorf("Load() error = %v, want mention of GEMINI_API_KEY", err)
	}
}

func TestLoadIgnoresMalformedBounds(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("STILLWRITER_MAX_WIDTH", "banana")
	t.Setenv("STILLWRITER_MAX_HEIGHT", "-5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxWidth != DefaultMaxWidth {
		t.Errorf("MaxWidth = %d, want default for malformed value", cfg.MaxWidth)
	}
	if cfg.MaxHeight != DefaultMaxHeight {
		t.Errorf("MaxHeight = %d, want default for non-positive value", cfg.MaxHeight)
	}
}

func TestRequireStores(t *testing.T) {
	tests := []struct {
		name    string
		bucket  string
		table   string
		wantErr bool
	}{
		{"Both set", "bucket", "table", false},
		{"Missing bucket", "", "table", true},
		{"Missing table", "bucket", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Bucket: tt.bucket, Table: tt.table}
			err := cfg.RequireStores()
			if (err != nil) != tt.wantErr {
				t.Errorf("RequireStores() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
