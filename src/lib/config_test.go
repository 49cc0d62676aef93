package lib

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestResolveEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STORE_RETRIES", "9")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("BCRYPT_COST", "not-a-number")

	cfg := DefaultConfig()
	cfg.ResolveEnv()

	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.Mongo.Retries != 9 {
		t.Errorf("expected 9 retries, got %d", cfg.Mongo.Retries)
	}
	if cfg.Auth.TokenTTL != 30*time.Minute {
		t.Errorf("expected 30m ttl, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Limits.WritesPerSecond != 2.5 {
		t.Errorf("expected 2.5 rps, got %v", cfg.Limits.WritesPerSecond)
	}
	if cfg.Metrics {
		t.Error("expected metrics disabled")
	}
	if cfg.Auth.BcryptCost != DefaultConfig().Auth.BcryptCost {
		t.Errorf("invalid value should keep the default, got %d", cfg.Auth.BcryptCost)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "port: \"4000\"\nmongo:\n  database: graph\nstorage:\n  bucket: images\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := DefaultConfig()
	if err := cfg.loadFile(path); err != nil {
		t.Fatalf("loadFile: %v", err)
	}
	if cfg.Port != "4000" || cfg.Mongo.Database != "graph" || cfg.Storage.Bucket != "images" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Mongo.URI != DefaultConfig().Mongo.URI {
		t.Fatal("fields absent from the file must keep their defaults")
	}

	if err := cfg.loadFile(filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
		t.Fatalf("missing file should be ignored, got %v", err)
	}
}
