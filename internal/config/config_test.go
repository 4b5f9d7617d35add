package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppPort != 8080 {
		t.Fatalf("expected default port 8080 got %d", cfg.AppPort)
	}
	if cfg.MongoURI != "mongodb://localhost:27017" {
		t.Fatalf("unexpected default mongo uri %q", cfg.MongoURI)
	}
	if cfg.MongoDatabase != "reeltide" {
		t.Fatalf("unexpected default database %q", cfg.MongoDatabase)
	}
	if cfg.AccessTokenTTL != 15*time.Minute || cfg.RefreshTokenTTL != 24*time.Hour {
		t.Fatalf("unexpected token ttls %v / %v", cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	}
	if cfg.ObjectStore.PresignTTL != 10*time.Minute {
		t.Fatalf("unexpected presign ttl %v", cfg.ObjectStore.PresignTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REELTIDE_PORT", "9999")
	t.Setenv("REELTIDE_MONGO_DB", "reeltide_test")
	t.Setenv("REELTIDE_ACCESS_TTL", "30m")
	t.Setenv("REELTIDE_AUTH_RATE_LIMIT", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppPort != 9999 {
		t.Fatalf("expected port 9999 got %d", cfg.AppPort)
	}
	if cfg.MongoDatabase != "reeltide_test" {
		t.Fatalf("expected database override got %q", cfg.MongoDatabase)
	}
	if cfg.AccessTokenTTL != 30*time.Minute {
		t.Fatalf("expected 30m access ttl got %v", cfg.AccessTokenTTL)
	}
	if cfg.AuthRateLimit != 3 {
		t.Fatalf("expected rate limit 3 got %d", cfg.AuthRateLimit)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("REELTIDE_PORT", "not-a-number")
	t.Setenv("REELTIDE_REFRESH_TTL", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppPort != 8080 {
		t.Fatalf("malformed port should fall back to default, got %d", cfg.AppPort)
	}
	if cfg.RefreshTokenTTL != 24*time.Hour {
		t.Fatalf("malformed duration should fall back to default, got %v", cfg.RefreshTokenTTL)
	}
}
