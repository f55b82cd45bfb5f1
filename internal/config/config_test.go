package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":     "postgres://localhost:5432/kasir",
		"REDIS_URL":        "redis://localhost:6379/0",
		"ADMIN_JWT_SECRET": "test-secret",
		"PORT":             "",
		"APP_ENV":          "",
	})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.AppEnv != "development" {
		t.Fatalf("unexpected app env %q", cfg.AppEnv)
	}
	if cfg.HTTPAddr() != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr())
	}
	if cfg.RulesCacheTTL != time.Minute {
		t.Fatalf("unexpected rules ttl %v", cfg.RulesCacheTTL)
	}
	if cfg.SimulationQueue != "simulations" {
		t.Fatalf("unexpected queue %q", cfg.SimulationQueue)
	}
	if cfg.RecommendTopN != 5 {
		t.Fatalf("unexpected top n %d", cfg.RecommendTopN)
	}
}

func TestLoadRequiresCoreSettings(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"DATABASE_URL":     "",
		"REDIS_URL":        "redis://localhost:6379/0",
		"ADMIN_JWT_SECRET": "test-secret",
	})
	if err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
}

func TestHTTPAddrAcceptsColonPrefix(t *testing.T) {
	cfg := &Config{Port: ":9090"}
	if cfg.HTTPAddr() != ":9090" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr())
	}
}
