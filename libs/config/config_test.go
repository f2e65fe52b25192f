package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type sampleConfig struct {
	Port    string        `env:"SAMPLE_PORT" env-default:"4000"`
	Secret  string        `env:"SAMPLE_SECRET" env-required:"true"`
	TTL     time.Duration `env:"SAMPLE_TTL" env-default:"24h"`
	Origins []string      `env:"SAMPLE_ORIGINS" env-default:"http://localhost:5000" env-separator:","`
}

func TestLoadAppliesDefaultsAndDotenv(t *testing.T) {
	dir := t.TempDir()
	dotenv := filepath.Join(dir, "test.env")
	if err := os.WriteFile(dotenv, []byte("SAMPLE_SECRET=from-file\n"), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	t.Setenv("SAMPLE_SECRET", "")
	os.Unsetenv("SAMPLE_SECRET")
	t.Setenv("SAMPLE_ORIGINS", "http://a.test, http://b.test")

	var cfg sampleConfig
	if err := Load(&cfg, dotenv); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "4000" {
		t.Fatalf("expected default port, got %q", cfg.Port)
	}
	if cfg.Secret != "from-file" {
		t.Fatalf("expected secret from dotenv, got %q", cfg.Secret)
	}
	if cfg.TTL != 24*time.Hour {
		t.Fatalf("expected 24h ttl, got %s", cfg.TTL)
	}
	if len(cfg.Origins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.Origins)
	}
	os.Unsetenv("SAMPLE_SECRET")
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("SAMPLE_SECRET", "")
	os.Unsetenv("SAMPLE_SECRET")
	var cfg sampleConfig
	if err := Load(&cfg, filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected error for missing required variable")
	}
}

func TestValidatePort(t *testing.T) {
	for _, v := range []string{"0", "70000", "http", ""} {
		if ValidatePort(v) == nil {
			t.Fatalf("expected %q to be rejected", v)
		}
	}
	if err := ValidatePort("4000"); err != nil {
		t.Fatalf("expected 4000 to be accepted: %v", err)
	}
}

func TestString(t *testing.T) {
	t.Setenv("SAMPLE_URL", "")
	if got := String("SAMPLE_URL", "http://localhost:4000"); got != "http://localhost:4000" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv("SAMPLE_URL", "http://api.test")
	if got := String("SAMPLE_URL", "x"); got != "http://api.test" {
		t.Fatalf("expected env value, got %q", got)
	}
}
