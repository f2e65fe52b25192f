package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/bookmycare")
	// Keep a stray .env in the package directory from leaking in.
	wd, _ := os.Getwd()
	if _, err := os.Stat(filepath.Join(wd, ".env")); err == nil {
		t.Skip(".env present in package directory")
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	for _, k := range []string{"PORT", "JWT_SECRET", "JWT_TTL", "APP_ENV", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "4000" || cfg.GRPCPort != "9400" {
		t.Fatalf("unexpected ports: %s %s", cfg.Port, cfg.GRPCPort)
	}
	if cfg.JWTTTL != 24*time.Hour || cfg.BcryptCost != 10 {
		t.Fatalf("unexpected auth defaults: %s %d", cfg.JWTTTL, cfg.BcryptCost)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "http://localhost:5000" {
		t.Fatalf("unexpected origins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestProductionRejectsDevSecret(t *testing.T) {
	cfg := Config{Env: "production", Port: "4000", GRPCPort: "9400", JWTSecret: DevJWTSecret, JWTTTL: time.Hour}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected production to reject the development secret")
	}
	cfg.JWTSecret = "a-real-secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := Config{Port: "0", GRPCPort: "9400", JWTSecret: "x", JWTTTL: time.Hour}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected bad port to fail")
	}
}
