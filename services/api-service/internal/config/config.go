// Package config holds the api-service settings read from the environment.
package config

import (
	"errors"
	"strings"
	"time"

	libconfig "github.com/Abhishek-Jatav/bookMyCare/libs/config"
)

// DevJWTSecret is only acceptable outside production.
const DevJWTSecret = "dev-secret-change-me"

type Config struct {
	ServiceName string `env:"SERVICE_NAME" env-default:"api-service"`
	Env         string `env:"APP_ENV" env-default:"development"`
	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`
	Port        string `env:"PORT" env-default:"4000"`
	GRPCPort    string `env:"GRPC_PORT" env-default:"9400"`

	DatabaseURL string `env:"DATABASE_URL" env-required:"true"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" env-default:"true"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" env-default:"10"`

	JWTSecret  string        `env:"JWT_SECRET" env-default:"dev-secret-change-me"`
	JWTTTL     time.Duration `env:"JWT_TTL" env-default:"24h"`
	JWTIssuer  string        `env:"JWT_ISSUER" env-default:"bookmycare"`
	BcryptCost int           `env:"BCRYPT_COST" env-default:"10"`

	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:5000" env-separator:","`
	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" env-default:"120"`
	RedisAddr          string        `env:"REDIS_ADDR"`
	BodyLimitBytes     int64         `env:"HTTP_BODY_LIMIT_BYTES" env-default:"1048576"`
	RequestTimeout     time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"15s"`

	KafkaBrokers    string        `env:"KAFKA_BROKERS"`
	OutboxPollEvery time.Duration `env:"OUTBOX_POLL_EVERY" env-default:"2s"`
	OutboxBatchSize int           `env:"OUTBOX_BATCH_SIZE" env-default:"50"`
}

func Load() (Config, error) {
	var cfg Config
	if err := libconfig.Load(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Production() bool {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "production", "prod":
		return true
	}
	return false
}

func (c Config) Validate() error {
	if err := libconfig.ValidatePort(c.Port); err != nil {
		return errors.New("PORT " + err.Error())
	}
	if err := libconfig.ValidatePort(c.GRPCPort); err != nil {
		return errors.New("GRPC_PORT " + err.Error())
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.Production() && c.JWTSecret == DevJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	return nil
}
