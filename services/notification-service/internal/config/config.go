package config

import (
	"errors"
	"time"

	libconfig "github.com/Abhishek-Jatav/bookMyCare/libs/config"
	"github.com/robfig/cron/v3"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" env-default:"notification-service"`
	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`
	Port        string `env:"PORT" env-default:"8085"`

	DatabaseURL string `env:"DATABASE_URL" env-required:"true"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" env-default:"true"`

	KafkaBrokers string `env:"KAFKA_BROKERS"`
	KafkaGroupID string `env:"KAFKA_GROUP_ID" env-default:"notification-service"`

	SMTPHost     string `env:"SMTP_HOST" env-default:"localhost"`
	SMTPPort     int    `env:"SMTP_PORT" env-default:"1025"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM" env-default:"BookMyCare <no-reply@bookmycare.local>"`

	RemindersEnabled bool   `env:"REMINDERS_ENABLED" env-default:"true"`
	ReminderSchedule string `env:"REMINDER_SCHEDULE" env-default:"0 18 * * *"`
	ReminderTimezone string `env:"REMINDER_TIMEZONE" env-default:"UTC"`
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

func (c Config) Validate() error {
	if err := libconfig.ValidatePort(c.Port); err != nil {
		return errors.New("PORT " + err.Error())
	}
	if c.SMTPPort < 1 || c.SMTPPort > 65535 {
		return errors.New("SMTP_PORT must be a valid TCP port")
	}
	if _, err := cron.ParseStandard(c.ReminderSchedule); err != nil {
		return errors.New("REMINDER_SCHEDULE: " + err.Error())
	}
	if _, err := c.Location(); err != nil {
		return errors.New("REMINDER_TIMEZONE: " + err.Error())
	}
	return nil
}

// Location is the zone "tomorrow" is computed in for reminders.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.ReminderTimezone)
}
