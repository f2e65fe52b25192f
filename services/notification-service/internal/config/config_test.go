package config

import "testing"

func valid() Config {
	return Config{Port: "8085", SMTPPort: 1025, ReminderSchedule: "0 18 * * *", ReminderTimezone: "UTC"}
}

func TestValidate(t *testing.T) {
	if err := valid().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := valid()
	cfg.ReminderSchedule = "every day"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected invalid cron schedule to fail")
	}

	cfg = valid()
	cfg.ReminderTimezone = "Mars/Olympus"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown timezone to fail")
	}

	cfg = valid()
	cfg.SMTPPort = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected invalid smtp port to fail")
	}
}
