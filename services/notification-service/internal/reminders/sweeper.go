// Package reminders emails customers the evening before their appointment.
package reminders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Abhishek-Jatav/bookMyCare/services/notification-service/internal/email"
	"github.com/Abhishek-Jatav/bookMyCare/services/notification-service/internal/storage"
	"github.com/robfig/cron/v3"
)

type Store interface {
	DueReminders(ctx context.Context, date time.Time) ([]storage.Reminder, error)
	ClaimReminder(ctx context.Context, rem storage.Reminder) (int64, bool, error)
	Finish(ctx context.Context, id int64, subject, status, errMsg string) error
}

type Sweeper struct {
	store  Store
	sender email.Sender
	logger *slog.Logger
	loc    *time.Location
	now    func() time.Time
}

func NewSweeper(store Store, sender email.Sender, logger *slog.Logger, loc *time.Location) *Sweeper {
	if loc == nil {
		loc = time.UTC
	}
	return &Sweeper{store: store, sender: sender, logger: logger, loc: loc, now: time.Now}
}

// Run sweeps on schedule (standard 5-field cron) until ctx is done.
func (s *Sweeper) Run(ctx context.Context, schedule string) error {
	c := cron.New(cron.WithLocation(s.loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, func() {
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error("reminder sweep failed", "err", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule reminders: %w", err)
	}
	c.Start()
	s.logger.Info("reminder sweeper started", "schedule", schedule, "timezone", s.loc.String())

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// Sweep reminds every customer booked for tomorrow and returns how many
// reminders were claimed by this run.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now().In(s.loc)
	tomorrow := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)

	due, err := s.store.DueReminders(ctx, tomorrow)
	if err != nil {
		return 0, err
	}

	claimed := 0
	for _, rem := range due {
		id, ok, err := s.store.ClaimReminder(ctx, rem)
		if err != nil {
			return claimed, fmt.Errorf("claim reminder for booking %d: %w", rem.BookingID, err)
		}
		if !ok {
			continue
		}
		claimed++

		subject, body, err := email.Render(email.KindReminder, email.Data{
			CustomerName: rem.CustomerName,
			ProviderName: rem.ProviderName,
			Date:         rem.Date.Format("2006-01-02"),
			TimeSlot:     rem.TimeSlot,
		})
		if err != nil {
			return claimed, err
		}

		status, errMsg := storage.StatusSent, ""
		if err := s.sender.Send(rem.CustomerEmail, subject, body); err != nil {
			status, errMsg = storage.StatusFailed, err.Error()
			s.logger.Error("reminder send failed", "err", err, "booking_id", rem.BookingID)
		}
		if err := s.store.Finish(ctx, id, subject, status, errMsg); err != nil {
			return claimed, fmt.Errorf("finish reminder %d: %w", id, err)
		}
	}

	if claimed > 0 {
		s.logger.Info("reminders sent", "date", tomorrow.Format("2006-01-02"), "count", claimed)
	}
	return claimed, nil
}
