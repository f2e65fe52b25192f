// Package notify turns booking and account events into emails.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Abhishek-Jatav/bookMyCare/libs/events"
	"github.com/Abhishek-Jatav/bookMyCare/services/notification-service/internal/email"
	"github.com/Abhishek-Jatav/bookMyCare/services/notification-service/internal/storage"
	"github.com/segmentio/kafka-go"
)

type Store interface {
	Insert(ctx context.Context, n storage.Notification) error
}

type Dispatcher struct {
	sender email.Sender
	store  Store
	logger *slog.Logger
}

func NewDispatcher(sender email.Sender, store Store, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, store: store, logger: logger}
}

type outgoing struct {
	kind      email.Kind
	bookingID int64
	userID    int64
	to        string
	data      email.Data
}

// Handle is a consumer.Handler. Malformed payloads are logged and dropped;
// only storage failures are returned.
func (d *Dispatcher) Handle(ctx context.Context, msg kafka.Message) error {
	mails, err := plan(msg)
	if err != nil {
		d.logger.Error("invalid event payload", "err", err, "topic", msg.Topic)
		return nil
	}
	for _, m := range mails {
		if err := d.deliver(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func plan(msg kafka.Message) ([]outgoing, error) {
	switch msg.Topic {
	case events.TopicUserRegistered:
		var evt events.UserRegistered
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			return nil, err
		}
		if evt.UserID <= 0 || evt.Email == "" {
			return nil, fmt.Errorf("user event missing id or email")
		}
		return []outgoing{{
			kind:   email.KindWelcome,
			userID: evt.UserID,
			to:     evt.Email,
			data:   email.Data{Name: evt.Name, Role: evt.Role},
		}}, nil

	case events.TopicBookingCreated, events.TopicBookingCancelled:
		var evt events.Booking
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			return nil, err
		}
		if evt.BookingID <= 0 || evt.CustomerEmail == "" || evt.ProviderEmail == "" {
			return nil, fmt.Errorf("booking event missing id or emails")
		}
		data := email.Data{
			CustomerName: evt.CustomerName,
			ProviderName: evt.ProviderName,
			Date:         evt.Date,
			TimeSlot:     evt.TimeSlot,
		}
		toCustomer, toProvider := email.KindBookingConfirmed, email.KindBookingReceived
		if msg.Topic == events.TopicBookingCancelled {
			toCustomer, toProvider = email.KindBookingCancelled, email.KindBookingWithdrawn
		}
		return []outgoing{
			{kind: toCustomer, bookingID: evt.BookingID, userID: evt.CustomerID, to: evt.CustomerEmail, data: data},
			{kind: toProvider, bookingID: evt.BookingID, userID: evt.ProviderID, to: evt.ProviderEmail, data: data},
		}, nil

	default:
		return nil, fmt.Errorf("unexpected topic %q", msg.Topic)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, m outgoing) error {
	subject, body, err := email.Render(m.kind, m.data)
	if err != nil {
		return err
	}

	n := storage.Notification{
		BookingID: m.bookingID,
		UserID:    m.userID,
		Kind:      string(m.kind),
		Recipient: m.to,
		Subject:   subject,
		Status:    storage.StatusSent,
	}
	if err := d.sender.Send(m.to, subject, body); err != nil {
		n.Status = storage.StatusFailed
		n.Error = err.Error()
		d.logger.Error("email send failed", "err", err, "kind", m.kind, "recipient", m.to)
	}

	if err := d.store.Insert(ctx, n); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}
	d.logger.Info("notification processed", "kind", m.kind, "booking_id", m.bookingID, "status", n.Status)
	return nil
}
