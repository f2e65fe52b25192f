package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Abhishek-Jatav/bookMyCare/libs/events"
	"github.com/Abhishek-Jatav/bookMyCare/services/notification-service/internal/storage"
	"github.com/segmentio/kafka-go"
)

type sent struct{ to, subject, body string }

type fakeSender struct {
	sent []sent
	fail map[string]bool
}

func (s *fakeSender) Send(to, subject, body string) error {
	if s.fail[to] {
		return errors.New("smtp down")
	}
	s.sent = append(s.sent, sent{to, subject, body})
	return nil
}

type fakeStore struct{ rows []storage.Notification }

func (s *fakeStore) Insert(_ context.Context, n storage.Notification) error {
	s.rows = append(s.rows, n)
	return nil
}

func newDispatcher() (*Dispatcher, *fakeSender, *fakeStore) {
	sender := &fakeSender{fail: map[string]bool{}}
	store := &fakeStore{}
	return NewDispatcher(sender, store, slog.New(slog.NewTextHandler(io.Discard, nil))), sender, store
}

func bookingMessage(t *testing.T, topic string) kafka.Message {
	t.Helper()
	raw, err := json.Marshal(events.Booking{
		BookingID: 7, ProviderID: 1, ProviderName: "Dr. P", ProviderEmail: "p@example.test",
		CustomerID: 2, CustomerName: "Cara", CustomerEmail: "c@example.test",
		Date: "2030-01-01", TimeSlot: "10:00-10:30", Status: "BOOKED",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return kafka.Message{Topic: topic, Value: raw}
}

func TestBookingCreatedEmailsBothParties(t *testing.T) {
	d, sender, store := newDispatcher()
	if err := d.Handle(context.Background(), bookingMessage(t, events.TopicBookingCreated)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sender.sent) != 2 || sender.sent[0].to != "c@example.test" || sender.sent[1].to != "p@example.test" {
		t.Fatalf("unexpected emails: %+v", sender.sent)
	}
	if len(store.rows) != 2 || store.rows[0].Kind != "booking_confirmed" || store.rows[1].Kind != "booking_received" {
		t.Fatalf("unexpected notifications: %+v", store.rows)
	}
	if store.rows[0].BookingID != 7 || store.rows[0].Status != storage.StatusSent {
		t.Fatalf("unexpected notification row: %+v", store.rows[0])
	}
}

func TestSendFailureIsRecorded(t *testing.T) {
	d, sender, store := newDispatcher()
	sender.fail["c@example.test"] = true
	if err := d.Handle(context.Background(), bookingMessage(t, events.TopicBookingCancelled)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if store.rows[0].Status != storage.StatusFailed || store.rows[0].Error == "" {
		t.Fatalf("expected failed customer notification, got %+v", store.rows[0])
	}
	if store.rows[1].Status != storage.StatusSent || store.rows[1].Kind != "booking_withdrawn" {
		t.Fatalf("expected provider notice to be sent, got %+v", store.rows[1])
	}
}

func TestWelcomeEmail(t *testing.T) {
	d, sender, store := newDispatcher()
	raw, _ := json.Marshal(events.UserRegistered{UserID: 3, Name: "Ann", Email: "ann@example.test", Role: "CUSTOMER"})
	if err := d.Handle(context.Background(), kafka.Message{Topic: events.TopicUserRegistered, Value: raw}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0].subject != "Welcome to BookMyCare" {
		t.Fatalf("unexpected emails: %+v", sender.sent)
	}
	if store.rows[0].BookingID != 0 || store.rows[0].UserID != 3 {
		t.Fatalf("unexpected row: %+v", store.rows[0])
	}
}

func TestMalformedPayloadIsDropped(t *testing.T) {
	d, sender, store := newDispatcher()
	if err := d.Handle(context.Background(), kafka.Message{Topic: events.TopicBookingCreated, Value: []byte("{")}); err != nil {
		t.Fatalf("expected malformed payload to be dropped, got %v", err)
	}
	if len(sender.sent) != 0 || len(store.rows) != 0 {
		t.Fatal("expected no side effects")
	}
}
