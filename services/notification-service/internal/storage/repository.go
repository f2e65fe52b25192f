package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abhishek-Jatav/bookMyCare/libs/db"
)

const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"

	KindReminder = "reminder"
)

type Notification struct {
	BookingID int64 // zero for notifications not tied to a booking
	UserID    int64
	Kind      string
	Recipient string
	Subject   string
	Status    string
	Error     string
}

// Reminder is a BOOKED booking whose customer has not been reminded yet.
type Reminder struct {
	BookingID     int64
	CustomerID    int64
	CustomerName  string
	CustomerEmail string
	ProviderName  string
	Date          time.Time
	TimeSlot      string
}

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, n Notification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (booking_id, user_id, kind, recipient, subject, status, error)
		VALUES (NULLIF($1::bigint, 0), $2, $3, $4, $5, $6, $7)
	`, n.BookingID, n.UserID, n.Kind, n.Recipient, n.Subject, n.Status, n.Error)
	return err
}

// DueReminders reads the api-service bookings for date.
func (r *Repository) DueReminders(ctx context.Context, date time.Time) ([]Reminder, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT b.id, c.id, c.name, c.email, p.name, b.date, b.time_slot
		FROM bookings b
		JOIN users c ON c.id = b.customer_id
		JOIN users p ON p.id = b.provider_id
		WHERE b.status = 'BOOKED'
			AND b.date = $1::date
			AND NOT EXISTS (
				SELECT 1 FROM notifications n
				WHERE n.booking_id = b.id AND n.kind = 'reminder'
			)
		ORDER BY b.time_slot ASC, b.id ASC
	`, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("query due reminders: %w", err)
	}
	defer rows.Close()

	var out []Reminder
	for rows.Next() {
		var rem Reminder
		if err := rows.Scan(&rem.BookingID, &rem.CustomerID, &rem.CustomerName, &rem.CustomerEmail, &rem.ProviderName, &rem.Date, &rem.TimeSlot); err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}

// ClaimReminder reserves the single reminder row of a booking. It returns
// false when another sweep already claimed it.
func (r *Repository) ClaimReminder(ctx context.Context, rem Reminder) (int64, bool, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (booking_id, user_id, kind, recipient, status)
		VALUES ($1, $2, 'reminder', $3, 'pending')
		ON CONFLICT (booking_id, kind) WHERE kind = 'reminder' DO NOTHING
		RETURNING id
	`, rem.BookingID, rem.CustomerID, rem.CustomerEmail).Scan(&id)
	if db.IsNotFound(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (r *Repository) Finish(ctx context.Context, id int64, subject, status, errMsg string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET subject = $2, status = $3, error = $4, updated_at = now()
		WHERE id = $1
	`, id, subject, status, errMsg)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("notification not found")
	}
	return nil
}
