package storage

import (
	"context"
	"time"

	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/model"
	"github.com/jackc/pgx/v5"
)

// isBookedExpr derives the booked flag from an active booking on the same slot.
const isBookedExpr = `EXISTS (
	SELECT 1 FROM bookings b
	WHERE b.provider_id = a.provider_id
		AND b.date = a.date
		AND b.time_slot = a.time_slot
		AND b.status = 'BOOKED'
)`

func scanSlot(row pgx.Row) (model.Slot, error) {
	var s model.Slot
	err := row.Scan(&s.ID, &s.ProviderID, &s.Date.Time, &s.TimeSlot, &s.IsBooked, &s.CreatedAt)
	return s, translate(err)
}

func (q *queries) CreateSlot(ctx context.Context, providerID int64, date model.Date, timeSlot string) (model.Slot, error) {
	return scanSlot(q.db.QueryRow(ctx, `
		INSERT INTO availability AS a (provider_id, date, time_slot)
		VALUES ($1, $2, $3)
		RETURNING a.id, a.provider_id, a.date, a.time_slot, false, a.created_at
	`, providerID, date.Time, timeSlot))
}

func (q *queries) ListSlots(ctx context.Context, providerID int64, date *model.Date) ([]model.Slot, error) {
	var day *time.Time
	if date != nil {
		day = &date.Time
	}
	rows, err := q.db.Query(ctx, `
		SELECT a.id, a.provider_id, a.date, a.time_slot, `+isBookedExpr+`, a.created_at
		FROM availability a
		WHERE a.provider_id = $1
			AND ($2::date IS NULL OR a.date = $2::date)
		ORDER BY a.time_slot ASC, a.date ASC, a.id ASC
	`, providerID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := []model.Slot{}
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// LockSlot selects the availability row FOR UPDATE, serialising concurrent
// bookers of the same slot until the surrounding transaction ends.
func (q *queries) LockSlot(ctx context.Context, providerID int64, date model.Date, timeSlot string) (model.Slot, error) {
	return scanSlot(q.db.QueryRow(ctx, `
		SELECT a.id, a.provider_id, a.date, a.time_slot, false, a.created_at
		FROM availability a
		WHERE a.provider_id = $1 AND a.date = $2 AND a.time_slot = $3
		FOR UPDATE
	`, providerID, date.Time, timeSlot))
}
