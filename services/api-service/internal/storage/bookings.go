package storage

import (
	"context"

	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/model"
	"github.com/jackc/pgx/v5"
)

const bookingColumns = `id, provider_id, customer_id, date, time_slot, status, created_at, updated_at, cancelled_at`

func scanBooking(row pgx.Row) (model.Booking, error) {
	var b model.Booking
	err := row.Scan(&b.ID, &b.ProviderID, &b.CustomerID, &b.Date.Time, &b.TimeSlot, &b.Status, &b.CreatedAt, &b.UpdatedAt, &b.CancelledAt)
	return b, translate(err)
}

func (q *queries) FindActiveBooking(ctx context.Context, providerID int64, date model.Date, timeSlot string) (model.Booking, error) {
	return scanBooking(q.db.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE provider_id = $1 AND date = $2 AND time_slot = $3 AND status = 'BOOKED'
	`, providerID, date.Time, timeSlot))
}

// CreateBooking inserts a BOOKED row. The partial unique index on active
// bookings surfaces a concurrent double booking as ErrDuplicate.
func (q *queries) CreateBooking(ctx context.Context, b model.Booking) (model.Booking, error) {
	return scanBooking(q.db.QueryRow(ctx, `
		INSERT INTO bookings (provider_id, customer_id, date, time_slot, status)
		VALUES ($1, $2, $3, $4, 'BOOKED')
		RETURNING `+bookingColumns,
		b.ProviderID, b.CustomerID, b.Date.Time, b.TimeSlot))
}

func (q *queries) GetBookingForUpdate(ctx context.Context, id int64) (model.Booking, error) {
	return scanBooking(q.db.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = $1
		FOR UPDATE
	`, id))
}

func (q *queries) CancelBooking(ctx context.Context, id int64) (model.Booking, error) {
	return scanBooking(q.db.QueryRow(ctx, `
		UPDATE bookings
		SET status = 'CANCELLED',
			cancelled_at = now(),
			updated_at = now()
		WHERE id = $1
		RETURNING `+bookingColumns,
		id))
}

func (q *queries) ListBookingsByCustomer(ctx context.Context, customerID int64) ([]model.Booking, error) {
	return q.listBookings(ctx, `customer_id = $1`, customerID)
}

func (q *queries) ListBookingsByProvider(ctx context.Context, providerID int64) ([]model.Booking, error) {
	return q.listBookings(ctx, `provider_id = $1`, providerID)
}

func (q *queries) listBookings(ctx context.Context, where string, id int64) ([]model.Booking, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE `+where+`
		ORDER BY date DESC, time_slot DESC, id DESC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
