package storage

import (
	"context"
	"errors"

	"github.com/Abhishek-Jatav/bookMyCare/libs/db"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/model"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/outbox"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// Queries is every read and write the services perform. It is implemented by
// the pool-backed Store and by the transaction handed to InTx.
type Queries interface {
	CreateUser(ctx context.Context, u model.User) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByID(ctx context.Context, id int64) (model.User, error)
	ListUsersByRole(ctx context.Context, role model.Role) ([]model.User, error)

	CreateSlot(ctx context.Context, providerID int64, date model.Date, timeSlot string) (model.Slot, error)
	ListSlots(ctx context.Context, providerID int64, date *model.Date) ([]model.Slot, error)
	LockSlot(ctx context.Context, providerID int64, date model.Date, timeSlot string) (model.Slot, error)

	FindActiveBooking(ctx context.Context, providerID int64, date model.Date, timeSlot string) (model.Booking, error)
	CreateBooking(ctx context.Context, b model.Booking) (model.Booking, error)
	GetBookingForUpdate(ctx context.Context, id int64) (model.Booking, error)
	CancelBooking(ctx context.Context, id int64) (model.Booking, error)
	ListBookingsByCustomer(ctx context.Context, customerID int64) ([]model.Booking, error)
	ListBookingsByProvider(ctx context.Context, providerID int64) ([]model.Booking, error)

	InsertEvent(ctx context.Context, evt outbox.Event) error
}

type Store struct {
	*queries
	pool *db.Pool
}

func New(pool *db.Pool, outboxRepo *outbox.Repository) *Store {
	return &Store{
		queries: &queries{db: pool, outbox: outboxRepo},
		pool:    pool,
	}
}

// InTx runs fn inside one database transaction, committing only when fn returns nil.
func (s *Store) InTx(ctx context.Context, fn func(q Queries) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&queries{db: tx, outbox: s.queries.outbox}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type queries struct {
	db     db.Querier
	outbox *outbox.Repository
}

func (q *queries) InsertEvent(ctx context.Context, evt outbox.Event) error {
	return q.outbox.Insert(ctx, q.db, evt)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsNotFound(err):
		return ErrNotFound
	case db.IsUniqueViolation(err):
		return ErrDuplicate
	default:
		return err
	}
}
