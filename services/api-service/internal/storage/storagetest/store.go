// Package storagetest provides an in-memory storage.Queries with the same
// transactional contract as the Postgres store: transactions are serialised
// and roll back every write when the callback fails.
package storagetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/model"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/outbox"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/storage"
)

type Store struct {
	mu  sync.Mutex
	st  *state
	Now func() time.Time
}

type state struct {
	users    []model.User
	slots    []model.Slot
	bookings []model.Booking
	events   []outbox.Event
	seq      int64
}

func (s *state) clone() *state {
	return &state{
		users:    append([]model.User(nil), s.users...),
		slots:    append([]model.Slot(nil), s.slots...),
		bookings: append([]model.Booking(nil), s.bookings...),
		events:   append([]outbox.Event(nil), s.events...),
		seq:      s.seq,
	}
}

func New() *Store {
	return &Store{st: &state{}, Now: time.Now}
}

func (s *Store) InTx(ctx context.Context, fn func(q storage.Queries) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(&tx{st: s.st, now: s.Now}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// Events returns a copy of every outbox event committed so far.
func (s *Store) Events() []outbox.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]outbox.Event(nil), s.st.events...)
}

func (s *Store) run(fn func(q *tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&tx{st: s.st, now: s.Now})
}

func (s *Store) CreateUser(ctx context.Context, u model.User) (out model.User, err error) {
	err = s.run(func(q *tx) error { out, err = q.CreateUser(ctx, u); return err })
	return out, err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (out model.User, err error) {
	err = s.run(func(q *tx) error { out, err = q.GetUserByEmail(ctx, email); return err })
	return out, err
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (out model.User, err error) {
	err = s.run(func(q *tx) error { out, err = q.GetUserByID(ctx, id); return err })
	return out, err
}

func (s *Store) ListUsersByRole(ctx context.Context, role model.Role) (out []model.User, err error) {
	err = s.run(func(q *tx) error { out, err = q.ListUsersByRole(ctx, role); return err })
	return out, err
}

func (s *Store) CreateSlot(ctx context.Context, providerID int64, date model.Date, timeSlot string) (out model.Slot, err error) {
	err = s.run(func(q *tx) error { out, err = q.CreateSlot(ctx, providerID, date, timeSlot); return err })
	return out, err
}

func (s *Store) ListSlots(ctx context.Context, providerID int64, date *model.Date) (out []model.Slot, err error) {
	err = s.run(func(q *tx) error { out, err = q.ListSlots(ctx, providerID, date); return err })
	return out, err
}

func (s *Store) LockSlot(ctx context.Context, providerID int64, date model.Date, timeSlot string) (out model.Slot, err error) {
	err = s.run(func(q *tx) error { out, err = q.LockSlot(ctx, providerID, date, timeSlot); return err })
	return out, err
}

func (s *Store) FindActiveBooking(ctx context.Context, providerID int64, date model.Date, timeSlot string) (out model.Booking, err error) {
	err = s.run(func(q *tx) error { out, err = q.FindActiveBooking(ctx, providerID, date, timeSlot); return err })
	return out, err
}

func (s *Store) CreateBooking(ctx context.Context, b model.Booking) (out model.Booking, err error) {
	err = s.run(func(q *tx) error { out, err = q.CreateBooking(ctx, b); return err })
	return out, err
}

func (s *Store) GetBookingForUpdate(ctx context.Context, id int64) (out model.Booking, err error) {
	err = s.run(func(q *tx) error { out, err = q.GetBookingForUpdate(ctx, id); return err })
	return out, err
}

func (s *Store) CancelBooking(ctx context.Context, id int64) (out model.Booking, err error) {
	err = s.run(func(q *tx) error { out, err = q.CancelBooking(ctx, id); return err })
	return out, err
}

func (s *Store) ListBookingsByCustomer(ctx context.Context, customerID int64) (out []model.Booking, err error) {
	err = s.run(func(q *tx) error { out, err = q.ListBookingsByCustomer(ctx, customerID); return err })
	return out, err
}

func (s *Store) ListBookingsByProvider(ctx context.Context, providerID int64) (out []model.Booking, err error) {
	err = s.run(func(q *tx) error { out, err = q.ListBookingsByProvider(ctx, providerID); return err })
	return out, err
}

func (s *Store) InsertEvent(ctx context.Context, evt outbox.Event) error {
	return s.run(func(q *tx) error { return q.InsertEvent(ctx, evt) })
}

// tx operates on state while the store mutex is held.
type tx struct {
	st  *state
	now func() time.Time
}

func (q *tx) nextID() int64 {
	q.st.seq++
	return q.st.seq
}

func (q *tx) CreateUser(_ context.Context, u model.User) (model.User, error) {
	for _, existing := range q.st.users {
		if existing.Email == u.Email {
			return model.User{}, storage.ErrDuplicate
		}
	}
	u.ID = q.nextID()
	u.CreatedAt = q.now()
	q.st.users = append(q.st.users, u)
	return u, nil
}

func (q *tx) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range q.st.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, storage.ErrNotFound
}

func (q *tx) GetUserByID(_ context.Context, id int64) (model.User, error) {
	for _, u := range q.st.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, storage.ErrNotFound
}

func (q *tx) ListUsersByRole(_ context.Context, role model.Role) ([]model.User, error) {
	var out []model.User
	for _, u := range q.st.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (q *tx) CreateSlot(_ context.Context, providerID int64, date model.Date, timeSlot string) (model.Slot, error) {
	for _, s := range q.st.slots {
		if s.ProviderID == providerID && s.Date.Equal(date) && s.TimeSlot == timeSlot {
			return model.Slot{}, storage.ErrDuplicate
		}
	}
	slot := model.Slot{ID: q.nextID(), ProviderID: providerID, Date: date, TimeSlot: timeSlot, CreatedAt: q.now()}
	q.st.slots = append(q.st.slots, slot)
	return slot, nil
}

func (q *tx) ListSlots(_ context.Context, providerID int64, date *model.Date) ([]model.Slot, error) {
	out := []model.Slot{}
	for _, s := range q.st.slots {
		if s.ProviderID != providerID || (date != nil && !s.Date.Equal(*date)) {
			continue
		}
		_, err := q.findActive(s.ProviderID, s.Date, s.TimeSlot)
		s.IsBooked = err == nil
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := strings.Compare(out[i].TimeSlot, out[j].TimeSlot); c != 0 {
			return c < 0
		}
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (q *tx) LockSlot(_ context.Context, providerID int64, date model.Date, timeSlot string) (model.Slot, error) {
	for _, s := range q.st.slots {
		if s.ProviderID == providerID && s.Date.Equal(date) && s.TimeSlot == timeSlot {
			return s, nil
		}
	}
	return model.Slot{}, storage.ErrNotFound
}

func (q *tx) findActive(providerID int64, date model.Date, timeSlot string) (model.Booking, error) {
	for _, b := range q.st.bookings {
		if b.Active() && b.ProviderID == providerID && b.Date.Equal(date) && b.TimeSlot == timeSlot {
			return b, nil
		}
	}
	return model.Booking{}, storage.ErrNotFound
}

func (q *tx) FindActiveBooking(_ context.Context, providerID int64, date model.Date, timeSlot string) (model.Booking, error) {
	return q.findActive(providerID, date, timeSlot)
}

func (q *tx) CreateBooking(_ context.Context, b model.Booking) (model.Booking, error) {
	if _, err := q.findActive(b.ProviderID, b.Date, b.TimeSlot); err == nil {
		return model.Booking{}, storage.ErrDuplicate
	}
	now := q.now()
	b.ID = q.nextID()
	b.Status = model.StatusBooked
	b.CreatedAt = now
	b.UpdatedAt = now
	b.CancelledAt = nil
	q.st.bookings = append(q.st.bookings, b)
	return b, nil
}

func (q *tx) GetBookingForUpdate(_ context.Context, id int64) (model.Booking, error) {
	for _, b := range q.st.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return model.Booking{}, storage.ErrNotFound
}

func (q *tx) CancelBooking(_ context.Context, id int64) (model.Booking, error) {
	for i, b := range q.st.bookings {
		if b.ID != id {
			continue
		}
		now := q.now()
		b.Status = model.StatusCancelled
		b.UpdatedAt = now
		b.CancelledAt = &now
		q.st.bookings[i] = b
		return b, nil
	}
	return model.Booking{}, storage.ErrNotFound
}

func (q *tx) ListBookingsByCustomer(_ context.Context, customerID int64) ([]model.Booking, error) {
	return q.listBookings(func(b model.Booking) bool { return b.CustomerID == customerID }), nil
}

func (q *tx) ListBookingsByProvider(_ context.Context, providerID int64) ([]model.Booking, error) {
	return q.listBookings(func(b model.Booking) bool { return b.ProviderID == providerID }), nil
}

func (q *tx) listBookings(match func(model.Booking) bool) []model.Booking {
	out := []model.Booking{}
	for _, b := range q.st.bookings {
		if match(b) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date.Time)
		}
		if out[i].TimeSlot != out[j].TimeSlot {
			return out[i].TimeSlot > out[j].TimeSlot
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (q *tx) InsertEvent(_ context.Context, evt outbox.Event) error {
	q.st.events = append(q.st.events, evt)
	return nil
}

var (
	_ storage.Queries = (*Store)(nil)
	_ storage.Queries = (*tx)(nil)
)
