package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Abhishek-Jatav/bookMyCare/libs/auth"
	"github.com/Abhishek-Jatav/bookMyCare/libs/events"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/apperr"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/model"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/outbox"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/storage"
)

const (
	msgProviderUnavailable = "Provider not available for this slot"
	msgSlotTaken           = "This slot is already booked"
	msgBookingNotFound     = "Booking not found"
	msgCancelForbidden     = "Not allowed to cancel this booking"
	msgProviderBookings    = "Not allowed to view these bookings"
)

type BookingService struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewBookingService(repo Repository, logger *slog.Logger) *BookingService {
	return &BookingService{repo: repo, logger: logger, now: time.Now}
}

type CreateBookingInput struct {
	ProviderID int64
	Date       string
	TimeSlot   string
}

// CreateBooking reserves an offered slot for the caller. The availability row
// is locked for the duration of the transaction and the active-booking unique
// index backs it, so at most one BOOKED booking exists per slot.
func (s *BookingService) CreateBooking(ctx context.Context, caller auth.Identity, in CreateBookingInput) (model.Booking, error) {
	if in.ProviderID <= 0 {
		return model.Booking{}, apperr.Invalid("providerId is required")
	}
	day, err := model.ParseDate(in.Date)
	if err != nil {
		return model.Booking{}, apperr.Invalid(err.Error())
	}
	slot, err := normalizeTimeSlot(in.TimeSlot)
	if err != nil {
		return model.Booking{}, err
	}

	var booking model.Booking
	err = s.repo.InTx(ctx, func(q storage.Queries) error {
		if _, err := q.LockSlot(ctx, in.ProviderID, day, slot); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperr.Invalid(msgProviderUnavailable)
			}
			return fmt.Errorf("lock slot: %w", err)
		}

		_, err := q.FindActiveBooking(ctx, in.ProviderID, day, slot)
		switch {
		case err == nil:
			return apperr.Conflict(msgSlotTaken)
		case !errors.Is(err, storage.ErrNotFound):
			return fmt.Errorf("find active booking: %w", err)
		}

		created, err := q.CreateBooking(ctx, model.Booking{
			ProviderID: in.ProviderID,
			CustomerID: caller.UserID,
			Date:       day,
			TimeSlot:   slot,
		})
		if errors.Is(err, storage.ErrDuplicate) {
			return apperr.Conflict(msgSlotTaken)
		}
		if err != nil {
			return fmt.Errorf("create booking: %w", err)
		}
		booking = created

		return s.recordEvent(ctx, q, events.TopicBookingCreated, created)
	})
	if err != nil {
		return model.Booking{}, err
	}

	s.logger.Info("booking created",
		"booking_id", booking.ID,
		"provider_id", booking.ProviderID,
		"customer_id", booking.CustomerID,
		"date", booking.Date.String(),
		"time_slot", booking.TimeSlot,
	)
	return booking, nil
}

// CancelBooking cancels one of the caller's bookings. Cancelling an already
// cancelled booking returns it unchanged.
func (s *BookingService) CancelBooking(ctx context.Context, caller auth.Identity, bookingID int64) (model.Booking, error) {
	var (
		booking   model.Booking
		cancelled bool
	)
	err := s.repo.InTx(ctx, func(q storage.Queries) error {
		current, err := q.GetBookingForUpdate(ctx, bookingID)
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound(msgBookingNotFound)
		}
		if err != nil {
			return fmt.Errorf("get booking: %w", err)
		}
		if current.CustomerID != caller.UserID {
			return apperr.Forbidden(msgCancelForbidden)
		}
		if !current.Active() {
			booking = current
			return nil
		}

		updated, err := q.CancelBooking(ctx, bookingID)
		if err != nil {
			return fmt.Errorf("cancel booking: %w", err)
		}
		booking = updated
		cancelled = true

		return s.recordEvent(ctx, q, events.TopicBookingCancelled, updated)
	})
	if err != nil {
		return model.Booking{}, err
	}

	if cancelled {
		s.logger.Info("booking cancelled", "booking_id", booking.ID, "customer_id", booking.CustomerID)
	}
	return booking, nil
}

// ListByCustomer returns every booking of customerID, most recent date first.
func (s *BookingService) ListByCustomer(ctx context.Context, customerID int64) ([]model.Booking, error) {
	bookings, err := s.repo.ListBookingsByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list customer bookings: %w", err)
	}
	return bookings, nil
}

// ListByProvider returns the bookings made against providerID. Only that
// provider or an admin may read them.
func (s *BookingService) ListByProvider(ctx context.Context, caller auth.Identity, providerID int64) ([]model.Booking, error) {
	if model.Role(caller.Role) != model.RoleAdmin && caller.UserID != providerID {
		return nil, apperr.Forbidden(msgProviderBookings)
	}
	bookings, err := s.repo.ListBookingsByProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("list provider bookings: %w", err)
	}
	return bookings, nil
}

func (s *BookingService) recordEvent(ctx context.Context, q storage.Queries, topic string, b model.Booking) error {
	customer, err := q.GetUserByID(ctx, b.CustomerID)
	if err != nil {
		return fmt.Errorf("load customer: %w", err)
	}
	provider, err := q.GetUserByID(ctx, b.ProviderID)
	if err != nil {
		return fmt.Errorf("load provider: %w", err)
	}

	evt, err := outbox.NewEvent("booking", b.ID, topic, events.Booking{
		BookingID:     b.ID,
		ProviderID:    b.ProviderID,
		ProviderName:  provider.Name,
		ProviderEmail: provider.Email,
		CustomerID:    b.CustomerID,
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		Date:          b.Date.String(),
		TimeSlot:      b.TimeSlot,
		Status:        string(b.Status),
		OccurredAt:    s.now().UTC(),
	})
	if err != nil {
		return err
	}
	return q.InsertEvent(ctx, evt)
}
