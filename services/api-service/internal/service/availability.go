package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/Abhishek-Jatav/bookMyCare/libs/auth"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/apperr"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/model"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/storage"
)

const (
	maxTimeSlotLen = 64

	msgProvidersOnly = "Only providers can set availability"
	msgSlotExists    = "Slot already exists"
)

type AvailabilityService struct {
	repo   Repository
	logger *slog.Logger
}

func NewAvailabilityService(repo Repository, logger *slog.Logger) *AvailabilityService {
	return &AvailabilityService{repo: repo, logger: logger}
}

// Authorize reports whether caller may publish availability.
func (s *AvailabilityService) Authorize(caller auth.Identity) error {
	if model.Role(caller.Role) != model.RoleProvider {
		return apperr.Forbidden(msgProvidersOnly)
	}
	return nil
}

// CreateSlot publishes a slot for the calling provider. The role check runs
// before any payload validation.
func (s *AvailabilityService) CreateSlot(ctx context.Context, caller auth.Identity, date, timeSlot string) (model.Slot, error) {
	if err := s.Authorize(caller); err != nil {
		return model.Slot{}, err
	}
	day, err := model.ParseDate(date)
	if err != nil {
		return model.Slot{}, apperr.Invalid(err.Error())
	}
	slot, err := normalizeTimeSlot(timeSlot)
	if err != nil {
		return model.Slot{}, err
	}

	created, err := s.repo.CreateSlot(ctx, caller.UserID, day, slot)
	if errors.Is(err, storage.ErrDuplicate) {
		return model.Slot{}, apperr.Conflict(msgSlotExists)
	}
	if err != nil {
		return model.Slot{}, fmt.Errorf("create slot: %w", err)
	}
	s.logger.Info("slot created", "provider_id", caller.UserID, "date", day.String(), "time_slot", slot)
	return created, nil
}

// GetSlots lists a provider's slots ordered by time slot, optionally for a single day.
func (s *AvailabilityService) GetSlots(ctx context.Context, providerID int64, date string) ([]model.Slot, error) {
	var day *model.Date
	if strings.TrimSpace(date) != "" {
		parsed, err := model.ParseDate(date)
		if err != nil {
			return nil, apperr.Invalid(err.Error())
		}
		day = &parsed
	}
	slots, err := s.repo.ListSlots(ctx, providerID, day)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

func normalizeTimeSlot(raw string) (string, error) {
	slot := strings.TrimSpace(raw)
	if slot == "" {
		return "", apperr.Invalid("timeSlot is required")
	}
	if utf8.RuneCountInString(slot) > maxTimeSlotLen {
		return "", apperr.Invalid(fmt.Sprintf("timeSlot must be at most %d characters long", maxTimeSlotLen))
	}
	return slot, nil
}
