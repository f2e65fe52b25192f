package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Abhishek-Jatav/bookMyCare/libs/auth"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/apperr"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/model"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/storage/storagetest"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	store        *storagetest.Store
	signer       *auth.HS256Signer
	auth         *AuthService
	availability *AvailabilityService
	bookings     *BookingService
	providers    *ProviderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storagetest.New()
	signer := auth.NewHS256Signer("test-secret", time.Hour, "bookmycare")
	return &fixture{
		store:        store,
		signer:       signer,
		auth:         NewAuthService(store, signer, bcrypt.MinCost, logger),
		availability: NewAvailabilityService(store, logger),
		bookings:     NewBookingService(store, logger),
		providers:    NewProviderService(store),
	}
}

// register creates an account and returns the identity its token carries.
func (f *fixture) register(t *testing.T, name, email string, role model.Role) auth.Identity {
	t.Helper()
	res, err := f.auth.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: "secret123", Role: role})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	id, err := f.signer.Verify(res.Token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	return id
}

func (f *fixture) slot(t *testing.T, provider auth.Identity, date, timeSlot string) model.Slot {
	t.Helper()
	s, err := f.availability.CreateSlot(context.Background(), provider, date, timeSlot)
	if err != nil {
		t.Fatalf("create slot %s %s: %v", date, timeSlot, err)
	}
	return s
}

func expectKind(t *testing.T, err error, kind apperr.Kind, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	got, ok := apperr.KindOf(err)
	if !ok || got != kind {
		t.Fatalf("expected %s error, got %v", kind, err)
	}
	if msg != "" && err.Error() != msg {
		t.Fatalf("expected message %q, got %q", msg, err.Error())
	}
}
