package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Abhishek-Jatav/bookMyCare/libs/auth"
	"github.com/Abhishek-Jatav/bookMyCare/libs/events"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/apperr"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/model"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.auth.Register(ctx, RegisterInput{Name: " Dr Rao ", Email: "Rao@Clinic.test", Password: "secret123", Role: model.RoleProvider})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if res.Message != "User registered successfully" {
		t.Fatalf("unexpected message %q", res.Message)
	}
	if res.User.Email != "rao@clinic.test" || res.User.Name != "Dr Rao" || res.User.Role != model.RoleProvider {
		t.Fatalf("unexpected user %+v", res.User)
	}
	id, err := f.signer.Verify(res.Token)
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if id.UserID != res.User.ID || id.Role != "PROVIDER" {
		t.Fatalf("unexpected identity %+v", id)
	}

	evts := f.store.Events()
	if len(evts) != 1 || evts[0].EventType != events.TopicUserRegistered {
		t.Fatalf("expected one user registered event, got %+v", evts)
	}
	var payload events.UserRegistered
	if err := json.Unmarshal(evts[0].Payload, &payload); err != nil || payload.Email != "rao@clinic.test" {
		t.Fatalf("unexpected payload %s (%v)", evts[0].Payload, err)
	}

	login, err := f.auth.Login(ctx, "rao@clinic.test ", "secret123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.User.ID != res.User.ID || login.Token == "" {
		t.Fatalf("unexpected login result %+v", login)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Ann", "ann@example.test", model.RoleCustomer)

	_, err := f.auth.Register(context.Background(), RegisterInput{Name: "Other", Email: "ANN@example.test", Password: "different", Role: model.RoleProvider})
	expectKind(t, err, apperr.KindConflict, "Email already registered")
	if n := len(f.store.Events()); n != 1 {
		t.Fatalf("expected failed registration to write no event, got %d events", n)
	}
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Register(context.Background(), RegisterInput{Name: "Root", Email: "root@example.test", Password: "secret123", Role: model.RoleAdmin})
	expectKind(t, err, apperr.KindInvalid, "")
}

func TestRegisterRejectsPasswordOverBcryptLimit(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Register(context.Background(), RegisterInput{Name: "Eve", Email: "eve@example.test", Password: strings.Repeat("é", 40), Role: model.RoleCustomer})
	expectKind(t, err, apperr.KindInvalid, "password must be at most 72 bytes")

	if _, err := f.auth.Register(context.Background(), RegisterInput{Name: "Eve", Email: "eve@example.test", Password: strings.Repeat("é", 36), Role: model.RoleCustomer}); err != nil {
		t.Fatalf("72-byte password should be accepted: %v", err)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Ann", "ann@example.test", model.RoleCustomer)
	ctx := context.Background()

	_, wrongPassword := f.auth.Login(ctx, "ann@example.test", "not-the-password")
	_, unknownEmail := f.auth.Login(ctx, "nobody@example.test", "secret123")

	expectKind(t, wrongPassword, apperr.KindUnauthorized, "Invalid credentials")
	expectKind(t, unknownEmail, apperr.KindUnauthorized, "Invalid credentials")
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	id := f.register(t, "Ann", "ann@example.test", model.RoleCustomer)

	user, err := f.auth.Profile(context.Background(), id)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if user.ID != id.UserID || user.Email != "ann@example.test" {
		t.Fatalf("unexpected profile %+v", user)
	}

	_, err = f.auth.Profile(context.Background(), auth.Identity{UserID: 999, Role: "CUSTOMER"})
	expectKind(t, err, apperr.KindInvalid, "User not found")
}
