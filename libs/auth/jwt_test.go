package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestHS256RoundTrip(t *testing.T) {
	signer := NewHS256Signer("test-secret", time.Hour, "bookmycare")

	token, err := signer.Sign(Identity{UserID: 42, Role: "PROVIDER"})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	id, err := signer.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if id.UserID != 42 || id.Role != "PROVIDER" {
		t.Fatalf("identity mismatch: got %+v", id)
	}

	other := NewHS256Signer("wrong-secret", time.Hour, "bookmycare")
	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken with wrong secret, got %v", err)
	}
}

func TestHS256Expired(t *testing.T) {
	signer := NewHS256Signer("test-secret", time.Minute, "bookmycare")
	signer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := signer.Sign(Identity{UserID: 1, Role: "CUSTOMER"})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	signer.now = time.Now
	if _, err := signer.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}
}

func TestHS256RejectsTamperedPayload(t *testing.T) {
	signer := NewHS256Signer("test-secret", time.Hour, "bookmycare")
	token, err := signer.Sign(Identity{UserID: 7, Role: "CUSTOMER"})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	parts := strings.Split(token, ".")
	forged, err := NewHS256Signer("other", time.Hour, "bookmycare").Sign(Identity{UserID: 7, Role: "ADMIN"})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	forgedParts := strings.Split(forged, ".")
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]
	if _, err := signer.Verify(tampered); err == nil {
		t.Fatal("expected tampered token to fail")
	}
}

func TestHS256RejectsNonNumericSubject(t *testing.T) {
	signer := NewHS256Signer("test-secret", time.Hour, "")
	token, err := signer.Sign(Identity{UserID: 0, Role: "CUSTOMER"})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if _, err := signer.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected zero subject to be rejected, got %v", err)
	}
}
