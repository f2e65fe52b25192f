package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRequireRole(t *testing.T) {
	h := RequireRole("PROVIDER", "ADMIN")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	req = req.WithContext(WithIdentity(req.Context(), Identity{UserID: 1, Role: "CUSTOMER"}))
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	if rw.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rw.Code)
	}

	reqOK := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	reqOK = reqOK.WithContext(WithIdentity(reqOK.Context(), Identity{UserID: 2, Role: "PROVIDER"}))
	rwOK := httptest.NewRecorder()
	h.ServeHTTP(rwOK, reqOK)
	if rwOK.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rwOK.Code)
	}

	rwAnon := httptest.NewRecorder()
	h.ServeHTTP(rwAnon, httptest.NewRequest(http.MethodGet, "http://example.com", nil))
	if rwAnon.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rwAnon.Code)
	}
}

func TestRequireAuth(t *testing.T) {
	signer := NewHS256Signer("test-secret", time.Hour, "bookmycare")
	token, err := signer.Sign(Identity{UserID: 9, Role: "CUSTOMER"})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	h := RequireAuth(signer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok || id.UserID != 9 || id.Role != "CUSTOMER" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}

	reqBad := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	reqBad.Header.Set("Authorization", "Bearer badtoken")
	rwBad := httptest.NewRecorder()
	h.ServeHTTP(rwBad, reqBad)
	if rwBad.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rwBad.Code)
	}

	rwMissing := httptest.NewRecorder()
	h.ServeHTTP(rwMissing, httptest.NewRequest(http.MethodGet, "http://example.com", nil))
	if rwMissing.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rwMissing.Code)
	}
}
