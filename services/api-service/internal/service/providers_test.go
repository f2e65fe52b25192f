package service

import (
	"context"
	"testing"

	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/model"
)

func TestProvidersListOnlyProviders(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Dr Zed", "z@example.test", model.RoleProvider)
	f.register(t, "Cara", "c@example.test", model.RoleCustomer)
	f.register(t, "Dr Amy", "a@example.test", model.RoleProvider)

	providers, err := f.providers.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(providers) != 2 {
		t.Fatalf("expected 2 providers, got %+v", providers)
	}
	if providers[0].Name != "Dr Amy" || providers[1].Email != "z@example.test" {
		t.Fatalf("unexpected providers %+v", providers)
	}
}
