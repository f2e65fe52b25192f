// Package service implements the booking domain: accounts, availability,
// bookings and the provider directory.
package service

import (
	"context"

	"github.com/Abhishek-Jatav/bookMyCare/libs/auth"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/storage"
)

// Repository is storage.Queries plus transactions.
type Repository interface {
	storage.Queries
	InTx(ctx context.Context, fn func(q storage.Queries) error) error
}

type TokenSigner interface {
	Sign(id auth.Identity) (string, error)
}
