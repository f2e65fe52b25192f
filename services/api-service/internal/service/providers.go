package service

import (
	"context"
	"fmt"

	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/model"
)

type ProviderService struct {
	repo Repository
}

func NewProviderService(repo Repository) *ProviderService {
	return &ProviderService{repo: repo}
}

func (s *ProviderService) List(ctx context.Context) ([]model.Provider, error) {
	users, err := s.repo.ListUsersByRole(ctx, model.RoleProvider)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	providers := make([]model.Provider, 0, len(users))
	for _, u := range users {
		providers = append(providers, model.Provider{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	return providers, nil
}
