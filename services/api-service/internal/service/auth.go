package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Abhishek-Jatav/bookMyCare/libs/auth"
	"github.com/Abhishek-Jatav/bookMyCare/libs/events"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/apperr"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/model"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/outbox"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgEmailTaken         = "Email already registered"
	msgInvalidCredentials = "Invalid credentials"
	msgUserNotFound       = "User not found"
	msgRegistered         = "User registered successfully"
)

type AuthService struct {
	repo      Repository
	signer    TokenSigner
	cost      int
	logger    *slog.Logger
	dummyHash []byte
}

const maxPasswordBytes = 72

func NewAuthService(repo Repository, signer TokenSigner, bcryptCost int, logger *slog.Logger) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	// Compared against when the email is unknown so both login failures cost the same.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("bookmycare-dummy-password"), bcryptCost)
	return &AuthService{repo: repo, signer: signer, cost: bcryptCost, logger: logger, dummyHash: dummy}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
}

type AuthResult struct {
	Message string           `json:"message,omitempty"`
	Token   string           `json:"token_bookMyCare"`
	User    model.PublicUser `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" {
		return AuthResult{}, apperr.Invalid("name is required")
	}
	if !in.Role.SelfRegistrable() {
		return AuthResult{}, apperr.Invalid("role must be one of: CUSTOMER, PROVIDER")
	}
	// bcrypt limit is in bytes, not characters.
	if len(in.Password) > maxPasswordBytes {
		return AuthResult{}, apperr.Invalid(fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}

	_, err := s.repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return AuthResult{}, apperr.Conflict(msgEmailTaken)
	case !errors.Is(err, storage.ErrNotFound):
		return AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	var user model.User
	err = s.repo.InTx(ctx, func(q storage.Queries) error {
		created, err := q.CreateUser(ctx, model.User{
			Name:         name,
			Email:        email,
			PasswordHash: string(hash),
			Role:         in.Role,
		})
		if errors.Is(err, storage.ErrDuplicate) {
			return apperr.Conflict(msgEmailTaken)
		}
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		user = created

		evt, err := outbox.NewEvent("user", created.ID, events.TopicUserRegistered, events.UserRegistered{
			UserID:       created.ID,
			Name:         created.Name,
			Email:        created.Email,
			Role:         string(created.Role),
			RegisteredAt: created.CreatedAt.UTC(),
		})
		if err != nil {
			return err
		}
		return q.InsertEvent(ctx, evt)
	})
	if err != nil {
		return AuthResult{}, err
	}

	token, err := s.issue(user)
	if err != nil {
		return AuthResult{}, err
	}
	s.logger.Info("user registered", "user_id", user.ID, "role", user.Role)
	return AuthResult{Message: msgRegistered, Token: token, User: user.Public()}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return AuthResult{}, fmt.Errorf("lookup user: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return AuthResult{}, apperr.Unauthorized(msgInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return AuthResult{}, apperr.Unauthorized(msgInvalidCredentials)
	}

	token, err := s.issue(user)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, User: user.Public()}, nil
}

// Profile returns the caller's public record. A token whose subject no longer
// exists is rejected as a bad request.
func (s *AuthService) Profile(ctx context.Context, caller auth.Identity) (model.PublicUser, error) {
	user, err := s.repo.GetUserByID(ctx, caller.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return model.PublicUser{}, apperr.Invalid(msgUserNotFound)
	}
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("get user: %w", err)
	}
	return user.Public(), nil
}

func (s *AuthService) issue(user model.User) (string, error) {
	token, err := s.signer.Sign(auth.Identity{UserID: user.ID, Role: string(user.Role)})
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
