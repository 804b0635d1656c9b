package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/adboard/adboard/internal/domain"
	"github.com/adboard/adboard/internal/repository"
	apperrors "github.com/adboard/adboard/pkg/errors"
)

// bcryptCost is the work factor for password hashing.
const bcryptCost = 12

// RegisterInput holds the parameters for registering a user.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Phone    string `json:"phone" validate:"omitempty,e164"`
}

// UpdateUserInput holds the parameters for updating a user profile. Nil
// fields are left unchanged.
type UpdateUserInput struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,e164"`
}

// UserService implements the business logic for users.
type UserService struct {
	repo     repository.UserRepository
	listings *ListingService
	producer EventPublisher
	logger   *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository, listings *ListingService, producer EventPublisher, logger *slog.Logger) *UserService {
	return &UserService{
		repo:     repo,
		listings: listings,
		producer: producer,
		logger:   logger,
	}
}

// Register creates a new user account. The user's empty favourites
// aggregate is created in the same transaction as the user row, so every
// user has one from the moment they exist.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(input.Name),
		Phone:        input.Phone,
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	return user, nil
}

// VerifyPassword checks a user's credentials and returns the user on success.
func (s *UserService) VerifyPassword(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, apperrors.InvalidInput("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.InvalidInput("invalid credentials")
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// SearchByName returns users whose name matches the query.
func (s *UserService) SearchByName(ctx context.Context, query string, limit, offset int) ([]domain.User, int, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.SearchByName(ctx, strings.TrimSpace(query), limit, offset)
}

// Update modifies a user's profile.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Delete removes a user account along with their favourites aggregate. The
// user's listings are deleted first through the listing service, which scrubs
// each one from every other user's favourites; if that fails the account
// stays, so no aggregate is left referencing a listing that no longer exists.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("user id is required")
	}

	deleted, err := s.listings.DeleteAllByUser(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user's listings: %w", err)
	}
	if deleted > 0 {
		s.logger.InfoContext(ctx, "deleted user's listings",
			slog.String("user_id", id),
			slog.Int("listings", deleted),
		)
	}

	return s.repo.Delete(ctx, id)
}
