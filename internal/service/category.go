package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adboard/adboard/internal/domain"
	"github.com/adboard/adboard/internal/repository"
	apperrors "github.com/adboard/adboard/pkg/errors"
	"github.com/adboard/adboard/pkg/slug"
)

// CategoryInput holds the parameters for creating or updating a category.
type CategoryInput struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// CategoryService implements the business logic for categories.
type CategoryService struct {
	repo   repository.CategoryRepository
	logger *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(repo repository.CategoryRepository, logger *slog.Logger) *CategoryService {
	return &CategoryService{repo: repo, logger: logger}
}

// Create adds a new category. The slug is derived from the name.
func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.InvalidInput("category name is required")
	}

	now := time.Now().UTC()
	category := &domain.Category{
		ID:        uuid.NewString(),
		Name:      name,
		Slug:      slug.Generate(name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// GetByID retrieves a category by ID.
func (s *CategoryService) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("category id is required")
	}
	return s.repo.GetByID(ctx, id)
}

// List returns all categories.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.repo.List(ctx)
}

// SearchByName returns categories whose name matches the query. A blank
// query falls back to the full list.
func (s *CategoryService) SearchByName(ctx context.Context, query string) ([]domain.Category, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.repo.List(ctx)
	}
	return s.repo.SearchByName(ctx, query)
}

// Update renames a category and refreshes its slug.
func (s *CategoryService) Update(ctx context.Context, id string, input CategoryInput) (*domain.Category, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("category id is required")
	}

	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.InvalidInput("category name is required")
	}
	category.Name = name
	category.Slug = slug.Generate(name)

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// Delete removes a category. Categories that still have listings are kept.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("category id is required")
	}
	return s.repo.Delete(ctx, id)
}
