package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/adboard/adboard/internal/domain"
	apperrors "github.com/adboard/adboard/pkg/errors"
)

// --- Mock Category Repository ---

type mockCategoryRepository struct {
	mock.Mock
}

func (m *mockCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) SearchByName(ctx context.Context, query string) ([]domain.Category, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestCategoryService_Create_Slugifies(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := NewCategoryService(repo, newTestLogger())
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Category")).Return(nil)

	category, err := svc.Create(ctx, CategoryInput{Name: "  Bikes & Scooters  "})

	require.NoError(t, err)
	assert.Equal(t, "Bikes & Scooters", category.Name)
	assert.Equal(t, "bikes-scooters", category.Slug)
	repo.AssertExpectations(t)
}

func TestCategoryService_Create_EmptyName(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := NewCategoryService(repo, newTestLogger())

	category, err := svc.Create(context.Background(), CategoryInput{Name: "   "})

	assert.Nil(t, category)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCategoryService_SearchByName(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := NewCategoryService(repo, newTestLogger())
	ctx := context.Background()

	repo.On("SearchByName", ctx, "bike").Return([]domain.Category{{ID: "c-1", Name: "Bikes"}}, nil)

	categories, err := svc.SearchByName(ctx, "  bike  ")

	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Bikes", categories[0].Name)
	repo.AssertExpectations(t)
}

func TestCategoryService_SearchByName_BlankQueryListsAll(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := NewCategoryService(repo, newTestLogger())
	ctx := context.Background()

	repo.On("List", ctx).Return([]domain.Category{{ID: "c-1"}, {ID: "c-2"}}, nil)

	categories, err := svc.SearchByName(ctx, "   ")

	require.NoError(t, err)
	assert.Len(t, categories, 2)
	repo.AssertNotCalled(t, "SearchByName", mock.Anything, mock.Anything)
}

func TestCategoryService_Delete_StillReferenced(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := NewCategoryService(repo, newTestLogger())
	ctx := context.Background()

	repo.On("Delete", ctx, "c-1").Return(apperrors.Conflict("category still has listings"))

	err := svc.Delete(ctx, "c-1")

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	repo.AssertExpectations(t)
}
