package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/adboard/adboard/internal/domain"
	apperrors "github.com/adboard/adboard/pkg/errors"
)

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) SearchByName(ctx context.Context, query string, limit, offset int) ([]domain.User, int, error) {
	args := m.Called(ctx, query, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Int(1), args.Error(2)
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// userFixture wires a user service over mocked stores, with a real listing
// service behind it so account deletion exercises the listing cleanup path.
type userFixture struct {
	users      *mockUserRepository
	listings   *mockListingRepository
	favourites *mockFavouriteRepository
	cache      *mockListingCache
	svc        *UserService
}

func newUserFixture(repo *mockUserRepository) *userFixture {
	listings := new(mockListingRepository)
	favourites := new(mockFavouriteRepository)
	cache := new(mockListingCache)
	favouriteSvc := NewFavouriteService(favourites, listings, noopEvents{}, newTestLogger())
	listingSvc := NewListingService(listings, cache, favouriteSvc, noopEvents{}, newTestLogger())
	return &userFixture{
		users:      repo,
		listings:   listings,
		favourites: favourites,
		cache:      cache,
		svc:        NewUserService(repo, listingSvc, noopEvents{}, newTestLogger()),
	}
}

func newUserService(repo *mockUserRepository) *UserService {
	return newUserFixture(repo).svc
}

// hashForTest creates a bcrypt hash with cost 4 for fast tests.
func hashForTest(password string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), 4)
	if err != nil {
		panic(err)
	}
	return string(h)
}

// --- Register ---

func TestUserService_Register_Success(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newUserService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	user, err := svc.Register(ctx, RegisterInput{
		Email:    "  Alice@Example.com ",
		Password: "SecurePass123",
		Name:     "Alice",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email, "email is normalised")
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "SecurePass123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("SecurePass123")))
	repo.AssertExpectations(t)
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newUserService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
		Return(apperrors.AlreadyExists("user", "email", "alice@example.com"))

	user, err := svc.Register(ctx, RegisterInput{
		Email:    "alice@example.com",
		Password: "SecurePass123",
		Name:     "Alice",
	})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	repo.AssertExpectations(t)
}

// --- VerifyPassword ---

func TestUserService_VerifyPassword_Success(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newUserService(repo)
	ctx := context.Background()

	stored := &domain.User{ID: "u-1", Email: "alice@example.com", PasswordHash: hashForTest("SecurePass123")}
	repo.On("GetByEmail", ctx, "alice@example.com").Return(stored, nil)

	user, err := svc.VerifyPassword(ctx, "Alice@Example.com", "SecurePass123")

	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	repo.AssertExpectations(t)
}

func TestUserService_VerifyPassword_WrongPassword(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newUserService(repo)
	ctx := context.Background()

	stored := &domain.User{ID: "u-1", Email: "alice@example.com", PasswordHash: hashForTest("SecurePass123")}
	repo.On("GetByEmail", ctx, "alice@example.com").Return(stored, nil)

	user, err := svc.VerifyPassword(ctx, "alice@example.com", "wrong")

	assert.Nil(t, user)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUserService_VerifyPassword_UnknownEmail(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newUserService(repo)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, apperrors.ErrNotFound)

	user, err := svc.VerifyPassword(ctx, "nobody@example.com", "whatever")

	assert.Nil(t, user)
	// Unknown accounts and wrong passwords are indistinguishable to callers.
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// --- SearchByName ---

func TestUserService_SearchByName_ClampsLimit(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newUserService(repo)
	ctx := context.Background()

	repo.On("SearchByName", ctx, "ali", maxSearchLimit, 0).Return([]domain.User{{ID: "u-1"}}, 1, nil)

	users, total, err := svc.SearchByName(ctx, " ali ", 10_000, -5)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, users, 1)
	repo.AssertExpectations(t)
}

// --- Delete ---

func TestUserService_Delete_ScrubsListingsFromOthersFavourites(t *testing.T) {
	repo := new(mockUserRepository)
	fx := newUserFixture(repo)
	ctx := context.Background()

	// seller-1 owns one listing, which u-9 has favourited. Deleting the
	// account must remove the listing from u-9's aggregate before either
	// row goes, or u-9's total keeps counting a listing that no longer
	// exists.
	fx.listings.On("ListIDsByUserID", ctx, "seller-1").Return([]string{"l-2"}, nil)
	fx.listings.On("GetByID", ctx, "l-2").Return(bikeListing(), nil)
	fx.favourites.On("ListUserIDsByListingID", ctx, "l-2").Return([]string{"u-9"}, nil)
	other := aggregate(3, favItem("l-2", "66.66"))
	other.UserID = "u-9"
	fx.favourites.On("GetByUserID", mock.Anything, "u-9").Return(other, nil)
	fx.favourites.On("SaveIfVersion", mock.Anything, mock.MatchedBy(func(f *domain.Favourite) bool {
		return !f.Contains("l-2")
	}), int64(3)).Return(true, nil)
	fx.listings.On("Delete", ctx, "l-2").Return(nil)
	fx.cache.On("Invalidate", ctx, "l-2").Return(nil)
	repo.On("Delete", ctx, "seller-1").Return(nil)

	err := fx.svc.Delete(ctx, "seller-1")

	require.NoError(t, err)
	repo.AssertExpectations(t)
	fx.listings.AssertExpectations(t)
	fx.favourites.AssertExpectations(t)
}

func TestUserService_Delete_AbortsWhenListingCleanupFails(t *testing.T) {
	repo := new(mockUserRepository)
	fx := newUserFixture(repo)
	ctx := context.Background()

	fx.listings.On("ListIDsByUserID", ctx, "seller-1").Return([]string{"l-2"}, nil)
	fx.listings.On("GetByID", ctx, "l-2").Return(bikeListing(), nil)
	fx.favourites.On("ListUserIDsByListingID", ctx, "l-2").Return(nil, errors.New("connection reset"))

	err := fx.svc.Delete(ctx, "seller-1")

	assert.Error(t, err)
	// The account outlives its listings, and the listings outlive their
	// favourite references.
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// --- Update ---

func TestUserService_Update_PartialFields(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newUserService(repo)
	ctx := context.Background()

	stored := &domain.User{ID: "u-1", Email: "alice@example.com", Name: "Alice", Phone: "+15551234567"}
	repo.On("GetByID", ctx, "u-1").Return(stored, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	name := "Alice B"
	user, err := svc.Update(ctx, "u-1", UpdateUserInput{Name: &name})

	require.NoError(t, err)
	assert.Equal(t, "Alice B", user.Name)
	assert.Equal(t, "+15551234567", user.Phone, "unset fields are untouched")
	repo.AssertExpectations(t)
}
