package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/adboard/adboard/internal/domain"
	"github.com/adboard/adboard/internal/report"
	"github.com/adboard/adboard/internal/service"
	apperrors "github.com/adboard/adboard/pkg/errors"
	"github.com/adboard/adboard/pkg/health"
)

// ============================================================================
// Mock repositories
// ============================================================================

type mockFavouriteRepo struct {
	mock.Mock
}

func (m *mockFavouriteRepo) Create(ctx context.Context, f *domain.Favourite) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *mockFavouriteRepo) GetByUserID(ctx context.Context, userID string) (*domain.Favourite, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Favourite), args.Error(1)
}

func (m *mockFavouriteRepo) SaveIfVersion(ctx context.Context, f *domain.Favourite, expectedVersion int64) (bool, error) {
	args := m.Called(ctx, f, expectedVersion)
	return args.Bool(0), args.Error(1)
}

func (m *mockFavouriteRepo) ListUserIDsByListingID(ctx context.Context, listingID string) ([]string, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockFavouriteRepo) UpdateListingSnapshot(ctx context.Context, listingID, title string, netPrice decimal.Decimal) (int, error) {
	args := m.Called(ctx, listingID, title, netPrice)
	return args.Int(0), args.Error(1)
}

type mockListingRepo struct {
	mock.Mock
}

func (m *mockListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *mockListingRepo) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *mockListingRepo) Search(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Listing), args.Int(1), args.Error(2)
}

func (m *mockListingRepo) ListIDsByUserID(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockListingRepo) ListPublishedBetween(ctx context.Context, from, to time.Time) ([]domain.Listing, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}

func (m *mockListingRepo) Update(ctx context.Context, l *domain.Listing) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *mockListingRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) SearchByName(ctx context.Context, query string, limit, offset int) ([]domain.User, int, error) {
	args := m.Called(ctx, query, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Int(1), args.Error(2)
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockCategoryRepo struct {
	mock.Mock
}

func (m *mockCategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockCategoryRepo) SearchByName(ctx context.Context, query string) ([]domain.Category, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockCategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCategoryRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockMessageRepo struct {
	mock.Mock
}

func (m *mockMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockMessageRepo) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *mockMessageRepo) ListConversation(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	args := m.Called(ctx, userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *mockMessageRepo) ListCorrespondents(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockMessageRepo) MarkRead(ctx context.Context, id, recipientID string) error {
	args := m.Called(ctx, id, recipientID)
	return args.Error(0)
}

// noopCache always misses; reads fall through to the repository.
type noopCache struct{}

func (noopCache) Get(ctx context.Context, id string) (*domain.Listing, error) {
	return nil, apperrors.ErrNotFound
}
func (noopCache) Set(ctx context.Context, listing *domain.Listing) error { return nil }
func (noopCache) Invalidate(ctx context.Context, id string) error        { return nil }

// noopPublisher drops every event; handler tests never talk to a broker.
type noopPublisher struct{}

func (noopPublisher) PublishUserRegistered(context.Context, *domain.User) error    { return nil }
func (noopPublisher) PublishListingCreated(context.Context, *domain.Listing) error { return nil }
func (noopPublisher) PublishListingUpdated(context.Context, *domain.Listing) error { return nil }
func (noopPublisher) PublishListingDeleted(context.Context, *domain.Listing, int) error {
	return nil
}
func (noopPublisher) PublishFavouriteAdded(context.Context, *domain.Favourite, string) error {
	return nil
}
func (noopPublisher) PublishFavouriteRemoved(context.Context, *domain.Favourite, string) error {
	return nil
}
func (noopPublisher) PublishMessageSent(context.Context, *domain.Message) error { return nil }

// ============================================================================
// Fixtures
// ============================================================================

type testMocks struct {
	favourites *mockFavouriteRepo
	listings   *mockListingRepo
	users      *mockUserRepo
	categories *mockCategoryRepo
	messages   *mockMessageRepo
}

func newTestRouter(t *testing.T) (http.Handler, *testMocks) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	producer := noopPublisher{}

	m := &testMocks{
		favourites: new(mockFavouriteRepo),
		listings:   new(mockListingRepo),
		users:      new(mockUserRepo),
		categories: new(mockCategoryRepo),
		messages:   new(mockMessageRepo),
	}

	favouriteService := service.NewFavouriteService(m.favourites, m.listings, producer, logger)
	listingService := service.NewListingService(m.listings, noopCache{}, favouriteService, producer, logger)
	svcs := Services{
		Users:      service.NewUserService(m.users, listingService, producer, logger),
		Categories: service.NewCategoryService(m.categories, logger),
		Listings:   listingService,
		Favourites: favouriteService,
		Messages:   service.NewMessageService(m.messages, m.listings, producer, logger),
		Reports: service.NewReportService(m.listings, m.users, map[string]report.Generator{
			"csv": report.NewCSVGenerator(),
			"txt": report.NewTXTGenerator(),
		}, logger),
	}

	return NewRouter(svcs, health.NewHandler(), logger), m
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func testAggregate(version int64, items ...domain.FavouriteItem) *domain.Favourite {
	f := &domain.Favourite{
		ID:      "f-1",
		UserID:  "u-1",
		Items:   items,
		Version: version,
	}
	f.RecomputeTotal()
	return f
}

// ============================================================================
// Favourites endpoints
// ============================================================================

func TestFavouriteEndpoints_Get(t *testing.T) {
	router, m := newTestRouter(t)

	item := domain.FavouriteItem{ListingID: "l-1", Title: "Bike", NetPrice: decimal.RequireFromString("66.66")}
	m.favourites.On("GetByUserID", mock.Anything, "u-1").Return(testAggregate(3, item), nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/users/u-1/favourites", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "u-1", data["user_id"])
	assert.Equal(t, "66.66", data["total"])
}

func TestFavouriteEndpoints_Get_AggregateMissing(t *testing.T) {
	router, m := newTestRouter(t)

	m.favourites.On("GetByUserID", mock.Anything, "u-ghost").Return(nil, apperrors.ErrNotFound)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/users/u-ghost/favourites", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "USER_AGGREGATE_NOT_FOUND", errObj["code"])
}

func TestFavouriteEndpoints_Add_Created(t *testing.T) {
	router, m := newTestRouter(t)

	m.favourites.On("GetByUserID", mock.Anything, "u-1").Return(testAggregate(1), nil)
	m.listings.On("GetByID", mock.Anything, "l-1").Return(&domain.Listing{
		ID:       "l-1",
		Title:    "Bike",
		NetPrice: decimal.RequireFromString("66.66"),
	}, nil)
	m.favourites.On("SaveIfVersion", mock.Anything, mock.AnythingOfType("*domain.Favourite"), int64(1)).Return(true, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/users/u-1/favourites/l-1", nil)

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "added", data["outcome"])
}

func TestFavouriteEndpoints_Add_AlreadyAdded(t *testing.T) {
	router, m := newTestRouter(t)

	item := domain.FavouriteItem{ListingID: "l-1", NetPrice: decimal.RequireFromString("66.66")}
	m.favourites.On("GetByUserID", mock.Anything, "u-1").Return(testAggregate(1, item), nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/users/u-1/favourites/l-1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "already_added", data["outcome"])
	m.listings.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestFavouriteEndpoints_Add_ListingNotFound(t *testing.T) {
	router, m := newTestRouter(t)

	m.favourites.On("GetByUserID", mock.Anything, "u-1").Return(testAggregate(1), nil)
	m.listings.On("GetByID", mock.Anything, "l-ghost").Return(nil, apperrors.NotFound("listing", "l-ghost"))

	rec := doRequest(t, router, http.MethodPost, "/api/v1/users/u-1/favourites/l-ghost", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "listing_not_found", data["outcome"])
}

func TestFavouriteEndpoints_Remove(t *testing.T) {
	router, m := newTestRouter(t)

	item := domain.FavouriteItem{ListingID: "l-1", NetPrice: decimal.RequireFromString("66.66")}
	m.favourites.On("GetByUserID", mock.Anything, "u-1").Return(testAggregate(2, item), nil)
	m.favourites.On("SaveIfVersion", mock.Anything, mock.AnythingOfType("*domain.Favourite"), int64(2)).Return(true, nil)

	rec := doRequest(t, router, http.MethodDelete, "/api/v1/users/u-1/favourites/l-1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "removed", data["outcome"])
}

func TestFavouriteEndpoints_Remove_NotInFavourites(t *testing.T) {
	router, m := newTestRouter(t)

	m.favourites.On("GetByUserID", mock.Anything, "u-1").Return(testAggregate(2), nil)

	rec := doRequest(t, router, http.MethodDelete, "/api/v1/users/u-1/favourites/l-1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "not_in_favourites", data["outcome"])
}

// ============================================================================
// Listing endpoints
// ============================================================================

func TestListingEndpoints_Create(t *testing.T) {
	router, m := newTestRouter(t)

	m.listings.On("Create", mock.Anything, mock.AnythingOfType("*domain.Listing")).Return(nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/listings", map[string]any{
		"user_id":  "u-1",
		"title":    "City bike",
		"price":    "100.00",
		"discount": "33.333",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "66.66", data["net_price"])
}

func TestListingEndpoints_Create_ValidationError(t *testing.T) {
	router, m := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/listings", map[string]any{
		"user_id": "u-1",
		"title":   "ab",
		"price":   "10",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
	m.listings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListingEndpoints_Delete_CleansFavourites(t *testing.T) {
	router, m := newTestRouter(t)

	m.listings.On("GetByID", mock.Anything, "l-1").Return(&domain.Listing{ID: "l-1", UserID: "u-9"}, nil)
	m.favourites.On("ListUserIDsByListingID", mock.Anything, "l-1").Return([]string{"u-1"}, nil)
	item := domain.FavouriteItem{ListingID: "l-1", NetPrice: decimal.RequireFromString("66.66")}
	m.favourites.On("GetByUserID", mock.Anything, "u-1").Return(testAggregate(1, item), nil)
	m.favourites.On("SaveIfVersion", mock.Anything, mock.AnythingOfType("*domain.Favourite"), int64(1)).Return(true, nil)
	m.listings.On("Delete", mock.Anything, "l-1").Return(nil)

	rec := doRequest(t, router, http.MethodDelete, "/api/v1/listings/l-1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	m.favourites.AssertExpectations(t)
	m.listings.AssertExpectations(t)
}

func TestListingEndpoints_Search_ExcludesUser(t *testing.T) {
	router, m := newTestRouter(t)

	m.listings.On("Search", mock.Anything, mock.MatchedBy(func(f domain.ListingFilter) bool {
		return f.ExcludeUserID == "u-1" && f.UserID == ""
	})).Return([]domain.Listing{{ID: "l-2", UserID: "u-9"}}, 1, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/listings?exclude_user_id=u-1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	m.listings.AssertExpectations(t)
}

// ============================================================================
// Category endpoints
// ============================================================================

func TestCategoryEndpoints_List_WithQuery(t *testing.T) {
	router, m := newTestRouter(t)

	m.categories.On("SearchByName", mock.Anything, "bike").Return([]domain.Category{{ID: "c-1", Name: "Bikes"}}, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/categories?query=bike", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].([]any)
	require.Len(t, data, 1)
	m.categories.AssertNotCalled(t, "List", mock.Anything)
}

// ============================================================================
// Message endpoints
// ============================================================================

func TestMessageEndpoints_Correspondents(t *testing.T) {
	router, m := newTestRouter(t)

	m.messages.On("ListCorrespondents", mock.Anything, "u-1").Return([]string{"u-2", "u-3"}, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/messages/correspondents/u-1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].([]any)
	assert.Equal(t, []any{"u-2", "u-3"}, data)
}

// ============================================================================
// User endpoints
// ============================================================================

func TestUserEndpoints_Delete_CleansListingsAndFavourites(t *testing.T) {
	router, m := newTestRouter(t)

	m.listings.On("ListIDsByUserID", mock.Anything, "u-9").Return([]string{"l-1"}, nil)
	m.listings.On("GetByID", mock.Anything, "l-1").Return(&domain.Listing{ID: "l-1", UserID: "u-9"}, nil)
	m.favourites.On("ListUserIDsByListingID", mock.Anything, "l-1").Return([]string{"u-1"}, nil)
	item := domain.FavouriteItem{ListingID: "l-1", NetPrice: decimal.RequireFromString("66.66")}
	m.favourites.On("GetByUserID", mock.Anything, "u-1").Return(testAggregate(1, item), nil)
	m.favourites.On("SaveIfVersion", mock.Anything, mock.AnythingOfType("*domain.Favourite"), int64(1)).Return(true, nil)
	m.listings.On("Delete", mock.Anything, "l-1").Return(nil)
	m.users.On("Delete", mock.Anything, "u-9").Return(nil)

	rec := doRequest(t, router, http.MethodDelete, "/api/v1/users/u-9", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	m.favourites.AssertExpectations(t)
	m.listings.AssertExpectations(t)
	m.users.AssertExpectations(t)
}

func TestUserEndpoints_Register(t *testing.T) {
	router, m := newTestRouter(t)

	m.users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/users", map[string]any{
		"email":    "alice@example.com",
		"password": "SecurePass123",
		"name":     "Alice",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "alice@example.com", data["email"])
	assert.NotContains(t, rec.Body.String(), "password_hash")
}

func TestUserEndpoints_Register_InvalidEmail(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/users", map[string]any{
		"email":    "not-an-email",
		"password": "SecurePass123",
		"name":     "Alice",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ============================================================================
// Report endpoints
// ============================================================================

func TestReportEndpoints_MonthlyCSV(t *testing.T) {
	router, m := newTestRouter(t)

	m.listings.On("ListPublishedBetween", mock.Anything, mock.Anything, mock.Anything).Return([]domain.Listing{
		{ID: "l-1", UserID: "u-1", NetPrice: decimal.RequireFromString("66.66")},
	}, nil)
	m.users.On("GetByID", mock.Anything, "u-1").Return(&domain.User{ID: "u-1", Name: "Alice"}, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/reports/monthly?year=2026&month=8&format=csv", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "listings-2026-08.csv")
	assert.Contains(t, rec.Body.String(), "u-1,Alice,1,66.66,66.66")
}

func TestReportEndpoints_Monthly_BadYear(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/reports/monthly?year=abc&month=8", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
