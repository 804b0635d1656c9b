package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/adboard/adboard/internal/domain"
	"github.com/adboard/adboard/internal/service"
	"github.com/adboard/adboard/pkg/pagination"
	"github.com/adboard/adboard/pkg/validator"
)

// ListingHandler handles HTTP requests for listing endpoints.
type ListingHandler struct {
	service *service.ListingService
	logger  *slog.Logger
}

// NewListingHandler creates a new listing HTTP handler.
func NewListingHandler(svc *service.ListingService, logger *slog.Logger) *ListingHandler {
	return &ListingHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateListingRequest is the JSON request body for publishing a listing.
type CreateListingRequest struct {
	UserID      string  `json:"user_id" validate:"required"`
	CategoryID  *string `json:"category_id,omitempty"`
	Title       string  `json:"title" validate:"required,min=3,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	Price       string  `json:"price" validate:"required"`
	Discount    string  `json:"discount"`
	ImageURL    string  `json:"image_url" validate:"omitempty,url"`
}

// UpdateListingRequest is the JSON request body for updating a listing.
type UpdateListingRequest struct {
	CategoryID  *string `json:"category_id,omitempty"`
	Title       *string `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price       *string `json:"price,omitempty"`
	Discount    *string `json:"discount,omitempty"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,url"`
}

// Create handles POST /api/v1/listings
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateListingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		writeBadRequest(w, "price must be a decimal number")
		return
	}

	discount := decimal.Zero
	if req.Discount != "" {
		if discount, err = decimal.NewFromString(req.Discount); err != nil {
			writeBadRequest(w, "discount must be a decimal number")
			return
		}
	}

	listing, err := h.service.Create(r.Context(), service.CreateListingInput{
		UserID:      req.UserID,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Price:       price,
		Discount:    discount,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: listing})
}

// Get handles GET /api/v1/listings/{id}
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	listing, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: listing})
}

// Search handles GET /api/v1/listings
func (h *ListingHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := domain.ListingFilter{
		UserID:        q.Get("user_id"),
		ExcludeUserID: q.Get("exclude_user_id"),
		CategoryID:    q.Get("category_id"),
		Query:         q.Get("query"),
	}

	if raw := q.Get("min_price"); raw != "" {
		min, err := decimal.NewFromString(raw)
		if err != nil {
			writeBadRequest(w, "min_price must be a decimal number")
			return
		}
		filter.MinPrice = &min
	}
	if raw := q.Get("max_price"); raw != "" {
		max, err := decimal.NewFromString(raw)
		if err != nil {
			writeBadRequest(w, "max_price must be a decimal number")
			return
		}
		filter.MaxPrice = &max
	}

	page := pagination.FromRequest(r)
	filter.Limit = page.Limit
	filter.Offset = page.Offset

	listings, total, err := h.service.Search(r.Context(), filter)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: pagination.NewResult(listings, total, page)})
}

// Update handles PATCH /api/v1/listings/{id}
func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateListingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	input := service.UpdateListingInput{
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}

	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			writeBadRequest(w, "price must be a decimal number")
			return
		}
		input.Price = &price
	}
	if req.Discount != nil {
		discount, err := decimal.NewFromString(*req.Discount)
		if err != nil {
			writeBadRequest(w, "discount must be a decimal number")
			return
		}
		input.Discount = &discount
	}

	listing, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: listing})
}

// Delete handles DELETE /api/v1/listings/{id}
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"status": "deleted"}})
}
