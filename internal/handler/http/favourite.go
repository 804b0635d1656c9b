package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adboard/adboard/internal/service"
)

// FavouriteHandler handles HTTP requests for favourites endpoints.
type FavouriteHandler struct {
	service *service.FavouriteService
	logger  *slog.Logger
}

// NewFavouriteHandler creates a new favourites HTTP handler.
func NewFavouriteHandler(svc *service.FavouriteService, logger *slog.Logger) *FavouriteHandler {
	return &FavouriteHandler{
		service: svc,
		logger:  logger,
	}
}

// favouriteResponse pairs the aggregate with the outcome of a mutation.
type favouriteResponse struct {
	Outcome   string `json:"outcome,omitempty"`
	Favourite any    `json:"favourite"`
}

// Get handles GET /api/v1/users/{userId}/favourites
func (h *FavouriteHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	favourite, err := h.service.GetByUserID(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: favourite})
}

// Add handles POST /api/v1/users/{userId}/favourites/{listingId}
func (h *FavouriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	listingID := chi.URLParam(r, "listingId")

	outcome, favourite, err := h.service.AddListing(r.Context(), userID, listingID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	status := http.StatusOK
	switch outcome {
	case service.AddOutcomeAdded:
		status = http.StatusCreated
	case service.AddOutcomeListingNotFound:
		status = http.StatusNotFound
	}

	writeJSON(w, status, response{Data: favouriteResponse{
		Outcome:   string(outcome),
		Favourite: favourite,
	}})
}

// Remove handles DELETE /api/v1/users/{userId}/favourites/{listingId}
func (h *FavouriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	listingID := chi.URLParam(r, "listingId")

	outcome, favourite, err := h.service.RemoveListing(r.Context(), userID, listingID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	// Both outcomes leave the aggregate without the listing, so both are
	// 200; the outcome field tells callers which one happened.
	writeJSON(w, http.StatusOK, response{Data: favouriteResponse{
		Outcome:   string(outcome),
		Favourite: favourite,
	}})
}
