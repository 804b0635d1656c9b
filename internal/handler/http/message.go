package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adboard/adboard/internal/domain"
	"github.com/adboard/adboard/internal/service"
	"github.com/adboard/adboard/pkg/validator"
)

// MessageHandler handles HTTP requests for messaging endpoints.
type MessageHandler struct {
	service *service.MessageService
	logger  *slog.Logger
}

// NewMessageHandler creates a new message HTTP handler.
func NewMessageHandler(svc *service.MessageService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{
		service: svc,
		logger:  logger,
	}
}

// SendMessageRequest is the JSON request body for sending a message.
type SendMessageRequest struct {
	ListingID   *string `json:"listing_id,omitempty"`
	SenderID    string  `json:"sender_id" validate:"required"`
	RecipientID string  `json:"recipient_id" validate:"required"`
	Body        string  `json:"body" validate:"required,max=4000"`
}

// Send handles POST /api/v1/messages
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	message, err := h.service.Send(r.Context(), service.SendMessageInput{
		ListingID:   req.ListingID,
		SenderID:    req.SenderID,
		RecipientID: req.RecipientID,
		Body:        req.Body,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: message})
}

// Conversation handles GET /api/v1/messages/conversations/{userA}/{userB}
func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	messages, err := h.service.Conversation(r.Context(), chi.URLParam(r, "userA"), chi.URLParam(r, "userB"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}

	writeJSON(w, http.StatusOK, response{Data: messages})
}

// Correspondents handles GET /api/v1/messages/correspondents/{userId}
func (h *MessageHandler) Correspondents(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.Correspondents(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}

	writeJSON(w, http.StatusOK, response{Data: ids})
}

// MarkRead handles POST /api/v1/messages/{id}/read
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	recipientID := r.Header.Get("X-User-ID")
	if recipientID == "" {
		writeBadRequest(w, "X-User-ID header is required")
		return
	}

	if err := h.service.MarkRead(r.Context(), chi.URLParam(r, "id"), recipientID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"status": "read"}})
}
