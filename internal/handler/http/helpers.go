package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/adboard/adboard/pkg/httputil"
)

// response is the JSON envelope for all API responses.
type response = httputil.Response

type errorResponse = httputil.ErrorResponse

func writeJSON(w http.ResponseWriter, status int, v any) {
	httputil.WriteJSON(w, status, v)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	httputil.WriteJSON(w, http.StatusBadRequest, response{
		Error: &errorResponse{Code: "INVALID_INPUT", Message: message},
	})
}

func writeError(w http.ResponseWriter, r *http.Request, fallback *slog.Logger, err error) {
	// WriteError prefers the request-scoped logger; outside the middleware
	// chain it falls back to the handler's own.
	httputil.WriteError(w, r, err, fallback)
}

func writeValidationError(w http.ResponseWriter, err error) {
	httputil.WriteValidationError(w, err)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return false
	}
	return true
}
