package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/adboard/adboard/internal/service"
)

// ReportHandler handles HTTP requests for report endpoints.
type ReportHandler struct {
	service *service.ReportService
	logger  *slog.Logger
}

// NewReportHandler creates a new report HTTP handler.
func NewReportHandler(svc *service.ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		service: svc,
		logger:  logger,
	}
}

// Monthly handles GET /api/v1/reports/monthly?year=&month=&format=
func (h *ReportHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		writeBadRequest(w, "year must be an integer")
		return
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil {
		writeBadRequest(w, "month must be an integer")
		return
	}

	format := q.Get("format")
	if format == "" {
		format = "csv"
	}

	// Render to a buffer first so an assembly failure still yields a
	// well-formed JSON error instead of a truncated download.
	var buf bytes.Buffer
	g, err := h.service.Render(r.Context(), &buf, year, month, format)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	filename := fmt.Sprintf("listings-%04d-%02d.%s", year, month, g.Extension())
	w.Header().Set("Content-Type", g.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
