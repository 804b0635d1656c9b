package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adboard/adboard/internal/report"
	"github.com/adboard/adboard/internal/repository"
	apperrors "github.com/adboard/adboard/pkg/errors"
)

// ReportService assembles monthly listing-activity reports.
type ReportService struct {
	listings   repository.ListingRepository
	users      repository.UserRepository
	generators map[string]report.Generator
	logger     *slog.Logger
}

// NewReportService creates a new report service with the given generators,
// keyed by format name.
func NewReportService(
	listings repository.ListingRepository,
	users repository.UserRepository,
	generators map[string]report.Generator,
	logger *slog.Logger,
) *ReportService {
	return &ReportService{
		listings:   listings,
		users:      users,
		generators: generators,
		logger:     logger,
	}
}

// Generator returns the generator registered for the format.
func (s *ReportService) Generator(format string) (report.Generator, error) {
	g, ok := s.generators[format]
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown report format %q", format))
	}
	return g, nil
}

// Monthly builds the listing-activity report for the given month, one row
// per user, ordered by user name.
func (s *ReportService) Monthly(ctx context.Context, year, month int) (*report.MonthlyReport, error) {
	if month < 1 || month > 12 {
		return nil, apperrors.InvalidInput("month must be between 1 and 12")
	}
	if year < 2000 || year > 9999 {
		return nil, apperrors.InvalidInput("year is out of range")
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	listings, err := s.listings.ListPublishedBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load listings for report: %w", err)
	}

	byUser := make(map[string]*report.Row)
	var order []string
	for _, l := range listings {
		row, ok := byUser[l.UserID]
		if !ok {
			row = &report.Row{UserID: l.UserID}
			byUser[l.UserID] = row
			order = append(order, l.UserID)
		}
		row.Listings++
		row.TotalValue = row.TotalValue.Add(l.NetPrice)
	}

	rows := make([]report.Row, 0, len(order))
	for _, userID := range order {
		row := byUser[userID]

		user, err := s.users.GetByID(ctx, userID)
		switch {
		case err == nil:
			row.UserName = user.Name
		case errors.Is(err, apperrors.ErrNotFound):
			// The user may have been deleted since publishing; keep the
			// row with just the ID.
			s.logger.WarnContext(ctx, "report references deleted user",
				slog.String("user_id", userID),
			)
		default:
			return nil, fmt.Errorf("load user for report: %w", err)
		}

		row.AverageValue = row.TotalValue.Div(decimal.NewFromInt(int64(row.Listings))).Round(2)
		rows = append(rows, *row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].UserName != rows[j].UserName {
			return rows[i].UserName < rows[j].UserName
		}
		return rows[i].UserID < rows[j].UserID
	})

	return &report.MonthlyReport{Year: year, Month: month, Rows: rows}, nil
}

// Render builds the monthly report and writes it in the requested format.
func (s *ReportService) Render(ctx context.Context, w io.Writer, year, month int, format string) (report.Generator, error) {
	g, err := s.Generator(format)
	if err != nil {
		return nil, err
	}

	r, err := s.Monthly(ctx, year, month)
	if err != nil {
		return nil, err
	}

	if err := g.Generate(w, r); err != nil {
		return nil, fmt.Errorf("render %s report: %w", format, err)
	}

	return g, nil
}
