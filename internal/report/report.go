// Package report renders monthly listing-activity reports in pluggable
// formats.
package report

import (
	"io"

	"github.com/shopspring/decimal"
)

// Row is one user's listing activity for the reporting period.
type Row struct {
	UserID       string
	UserName     string
	Listings     int
	TotalValue   decimal.Decimal
	AverageValue decimal.Decimal
}

// MonthlyReport is the listing activity for a single calendar month.
type MonthlyReport struct {
	Year  int
	Month int
	Rows  []Row
}

// Generator renders a monthly report to a writer.
type Generator interface {
	// Generate writes the report. The writer is not closed.
	Generate(w io.Writer, report *MonthlyReport) error

	// ContentType returns the MIME type of the rendered output.
	ContentType() string

	// Extension returns the file extension, without the dot.
	Extension() string
}
