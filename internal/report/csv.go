package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSVGenerator renders monthly reports as CSV.
type CSVGenerator struct{}

// NewCSVGenerator creates a CSV report generator.
func NewCSVGenerator() *CSVGenerator {
	return &CSVGenerator{}
}

// Generate writes the report as CSV with a header row.
func (g *CSVGenerator) Generate(w io.Writer, report *MonthlyReport) error {
	cw := csv.NewWriter(w)

	header := []string{"user_id", "user_name", "listings", "total_value", "average_value"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range report.Rows {
		record := []string{
			row.UserID,
			row.UserName,
			strconv.Itoa(row.Listings),
			row.TotalValue.StringFixed(2),
			row.AverageValue.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return nil
}

// ContentType returns the CSV MIME type.
func (g *CSVGenerator) ContentType() string { return "text/csv" }

// Extension returns "csv".
func (g *CSVGenerator) Extension() string { return "csv" }
