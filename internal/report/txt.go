package report

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// TXTGenerator renders monthly reports as aligned plain text.
type TXTGenerator struct{}

// NewTXTGenerator creates a plain-text report generator.
func NewTXTGenerator() *TXTGenerator {
	return &TXTGenerator{}
}

// Generate writes the report as a tab-aligned text table.
func (g *TXTGenerator) Generate(w io.Writer, report *MonthlyReport) error {
	if _, err := fmt.Fprintf(w, "Listing activity for %04d-%02d\n\n", report.Year, report.Month); err != nil {
		return fmt.Errorf("write txt title: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "USER\tNAME\tLISTINGS\tTOTAL\tAVERAGE"); err != nil {
		return fmt.Errorf("write txt header: %w", err)
	}

	for _, row := range report.Rows {
		_, err := fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			row.UserID,
			row.UserName,
			row.Listings,
			row.TotalValue.StringFixed(2),
			row.AverageValue.StringFixed(2),
		)
		if err != nil {
			return fmt.Errorf("write txt row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush txt: %w", err)
	}

	return nil
}

// ContentType returns the plain-text MIME type.
func (g *TXTGenerator) ContentType() string { return "text/plain; charset=utf-8" }

// Extension returns "txt".
func (g *TXTGenerator) Extension() string { return "txt" }
