package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *MonthlyReport {
	return &MonthlyReport{
		Year:  2026,
		Month: 8,
		Rows: []Row{
			{
				UserID:       "u-1",
				UserName:     "Alice",
				Listings:     2,
				TotalValue:   decimal.RequireFromString("133.32"),
				AverageValue: decimal.RequireFromString("66.66"),
			},
			{
				UserID:       "u-2",
				UserName:     "Bob",
				Listings:     1,
				TotalValue:   decimal.RequireFromString("10.5"),
				AverageValue: decimal.RequireFromString("10.5"),
			},
		},
	}
}

func TestCSVGenerator_Generate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVGenerator().Generate(&buf, sampleReport()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "user_id,user_name,listings,total_value,average_value", lines[0])
	assert.Equal(t, "u-1,Alice,2,133.32,66.66", lines[1])
	assert.Equal(t, "u-2,Bob,1,10.50,10.50", lines[2])
}

func TestCSVGenerator_EmptyReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVGenerator().Generate(&buf, &MonthlyReport{Year: 2026, Month: 8}))

	assert.Equal(t, "user_id,user_name,listings,total_value,average_value\n", buf.String())
}

func TestTXTGenerator_Generate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTXTGenerator().Generate(&buf, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "Listing activity for 2026-08")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "133.32")
	assert.Contains(t, out, "10.50")
}

func TestGeneratorMetadata(t *testing.T) {
	csvGen := NewCSVGenerator()
	assert.Equal(t, "text/csv", csvGen.ContentType())
	assert.Equal(t, "csv", csvGen.Extension())

	txtGen := NewTXTGenerator()
	assert.Equal(t, "text/plain; charset=utf-8", txtGen.ContentType())
	assert.Equal(t, "txt", txtGen.Extension())
}
