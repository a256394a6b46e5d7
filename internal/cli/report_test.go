package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Veraticus/spice-ledger/internal/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		name  string
		part  string
		total string
		want  int
	}{
		{name: "half", part: "50", total: "100", want: 50},
		{name: "truncates", part: "1", total: "3", want: 33},
		{name: "whole", part: "12.5", total: "12.5", want: 100},
		{name: "zero total", part: "5", total: "0", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percent(decimal.RequireFromString(tt.part), decimal.RequireFromString(tt.total))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBar(t *testing.T) {
	assert.Empty(t, Bar(0))
	assert.Empty(t, Bar(1))
	assert.Equal(t, strings.Repeat(barGlyph, 25), Bar(50))
	assert.Equal(t, strings.Repeat(barGlyph, 50), Bar(100))
}

func TestRenderBreakdown(t *testing.T) {
	var buf bytes.Buffer
	b := report.Breakdown{
		"Transport": decimal.NewFromInt(25),
		"Food":      decimal.NewFromInt(75),
	}

	require.NoError(t, RenderBreakdown(&buf, "March 2024", b))
	out := buf.String()

	assert.Contains(t, out, "March 2024")
	assert.Contains(t, out, "75.00")
	assert.Contains(t, out, "75%")
	assert.Contains(t, out, " 25%")
	assert.Contains(t, out, "100.00")
	assert.Less(t, strings.Index(out, "Food"), strings.Index(out, "Transport"))
}

func TestRenderBreakdown_TotalAlignsWithAmounts(t *testing.T) {
	var buf bytes.Buffer
	b := report.Breakdown{
		"Groceries": decimal.RequireFromString("12.5"),
		"Rent":      decimal.NewFromInt(900),
	}
	require.NoError(t, RenderBreakdown(&buf, "April", b))

	var rent, total string
	for _, line := range strings.Split(escapeCodes.ReplaceAllString(buf.String(), ""), "\n") {
		switch {
		case strings.HasPrefix(line, "Rent"):
			rent = line
		case strings.HasPrefix(line, "Total"):
			total = line
		}
	}
	require.NotEmpty(t, rent)
	require.NotEmpty(t, total)
	assert.Equal(t, strings.Index(rent, "900.00"), strings.Index(total, "912.50"))
}

func TestRenderBreakdown_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderBreakdown(&buf, "Empty", report.Breakdown{}))
	assert.Contains(t, buf.String(), "No transactions")
}

func TestRenderTotals(t *testing.T) {
	var buf bytes.Buffer
	totals := report.Totals{
		Income:  decimal.NewFromInt(100),
		Expense: decimal.RequireFromString("150.5"),
	}

	require.NoError(t, RenderTotals(&buf, totals))
	out := buf.String()

	assert.Contains(t, out, "Income")
	assert.Contains(t, out, "100.00")
	assert.Contains(t, out, "150.50")
	assert.Contains(t, out, "Difference")
	assert.Contains(t, out, "-50.50")
}
