package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/report"
	"github.com/shopspring/decimal"
)

const barGlyph = "█"

var hundred = decimal.NewFromInt(100)

// Percent returns the whole-number share of part in total, truncated.
// A zero total yields zero.
func Percent(part, total decimal.Decimal) int {
	if total.IsZero() {
		return 0
	}
	return int(part.Div(total).Mul(hundred).IntPart())
}

// Bar returns one glyph per two percentage points.
func Bar(pct int) string {
	if pct <= 0 {
		return ""
	}
	return strings.Repeat(barGlyph, pct/2)
}

// RenderBreakdown writes one line per category, sorted by name, with its
// amount, share of the total, and a bar.
func RenderBreakdown(w io.Writer, title string, b report.Breakdown) error {
	if _, err := fmt.Fprintln(w, FormatTitle(title)); err != nil {
		return err
	}
	if len(b) == 0 {
		_, err := fmt.Fprintln(w, SubtleStyle.Render("No transactions in this period."))
		return err
	}

	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)

	total := b.Total()
	rows := make(grid, 0, len(names)+1)
	for _, name := range names {
		pct := Percent(b[name], total)
		rows = append(rows, []cell{
			plain(name),
			plain(b[name].StringFixed(2)),
			plain(fmt.Sprintf("%3d%%", pct)),
			styled(Bar(pct), BarStyle),
		})
	}
	rows = append(rows, []cell{styled("Total", HeaderStyle), plain(total.StringFixed(2))})
	return rows.write(w)
}

// RenderTotals writes income, expense and their difference.
func RenderTotals(w io.Writer, t report.Totals) error {
	return grid{
		{plain("Income"), styled(t.Income.StringFixed(2), SuccessStyle)},
		{plain("Expense"), styled(t.Expense.StringFixed(2), ErrorStyle)},
		{plain("Difference"), amountCell(t.Net())},
	}.write(w)
}

// FormatAmount colors an amount by sign.
func FormatAmount(amount decimal.Decimal) string {
	c := amountCell(amount)
	return c.render(c.text)
}

func amountCell(amount decimal.Decimal) cell {
	if amount.IsNegative() {
		return styled(amount.StringFixed(2), ErrorStyle)
	}
	return styled(amount.StringFixed(2), SuccessStyle)
}
