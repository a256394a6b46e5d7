package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// DateLayout is the display format for transaction dates.
const DateLayout = "2006-01-02"

// RenderTransactions writes transactions as an aligned table with dates
// shown in loc.
func RenderTransactions(w io.Writer, txns []model.Transaction, loc *time.Location) error {
	if len(txns) == 0 {
		_, err := fmt.Fprintln(w, SubtleStyle.Render("No transactions."))
		return err
	}
	if loc == nil {
		loc = time.Local
	}

	rows := make(grid, 0, len(txns)+1)
	rows = append(rows, headerRow("ID", "Date", "Amount", "Merchant", "Category", "Notes"))
	for _, t := range txns {
		rows = append(rows, []cell{
			plain(t.ID),
			plain(t.Date.In(loc).Format(DateLayout)),
			amountCell(t.Amount),
			plain(t.Merchant),
			plain(t.DisplayCategory()),
			plain(t.Notes),
		})
	}
	return rows.write(w)
}

// RenderCategories writes categories with their kind.
func RenderCategories(w io.Writer, cats []*model.Category) error {
	if len(cats) == 0 {
		_, err := fmt.Fprintln(w, SubtleStyle.Render("No categories."))
		return err
	}

	rows := make(grid, 0, len(cats)+1)
	rows = append(rows, headerRow("ID", "Name", "Type"))
	for _, c := range cats {
		rows = append(rows, []cell{plain(c.ID), plain(c.Name), plain(c.Type.String())})
	}
	return rows.write(w)
}

func headerRow(names ...string) []cell {
	row := make([]cell, len(names))
	for i, name := range names {
		row[i] = styled(name, HeaderStyle)
	}
	return row
}
