package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const columnGap = 2

// cell is one table entry. Columns are sized on the plain text and the
// style is applied after padding, so escape codes never count as width.
type cell struct {
	text   string
	render func(...string) string
}

func plain(text string) cell {
	return cell{text: text}
}

func styled(text string, style lipgloss.Style) cell {
	return cell{text: text, render: style.Render}
}

// grid lays out rows in left-aligned columns. Rows may be shorter than the
// widest row; the last cell of a row is never padded.
type grid [][]cell

func (g grid) widths() []int {
	var widths []int
	for _, row := range g {
		for i, c := range row {
			if i == len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], lipgloss.Width(c.text))
		}
	}
	return widths
}

func (g grid) write(w io.Writer) error {
	widths := g.widths()

	var b strings.Builder
	for _, row := range g {
		for i, c := range row {
			if c.render != nil {
				b.WriteString(c.render(c.text))
			} else {
				b.WriteString(c.text)
			}
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(c.text)+columnGap))
			}
		}
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}
