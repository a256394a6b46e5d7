// Package tui provides an interactive transaction browser built on bubbletea.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Header, detail box and help line.
const chromeHeight = 7

// Model is the browser state.
type Model struct {
	location          *time.Location
	theme             Theme
	keys              KeyMap
	all               []model.Transaction
	visible           []model.Transaction
	help              help.Model
	table             table.Model
	width             int
	height            int
	onlyUncategorized bool
	showDetail        bool
}

// New creates a browser over txns with dates shown in loc.
func New(txns []model.Transaction, loc *time.Location) Model {
	if loc == nil {
		loc = time.Local
	}

	t := table.New(
		table.WithFocused(true),
		table.WithHeight(20),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(DefaultTheme.Border).
		BorderBottom(true).
		Bold(false)
	s.Selected = DefaultTheme.Selected
	t.SetStyles(s)

	m := Model{
		location: loc,
		theme:    DefaultTheme,
		keys:     DefaultKeyMap(),
		all:      txns,
		help:     help.New(),
		table:    t,
		width:    80,
		height:   24,
	}
	m.updateColumnWidths()
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.ToggleUncategorized):
			m.onlyUncategorized = !m.onlyUncategorized
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keys.Details):
			m.showDetail = !m.showDetail
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetHeight(max(3, msg.Height-chromeHeight))
		m.updateColumnWidths()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	status := fmt.Sprintf("%d of %d transactions", len(m.visible), len(m.all))
	if m.onlyUncategorized {
		status += " | uncategorized only"
	}

	sections := []string{
		m.theme.Title.Render("Transactions"),
		m.theme.Subtitle.Render(status),
		m.table.View(),
	}

	if m.showDetail {
		if txn, ok := m.Selected(); ok {
			sections = append(sections, m.theme.Detail.Render(m.renderDetail(txn)))
		}
	}

	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Visible returns the transactions currently listed.
func (m Model) Visible() []model.Transaction {
	return m.visible
}

// Selected returns the transaction under the cursor.
func (m Model) Selected() (model.Transaction, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.visible) {
		return model.Transaction{}, false
	}
	return m.visible[i], true
}

func (m *Model) refresh() {
	m.visible = m.visible[:0:0]
	for _, t := range m.all {
		if m.onlyUncategorized && t.IsCategorized() {
			continue
		}
		m.visible = append(m.visible, t)
	}

	rows := make([]table.Row, 0, len(m.visible))
	for _, t := range m.visible {
		rows = append(rows, table.Row{
			t.Date.In(m.location).Format("2006-01-02"),
			truncate(t.Merchant, 30),
			t.Amount.StringFixed(2),
			t.DisplayCategory(),
		})
	}
	m.table.SetRows(rows)

	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}
}

func (m Model) renderDetail(t model.Transaction) string {
	amount := m.theme.Income.Render(t.Amount.StringFixed(2))
	if t.Amount.IsNegative() {
		amount = m.theme.Expense.Render(t.Amount.StringFixed(2))
	}

	lines := []string{
		"ID:       " + t.ID,
		"Date:     " + t.Date.In(m.location).Format(time.RFC1123),
		"Amount:   " + amount,
		"Merchant: " + t.Merchant,
		"Category: " + t.DisplayCategory(),
	}
	if t.Notes != "" {
		lines = append(lines, "Notes:    "+t.Notes)
	}
	return strings.Join(lines, "\n")
}

// updateColumnWidths splits the available width proportionally.
func (m *Model) updateColumnWidths() {
	available := max(60, m.width-4)

	m.table.SetColumns([]table.Column{
		{Title: "Date", Width: max(10, available*15/100)},
		{Title: "Merchant", Width: max(15, available*40/100)},
		{Title: "Amount", Width: max(10, available*15/100)},
		{Title: "Category", Width: max(12, available*25/100)},
	})
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
