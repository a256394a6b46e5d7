package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the browser until the user quits or ctx is canceled.
func Run(ctx context.Context, txns []model.Transaction, loc *time.Location) error {
	p := tea.NewProgram(New(txns, loc), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("transaction browser failed: %w", err)
	}
	return nil
}
