package main

import (
	"github.com/Veraticus/spice-ledger/internal/tui"
	"github.com/spf13/cobra"
)

func browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse transactions interactively",
		Long:  `Open a scrollable transaction table. Press u to show only uncategorized transactions and q to quit.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLedger(cmd, false, func(s *session) error {
				return tui.Run(cmd.Context(), s.ledger.Transactions().FindAll(), s.cfg.Location)
			})
		},
	}
}
