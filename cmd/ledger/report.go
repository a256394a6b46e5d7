package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Spending reports by category",
	}

	cmd.AddCommand(reportMonthCmd())
	cmd.AddCommand(reportYearCmd())
	cmd.AddCommand(reportAllCmd())

	return cmd
}

func reportMonthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "month",
		Short: "Category breakdown and totals for one month (default: current month)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLedger(cmd, false, func(s *session) error {
				year, month, err := period(cmd, s.cfg.Location)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				title := fmt.Sprintf("%s %d", time.Month(month), year)
				if err := cli.RenderBreakdown(out, title, s.reports.CategoryBreakdown(year, month)); err != nil {
					return err
				}
				fmt.Fprintln(out)
				return cli.RenderTotals(out, s.reports.IncomeExpenseTotals(year, month))
			})
		},
	}

	cmd.Flags().Int("year", 0, "calendar year")
	cmd.Flags().Int("month", 0, "calendar month (1-12)")

	return cmd
}

func reportYearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "year",
		Short: "Category breakdown and totals for one year (default: current year)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLedger(cmd, false, func(s *session) error {
				year, _, err := period(cmd, s.cfg.Location)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if err := cli.RenderBreakdown(out, strconv.Itoa(year), s.reports.CategoryBreakdownYear(year)); err != nil {
					return err
				}
				fmt.Fprintln(out)
				return cli.RenderTotals(out, s.reports.IncomeExpenseTotalsYear(year))
			})
		},
	}

	cmd.Flags().Int("year", 0, "calendar year")

	return cmd
}

func reportAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Category breakdown across every transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLedger(cmd, false, func(s *session) error {
				out := cmd.OutOrStdout()
				if err := cli.RenderBreakdown(out, "All time", s.reports.CategoryBreakdownAll()); err != nil {
					return err
				}
				fmt.Fprintln(out)
				fmt.Fprintf(out, "Balance  %s\n", cli.FormatAmount(s.reports.Balance()))
				return nil
			})
		},
	}
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Print the signed sum of every transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLedger(cmd, false, func(s *session) error {
				fmt.Fprintf(cmd.OutOrStdout(), "Balance  %s\n", cli.FormatAmount(s.reports.Balance()))
				return nil
			})
		},
	}
}
