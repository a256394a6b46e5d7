package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Long: `Record a single transaction. The sign of the amount follows --type, so
"--amount 12.50 --type expense" stores -12.50.

Examples:
  ledger add --amount 12.50 --merchant "Corner Cafe" --notes lunch --auto
  ledger add --amount 2500 --type income --merchant Employer --category Salary`,
		Args: cobra.NoArgs,
		RunE: runAdd,
	}

	cmd.Flags().String("amount", "", "amount (required)")
	cmd.Flags().String("type", "expense", "transaction type (income, expense)")
	cmd.Flags().String("merchant", "", "merchant or payee")
	cmd.Flags().String("category", "", "category name")
	cmd.Flags().String("notes", "", "free-form notes")
	cmd.Flags().String("date", "", "date as YYYY-MM-DD (default: today)")
	cmd.Flags().Bool("auto", false, "auto-categorize when no category is given")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func runAdd(cmd *cobra.Command, _ []string) error {
	rawAmount, _ := cmd.Flags().GetString("amount")
	kind, _ := cmd.Flags().GetString("type")
	merchant, _ := cmd.Flags().GetString("merchant")
	categoryName, _ := cmd.Flags().GetString("category")
	notes, _ := cmd.Flags().GetString("notes")
	rawDate, _ := cmd.Flags().GetString("date")
	auto, _ := cmd.Flags().GetBool("auto")

	amount, err := signedAmount(rawAmount, kind)
	if err != nil {
		return err
	}

	return withLedger(cmd, true, func(s *session) error {
		date, err := parseDate(rawDate, s.cfg.Location)
		if err != nil {
			return err
		}

		txn := model.Transaction{
			ID:       model.NewTransactionID(),
			Date:     date,
			Amount:   amount,
			Merchant: merchant,
			Notes:    notes,
		}

		if categoryName != "" {
			txn.Category = s.ledger.Categories().FindByName(categoryName)
			if txn.Category == nil {
				return common.NewUserError(fmt.Sprintf("unknown category %q", categoryName), common.ErrNotFound)
			}
		}

		if auto && txn.Category == nil {
			s.ledger.ImportTransactions([]model.Transaction{txn}, s.cfg.ConfidenceThreshold)
		} else {
			s.ledger.AddTransaction(txn)
		}

		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s (%s)", txn.ID, amount.StringFixed(2))))
		return nil
	})
}

// signedAmount forces the sign of raw from kind: expenses are negative,
// income positive.
func signedAmount(raw, kind string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, common.NewUserError(fmt.Sprintf("invalid amount %q", raw), common.ErrInvalidAmount)
	}

	switch strings.ToLower(kind) {
	case "expense":
		return amount.Abs().Neg(), nil
	case "income":
		return amount.Abs(), nil
	default:
		return decimal.Zero, common.NewUserError(fmt.Sprintf("unknown transaction type %q (want income or expense)", kind), nil)
	}
}

func parseDate(raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		return time.Now().In(loc), nil
	}
	d, err := time.ParseInLocation(time.DateOnly, raw, loc)
	if err != nil {
		return time.Time{}, common.NewUserError(fmt.Sprintf("invalid date %q (want YYYY-MM-DD)", raw), err)
	}
	return d, nil
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		Long: `List transactions in the order they were recorded. With --year, and
optionally --month, only that period is shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			onlyUncategorized, _ := cmd.Flags().GetBool("uncategorized")

			return withLedger(cmd, false, func(s *session) error {
				txns := s.ledger.Transactions()

				var selected []model.Transaction
				switch {
				case cmd.Flags().Changed("month"):
					year, month, err := period(cmd, s.cfg.Location)
					if err != nil {
						return err
					}
					selected = txns.FindByPeriod(year, month)
				case cmd.Flags().Changed("year"):
					year, _, err := period(cmd, s.cfg.Location)
					if err != nil {
						return err
					}
					selected = txns.FindByYear(year)
				default:
					selected = txns.FindAll()
				}

				if onlyUncategorized {
					selected = uncategorized(selected)
				}

				return cli.RenderTransactions(cmd.OutOrStdout(), selected, s.cfg.Location)
			})
		},
	}

	cmd.Flags().Int("year", 0, "calendar year")
	cmd.Flags().Int("month", 0, "calendar month (1-12), current year unless --year is set")
	cmd.Flags().Bool("uncategorized", false, "only uncategorized transactions")

	return cmd
}

func uncategorized(txns []model.Transaction) []model.Transaction {
	var out []model.Transaction
	for _, t := range txns {
		if !t.IsCategorized() {
			out = append(out, t)
		}
	}
	return out
}

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search transactions by category or keyword",
		Long: `Search by exact category name, or by a case-sensitive keyword found in
the merchant or notes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			category, _ := cmd.Flags().GetString("category")
			keyword, _ := cmd.Flags().GetString("keyword")

			if (category == "") == (keyword == "") {
				return common.NewUserError("give exactly one of --category or --keyword", nil)
			}

			return withLedger(cmd, false, func(s *session) error {
				var found []model.Transaction
				if category != "" {
					found = s.ledger.SearchByCategory(category)
				} else {
					found = s.ledger.SearchByKeyword(keyword)
				}
				return cli.RenderTransactions(cmd.OutOrStdout(), found, s.cfg.Location)
			})
		},
	}

	cmd.Flags().String("category", "", "category name")
	cmd.Flags().String("keyword", "", "keyword in merchant or notes")

	return cmd
}

func categorizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categorize <transaction-id> [category]",
		Short: "Set or clear a transaction's category",
		Long:  `Assign a category to a transaction. Without a category the transaction becomes uncategorized.`,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			var category string
			if len(args) == 2 {
				category = args[1]
			}

			return withLedger(cmd, true, func(s *session) error {
				if err := s.ledger.Recategorize(id, category); err != nil {
					return common.NewUserError(err.Error(), err)
				}

				label := category
				if label == "" {
					label = model.UncategorizedName
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s is now %s", id, label)))
				return nil
			})
		},
	}
}
