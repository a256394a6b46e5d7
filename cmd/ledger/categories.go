package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage categories",
		Long:  `List, add, and delete the categories transactions are sorted into.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLedger(cmd, false, func(s *session) error {
				return cli.RenderCategories(cmd.OutOrStdout(), s.ledger.Categories().All())
			})
		},
	}
}

func addCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category, or change the type of an existing one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return common.NewUserError("category name cannot be empty", nil)
			}

			kind, _ := cmd.Flags().GetString("type")
			var categoryType model.CategoryType
			switch strings.ToLower(kind) {
			case "expense":
				categoryType = model.CategoryTypeExpense
			case "income":
				categoryType = model.CategoryTypeIncome
			default:
				return common.NewUserError(fmt.Sprintf("unknown category type %q (want income or expense)", kind), nil)
			}

			return withLedger(cmd, true, func(s *session) error {
				id := model.NewCategoryID()
				if existing := s.ledger.Categories().FindByName(name); existing != nil {
					id = existing.ID
				}

				c := s.ledger.AddCategory(model.Category{ID: id, Name: name, Type: categoryType})
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Saved category %s (%s)", c.Name, c.Type)))
				return nil
			})
		},
	}

	cmd.Flags().String("type", "expense", "category type (income, expense)")

	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a category and uncategorize its transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			return withLedger(cmd, true, func(s *session) error {
				if !s.ledger.RemoveCategory(name) {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning(fmt.Sprintf("No category named %q", name)))
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted category %s", name)))
				return nil
			})
		},
	}
}
