package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/ofx"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import transactions from OFX or QFX files exported from your bank. Each
transaction is auto-categorized; a proposal is kept only when its confidence
reaches the threshold.

Examples:
  ledger import ~/Downloads/checking_jan_2024.qfx
  ledger import ~/Downloads/*.qfx --threshold 0.9`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Float64("threshold", ledger.DefaultConfidenceThreshold, "minimum confidence to keep a proposed category (default from import.confidence_threshold)")
	cmd.Flags().BoolP("dry-run", "d", false, "parse and report without saving")
	cmd.Flags().Bool("no-progress", false, "hide the progress bar")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	parser := ofx.NewParser()
	var parsed []model.Transaction
	seen := make(map[string]bool)

	for _, path := range files {
		txns, err := parseStatement(cmd, parser, path)
		if err != nil {
			slog.Error("Failed to import file", "file", path, "error", err)
			continue
		}

		added := 0
		for _, t := range txns {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			parsed = append(parsed, t)
			added++
		}
		slog.Info("Parsed statement", "file", filepath.Base(path), "transactions", added)
	}

	out := cmd.OutOrStdout()
	if len(parsed) == 0 {
		fmt.Fprintln(out, cli.FormatWarning("No transactions found to import"))
		return nil
	}

	// The bar is created once the already-stored transactions are filtered out.
	var progress *cli.Progress
	onImported := ledger.WithImportProgress(func(model.Transaction) {
		if progress != nil {
			progress.Step()
		}
	})

	return withLedger(cmd, !dryRun, func(s *session) error {
		threshold := s.cfg.ConfidenceThreshold
		if cmd.Flags().Changed("threshold") {
			threshold, _ = cmd.Flags().GetFloat64("threshold")
			if threshold < 0 || threshold > 1 {
				return common.NewUserError(fmt.Sprintf("threshold must be between 0 and 1, got %v", threshold), common.ErrInvalidConfig)
			}
		}

		fresh := withoutStored(parsed, s.ledger.Transactions().FindAll())
		if skipped := len(parsed) - len(fresh); skipped > 0 {
			slog.Info("Skipping transactions already in the ledger", "count", skipped)
		}

		if !noProgress && !dryRun && len(fresh) > 0 {
			progress = cli.NewProgress(cmd.ErrOrStderr(), len(fresh), "Importing transactions...")
		}

		stats := s.ledger.ImportTransactions(fresh, threshold)
		if progress != nil {
			progress.Done()
		}

		verb := "Imported"
		if dryRun {
			verb = "Would import"
		}
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%s %d transactions (%d categorized, %d uncategorized)",
			verb, stats.Imported, stats.Categorized, stats.Uncategorized)))
		return nil
	}, onImported)
}

// withoutStored drops parsed transactions whose id is already stored.
func withoutStored(parsed, stored []model.Transaction) []model.Transaction {
	ids := make(map[string]bool, len(stored))
	for _, t := range stored {
		ids[t.ID] = true
	}

	fresh := make([]model.Transaction, 0, len(parsed))
	for _, t := range parsed {
		if !ids[t.ID] {
			fresh = append(fresh, t)
		}
	}
	return fresh
}

func parseStatement(cmd *cobra.Command, parser *ofx.Parser, path string) ([]model.Transaction, error) {
	f, err := os.Open(path) //nolint:gosec // user-supplied import path
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer f.Close()

	return parser.ParseFile(cmd.Context(), f)
}

// expandFiles resolves glob patterns, keeping literal paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, common.NewUserError(fmt.Sprintf("invalid pattern %s", pattern), err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, common.NewUserError("no files found to import", nil)
	}
	return files, nil
}
