package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/spice-ledger/internal/common"
)

// LoadReport combines the load results of both stores.
type LoadReport struct {
	Categories   LoadResult
	Transactions LoadResult
}

// FileBackend persists the stores as two flat record files.
type FileBackend struct {
	CategoriesPath   string
	TransactionsPath string
}

// NewFileBackend creates a file backend for the given paths.
func NewFileBackend(categoriesPath, transactionsPath string) *FileBackend {
	return &FileBackend{
		CategoriesPath:   categoriesPath,
		TransactionsPath: transactionsPath,
	}
}

// Load reads categories first so that transaction category names resolve.
// The transactions file is read even when categories fail, resolving against
// whatever categories did load; both errors are returned joined.
func (b *FileBackend) Load(_ context.Context, cats *CategoryStore, txns *TransactionStore) (LoadReport, error) {
	var report LoadReport
	var errs []error

	catResult, err := cats.LoadFile(b.CategoriesPath)
	report.Categories = catResult
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to load categories: %w", err))
	}

	txnResult, err := txns.LoadFile(b.TransactionsPath, cats)
	report.Transactions = txnResult
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to load transactions: %w", err))
	}

	if len(errs) > 0 {
		return report, errors.Join(errs...)
	}

	common.LogDebug("loaded ledger files", common.Fields{
		"categories_file":   b.CategoriesPath,
		"transactions_file": b.TransactionsPath,
	})
	return report, nil
}

// Save rewrites both files.
func (b *FileBackend) Save(_ context.Context, cats *CategoryStore, txns *TransactionStore) error {
	if err := cats.SaveFile(b.CategoriesPath); err != nil {
		return fmt.Errorf("%w: %w", common.ErrPersist, err)
	}
	if err := txns.SaveFile(b.TransactionsPath); err != nil {
		return fmt.Errorf("%w: %w", common.ErrPersist, err)
	}
	return nil
}
