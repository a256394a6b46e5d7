// Package ledger orchestrates the category and transaction stores: imports
// with auto-categorization, category deletion with reference cleanup, and
// persistence.
package ledger

import (
	"context"
	"fmt"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/Veraticus/spice-ledger/internal/storage"
)

// DefaultConfidenceThreshold is the minimum confidence needed to attach a
// proposed category during import.
const DefaultConfidenceThreshold = 0.8

// Persister loads and saves both stores.
type Persister interface {
	Load(ctx context.Context, cats *storage.CategoryStore, txns *storage.TransactionStore) (storage.LoadReport, error)
	Save(ctx context.Context, cats *storage.CategoryStore, txns *storage.TransactionStore) error
}

// ImportStats summarizes an import run.
type ImportStats struct {
	Imported      int
	Categorized   int
	Uncategorized int
}

// Ledger is the orchestration layer over the stores.
type Ledger struct {
	categories   *storage.CategoryStore
	transactions *storage.TransactionStore
	categorizer  service.Categorizer
	persister    Persister
	onImported   func(model.Transaction)
	loadErr      error
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithImportProgress registers fn to be called after each imported transaction.
func WithImportProgress(fn func(model.Transaction)) Option {
	return func(l *Ledger) {
		l.onImported = fn
	}
}

// New creates a ledger. The persister may be nil for an in-memory ledger.
func New(cats *storage.CategoryStore, txns *storage.TransactionStore, categorizer service.Categorizer, persister Persister, opts ...Option) *Ledger {
	l := &Ledger{
		categories:   cats,
		transactions: txns,
		categorizer:  categorizer,
		persister:    persister,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Categories returns the category store.
func (l *Ledger) Categories() *storage.CategoryStore {
	return l.categories
}

// Transactions returns the transaction store.
func (l *Ledger) Transactions() *storage.TransactionStore {
	return l.transactions
}

// Load fills the stores from the persister. A load failure leaves whatever
// was read so far and is logged rather than returned; the ledger then starts
// from that partial or empty state and refuses to save over it.
func (l *Ledger) Load(ctx context.Context) storage.LoadReport {
	if l.persister == nil {
		return storage.LoadReport{}
	}

	report, err := l.persister.Load(ctx, l.categories, l.transactions)
	l.loadErr = err
	if err != nil {
		common.LogError(err, "failed to load ledger, continuing with what was read", common.Fields{
			"categories":   report.Categories.Loaded,
			"transactions": report.Transactions.Loaded,
		})
	}

	if skipped := report.Categories.Skipped + report.Transactions.Skipped; skipped > 0 {
		common.LogWarn("skipped malformed records", common.Fields{
			"categories":   report.Categories.Skipped,
			"transactions": report.Transactions.Skipped,
		})
	}
	if report.Transactions.Unresolved > 0 {
		common.LogWarn("transactions reference unknown categories and were left uncategorized",
			common.Fields{"count": report.Transactions.Unresolved})
	}
	if report.Transactions.Defaulted > 0 {
		common.LogWarn("transactions loaded with default amount or date",
			common.Fields{"count": report.Transactions.Defaulted})
	}

	return report
}

// Save persists both stores in full. After a failed Load the stores hold
// only part of the stored data, so Save refuses rather than overwrite it.
func (l *Ledger) Save(ctx context.Context) error {
	if l.persister == nil {
		return nil
	}
	if l.loadErr != nil {
		return fmt.Errorf("%w: refusing to overwrite data that failed to load: %w", common.ErrPersist, l.loadErr)
	}
	if err := l.persister.Save(ctx, l.categories, l.transactions); err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	return nil
}

// AddTransaction stores t as given, without categorization.
func (l *Ledger) AddTransaction(t model.Transaction) {
	l.transactions.Save(t)
}

// ImportTransactions auto-categorizes and stores a copy of each transaction.
// A proposed category is attached only when its confidence reaches
// threshold; otherwise the copy keeps the category it arrived with, normally
// none. The caller's transactions are not modified.
func (l *Ledger) ImportTransactions(txns []model.Transaction, threshold float64) ImportStats {
	var stats ImportStats

	for _, t := range txns {
		imported := t
		if l.categorizer != nil {
			if c, confidence := l.categorizer.AutoCategorize(t); c != nil && confidence >= threshold {
				imported.Category = c
			}
		}

		l.transactions.Save(imported)
		stats.Imported++
		if imported.Category != nil {
			stats.Categorized++
		} else {
			stats.Uncategorized++
		}

		if l.onImported != nil {
			l.onImported(imported)
		}
	}

	common.LogInfo("imported transactions", common.Fields{
		"imported":      stats.Imported,
		"categorized":   stats.Categorized,
		"uncategorized": stats.Uncategorized,
		"threshold":     threshold,
	})
	return stats
}

// AddCategory stores c, overwriting any category with the same name.
func (l *Ledger) AddCategory(c model.Category) *model.Category {
	return l.categories.Save(c)
}

// RemoveCategory deletes the named category and uncategorizes every
// transaction that referenced it. It reports whether the category existed.
func (l *Ledger) RemoveCategory(name string) bool {
	if !l.categories.Remove(name) {
		return false
	}
	cleared := l.transactions.ClearCategoryReference(name)
	common.LogInfo("deleted category", common.Fields{"name": name, "uncategorized_transactions": cleared})
	return true
}

// Recategorize sets the category of the transaction with txnID to the named
// category. An empty name uncategorizes it.
func (l *Ledger) Recategorize(txnID, categoryName string) error {
	var c *model.Category
	if categoryName != "" {
		c = l.categories.FindByName(categoryName)
		if c == nil {
			return fmt.Errorf("category %q: %w", categoryName, common.ErrNotFound)
		}
	}

	if l.transactions.AssignCategory(txnID, c) == 0 {
		return fmt.Errorf("transaction %q: %w", txnID, common.ErrNotFound)
	}
	return nil
}

// SearchByCategory returns transactions in the named category.
func (l *Ledger) SearchByCategory(name string) []model.Transaction {
	return l.transactions.FindByCategory(name)
}

// SearchByKeyword returns transactions whose merchant or notes contain kw.
func (l *Ledger) SearchByKeyword(kw string) []model.Transaction {
	return l.transactions.SearchByKeyword(kw)
}
