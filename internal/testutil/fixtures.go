// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/spice-ledger/internal/categorizer"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/storage"
	"github.com/shopspring/decimal"
)

// Stores holds a matched pair of category and transaction stores.
type Stores struct {
	Categories   *storage.CategoryStore
	Transactions *storage.TransactionStore
}

// SeededStores returns stores holding the default categories, with
// transactions bucketed in UTC.
func SeededStores(t *testing.T) Stores {
	t.Helper()

	cats := storage.NewCategoryStore()
	categorizer.SeedDefaults(cats)

	return Stores{
		Categories:   cats,
		Transactions: storage.NewTransactionStore(storage.WithLocation(time.UTC)),
	}
}

// Category returns the named category, failing the test when it is absent.
func (s Stores) Category(t *testing.T, name string) *model.Category {
	t.Helper()

	c := s.Categories.FindByName(name)
	if c == nil {
		t.Fatalf("category %q not seeded", name)
	}
	return c
}

// Txn builds a transaction dated at noon UTC on date (YYYY-MM-DD).
func Txn(t *testing.T, id, date, amount, merchant string, category *model.Category) model.Transaction {
	t.Helper()

	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		t.Fatalf("bad fixture date %q: %v", date, err)
	}
	a, err := decimal.NewFromString(amount)
	if err != nil {
		t.Fatalf("bad fixture amount %q: %v", amount, err)
	}

	return model.Transaction{
		ID:       id,
		Date:     d.Add(12 * time.Hour),
		Amount:   a,
		Merchant: merchant,
		Category: category,
	}
}

// TempFileBackend returns a file backend rooted in a fresh temporary directory.
func TempFileBackend(t *testing.T) *storage.FileBackend {
	t.Helper()

	dir := t.TempDir()
	return storage.NewFileBackend(
		filepath.Join(dir, "categories.csv"),
		filepath.Join(dir, "transactions.csv"),
	)
}
