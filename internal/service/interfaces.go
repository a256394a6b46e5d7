// Package service defines the contracts between the ledger's components.
package service

import "github.com/Veraticus/spice-ledger/internal/model"

// CategoryLookup resolves categories by their exact name.
type CategoryLookup interface {
	FindByName(name string) *model.Category
}

// CategoryRepository is a CategoryLookup that can also store categories.
type CategoryRepository interface {
	CategoryLookup
	Save(c model.Category) *model.Category
}

// Categorizer proposes a category for a transaction with a confidence in [0,1].
// A nil category means no proposal.
type Categorizer interface {
	AutoCategorize(txn model.Transaction) (*model.Category, float64)
}

// TransactionReader is the read side of the transaction store used for reports.
type TransactionReader interface {
	FindAll() []model.Transaction
	FindByPeriod(year, month int) []model.Transaction
	FindByYear(year int) []model.Transaction
}
