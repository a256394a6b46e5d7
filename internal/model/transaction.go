package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UncategorizedName is the label used for transactions without a category.
const UncategorizedName = "Uncategorized"

// Transaction represents a single ledger entry.
type Transaction struct {
	Date     time.Time
	Category *Category // Shared with the category store; nil when uncategorized
	ID       string
	Merchant string
	Notes    string
	Amount   decimal.Decimal // Positive leans income, negative leans expense
}

// NewTransactionID returns a fresh transaction identifier.
func NewTransactionID() string {
	return "t_" + uuid.NewString()
}

// NewCategoryID returns a fresh category identifier.
func NewCategoryID() string {
	return "c_" + uuid.NewString()
}

// IsCategorized reports whether the transaction references a category.
func (t Transaction) IsCategorized() bool {
	return t.Category != nil
}

// CategoryName returns the referenced category's name, or "" when uncategorized.
func (t Transaction) CategoryName() string {
	if t.Category == nil {
		return ""
	}
	return t.Category.Name
}

// DisplayCategory returns the category name or the uncategorized placeholder.
func (t Transaction) DisplayCategory() string {
	if t.Category == nil {
		return UncategorizedName
	}
	return t.Category.Name
}

// IsIncome classifies the transaction. The category kind wins when present;
// otherwise a positive amount counts as income.
func (t Transaction) IsIncome() bool {
	if t.Category != nil {
		return t.Category.IsIncome()
	}
	return t.Amount.IsPositive()
}
