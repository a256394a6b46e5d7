package model

import "strconv"

// CategoryType indicates whether a category is for income or expense.
// The integer value is the on-disk kind code.
type CategoryType int

const (
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = 0
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = 1
)

// String returns the display name of the category type.
func (t CategoryType) String() string {
	if t == CategoryTypeIncome {
		return "Income"
	}
	return "Expense"
}

// CategoryTypeFromCode maps a stored kind code to a CategoryType.
// Anything other than 1 is an expense category.
func CategoryTypeFromCode(code string) CategoryType {
	n, err := strconv.Atoi(code)
	if err == nil && n == int(CategoryTypeIncome) {
		return CategoryTypeIncome
	}
	return CategoryTypeExpense
}

// Category represents a transaction category. Name is the unique key.
type Category struct {
	ID   string
	Name string
	Type CategoryType
}

// IsIncome reports whether the category classifies income.
func (c Category) IsIncome() bool {
	return c.Type == CategoryTypeIncome
}
