// Package report aggregates ledger transactions into balances and breakdowns.
package report

import (
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/shopspring/decimal"
)

// Breakdown maps a category name, or model.UncategorizedName, to the sum of
// absolute amounts.
type Breakdown map[string]decimal.Decimal

// Total returns the sum of every entry.
func (b Breakdown) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range b {
		total = total.Add(v)
	}
	return total
}

// Totals splits amounts by sign. Both values are non-negative magnitudes.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Net returns income minus expense.
func (t Totals) Net() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

// Engine computes read-only aggregates. Every call recomputes from the source.
type Engine struct {
	source service.TransactionReader
}

// NewEngine creates a reporting engine over source.
func NewEngine(source service.TransactionReader) *Engine {
	return &Engine{source: source}
}

// Balance returns the signed sum of every transaction amount.
func (e *Engine) Balance() decimal.Decimal {
	sum := decimal.Zero
	for _, t := range e.source.FindAll() {
		sum = sum.Add(t.Amount)
	}
	return sum
}

// CategoryBreakdown covers one calendar month.
func (e *Engine) CategoryBreakdown(year, month int) Breakdown {
	return breakdown(e.source.FindByPeriod(year, month))
}

// CategoryBreakdownYear covers one calendar year.
func (e *Engine) CategoryBreakdownYear(year int) Breakdown {
	return breakdown(e.source.FindByYear(year))
}

// CategoryBreakdownAll covers every transaction.
func (e *Engine) CategoryBreakdownAll() Breakdown {
	return breakdown(e.source.FindAll())
}

// IncomeExpenseTotals covers one calendar month. Classification is by amount
// sign only: zero and positive amounts are income.
func (e *Engine) IncomeExpenseTotals(year, month int) Totals {
	return totals(e.source.FindByPeriod(year, month))
}

// IncomeExpenseTotalsYear covers one calendar year, classified like
// IncomeExpenseTotals.
func (e *Engine) IncomeExpenseTotalsYear(year int) Totals {
	return totals(e.source.FindByYear(year))
}

func breakdown(txns []model.Transaction) Breakdown {
	out := make(Breakdown)
	for _, t := range txns {
		name := t.DisplayCategory()
		out[name] = out[name].Add(t.Amount.Abs())
	}
	return out
}

func totals(txns []model.Transaction) Totals {
	result := Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, t := range txns {
		if t.Amount.IsNegative() {
			result.Expense = result.Expense.Add(t.Amount.Neg())
		} else {
			result.Income = result.Income.Add(t.Amount)
		}
	}
	return result
}
