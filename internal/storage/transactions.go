package storage

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/shopspring/decimal"
)

const transactionFieldCount = 6

// CategoryResolver resolves a recorded category name to a stored category.
type CategoryResolver interface {
	FindByName(name string) *model.Category
}

// TransactionStore owns the ledger's transactions in insertion order.
type TransactionStore struct {
	location *time.Location
	now      func() time.Time
	txns     []model.Transaction
}

// TransactionStoreOption configures a TransactionStore.
type TransactionStoreOption func(*TransactionStore)

// WithLocation sets the time zone used for calendar filters.
func WithLocation(loc *time.Location) TransactionStoreOption {
	return func(s *TransactionStore) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithClock sets the clock used when a stored timestamp cannot be parsed.
func WithClock(now func() time.Time) TransactionStoreOption {
	return func(s *TransactionStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewTransactionStore creates an empty transaction store.
func NewTransactionStore(opts ...TransactionStoreOption) *TransactionStore {
	s := &TransactionStore{
		location: time.Local,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the time zone used for calendar filters.
func (s *TransactionStore) Location() *time.Location {
	return s.location
}

// Save appends t. Ids are not deduplicated.
func (s *TransactionStore) Save(t model.Transaction) {
	s.txns = append(s.txns, t)
}

// ClearCategoryReference uncategorizes every transaction that references a
// category with this name and returns how many were changed.
func (s *TransactionStore) ClearCategoryReference(categoryName string) int {
	cleared := 0
	for i := range s.txns {
		if s.txns[i].Category != nil && s.txns[i].Category.Name == categoryName {
			s.txns[i].Category = nil
			cleared++
		}
	}
	return cleared
}

// AssignCategory points every transaction with this id at c and returns how
// many were changed. A nil c uncategorizes them.
func (s *TransactionStore) AssignCategory(id string, c *model.Category) int {
	assigned := 0
	for i := range s.txns {
		if s.txns[i].ID == id {
			s.txns[i].Category = c
			assigned++
		}
	}
	return assigned
}

// FindAll returns a snapshot of every transaction in insertion order.
func (s *TransactionStore) FindAll() []model.Transaction {
	out := make([]model.Transaction, len(s.txns))
	copy(out, s.txns)
	return out
}

// FindByPeriod returns transactions dated in the given year and 1-indexed month.
func (s *TransactionStore) FindByPeriod(year, month int) []model.Transaction {
	return s.filter(func(t model.Transaction) bool {
		local := t.Date.In(s.location)
		return local.Year() == year && int(local.Month()) == month
	})
}

// FindByYear returns transactions dated in the given year.
func (s *TransactionStore) FindByYear(year int) []model.Transaction {
	return s.filter(func(t model.Transaction) bool {
		return t.Date.In(s.location).Year() == year
	})
}

// FindByCategory returns transactions whose category name equals name.
func (s *TransactionStore) FindByCategory(name string) []model.Transaction {
	return s.filter(func(t model.Transaction) bool {
		return t.Category != nil && t.Category.Name == name
	})
}

// SearchByKeyword returns transactions whose merchant or notes contain kw.
// Matching is case-sensitive.
func (s *TransactionStore) SearchByKeyword(kw string) []model.Transaction {
	return s.filter(func(t model.Transaction) bool {
		return strings.Contains(t.Merchant, kw) || strings.Contains(t.Notes, kw)
	})
}

// Len returns the number of stored transactions.
func (s *TransactionStore) Len() int {
	return len(s.txns)
}

func (s *TransactionStore) filter(keep func(model.Transaction) bool) []model.Transaction {
	var out []model.Transaction
	for _, t := range s.txns {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// Serialize writes every transaction as an
// `"id",amount,epoch,"merchant","category","notes"` record.
func (s *TransactionStore) Serialize(w io.Writer) error {
	rw := newRecordWriter(w)
	for _, t := range s.txns {
		if err := rw.write(encodeTransaction(t)...); err != nil {
			return fmt.Errorf("failed to write transaction %q: %w", t.ID, err)
		}
	}
	if err := rw.flush(); err != nil {
		return fmt.Errorf("failed to flush transactions: %w", err)
	}
	return nil
}

// Deserialize appends transaction records from r. When resolver is non-nil,
// recorded category names are resolved through it; names it does not know
// leave the transaction uncategorized.
func (s *TransactionStore) Deserialize(r io.Reader, resolver CategoryResolver) (LoadResult, error) {
	var result LoadResult

	skipped, err := readRecords(r, func(fields []string) {
		t, rec, ok := s.decodeTransaction(fields, resolver)
		if !ok {
			result.Skipped++
			return
		}
		s.txns = append(s.txns, t)
		result.Add(rec)
	})
	result.Skipped += skipped
	if err != nil {
		return result, fmt.Errorf("failed to read transactions: %w", err)
	}

	slog.Debug("loaded transactions",
		"loaded", result.Loaded,
		"skipped", result.Skipped,
		"defaulted", result.Defaulted,
		"unresolved", result.Unresolved)
	return result, nil
}

// SaveFile rewrites path with every transaction.
func (s *TransactionStore) SaveFile(path string) error {
	return writeFileAtomic(path, s.Serialize)
}

// LoadFile appends transactions from path. A missing file loads nothing.
func (s *TransactionStore) LoadFile(path string, resolver CategoryResolver) (LoadResult, error) {
	return readFile(path, func(r io.Reader) (LoadResult, error) {
		return s.Deserialize(r, resolver)
	})
}

func encodeTransaction(t model.Transaction) []string {
	return []string{
		quoteField(t.ID),
		t.Amount.String(),
		strconv.FormatInt(t.Date.Unix(), 10),
		quoteField(t.Merchant),
		quoteField(t.CategoryName()),
		quoteField(t.Notes),
	}
}

// decodeTransaction builds a transaction from record fields. The returned
// LoadResult describes this single record.
func (s *TransactionStore) decodeTransaction(fields []string, resolver CategoryResolver) (model.Transaction, LoadResult, bool) {
	var rec LoadResult
	if len(fields) < transactionFieldCount {
		return model.Transaction{}, rec, false
	}

	defaulted := false

	amount, err := decimal.NewFromString(strings.TrimSpace(fields[1]))
	if err != nil {
		amount = decimal.Zero
		defaulted = true
	}

	var date time.Time
	if epoch, err := strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64); err == nil {
		date = time.Unix(epoch, 0)
	} else {
		date = s.now()
		defaulted = true
	}

	t := model.Transaction{
		ID:       fields[0],
		Amount:   amount,
		Date:     date,
		Merchant: fields[3],
		Notes:    fields[5],
	}

	if name := fields[4]; name != "" && resolver != nil {
		if c := resolver.FindByName(name); c != nil {
			t.Category = c
		} else {
			rec.Unresolved++
		}
	}

	rec.Loaded = 1
	if defaulted {
		rec.Defaulted = 1
	}
	return t, rec, true
}
