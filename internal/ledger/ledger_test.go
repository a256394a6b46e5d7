package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/Veraticus/spice-ledger/internal/categorizer"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/storage"
	"github.com/Veraticus/spice-ledger/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCategorizer struct {
	category   *model.Category
	confidence float64
	calls      int
}

func (s *stubCategorizer) AutoCategorize(model.Transaction) (*model.Category, float64) {
	s.calls++
	return s.category, s.confidence
}

type failingPersister struct {
	loadErr error
	saveErr error
	saves   *int
}

func (f failingPersister) Load(_ context.Context, cats *storage.CategoryStore, _ *storage.TransactionStore) (storage.LoadReport, error) {
	cats.Save(model.Category{ID: "c_partial", Name: "Partial"})
	return storage.LoadReport{Categories: storage.LoadResult{Loaded: 1}}, f.loadErr
}

func (f failingPersister) Save(context.Context, *storage.CategoryStore, *storage.TransactionStore) error {
	if f.saves != nil {
		*f.saves++
	}
	return f.saveErr
}

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	stores := testutil.SeededStores(t)
	return New(stores.Categories, stores.Transactions, categorizer.NewDefault(stores.Categories), nil)
}

func newTxn(id, amount, merchant, notes string) model.Transaction {
	return model.Transaction{
		ID:       id,
		Amount:   decimal.RequireFromString(amount),
		Date:     time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Merchant: merchant,
		Notes:    notes,
	}
}

func TestLedger_AddTransactionDoesNotCategorize(t *testing.T) {
	l := newTestLedger(t)
	l.AddTransaction(newTxn("t1", "-9", "lunch spot", ""))

	all := l.Transactions().FindAll()
	require.Len(t, all, 1)
	assert.Nil(t, all[0].Category)
}

func TestLedger_ImportTransactions(t *testing.T) {
	l := newTestLedger(t)

	input := []model.Transaction{
		newTxn("t1", "-9", "lunch spot", ""),
		newTxn("t2", "-3", "City", "bus fare"),
		newTxn("t3", "-20", "Hardware", "nails"),
		newTxn("t4", "2000", "ACME", "salary"),
	}

	stats := l.ImportTransactions(input, DefaultConfidenceThreshold)
	assert.Equal(t, ImportStats{Imported: 4, Categorized: 3, Uncategorized: 1}, stats)

	all := l.Transactions().FindAll()
	require.Len(t, all, 4)
	assert.Equal(t, "Food", all[0].CategoryName())
	assert.Equal(t, "Transport", all[1].CategoryName())
	assert.Nil(t, all[2].Category)
	assert.Equal(t, "Salary", all[3].CategoryName())
	assert.Same(t, l.Categories().FindByName("Food"), all[0].Category)

	for _, original := range input {
		assert.Nil(t, original.Category, "caller's transactions are not mutated")
	}
}

func TestLedger_ImportThreshold(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		wantName  string
	}{
		{name: "above confidence leaves uncategorized", threshold: 0.96},
		{name: "equal to confidence attaches", threshold: 0.95, wantName: "Food"},
		{name: "default threshold attaches", threshold: DefaultConfidenceThreshold, wantName: "Food"},
		{name: "zero threshold attaches", threshold: 0, wantName: "Food"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLedger(t)
			l.ImportTransactions([]model.Transaction{newTxn("t1", "-9", "lunch", "")}, tt.threshold)

			all := l.Transactions().FindAll()
			require.Len(t, all, 1)
			assert.Equal(t, tt.wantName, all[0].CategoryName())
		})
	}
}

func TestLedger_ImportUsesInjectedCategorizer(t *testing.T) {
	cats := storage.NewCategoryStore()
	travel := cats.Save(model.Category{ID: "c_travel", Name: "Travel"})
	stub := &stubCategorizer{category: travel, confidence: 0.5}

	l := New(cats, storage.NewTransactionStore(), stub, nil)

	stats := l.ImportTransactions([]model.Transaction{newTxn("t1", "-1", "x", ""), newTxn("t2", "-1", "y", "")}, 0.6)
	assert.Equal(t, 2, stub.calls)
	assert.Equal(t, 2, stats.Uncategorized)

	stats = l.ImportTransactions([]model.Transaction{newTxn("t3", "-1", "z", "")}, 0.5)
	assert.Equal(t, 1, stats.Categorized)
	assert.Equal(t, "Travel", l.Transactions().FindAll()[2].CategoryName())
}

func TestLedger_ImportProgress(t *testing.T) {
	cats := storage.NewCategoryStore()
	categorizer.SeedDefaults(cats)

	var seen []string
	l := New(cats, storage.NewTransactionStore(), categorizer.NewDefault(cats), nil,
		WithImportProgress(func(txn model.Transaction) { seen = append(seen, txn.ID) }))

	l.ImportTransactions([]model.Transaction{newTxn("a", "1", "", ""), newTxn("b", "1", "", "")}, 0.8)
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestLedger_RemoveCategoryCascades(t *testing.T) {
	l := newTestLedger(t)
	l.ImportTransactions([]model.Transaction{
		newTxn("t1", "-9", "lunch", ""),
		newTxn("t2", "-4", "meal deal", ""),
		newTxn("t3", "100", "ACME", "salary"),
	}, DefaultConfidenceThreshold)
	require.Len(t, l.SearchByCategory("Food"), 2)

	assert.True(t, l.RemoveCategory("Food"))
	assert.Nil(t, l.Categories().FindByName("Food"))
	assert.Empty(t, l.SearchByCategory("Food"))
	assert.Equal(t, 3, l.Transactions().Len())
	assert.Len(t, l.SearchByCategory("Salary"), 1)

	assert.False(t, l.RemoveCategory("Food"), "removing twice reports absence")
	assert.False(t, l.RemoveCategory("Nope"))
	assert.Equal(t, 2, l.Categories().Len())
}

func TestLedger_Recategorize(t *testing.T) {
	l := newTestLedger(t)
	l.AddTransaction(newTxn("t1", "-3", "Metro", ""))

	require.NoError(t, l.Recategorize("t1", "Transport"))
	assert.Len(t, l.SearchByCategory("Transport"), 1)

	err := l.Recategorize("t1", "Nightlife")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = l.Recategorize("missing", "Transport")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, l.Recategorize("t1", ""))
	assert.Empty(t, l.SearchByCategory("Transport"))
}

func TestLedger_SearchByKeyword(t *testing.T) {
	l := newTestLedger(t)
	l.AddTransaction(newTxn("t1", "-3", "Metro", "weekly pass"))
	l.AddTransaction(newTxn("t2", "-3", "Cafe", ""))

	got := l.SearchByKeyword("pass")
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].ID)
}

func TestLedger_SaveAndLoadWithFileBackend(t *testing.T) {
	ctx := context.Background()
	backend := testutil.TempFileBackend(t)

	stores := testutil.SeededStores(t)
	l := New(stores.Categories, stores.Transactions, categorizer.NewDefault(stores.Categories), backend)
	l.AddCategory(model.Category{ID: "c_fun", Name: "Fun", Type: model.CategoryTypeExpense})
	l.ImportTransactions([]model.Transaction{newTxn("t1", "-9", "lunch", ""), newTxn("t2", "-30", "Arcade", "")}, DefaultConfidenceThreshold)
	require.NoError(t, l.Recategorize("t2", "Fun"))
	require.True(t, l.RemoveCategory("Food"))
	require.NoError(t, l.Save(ctx))

	reloadedCats := storage.NewCategoryStore()
	reloaded := New(reloadedCats, storage.NewTransactionStore(), categorizer.NewDefault(reloadedCats), backend)
	report := reloaded.Load(ctx)

	assert.Equal(t, 3, report.Categories.Loaded)
	assert.Equal(t, 2, report.Transactions.Loaded)
	all := reloaded.Transactions().FindAll()
	require.Len(t, all, 2)
	assert.Nil(t, all[0].Category)
	assert.Equal(t, "Fun", all[1].CategoryName())
}

func TestLedger_LoadFailureDegrades(t *testing.T) {
	cats := storage.NewCategoryStore()
	l := New(cats, storage.NewTransactionStore(), nil, failingPersister{loadErr: errors.New("unreadable")})

	report := l.Load(context.Background())
	assert.Equal(t, 1, report.Categories.Loaded)
	assert.NotNil(t, cats.FindByName("Partial"), "partially loaded data is kept")
}

func TestLedger_SaveRefusedAfterFailedLoad(t *testing.T) {
	loadErr := errors.New("unreadable")
	saves := 0
	l := New(storage.NewCategoryStore(), storage.NewTransactionStore(), nil, failingPersister{loadErr: loadErr, saves: &saves})

	l.Load(context.Background())
	l.AddCategory(model.Category{ID: "c_new", Name: "New"})

	err := l.Save(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrPersist)
	assert.ErrorIs(t, err, loadErr)
	assert.Zero(t, saves, "stored data must not be overwritten")
}

func TestLedger_RemoveCategoryLogsFields(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	require.NoError(t, common.SetupLoggerWithWriter(&buf, slog.LevelInfo, "json"))

	l := New(storage.NewCategoryStore(), storage.NewTransactionStore(), nil, nil)
	gifts := l.AddCategory(model.Category{ID: "c_gifts", Name: "Gifts"})
	l.AddTransaction(model.Transaction{ID: "t1", Category: gifts})
	require.True(t, l.RemoveCategory("Gifts"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "deleted category", entry["msg"])
	assert.Equal(t, "Gifts", entry["name"])
	assert.EqualValues(t, 1, entry["uncategorized_transactions"])
}

func TestLedger_SaveAllowedAfterCleanLoad(t *testing.T) {
	saves := 0
	l := New(storage.NewCategoryStore(), storage.NewTransactionStore(), nil, failingPersister{saves: &saves})

	l.Load(context.Background())
	require.NoError(t, l.Save(context.Background()))
	assert.Equal(t, 1, saves)
}

func TestLedger_SaveFailureIsReturned(t *testing.T) {
	saveErr := errors.New("disk full")
	l := New(storage.NewCategoryStore(), storage.NewTransactionStore(), nil, failingPersister{saveErr: saveErr})

	err := l.Save(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, saveErr)
}

func TestLedger_NilPersister(t *testing.T) {
	l := New(storage.NewCategoryStore(), storage.NewTransactionStore(), nil, nil)
	assert.Equal(t, storage.LoadReport{}, l.Load(context.Background()))
	require.NoError(t, l.Save(context.Background()))

	stats := l.ImportTransactions([]model.Transaction{newTxn("t1", "-1", "lunch", "")}, 0.8)
	assert.Equal(t, 1, stats.Uncategorized, "no categorizer means no proposals")
}

func TestLedger_ImportFixtures(t *testing.T) {
	stores := testutil.SeededStores(t)
	l := New(stores.Categories, stores.Transactions, categorizer.NewDefault(stores.Categories), nil)
	salary := stores.Category(t, "Salary")

	stats := l.ImportTransactions([]model.Transaction{
		testutil.Txn(t, "t1", "2025-01-31", "3000", "ACME monthly salary", nil),
		testutil.Txn(t, "t2", "2025-02-01", "-2.75", "city bus", nil),
		testutil.Txn(t, "t3", "2025-02-02", "-64", "Bookshop", nil),
	}, DefaultConfidenceThreshold)

	assert.Equal(t, ImportStats{Imported: 3, Categorized: 2, Uncategorized: 1}, stats)
	assert.Same(t, salary, l.Transactions().FindAll()[0].Category)
	assert.Len(t, l.Transactions().FindByPeriod(2025, 2), 2)
}
