package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackend_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	backend := NewFileBackend(filepath.Join(dir, "categories.csv"), filepath.Join(dir, "transactions.csv"))

	cats := seededCategories(t)
	cats.Save(model.Category{ID: "c_gifts", Name: "Gifts, Misc", Type: model.CategoryTypeIncome})
	txns := NewTransactionStore()
	txns.Save(txn("t1", "-12", time.Unix(1735689600, 0), "Cafe", cats.FindByName("Food"), ""))
	txns.Save(txn("t2", "50", time.Unix(1735689700, 0), "Aunt", cats.FindByName("Gifts, Misc"), "birthday"))
	txns.Save(txn("t3", "-1", time.Unix(1735689800, 0), "Kiosk", nil, ""))

	require.NoError(t, backend.Save(ctx, cats, txns))

	loadedCats := NewCategoryStore()
	loadedTxns := NewTransactionStore()
	report, err := backend.Load(ctx, loadedCats, loadedTxns)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Categories.Loaded)
	assert.Equal(t, 3, report.Transactions.Loaded)
	assert.Zero(t, report.Transactions.Unresolved)

	all := loadedTxns.FindAll()
	assert.Same(t, loadedCats.FindByName("Gifts, Misc"), all[1].Category)
	assert.Nil(t, all[2].Category)
}

func TestFileBackend_LoadMissingFiles(t *testing.T) {
	dir := t.TempDir()
	backend := NewFileBackend(filepath.Join(dir, "c.csv"), filepath.Join(dir, "t.csv"))

	report, err := backend.Load(context.Background(), NewCategoryStore(), NewTransactionStore())
	require.NoError(t, err)
	assert.Equal(t, LoadReport{}, report)
}

func TestFileBackend_LoadUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	// A directory where a file is expected cannot be read as records.
	catsPath := filepath.Join(dir, "categories.csv")
	require.NoError(t, os.Mkdir(catsPath, 0750))

	backend := NewFileBackend(catsPath, filepath.Join(dir, "t.csv"))
	_, err := backend.Load(context.Background(), NewCategoryStore(), NewTransactionStore())
	require.Error(t, err)
}

func TestFileBackend_LoadReadsTransactionsWhenCategoriesFail(t *testing.T) {
	dir := t.TempDir()
	catsPath := filepath.Join(dir, "categories.csv")
	txnsPath := filepath.Join(dir, "transactions.csv")

	written := NewTransactionStore()
	written.Save(txn("t1", "-12", time.Unix(1735689600, 0), "Cafe", nil, ""))
	written.Save(txn("t2", "50", time.Unix(1735689700, 0), "Aunt", nil, "birthday"))
	require.NoError(t, written.SaveFile(txnsPath))
	require.NoError(t, os.Mkdir(catsPath, 0750))

	txns := NewTransactionStore()
	report, err := NewFileBackend(catsPath, txnsPath).Load(context.Background(), NewCategoryStore(), txns)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load categories")
	assert.NotContains(t, err.Error(), "failed to load transactions")

	assert.Equal(t, 2, report.Transactions.Loaded)
	assert.Equal(t, 2, txns.Len())
}

func TestFileBackend_SaveFailureIsPersistError(t *testing.T) {
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("file, not dir"), 0600))

	backend := NewFileBackend(filepath.Join(blocked, "c.csv"), filepath.Join(blocked, "t.csv"))
	err := backend.Save(context.Background(), seededCategories(t), NewTransactionStore())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrPersist)
}
