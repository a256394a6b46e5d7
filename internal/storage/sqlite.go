package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Veraticus/spice-ledger/internal/common"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		name TEXT PRIMARY KEY,
		id TEXT NOT NULL,
		kind INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		amount TEXT NOT NULL,
		posted_at INTEGER NOT NULL,
		merchant TEXT NOT NULL DEFAULT '',
		category_name TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT ''
	)`,
}

// SQLiteBackend persists the stores as a snapshot in a SQLite database.
// Every save replaces the stored snapshot inside one database transaction.
type SQLiteBackend struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteBackend opens (creating if needed) the database at dbPath.
// Use ":memory:" for a throwaway database.
func NewSQLiteBackend(ctx context.Context, dbPath string) (*SQLiteBackend, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("%w: sqlite path is empty", common.ErrMissingConfig)
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	b := &SQLiteBackend{db: db, dbPath: dbPath}
	if err := b.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return b, nil
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

func (b *SQLiteBackend) ensureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := b.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Load reads the snapshot into the stores. Rows go through the same
// best-effort decoding as the flat files.
func (b *SQLiteBackend) Load(ctx context.Context, cats *CategoryStore, txns *TransactionStore) (LoadReport, error) {
	var report LoadReport

	catErr := b.loadCategories(ctx, cats, &report.Categories)
	txnErr := b.loadTransactions(ctx, cats, txns, &report.Transactions)
	if err := errors.Join(catErr, txnErr); err != nil {
		return report, err
	}

	slog.Debug("loaded ledger snapshot",
		"db", b.dbPath,
		"categories", report.Categories.Loaded,
		"transactions", report.Transactions.Loaded)
	return report, nil
}

func (b *SQLiteBackend) loadCategories(ctx context.Context, cats *CategoryStore, result *LoadResult) error {
	rows, err := b.db.QueryContext(ctx, `SELECT id, name, kind FROM categories ORDER BY name`)
	if err != nil {
		return fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		var kind int
		if err := rows.Scan(&id, &name, &kind); err != nil {
			return fmt.Errorf("failed to scan category: %w", err)
		}
		c, _ := decodeCategory([]string{id, name, strconv.Itoa(kind)})
		cats.Save(c)
		result.Loaded++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating categories: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) loadTransactions(ctx context.Context, cats *CategoryStore, txns *TransactionStore, result *LoadResult) error {
	rows, err := b.db.QueryContext(ctx, `
		SELECT id, amount, posted_at, merchant, category_name, notes
		FROM transactions
		ORDER BY seq`)
	if err != nil {
		return fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, amount, merchant, categoryName, notes string
		var postedAt int64
		if err := rows.Scan(&id, &amount, &postedAt, &merchant, &categoryName, &notes); err != nil {
			return fmt.Errorf("failed to scan transaction: %w", err)
		}

		fields := []string{id, amount, strconv.FormatInt(postedAt, 10), merchant, categoryName, notes}
		t, rec, _ := txns.decodeTransaction(fields, cats)
		txns.Save(t)
		result.Add(rec)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating transactions: %w", err)
	}
	return nil
}

// Save replaces the stored snapshot with the current store contents.
func (b *SQLiteBackend) Save(ctx context.Context, cats *CategoryStore, txns *TransactionStore) (err error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", common.ErrPersist, err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				slog.Warn("failed to roll back snapshot", "error", rbErr)
			}
		}
	}()

	if err = replaceCategories(ctx, tx, cats); err != nil {
		return fmt.Errorf("%w: %w", common.ErrPersist, err)
	}
	if err = replaceTransactions(ctx, tx, txns); err != nil {
		return fmt.Errorf("%w: %w", common.ErrPersist, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit snapshot: %w", common.ErrPersist, err)
	}
	return nil
}

func replaceCategories(ctx context.Context, tx *sql.Tx, cats *CategoryStore) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return fmt.Errorf("failed to clear categories: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO categories (id, name, kind) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare category insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range cats.All() {
		if _, err := stmt.ExecContext(ctx, c.ID, c.Name, int(c.Type)); err != nil {
			return fmt.Errorf("failed to insert category %q: %w", c.Name, err)
		}
	}
	return nil
}

func replaceTransactions(ctx context.Context, tx *sql.Tx, txns *TransactionStore) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("failed to clear transactions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (id, amount, posted_at, merchant, category_name, notes)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare transaction insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range txns.FindAll() {
		if _, err := stmt.ExecContext(ctx,
			t.ID, t.Amount.String(), t.Date.Unix(), t.Merchant, t.CategoryName(), t.Notes,
		); err != nil {
			return fmt.Errorf("failed to insert transaction %q: %w", t.ID, err)
		}
	}
	return nil
}
