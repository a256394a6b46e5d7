package main

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/Veraticus/spice-ledger/internal/categorizer"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/config"
	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/report"
	"github.com/Veraticus/spice-ledger/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// session is an opened ledger plus the resources behind it.
type session struct {
	cfg     *config.Config
	ledger  *ledger.Ledger
	reports *report.Engine
	close   func() error
}

// openLedger loads the configured backend, seeds the default categories and
// returns a ready ledger. Callers must call close.
func openLedger(ctx context.Context, opts ...ledger.Option) (*session, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("invalid configuration", err)
	}

	persister, closeFn, err := openPersister(ctx, cfg)
	if err != nil {
		return nil, err
	}

	cats := storage.NewCategoryStore()
	txns := storage.NewTransactionStore(storage.WithLocation(cfg.Location))

	keywords := categorizer.DefaultKeywords()
	maps.Copy(keywords, cfg.Keywords)

	l := ledger.New(cats, txns, categorizer.New(cats, keywords), persister, opts...)
	l.Load(ctx)

	if added := categorizer.SeedDefaults(cats); added > 0 {
		slog.Debug("seeded default categories", "count", added)
	}

	return &session{
		cfg:     cfg,
		ledger:  l,
		reports: report.NewEngine(txns),
		close:   closeFn,
	}, nil
}

func openPersister(ctx context.Context, cfg *config.Config) (ledger.Persister, func() error, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		backend, err := storage.NewSQLiteBackend(ctx, cfg.SQLitePath())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite backend: %w", err)
		}
		return backend, backend.Close, nil
	default:
		backend := storage.NewFileBackend(cfg.CategoriesPath(), cfg.TransactionsPath())
		return backend, func() error { return nil }, nil
	}
}

// withLedger opens the ledger, runs fn, and saves afterwards when save is set.
func withLedger(cmd *cobra.Command, save bool, fn func(*session) error, opts ...ledger.Option) error {
	ctx := cmd.Context()

	s, err := openLedger(ctx, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(); cerr != nil {
			slog.Warn("Failed to close storage", "error", cerr)
		}
	}()

	if err := fn(s); err != nil {
		return err
	}

	if save {
		if err := s.ledger.Save(ctx); err != nil {
			return common.NewUserError("could not save the ledger", err)
		}
	}
	return nil
}

// period reads --year and --month, defaulting to the current month in loc.
func period(cmd *cobra.Command, loc *time.Location) (year, month int, err error) {
	now := time.Now().In(loc)
	year, month = now.Year(), int(now.Month())

	if cmd.Flags().Changed("year") {
		year, _ = cmd.Flags().GetInt("year")
	}
	if cmd.Flags().Changed("month") {
		month, _ = cmd.Flags().GetInt("month")
		if month < 1 || month > 12 {
			return 0, 0, common.NewUserError(fmt.Sprintf("month must be between 1 and 12, got %d", month), nil)
		}
	}
	return year, month, nil
}
