package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Config holds the ledger's runtime settings.
type Config struct {
	Location            *time.Location
	Keywords            map[string]string // Merged over the categorizer defaults
	Backend             string
	DataDir             string
	CategoriesFile      string
	TransactionsFile    string
	SQLiteFile          string
	ConfidenceThreshold float64
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", BackendCSV)
	v.SetDefault("storage.data_dir", "~/.local/share/ledger")
	v.SetDefault("storage.categories_file", "categories.csv")
	v.SetDefault("storage.transactions_file", "transactions.csv")
	v.SetDefault("storage.sqlite_file", "ledger.db")
	v.SetDefault("import.confidence_threshold", 0.8)
	v.SetDefault("report.timezone", "Local")
}

// Load reads and validates the configuration held by v.
// Viper lowercases map keys, so configured keywords are matched in lowercase.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		Backend:             strings.ToLower(v.GetString("storage.backend")),
		DataDir:             ExpandPath(v.GetString("storage.data_dir")),
		CategoriesFile:      v.GetString("storage.categories_file"),
		TransactionsFile:    v.GetString("storage.transactions_file"),
		SQLiteFile:          v.GetString("storage.sqlite_file"),
		ConfidenceThreshold: v.GetFloat64("import.confidence_threshold"),
		Keywords:            v.GetStringMapString("categorizer.keywords"),
	}

	tz := v.GetString("report.timezone")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: report.timezone %q: %w", common.ErrInvalidConfig, tz, err)
	}
	cfg.Location = loc

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendCSV, BackendSQLite:
	default:
		return fmt.Errorf("%w: unknown storage backend %q", common.ErrInvalidConfig, c.Backend)
	}

	if c.DataDir == "" {
		return fmt.Errorf("%w: storage.data_dir", common.ErrMissingConfig)
	}

	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: import.confidence_threshold must be between 0 and 1, got %v",
			common.ErrInvalidConfig, c.ConfidenceThreshold)
	}

	return nil
}

// CategoriesPath returns the categories file path.
func (c *Config) CategoriesPath() string {
	return c.resolve(c.CategoriesFile)
}

// TransactionsPath returns the transactions file path.
func (c *Config) TransactionsPath() string {
	return c.resolve(c.TransactionsFile)
}

// SQLitePath returns the SQLite database path.
func (c *Config) SQLitePath() string {
	return c.resolve(c.SQLiteFile)
}

// resolve makes relative file names relative to the data directory.
func (c *Config) resolve(name string) string {
	name = ExpandPath(name)
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}
