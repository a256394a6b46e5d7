package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, BackendCSV, cfg.Backend)
	assert.Equal(t, filepath.Join(home, ".local/share/ledger"), cfg.DataDir)
	assert.Equal(t, filepath.Join(cfg.DataDir, "categories.csv"), cfg.CategoriesPath())
	assert.Equal(t, filepath.Join(cfg.DataDir, "transactions.csv"), cfg.TransactionsPath())
	assert.Equal(t, filepath.Join(cfg.DataDir, "ledger.db"), cfg.SQLitePath())
	assert.InDelta(t, 0.8, cfg.ConfidenceThreshold, 1e-9)
	assert.Equal(t, time.Local, cfg.Location)
	assert.Empty(t, cfg.Keywords)
}

func TestLoad_Overrides(t *testing.T) {
	dir := t.TempDir()
	v := viper.New()
	v.Set("storage.backend", "SQLite")
	v.Set("storage.data_dir", dir)
	v.Set("storage.categories_file", "/abs/cats.csv")
	v.Set("import.confidence_threshold", 0.5)
	v.Set("report.timezone", "UTC")
	v.Set("categorizer.keywords", map[string]any{"coffee": "Coffee", "uber": "Transport"})

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, "/abs/cats.csv", cfg.CategoriesPath())
	assert.Equal(t, filepath.Join(dir, "transactions.csv"), cfg.TransactionsPath())
	assert.InDelta(t, 0.5, cfg.ConfidenceThreshold, 1e-9)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, map[string]string{"coffee": "Coffee", "uber": "Transport"}, cfg.Keywords)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   any
		wantErr error
	}{
		{name: "unknown backend", key: "storage.backend", value: "postgres", wantErr: common.ErrInvalidConfig},
		{name: "threshold too high", key: "import.confidence_threshold", value: 1.5, wantErr: common.ErrInvalidConfig},
		{name: "negative threshold", key: "import.confidence_threshold", value: -0.1, wantErr: common.ErrInvalidConfig},
		{name: "bad timezone", key: "report.timezone", value: "Mars/Olympus", wantErr: common.ErrInvalidConfig},
		{name: "empty data dir", key: "storage.data_dir", value: "", wantErr: common.ErrMissingConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
