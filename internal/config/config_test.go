package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/raw", cfg.Data.RawDir)
	assert.Equal(t, "data/staging", cfg.Data.StagingDir)
	assert.Equal(t, "data/warehouse", cfg.Data.WarehouseDir)
	assert.Equal(t, map[string]string{"employees": "rdbms", "orders": "desktop"}, cfg.Conform.Authority)
	assert.Equal(t, 0.9, cfg.Validate.MaxNullRate)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.RDBMS.DatabaseURL)
	assert.Empty(t, cfg.Desktop.WorkbookPath)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("WAREHOUSE_DATA_RAW_DIR", "/tmp/raw")
	t.Setenv("WAREHOUSE_VALIDATE_MAX_NULL_RATE", "0.25")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/raw", cfg.Data.RawDir)
	assert.Equal(t, 0.25, cfg.Validate.MaxNullRate)
}

func TestDatesConfig_Range(t *testing.T) {
	t.Run("no override", func(t *testing.T) {
		_, _, ok, err := DatesConfig{}.Range()
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("valid override", func(t *testing.T) {
		start, end, ok, err := DatesConfig{Start: "2012-01-01", End: "2012-12-31"}.Range()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2012, 12, 31, 0, 0, 0, 0, time.UTC), end)
	})

	t.Run("bad start", func(t *testing.T) {
		_, _, _, err := DatesConfig{Start: "01/01/2012", End: "2012-12-31"}.Range()
		assert.Error(t, err)
	})

	t.Run("partial override ignored", func(t *testing.T) {
		_, _, ok, err := DatesConfig{Start: "2012-01-01"}.Range()
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
}
