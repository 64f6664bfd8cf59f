package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, time.Duration(0), cfg.RequestTimeout)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "todo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr: ":9000"
store: sql
request_timeout: 2s
db:
  driver: postgres
  host: pg
  port: "5432"
  name: app
log:
  level: debug
`), 0o600))

	t.Setenv("DB_HOST", "pg-from-env")
	t.Setenv("DB_MAX_OPEN_CONNS", "8")

	cfg, err := Load(path, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, StoreSQL, cfg.Store)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "pg-from-env", cfg.DB.Host)
	assert.Equal(t, "5432", cfg.DB.Port)
	assert.Equal(t, "app", cfg.DB.Name)
	assert.Equal(t, 8, cfg.DB.MaxOpenConns)
	assert.Equal(t, "debug", cfg.Log.Level)
	// ファイルに無い項目はデフォルトのまま
	assert.Equal(t, ":9464", cfg.MetricsAddr)
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "soon")

	cfg, err := Load("", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.RequestTimeout)
}

func TestValidate_UnknownStore(t *testing.T) {
	t.Setenv("STORE", "redis")

	cfg, err := Load("", zap.NewNop())
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

func TestLoad_FlagCanOverrideInvalidEnv(t *testing.T) {
	t.Setenv("STORE", "bogus")

	cfg, err := Load("", zap.NewNop())
	require.NoError(t, err)

	// cmd 側の --store memory 相当
	cfg.Store = StoreMemory
	require.NoError(t, cfg.Validate())
	assert.Equal(t, StoreMemory, cfg.Store)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), zap.NewNop())
	assert.Error(t, err)
}
