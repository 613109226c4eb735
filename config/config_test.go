package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8082", cfg.Server.Addr)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
store:
  driver: redis
  redis:
    addr: "cache:6379"
    db: 2
log:
  level: debug
  development: true
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, DriverRedis, cfg.Store.Driver)
	assert.Equal(t, "cache:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, "storefront:", cfg.Store.Redis.Prefix, "unset fields keep defaults")
	assert.True(t, cfg.Log.Development)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STOREFRONT_STORE_DRIVER", "postgres")
	t.Setenv("STOREFRONT_STORE_DSN", "postgres://localhost/shop")
	t.Setenv("STOREFRONT_REDIS_DB", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/shop", cfg.Store.DSN)
	assert.Equal(t, 3, cfg.Store.Redis.DB)
}

func TestEnvBadNumber(t *testing.T) {
	env := map[string]string{"STOREFRONT_REDIS_DB": "two"}
	cfg := Default()
	err := cfg.applyEnv(func(k string) (string, bool) { v, ok := env[k]; return v, ok })
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Store.Driver = "etcd"
	assert.True(t, errors.Is(cfg.Validate(), ErrUnknownDriver))

	cfg = Default()
	cfg.Store.Driver = DriverPostgres
	cfg.Store.DSN = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Store.Driver = DriverMemory
	cfg.Store.DSN = ""
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
