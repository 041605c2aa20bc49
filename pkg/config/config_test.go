package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "gelp-api", cfg.App.Name)
	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, 3001, cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.Sales.Timeout)
	assert.Equal(t, 3, cfg.Sales.MaxAttempts)
	assert.Equal(t, "UTC", cfg.Dashboard.Location.String())
	assert.False(t, cfg.Redis.Enabled())
	assert.True(t, cfg.Metrics.Enabled)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "MEMORY")
	v.Set("SALE_TIMEOUT_MS", "1500")
	v.Set("DASHBOARD_TIMEZONE", "America/Sao_Paulo")
	v.Set("REDIS_ADDR", "localhost:6379")
	v.Set("MEMORY_SEED", "false")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.False(t, cfg.Storage.MemorySeed)
	assert.Equal(t, 1500*time.Millisecond, cfg.Sales.Timeout)
	assert.Equal(t, "America/Sao_Paulo", cfg.Dashboard.Location.String())
	assert.True(t, cfg.Redis.Enabled())
}

func TestFromViper_Invalid(t *testing.T) {
	v := viper.New()
	v.Set("DASHBOARD_TIMEZONE", "Marte/Base")
	_, err := fromViper(v)
	assert.Error(t, err)

	v = viper.New()
	v.Set("STORAGE_DRIVER", "indexeddb")
	_, err = fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "gelp", Password: "p@ss/word", DBName: "gelp_db", SSLMode: "disable"}
	assert.Equal(t, "postgres://gelp:p%40ss%2Fword@db:5432/gelp_db?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
