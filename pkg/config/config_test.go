package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.App.StoreDriver)
	assert.Equal(t, "SALE", cfg.Shop.SalePrefix)
	assert.Equal(t, "RET", cfg.Shop.ReturnPrefix)
	assert.Equal(t, "ECH", cfg.Shop.ExchangePrefix)
	assert.Equal(t, "EUR", cfg.Shop.Currency)
	assert.Equal(t, 5*time.Second, cfg.Redis.LockTTL)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_EnvTienePrioridad(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("STOCK_LOCK_TTL_SECONDS", "2")
	t.Setenv("SALE_PREFIX", "VTE")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 2*time.Second, cfg.Redis.LockTTL)
	assert.Equal(t, "VTE", cfg.Shop.SalePrefix)
}

func TestLoad_Validaciones(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	_, err = Load()
	assert.Error(t, err, "production exige JWT_SECRET")
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "pos", Password: "p@ss:w/rd", DBName: "stockpos", SSLMode: "disable"}
	assert.Equal(t, "postgres://pos:p%40ss%3Aw%2Frd@db:5432/stockpos?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
