package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("DATABASE_DSN", "")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, RateSourceNBP, cfg.RateSource)
	assert.Equal(t, 5*time.Second, cfg.NBPTimeout)
	assert.Contains(t, cfg.DatabaseDSN, "dbname=multicurrency_account_db")
	assert.Contains(t, cfg.DatabaseDSN, "sslmode=disable")
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("RATE_SOURCE", "static")
	t.Setenv("NBP_TIMEOUT", "750ms")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverSQLite, cfg.StoreDriver)
	assert.Equal(t, RateSourceStatic, cfg.RateSource)
	assert.Equal(t, 750*time.Millisecond, cfg.NBPTimeout)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestParseRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := Parse()
	assert.Error(t, err)
}

func TestParseRejectsDatabaseRatesWithoutPostgres(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("RATE_SOURCE", "database")

	_, err := Parse()
	assert.Error(t, err)
}

func TestNormalizeConnectionString(t *testing.T) {
	got := normalizeConnectionString("Host=db;Port=5433;Database=accounts;Username=app;Password=secret;CommandTimeout=30")
	assert.Equal(t, "host=db port=5433 dbname=accounts user=app password=secret statement_timeout=30s sslmode=disable", got)

	url := "postgres://app:secret@db:5432/accounts?sslmode=require"
	assert.Equal(t, url, normalizeConnectionString(url))
}
