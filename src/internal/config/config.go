package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const defaultConnectionString = "Host=localhost;Port=5432;Database=multicurrency_account_db;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"

	RateSourceNBP      = "nbp"
	RateSourceDatabase = "database"
	RateSourceStatic   = "static"
)

type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty       bool          `env:"LOG_PRETTY" envDefault:"false"`

	StoreDriver   string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseDSN   string `env:"DATABASE_DSN"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"data/accounts.db"`
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"src/migrations"`

	RateSource string        `env:"RATE_SOURCE" envDefault:"nbp"`
	NBPAPIURL  string        `env:"NBP_API_URL" envDefault:"https://api.nbp.pl/api/exchangerates/rates/c"`
	NBPTimeout time.Duration `env:"NBP_TIMEOUT" envDefault:"5s"`

	RedisURL string        `env:"REDIS_URL"`
	LockTTL  time.Duration `env:"LOCK_TTL" envDefault:"10s"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.RateSource = strings.ToLower(strings.TrimSpace(cfg.RateSource))

	conn := strings.TrimSpace(cfg.DatabaseDSN)
	if conn == "" {
		conn = defaultConnectionString
	}
	cfg.DatabaseDSN = normalizeConnectionString(conn)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverSQLite, StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be one of %s, %s, %s", StoreDriverPostgres, StoreDriverSQLite, StoreDriverMemory)
	}

	switch c.RateSource {
	case RateSourceNBP, RateSourceStatic:
	case RateSourceDatabase:
		if c.StoreDriver != StoreDriverPostgres {
			return fmt.Errorf("RATE_SOURCE=%s requires STORE_DRIVER=%s", RateSourceDatabase, StoreDriverPostgres)
		}
	default:
		return fmt.Errorf("RATE_SOURCE must be one of %s, %s, %s", RateSourceNBP, RateSourceDatabase, RateSourceStatic)
	}

	if c.NBPTimeout <= 0 {
		return fmt.Errorf("NBP_TIMEOUT must be positive")
	}
	if c.LockTTL <= 0 {
		return fmt.Errorf("LOCK_TTL must be positive")
	}
	return nil
}

// normalizeConnectionString accepts ADO-style "Key=Value;" strings as well as
// lib/pq keyword strings and URLs.
func normalizeConnectionString(raw string) string {
	if strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://") {
		return raw
	}

	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
