package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"STOCK_APP_NAME",
	"STOCK_APP_ENV",
	"STOCK_APP_PORT",
	"STOCK_DATABASE_DRIVER",
	"STOCK_DATABASE_HOST",
	"STOCK_DATABASE_PORT",
	"STOCK_DATABASE_PASSWORD",
	"STOCK_DATABASE_SSLMODE",
	"STOCK_DATABASE_PATH",
	"STOCK_DATABASE_MAX_OPEN_CONNS",
	"STOCK_DATABASE_MAX_IDLE_CONNS",
	"STOCK_STOCK_DEFAULT_POLICY",
	"STOCK_STOCK_TIME_ZONE",
	"STOCK_REGISTRY_BACKEND",
	"STOCK_EVENT_IDEMPOTENCY_BACKEND",
	"STOCK_SCHEDULER_ENABLED",
	"STOCK_SCHEDULER_ROLLOVER_CRON",
	"STOCK_HTTP_CORS_ALLOW_ORIGINS",
	"STOCK_TELEMETRY_ENABLED",
	"STOCK_TELEMETRY_SAMPLING_RATIO",
	"STOCK_PROFILING_ENABLED",
	"STOCK_PROFILING_PROFILE_TYPES",
}

// clearConfigEnv unsets every key for the duration of the test
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearConfigEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "stockledger", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "stockledger", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "two_tier", cfg.Stock.DefaultPolicy)
		assert.Equal(t, "memory", cfg.Registry.Backend)
		assert.Equal(t, "memory", cfg.Event.IdempotencyBackend)
		assert.True(t, cfg.Event.IdempotencyEnabled)
		assert.Equal(t, 24*time.Hour, cfg.Event.IdempotencyTTL)
		assert.True(t, cfg.Scheduler.Enabled)
		assert.Equal(t, "5 0 1 * *", cfg.Scheduler.RolloverCron)
		assert.True(t, cfg.Metrics.Enabled)
		assert.Equal(t, "/metrics", cfg.Metrics.Path)
		assert.False(t, cfg.Telemetry.Enabled)
		assert.Equal(t, "localhost:4317", cfg.Telemetry.CollectorEndpoint)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
		assert.True(t, cfg.Telemetry.ExportLogs)
		assert.False(t, cfg.Profiling.Enabled)
		assert.Equal(t, "http://localhost:4040", cfg.Profiling.ServerAddress)
		assert.Equal(t, []string{"cpu", "alloc_space", "inuse_space", "goroutines"}, cfg.Profiling.ProfileTypes)
	})

	t.Run("overrides with environment variables", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("STOCK_APP_NAME", "spice-ledger")
		t.Setenv("STOCK_APP_PORT", "9090")
		t.Setenv("STOCK_DATABASE_DRIVER", "sqlite")
		t.Setenv("STOCK_DATABASE_PATH", "/tmp/ledger.db")
		t.Setenv("STOCK_STOCK_DEFAULT_POLICY", "three_tier")
		t.Setenv("STOCK_REGISTRY_BACKEND", "redis")
		t.Setenv("STOCK_SCHEDULER_ENABLED", "false")
		t.Setenv("STOCK_PROFILING_ENABLED", "true")
		t.Setenv("STOCK_PROFILING_PROFILE_TYPES", "cpu mutex")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "spice-ledger", cfg.App.Name)
		assert.Equal(t, "9090", cfg.App.Port)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, "/tmp/ledger.db", cfg.Database.DSN())
		assert.Equal(t, "three_tier", cfg.Stock.DefaultPolicy)
		assert.Equal(t, "redis", cfg.Registry.Backend)
		assert.False(t, cfg.Scheduler.Enabled)
		assert.True(t, cfg.Profiling.Enabled)
		assert.Equal(t, []string{"cpu", "mutex"}, cfg.Profiling.ProfileTypes)
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("STOCK_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver must be postgres or sqlite")
	})

	t.Run("rejects unknown policy", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("STOCK_STOCK_DEFAULT_POLICY", "four_tier")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stock.default_policy")
	})

	t.Run("rejects unknown time zone", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("STOCK_STOCK_TIME_ZONE", "Mars/Olympus")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stock.time_zone")
	})

	t.Run("rejects unknown registry backend", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("STOCK_REGISTRY_BACKEND", "etcd")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "registry.backend must be memory or redis")
	})

	t.Run("fails when max_idle_conns exceeds max_open_conns", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("STOCK_DATABASE_MAX_OPEN_CONNS", "5")
		t.Setenv("STOCK_DATABASE_MAX_IDLE_CONNS", "10")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns (10) cannot exceed database.max_open_conns (5)")
	})

	t.Run("rejects sampling ratio above one", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("STOCK_TELEMETRY_ENABLED", "true")
		t.Setenv("STOCK_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "telemetry.sampling_ratio")
	})

	t.Run("fails when max_idle_conns is negative", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("STOCK_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("STOCK_APP_ENV", "production")
		t.Setenv("STOCK_DATABASE_PASSWORD", "secure-password")
		t.Setenv("STOCK_DATABASE_SSLMODE", "require")
	}

	t.Run("requires database.password in production", func(t *testing.T) {
		setValidProductionBase(t)
		os.Unsetenv("STOCK_DATABASE_PASSWORD")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("STOCK_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("sqlite skips postgres credential checks", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("STOCK_APP_ENV", "production")
		t.Setenv("STOCK_DATABASE_DRIVER", "sqlite")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
	})

	t.Run("rejects wildcard CORS origin in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("STOCK_HTTP_CORS_ALLOW_ORIGINS", "*")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cors_allow_origins cannot be '*'")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})

	t.Run("returns path for sqlite", func(t *testing.T) {
		cfg := DatabaseConfig{Driver: "sqlite", Path: ":memory:"}
		assert.Equal(t, ":memory:", cfg.DSN())
	})
}

func TestStockConfig_Location(t *testing.T) {
	assert.Equal(t, time.UTC, StockConfig{TimeZone: "bogus"}.Location())
	assert.Equal(t, "Asia/Kolkata", StockConfig{TimeZone: "Asia/Kolkata"}.Location().String())
}
