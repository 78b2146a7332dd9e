package config_test

import (
	"os"
	"testing"

	"github.com/pipelinecrm/crm-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp keeps a config.json or .env in the working directory out of the test
func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DriverSQLite, cfg.Database.Driver)
	assert.True(t, cfg.Database.IsInMemory())
	assert.Equal(t, 8080, cfg.App.Port)
	assert.False(t, cfg.Jobs.Enabled)
	assert.Equal(t, "0 0 2 * * *", cfg.Jobs.ReconcileCron)
	assert.Contains(t, cfg.CORS.AllowedMethods, "PATCH")
	assert.Contains(t, cfg.CORS.AllowedHeaders, "X-User-ID")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("JOBS_ENABLED", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DriverPostgres, cfg.Database.Driver)
	assert.False(t, cfg.Database.IsInMemory())
	assert.Equal(t, 9090, cfg.App.Port)
	assert.True(t, cfg.Jobs.Enabled)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			App:      config.AppConfig{Port: 8080},
			Database: config.DatabaseConfig{Driver: config.DriverSQLite},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := valid()
		cfg.Database.Driver = "mysql"
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad port", func(t *testing.T) {
		cfg := valid()
		cfg.App.Port = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("jobs without schedule", func(t *testing.T) {
		cfg := valid()
		cfg.Jobs = config.JobsConfig{Enabled: true}
		assert.Error(t, cfg.Validate())
	})
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	d := config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "crm", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=crm sslmode=disable", d.ConnectionString())
}
