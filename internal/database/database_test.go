package database_test

import (
	"context"
	"testing"

	"github.com/pipelinecrm/crm-api/internal/config"
	"github.com/pipelinecrm/crm-api/internal/database"
	"github.com/pipelinecrm/crm-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase_InMemory(t *testing.T) {
	db, err := database.NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	for _, model := range database.Models() {
		assert.True(t, db.Migrator().HasTable(model))
	}

	require.NoError(t, db.Create(&domain.User{Name: "Ada", Email: "ada@example.com", Role: "sales"}).Error)

	// the single connection keeps the in-memory schema alive across queries
	var count int64
	require.NoError(t, db.Model(&domain.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, database.HealthCheck(context.Background(), db))
	stats, err := database.HealthCheckWithStats(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpen)
	assert.Equal(t, "sqlite", stats.Dialect)
}

func TestNewDatabase_UnknownDriver(t *testing.T) {
	_, err := database.NewDatabase(&config.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}
