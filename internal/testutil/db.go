package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/pipelinecrm/crm-api/internal/database"
	"github.com/pipelinecrm/crm-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var counter atomic.Int64

func next() int64 {
	return counter.Add(1)
}

// SetupTestDB opens a fresh in-memory sqlite database with the full schema.
// A single connection is used so every query sees the same database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open sqlite test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	require.NoError(t, database.AutoMigrate(db), "failed to migrate test database")

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

// CreateTestUser creates a user with a unique email
func CreateTestUser(t *testing.T, db *gorm.DB, name string) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:  name,
		Email: fmt.Sprintf("user%d@example.com", next()),
		Role:  "sales",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestAccount creates an account
func CreateTestAccount(t *testing.T, db *gorm.DB, name string) *domain.Account {
	t.Helper()
	account := &domain.Account{
		Name:     name,
		Industry: "Software",
		Country:  "Norway",
	}
	require.NoError(t, db.Omit("Owner").Create(account).Error)
	return account
}

// CreateTestContact creates a contact, optionally under an account
func CreateTestContact(t *testing.T, db *gorm.DB, accountID *uuid.UUID, email string) *domain.Contact {
	t.Helper()
	contact := &domain.Contact{
		AccountID: accountID,
		FirstName: "Test",
		LastName:  fmt.Sprintf("Contact%d", next()),
		Email:     email,
	}
	require.NoError(t, db.Omit("Account").Create(contact).Error)
	return contact
}

// CreateTestLead creates a lead with a unique email
func CreateTestLead(t *testing.T, db *gorm.DB, source string) *domain.Lead {
	t.Helper()
	lead := &domain.Lead{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     fmt.Sprintf("lead%d@example.com", next()),
		Phone:     "+47 900 00 000",
		Company:   "Navy Labs",
		Title:     "CTO",
		Source:    source,
		Status:    domain.LeadStatusQualified,
	}
	require.NoError(t, db.Omit("Owner").Create(lead).Error)
	return lead
}

// CreateTestProduct creates an active product of the given type
func CreateTestProduct(t *testing.T, db *gorm.DB, productType domain.ProductType, price float64) *domain.Product {
	t.Helper()
	product := &domain.Product{
		Name:     fmt.Sprintf("%s product %d", productType, next()),
		Type:     productType,
		Price:    price,
		IsActive: true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

// CreateTestOpportunity creates an opportunity directly in the given stage
func CreateTestOpportunity(t *testing.T, db *gorm.DB, stage domain.OpportunityStage, probability int) *domain.Opportunity {
	t.Helper()
	opp := &domain.Opportunity{
		Name:        fmt.Sprintf("Opportunity %d", next()),
		Stage:       stage,
		Probability: probability,
	}
	require.NoError(t, db.Omit("Account", "Contact", "Owner", "Orders", "StageLogs").Create(opp).Error)
	return opp
}

// ReloadOpportunity reads the opportunity back from the database
func ReloadOpportunity(t *testing.T, db *gorm.DB, id uuid.UUID) *domain.Opportunity {
	t.Helper()
	var opp domain.Opportunity
	require.NoError(t, db.Where("id = ?", id).First(&opp).Error)
	return &opp
}

// CountRows counts rows of a model matching the condition
func CountRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&count).Error)
	return count
}
