package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pipelinecrm/crm-api/internal/domain"
	"github.com/pipelinecrm/crm-api/internal/repository"
	"github.com/pipelinecrm/crm-api/internal/service"
	"github.com/pipelinecrm/crm-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService(t *testing.T) {
	ctx := context.Background()

	t.Run("inactive flag is stored on create", func(t *testing.T) {
		svc := setupServices(t)
		product, err := svc.products.Create(ctx, &domain.CreateProductRequest{
			Name:     "Legacy plan",
			Type:     domain.ProductTypeSubscription,
			Price:    99,
			IsActive: ptr(false),
		})
		require.NoError(t, err)
		assert.False(t, product.IsActive)

		stored, err := svc.products.GetByID(ctx, product.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsActive)

		active := true
		list, err := svc.products.List(ctx, repository.ProductFilters{IsActive: &active})
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("referenced product cannot be deleted or retyped", func(t *testing.T) {
		svc := setupServices(t)
		opp := testutil.CreateTestOpportunity(t, svc.db, domain.StageProspecting, 10)
		product := testutil.CreateTestProduct(t, svc.db, domain.ProductTypeOneTime, 10)

		_, err := svc.orders.Create(ctx, &domain.CreateOrderRequest{
			OpportunityID: opp.ID,
			Items:         []domain.OrderItemInput{{ProductID: product.ID, Quantity: 1}},
		}, nil)
		require.NoError(t, err)

		assert.ErrorIs(t, svc.products.Delete(ctx, product.ID), service.ErrProductInUse)

		_, err = svc.products.Update(ctx, product.ID, &domain.UpdateProductRequest{Type: ptr(domain.ProductTypeSubscription)})
		assert.ErrorIs(t, err, service.ErrConflict)

		updated, err := svc.products.Update(ctx, product.ID, &domain.UpdateProductRequest{Price: ptr(12.5), IsActive: ptr(false)})
		require.NoError(t, err)
		assert.Equal(t, 12.5, updated.Price)
		assert.False(t, updated.IsActive)
	})

	t.Run("unreferenced product is deleted", func(t *testing.T) {
		svc := setupServices(t)
		product := testutil.CreateTestProduct(t, svc.db, domain.ProductTypeOneTime, 10)

		require.NoError(t, svc.products.Delete(ctx, product.ID))
		_, err := svc.products.GetByID(ctx, product.ID)
		assert.ErrorIs(t, err, service.ErrProductNotFound)
	})
}

func TestContactService(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	account := testutil.CreateTestAccount(t, svc.db, "Umbrella")

	contact, err := svc.contacts.Create(ctx, &domain.CreateContactRequest{
		AccountID: &account.ID,
		FirstName: "Alice",
		LastName:  "Wong",
		Email:     "alice@umbrella.test",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Wong", contact.FullName)

	_, err = svc.contacts.Create(ctx, &domain.CreateContactRequest{FirstName: "A", LastName: "B", Email: "ALICE@umbrella.test"})
	assert.ErrorIs(t, err, service.ErrDuplicateContactEmail)

	_, err = svc.contacts.Create(ctx, &domain.CreateContactRequest{FirstName: "A", LastName: "B", AccountID: ptr(uuid.New())})
	assert.ErrorIs(t, err, domain.ErrValidation)

	updated, err := svc.contacts.Update(ctx, contact.ID, &domain.UpdateContactRequest{Title: ptr("CFO"), Email: ptr("alice@umbrella.test")})
	require.NoError(t, err)
	assert.Equal(t, "CFO", updated.Title)
	assert.Equal(t, "Umbrella", updated.AccountName)

	page, err := svc.contacts.List(ctx, 1, 10, repository.ContactFilters{AccountID: &account.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestAccountService(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	account, err := svc.accounts.Create(ctx, &domain.CreateAccountRequest{Name: "Wayne Enterprises", City: "Gotham"})
	require.NoError(t, err)

	updated, err := svc.accounts.Update(ctx, account.ID, &domain.UpdateAccountRequest{Industry: ptr("Conglomerate")})
	require.NoError(t, err)
	assert.Equal(t, "Conglomerate", updated.Industry)
	assert.Equal(t, "Gotham", updated.City)

	_, err = svc.accounts.Update(ctx, account.ID, &domain.UpdateAccountRequest{OwnerID: ptr(uuid.New())})
	assert.ErrorIs(t, err, domain.ErrValidation)

	page, err := svc.accounts.List(ctx, 1, 10, "wayne")
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	_, err = svc.accounts.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrAccountNotFound)
}

func TestNoteService(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	opp := testutil.CreateTestOpportunity(t, svc.db, domain.StageProspecting, 10)
	lead := testutil.CreateTestLead(t, svc.db, "web")

	note, err := svc.notes.Create(ctx, &domain.CreateNoteRequest{Content: "Called back", OpportunityID: &opp.ID}, nil)
	require.NoError(t, err)
	_, err = svc.notes.Create(ctx, &domain.CreateNoteRequest{Content: "Met at booth", LeadID: &lead.ID}, nil)
	require.NoError(t, err)

	notes, err := svc.notes.List(ctx, repository.NoteFilters{OpportunityID: &opp.ID})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Called back", notes[0].Content)

	updated, err := svc.notes.Update(ctx, note.ID, &domain.UpdateNoteRequest{Content: ptr("Called back, sending quote")})
	require.NoError(t, err)
	assert.Equal(t, "Called back, sending quote", updated.Content)

	_, err = svc.notes.Create(ctx, &domain.CreateNoteRequest{Content: "x", CreatedBy: ptr(uuid.New())}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, svc.notes.Delete(ctx, note.ID))
	assert.ErrorIs(t, svc.notes.Delete(ctx, note.ID), service.ErrNoteNotFound)
}

func TestActivityService(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	opp := testutil.CreateTestOpportunity(t, svc.db, domain.StageProspecting, 10)
	user := testutil.CreateTestUser(t, svc.db, "Rep")

	activity, err := svc.activities.Create(ctx, &domain.CreateActivityRequest{
		Type:          domain.ActivityTypeCall,
		Subject:       "Intro call",
		OpportunityID: &opp.ID,
		DueDate:       "2026-11-02",
	}, &user.ID)
	require.NoError(t, err)
	assert.Equal(t, &user.ID, activity.CreatedBy)
	require.NotNil(t, activity.DueDate)
	assert.Equal(t, "2026-11-02", *activity.DueDate)

	// Posting a stage_change activity records it without moving the stage.
	_, err = svc.activities.Create(ctx, &domain.CreateActivityRequest{
		Type:          domain.ActivityTypeStageChange,
		Subject:       "prospecting → proposal",
		OpportunityID: &opp.ID,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StageProspecting, testutil.ReloadOpportunity(t, svc.db, opp.ID).Stage)

	list, err := svc.activities.List(ctx, repository.ActivityFilters{OpportunityID: &opp.ID}, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.activities.Create(ctx, &domain.CreateActivityRequest{
		Type:          domain.ActivityTypeTask,
		Subject:       "Follow up",
		OpportunityID: ptr(uuid.New()),
	}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUserService(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	user, err := svc.users.Create(ctx, &domain.CreateUserRequest{Name: "Margaret", Email: "margaret@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "sales", user.Role)

	_, err = svc.users.Create(ctx, &domain.CreateUserRequest{Name: "M", Email: "Margaret@example.com"})
	assert.ErrorIs(t, err, service.ErrDuplicateUserEmail)

	users, err := svc.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestDashboardService_GetMetrics(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	testutil.CreateTestAccount(t, svc.db, "A")
	testutil.CreateTestLead(t, svc.db, "web")
	testutil.CreateTestLead(t, svc.db, "web")

	mk := func(stage domain.OpportunityStage, probability int, value float64) {
		opp := testutil.CreateTestOpportunity(t, svc.db, stage, probability)
		require.NoError(t, svc.db.Model(opp).Update("value", value).Error)
	}
	mk(domain.StageProspecting, 10, 1000)
	mk(domain.StageProposal, 50, 400)
	mk(domain.StageClosedWon, 100, 900)
	mk(domain.StageClosedLost, 0, 300)
	mk(domain.StageClosedLost, 0, 100)

	metrics, err := svc.dashboard.GetMetrics(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), metrics.TotalAccounts)
	assert.Equal(t, int64(2), metrics.TotalLeads)
	assert.Equal(t, int64(2), metrics.LeadsByStatus[domain.LeadStatusQualified])
	assert.Equal(t, int64(2), metrics.OpenOpportunities)
	assert.Equal(t, 1400.0, metrics.PipelineValue)
	assert.Equal(t, 300.0, metrics.WeightedPipelineValue)
	assert.Equal(t, int64(1), metrics.WonCount)
	assert.Equal(t, 900.0, metrics.WonValue)
	assert.Equal(t, int64(2), metrics.LostCount)
	assert.Equal(t, 400.0, metrics.LostValue)
	assert.Equal(t, 33.33, metrics.WinRate)

	require.Len(t, metrics.Stages, len(domain.AllStages()))
	assert.Equal(t, domain.StageProspecting, metrics.Stages[0].Stage)
	assert.Equal(t, 1, metrics.Stages[0].DisplayOrder)
}
