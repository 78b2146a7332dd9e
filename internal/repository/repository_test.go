package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pipelinecrm/crm-api/internal/domain"
	"github.com/pipelinecrm/crm-api/internal/repository"
	"github.com/pipelinecrm/crm-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNormalizePagination(t *testing.T) {
	tests := []struct {
		name             string
		page, pageSize   int
		wantPage, wantPS int
	}{
		{"defaults", 0, 0, 1, repository.DefaultPageSize},
		{"negative", -3, -1, 1, repository.DefaultPageSize},
		{"clamped", 2, 1000, 2, repository.MaxPageSize},
		{"unchanged", 4, 50, 4, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, pageSize := repository.NormalizePagination(tt.page, tt.pageSize)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPS, pageSize)
		})
	}
}

func TestBuildOrderClause(t *testing.T) {
	fields := map[string]string{"name": "name", "closeDate": "close_date"}

	assert.Equal(t, "close_date ASC", repository.BuildOrderClause(repository.SortConfig{Field: "closeDate", Order: repository.SortOrderAsc}, fields, "created_at"))
	assert.Equal(t, "created_at DESC", repository.BuildOrderClause(repository.SortConfig{Field: "password; DROP", Order: "sideways"}, fields, "created_at"))
	assert.Equal(t, repository.SortOrderAsc, repository.ParseSortOrder("ASC"))
	assert.Equal(t, repository.SortOrderDesc, repository.ParseSortOrder(""))
}

func TestOpportunityRepository_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewOpportunityRepository(db)
	ctx := context.Background()

	account := testutil.CreateTestAccount(t, db, "Acme")

	prospect := testutil.CreateTestOpportunity(t, db, domain.StageProspecting, 10)
	proposal := testutil.CreateTestOpportunity(t, db, domain.StageProposal, 50)
	won := testutil.CreateTestOpportunity(t, db, domain.StageClosedWon, 100)

	require.NoError(t, db.Model(&domain.Opportunity{}).Where("id = ?", proposal.ID).
		Updates(map[string]interface{}{"account_id": account.ID, "value": 5000, "name": "Acme renewal"}).Error)
	require.NoError(t, db.Model(&domain.Opportunity{}).Where("id = ?", won.ID).Update("value", 9000).Error)

	t.Run("open only", func(t *testing.T) {
		opps, total, err := repo.List(ctx, 1, 20, repository.OpportunityFilters{OpenOnly: true}, repository.DefaultSortConfig())
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		for _, o := range opps {
			assert.False(t, o.IsClosed())
		}
	})

	t.Run("by stage", func(t *testing.T) {
		stage := domain.StageProspecting
		opps, total, err := repo.List(ctx, 1, 20, repository.OpportunityFilters{Stage: &stage}, repository.DefaultSortConfig())
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, prospect.ID, opps[0].ID)
	})

	t.Run("by account and search", func(t *testing.T) {
		opps, total, err := repo.List(ctx, 1, 20, repository.OpportunityFilters{AccountID: &account.ID, Search: "RENEWAL"}, repository.DefaultSortConfig())
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, proposal.ID, opps[0].ID)
	})

	t.Run("sorted by value", func(t *testing.T) {
		opps, _, err := repo.List(ctx, 1, 20, repository.OpportunityFilters{}, repository.SortConfig{Field: "value", Order: repository.SortOrderDesc})
		require.NoError(t, err)
		require.Len(t, opps, 3)
		assert.Equal(t, won.ID, opps[0].ID)
		assert.Equal(t, proposal.ID, opps[1].ID)
	})

	t.Run("paginated", func(t *testing.T) {
		opps, total, err := repo.List(ctx, 2, 2, repository.OpportunityFilters{}, repository.DefaultSortConfig())
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, opps, 1)
	})
}

func TestOpportunityRepository_AggregateByStage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewOpportunityRepository(db)

	a := testutil.CreateTestOpportunity(t, db, domain.StageNegotiation, 75)
	b := testutil.CreateTestOpportunity(t, db, domain.StageNegotiation, 50)
	require.NoError(t, db.Model(&domain.Opportunity{}).Where("id = ?", a.ID).Update("value", 1000).Error)
	require.NoError(t, db.Model(&domain.Opportunity{}).Where("id = ?", b.ID).Update("value", 2000).Error)

	aggregates, err := repo.AggregateByStage(context.Background())
	require.NoError(t, err)
	require.Len(t, aggregates, 1)
	assert.Equal(t, domain.StageNegotiation, aggregates[0].Stage)
	assert.Equal(t, int64(2), aggregates[0].Count)
	assert.InDelta(t, 3000, aggregates[0].Value, 0.001)
	assert.InDelta(t, 1750, aggregates[0].WeightedValue, 0.001)
}

func TestContactRepository_GetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewContactRepository(db)
	contact := testutil.CreateTestContact(t, db, nil, "grace@navy.example")

	found, err := repo.GetByEmail(context.Background(), "  Grace@Navy.Example ")
	require.NoError(t, err)
	assert.Equal(t, contact.ID, found.ID)

	_, err = repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestLeadRepository_EmailExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLeadRepository(db)
	ctx := context.Background()
	lead := testutil.CreateTestLead(t, db, "referral")

	exists, err := repo.EmailExists(ctx, lead.Email, nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.EmailExists(ctx, lead.Email, &lead.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestNumberSequenceRepository_GetNextNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)
	ctx := context.Background()

	current, err := repo.GetCurrentSequence(ctx, "order", 2026)
	require.NoError(t, err)
	assert.Equal(t, 0, current)

	for want := 1; want <= 3; want++ {
		got, err := repo.GetNextNumber(ctx, "order", 2026)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// years are independent
	got, err := repo.GetNextNumber(ctx, "order", 2027)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	current, err = repo.GetCurrentSequence(ctx, "order", 2026)
	require.NoError(t, err)
	assert.Equal(t, 3, current)
}

func TestNumberSequenceRepository_ExistingRow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&domain.NumberSequence{Scope: "order", Year: 2026, LastSequence: 41}).Error)

	got, err := repo.GetNextNumber(ctx, "order", 2026)
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	// the seed insert is skipped on conflict, leaving a single row
	assert.Equal(t, int64(1), testutil.CountRows(t, db, &domain.NumberSequence{}, "scope = ? AND year = ?", "order", 2026))
}

func TestNumberSequenceRepository_Concurrent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)

	const workers = 10
	results := make(chan int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := repo.GetNextNumber(context.Background(), "order", 2026)
			if err == nil {
				results <- n
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int]bool)
	for n := range results {
		assert.False(t, seen[n], "sequence %d issued twice", n)
		seen[n] = true
	}
	assert.Len(t, seen, workers)
}

func TestOrderRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewOrderRepository(db)
	ctx := context.Background()

	open := testutil.CreateTestOpportunity(t, db, domain.StageProposal, 50)
	closed := testutil.CreateTestOpportunity(t, db, domain.StageClosedLost, 0)

	openOrder := &domain.Order{OpportunityID: open.ID, OrderNumber: "ORD-2026-00001", Status: domain.OrderStatusDraft, OrderDate: time.Now()}
	closedOrder := &domain.Order{OpportunityID: closed.ID, OrderNumber: "ORD-2026-00002", Status: domain.OrderStatusDraft, OrderDate: time.Now()}
	require.NoError(t, repo.Create(ctx, openOrder))
	require.NoError(t, repo.Create(ctx, closedOrder))

	t.Run("order number exists", func(t *testing.T) {
		exists, err := repo.OrderNumberExists(ctx, "ORD-2026-00001")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.OrderNumberExists(ctx, "ORD-2026-00099")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("ids for open opportunities", func(t *testing.T) {
		ids, err := repo.ListIDsForOpenOpportunities(ctx)
		require.NoError(t, err)
		require.Len(t, ids, 1)
		assert.Equal(t, openOrder.ID, ids[0])
	})

	t.Run("list by opportunity", func(t *testing.T) {
		orders, total, err := repo.List(ctx, 1, 20, repository.OrderFilters{OpportunityID: &closed.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, closedOrder.ID, orders[0].ID)
	})
}
