package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pipelinecrm/crm-api/internal/domain"
	"github.com/pipelinecrm/crm-api/internal/http/handler"
	"github.com/pipelinecrm/crm-api/internal/http/middleware"
	"github.com/pipelinecrm/crm-api/internal/repository"
	"github.com/pipelinecrm/crm-api/internal/service"
	"github.com/pipelinecrm/crm-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAPI(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	userRepo := repository.NewUserRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	contactRepo := repository.NewContactRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	productRepo := repository.NewProductRepository(db)
	oppRepo := repository.NewOpportunityRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	itemRepo := repository.NewOrderItemRepository(db)
	logRepo := repository.NewStageChangeLogRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	locks := service.NewOpportunityLocks()
	numbers := service.NewNumberSequenceService(repository.NewNumberSequenceRepository(db), orderRepo, logger)

	accounts := handler.NewAccountHandler(service.NewAccountService(accountRepo, userRepo, logger), logger)
	leads := handler.NewLeadHandler(service.NewLeadService(leadRepo, oppRepo, accountRepo, contactRepo, activityRepo, userRepo, logger, db), logger)
	opportunities := handler.NewOpportunityHandler(service.NewOpportunityService(oppRepo, orderRepo, logRepo, activityRepo, accountRepo, contactRepo, leadRepo, userRepo, locks, logger, db), logger)
	orders := handler.NewOrderHandler(service.NewOrderService(orderRepo, itemRepo, productRepo, oppRepo, numbers, locks, logger, db), logger)

	r := chi.NewRouter()
	r.Use(middleware.Actor)
	r.Post("/api/accounts", accounts.Create)
	r.Post("/api/leads/{id}/convert", leads.Convert)
	r.Get("/api/opportunities", opportunities.List)
	r.Get("/api/opportunities/{id}", opportunities.GetByID)
	r.Patch("/api/opportunities/{id}", opportunities.Update)
	r.Post("/api/opportunities/{id}/stage", opportunities.TransitionStage)
	r.Get("/api/opportunities/{id}/stage-logs", opportunities.GetStageLogs)
	r.Post("/api/orders", orders.Create)

	return r, db
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeAPIError(t *testing.T, rr *httptest.ResponseRecorder) domain.APIError {
	t.Helper()
	var apiErr domain.APIError
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apiErr))
	return apiErr
}

func TestAccountHandler_Create(t *testing.T) {
	api, _ := setupAPI(t)

	t.Run("created with location", func(t *testing.T) {
		rr := doJSON(t, api, http.MethodPost, "/api/accounts", map[string]string{"name": "Acme"}, nil)
		require.Equal(t, http.StatusCreated, rr.Code)

		var account domain.AccountDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &account))
		assert.Equal(t, "Acme", account.Name)
		assert.Equal(t, "/api/accounts/"+account.ID.String(), rr.Header().Get("Location"))
	})

	t.Run("missing name", func(t *testing.T) {
		rr := doJSON(t, api, http.MethodPost, "/api/accounts", map[string]string{"industry": "Retail"}, nil)
		require.Equal(t, http.StatusBadRequest, rr.Code)

		apiErr := decodeAPIError(t, rr)
		assert.Equal(t, domain.ErrorTypeValidation, apiErr.Type)
		assert.Contains(t, apiErr.Errors, "name")
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/accounts", bytes.NewReader([]byte("{")))
		rr := httptest.NewRecorder()
		api.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestOpportunityHandler_GetByID(t *testing.T) {
	api, db := setupAPI(t)
	opp := testutil.CreateTestOpportunity(t, db, domain.StageQualification, 25)

	t.Run("found", func(t *testing.T) {
		rr := doJSON(t, api, http.MethodGet, "/api/opportunities/"+opp.ID.String(), nil, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var dto domain.OpportunityDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dto))
		assert.Equal(t, opp.ID, dto.ID)
		assert.Equal(t, domain.StageQualification, dto.Stage)
		assert.False(t, dto.IsClosed)
	})

	t.Run("unknown id", func(t *testing.T) {
		rr := doJSON(t, api, http.MethodGet, "/api/opportunities/"+uuid.NewString(), nil, nil)
		require.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, domain.ErrorTypeNotFound, decodeAPIError(t, rr).Type)
	})

	t.Run("malformed id", func(t *testing.T) {
		rr := doJSON(t, api, http.MethodGet, "/api/opportunities/not-a-uuid", nil, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestOpportunityHandler_List(t *testing.T) {
	api, db := setupAPI(t)
	testutil.CreateTestOpportunity(t, db, domain.StageProposal, 50)
	testutil.CreateTestOpportunity(t, db, domain.StageClosedLost, 0)

	rr := doJSON(t, api, http.MethodGet, "/api/opportunities?open=true", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var page struct {
		Data  []domain.OpportunityDTO `json:"data"`
		Total int64                   `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, domain.StageProposal, page.Data[0].Stage)

	rr = doJSON(t, api, http.MethodGet, "/api/opportunities?stage=won", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestOpportunityHandler_TransitionStage(t *testing.T) {
	api, db := setupAPI(t)
	user := testutil.CreateTestUser(t, db, "Ada")

	t.Run("moves stage and logs the actor", func(t *testing.T) {
		opp := testutil.CreateTestOpportunity(t, db, domain.StageProspecting, 10)

		rr := doJSON(t, api, http.MethodPost, "/api/opportunities/"+opp.ID.String()+"/stage",
			map[string]string{"stage": "proposal", "reason": "Demo went well"},
			map[string]string{middleware.ActorHeader: user.ID.String()})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var result domain.StageTransitionDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Equal(t, domain.StageProposal, result.Opportunity.Stage)
		assert.Equal(t, 50, result.Opportunity.Probability)
		require.NotNil(t, result.StageLog.FromStage)
		assert.Equal(t, domain.StageProspecting, *result.StageLog.FromStage)
		require.NotNil(t, result.StageLog.ChangedBy)
		assert.Equal(t, user.ID, *result.StageLog.ChangedBy)

		rr = doJSON(t, api, http.MethodGet, "/api/opportunities/"+opp.ID.String()+"/stage-logs", nil, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var logs []domain.StageChangeLogDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &logs))
		require.Len(t, logs, 1)
		assert.Equal(t, "Demo went well", logs[0].Reason)
	})

	t.Run("reason required", func(t *testing.T) {
		opp := testutil.CreateTestOpportunity(t, db, domain.StageProspecting, 10)

		rr := doJSON(t, api, http.MethodPost, "/api/opportunities/"+opp.ID.String()+"/stage",
			map[string]string{"stage": "qualification", "reason": "  "}, nil)
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeAPIError(t, rr).Errors, "reason")

		assert.Equal(t, domain.StageProspecting, testutil.ReloadOpportunity(t, db, opp.ID).Stage)
	})

	t.Run("closed opportunity is final", func(t *testing.T) {
		opp := testutil.CreateTestOpportunity(t, db, domain.StageClosedWon, 100)

		rr := doJSON(t, api, http.MethodPost, "/api/opportunities/"+opp.ID.String()+"/stage",
			map[string]string{"stage": "negotiation", "reason": "Customer reconsidered"}, nil)
		require.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, domain.ErrorTypeInvalidState, decodeAPIError(t, rr).Type)
	})

	t.Run("unknown changedBy", func(t *testing.T) {
		opp := testutil.CreateTestOpportunity(t, db, domain.StageProspecting, 10)

		rr := doJSON(t, api, http.MethodPost, "/api/opportunities/"+opp.ID.String()+"/stage",
			map[string]string{"stage": "qualification", "reason": "Budget confirmed", "changedBy": uuid.NewString()}, nil)
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeAPIError(t, rr).Errors, "changedBy")
	})

	t.Run("malformed actor header", func(t *testing.T) {
		opp := testutil.CreateTestOpportunity(t, db, domain.StageProspecting, 10)

		rr := doJSON(t, api, http.MethodPost, "/api/opportunities/"+opp.ID.String()+"/stage",
			map[string]string{"stage": "qualification", "reason": "Budget confirmed"},
			map[string]string{middleware.ActorHeader: "someone"})
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, domain.StageProspecting, testutil.ReloadOpportunity(t, db, opp.ID).Stage)
	})
}

func TestOpportunityHandler_UpdateClosed(t *testing.T) {
	api, db := setupAPI(t)
	opp := testutil.CreateTestOpportunity(t, db, domain.StageClosedLost, 0)

	rr := doJSON(t, api, http.MethodPatch, "/api/opportunities/"+opp.ID.String(),
		map[string]string{"name": "Renamed"}, nil)
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, domain.ErrorTypeInvalidState, decodeAPIError(t, rr).Type)
	assert.Equal(t, opp.Name, testutil.ReloadOpportunity(t, db, opp.ID).Name)
}

func TestOrderHandler_Create(t *testing.T) {
	api, db := setupAPI(t)
	product := testutil.CreateTestProduct(t, db, domain.ProductTypeOneTime, 1000)

	t.Run("computes totals", func(t *testing.T) {
		opp := testutil.CreateTestOpportunity(t, db, domain.StageProposal, 50)

		body := map[string]interface{}{
			"opportunityId": opp.ID,
			"items": []map[string]interface{}{
				{"productId": product.ID, "quantity": 2, "costValue": 400},
			},
		}
		rr := doJSON(t, api, http.MethodPost, "/api/orders", body, nil)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		var order domain.OrderDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &order))
		assert.Equal(t, "/api/orders/"+order.ID.String(), rr.Header().Get("Location"))
		assert.Equal(t, 2000.0, order.TotalAmount)
		require.Len(t, order.Items, 1)
		assert.Equal(t, 800.0, order.Items[0].TotalCost)

		reloaded := testutil.ReloadOpportunity(t, db, opp.ID)
		assert.Equal(t, 2000.0, reloaded.Value)
		assert.Equal(t, 1200.0, reloaded.GrossProfit)
	})

	t.Run("item errors are keyed by position", func(t *testing.T) {
		opp := testutil.CreateTestOpportunity(t, db, domain.StageProposal, 50)

		body := map[string]interface{}{
			"opportunityId": opp.ID,
			"items": []map[string]interface{}{
				{"productId": product.ID, "quantity": 0},
			},
		}
		rr := doJSON(t, api, http.MethodPost, "/api/orders", body, nil)
		require.Equal(t, http.StatusBadRequest, rr.Code)

		apiErr := decodeAPIError(t, rr)
		assert.Equal(t, domain.ErrorTypeValidation, apiErr.Type)
		assert.Contains(t, apiErr.Errors, "items[0].quantity")
		assert.Equal(t, int64(0), testutil.CountRows(t, db, &domain.Order{}, "opportunity_id = ?", opp.ID))
	})

	t.Run("closed opportunity rejects orders", func(t *testing.T) {
		opp := testutil.CreateTestOpportunity(t, db, domain.StageClosedWon, 100)

		body := map[string]interface{}{
			"opportunityId": opp.ID,
			"items": []map[string]interface{}{
				{"productId": product.ID, "quantity": 1},
			},
		}
		rr := doJSON(t, api, http.MethodPost, "/api/orders", body, nil)
		require.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, domain.ErrorTypeInvalidState, decodeAPIError(t, rr).Type)
		assert.Equal(t, int64(0), testutil.CountRows(t, db, &domain.Order{}, "opportunity_id = ?", opp.ID))
	})
}

func TestLeadHandler_Convert(t *testing.T) {
	api, db := setupAPI(t)
	lead := testutil.CreateTestLead(t, db, "webinar")

	rr := doJSON(t, api, http.MethodPost, "/api/leads/"+lead.ID.String()+"/convert",
		map[string]string{"name": "Navy Labs rollout"}, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var result domain.LeadConversionDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, "/api/opportunities/"+result.Opportunity.ID.String(), rr.Header().Get("Location"))
	require.NotNil(t, result.Opportunity.LeadID)
	assert.Equal(t, lead.ID, *result.Opportunity.LeadID)
	assert.Equal(t, domain.StageProspecting, result.Opportunity.Stage)
	assert.Equal(t, "webinar", result.Opportunity.LeadSource)

	rr = doJSON(t, api, http.MethodPost, "/api/leads/"+uuid.NewString()+"/convert",
		map[string]string{"name": "Ghost"}, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
