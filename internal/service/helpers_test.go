package service_test

import (
	"testing"

	"github.com/pipelinecrm/crm-api/internal/repository"
	"github.com/pipelinecrm/crm-api/internal/service"
	"github.com/pipelinecrm/crm-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testServices struct {
	db            *gorm.DB
	opportunities *service.OpportunityService
	orders        *service.OrderService
	leads         *service.LeadService
	products      *service.ProductService
	contacts      *service.ContactService
	accounts      *service.AccountService
	activities    *service.ActivityService
	notes         *service.NoteService
	users         *service.UserService
	dashboard     *service.DashboardService
	numbers       *service.NumberSequenceService
}

func setupServices(t *testing.T) *testServices {
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
	noteRepo := repository.NewNoteRepository(db)
	seqRepo := repository.NewNumberSequenceRepository(db)

	locks := service.NewOpportunityLocks()
	numbers := service.NewNumberSequenceService(seqRepo, orderRepo, logger)

	return &testServices{
		db:            db,
		opportunities: service.NewOpportunityService(oppRepo, orderRepo, logRepo, activityRepo, accountRepo, contactRepo, leadRepo, userRepo, locks, logger, db),
		orders:        service.NewOrderService(orderRepo, itemRepo, productRepo, oppRepo, numbers, locks, logger, db),
		leads:         service.NewLeadService(leadRepo, oppRepo, accountRepo, contactRepo, activityRepo, userRepo, logger, db),
		products:      service.NewProductService(productRepo, itemRepo, logger),
		contacts:      service.NewContactService(contactRepo, accountRepo, userRepo, logger),
		accounts:      service.NewAccountService(accountRepo, userRepo, logger),
		activities:    service.NewActivityService(activityRepo, oppRepo, leadRepo, userRepo, logger),
		notes:         service.NewNoteService(noteRepo, userRepo, logger),
		users:         service.NewUserService(userRepo, logger),
		dashboard:     service.NewDashboardService(accountRepo, contactRepo, leadRepo, oppRepo, logger),
		numbers:       numbers,
	}
}

func ptr[T any](v T) *T {
	return &v
}
