package service

import (
	"context"
	"fmt"

	"github.com/pipelinecrm/crm-api/internal/domain"
	"github.com/pipelinecrm/crm-api/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type DashboardService struct {
	accountRepo *repository.AccountRepository
	contactRepo *repository.ContactRepository
	leadRepo    *repository.LeadRepository
	oppRepo     *repository.OpportunityRepository
	logger      *zap.Logger
}

func NewDashboardService(
	accountRepo *repository.AccountRepository,
	contactRepo *repository.ContactRepository,
	leadRepo *repository.LeadRepository,
	oppRepo *repository.OpportunityRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		accountRepo: accountRepo,
		contactRepo: contactRepo,
		leadRepo:    leadRepo,
		oppRepo:     oppRepo,
		logger:      logger,
	}
}

// GetMetrics aggregates the pipeline. Pipeline and weighted values cover
// open stages only; win rate is won / (won + lost) as a percentage.
func (s *DashboardService) GetMetrics(ctx context.Context) (*domain.DashboardMetricsDTO, error) {
	totalAccounts, err := s.accountRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}
	totalContacts, err := s.contactRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count contacts: %w", err)
	}
	leadsByStatus, err := s.leadRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}
	aggregates, err := s.oppRepo.AggregateByStage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate opportunities: %w", err)
	}

	metrics := &domain.DashboardMetricsDTO{
		TotalAccounts: totalAccounts,
		TotalContacts: totalContacts,
		LeadsByStatus: leadsByStatus,
		Stages:        make([]domain.StageMetricsDTO, 0, len(domain.AllStages())),
	}
	for _, count := range leadsByStatus {
		metrics.TotalLeads += count
	}

	byStage := make(map[domain.OpportunityStage]repository.StageAggregate, len(aggregates))
	for _, agg := range aggregates {
		byStage[agg.Stage] = agg
	}

	pipeline, weighted := decimal.Zero, decimal.Zero
	for _, stage := range domain.AllStages() {
		agg := byStage[stage]
		value := decimal.NewFromFloat(agg.Value).Round(2)
		weightedValue := decimal.NewFromFloat(agg.WeightedValue).Round(2)

		metrics.Stages = append(metrics.Stages, domain.StageMetricsDTO{
			Stage:         stage,
			DisplayOrder:  stage.DisplayOrder(),
			Count:         agg.Count,
			Value:         value.InexactFloat64(),
			WeightedValue: weightedValue.InexactFloat64(),
		})

		switch stage {
		case domain.StageClosedWon:
			metrics.WonCount = agg.Count
			metrics.WonValue = value.InexactFloat64()
		case domain.StageClosedLost:
			metrics.LostCount = agg.Count
			metrics.LostValue = value.InexactFloat64()
		default:
			metrics.OpenOpportunities += agg.Count
			pipeline = pipeline.Add(value)
			weighted = weighted.Add(weightedValue)
		}
	}

	metrics.PipelineValue = pipeline.InexactFloat64()
	metrics.WeightedPipelineValue = weighted.InexactFloat64()
	if closed := metrics.WonCount + metrics.LostCount; closed > 0 {
		metrics.WinRate = decimal.NewFromInt(metrics.WonCount * 100).
			Div(decimal.NewFromInt(closed)).
			Round(2).
			InexactFloat64()
	}

	return metrics, nil
}
