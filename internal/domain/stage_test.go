package domain_test

import (
	"errors"
	"testing"

	"github.com/pipelinecrm/crm-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpportunityStage_IsValid(t *testing.T) {
	for _, stage := range domain.AllStages() {
		assert.True(t, stage.IsValid(), stage)
	}
	assert.False(t, domain.OpportunityStage("won").IsValid())
	assert.False(t, domain.OpportunityStage("").IsValid())
}

func TestOpportunityStage_DisplayOrder(t *testing.T) {
	tests := []struct {
		stage domain.OpportunityStage
		order int
	}{
		{domain.StageProspecting, 1},
		{domain.StageQualification, 2},
		{domain.StageProposal, 3},
		{domain.StageNegotiation, 4},
		{domain.StageClosedWon, 5},
		{domain.StageClosedLost, 6},
		{domain.OpportunityStage("unknown"), 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			assert.Equal(t, tt.order, tt.stage.DisplayOrder())
		})
	}
}

func TestOpportunityStage_IsTerminal(t *testing.T) {
	assert.True(t, domain.StageClosedWon.IsTerminal())
	assert.True(t, domain.StageClosedLost.IsTerminal())
	assert.False(t, domain.StageProspecting.IsTerminal())
	assert.False(t, domain.StageNegotiation.IsTerminal())
}

func TestValidateStageTransition(t *testing.T) {
	t.Run("any open stage may move to any other stage", func(t *testing.T) {
		for _, from := range domain.AllStages() {
			if from.IsTerminal() {
				continue
			}
			for _, to := range domain.AllStages() {
				if to == from {
					continue
				}
				assert.NoError(t, domain.ValidateStageTransition(from, to, "moving on"), "%s -> %s", from, to)
			}
		}
	})

	t.Run("regression is allowed", func(t *testing.T) {
		assert.NoError(t, domain.ValidateStageTransition(domain.StageNegotiation, domain.StageProspecting, "budget frozen"))
	})

	t.Run("terminal stages are absorbing", func(t *testing.T) {
		for _, from := range []domain.OpportunityStage{domain.StageClosedWon, domain.StageClosedLost} {
			err := domain.ValidateStageTransition(from, domain.StageNegotiation, "reopen")
			assert.ErrorIs(t, err, domain.ErrStageClosed)
			assert.ErrorIs(t, err, domain.ErrInvalidState)
			assert.Equal(t, "cannot change stage of closed opportunity", err.Error())

			err = domain.ValidateStageTransition(from, domain.OpportunityStage("bogus"), "reopen")
			assert.ErrorIs(t, err, domain.ErrStageClosed)
			assert.ErrorIs(t, err, domain.ErrInvalidState)
			assert.False(t, errors.Is(err, domain.ErrValidation))
		}
	})

	t.Run("same stage is rejected", func(t *testing.T) {
		err := domain.ValidateStageTransition(domain.StageProposal, domain.StageProposal, "again")
		assert.ErrorIs(t, err, domain.ErrStageUnchanged)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("blank reason is a validation error", func(t *testing.T) {
		err := domain.ValidateStageTransition(domain.StageProspecting, domain.StageProposal, "   ")
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.ErrorIs(t, err, domain.ErrStageReasonRequired)
		assert.ErrorIs(t, err, domain.ErrInvalidState)

		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Errors, "reason")
	})

	t.Run("unknown target stage is a validation error", func(t *testing.T) {
		err := domain.ValidateStageTransition(domain.StageProspecting, domain.OpportunityStage("won"), "yes")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestOpportunity_EnsureMutable(t *testing.T) {
	open := &domain.Opportunity{Stage: domain.StageNegotiation}
	assert.NoError(t, open.EnsureMutable())

	won := &domain.Opportunity{Stage: domain.StageClosedWon}
	err := won.EnsureMutable()
	assert.ErrorIs(t, err, domain.ErrOpportunityClosed)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, "read-only: opportunity closed", err.Error())
}

func TestValidateProbability(t *testing.T) {
	tests := []struct {
		name        string
		probability *int
		wantErr     bool
	}{
		{"stage default", nil, false},
		{"lower bound", intPtr(0), false},
		{"upper bound", intPtr(100), false},
		{"negative", intPtr(-1), true},
		{"above hundred", intPtr(150), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.ValidateProbability(tt.probability)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Errors, "probability")
		})
	}
}

func intPtr(v int) *int {
	return &v
}
