package domain

import (
	"strings"
)

// OpportunityStage represents the pipeline stage of an opportunity
type OpportunityStage string

const (
	StageProspecting   OpportunityStage = "prospecting"
	StageQualification OpportunityStage = "qualification"
	StageProposal      OpportunityStage = "proposal"
	StageNegotiation   OpportunityStage = "negotiation"
	StageClosedWon     OpportunityStage = "closed-won"
	StageClosedLost    OpportunityStage = "closed-lost"
)

var stages = []OpportunityStage{
	StageProspecting,
	StageQualification,
	StageProposal,
	StageNegotiation,
	StageClosedWon,
	StageClosedLost,
}

// DefaultStageProbabilities is applied when a caller does not supply a probability
var DefaultStageProbabilities = map[OpportunityStage]int{
	StageProspecting:   10,
	StageQualification: 25,
	StageProposal:      50,
	StageNegotiation:   75,
	StageClosedWon:     100,
	StageClosedLost:    0,
}

// AllStages returns the stages in display order
func AllStages() []OpportunityStage {
	out := make([]OpportunityStage, len(stages))
	copy(out, stages)
	return out
}

// IsValid checks if the OpportunityStage is a valid enum value
func (s OpportunityStage) IsValid() bool {
	return s.DisplayOrder() > 0
}

// IsTerminal reports whether the stage is closed-won or closed-lost
func (s OpportunityStage) IsTerminal() bool {
	return s == StageClosedWon || s == StageClosedLost
}

// DisplayOrder numbers stages 1-6. It carries no ordering constraint on transitions.
func (s OpportunityStage) DisplayOrder() int {
	for i, stage := range stages {
		if stage == s {
			return i + 1
		}
	}
	return 0
}

// ValidateStageTransition checks a transition before anything is written.
// A closed source stage is rejected before the target is looked at.
// Any non-terminal stage may move to any other stage, including backwards.
func ValidateStageTransition(from, to OpportunityStage, reason string) error {
	if from.IsTerminal() {
		return ErrStageClosed
	}
	if !to.IsValid() {
		return NewValidationError("stage", "must be one of prospecting, qualification, proposal, negotiation, closed-won, closed-lost")
	}
	if from == to {
		return ErrStageUnchanged
	}
	if strings.TrimSpace(reason) == "" {
		return NewValidationError("reason", ErrStageReasonRequired.Error()).WithCause(ErrStageReasonRequired)
	}
	return nil
}

// ValidateProbability rejects a caller-supplied probability outside 0-100.
// A nil probability means the stage default applies.
func ValidateProbability(probability *int) error {
	if probability != nil && (*probability < 0 || *probability > 100) {
		return NewValidationError("probability", "must be between 0 and 100")
	}
	return nil
}

// IsClosed reports whether the opportunity is in a terminal stage
func (o *Opportunity) IsClosed() bool {
	return o.Stage.IsTerminal()
}

// EnsureMutable rejects any mutation of a closed opportunity or its orders
func (o *Opportunity) EnsureMutable() error {
	if o.IsClosed() {
		return ErrOpportunityClosed
	}
	return nil
}
