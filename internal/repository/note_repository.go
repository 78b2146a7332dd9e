package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pipelinecrm/crm-api/internal/domain"
	"gorm.io/gorm"
)

// NoteFilters selects notes attached to a given entity
type NoteFilters struct {
	LeadID        *uuid.UUID
	OpportunityID *uuid.UUID
	AccountID     *uuid.UUID
	ContactID     *uuid.UUID
}

type NoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Create(ctx context.Context, note *domain.Note) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *NoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Note, error) {
	var note domain.Note
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&note).Error
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *NoteRepository) Update(ctx context.Context, note *domain.Note) error {
	return r.db.WithContext(ctx).Save(note).Error
}

func (r *NoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Note{}, "id = ?", id).Error
}

// List returns notes newest first, narrowed by any filters given
func (r *NoteRepository) List(ctx context.Context, filters NoteFilters) ([]domain.Note, error) {
	var notes []domain.Note

	query := r.db.WithContext(ctx).Model(&domain.Note{})
	if filters.LeadID != nil {
		query = query.Where("lead_id = ?", *filters.LeadID)
	}
	if filters.OpportunityID != nil {
		query = query.Where("opportunity_id = ?", *filters.OpportunityID)
	}
	if filters.AccountID != nil {
		query = query.Where("account_id = ?", *filters.AccountID)
	}
	if filters.ContactID != nil {
		query = query.Where("contact_id = ?", *filters.ContactID)
	}

	err := query.Order("created_at DESC").Find(&notes).Error
	return notes, err
}
