package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/veridian-estates/pipeline-api/internal/domain"
	"gorm.io/gorm"
)

// LeadActivityRepository handles the append-only audit trail.
// Rows are inserted and read, never updated or deleted.
//
// Recommended index: (lead_id, created_at DESC) for the workflow view.
type LeadActivityRepository struct {
	db *gorm.DB
}

func NewLeadActivityRepository(db *gorm.DB) *LeadActivityRepository {
	return &LeadActivityRepository{db: db}
}

// Append inserts a new audit entry
func (r *LeadActivityRepository) Append(ctx context.Context, entry *domain.LeadActivity) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByLead returns the newest entries for a lead, creation time descending
func (r *LeadActivityRepository) ListByLead(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.LeadActivity, error) {
	var entries []domain.LeadActivity
	if limit <= 0 {
		limit = 10
	}
	err := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *LeadActivityRepository) CountByLead(ctx context.Context, leadID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.LeadActivity{}).
		Where("lead_id = ?", leadID).
		Count(&count).Error
	return count, err
}
