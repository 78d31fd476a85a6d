package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/veridian-estates/pipeline-api/internal/domain"
	"gorm.io/gorm"
)

// CallLogRepository persists contact attempts against leads
type CallLogRepository struct {
	db *gorm.DB
}

func NewCallLogRepository(db *gorm.DB) *CallLogRepository {
	return &CallLogRepository{db: db}
}

func (r *CallLogRepository) Create(ctx context.Context, callLog *domain.CallLog) error {
	return r.db.WithContext(ctx).Create(callLog).Error
}

func (r *CallLogRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CallLog, error) {
	var callLog domain.CallLog
	err := r.db.WithContext(ctx).
		Preload("Agent").
		First(&callLog, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &callLog, nil
}

func (r *CallLogRepository) ListByLead(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.CallLog, error) {
	var logs []domain.CallLog
	if limit <= 0 {
		limit = 50
	}
	err := r.db.WithContext(ctx).
		Preload("Agent").
		Where("lead_id = ?", leadID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *CallLogRepository) CountByAgent(ctx context.Context, agentID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.CallLog{}).
		Where("agent_id = ?", agentID).
		Count(&count).Error
	return count, err
}
