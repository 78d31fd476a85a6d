package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/veridian-estates/pipeline-api/internal/domain"
	"gorm.io/gorm"
)

// ImportJobRepository tracks bulk lead import runs
type ImportJobRepository struct {
	db *gorm.DB
}

func NewImportJobRepository(db *gorm.DB) *ImportJobRepository {
	return &ImportJobRepository{db: db}
}

func (r *ImportJobRepository) Create(ctx context.Context, job *domain.ImportJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *ImportJobRepository) Update(ctx context.Context, job *domain.ImportJob) error {
	return r.db.WithContext(ctx).Save(job).Error
}

func (r *ImportJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ImportJob, error) {
	var job domain.ImportJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *ImportJobRepository) List(ctx context.Context, limit int) ([]domain.ImportJob, error) {
	var jobs []domain.ImportJob
	if limit <= 0 {
		limit = 50
	}
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}
