package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/veridian-estates/pipeline-api/internal/domain"
	"gorm.io/gorm"
)

// LeadRepository handles database operations for leads
type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

func (r *LeadRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	var lead domain.Lead
	err := r.db.WithContext(ctx).
		Preload("Source").
		Preload("Language").
		Preload("Centre").
		Preload("PresalesOwner").
		Preload("SalesOwner").
		First(&lead, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// UpdateFields applies a partial update as a single atomic write so readers
// never observe a half-transitioned lead (e.g. status changed but owner not
// yet cleared).
func (r *LeadRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *LeadRepository) List(ctx context.Context, filter *domain.ListLeadsFilter) ([]domain.Lead, int64, error) {
	var leads []domain.Lead
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Lead{})
	query = r.applyFilters(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	err := query.
		Preload("Source").
		Preload("PresalesOwner").
		Preload("SalesOwner").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&leads).Error

	return leads, total, err
}

func (r *LeadRepository) applyFilters(query *gorm.DB, filter *domain.ListLeadsFilter) *gorm.DB {
	if filter == nil {
		return query
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Substatus != nil {
		query = query.Where("substatus = ?", *filter.Substatus)
	}
	if filter.CentreID != nil {
		query = query.Where("centre_id = ?", *filter.CentreID)
	}
	if filter.OwnerID != nil {
		query = query.Where("presales_owner_id = ? OR sales_owner_id = ?", *filter.OwnerID, *filter.OwnerID)
	}
	if filter.Unassigned {
		query = query.Where("presales_owner_id IS NULL AND sales_owner_id IS NULL")
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR phone LIKE ? OR lead_number LIKE ?", like, like, like, like)
	}
	return query
}

// ListUnassigned returns leads without any owner, oldest first. Qualified
// leads land here when no sales agent was eligible at handoff time.
func (r *LeadRepository) ListUnassigned(ctx context.Context, limit int) ([]domain.Lead, error) {
	var leads []domain.Lead
	if limit <= 0 {
		limit = 100
	}
	err := r.db.WithContext(ctx).
		Where("presales_owner_id IS NULL AND sales_owner_id IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&leads).Error
	return leads, err
}

// ListDueFollowUps returns non-terminal leads whose next call is due
func (r *LeadRepository) ListDueFollowUps(ctx context.Context, before time.Time, limit int) ([]domain.Lead, error) {
	var leads []domain.Lead
	if limit <= 0 {
		limit = 200
	}
	err := r.db.WithContext(ctx).
		Where("next_call_at IS NOT NULL AND next_call_at <= ?", before).
		Where("status NOT IN ?", []domain.LeadStatus{domain.LeadStatusWon, domain.LeadStatusLost}).
		Order("next_call_at ASC").
		Limit(limit).
		Find(&leads).Error
	return leads, err
}

func (r *LeadRepository) CountByStatus(ctx context.Context, status domain.LeadStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *LeadRepository) FindByPhone(ctx context.Context, phone string) (*domain.Lead, error) {
	var lead domain.Lead
	err := r.db.WithContext(ctx).First(&lead, "phone = ?", phone).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// Delete soft-deletes a lead; rows are never hard-deleted
func (r *LeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Lead{}, "id = ?", id).Error
}
