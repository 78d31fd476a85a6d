package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/veridian-estates/pipeline-api/internal/domain"
	"gorm.io/gorm"
)

// ReferenceRepository serves the read-mostly reference tables: centres,
// languages, lead sources and the polymorphic status enumeration.
type ReferenceRepository struct {
	db *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) ListCentres(ctx context.Context) ([]domain.Centre, error) {
	var centres []domain.Centre
	err := r.db.WithContext(ctx).Order("name ASC").Find(&centres).Error
	return centres, err
}

func (r *ReferenceRepository) GetCentre(ctx context.Context, id uuid.UUID) (*domain.Centre, error) {
	var centre domain.Centre
	if err := r.db.WithContext(ctx).First(&centre, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &centre, nil
}

func (r *ReferenceRepository) FindCentreByCode(ctx context.Context, code string) (*domain.Centre, error) {
	var centre domain.Centre
	if err := r.db.WithContext(ctx).First(&centre, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &centre, nil
}

func (r *ReferenceRepository) ListLanguages(ctx context.Context) ([]domain.Language, error) {
	var languages []domain.Language
	err := r.db.WithContext(ctx).Order("name ASC").Find(&languages).Error
	return languages, err
}

func (r *ReferenceRepository) GetLanguage(ctx context.Context, id uuid.UUID) (*domain.Language, error) {
	var language domain.Language
	if err := r.db.WithContext(ctx).First(&language, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &language, nil
}

func (r *ReferenceRepository) FindLanguageByCode(ctx context.Context, code string) (*domain.Language, error) {
	var language domain.Language
	if err := r.db.WithContext(ctx).First(&language, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &language, nil
}

func (r *ReferenceRepository) ListLeadSources(ctx context.Context) ([]domain.LeadSource, error) {
	var sources []domain.LeadSource
	err := r.db.WithContext(ctx).Order("name ASC").Find(&sources).Error
	return sources, err
}

func (r *ReferenceRepository) FindLeadSourceBySlug(ctx context.Context, slug string) (*domain.LeadSource, error) {
	var source domain.LeadSource
	if err := r.db.WithContext(ctx).First(&source, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &source, nil
}

// FindStatus looks a status record up by its type and semantic slug
func (r *ReferenceRepository) FindStatus(ctx context.Context, statusType, slug string) (*domain.Status, error) {
	var status domain.Status
	err := r.db.WithContext(ctx).
		First(&status, "type = ? AND slug = ?", statusType, slug).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *ReferenceRepository) ListStatuses(ctx context.Context, statusType string) ([]domain.Status, error) {
	var statuses []domain.Status
	query := r.db.WithContext(ctx)
	if statusType != "" {
		query = query.Where("type = ?", statusType)
	}
	err := query.Order("type ASC, slug ASC").Find(&statuses).Error
	return statuses, err
}
