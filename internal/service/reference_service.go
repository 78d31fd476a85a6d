package service

import (
	"context"
	"fmt"

	"github.com/veridian-estates/pipeline-api/internal/domain"
	"github.com/veridian-estates/pipeline-api/internal/mapper"
	"github.com/veridian-estates/pipeline-api/internal/repository"
)

// ReferenceService serves the read-only lookup tables backing intake forms
type ReferenceService struct {
	refRepo *repository.ReferenceRepository
}

func NewReferenceService(refRepo *repository.ReferenceRepository) *ReferenceService {
	return &ReferenceService{refRepo: refRepo}
}

func (s *ReferenceService) ListCentres(ctx context.Context) ([]domain.CentreDTO, error) {
	centres, err := s.refRepo.ListCentres(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list centres: %w", err)
	}
	dtos := make([]domain.CentreDTO, len(centres))
	for i := range centres {
		dtos[i] = mapper.ToCentreDTO(&centres[i])
	}
	return dtos, nil
}

func (s *ReferenceService) ListLanguages(ctx context.Context) ([]domain.LanguageDTO, error) {
	languages, err := s.refRepo.ListLanguages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list languages: %w", err)
	}
	dtos := make([]domain.LanguageDTO, len(languages))
	for i := range languages {
		dtos[i] = mapper.ToLanguageDTO(&languages[i])
	}
	return dtos, nil
}

func (s *ReferenceService) ListLeadSources(ctx context.Context) ([]domain.LeadSourceDTO, error) {
	sources, err := s.refRepo.ListLeadSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lead sources: %w", err)
	}
	dtos := make([]domain.LeadSourceDTO, len(sources))
	for i := range sources {
		dtos[i] = mapper.ToLeadSourceDTO(&sources[i])
	}
	return dtos, nil
}

func (s *ReferenceService) ListStatuses(ctx context.Context, statusType string) ([]domain.StatusDTO, error) {
	statuses, err := s.refRepo.ListStatuses(ctx, statusType)
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}
	dtos := make([]domain.StatusDTO, len(statuses))
	for i := range statuses {
		dtos[i] = mapper.ToStatusDTO(&statuses[i])
	}
	return dtos, nil
}
