package service

import (
	"context"
	"fmt"
	"time"

	"github.com/veridian-estates/pipeline-api/internal/repository"
	"go.uber.org/zap"
)

// leadNumberPrefix is the prefix for all generated lead numbers
const leadNumberPrefix = "LD"

// LeadNumberService generates unique, human-readable lead numbers.
//
// Format: {PREFIX}-{YEAR}-{SEQUENCE}
// Example: LD-2026-0042
type LeadNumberService struct {
	repo   *repository.NumberSequenceRepository
	logger *zap.Logger
}

func NewLeadNumberService(repo *repository.NumberSequenceRepository, logger *zap.Logger) *LeadNumberService {
	return &LeadNumberService{
		repo:   repo,
		logger: logger,
	}
}

// Generate issues the next lead number for the current year. The underlying
// sequence increment is atomic, so concurrent intake never shares a number.
func (s *LeadNumberService) Generate(ctx context.Context) (string, error) {
	year := time.Now().Year()

	nextSeq, err := s.repo.GetNextNumber(ctx, leadNumberPrefix, year)
	if err != nil {
		s.logger.Error("failed to get next sequence number",
			zap.String("prefix", leadNumberPrefix),
			zap.Int("year", year),
			zap.Error(err))
		return "", fmt.Errorf("failed to generate lead number: %w", err)
	}

	number := fmt.Sprintf("%s-%d-%04d", leadNumberPrefix, year, nextSeq)

	s.logger.Debug("generated lead number",
		zap.String("number", number),
		zap.Int("sequence", nextSeq))

	return number, nil
}

// GetCurrentSequence returns the last issued sequence for a year without
// incrementing it. Returns 0 when nothing has been issued yet.
func (s *LeadNumberService) GetCurrentSequence(ctx context.Context, year int) (int, error) {
	return s.repo.GetCurrentSequence(ctx, leadNumberPrefix, year)
}

// InitializeSequence sets the sequence for a year, used by data migrations
// to account for numbers issued by the previous system.
func (s *LeadNumberService) InitializeSequence(ctx context.Context, year int, value int) error {
	return s.repo.SetSequence(ctx, leadNumberPrefix, year, value)
}
