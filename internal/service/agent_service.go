package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/veridian-estates/pipeline-api/internal/domain"
	"github.com/veridian-estates/pipeline-api/internal/mapper"
	"github.com/veridian-estates/pipeline-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AgentService exposes the agent directory. Assignment itself lives in
// AssignmentService; this service only reads and toggles eligibility.
type AgentService struct {
	agentRepo *repository.AgentRepository
	logger    *zap.Logger
}

func NewAgentService(agentRepo *repository.AgentRepository, logger *zap.Logger) *AgentService {
	return &AgentService{
		agentRepo: agentRepo,
		logger:    logger,
	}
}

// List returns agents, optionally narrowed to one team
func (s *AgentService) List(ctx context.Context, team *domain.Team) ([]domain.AgentDTO, error) {
	if team != nil && !team.IsValid() {
		return nil, fmt.Errorf("%w: unknown team %q", ErrValidation, *team)
	}

	agents, err := s.agentRepo.List(ctx, team)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}

	dtos := make([]domain.AgentDTO, len(agents))
	for i := range agents {
		dtos[i] = mapper.ToAgentDTO(&agents[i])
	}
	return dtos, nil
}

// GetByID returns a single agent
func (s *AgentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.AgentDTO, error) {
	agent, err := s.agentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("agent %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load agent: %w", err)
	}
	dto := mapper.ToAgentDTO(agent)
	return &dto, nil
}

// SetActive toggles an agent in or out of the assignment rotation.
// Deactivation does not touch leads the agent already owns.
func (s *AgentService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.AgentDTO, error) {
	if err := s.agentRepo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("agent %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update agent: %w", err)
	}

	s.logger.Info("agent availability changed",
		zap.String("agent_id", id.String()),
		zap.Bool("active", active),
	)

	return s.GetByID(ctx, id)
}
