package service

import (
	"context"
	"fmt"
	"time"

	"github.com/veridian-estates/pipeline-api/internal/domain"
	"github.com/veridian-estates/pipeline-api/internal/repository"
	"go.uber.org/zap"
)

// AssignmentService is the round-robin assignment engine. It selects the
// least-recently-assigned eligible agent for a team and advances that
// agent's rotation cursor.
//
// Two concurrent selections for the same team and filters may read the same
// head of the rotation before either cursor write lands. The resulting skew
// is accepted: the cursor guarantees long-run fairness, not mutual
// exclusion, and the imbalance self-corrects over subsequent assignments.
type AssignmentService struct {
	agentRepo *repository.AgentRepository
	logger    *zap.Logger
	now       func() time.Time
}

func NewAssignmentService(agentRepo *repository.AgentRepository, logger *zap.Logger) *AssignmentService {
	return &AssignmentService{
		agentRepo: agentRepo,
		logger:    logger,
		now:       time.Now,
	}
}

// SelectAgent picks the next agent in rotation for the team, constrained by
// the filters. Returns NoEligibleAgentError when no active agent matches.
// On success the selected agent's cursor is moved to now, cycling the agent
// to the back of the queue.
func (s *AssignmentService) SelectAgent(ctx context.Context, team domain.Team, filters *repository.AgentFilters) (*domain.Agent, error) {
	if !team.IsValid() {
		return nil, fmt.Errorf("%w: unknown team %q", ErrValidation, team)
	}

	candidates, err := s.agentRepo.FindAgents(ctx, team, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible agents: %w", err)
	}

	if len(candidates) == 0 {
		f := repository.AgentFilters{}
		if filters != nil {
			f = *filters
		}
		return nil, &NoEligibleAgentError{Team: team, Filters: f}
	}

	selected := candidates[0]

	if err := s.agentRepo.TouchAssignment(ctx, selected.ID, s.now()); err != nil {
		return nil, fmt.Errorf("failed to advance rotation cursor: %w", err)
	}

	s.logger.Info("agent selected",
		zap.String("agent_id", selected.ID.String()),
		zap.String("agent_name", selected.Name),
		zap.String("team", string(team)),
		zap.Int("candidates", len(candidates)),
	)

	return &selected, nil
}
