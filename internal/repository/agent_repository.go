package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/veridian-estates/pipeline-api/internal/domain"
	"gorm.io/gorm"
)

// AgentFilters narrows the eligible candidate set for an assignment
type AgentFilters struct {
	CentreID   *uuid.UUID
	LanguageID *uuid.UUID
	ValueTier  *domain.ValueTier
}

// AgentRepository is the directory of human agents. FindAgents and
// TouchAssignment together implement the round-robin rotation storage:
// candidates come back ordered by cursor, and the selected agent's cursor
// is bumped so it cycles to the back of the queue.
type AgentRepository struct {
	db *gorm.DB
}

func NewAgentRepository(db *gorm.DB) *AgentRepository {
	return &AgentRepository{db: db}
}

func (r *AgentRepository) Create(ctx context.Context, agent *domain.Agent) error {
	return r.db.WithContext(ctx).Create(agent).Error
}

func (r *AgentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	var agent domain.Agent
	err := r.db.WithContext(ctx).
		Preload("Centre").
		Preload("Languages").
		First(&agent, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

// FindAgents returns active agents of the team matching the filters,
// ordered ascending by rotation cursor. Agents seeded with an identical
// cursor tie-break on id so the rotation stays deterministic.
func (r *AgentRepository) FindAgents(ctx context.Context, team domain.Team, filters *AgentFilters) ([]domain.Agent, error) {
	var agents []domain.Agent

	query := r.db.WithContext(ctx).
		Model(&domain.Agent{}).
		Where("agents.team = ? AND agents.active = ?", team, true)

	if filters != nil {
		if filters.CentreID != nil {
			query = query.Where("agents.centre_id = ?", *filters.CentreID)
		}
		if filters.ValueTier != nil {
			query = query.Where("agents.value_tier = ?", *filters.ValueTier)
		}
		if filters.LanguageID != nil {
			query = query.
				Joins("JOIN agent_languages ON agent_languages.agent_id = agents.id").
				Where("agent_languages.language_id = ?", *filters.LanguageID)
		}
	}

	err := query.
		Order("agents.last_assigned_at ASC, agents.id ASC").
		Find(&agents).Error
	return agents, err
}

// TouchAssignment moves the agent's rotation cursor to the given time.
// This is the only write path for last_assigned_at.
func (r *AgentRepository) TouchAssignment(ctx context.Context, agentID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.Agent{}).
		Where("id = ?", agentID).
		Update("last_assigned_at", at).Error
}

func (r *AgentRepository) List(ctx context.Context, team *domain.Team) ([]domain.Agent, error) {
	var agents []domain.Agent
	query := r.db.WithContext(ctx).
		Preload("Centre").
		Preload("Languages")
	if team != nil {
		query = query.Where("team = ?", *team)
	}
	err := query.Order("name ASC").Find(&agents).Error
	return agents, err
}

func (r *AgentRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Agent{}).
		Where("id = ?", id).
		Update("active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
