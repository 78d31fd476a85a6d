package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/veridian-estates/pipeline-api/internal/domain"
	"github.com/veridian-estates/pipeline-api/internal/repository"
	"go.uber.org/zap"
)

// followUpDedupWindow suppresses repeat reminders for the same lead
const followUpDedupWindow = 24 * time.Hour

// FollowUpService sweeps leads whose next call is due and reminds the
// current owner. It is driven by the background scheduler, not by requests.
type FollowUpService struct {
	leadRepo         *repository.LeadRepository
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

func NewFollowUpService(
	leadRepo *repository.LeadRepository,
	notificationRepo *repository.NotificationRepository,
	logger *zap.Logger,
) *FollowUpService {
	return &FollowUpService{
		leadRepo:         leadRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// SweepDueFollowUps notifies owners of leads whose next_call_at has passed.
// A lead is skipped when it has no owner or when its owner was already
// reminded within the dedup window. Returns notified and skipped counts.
func (s *FollowUpService) SweepDueFollowUps(ctx context.Context, before time.Time, limit int) (int, int, error) {
	leads, err := s.leadRepo.ListDueFollowUps(ctx, before, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list due follow-ups: %w", err)
	}

	notified := 0
	skipped := 0
	for i := range leads {
		lead := &leads[i]

		ownerID := lead.PresalesOwnerID
		if lead.IsQualified {
			ownerID = lead.SalesOwnerID
		}
		if ownerID == nil {
			skipped++
			continue
		}

		recent, err := s.notificationRepo.ExistsRecent(ctx, *ownerID, string(domain.NotificationFollowUpDue), lead.ID, before.Add(-followUpDedupWindow))
		if err != nil {
			s.logger.Warn("follow-up dedup check failed",
				zap.String("lead_id", lead.ID.String()),
				zap.Error(err),
			)
			skipped++
			continue
		}
		if recent {
			skipped++
			continue
		}

		notification := &domain.Notification{
			AgentID:    *ownerID,
			Type:       string(domain.NotificationFollowUpDue),
			Title:      "Follow-up call due",
			Message:    fmt.Sprintf("%s (%s)", lead.Name, lead.LeadNumber),
			EntityType: "lead",
			EntityID:   &lead.ID,
		}
		if err := s.notificationRepo.Create(ctx, notification); err != nil {
			s.logger.Warn("failed to create follow-up notification",
				zap.String("lead_id", lead.ID.String()),
				zap.String("agent_id", ownerID.String()),
				zap.Error(err),
			)
			skipped++
			continue
		}
		notified++
	}

	return notified, skipped, nil
}

// DueCountForAgent reports how many of an agent's leads are overdue.
// Used by the dashboard, not the sweep.
func (s *FollowUpService) DueCountForAgent(ctx context.Context, agentID uuid.UUID, before time.Time) (int, error) {
	leads, err := s.leadRepo.ListDueFollowUps(ctx, before, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to list due follow-ups: %w", err)
	}
	count := 0
	for i := range leads {
		lead := &leads[i]
		ownerID := lead.PresalesOwnerID
		if lead.IsQualified {
			ownerID = lead.SalesOwnerID
		}
		if ownerID != nil && *ownerID == agentID {
			count++
		}
	}
	return count, nil
}
