package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/veridian-estates/pipeline-api/internal/domain"
	"github.com/veridian-estates/pipeline-api/internal/repository"
	"go.uber.org/zap"
)

// ActivityChange captures the lead fields a workflow mutation touched.
// Nil fields were not part of the change.
type ActivityChange struct {
	Status           *domain.LeadStatus
	Substatus        *domain.LeadSubstatus
	OwnerTeam        *domain.Team
	OwnerName        *string
	CentreName       *string
	LanguageName     *string
	ValueTier        *domain.ValueTier
	SiteVisit        bool
	MeetingScheduled bool
}

// ActivityRecorder appends audit entries to the lead activity trail.
// Every entry snapshots the lead identity fields and the changed fields at
// the moment of the call; the trail is a point-in-time record, not a live
// view of the lead.
//
// A failed append must never fail the business operation that triggered it.
// Errors are logged and swallowed here, nowhere else.
type ActivityRecorder struct {
	activityRepo *repository.LeadActivityRepository
	logger       *zap.Logger
}

func NewActivityRecorder(activityRepo *repository.LeadActivityRepository, logger *zap.Logger) *ActivityRecorder {
	return &ActivityRecorder{
		activityRepo: activityRepo,
		logger:       logger,
	}
}

// Record appends one audit entry. Returns the entry, or nil when the write
// failed; the failure is logged, not propagated.
func (r *ActivityRecorder) Record(ctx context.Context, lead *domain.Lead, actorID *uuid.UUID, actorName, note string, change *ActivityChange) *domain.LeadActivity {
	entry := &domain.LeadActivity{
		LeadID:    lead.ID,
		ActorID:   actorID,
		ActorName: actorName,
		Note:      note,
		LeadName:  lead.Name,
		LeadEmail: lead.Email,
		LeadPhone: lead.Phone,
	}
	if lead.Source != nil {
		entry.SourceName = lead.Source.Name
	}

	if change != nil {
		entry.Status = change.Status
		entry.Substatus = change.Substatus
		entry.OwnerTeam = change.OwnerTeam
		entry.OwnerName = change.OwnerName
		entry.CentreName = change.CentreName
		entry.LanguageName = change.LanguageName
		entry.ValueTier = change.ValueTier
		entry.SiteVisit = change.SiteVisit
		entry.MeetingScheduled = change.MeetingScheduled
	}

	if err := r.activityRepo.Append(ctx, entry); err != nil {
		r.logger.Warn("failed to append lead activity",
			zap.String("lead_id", lead.ID.String()),
			zap.String("note", note),
			zap.Error(err),
		)
		return nil
	}

	return entry
}

// ListForLead returns the newest audit entries for a lead
func (r *ActivityRecorder) ListForLead(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.LeadActivity, error) {
	return r.activityRepo.ListByLead(ctx, leadID, limit)
}
