package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/veridian-estates/pipeline-api/internal/auth"
	"github.com/veridian-estates/pipeline-api/internal/domain"
	"github.com/veridian-estates/pipeline-api/internal/mapper"
	"github.com/veridian-estates/pipeline-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Status transition rules: defines valid transitions between lead statuses.
// won and lost are terminal.
var validStatusTransitions = map[domain.LeadStatus][]domain.LeadStatus{
	domain.LeadStatusLead:      {domain.LeadStatusQualified, domain.LeadStatusLost},
	domain.LeadStatusQualified: {domain.LeadStatusWon, domain.LeadStatusLost},
	domain.LeadStatusWon:       {},
	domain.LeadStatusLost:      {},
}

func isValidTransition(from, to domain.LeadStatus) bool {
	for _, allowed := range validStatusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// LegacyCRMLookup checks whether a lead already existed in the retired CRM.
// Implemented by the legacycrm client; optional.
type LegacyCRMLookup interface {
	LeadExistsByPhone(ctx context.Context, phone string) (bool, error)
}

// WorkflowService is the workflow facade and state machine. All lead
// mutations go through it: intake, call outcomes, qualification, language
// comfort and soft deletion. Each operation validates its preconditions,
// applies the status effect as a single atomic lead update, delegates
// (re)ownership to the assignment engine and appends one audit entry.
//
// Transition attempts whose precondition fails are a no-op on status and
// substatus, never an error; partial and legacy data is expected.
type WorkflowService struct {
	leadRepo      *repository.LeadRepository
	agentRepo     *repository.AgentRepository
	callLogRepo   *repository.CallLogRepository
	refRepo       *repository.ReferenceRepository
	assignment    *AssignmentService
	recorder      *ActivityRecorder
	leadNumbers   *LeadNumberService
	notifications *NotificationService
	legacyCRM     LegacyCRMLookup
	logger        *zap.Logger
	db            *gorm.DB
}

func NewWorkflowService(
	leadRepo *repository.LeadRepository,
	agentRepo *repository.AgentRepository,
	callLogRepo *repository.CallLogRepository,
	refRepo *repository.ReferenceRepository,
	assignment *AssignmentService,
	recorder *ActivityRecorder,
	leadNumbers *LeadNumberService,
	notifications *NotificationService,
	logger *zap.Logger,
	db *gorm.DB,
) *WorkflowService {
	return &WorkflowService{
		leadRepo:      leadRepo,
		agentRepo:     agentRepo,
		callLogRepo:   callLogRepo,
		refRepo:       refRepo,
		assignment:    assignment,
		recorder:      recorder,
		leadNumbers:   leadNumbers,
		notifications: notifications,
		logger:        logger,
		db:            db,
	}
}

// SetLegacyCRMClient injects the optional legacy CRM duplicate lookup
func (s *WorkflowService) SetLegacyCRMClient(client LegacyCRMLookup) {
	s.legacyCRM = client
}

// CreateAndAssign creates a lead with status "lead" and routes it to the
// next pre-sales agent in rotation, or directly to sales when the intake
// explicitly targets the sales team. When no agent is eligible the lead is
// created unowned and surfaces in the unassigned queue.
func (s *WorkflowService) CreateAndAssign(ctx context.Context, req *domain.CreateLeadRequest, channel domain.IntakeChannel) (*domain.LeadDTO, error) {
	team := req.TargetTeam
	if team == "" {
		team = domain.TeamPresales
	}
	if !team.IsValid() {
		return nil, fmt.Errorf("%w: unknown team %q", ErrValidation, team)
	}

	leadNumber, err := s.leadNumbers.Generate(ctx)
	if err != nil {
		return nil, err
	}

	lead := &domain.Lead{
		LeadNumber:    leadNumber,
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		SourceID:      req.SourceID,
		Status:        domain.LeadStatusLead,
		LanguageID:    req.LanguageID,
		CentreID:      req.CentreID,
		ValueTier:     req.ValueTier,
		IntakeChannel: channel,
		Notes:         req.Notes,
	}

	filters := &repository.AgentFilters{
		CentreID:   req.CentreID,
		LanguageID: req.LanguageID,
	}
	if team == domain.TeamSales {
		filters.ValueTier = req.ValueTier
	}

	agent, err := s.assignment.SelectAgent(ctx, team, filters)
	if err != nil {
		if !IsNoEligibleAgent(err) {
			return nil, err
		}
		s.logger.Warn("lead created unassigned", zap.String("reason", err.Error()))
	}

	if agent != nil {
		if team == domain.TeamSales {
			lead.SalesOwnerID = &agent.ID
		} else {
			lead.PresalesOwnerID = &agent.ID
		}
	}

	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	note := fmt.Sprintf("Lead %s created via %s intake", lead.LeadNumber, channel)
	if dup := s.checkLegacyCRM(ctx, lead.Phone); dup {
		note += "; phone number matches a record in the legacy CRM"
	}

	actorID, actorName := actorFromContext(ctx)
	change := &ActivityChange{Status: &lead.Status}
	if agent != nil {
		ownerTeam := team
		change.OwnerTeam = &ownerTeam
		change.OwnerName = &agent.Name
		s.notifyAssignment(ctx, agent.ID, lead, "New lead assigned")
	}
	s.recorder.Record(ctx, lead, actorID, actorName, note, change)

	return s.reload(ctx, lead.ID)
}

// Qualify applies a manual qualification edit. The payload must carry value
// tier, centre and language together; partial data is rejected before any
// mutation. Qualification on a lead not in status "lead" is a no-op on
// status and substatus.
func (s *WorkflowService) Qualify(ctx context.Context, leadID uuid.UUID, req *domain.QualifyLeadRequest) (*domain.LeadDTO, error) {
	if req.ValueTier == nil || req.CentreID == nil || req.LanguageID == nil {
		return nil, ErrIncompleteQualificationData
	}

	lead, err := s.getLead(ctx, leadID)
	if err != nil {
		return nil, err
	}

	if lead.Status != domain.LeadStatusLead {
		// precondition failed: leave status untouched, report success
		s.logger.Info("qualification skipped, lead not in qualifiable status",
			zap.String("lead_id", leadID.String()),
			zap.String("status", string(lead.Status)),
		)
		return s.reload(ctx, leadID)
	}

	if err := s.applyQualification(ctx, lead, *req.ValueTier, *req.CentreID, *req.LanguageID, req.Note); err != nil {
		return nil, err
	}

	return s.reload(ctx, leadID)
}

// RecordCallOutcome logs one contact attempt and applies the resulting
// workflow transition. Outcomes whose precondition is not met leave the
// status and substatus unchanged but still log the call and succeed.
func (s *WorkflowService) RecordCallOutcome(ctx context.Context, leadID uuid.UUID, req *domain.RecordCallOutcomeRequest) (*domain.LeadDTO, error) {
	lead, err := s.getLead(ctx, leadID)
	if err != nil {
		return nil, err
	}

	agent, err := s.agentRepo.GetByID(ctx, req.AgentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("agent %s: %w", req.AgentID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load agent: %w", err)
	}

	// qualification payload completeness is checked before any write so a
	// rejected call leaves no trace
	if req.Connection == domain.CallConnected && req.Outcome != nil && *req.Outcome == domain.CallOutcomeQualified {
		if req.ValueTier == nil || req.CentreID == nil || req.LanguageID == nil {
			return nil, ErrIncompleteQualificationData
		}
	}

	occurredAt := time.Now()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	callLog := &domain.CallLog{
		LeadID:          lead.ID,
		AgentID:         agent.ID,
		OccurredAt:      occurredAt,
		DurationSeconds: req.DurationSeconds,
		Connection:      req.Connection,
		Outcome:         req.Outcome,
		NextCallAt:      req.NextCallAt,
		SiteVisitAt:     req.SiteVisitAt,
		MeetingAt:       req.MeetingAt,
		ValueTier:       req.ValueTier,
		CentreID:        req.CentreID,
		LanguageID:      req.LanguageID,
		Note:            req.Note,
	}
	if err := s.callLogRepo.Create(ctx, callLog); err != nil {
		return nil, fmt.Errorf("failed to create call log: %w", err)
	}

	if req.Connection != domain.CallConnected || req.Outcome == nil {
		s.recorder.Record(ctx, lead, &agent.ID, agent.Name, "Call attempt logged, not connected", nil)
		return s.reload(ctx, leadID)
	}

	if err := s.applyCallOutcome(ctx, lead, agent, *req.Outcome, req); err != nil {
		return nil, err
	}

	return s.reload(ctx, leadID)
}

// applyCallOutcome runs the transition table for a connected call
func (s *WorkflowService) applyCallOutcome(ctx context.Context, lead *domain.Lead, agent *domain.Agent, outcome domain.CallOutcome, req *domain.RecordCallOutcomeRequest) error {
	note := fmt.Sprintf("Call outcome %q recorded", outcome)

	switch outcome {
	case domain.CallOutcomeQualified:
		if lead.Status != domain.LeadStatusLead {
			return s.noOp(ctx, lead, agent, note)
		}
		return s.applyQualification(ctx, lead, *req.ValueTier, *req.CentreID, *req.LanguageID, req.Note)

	case domain.CallOutcomeFollowUp:
		if lead.Status != domain.LeadStatusLead && lead.Status != domain.LeadStatusQualified {
			return s.noOp(ctx, lead, agent, note)
		}
		fields := map[string]interface{}{}
		// Only reschedule when the payload carries a date; an omitted
		// nextCallAt must not clear an existing one.
		if req.NextCallAt != nil {
			fields["next_call_at"] = req.NextCallAt
		}
		change := &ActivityChange{}
		if lead.Status == domain.LeadStatusQualified {
			warm := domain.LeadSubstatusWarm
			fields["substatus"] = warm
			change.Substatus = &warm
		}
		if len(fields) == 0 {
			s.recorder.Record(ctx, lead, &agent.ID, agent.Name, note, nil)
			return nil
		}
		return s.mutate(ctx, lead, agent, note, fields, change)

	case domain.CallOutcomeNotInterested:
		if lead.Status.IsTerminal() || !isValidTransition(lead.Status, domain.LeadStatusLost) {
			return s.noOp(ctx, lead, agent, note)
		}
		lost := domain.LeadStatusLost
		fields := map[string]interface{}{"status": lost}
		return s.mutate(ctx, lead, agent, note, fields, &ActivityChange{Status: &lost})

	case domain.CallOutcomeSiteVisit:
		if lead.Status != domain.LeadStatusQualified {
			return s.noOp(ctx, lead, agent, note)
		}
		warm := domain.LeadSubstatusWarm
		fields := map[string]interface{}{
			"substatus":    warm,
			"next_call_at": req.SiteVisitAt,
		}
		return s.mutate(ctx, lead, agent, note, fields, &ActivityChange{Substatus: &warm, SiteVisit: true})

	case domain.CallOutcomeMeetingScheduled:
		if lead.Status != domain.LeadStatusQualified {
			return s.noOp(ctx, lead, agent, note)
		}
		warm := domain.LeadSubstatusWarm
		fields := map[string]interface{}{
			"substatus":    warm,
			"next_call_at": req.MeetingAt,
		}
		return s.mutate(ctx, lead, agent, note, fields, &ActivityChange{Substatus: &warm, MeetingScheduled: true})

	case domain.CallOutcomeWon:
		if lead.Status != domain.LeadStatusQualified || !isValidTransition(lead.Status, domain.LeadStatusWon) {
			return s.noOp(ctx, lead, agent, note)
		}
		won := domain.LeadStatusWon
		fields := map[string]interface{}{"status": won}
		return s.mutate(ctx, lead, agent, note, fields, &ActivityChange{Status: &won})

	default:
		return fmt.Errorf("%w: unknown call outcome %q", ErrValidation, outcome)
	}
}

// applyQualification performs the pre-sales to sales handoff: status moves
// to qualified/hot, the pre-sales owner is always released, and a sales
// owner is assigned via the engine filtered by centre, language and value
// tier. When no sales agent is eligible the lead is persisted qualified and
// unowned rather than left half-transitioned.
func (s *WorkflowService) applyQualification(ctx context.Context, lead *domain.Lead, tier domain.ValueTier, centreID, languageID uuid.UUID, note string) error {
	if !tier.IsValid() {
		return fmt.Errorf("%w: unknown value tier %q", ErrValidation, tier)
	}

	centre, err := s.refRepo.GetCentre(ctx, centreID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("centre %s: %w", centreID, ErrNotFound)
		}
		return fmt.Errorf("failed to load centre: %w", err)
	}
	language, err := s.refRepo.GetLanguage(ctx, languageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("language %s: %w", languageID, ErrNotFound)
		}
		return fmt.Errorf("failed to load language: %w", err)
	}

	filters := &repository.AgentFilters{
		CentreID:   &centreID,
		LanguageID: &languageID,
		ValueTier:  &tier,
	}

	var salesOwnerID *uuid.UUID
	var salesOwnerName string
	agent, err := s.assignment.SelectAgent(ctx, domain.TeamSales, filters)
	if err != nil {
		if !IsNoEligibleAgent(err) {
			return err
		}
		s.logger.Warn("qualification proceeds without sales owner", zap.String("lead_id", lead.ID.String()), zap.String("reason", err.Error()))
	} else {
		salesOwnerID = &agent.ID
		salesOwnerName = agent.Name
	}

	qualified := domain.LeadStatusQualified
	hot := domain.LeadSubstatusHot
	fields := map[string]interface{}{
		"status":            qualified,
		"substatus":         hot,
		"is_qualified":      true,
		"value_tier":        tier,
		"centre_id":         centreID,
		"language_id":       languageID,
		"presales_owner_id": nil,
		"sales_owner_id":    salesOwnerID,
	}
	if err := s.leadRepo.UpdateFields(ctx, lead.ID, fields); err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}

	actorID, actorName := actorFromContext(ctx)
	activityNote := "Lead qualified, handed off to sales"
	if salesOwnerID == nil {
		activityNote = "Lead qualified, no eligible sales agent, left unassigned"
	}
	if note != "" {
		activityNote += ": " + note
	}

	salesTeam := domain.TeamSales
	change := &ActivityChange{
		Status:       &qualified,
		Substatus:    &hot,
		OwnerTeam:    &salesTeam,
		CentreName:   &centre.Name,
		LanguageName: &language.Name,
		ValueTier:    &tier,
	}
	if salesOwnerName != "" {
		change.OwnerName = &salesOwnerName
	}
	s.recorder.Record(ctx, lead, actorID, actorName, activityNote, change)

	if salesOwnerID != nil {
		s.notifyAssignment(ctx, *salesOwnerID, lead, "Qualified lead assigned")
	}

	return nil
}

// EvaluateLanguageComfort records the lead's preferred language. When the
// current owner does not support it the lead is reassigned within the same
// team via the assignment engine; an empty candidate set leaves ownership
// unchanged.
func (s *WorkflowService) EvaluateLanguageComfort(ctx context.Context, leadID uuid.UUID, req *domain.LanguageComfortRequest) (*domain.LeadDTO, error) {
	lead, err := s.getLead(ctx, leadID)
	if err != nil {
		return nil, err
	}

	language, err := s.refRepo.GetLanguage(ctx, req.LanguageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("language %s: %w", req.LanguageID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load language: %w", err)
	}

	team := domain.TeamPresales
	ownerID := lead.PresalesOwnerID
	ownerColumn := "presales_owner_id"
	if lead.IsQualified {
		team = domain.TeamSales
		ownerID = lead.SalesOwnerID
		ownerColumn = "sales_owner_id"
	}

	fields := map[string]interface{}{"language_id": req.LanguageID}
	change := &ActivityChange{LanguageName: &language.Name}
	note := fmt.Sprintf("Preferred language set to %s", language.Name)
	if req.Note != "" {
		note += ": " + req.Note
	}

	comfortable := false
	if ownerID != nil {
		owner, err := s.agentRepo.GetByID(ctx, *ownerID)
		if err == nil {
			for _, l := range owner.Languages {
				if l.ID == req.LanguageID {
					comfortable = true
					break
				}
			}
		}
	}

	if !comfortable {
		filters := &repository.AgentFilters{
			CentreID:   lead.CentreID,
			LanguageID: &req.LanguageID,
		}
		if team == domain.TeamSales {
			filters.ValueTier = lead.ValueTier
		}

		agent, err := s.assignment.SelectAgent(ctx, team, filters)
		if err != nil {
			if !IsNoEligibleAgent(err) {
				return nil, err
			}
			note += "; no agent supports this language, ownership unchanged"
			s.logger.Warn("language reassignment found no candidate",
				zap.String("lead_id", leadID.String()),
				zap.String("reason", err.Error()),
			)
		} else {
			fields[ownerColumn] = agent.ID
			change.OwnerTeam = &team
			change.OwnerName = &agent.Name
			note += fmt.Sprintf("; reassigned to %s", agent.Name)
			s.notifyAssignment(ctx, agent.ID, lead, "Lead reassigned for language comfort")
		}
	}

	if err := s.leadRepo.UpdateFields(ctx, leadID, fields); err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	actorID, actorName := actorFromContext(ctx)
	s.recorder.Record(ctx, lead, actorID, actorName, note, change)

	return s.reload(ctx, leadID)
}

// GetWorkflowStatus returns the lead and its 10 most recent activity
// entries, newest first. Read-only.
func (s *WorkflowService) GetWorkflowStatus(ctx context.Context, leadID uuid.UUID) (*domain.WorkflowStatusDTO, error) {
	lead, err := s.getLead(ctx, leadID)
	if err != nil {
		return nil, err
	}

	entries, err := s.recorder.ListForLead(ctx, leadID, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	activities := make([]domain.LeadActivityDTO, len(entries))
	for i := range entries {
		activities[i] = mapper.ToLeadActivityDTO(&entries[i])
	}

	return &domain.WorkflowStatusDTO{
		Lead:       mapper.ToLeadDTO(lead),
		Activities: activities,
	}, nil
}

// GetByID returns a single lead
func (s *WorkflowService) GetByID(ctx context.Context, leadID uuid.UUID) (*domain.LeadDTO, error) {
	return s.reload(ctx, leadID)
}

// List returns leads matching the filter
func (s *WorkflowService) List(ctx context.Context, filter *domain.ListLeadsFilter) ([]domain.LeadDTO, int64, error) {
	leads, total, err := s.leadRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}
	dtos := make([]domain.LeadDTO, len(leads))
	for i := range leads {
		dtos[i] = mapper.ToLeadDTO(&leads[i])
	}
	return dtos, total, nil
}

// ListUnassigned returns owner-less leads for manual escalation
func (s *WorkflowService) ListUnassigned(ctx context.Context, limit int) ([]domain.LeadDTO, error) {
	leads, err := s.leadRepo.ListUnassigned(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unassigned leads: %w", err)
	}
	dtos := make([]domain.LeadDTO, len(leads))
	for i := range leads {
		dtos[i] = mapper.ToLeadDTO(&leads[i])
	}
	return dtos, nil
}

// Archive soft-deletes a lead. Rows are never hard-deleted.
func (s *WorkflowService) Archive(ctx context.Context, leadID uuid.UUID) error {
	lead, err := s.getLead(ctx, leadID)
	if err != nil {
		return err
	}

	if err := s.leadRepo.Delete(ctx, leadID); err != nil {
		return fmt.Errorf("failed to archive lead: %w", err)
	}

	actorID, actorName := actorFromContext(ctx)
	s.recorder.Record(ctx, lead, actorID, actorName, "Lead archived", nil)
	return nil
}

// noOp logs calls whose precondition failed; the lead stays untouched and
// the operation still succeeds
func (s *WorkflowService) noOp(ctx context.Context, lead *domain.Lead, agent *domain.Agent, note string) error {
	s.logger.Info("call outcome had no workflow effect",
		zap.String("lead_id", lead.ID.String()),
		zap.String("status", string(lead.Status)),
	)
	s.recorder.Record(ctx, lead, &agent.ID, agent.Name, note+", no status change", nil)
	return nil
}

// mutate applies one atomic lead update and records the audit entry
func (s *WorkflowService) mutate(ctx context.Context, lead *domain.Lead, agent *domain.Agent, note string, fields map[string]interface{}, change *ActivityChange) error {
	if err := s.leadRepo.UpdateFields(ctx, lead.ID, fields); err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	s.recorder.Record(ctx, lead, &agent.ID, agent.Name, note, change)
	return nil
}

func (s *WorkflowService) getLead(ctx context.Context, leadID uuid.UUID) (*domain.Lead, error) {
	lead, err := s.leadRepo.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lead %s: %w", leadID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load lead: %w", err)
	}
	return lead, nil
}

func (s *WorkflowService) reload(ctx context.Context, leadID uuid.UUID) (*domain.LeadDTO, error) {
	lead, err := s.getLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

// notifyAssignment creates an in-app notification for the new owner.
// Failures are logged, never propagated.
func (s *WorkflowService) notifyAssignment(ctx context.Context, agentID uuid.UUID, lead *domain.Lead, title string) {
	if s.notifications == nil {
		return
	}
	message := fmt.Sprintf("%s (%s)", lead.Name, lead.LeadNumber)
	if _, err := s.notifications.CreateForAgent(ctx, agentID, domain.NotificationLeadAssigned, title, message, "lead", &lead.ID); err != nil {
		s.logger.Warn("failed to create assignment notification",
			zap.String("agent_id", agentID.String()),
			zap.String("lead_id", lead.ID.String()),
			zap.Error(err),
		)
	}
}

// checkLegacyCRM flags phone numbers already present in the retired CRM.
// Lookup failures are logged and ignored.
func (s *WorkflowService) checkLegacyCRM(ctx context.Context, phone string) bool {
	if s.legacyCRM == nil || phone == "" {
		return false
	}
	exists, err := s.legacyCRM.LeadExistsByPhone(ctx, phone)
	if err != nil {
		s.logger.Warn("legacy CRM lookup failed", zap.Error(err))
		return false
	}
	return exists
}

// actorFromContext extracts the acting user from the request context
func actorFromContext(ctx context.Context) (*uuid.UUID, string) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ""
	}
	id := userCtx.UserID
	return &id, userCtx.DisplayName
}
