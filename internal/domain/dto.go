package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaginatedResponse wraps list endpoint payloads
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

type LeadDTO struct {
	ID                uuid.UUID      `json:"id"`
	LeadNumber        string         `json:"leadNumber"`
	Name              string         `json:"name"`
	Email             string         `json:"email,omitempty"`
	Phone             string         `json:"phone,omitempty"`
	SourceID          *uuid.UUID     `json:"sourceId,omitempty"`
	SourceName        string         `json:"sourceName,omitempty"`
	Status            LeadStatus     `json:"status"`
	Substatus         *LeadSubstatus `json:"substatus,omitempty"`
	LanguageID        *uuid.UUID     `json:"languageId,omitempty"`
	LanguageName      string         `json:"languageName,omitempty"`
	CentreID          *uuid.UUID     `json:"centreId,omitempty"`
	CentreName        string         `json:"centreName,omitempty"`
	ValueTier         *ValueTier     `json:"valueTier,omitempty"`
	PresalesOwnerID   *uuid.UUID     `json:"presalesOwnerId,omitempty"`
	PresalesOwnerName string         `json:"presalesOwnerName,omitempty"`
	SalesOwnerID      *uuid.UUID     `json:"salesOwnerId,omitempty"`
	SalesOwnerName    string         `json:"salesOwnerName,omitempty"`
	IsQualified       bool           `json:"isQualified"`
	NextCallAt        *string        `json:"nextCallAt,omitempty"`
	CIFAt             *string        `json:"cifAt,omitempty"`
	IntakeChannel     IntakeChannel  `json:"intakeChannel"`
	Notes             string         `json:"notes,omitempty"`
	CreatedAt         string         `json:"createdAt"` // ISO 8601
	UpdatedAt         string         `json:"updatedAt"` // ISO 8601
}

type LeadActivityDTO struct {
	ID               uuid.UUID      `json:"id"`
	LeadID           uuid.UUID      `json:"leadId"`
	ActorID          *uuid.UUID     `json:"actorId,omitempty"`
	ActorName        string         `json:"actorName,omitempty"`
	Note             string         `json:"note,omitempty"`
	LeadName         string         `json:"leadName,omitempty"`
	LeadEmail        string         `json:"leadEmail,omitempty"`
	LeadPhone        string         `json:"leadPhone,omitempty"`
	SourceName       string         `json:"sourceName,omitempty"`
	Status           *LeadStatus    `json:"status,omitempty"`
	Substatus        *LeadSubstatus `json:"substatus,omitempty"`
	OwnerTeam        *Team          `json:"ownerTeam,omitempty"`
	OwnerName        *string        `json:"ownerName,omitempty"`
	CentreName       *string        `json:"centreName,omitempty"`
	LanguageName     *string        `json:"languageName,omitempty"`
	ValueTier        *ValueTier     `json:"valueTier,omitempty"`
	SiteVisit        bool           `json:"siteVisit"`
	MeetingScheduled bool           `json:"meetingScheduled"`
	CreatedAt        string         `json:"createdAt"`
}

// WorkflowStatusDTO is the read-only workflow view: the lead plus its most
// recent activity entries, newest first.
type WorkflowStatusDTO struct {
	Lead       LeadDTO           `json:"lead"`
	Activities []LeadActivityDTO `json:"activities"`
}

type AgentDTO struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Team           Team       `json:"team"`
	Active         bool       `json:"active"`
	CentreID       *uuid.UUID `json:"centreId,omitempty"`
	CentreName     string     `json:"centreName,omitempty"`
	ValueTier      *ValueTier `json:"valueTier,omitempty"`
	Languages      []string   `json:"languages,omitempty"`
	LastAssignedAt string     `json:"lastAssignedAt"`
}

type CallLogDTO struct {
	ID              uuid.UUID      `json:"id"`
	LeadID          uuid.UUID      `json:"leadId"`
	AgentID         uuid.UUID      `json:"agentId"`
	AgentName       string         `json:"agentName,omitempty"`
	OccurredAt      string         `json:"occurredAt"`
	DurationSeconds int            `json:"durationSeconds"`
	Connection      CallConnection `json:"connection"`
	Outcome         *CallOutcome   `json:"outcome,omitempty"`
	NextCallAt      *string        `json:"nextCallAt,omitempty"`
	SiteVisitAt     *string        `json:"siteVisitAt,omitempty"`
	MeetingAt       *string        `json:"meetingAt,omitempty"`
	Note            string         `json:"note,omitempty"`
	CreatedAt       string         `json:"createdAt"`
}

type NotificationDTO struct {
	ID         uuid.UUID  `json:"id"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Message    string     `json:"message,omitempty"`
	EntityType string     `json:"entityType,omitempty"`
	EntityID   *uuid.UUID `json:"entityId,omitempty"`
	Read       bool       `json:"read"`
	ReadAt     *string    `json:"readAt,omitempty"`
	CreatedAt  string     `json:"createdAt"`
}

type CentreDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Code string    `json:"code"`
}

type LanguageDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Code string    `json:"code"`
}

type LeadSourceDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

type StatusDTO struct {
	ID    uuid.UUID `json:"id"`
	Type  string    `json:"type"`
	Slug  string    `json:"slug"`
	Label string    `json:"label"`
}

type ImportResultDTO struct {
	JobID        uuid.UUID `json:"jobId"`
	FileName     string    `json:"fileName"`
	TotalRows    int       `json:"totalRows"`
	CreatedCount int       `json:"createdCount"`
	FailedCount  int       `json:"failedCount"`
	Errors       []string  `json:"errors,omitempty"`
}

// CreateLeadRequest is the payload for manual or webhook lead intake.
// When TargetTeam is empty the lead is routed to pre-sales.
type CreateLeadRequest struct {
	Name       string     `json:"name" validate:"required,max=200"`
	Email      string     `json:"email" validate:"omitempty,email"`
	Phone      string     `json:"phone" validate:"omitempty,max=30"`
	SourceID   *uuid.UUID `json:"sourceId" validate:"omitempty"`
	LanguageID *uuid.UUID `json:"languageId" validate:"omitempty"`
	CentreID   *uuid.UUID `json:"centreId" validate:"omitempty"`
	ValueTier  *ValueTier `json:"valueTier" validate:"omitempty,oneof=low mid high"`
	TargetTeam Team       `json:"targetTeam" validate:"omitempty,oneof=presales sales"`
	Notes      string     `json:"notes" validate:"omitempty,max=5000"`
}

// QualifyLeadRequest carries the qualification payload. All three fields
// must be present together; partial data is rejected.
type QualifyLeadRequest struct {
	ValueTier  *ValueTier `json:"valueTier" validate:"omitempty,oneof=low mid high"`
	CentreID   *uuid.UUID `json:"centreId"`
	LanguageID *uuid.UUID `json:"languageId"`
	Note       string     `json:"note" validate:"omitempty,max=5000"`
}

// RecordCallOutcomeRequest logs a contact attempt and drives the workflow
type RecordCallOutcomeRequest struct {
	AgentID         uuid.UUID      `json:"agentId" validate:"required"`
	Connection      CallConnection `json:"connection" validate:"required,oneof=connected not_connected"`
	Outcome         *CallOutcome   `json:"outcome" validate:"omitempty,oneof=qualified follow_up not_interested site_visit meeting_scheduled won"`
	OccurredAt      *time.Time     `json:"occurredAt"`
	DurationSeconds int            `json:"durationSeconds" validate:"gte=0"`
	NextCallAt      *time.Time     `json:"nextCallAt"`
	SiteVisitAt     *time.Time     `json:"siteVisitAt"`
	MeetingAt       *time.Time     `json:"meetingAt"`
	ValueTier       *ValueTier     `json:"valueTier" validate:"omitempty,oneof=low mid high"`
	CentreID        *uuid.UUID     `json:"centreId"`
	LanguageID      *uuid.UUID     `json:"languageId"`
	Note            string         `json:"note" validate:"omitempty,max=5000"`
}

// LanguageComfortRequest records a lead's preferred language and triggers
// reassignment when the current owner does not support it
type LanguageComfortRequest struct {
	LanguageID uuid.UUID `json:"languageId" validate:"required"`
	Note       string    `json:"note" validate:"omitempty,max=5000"`
}

// ListLeadsFilter narrows the lead list endpoint
type ListLeadsFilter struct {
	Status     *LeadStatus
	Substatus  *LeadSubstatus
	CentreID   *uuid.UUID
	OwnerID    *uuid.UUID
	Unassigned bool
	Search     string
	Page       int
	PageSize   int
}
