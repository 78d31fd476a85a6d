package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an id when none was set by the caller
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// LeadStatus represents the pipeline stage of a lead
type LeadStatus string

const (
	LeadStatusLead      LeadStatus = "lead"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusWon       LeadStatus = "won"
	LeadStatusLost      LeadStatus = "lost"
)

// IsValid checks if the status is a known value
func (s LeadStatus) IsValid() bool {
	switch s {
	case LeadStatusLead, LeadStatusQualified, LeadStatusWon, LeadStatusLost:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions
func (s LeadStatus) IsTerminal() bool {
	return s == LeadStatusWon || s == LeadStatusLost
}

// LeadSubstatus refines a qualified lead's urgency
type LeadSubstatus string

const (
	LeadSubstatusHot  LeadSubstatus = "hot"
	LeadSubstatusWarm LeadSubstatus = "warm"
	LeadSubstatusCIF  LeadSubstatus = "cif"
)

func (s LeadSubstatus) IsValid() bool {
	switch s {
	case LeadSubstatusHot, LeadSubstatusWarm, LeadSubstatusCIF:
		return true
	}
	return false
}

// ValueTier buckets leads by expected deal size
type ValueTier string

const (
	ValueTierLow  ValueTier = "low"
	ValueTierMid  ValueTier = "mid"
	ValueTierHigh ValueTier = "high"
)

func (t ValueTier) IsValid() bool {
	switch t {
	case ValueTierLow, ValueTierMid, ValueTierHigh:
		return true
	}
	return false
}

// Team is one of the two sequential ownership pools an agent belongs to
type Team string

const (
	TeamPresales Team = "presales"
	TeamSales    Team = "sales"
)

func (t Team) IsValid() bool {
	return t == TeamPresales || t == TeamSales
}

// IntakeChannel records how a lead entered the pipeline
type IntakeChannel string

const (
	IntakeChannelManual  IntakeChannel = "manual"
	IntakeChannelImport  IntakeChannel = "import"
	IntakeChannelWebhook IntakeChannel = "webhook"
)

// CallConnection is the coarse result of a contact attempt
type CallConnection string

const (
	CallConnected    CallConnection = "connected"
	CallNotConnected CallConnection = "not_connected"
)

// CallOutcome is the specific result code of a connected call
type CallOutcome string

const (
	CallOutcomeQualified        CallOutcome = "qualified"
	CallOutcomeFollowUp         CallOutcome = "follow_up"
	CallOutcomeNotInterested    CallOutcome = "not_interested"
	CallOutcomeSiteVisit        CallOutcome = "site_visit"
	CallOutcomeMeetingScheduled CallOutcome = "meeting_scheduled"
	CallOutcomeWon              CallOutcome = "won"
)

func (o CallOutcome) IsValid() bool {
	switch o {
	case CallOutcomeQualified, CallOutcomeFollowUp, CallOutcomeNotInterested,
		CallOutcomeSiteVisit, CallOutcomeMeetingScheduled, CallOutcomeWon:
		return true
	}
	return false
}

// UserRoleType represents roles carried in JWT claims
type UserRoleType string

const (
	RoleAdmin      UserRoleType = "Admin"
	RoleManager    UserRoleType = "Manager"
	RolePresales   UserRoleType = "Presales"
	RoleSales      UserRoleType = "Sales"
	RoleAPIService UserRoleType = "ApiService"
)

// NotificationType categorizes in-app notifications
type NotificationType string

const (
	NotificationLeadAssigned   NotificationType = "lead_assigned"
	NotificationLeadUnassigned NotificationType = "lead_unassigned"
	NotificationFollowUpDue    NotificationType = "follow_up_due"
)

// Centre is a sales centre agents and leads belong to
type Centre struct {
	BaseModel
	Name string `gorm:"type:varchar(200);not null"`
	Code string `gorm:"type:varchar(20);not null;uniqueIndex"`
}

// Language is a spoken language agents support and leads prefer
type Language struct {
	BaseModel
	Name string `gorm:"type:varchar(100);not null"`
	Code string `gorm:"type:varchar(10);not null;uniqueIndex"`
}

// LeadSource identifies the marketing channel a lead came from
type LeadSource struct {
	BaseModel
	Name string `gorm:"type:varchar(200);not null"`
	Slug string `gorm:"type:varchar(100);not null;uniqueIndex"`
}

// Status is a typed reference enumeration (type + slug), kept for admin
// tooling that lists the available pipeline values. The workflow itself
// uses the closed LeadStatus/LeadSubstatus types above.
type Status struct {
	BaseModel
	Type  string `gorm:"type:varchar(50);not null;uniqueIndex:idx_status_type_slug"`
	Slug  string `gorm:"type:varchar(100);not null;uniqueIndex:idx_status_type_slug"`
	Label string `gorm:"type:varchar(200);not null"`
}

func (Status) TableName() string {
	return "statuses"
}

// Agent is a directory entry for a human working a team's queue.
// LastAssignedAt is the round-robin assignment cursor and is mutated
// only through AgentRepository.TouchAssignment.
type Agent struct {
	BaseModel
	Name           string     `gorm:"type:varchar(200);not null"`
	Email          string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	Team           Team       `gorm:"type:varchar(20);not null;index"`
	Active         bool       `gorm:"not null;default:true"`
	CentreID       *uuid.UUID `gorm:"type:uuid;index"`
	Centre         *Centre
	ValueTier      *ValueTier `gorm:"type:varchar(20)"`
	Languages      []Language `gorm:"many2many:agent_languages"`
	LastAssignedAt time.Time  `gorm:"not null;index;column:last_assigned_at"`
}

// Lead is a prospective customer tracked through the pipeline
type Lead struct {
	BaseModel
	LeadNumber      string         `gorm:"type:varchar(30);not null;uniqueIndex"`
	Name            string         `gorm:"type:varchar(200);not null"`
	Email           string         `gorm:"type:varchar(255)"`
	Phone           string         `gorm:"type:varchar(30);index"`
	SourceID        *uuid.UUID     `gorm:"type:uuid"`
	Source          *LeadSource    `gorm:"foreignKey:SourceID"`
	Status          LeadStatus     `gorm:"type:varchar(20);not null;index"`
	Substatus       *LeadSubstatus `gorm:"type:varchar(20)"`
	LanguageID      *uuid.UUID     `gorm:"type:uuid"`
	Language        *Language
	CentreID        *uuid.UUID `gorm:"type:uuid"`
	Centre          *Centre
	ValueTier       *ValueTier `gorm:"type:varchar(20)"`
	PresalesOwnerID *uuid.UUID `gorm:"type:uuid;index"`
	PresalesOwner   *Agent     `gorm:"foreignKey:PresalesOwnerID"`
	SalesOwnerID    *uuid.UUID `gorm:"type:uuid;index"`
	SalesOwner      *Agent     `gorm:"foreignKey:SalesOwnerID"`
	IsQualified     bool       `gorm:"not null;default:false"`
	NextCallAt      *time.Time
	CIFAt           *time.Time    `gorm:"column:cif_at"`
	IntakeChannel   IntakeChannel `gorm:"type:varchar(20);not null;default:'manual'"`
	Notes           string        `gorm:"type:text"`
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

// CallLog is one contact attempt against a lead. Rows are immutable after
// creation except administrative correction.
type CallLog struct {
	BaseModel
	LeadID          uuid.UUID `gorm:"type:uuid;not null;index"`
	AgentID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Agent           *Agent
	OccurredAt      time.Time      `gorm:"not null;index"`
	DurationSeconds int            `gorm:"not null;default:0"`
	Connection      CallConnection `gorm:"type:varchar(20);not null"`
	Outcome         *CallOutcome   `gorm:"type:varchar(30)"`
	NextCallAt      *time.Time
	SiteVisitAt     *time.Time
	MeetingAt       *time.Time
	ValueTier       *ValueTier `gorm:"type:varchar(20)"`
	CentreID        *uuid.UUID `gorm:"type:uuid"`
	LanguageID      *uuid.UUID `gorm:"type:uuid"`
	Note            string     `gorm:"type:text"`
}

// LeadActivity is an append-only audit entry recorded for every lead
// mutation. Snapshot columns capture the lead at the moment of the change,
// not its current state. Rows are never updated after insertion.
type LeadActivity struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key"`
	LeadID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_lead_activities_lead_created"`
	ActorID   *uuid.UUID `gorm:"type:uuid"`
	ActorName string     `gorm:"type:varchar(200)"`
	Note      string     `gorm:"type:text"`

	// lead identity at the time of the change
	LeadName   string `gorm:"type:varchar(200)"`
	LeadEmail  string `gorm:"type:varchar(255)"`
	LeadPhone  string `gorm:"type:varchar(30)"`
	SourceName string `gorm:"type:varchar(200)"`

	// changed fields, null when untouched by this mutation
	Status           *LeadStatus    `gorm:"type:varchar(20)"`
	Substatus        *LeadSubstatus `gorm:"type:varchar(20)"`
	OwnerTeam        *Team          `gorm:"type:varchar(20)"`
	OwnerName        *string        `gorm:"type:varchar(200)"`
	CentreName       *string        `gorm:"type:varchar(200)"`
	LanguageName     *string        `gorm:"type:varchar(100)"`
	ValueTier        *ValueTier     `gorm:"type:varchar(20)"`
	SiteVisit        bool           `gorm:"not null;default:false"`
	MeetingScheduled bool           `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_lead_activities_lead_created"`
}

func (LeadActivity) TableName() string {
	return "lead_activities"
}

// BeforeCreate assigns an id when none was set by the caller
func (a *LeadActivity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Notification is an in-app message for an agent
type Notification struct {
	BaseModel
	AgentID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type       string     `gorm:"type:varchar(50);not null"`
	Title      string     `gorm:"type:varchar(200);not null"`
	Message    string     `gorm:"type:text"`
	EntityType string     `gorm:"type:varchar(50)"`
	EntityID   *uuid.UUID `gorm:"type:uuid"`
	Read       bool       `gorm:"not null;default:false"`
	ReadAt     *time.Time
}

// NumberSequence tracks the last issued sequence per prefix/year,
// used to generate human-readable lead numbers.
type NumberSequence struct {
	ID           uint   `gorm:"primaryKey"`
	Prefix       string `gorm:"type:varchar(10);not null;uniqueIndex:idx_number_sequences_prefix_year"`
	Year         int    `gorm:"not null;uniqueIndex:idx_number_sequences_prefix_year"`
	LastSequence int    `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ImportJob tracks one bulk lead import file and its row-level results
type ImportJob struct {
	BaseModel
	FileName     string `gorm:"type:varchar(255);not null"`
	StoragePath  string `gorm:"type:varchar(500);not null"`
	TotalRows    int    `gorm:"not null;default:0"`
	CreatedCount int    `gorm:"not null;default:0"`
	FailedCount  int    `gorm:"not null;default:0"`
	Errors       string `gorm:"type:text"`
}
