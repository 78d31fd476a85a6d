package mapper

import (
	"time"

	"github.com/veridian-estates/pipeline-api/internal/domain"
)

const timeLayout = "2006-01-02T15:04:05Z"

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(timeLayout)
	return &s
}

// ToLeadDTO converts Lead to LeadDTO
func ToLeadDTO(lead *domain.Lead) domain.LeadDTO {
	dto := domain.LeadDTO{
		ID:              lead.ID,
		LeadNumber:      lead.LeadNumber,
		Name:            lead.Name,
		Email:           lead.Email,
		Phone:           lead.Phone,
		SourceID:        lead.SourceID,
		Status:          lead.Status,
		Substatus:       lead.Substatus,
		LanguageID:      lead.LanguageID,
		CentreID:        lead.CentreID,
		ValueTier:       lead.ValueTier,
		PresalesOwnerID: lead.PresalesOwnerID,
		SalesOwnerID:    lead.SalesOwnerID,
		IsQualified:     lead.IsQualified,
		NextCallAt:      formatTimePtr(lead.NextCallAt),
		CIFAt:           formatTimePtr(lead.CIFAt),
		IntakeChannel:   lead.IntakeChannel,
		Notes:           lead.Notes,
		CreatedAt:       lead.CreatedAt.Format(timeLayout),
		UpdatedAt:       lead.UpdatedAt.Format(timeLayout),
	}

	if lead.Source != nil {
		dto.SourceName = lead.Source.Name
	}
	if lead.Language != nil {
		dto.LanguageName = lead.Language.Name
	}
	if lead.Centre != nil {
		dto.CentreName = lead.Centre.Name
	}
	if lead.PresalesOwner != nil {
		dto.PresalesOwnerName = lead.PresalesOwner.Name
	}
	if lead.SalesOwner != nil {
		dto.SalesOwnerName = lead.SalesOwner.Name
	}

	return dto
}

// ToLeadActivityDTO converts LeadActivity to LeadActivityDTO
func ToLeadActivityDTO(activity *domain.LeadActivity) domain.LeadActivityDTO {
	return domain.LeadActivityDTO{
		ID:               activity.ID,
		LeadID:           activity.LeadID,
		ActorID:          activity.ActorID,
		ActorName:        activity.ActorName,
		Note:             activity.Note,
		LeadName:         activity.LeadName,
		LeadEmail:        activity.LeadEmail,
		LeadPhone:        activity.LeadPhone,
		SourceName:       activity.SourceName,
		Status:           activity.Status,
		Substatus:        activity.Substatus,
		OwnerTeam:        activity.OwnerTeam,
		OwnerName:        activity.OwnerName,
		CentreName:       activity.CentreName,
		LanguageName:     activity.LanguageName,
		ValueTier:        activity.ValueTier,
		SiteVisit:        activity.SiteVisit,
		MeetingScheduled: activity.MeetingScheduled,
		CreatedAt:        activity.CreatedAt.Format(timeLayout),
	}
}

// ToAgentDTO converts Agent to AgentDTO
func ToAgentDTO(agent *domain.Agent) domain.AgentDTO {
	dto := domain.AgentDTO{
		ID:             agent.ID,
		Name:           agent.Name,
		Email:          agent.Email,
		Team:           agent.Team,
		Active:         agent.Active,
		CentreID:       agent.CentreID,
		ValueTier:      agent.ValueTier,
		LastAssignedAt: agent.LastAssignedAt.Format(timeLayout),
	}

	if agent.Centre != nil {
		dto.CentreName = agent.Centre.Name
	}
	for _, lang := range agent.Languages {
		dto.Languages = append(dto.Languages, lang.Code)
	}

	return dto
}

// ToCallLogDTO converts CallLog to CallLogDTO
func ToCallLogDTO(callLog *domain.CallLog) domain.CallLogDTO {
	dto := domain.CallLogDTO{
		ID:              callLog.ID,
		LeadID:          callLog.LeadID,
		AgentID:         callLog.AgentID,
		OccurredAt:      callLog.OccurredAt.Format(timeLayout),
		DurationSeconds: callLog.DurationSeconds,
		Connection:      callLog.Connection,
		Outcome:         callLog.Outcome,
		NextCallAt:      formatTimePtr(callLog.NextCallAt),
		SiteVisitAt:     formatTimePtr(callLog.SiteVisitAt),
		MeetingAt:       formatTimePtr(callLog.MeetingAt),
		Note:            callLog.Note,
		CreatedAt:       callLog.CreatedAt.Format(timeLayout),
	}

	if callLog.Agent != nil {
		dto.AgentName = callLog.Agent.Name
	}

	return dto
}

// ToNotificationDTO converts Notification to NotificationDTO
func ToNotificationDTO(notification *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:         notification.ID,
		Type:       string(notification.Type),
		Title:      notification.Title,
		Message:    notification.Message,
		EntityType: notification.EntityType,
		EntityID:   notification.EntityID,
		Read:       notification.Read,
		ReadAt:     formatTimePtr(notification.ReadAt),
		CreatedAt:  notification.CreatedAt.Format(timeLayout),
	}
}

// ToCentreDTO converts Centre to CentreDTO
func ToCentreDTO(centre *domain.Centre) domain.CentreDTO {
	return domain.CentreDTO{
		ID:   centre.ID,
		Name: centre.Name,
		Code: centre.Code,
	}
}

// ToLanguageDTO converts Language to LanguageDTO
func ToLanguageDTO(language *domain.Language) domain.LanguageDTO {
	return domain.LanguageDTO{
		ID:   language.ID,
		Name: language.Name,
		Code: language.Code,
	}
}

// ToLeadSourceDTO converts LeadSource to LeadSourceDTO
func ToLeadSourceDTO(source *domain.LeadSource) domain.LeadSourceDTO {
	return domain.LeadSourceDTO{
		ID:   source.ID,
		Name: source.Name,
		Slug: source.Slug,
	}
}

// ToStatusDTO converts Status to StatusDTO
func ToStatusDTO(status *domain.Status) domain.StatusDTO {
	return domain.StatusDTO{
		ID:    status.ID,
		Type:  status.Type,
		Slug:  status.Slug,
		Label: status.Label,
	}
}
