package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridian-estates/pipeline-api/internal/domain"
	"github.com/veridian-estates/pipeline-api/internal/repository"
	"github.com/veridian-estates/pipeline-api/internal/service"
	"github.com/veridian-estates/pipeline-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newWorkflowService(db *gorm.DB) *service.WorkflowService {
	log := zap.NewNop()
	agentRepo := repository.NewAgentRepository(db)
	return service.NewWorkflowService(
		repository.NewLeadRepository(db),
		agentRepo,
		repository.NewCallLogRepository(db),
		repository.NewReferenceRepository(db),
		service.NewAssignmentService(agentRepo, log),
		service.NewActivityRecorder(repository.NewLeadActivityRepository(db), log),
		service.NewLeadNumberService(repository.NewNumberSequenceRepository(db), log),
		service.NewNotificationService(repository.NewNotificationRepository(db), log),
		log,
		db,
	)
}

// qualificationFixture seeds a centre, a language and a matching sales agent
func qualificationFixture(t *testing.T, db *gorm.DB) (*domain.Centre, *domain.Language, *domain.Agent) {
	centre := testutil.CreateTestCentre(t, db, "Pune West")
	lang := testutil.CreateTestLanguage(t, db, "Marathi")
	agent := testutil.CreateTestAgent(t, db, "Sales Agent", domain.TeamSales, time.Now().Add(-time.Hour))
	high := domain.ValueTierHigh
	require.NoError(t, db.Model(agent).Updates(map[string]interface{}{
		"centre_id":  centre.ID,
		"value_tier": high,
	}).Error)
	testutil.AddAgentLanguage(t, db, agent, lang)
	return centre, lang, agent
}

func TestWorkflowService_CreateAndAssign(t *testing.T) {
	ctx := testutil.UserContext()

	t.Run("assigns the next presales agent in rotation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newWorkflowService(db)

		base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		first := testutil.CreateTestAgent(t, db, "First", domain.TeamPresales, base)
		second := testutil.CreateTestAgent(t, db, "Second", domain.TeamPresales, base.Add(time.Hour))

		lead, err := svc.CreateAndAssign(ctx, &domain.CreateLeadRequest{Name: "Asha Kulkarni"}, domain.IntakeChannelManual)
		require.NoError(t, err)
		assert.Equal(t, domain.LeadStatusLead, lead.Status)
		require.NotNil(t, lead.PresalesOwnerID)
		assert.Equal(t, first.ID, *lead.PresalesOwnerID)
		assert.Regexp(t, `^LD-\d{4}-\d{4}$`, lead.LeadNumber)

		// first agent cycled to the back; the next lead goes to the second
		next, err := svc.CreateAndAssign(ctx, &domain.CreateLeadRequest{Name: "Rohan Mehta"}, domain.IntakeChannelManual)
		require.NoError(t, err)
		require.NotNil(t, next.PresalesOwnerID)
		assert.Equal(t, second.ID, *next.PresalesOwnerID)
	})

	t.Run("creates unowned when no agent is eligible", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newWorkflowService(db)

		lead, err := svc.CreateAndAssign(ctx, &domain.CreateLeadRequest{Name: "Orphan"}, domain.IntakeChannelWebhook)
		require.NoError(t, err)
		assert.Nil(t, lead.PresalesOwnerID)
		assert.Nil(t, lead.SalesOwnerID)

		unassigned, err := svc.ListUnassigned(ctx, 10)
		require.NoError(t, err)
		require.Len(t, unassigned, 1)
		assert.Equal(t, lead.ID, unassigned[0].ID)
	})

	t.Run("records an intake activity and notifies the owner", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newWorkflowService(db)

		agent := testutil.CreateTestAgent(t, db, "Owner", domain.TeamPresales, time.Now().Add(-time.Hour))

		lead, err := svc.CreateAndAssign(ctx, &domain.CreateLeadRequest{Name: "Notified"}, domain.IntakeChannelManual)
		require.NoError(t, err)

		var activities []domain.LeadActivity
		require.NoError(t, db.Where("lead_id = ?", lead.ID).Find(&activities).Error)
		require.Len(t, activities, 1)
		assert.Contains(t, activities[0].Note, "created via manual intake")

		var notifications []domain.Notification
		require.NoError(t, db.Where("agent_id = ?", agent.ID).Find(&notifications).Error)
		require.Len(t, notifications, 1)
		assert.Equal(t, string(domain.NotificationLeadAssigned), notifications[0].Type)
	})

	t.Run("routes directly to sales when requested", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newWorkflowService(db)

		sales := testutil.CreateTestAgent(t, db, "Closer", domain.TeamSales, time.Now().Add(-time.Hour))

		lead, err := svc.CreateAndAssign(ctx, &domain.CreateLeadRequest{
			Name:       "Direct",
			TargetTeam: domain.TeamSales,
		}, domain.IntakeChannelManual)
		require.NoError(t, err)
		require.NotNil(t, lead.SalesOwnerID)
		assert.Equal(t, sales.ID, *lead.SalesOwnerID)
		assert.Nil(t, lead.PresalesOwnerID)
	})
}

func TestWorkflowService_Qualify(t *testing.T) {
	ctx := testutil.UserContext()

	t.Run("hands off to sales as qualified hot", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newWorkflowService(db)
		centre, lang, salesAgent := qualificationFixture(t, db)

		presales := testutil.CreateTestAgent(t, db, "Presales", domain.TeamPresales, time.Now())
		lead := testutil.CreateTestLead(t, db, "Prospect", domain.LeadStatusLead)
		require.NoError(t, db.Model(lead).Update("presales_owner_id", presales.ID).Error)

		high := domain.ValueTierHigh
		dto, err := svc.Qualify(ctx, lead.ID, &domain.QualifyLeadRequest{
			ValueTier:  &high,
			CentreID:   &centre.ID,
			LanguageID: &lang.ID,
		})
		require.NoError(t, err)

		assert.Equal(t, domain.LeadStatusQualified, dto.Status)
		require.NotNil(t, dto.Substatus)
		assert.Equal(t, domain.LeadSubstatusHot, *dto.Substatus)
		assert.True(t, dto.IsQualified)
		assert.Nil(t, dto.PresalesOwnerID)
		require.NotNil(t, dto.SalesOwnerID)
		assert.Equal(t, salesAgent.ID, *dto.SalesOwnerID)
	})

	t.Run("rejects partial qualification data before any write", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newWorkflowService(db)
		centre, _, _ := qualificationFixture(t, db)

		lead := testutil.CreateTestLead(t, db, "Partial", domain.LeadStatusLead)

		high := domain.ValueTierHigh
		_, err := svc.Qualify(ctx, lead.ID, &domain.QualifyLeadRequest{
			ValueTier: &high,
			CentreID:  &centre.ID,
		})
		assert.ErrorIs(t, err, service.ErrIncompleteQualificationData)

		var got domain.Lead
		require.NoError(t, db.First(&got, "id = ?", lead.ID).Error)
		assert.Equal(t, domain.LeadStatusLead, got.Status)
		assert.False(t, got.IsQualified)

		var activityCount int64
		require.NoError(t, db.Model(&domain.LeadActivity{}).Where("lead_id = ?", lead.ID).Count(&activityCount).Error)
		assert.Zero(t, activityCount)
	})

	t.Run("already qualified lead is a no-op success", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newWorkflowService(db)
		centre, lang, _ := qualificationFixture(t, db)

		lead := testutil.CreateTestLead(t, db, "Done", domain.LeadStatusWon)

		high := domain.ValueTierHigh
		dto, err := svc.Qualify(ctx, lead.ID, &domain.QualifyLeadRequest{
			ValueTier:  &high,
			CentreID:   &centre.ID,
			LanguageID: &lang.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.LeadStatusWon, dto.Status)
		assert.False(t, dto.IsQualified)
	})

	t.Run("no eligible sales agent leaves the lead qualified and unowned", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newWorkflowService(db)
		centre := testutil.CreateTestCentre(t, db, "Empty Centre")
		lang := testutil.CreateTestLanguage(t, db, "Tamil")

		presales := testutil.CreateTestAgent(t, db, "Presales", domain.TeamPresales, time.Now())
		lead := testutil.CreateTestLead(t, db, "Unlucky", domain.LeadStatusLead)
		require.NoError(t, db.Model(lead).Update("presales_owner_id", presales.ID).Error)

		mid := domain.ValueTierMid
		dto, err := svc.Qualify(ctx, lead.ID, &domain.QualifyLeadRequest{
			ValueTier:  &mid,
			CentreID:   &centre.ID,
			LanguageID: &lang.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.LeadStatusQualified, dto.Status)
		assert.True(t, dto.IsQualified)
		assert.Nil(t, dto.PresalesOwnerID)
		assert.Nil(t, dto.SalesOwnerID)
	})

	t.Run("unknown lead", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newWorkflowService(db)
		centre, lang, _ := qualificationFixture(t, db)

		low := domain.ValueTierLow
		_, err := svc.Qualify(ctx, uuid.New(), &domain.QualifyLeadRequest{
			ValueTier:  &low,
			CentreID:   &centre.ID,
			LanguageID: &lang.ID,
		})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestWorkflowService_RecordCallOutcome(t *testing.T) {
	ctx := testutil.UserContext()

	t.Run("not connected logs the attempt only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newWorkflowService(db)

		agent := testutil.CreateTestAgent(t, db, "Caller", domain.TeamPresales, time.Now())
		lead := testutil.CreateTestLead(t, db, "Busy", domain.LeadStatusLead)

		dto, err := svc.RecordCallOutcome(ctx, lead.ID, &domain.RecordCallOutcomeRequest{
			AgentID:    agent.ID,
			Connection: domain.CallNotConnected,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.LeadStatusLead, dto.Status)

		var callCount int64
		require.NoError(t, db.Model(&domain.CallLog{}).Where("lead_id = ?", lead.ID).Count(&callCount).Error)
		assert.Equal(t, int64(1), callCount)
	})

	t.Run("qualified outcome performs the handoff", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newWorkflowService(db)
		centre, lang, salesAgent := qualificationFixture(t, db)

		agent := testutil.CreateTestAgent(t, db, "Caller", domain.TeamPresales, time.Now())
		lead := testutil.CreateTestLead(t, db, "Ready", domain.LeadStatusLead)

		outcome := domain.CallOutcomeQualified
		high := domain.ValueTierHigh
		dto, err := svc.RecordCallOutcome(ctx, lead.ID, &domain.RecordCallOutcomeRequest{
			AgentID:    agent.ID,
			Connection: domain.CallConnected,
			Outcome:    &outcome,
			ValueTier:  &high,
			CentreID:   &centre.ID,
			LanguageID: &lang.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.LeadStatusQualified, dto.Status)
		require.NotNil(t, dto.SalesOwnerID)
		assert.Equal(t, salesAgent.ID, *dto.SalesOwnerID)
	})

	t.Run("qualified outcome with partial data creates no call log", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newWorkflowService(db)

		agent := testutil.CreateTestAgent(t, db, "Caller", domain.TeamPresales, time.Now())
		lead := testutil.CreateTestLead(t, db, "Half", domain.LeadStatusLead)

		outcome := domain.CallOutcomeQualified
		high := domain.ValueTierHigh
		_, err := svc.RecordCallOutcome(ctx, lead.ID, &domain.RecordCallOutcomeRequest{
			AgentID:    agent.ID,
			Connection: domain.CallConnected,
			Outcome:    &outcome,
			ValueTier:  &high,
		})
		assert.ErrorIs(t, err, service.ErrIncompleteQualificationData)

		var callCount int64
		require.NoError(t, db.Model(&domain.CallLog{}).Where("lead_id = ?", lead.ID).Count(&callCount).Error)
		assert.Zero(t, callCount)
	})

	t.Run("follow up on a qualified lead sets warm and next call", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newWorkflowService(db)

		agent := testutil.CreateTestAgent(t, db, "Caller", domain.TeamSales, time.Now())
		lead := testutil.CreateTestLead(t, db, "Later", domain.LeadStatusQualified)

		outcome := domain.CallOutcomeFollowUp
		nextCall := time.Now().Add(48 * time.Hour)
		dto, err := svc.RecordCallOutcome(ctx, lead.ID, &domain.RecordCallOutcomeRequest{
			AgentID:    agent.ID,
			Connection: domain.CallConnected,
			Outcome:    &outcome,
			NextCallAt: &nextCall,
		})
		require.NoError(t, err)
		require.NotNil(t, dto.Substatus)
		assert.Equal(t, domain.LeadSubstatusWarm, *dto.Substatus)
		assert.NotNil(t, dto.NextCallAt)
	})

	t.Run("follow up without a date keeps the scheduled call", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newWorkflowService(db)

		agent := testutil.CreateTestAgent(t, db, "Caller", domain.TeamSales, time.Now())
		lead := testutil.CreateTestLead(t, db, "Scheduled", domain.LeadStatusQualified)

		scheduled := time.Date(2026, 9, 10, 11, 0, 0, 0, time.UTC)
		require.NoError(t, db.Model(lead).Update("next_call_at", scheduled).Error)

		outcome := domain.CallOutcomeFollowUp
		dto, err := svc.RecordCallOutcome(ctx, lead.ID, &domain.RecordCallOutcomeRequest{
			AgentID:    agent.ID,
			Connection: domain.CallConnected,
			Outcome:    &outcome,
		})
		require.NoError(t, err)
		require.NotNil(t, dto.Substatus)
		assert.Equal(t, domain.LeadSubstatusWarm, *dto.Substatus)

		var got domain.Lead
		require.NoError(t, db.First(&got, "id = ?", lead.ID).Error)
		require.NotNil(t, got.NextCallAt)
		assert.Equal(t, scheduled.Unix(), got.NextCallAt.Unix())
	})

	t.Run("not interested closes as lost", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newWorkflowService(db)

		agent := testutil.CreateTestAgent(t, db, "Caller", domain.TeamPresales, time.Now())
		lead := testutil.CreateTestLead(t, db, "Cold", domain.LeadStatusLead)

		outcome := domain.CallOutcomeNotInterested
		dto, err := svc.RecordCallOutcome(ctx, lead.ID, &domain.RecordCallOutcomeRequest{
			AgentID:    agent.ID,
			Connection: domain.CallConnected,
			Outcome:    &outcome,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.LeadStatusLost, dto.Status)
	})

	t.Run("won outcome on an unqualified lead is a silent no-op", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newWorkflowService(db)

		agent := testutil.CreateTestAgent(t, db, "Caller", domain.TeamSales, time.Now())
		lead := testutil.CreateTestLead(t, db, "Early", domain.LeadStatusLead)

		outcome := domain.CallOutcomeWon
		dto, err := svc.RecordCallOutcome(ctx, lead.ID, &domain.RecordCallOutcomeRequest{
			AgentID:    agent.ID,
			Connection: domain.CallConnected,
			Outcome:    &outcome,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.LeadStatusLead, dto.Status)

		// the call itself is still logged with a no-change audit entry
		var callCount int64
		require.NoError(t, db.Model(&domain.CallLog{}).Where("lead_id = ?", lead.ID).Count(&callCount).Error)
		assert.Equal(t, int64(1), callCount)

		var activities []domain.LeadActivity
		require.NoError(t, db.Where("lead_id = ?", lead.ID).Find(&activities).Error)
		require.Len(t, activities, 1)
		assert.Contains(t, activities[0].Note, "no status change")
	})

	t.Run("terminal status absorbs every outcome", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newWorkflowService(db)

		agent := testutil.CreateTestAgent(t, db, "Caller", domain.TeamSales, time.Now())
		lead := testutil.CreateTestLead(t, db, "Closed", domain.LeadStatusWon)

		outcome := domain.CallOutcomeNotInterested
		dto, err := svc.RecordCallOutcome(ctx, lead.ID, &domain.RecordCallOutcomeRequest{
			AgentID:    agent.ID,
			Connection: domain.CallConnected,
			Outcome:    &outcome,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.LeadStatusWon, dto.Status)
	})

	t.Run("site visit marks warm and schedules the visit", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newWorkflowService(db)

		agent := testutil.CreateTestAgent(t, db, "Caller", domain.TeamSales, time.Now())
		lead := testutil.CreateTestLead(t, db, "Visitor", domain.LeadStatusQualified)

		outcome := domain.CallOutcomeSiteVisit
		visitAt := time.Now().Add(72 * time.Hour)
		dto, err := svc.RecordCallOutcome(ctx, lead.ID, &domain.RecordCallOutcomeRequest{
			AgentID:     agent.ID,
			Connection:  domain.CallConnected,
			Outcome:     &outcome,
			SiteVisitAt: &visitAt,
		})
		require.NoError(t, err)
		require.NotNil(t, dto.Substatus)
		assert.Equal(t, domain.LeadSubstatusWarm, *dto.Substatus)
		assert.NotNil(t, dto.NextCallAt)

		var activities []domain.LeadActivity
		require.NoError(t, db.Where("lead_id = ?", lead.ID).Find(&activities).Error)
		require.Len(t, activities, 1)
		assert.True(t, activities[0].SiteVisit)
	})

	t.Run("unknown agent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newWorkflowService(db)
		lead := testutil.CreateTestLead(t, db, "Lead", domain.LeadStatusLead)

		_, err := svc.RecordCallOutcome(ctx, lead.ID, &domain.RecordCallOutcomeRequest{
			AgentID:    uuid.New(),
			Connection: domain.CallNotConnected,
		})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestWorkflowService_EvaluateLanguageComfort(t *testing.T) {
	ctx := testutil.UserContext()

	t.Run("reassigns when the owner lacks the language", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newWorkflowService(db)

		marathi := testutil.CreateTestLanguage(t, db, "Marathi")
		owner := testutil.CreateTestAgent(t, db, "Owner", domain.TeamPresales, time.Now().Add(-2*time.Hour))
		speaker := testutil.CreateTestAgent(t, db, "Speaker", domain.TeamPresales, time.Now().Add(-time.Hour))
		testutil.AddAgentLanguage(t, db, speaker, marathi)

		lead := testutil.CreateTestLead(t, db, "Lead", domain.LeadStatusLead)
		require.NoError(t, db.Model(lead).Update("presales_owner_id", owner.ID).Error)

		dto, err := svc.EvaluateLanguageComfort(ctx, lead.ID, &domain.LanguageComfortRequest{LanguageID: marathi.ID})
		require.NoError(t, err)
		require.NotNil(t, dto.LanguageID)
		assert.Equal(t, marathi.ID, *dto.LanguageID)
		require.NotNil(t, dto.PresalesOwnerID)
		assert.Equal(t, speaker.ID, *dto.PresalesOwnerID)
	})

	t.Run("keeps the owner when they support the language", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newWorkflowService(db)

		hindi := testutil.CreateTestLanguage(t, db, "Hindi")
		owner := testutil.CreateTestAgent(t, db, "Owner", domain.TeamPresales, time.Now())
		testutil.AddAgentLanguage(t, db, owner, hindi)

		lead := testutil.CreateTestLead(t, db, "Lead", domain.LeadStatusLead)
		require.NoError(t, db.Model(lead).Update("presales_owner_id", owner.ID).Error)

		dto, err := svc.EvaluateLanguageComfort(ctx, lead.ID, &domain.LanguageComfortRequest{LanguageID: hindi.ID})
		require.NoError(t, err)
		require.NotNil(t, dto.PresalesOwnerID)
		assert.Equal(t, owner.ID, *dto.PresalesOwnerID)
	})

	t.Run("no candidate leaves ownership unchanged", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newWorkflowService(db)

		tamil := testutil.CreateTestLanguage(t, db, "Tamil")
		owner := testutil.CreateTestAgent(t, db, "Owner", domain.TeamPresales, time.Now())

		lead := testutil.CreateTestLead(t, db, "Lead", domain.LeadStatusLead)
		require.NoError(t, db.Model(lead).Update("presales_owner_id", owner.ID).Error)

		dto, err := svc.EvaluateLanguageComfort(ctx, lead.ID, &domain.LanguageComfortRequest{LanguageID: tamil.ID})
		require.NoError(t, err)
		require.NotNil(t, dto.LanguageID)
		assert.Equal(t, tamil.ID, *dto.LanguageID)
		require.NotNil(t, dto.PresalesOwnerID)
		assert.Equal(t, owner.ID, *dto.PresalesOwnerID)
	})

	t.Run("qualified lead reassigns within the sales team", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newWorkflowService(db)

		gujarati := testutil.CreateTestLanguage(t, db, "Gujarati")
		salesOwner := testutil.CreateTestAgent(t, db, "Sales Owner", domain.TeamSales, time.Now().Add(-2*time.Hour))
		salesSpeaker := testutil.CreateTestAgent(t, db, "Sales Speaker", domain.TeamSales, time.Now().Add(-time.Hour))
		testutil.AddAgentLanguage(t, db, salesSpeaker, gujarati)
		// a presales speaker must not be considered for a qualified lead
		presalesSpeaker := testutil.CreateTestAgent(t, db, "Presales Speaker", domain.TeamPresales, time.Now().Add(-3*time.Hour))
		testutil.AddAgentLanguage(t, db, presalesSpeaker, gujarati)

		lead := testutil.CreateTestLead(t, db, "Lead", domain.LeadStatusQualified)
		require.NoError(t, db.Model(lead).Update("sales_owner_id", salesOwner.ID).Error)

		dto, err := svc.EvaluateLanguageComfort(ctx, lead.ID, &domain.LanguageComfortRequest{LanguageID: gujarati.ID})
		require.NoError(t, err)
		require.NotNil(t, dto.SalesOwnerID)
		assert.Equal(t, salesSpeaker.ID, *dto.SalesOwnerID)
	})
}

func TestWorkflowService_GetWorkflowStatus(t *testing.T) {
	ctx := testutil.UserContext()
	db := testutil.SetupTestDB(t)
	svc := newWorkflowService(db)

	lead := testutil.CreateTestLead(t, db, "Audited", domain.LeadStatusLead)

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		require.NoError(t, db.Create(&domain.LeadActivity{
			LeadID:    lead.ID,
			Note:      "entry",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	status, err := svc.GetWorkflowStatus(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, lead.ID, status.Lead.ID)
	require.Len(t, status.Activities, 10)
	// newest first
	assert.True(t, status.Activities[0].CreatedAt > status.Activities[9].CreatedAt)
}

func TestWorkflowService_Archive(t *testing.T) {
	ctx := testutil.UserContext()
	db := testutil.SetupTestDB(t)
	svc := newWorkflowService(db)

	lead := testutil.CreateTestLead(t, db, "Old", domain.LeadStatusLost)
	require.NoError(t, svc.Archive(ctx, lead.ID))

	_, err := svc.GetByID(ctx, lead.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	// archived, not erased
	var count int64
	require.NoError(t, db.Unscoped().Model(&domain.Lead{}).Where("id = ?", lead.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
