package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridian-estates/pipeline-api/internal/domain"
	"github.com/veridian-estates/pipeline-api/internal/repository"
	"github.com/veridian-estates/pipeline-api/internal/service"
	"github.com/veridian-estates/pipeline-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newFollowUpService(db *gorm.DB) *service.FollowUpService {
	return service.NewFollowUpService(
		repository.NewLeadRepository(db),
		repository.NewNotificationRepository(db),
		zap.NewNop(),
	)
}

func TestFollowUpService_SweepDueFollowUps(t *testing.T) {
	ctx := context.Background()

	t.Run("notifies the current owner of each due lead", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newFollowUpService(db)

		presales := testutil.CreateTestAgent(t, db, "Presales", domain.TeamPresales, time.Now())
		sales := testutil.CreateTestAgent(t, db, "Sales", domain.TeamSales, time.Now())

		overdue := time.Now().Add(-time.Hour)
		fresh := testutil.CreateTestLead(t, db, "Fresh", domain.LeadStatusLead)
		require.NoError(t, db.Model(fresh).Updates(map[string]interface{}{
			"next_call_at":      overdue,
			"presales_owner_id": presales.ID,
		}).Error)
		qualified := testutil.CreateTestLead(t, db, "Qualified", domain.LeadStatusQualified)
		require.NoError(t, db.Model(qualified).Updates(map[string]interface{}{
			"next_call_at":   overdue,
			"sales_owner_id": sales.ID,
		}).Error)

		notified, skipped, err := svc.SweepDueFollowUps(ctx, time.Now(), 100)
		require.NoError(t, err)
		assert.Equal(t, 2, notified)
		assert.Zero(t, skipped)

		var presalesNotes, salesNotes int64
		require.NoError(t, db.Model(&domain.Notification{}).Where("agent_id = ?", presales.ID).Count(&presalesNotes).Error)
		require.NoError(t, db.Model(&domain.Notification{}).Where("agent_id = ?", sales.ID).Count(&salesNotes).Error)
		assert.Equal(t, int64(1), presalesNotes)
		assert.Equal(t, int64(1), salesNotes)
	})

	t.Run("skips unowned leads", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newFollowUpService(db)

		lead := testutil.CreateTestLead(t, db, "Orphan", domain.LeadStatusLead)
		require.NoError(t, db.Model(lead).Update("next_call_at", time.Now().Add(-time.Hour)).Error)

		notified, skipped, err := svc.SweepDueFollowUps(ctx, time.Now(), 100)
		require.NoError(t, err)
		assert.Zero(t, notified)
		assert.Equal(t, 1, skipped)
	})

	t.Run("dedups repeat reminders within the window", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newFollowUpService(db)

		owner := testutil.CreateTestAgent(t, db, "Owner", domain.TeamPresales, time.Now())
		lead := testutil.CreateTestLead(t, db, "Nagged", domain.LeadStatusLead)
		require.NoError(t, db.Model(lead).Updates(map[string]interface{}{
			"next_call_at":      time.Now().Add(-time.Hour),
			"presales_owner_id": owner.ID,
		}).Error)

		notified, _, err := svc.SweepDueFollowUps(ctx, time.Now(), 100)
		require.NoError(t, err)
		assert.Equal(t, 1, notified)

		// second sweep an hour later stays silent
		notified, skipped, err := svc.SweepDueFollowUps(ctx, time.Now().Add(time.Hour), 100)
		require.NoError(t, err)
		assert.Zero(t, notified)
		assert.Equal(t, 1, skipped)
	})
}

func TestFollowUpService_DueCountForAgent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newFollowUpService(db)
	ctx := context.Background()

	owner := testutil.CreateTestAgent(t, db, "Owner", domain.TeamPresales, time.Now())
	other := testutil.CreateTestAgent(t, db, "Other", domain.TeamPresales, time.Now())

	overdue := time.Now().Add(-time.Hour)
	mine := testutil.CreateTestLead(t, db, "Mine", domain.LeadStatusLead)
	require.NoError(t, db.Model(mine).Updates(map[string]interface{}{
		"next_call_at":      overdue,
		"presales_owner_id": owner.ID,
	}).Error)
	theirs := testutil.CreateTestLead(t, db, "Theirs", domain.LeadStatusLead)
	require.NoError(t, db.Model(theirs).Updates(map[string]interface{}{
		"next_call_at":      overdue,
		"presales_owner_id": other.ID,
	}).Error)

	count, err := svc.DueCountForAgent(ctx, owner.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
