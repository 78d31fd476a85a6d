package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridian-estates/pipeline-api/internal/domain"
	"github.com/veridian-estates/pipeline-api/internal/repository"
	"github.com/veridian-estates/pipeline-api/internal/testutil"
	"gorm.io/gorm"
)

func TestLeadRepository_UpdateFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLeadRepository(db)
	ctx := context.Background()

	agent := testutil.CreateTestAgent(t, db, "Presales", domain.TeamPresales, time.Now())
	lead := testutil.CreateTestLead(t, db, "Lead", domain.LeadStatusLead)
	require.NoError(t, db.Model(lead).Update("presales_owner_id", agent.ID).Error)

	hot := domain.LeadSubstatusHot
	err := repo.UpdateFields(ctx, lead.ID, map[string]interface{}{
		"status":            domain.LeadStatusQualified,
		"substatus":         hot,
		"is_qualified":      true,
		"presales_owner_id": nil,
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LeadStatusQualified, got.Status)
	require.NotNil(t, got.Substatus)
	assert.Equal(t, hot, *got.Substatus)
	assert.True(t, got.IsQualified)
	assert.Nil(t, got.PresalesOwnerID)
	// untouched fields survive the partial update
	assert.Equal(t, "Lead", got.Name)
}

func TestLeadRepository_ListUnassigned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLeadRepository(db)
	ctx := context.Background()

	agent := testutil.CreateTestAgent(t, db, "Owner", domain.TeamPresales, time.Now())
	owned := testutil.CreateTestLead(t, db, "Owned", domain.LeadStatusLead)
	require.NoError(t, db.Model(owned).Update("presales_owner_id", agent.ID).Error)
	orphanOld := testutil.CreateTestLead(t, db, "Orphan Old", domain.LeadStatusLead)
	require.NoError(t, db.Model(orphanOld).Update("created_at", time.Now().Add(-time.Hour)).Error)
	orphanNew := testutil.CreateTestLead(t, db, "Orphan New", domain.LeadStatusQualified)

	leads, err := repo.ListUnassigned(ctx, 50)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, orphanOld.ID, leads[0].ID)
	assert.Equal(t, orphanNew.ID, leads[1].ID)
}

func TestLeadRepository_ListDueFollowUps(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLeadRepository(db)
	ctx := context.Background()

	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	due := testutil.CreateTestLead(t, db, "Due", domain.LeadStatusQualified)
	require.NoError(t, db.Model(due).Update("next_call_at", past).Error)
	notYet := testutil.CreateTestLead(t, db, "Not Yet", domain.LeadStatusLead)
	require.NoError(t, db.Model(notYet).Update("next_call_at", future).Error)
	won := testutil.CreateTestLead(t, db, "Won", domain.LeadStatusWon)
	require.NoError(t, db.Model(won).Update("next_call_at", past).Error)
	testutil.CreateTestLead(t, db, "No Schedule", domain.LeadStatusLead)

	leads, err := repo.ListDueFollowUps(ctx, now, 0)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, due.ID, leads[0].ID)
}

func TestLeadRepository_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLeadRepository(db)
	ctx := context.Background()

	lead := testutil.CreateTestLead(t, db, "Archived", domain.LeadStatusLost)
	require.NoError(t, repo.Delete(ctx, lead.ID))

	_, err := repo.GetByID(ctx, lead.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// soft delete keeps the row
	var count int64
	require.NoError(t, db.Unscoped().Model(&domain.Lead{}).Where("id = ?", lead.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLeadRepository_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLeadRepository(db)
	ctx := context.Background()

	testutil.CreateTestLead(t, db, "Alpha", domain.LeadStatusLead)
	qualified := testutil.CreateTestLead(t, db, "Beta", domain.LeadStatusQualified)
	warm := domain.LeadSubstatusWarm
	require.NoError(t, db.Model(qualified).Update("substatus", warm).Error)

	t.Run("filter by status", func(t *testing.T) {
		status := domain.LeadStatusQualified
		leads, total, err := repo.List(ctx, &domain.ListLeadsFilter{Status: &status, Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, leads, 1)
		assert.Equal(t, qualified.ID, leads[0].ID)
	})

	t.Run("search by name", func(t *testing.T) {
		leads, total, err := repo.List(ctx, &domain.ListLeadsFilter{Search: "Alph", Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, leads, 1)
		assert.Equal(t, "Alpha", leads[0].Name)
	})
}
