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
)

func TestLeadActivityRepository_ListByLead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLeadActivityRepository(db)
	ctx := context.Background()

	lead := testutil.CreateTestLead(t, db, "Audit Lead", domain.LeadStatusLead)
	other := testutil.CreateTestLead(t, db, "Other Lead", domain.LeadStatusLead)

	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		entry := &domain.LeadActivity{
			LeadID:    lead.ID,
			Note:      "entry",
			LeadName:  lead.Name,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Append(ctx, entry))
	}
	require.NoError(t, repo.Append(ctx, &domain.LeadActivity{
		LeadID:    other.ID,
		Note:      "other",
		CreatedAt: base.Add(time.Hour),
	}))

	t.Run("newest first, limited", func(t *testing.T) {
		entries, err := repo.ListByLead(ctx, lead.ID, 10)
		require.NoError(t, err)
		require.Len(t, entries, 10)
		assert.Equal(t, base.Add(11*time.Minute).Unix(), entries[0].CreatedAt.Unix())
		assert.Equal(t, base.Add(2*time.Minute).Unix(), entries[9].CreatedAt.Unix())
		for _, e := range entries {
			assert.Equal(t, lead.ID, e.LeadID)
		}
	})

	t.Run("zero limit defaults to ten", func(t *testing.T) {
		entries, err := repo.ListByLead(ctx, lead.ID, 0)
		require.NoError(t, err)
		assert.Len(t, entries, 10)
	})

	count, err := repo.CountByLead(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(12), count)
}
