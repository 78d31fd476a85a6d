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
)

func TestAssignmentService_SelectAgent(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates fairly across the team", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewAgentRepository(db)
		svc := service.NewAssignmentService(repo, zap.NewNop())

		base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		a := testutil.CreateTestAgent(t, db, "A", domain.TeamPresales, base)
		b := testutil.CreateTestAgent(t, db, "B", domain.TeamPresales, base.Add(time.Minute))
		c := testutil.CreateTestAgent(t, db, "C", domain.TeamPresales, base.Add(2*time.Minute))

		picks := make(map[string]int)
		for i := 0; i < 6; i++ {
			agent, err := svc.SelectAgent(ctx, domain.TeamPresales, nil)
			require.NoError(t, err)
			picks[agent.Name]++
		}

		// two full rotations: everyone picked exactly twice
		assert.Equal(t, 2, picks[a.Name])
		assert.Equal(t, 2, picks[b.Name])
		assert.Equal(t, 2, picks[c.Name])
	})

	t.Run("selection advances the cursor", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewAgentRepository(db)
		svc := service.NewAssignmentService(repo, zap.NewNop())

		base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		a := testutil.CreateTestAgent(t, db, "A", domain.TeamSales, base)
		testutil.CreateTestAgent(t, db, "B", domain.TeamSales, base.Add(time.Minute))

		first, err := svc.SelectAgent(ctx, domain.TeamSales, nil)
		require.NoError(t, err)
		assert.Equal(t, a.ID, first.ID)

		got, err := repo.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.True(t, got.LastAssignedAt.After(base))
	})

	t.Run("empty candidate set returns NoEligibleAgentError", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := service.NewAssignmentService(repository.NewAgentRepository(db), zap.NewNop())

		testutil.CreateTestAgent(t, db, "Wrong Team", domain.TeamPresales, time.Now())

		_, err := svc.SelectAgent(ctx, domain.TeamSales, nil)
		require.Error(t, err)
		assert.True(t, service.IsNoEligibleAgent(err))
	})

	t.Run("invalid team is a validation error", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := service.NewAssignmentService(repository.NewAgentRepository(db), zap.NewNop())

		_, err := svc.SelectAgent(ctx, domain.Team("support"), nil)
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("filters narrow the rotation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := service.NewAssignmentService(repository.NewAgentRepository(db), zap.NewNop())

		lang := testutil.CreateTestLanguage(t, db, "Kannada")
		base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		// earliest cursor but missing the language
		testutil.CreateTestAgent(t, db, "No Lang", domain.TeamSales, base)
		speaker := testutil.CreateTestAgent(t, db, "Speaker", domain.TeamSales, base.Add(time.Hour))
		testutil.AddAgentLanguage(t, db, speaker, lang)

		agent, err := svc.SelectAgent(ctx, domain.TeamSales, &repository.AgentFilters{LanguageID: &lang.ID})
		require.NoError(t, err)
		assert.Equal(t, speaker.ID, agent.ID)
	})
}
