package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridian-estates/pipeline-api/internal/repository"
	"github.com/veridian-estates/pipeline-api/internal/service"
	"github.com/veridian-estates/pipeline-api/internal/testutil"
	"go.uber.org/zap"
)

func TestLeadNumberService_Generate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewLeadNumberService(repository.NewNumberSequenceRepository(db), zap.NewNop())
	ctx := context.Background()

	year := time.Now().Year()

	first, err := svc.Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("LD-%d-0001", year), first)

	second, err := svc.Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("LD-%d-0002", year), second)

	current, err := svc.GetCurrentSequence(ctx, year)
	require.NoError(t, err)
	assert.Equal(t, 2, current)
}

func TestLeadNumberService_InitializeSequence(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewLeadNumberService(repository.NewNumberSequenceRepository(db), zap.NewNop())
	ctx := context.Background()

	year := time.Now().Year()
	require.NoError(t, svc.InitializeSequence(ctx, year, 500))

	number, err := svc.Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("LD-%d-0501", year), number)

	// never lowers an existing sequence
	require.NoError(t, svc.InitializeSequence(ctx, year, 10))
	current, err := svc.GetCurrentSequence(ctx, year)
	require.NoError(t, err)
	assert.Equal(t, 501, current)
}
