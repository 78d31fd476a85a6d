package service_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridian-estates/pipeline-api/internal/domain"
	"github.com/veridian-estates/pipeline-api/internal/repository"
	"github.com/veridian-estates/pipeline-api/internal/service"
	"github.com/veridian-estates/pipeline-api/internal/storage"
	"github.com/veridian-estates/pipeline-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newImportService(t *testing.T, db *gorm.DB) *service.ImportService {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return service.NewImportService(
		newWorkflowService(db),
		repository.NewReferenceRepository(db),
		repository.NewImportJobRepository(db),
		store,
		zap.NewNop(),
	)
}

func TestImportService_ImportCSV(t *testing.T) {
	ctx := testutil.UserContext()

	t.Run("creates a lead per valid row and collects row errors", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newImportService(t, db)

		source := testutil.CreateTestLeadSource(t, db, "Website")
		testutil.CreateTestAgent(t, db, "Presales", domain.TeamPresales, time.Now().Add(-time.Hour))

		csvData := strings.Join([]string{
			"name,email,phone,source,value_tier,notes",
			"Asha Kulkarni,asha@example.com,+47 900 11 223," + source.Slug + ",mid,walk-in referral",
			"Rohan Mehta,rohan@example.com,,,high,",
			",missing@example.com,,,,",
			"Bad Source,,,no-such-source,,",
		}, "\n")

		result, err := svc.ImportCSV(ctx, "leads.csv", strings.NewReader(csvData))
		require.NoError(t, err)

		assert.Equal(t, 4, result.TotalRows)
		assert.Equal(t, 2, result.CreatedCount)
		assert.Equal(t, 2, result.FailedCount)
		require.Len(t, result.Errors, 2)
		assert.Contains(t, result.Errors[0], "name is required")
		assert.Contains(t, result.Errors[1], "unknown source")

		var leadCount int64
		require.NoError(t, db.Model(&domain.Lead{}).Count(&leadCount).Error)
		assert.Equal(t, int64(2), leadCount)

		var leads []domain.Lead
		require.NoError(t, db.Order("lead_number ASC").Find(&leads).Error)
		for _, lead := range leads {
			assert.Equal(t, domain.IntakeChannelImport, lead.IntakeChannel)
		}

		jobs, err := svc.ListJobs(ctx, 10)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, "leads.csv", jobs[0].FileName)
		assert.NotEmpty(t, jobs[0].StoragePath)
	})

	t.Run("counts malformed rows in the total", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newImportService(t, db)

		testutil.CreateTestAgent(t, db, "Presales", domain.TeamPresales, time.Now().Add(-time.Hour))

		// second row has too many fields and fails the csv parse
		csvData := strings.Join([]string{
			"name,email",
			"Asha Kulkarni,asha@example.com",
			"Rohan Mehta,rohan@example.com,extra-field",
			"Meera Nair,meera@example.com",
		}, "\n")

		result, err := svc.ImportCSV(ctx, "ragged.csv", strings.NewReader(csvData))
		require.NoError(t, err)

		assert.Equal(t, 3, result.TotalRows)
		assert.Equal(t, 2, result.CreatedCount)
		assert.Equal(t, 1, result.FailedCount)
		assert.Equal(t, result.TotalRows, result.CreatedCount+result.FailedCount)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "row 3")
	})

	t.Run("rejects a file without a name column", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newImportService(t, db)

		_, err := svc.ImportCSV(ctx, "bad.csv", strings.NewReader("email,phone\na@b.c,123\n"))
		assert.ErrorIs(t, err, service.ErrValidation)
	})
}
