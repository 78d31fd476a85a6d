package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/veridian-estates/pipeline-api/internal/auth"
	"github.com/veridian-estates/pipeline-api/internal/database"
	"github.com/veridian-estates/pipeline-api/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var counter atomic.Int64

// nextN returns a process-unique integer for test data
func nextN() int64 {
	return counter.Add(1)
}

// SetupTestDB opens an isolated in-memory SQLite database and migrates the
// full schema. Each call gets its own database; the connection is closed when
// the test finishes.
func SetupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open in-memory test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps the in-memory database alive and shared
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db), "Failed to migrate test schema")

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// CreateTestCentre inserts a centre with a unique code
func CreateTestCentre(t *testing.T, db *gorm.DB, name string) *domain.Centre {
	centre := &domain.Centre{
		Name: name,
		Code: fmt.Sprintf("C%03d", nextN()%1000),
	}
	require.NoError(t, db.Create(centre).Error)
	return centre
}

// CreateTestLanguage inserts a language with a unique code
func CreateTestLanguage(t *testing.T, db *gorm.DB, name string) *domain.Language {
	lang := &domain.Language{
		Name: name,
		Code: fmt.Sprintf("l%03d", nextN()%1000),
	}
	require.NoError(t, db.Create(lang).Error)
	return lang
}

// CreateTestLeadSource inserts a lead source with a unique slug
func CreateTestLeadSource(t *testing.T, db *gorm.DB, name string) *domain.LeadSource {
	source := &domain.LeadSource{
		Name: name,
		Slug: fmt.Sprintf("source-%d", nextN()),
	}
	require.NoError(t, db.Create(source).Error)
	return source
}

// CreateTestAgent inserts an active agent. The rotation cursor is set to the
// given time so tests control the round-robin ordering.
func CreateTestAgent(t *testing.T, db *gorm.DB, name string, team domain.Team, lastAssigned time.Time) *domain.Agent {
	agent := &domain.Agent{
		Name:           name,
		Email:          fmt.Sprintf("agent%d@example.com", nextN()),
		Team:           team,
		Active:         true,
		LastAssignedAt: lastAssigned,
	}
	require.NoError(t, db.Create(agent).Error)
	return agent
}

// AddAgentLanguage attaches a supported language to an agent
func AddAgentLanguage(t *testing.T, db *gorm.DB, agent *domain.Agent, lang *domain.Language) {
	require.NoError(t, db.Model(agent).Association("Languages").Append(lang))
}

// CreateTestLead inserts a lead in the given status with a unique lead number
func CreateTestLead(t *testing.T, db *gorm.DB, name string, status domain.LeadStatus) *domain.Lead {
	lead := &domain.Lead{
		LeadNumber:    fmt.Sprintf("LD-2026-%04d", nextN()),
		Name:          name,
		Phone:         fmt.Sprintf("+47 900 %05d", nextN()%100000),
		Status:        status,
		IsQualified:   status == domain.LeadStatusQualified,
		IntakeChannel: domain.IntakeChannelManual,
	}
	require.NoError(t, db.Create(lead).Error)
	return lead
}

// UserContext returns a request context carrying an authenticated test user
func UserContext(roles ...domain.UserRoleType) context.Context {
	if len(roles) == 0 {
		roles = []domain.UserRoleType{domain.RoleManager}
	}
	userCtx := &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: "Test User",
		Email:       "test@example.com",
		Roles:       roles,
	}
	return auth.WithUserContext(context.Background(), userCtx)
}
