package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridian-estates/pipeline-api/internal/auth"
	"github.com/veridian-estates/pipeline-api/internal/domain"
	"github.com/veridian-estates/pipeline-api/internal/http/handler"
	"github.com/veridian-estates/pipeline-api/internal/repository"
	"github.com/veridian-estates/pipeline-api/internal/service"
	"github.com/veridian-estates/pipeline-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newNotificationHandler(db *gorm.DB) *handler.NotificationHandler {
	log := zap.NewNop()
	svc := service.NewNotificationService(repository.NewNotificationRepository(db), log)
	return handler.NewNotificationHandler(svc, log)
}

func notificationRouter(h *handler.NotificationHandler) chi.Router {
	r := chi.NewRouter()
	r.Get("/notifications", h.List)
	r.Get("/notifications/unread-count", h.UnreadCount)
	r.Post("/notifications/read-all", h.MarkAllAsRead)
	r.Post("/notifications/{id}/read", h.MarkAsRead)
	return r
}

// agents are keyed by the directory object id, so the authenticated user id
// is the agent id
func agentContext(agentID uuid.UUID) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      agentID,
		DisplayName: "Agent",
		Email:       "agent@example.com",
		Roles:       []domain.UserRoleType{domain.RoleSales},
	})
}

func seedNotification(t *testing.T, db *gorm.DB, agentID uuid.UUID, read bool) *domain.Notification {
	n := &domain.Notification{
		AgentID:    agentID,
		Type:       string(domain.NotificationLeadAssigned),
		Title:      "New lead assigned",
		Message:    "Lead (LD-2026-0001)",
		EntityType: "lead",
		Read:       read,
	}
	require.NoError(t, db.Create(n).Error)
	return n
}

func TestNotificationHandler_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newNotificationHandler(db)
	r := notificationRouter(h)

	agent := testutil.CreateTestAgent(t, db, "Agent", domain.TeamSales, time.Now())
	ctx := agentContext(agent.ID)

	seedNotification(t, db, agent.ID, false)
	seedNotification(t, db, agent.ID, true)
	other := testutil.CreateTestAgent(t, db, "Other", domain.TeamSales, time.Now())
	seedNotification(t, db, other.ID, false)

	t.Run("lists only own notifications", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/notifications", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp domain.PaginatedResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(2), resp.Total)
	})

	t.Run("unread filter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/notifications?unread=true", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp domain.PaginatedResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.Total)
	})

	t.Run("missing auth context is 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestNotificationHandler_MarkAsRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newNotificationHandler(db)
	r := notificationRouter(h)

	agent := testutil.CreateTestAgent(t, db, "Agent", domain.TeamSales, time.Now())
	stranger := testutil.CreateTestAgent(t, db, "Stranger", domain.TeamSales, time.Now())
	n := seedNotification(t, db, agent.ID, false)

	t.Run("another agent gets 403", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/notifications/"+n.ID.String()+"/read", nil).
			WithContext(agentContext(stranger.ID))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("owner marks read", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/notifications/"+n.ID.String()+"/read", nil).
			WithContext(agentContext(agent.ID))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		var got domain.Notification
		require.NoError(t, db.First(&got, "id = ?", n.ID).Error)
		assert.True(t, got.Read)
	})

	t.Run("unknown notification is 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/notifications/"+uuid.NewString()+"/read", nil).
			WithContext(agentContext(agent.ID))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestNotificationHandler_UnreadCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newNotificationHandler(db)
	r := notificationRouter(h)

	agent := testutil.CreateTestAgent(t, db, "Agent", domain.TeamSales, time.Now())
	seedNotification(t, db, agent.ID, false)
	seedNotification(t, db, agent.ID, false)
	seedNotification(t, db, agent.ID, true)

	req := httptest.NewRequest(http.MethodGet, "/notifications/unread-count", nil).WithContext(agentContext(agent.ID))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp["unread"])
}
