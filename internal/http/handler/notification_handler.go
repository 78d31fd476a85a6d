package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/veridian-estates/pipeline-api/internal/auth"
	"github.com/veridian-estates/pipeline-api/internal/domain"
	"github.com/veridian-estates/pipeline-api/internal/service"
	"go.uber.org/zap"
)

// NotificationHandler serves the authenticated agent's in-app notifications.
// Agents are provisioned with their directory object ID as primary key, so
// the authenticated user ID doubles as the agent ID.
type NotificationHandler struct {
	notificationService *service.NotificationService
	logger              *zap.Logger
}

func NewNotificationHandler(notificationService *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// @Summary List notifications
// @Description List the authenticated agent's notifications, newest first
// @Tags Notifications
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param unread query bool false "Only unread notifications"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Router /notifications [get]
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	agentID, ok := h.agentID(w, r)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, total, err := h.notificationService.ListForAgent(r.Context(), agentID, page, pageSize, unreadOnly)
	if err != nil {
		h.logger.Error("failed to list notifications", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	respondJSON(w, http.StatusOK, domain.PaginatedResponse{
		Data:       notifications,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

// @Summary Unread notification count
// @Tags Notifications
// @Produce json
// @Success 200 {object} map[string]int
// @Security BearerAuth
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	agentID, ok := h.agentID(w, r)
	if !ok {
		return
	}

	count, err := h.notificationService.CountUnread(r.Context(), agentID)
	if err != nil {
		h.logger.Error("failed to count unread notifications", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"unread": count})
}

// @Summary Mark notification read
// @Tags Notifications
// @Param id path string true "Notification ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	agentID, ok := h.agentID(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	if err := h.notificationService.MarkAsRead(r.Context(), agentID, id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotificationNotFound):
			respondWithError(w, http.StatusNotFound, "Notification not found")
		case errors.Is(err, service.ErrNotificationNotOwned):
			respondWithError(w, http.StatusForbidden, "Notification belongs to another agent")
		default:
			h.logger.Error("failed to mark notification read", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Mark all notifications read
// @Tags Notifications
// @Success 204
// @Security BearerAuth
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	agentID, ok := h.agentID(w, r)
	if !ok {
		return
	}

	if err := h.notificationService.MarkAllAsRead(r.Context(), agentID); err != nil {
		h.logger.Error("failed to mark notifications read", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) agentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return userCtx.UserID, true
}
