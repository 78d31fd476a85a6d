package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/veridian-estates/pipeline-api/internal/domain"
	"github.com/veridian-estates/pipeline-api/internal/mapper"
	"github.com/veridian-estates/pipeline-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotificationNotFound is returned when a notification is not found
var ErrNotificationNotFound = errors.New("notification not found")

// ErrNotificationNotOwned is returned when trying to access a notification
// owned by another agent
var ErrNotificationNotOwned = errors.New("notification does not belong to current agent")

// NotificationService handles in-app notifications for agents
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

func NewNotificationService(
	notificationRepo *repository.NotificationRepository,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// CreateForAgent creates a notification for a specific agent
func (s *NotificationService) CreateForAgent(
	ctx context.Context,
	agentID uuid.UUID,
	notificationType domain.NotificationType,
	title string,
	message string,
	entityType string,
	entityID *uuid.UUID,
) (*domain.NotificationDTO, error) {
	notification := &domain.Notification{
		AgentID:    agentID,
		Type:       string(notificationType),
		Title:      title,
		Message:    message,
		EntityType: entityType,
		EntityID:   entityID,
		Read:       false,
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	s.logger.Info("notification created",
		zap.String("notification_id", notification.ID.String()),
		zap.String("agent_id", agentID.String()),
		zap.String("type", string(notificationType)),
	)

	dto := mapper.ToNotificationDTO(notification)
	return &dto, nil
}

// ListForAgent returns an agent's notifications, newest first
func (s *NotificationService) ListForAgent(ctx context.Context, agentID uuid.UUID, page, pageSize int, unreadOnly bool) ([]domain.NotificationDTO, int64, error) {
	notifications, total, err := s.notificationRepo.ListByAgent(ctx, agentID, page, pageSize, unreadOnly)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	dtos := make([]domain.NotificationDTO, len(notifications))
	for i := range notifications {
		dtos[i] = mapper.ToNotificationDTO(&notifications[i])
	}
	return dtos, total, nil
}

// MarkAsRead marks a notification read, verifying ownership
func (s *NotificationService) MarkAsRead(ctx context.Context, agentID, notificationID uuid.UUID) error {
	notification, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to get notification: %w", err)
	}

	if notification.AgentID != agentID {
		return ErrNotificationNotOwned
	}

	return s.notificationRepo.MarkAsRead(ctx, notificationID)
}

// MarkAllAsRead marks all of an agent's notifications read
func (s *NotificationService) MarkAllAsRead(ctx context.Context, agentID uuid.UUID) error {
	return s.notificationRepo.MarkAllAsRead(ctx, agentID)
}

// CountUnread returns the number of unread notifications for an agent
func (s *NotificationService) CountUnread(ctx context.Context, agentID uuid.UUID) (int, error) {
	return s.notificationRepo.CountUnread(ctx, agentID)
}
