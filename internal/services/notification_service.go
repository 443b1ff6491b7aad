package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"rentora/internal/caching"
	"rentora/internal/common"
	"rentora/internal/models"
	"rentora/internal/repositories"
)

// snapshotTTL bounds how stale a cached unread feed may get even if an
// invalidation is missed.
const snapshotTTL = 10 * time.Second

// NotificationService handles fan-out, role-scoped unread feeds and
// mark-read for per-recipient notifications.
type NotificationService interface {
	Send(ctx context.Context, recipientID, senderID uuid.UUID, notifType models.NotificationType, title, message string, payload *models.NotificationPayload) (*models.Notification, error)
	GetUnread(ctx context.Context, userID uuid.UUID, role models.UserRole) ([]*models.Notification, error)
	MarkAsRead(ctx context.Context, notificationID uuid.UUID) error
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	userRepo         repositories.UserRepository
	cacheSvc         caching.CacheService
}

// NewNotificationService creates a new notification service
func NewNotificationService(notificationRepo repositories.NotificationRepository, userRepo repositories.UserRepository, cacheSvc caching.CacheService) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		cacheSvc:         cacheSvc,
	}
}

// Send persists one notification for the recipient and drops their cached
// unread snapshot so the next poll sees it.
func (s *notificationService) Send(ctx context.Context, recipientID, senderID uuid.UUID, notifType models.NotificationType, title, message string, payload *models.NotificationPayload) (*models.Notification, error) {
	recipient, err := s.userRepo.GetByID(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("look up recipient: %w", err)
	}
	if recipient == nil {
		return nil, fmt.Errorf("recipient %s: %w", recipientID, common.ErrNotFound)
	}

	data, err := payload.ToJSONB()
	if err != nil {
		return nil, fmt.Errorf("encode notification payload: %w", err)
	}

	notification := &models.Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        notifType,
		Title:       title,
		Message:     message,
		Data:        data,
		Read:        false,
		CreatedAt:   time.Now(),
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("save notification: %w", err)
	}

	if err := s.cacheSvc.InvalidateUnreadSnapshot(ctx, recipientID); err != nil {
		log.Printf("Failed to invalidate unread snapshot for %s: %v", recipientID, err)
	}

	return notification, nil
}

// GetUnread returns the unread feed for the user, filtered to the types the
// role cares about, oldest first. The Redis snapshot absorbs the poll load.
func (s *notificationService) GetUnread(ctx context.Context, userID uuid.UUID, role models.UserRole) ([]*models.Notification, error) {
	cached, err := s.cacheSvc.GetUnreadSnapshot(ctx, userID, role)
	if err != nil {
		log.Printf("Unread snapshot read failed for %s: %v", userID, err)
	} else if cached != nil {
		return cached, nil
	}

	notifications, err := s.notificationRepo.ListUnread(ctx, userID, models.TypesForRole(role))
	if err != nil {
		return nil, fmt.Errorf("list unread notifications: %w", err)
	}

	if err := s.cacheSvc.SetUnreadSnapshot(ctx, userID, role, notifications, snapshotTTL); err != nil {
		log.Printf("Unread snapshot write failed for %s: %v", userID, err)
	}

	return notifications, nil
}

// MarkAsRead flips the row to read. Idempotent: repeating the call for an
// already-read notification is a no-op, never an error. Unknown ids are
// NotFound.
func (s *notificationService) MarkAsRead(ctx context.Context, notificationID uuid.UUID) error {
	notification, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return fmt.Errorf("look up notification: %w", err)
	}
	if notification == nil {
		return fmt.Errorf("notification %s: %w", notificationID, common.ErrNotFound)
	}
	if notification.Read {
		return nil
	}

	if err := s.notificationRepo.MarkAsRead(ctx, notificationID); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	if err := s.cacheSvc.InvalidateUnreadSnapshot(ctx, notification.RecipientID); err != nil {
		log.Printf("Failed to invalidate unread snapshot for %s: %v", notification.RecipientID, err)
	}

	return nil
}
