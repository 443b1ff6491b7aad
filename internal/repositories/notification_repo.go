package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"rentora/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	ListUnread(ctx context.Context, recipientID uuid.UUID, types []models.NotificationType) ([]*models.Notification, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
}

type notificationRepo struct {
	db Database
}

func NewNotificationRepo(db Database) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (id, recipient_id, sender_id, type, title, message, data, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false, NOW())
	`
	_, err := r.db.Exec(ctx, query, n.ID, n.RecipientID, n.SenderID, n.Type, n.Title, n.Message, n.Data)
	return err
}

func (r *notificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	n := &models.Notification{}
	query := `
		SELECT id, recipient_id, sender_id, type, title, message, data, read, created_at
		FROM notifications
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&n.ID, &n.RecipientID, &n.SenderID, &n.Type, &n.Title, &n.Message, &n.Data, &n.Read, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return n, nil
}

// ListUnread returns unread rows for the recipient filtered to the given
// types, oldest first. Per-recipient creation order is the only ordering
// contract.
func (r *notificationRepo) ListUnread(ctx context.Context, recipientID uuid.UUID, types []models.NotificationType) ([]*models.Notification, error) {
	query := `
		SELECT id, recipient_id, sender_id, type, title, message, data, read, created_at
		FROM notifications
		WHERE recipient_id = $1 AND read = false AND type = ANY($2)
		ORDER BY created_at ASC
	`
	typeStrings := make([]string, len(types))
	for i, t := range types {
		typeStrings[i] = string(t)
	}

	rows, err := r.db.Query(ctx, query, recipientID, typeStrings)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.SenderID, &n.Type, &n.Title, &n.Message, &n.Data, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

// MarkAsRead is idempotent and monotonic: the WHERE clause only ever flips
// false -> true, and re-marking an already-read row affects zero rows
// without error.
func (r *notificationRepo) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE notifications SET read = true WHERE id = $1 AND read = false`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
