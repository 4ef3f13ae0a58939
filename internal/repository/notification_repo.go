package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/stocklens/catalog-api/internal/models"
)

// NotificationRepository owns review notification records.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `id, message, type, sender_id, receiver_role, related_id, read, timestamp`

// Create inserts a notification and fills in its storage id and timestamp.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	const q = `
        INSERT INTO notifications (id, message, type, sender_id, receiver_role, related_id, read)
        VALUES ($1, $2, $3, $4, $5, $6, false)
        RETURNING timestamp`

	return r.db.QueryRowxContext(ctx, q, n.ID, n.Message, n.Type, n.SenderID, n.ReceiverRole, n.RelatedID).Scan(&n.Timestamp)
}

// DeleteMatching removes every notification correlated with
// (relatedID, senderID, type). Zero matches is not an error; the
// operation is idempotent by construction.
func (r *NotificationRepository) DeleteMatching(ctx context.Context, relatedID, senderID, notifType string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE related_id = $1 AND sender_id = $2 AND type = $3`,
		relatedID, senderID, notifType)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListByType returns notifications of one type, most recent first.
func (r *NotificationRepository) ListByType(ctx context.Context, notifType string) ([]models.Notification, error) {
	const q = `SELECT ` + notificationColumns + ` FROM notifications WHERE type = $1 ORDER BY timestamp DESC`
	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, q, notifType); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead flags a notification as read. Returns rows affected.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = true WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
