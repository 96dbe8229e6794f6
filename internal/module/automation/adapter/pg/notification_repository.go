package pg

import (
	"context"
	"fmt"

	"github.com/jinford/seo-autopilot/internal/module/automation/domain"
)

// NotificationRepository は通知の永続化アダプターです
type NotificationRepository struct {
	db DBTX
}

// NewNotificationRepository は新しいNotificationRepositoryを作成します
func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

var _ domain.NotificationRepository = (*NotificationRepository)(nil)

// Create は新しい通知を永続化します
func (r *NotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO notifications (id, user_id, type, title, message, action_url, read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		notification.ID, notification.UserID, notification.Type, notification.Title,
		notification.Message, notification.ActionURL, notification.Read, notification.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}
