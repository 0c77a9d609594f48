package repository

import (
	"context"

	"reelroom/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository reads and clears a recipient's notifications.
type NotificationRepository interface {
	ListForUser(ctx context.Context, userID uint) ([]models.Notification, error)
	MarkAllRead(ctx context.Context, userID uint) error
	DeleteAllForUser(ctx context.Context, userID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// ListForUser returns userID's notifications newest first with the sender
// hydrated.
func (r *notificationRepository) ListForUser(ctx context.Context, userID uint) ([]models.Notification, error) {
	out := make([]models.Notification, 0)
	err := r.db.WithContext(ctx).
		Preload("From", publicUser).
		Where("to_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("to_id = ? AND read = ?", userID, false).
		Update("read", true).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *notificationRepository) DeleteAllForUser(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("to_id = ?", userID).Delete(&models.Notification{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}
