package service

import (
	"context"

	"reelroom/internal/models"
	"reelroom/internal/repository"
)

type NotificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// List returns the user's notifications newest first and marks them read.
// The returned items keep the read state they had before the call.
func (s *NotificationService) List(ctx context.Context, userID uint) ([]models.Notification, error) {
	items, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *NotificationService) Clear(ctx context.Context, userID uint) (int64, error) {
	return s.repo.DeleteAllForUser(ctx, userID)
}
