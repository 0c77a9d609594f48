// Package service holds the business rules that sit between the HTTP
// handlers and the repositories.
package service

import (
	"context"

	"reelroom/internal/models"
	"reelroom/internal/observability"
)

// MediaStore hosts user supplied images and returns durable URLs for them.
type MediaStore interface {
	Upload(ctx context.Context, data string) (string, error)
	Delete(ctx context.Context, url string) error
}

// NotificationPublisher pushes a stored notification to live sessions.
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, n *models.Notification) error
}

// asyncRunner runs fn outside the request. Tests swap it for a synchronous
// runner.
type asyncRunner func(fn func())

func goAsync(fn func()) { go fn() }

// deleteMediaAsync removes url from the media host without blocking the
// caller; failures are logged.
func deleteMediaAsync(run asyncRunner, ctx context.Context, media MediaStore, url string) {
	if media == nil || url == "" {
		return
	}
	ctx = context.WithoutCancel(ctx)
	run(func() {
		if err := media.Delete(ctx, url); err != nil {
			observability.LogAsyncOperationError(ctx, "media_delete", err, map[string]interface{}{"url": url})
		}
	})
}

func publishAsync(run asyncRunner, ctx context.Context, publisher NotificationPublisher, n *models.Notification) {
	if publisher == nil || n == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	run(func() {
		if err := publisher.PublishNotification(ctx, n); err != nil {
			observability.LogAsyncOperationError(ctx, "notification_publish", err, map[string]interface{}{
				"notification_id": n.ID,
				"to":              n.ToID,
			})
		}
	})
}
