package models

import "time"

// NotificationType is the kind of event a notification describes.
type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationFollow  NotificationType = "follow"
	NotificationComment NotificationType = "comment"
	NotificationMention NotificationType = "mention"
)

// Notification is a directed event from one user to another.
// PostID is set for content events and cleared when the post is deleted.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"_id"`
	FromID    uint             `gorm:"not null" json:"-"`
	From      User             `gorm:"foreignKey:FromID" json:"from"`
	ToID      uint             `gorm:"not null;index:idx_notifications_to_created,priority:1" json:"to"`
	Type      NotificationType `gorm:"type:varchar(16);not null" json:"type"`
	PostID    *uint            `gorm:"index" json:"-"`
	Post      *Post            `gorm:"foreignKey:PostID;constraint:OnDelete:SET NULL" json:"post,omitempty"`
	Read      bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time        `gorm:"index:idx_notifications_to_created,priority:2" json:"createdAt"`
}
