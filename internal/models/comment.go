package models

import "time"

// Comment is one entry of a post's ordered comment thread.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"_id"`
	PostID    uint      `gorm:"not null;index:idx_comments_post_created,priority:1" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"-"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"index:idx_comments_post_created,priority:2" json:"createdAt"`
}
