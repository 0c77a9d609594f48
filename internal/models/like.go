package models

import "time"

// Like records that a user likes a post.
// The combination of UserID and PostID must be unique; the likes table is the
// only place the relation lives, so a post's likes and a user's liked posts
// are two reads of the same rows.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
