// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User is an account on the platform. Follow and like relations are kept in
// their own tables; the slices below are filled in by the repositories when a
// profile view needs them.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"_id"`
	Username       string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	FullName       string    `gorm:"size:100;not null" json:"fullName"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"not null" json:"-"`
	Bio            string    `json:"bio"`
	Link           string    `json:"link"`
	ProfileImg     string    `json:"profileImg"`
	CoverImg       string    `json:"coverImg"`
	FavoriteGenres string    `json:"favoriteGenres"`
	FavoriteTitle  string    `json:"favoriteTitle"`
	WatchingNow    string    `json:"watchingNow"`
	// Lowercased copies for search. LOWER() in sqlite only folds ASCII.
	UsernameFold   string    `gorm:"size:50;index" json:"-"`
	FullNameFold   string    `gorm:"size:100" json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	Following  []uint `gorm:"-" json:"following,omitempty"`
	Followers  []uint `gorm:"-" json:"followers,omitempty"`
	LikedPosts []uint `gorm:"-" json:"likedPosts,omitempty"`
}

// FoldSearchFields refreshes the lowercased search columns.
func (u *User) FoldSearchFields() {
	u.UsernameFold = strings.ToLower(u.Username)
	u.FullNameFold = strings.ToLower(u.FullName)
}

// BeforeSave keeps the search columns in step with username and full name.
func (u *User) BeforeSave(*gorm.DB) error {
	u.FoldSearchFields()
	return nil
}

// PublicUserColumns lists the users columns that may leave the store: no
// credential hash and no search copies.
var PublicUserColumns = []string{
	"id", "username", "full_name", "email", "bio", "link", "profile_img",
	"cover_img", "favorite_genres", "favorite_title", "watching_now",
	"created_at", "updated_at",
}

// UserSummary is the search result projection of a user.
type UserSummary struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Img      string `json:"Img"`
}

// Summary returns the search projection of u.
func (u *User) Summary() UserSummary {
	return UserSummary{
		Username: u.Username,
		FullName: u.FullName,
		Img:      u.ProfileImg,
	}
}
