package models

import (
	"time"

	"gorm.io/gorm"
)

// Post kinds.
const (
	PostTypePost   = "post"
	PostTypeReview = "review"
)

// Rating bounds for reviews.
const (
	MinRating = 1
	MaxRating = 5
)

// ReviewData is the structured payload carried by review posts.
type ReviewData struct {
	MovieName    string `json:"movieName"`
	ActorName    string `json:"actorName,omitempty"`
	DirectorName string `json:"directorName,omitempty"`
	Rating       int    `json:"rating"`
}

// Post is either a free-form post or a review. Review columns are stored
// flat and surfaced through ReviewData only for reviews.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"_id"`
	UserID   uint   `gorm:"not null;index" json:"-"`
	User     User   `gorm:"foreignKey:UserID" json:"user"`
	Text     string `gorm:"type:text" json:"text,omitempty"`
	Img      string `json:"img,omitempty"`
	PostType string `gorm:"type:varchar(10);not null;default:'post';index" json:"postType"`

	MovieName    string `gorm:"column:review_movie_name" json:"-"`
	ActorName    string `gorm:"column:review_actor_name" json:"-"`
	DirectorName string `gorm:"column:review_director_name" json:"-"`
	Rating       *int   `gorm:"column:review_rating" json:"-"`

	ReviewData *ReviewData `gorm:"-" json:"reviewData,omitempty"`
	// Likes is the set of user ids that liked the post, loaded from the likes table.
	Likes    []uint    `gorm:"-" json:"likes"`
	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsReview reports whether p carries a review payload.
func (p *Post) IsReview() bool {
	return p.PostType == PostTypeReview
}

// BeforeSave copies ReviewData into the flat review columns and clears them
// for plain posts so review fields exist only on reviews.
func (p *Post) BeforeSave(_ *gorm.DB) error {
	if !p.IsReview() || p.ReviewData == nil {
		p.MovieName, p.ActorName, p.DirectorName, p.Rating = "", "", "", nil
		if p.IsReview() {
			return NewValidationError("Movie name is required")
		}
		return nil
	}
	rating := p.ReviewData.Rating
	p.MovieName = p.ReviewData.MovieName
	p.ActorName = p.ReviewData.ActorName
	p.DirectorName = p.ReviewData.DirectorName
	p.Rating = &rating
	return nil
}

// AfterFind rebuilds ReviewData from the stored columns.
func (p *Post) AfterFind(_ *gorm.DB) error {
	p.hydrateReview()
	return nil
}

func (p *Post) hydrateReview() {
	if !p.IsReview() {
		p.ReviewData = nil
		return
	}
	rd := &ReviewData{
		MovieName:    p.MovieName,
		ActorName:    p.ActorName,
		DirectorName: p.DirectorName,
	}
	if p.Rating != nil {
		rd.Rating = *p.Rating
	}
	p.ReviewData = rd
}
