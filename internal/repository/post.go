package repository

import (
	"context"
	"errors"

	"reelroom/internal/models"
	"reelroom/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter narrows List. Zero fields do not filter.
type PostFilter struct {
	// PostType is models.PostTypePost or models.PostTypeReview.
	PostType string
	// AuthorID restricts to one author's posts.
	AuthorID uint
	// FollowedBy restricts to authors that this user follows.
	FollowedBy uint
	// LikedBy restricts to posts this user has liked.
	LikedBy uint
}

// LikeResult is the outcome of ToggleLike.
type LikeResult struct {
	Liked bool
	// Likes is the post's like set after the toggle, in like order.
	Likes []uint
	// Notification is set when the toggle created a like notification.
	Notification *models.Notification
}

// PostRepository defines persistence operations for posts and the like and
// comment relations hanging off them.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, filter PostFilter) ([]*models.Post, error)
	Delete(ctx context.Context, id uint) error
	AddComment(ctx context.Context, comment *models.Comment) error
	ToggleLike(ctx context.Context, userID, postID uint) (*LikeResult, error)
	LikedPostIDs(ctx context.Context, userID uint) ([]uint, error)
}

type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

var errPostNotFound = models.NewNotFoundMessage("Post not found")

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return wrapDBError(err)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"post_id": post.ID, "post_type": post.PostType})
	return nil
}

// hydrated preloads the author and the ordered comment thread with authors.
func hydrated(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User", publicUser).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC, comments.id ASC")
		}).
		Preload("Comments.User", publicUser)
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Scopes(hydrated).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errPostNotFound
		}
		return nil, models.NewInternalError(err)
	}
	if err := r.attachLikes(ctx, []*models.Post{&post}); err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns matching posts newest first.
func (r *postRepository) List(ctx context.Context, filter PostFilter) ([]*models.Post, error) {
	db := r.db.WithContext(ctx)
	q := db.Scopes(hydrated)

	if filter.PostType != "" {
		q = q.Where("posts.post_type = ?", filter.PostType)
	}
	if filter.AuthorID != 0 {
		q = q.Where("posts.user_id = ?", filter.AuthorID)
	}
	if filter.FollowedBy != 0 {
		q = q.Where("posts.user_id IN (?)",
			db.Model(&models.Follow{}).Select("followed_id").Where("follower_id = ?", filter.FollowedBy))
	}
	if filter.LikedBy != 0 {
		q = q.Where("posts.id IN (?)",
			db.Model(&models.Like{}).Select("post_id").Where("user_id = ?", filter.LikedBy))
	}

	posts := make([]*models.Post, 0)
	if err := q.Order("posts.created_at DESC, posts.id DESC").Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.attachLikes(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// attachLikes fills Likes for every post with one query.
func (r *postRepository) attachLikes(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	byID := make(map[uint]*models.Post, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		byID[p.ID] = p
		p.Likes = []uint{}
		if p.Comments == nil {
			p.Comments = []models.Comment{}
		}
	}

	var likes []models.Like
	if err := r.db.WithContext(ctx).
		Select("post_id", "user_id").
		Where("post_id IN ?", ids).
		Order("id ASC").
		Find(&likes).Error; err != nil {
		return models.NewInternalError(err)
	}
	for _, l := range likes {
		if p := byID[l.PostID]; p != nil {
			p.Likes = append(p.Likes, l.UserID)
		}
	}
	return nil
}

// Delete removes the post with its comments and likes. Notifications that
// referenced it are kept with the reference cleared.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Notification{}).Where("post_id = ?", id).Update("post_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errPostNotFound
		}
		return nil
	})
	if err != nil {
		return wrapDBError(err)
	}
	r.log.LogDelete(ctx, map[string]interface{}{"post_id": id})
	return nil
}

func (r *postRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Post{}).Where("id = ?", comment.PostID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errPostNotFound
		}
		return tx.Omit(clause.Associations).Create(comment).Error
	})
	return wrapDBError(err)
}

// ToggleLike flips userID's like on postID inside one transaction. The
// unique (user_id, post_id) index decides races: only the caller whose insert
// created the row is reported as liking and emits the notification.
func (r *postRepository) ToggleLike(ctx context.Context, userID, postID uint) (*LikeResult, error) {
	result := &LikeResult{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id", "user_id", "post_type").First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errPostNotFound
			}
			return err
		}

		removed := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if removed.Error != nil {
			return removed.Error
		}

		if removed.RowsAffected == 0 {
			added := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.Like{UserID: userID, PostID: postID})
			if added.Error != nil {
				return added.Error
			}
			result.Liked = added.RowsAffected == 1

			if result.Liked && post.UserID != userID {
				n := &models.Notification{
					FromID: userID,
					ToID:   post.UserID,
					Type:   models.NotificationLike,
					PostID: &postID,
				}
				if err := tx.Omit(clause.Associations).Create(n).Error; err != nil {
					return err
				}
				if err := tx.Scopes(publicUser).First(&n.From, userID).Error; err != nil {
					return err
				}
				result.Notification = n
			}
		}

		likes := make([]uint, 0)
		if err := tx.Model(&models.Like{}).Where("post_id = ?", postID).Order("id ASC").Pluck("user_id", &likes).Error; err != nil {
			return err
		}
		result.Likes = likes
		return nil
	})
	if err != nil {
		return nil, wrapDBError(err)
	}
	return result, nil
}

func (r *postRepository) LikedPostIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := make([]uint, 0)
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ?", userID).
		Order("id ASC").
		Pluck("post_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
