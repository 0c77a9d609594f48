package repository

import (
	"context"
	"errors"

	"reelroom/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository persists the follow graph. One row per edge serves both
// the following and the followers view.
type FollowRepository interface {
	// Toggle follows or unfollows followedID. When a new edge is created a
	// follow notification is stored in the same transaction and returned.
	Toggle(ctx context.Context, followerID, followedID uint) (bool, *models.Notification, error)
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	FollowerIDs(ctx context.Context, userID uint) ([]uint, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Toggle(ctx context.Context, followerID, followedID uint) (bool, *models.Notification, error) {
	var (
		following bool
		note      *models.Notification
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target models.User
		if err := tx.Select("id").First(&target, followedID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundMessage("User not found")
			}
			return err
		}

		removed := tx.Where("follower_id = ? AND followed_id = ?", followerID, followedID).Delete(&models.Follow{})
		if removed.Error != nil {
			return removed.Error
		}
		if removed.RowsAffected > 0 {
			return nil
		}

		added := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Follow{FollowerID: followerID, FollowedID: followedID})
		if added.Error != nil {
			return added.Error
		}
		following = added.RowsAffected == 1
		if !following {
			return nil
		}

		note = &models.Notification{FromID: followerID, ToID: followedID, Type: models.NotificationFollow}
		if err := tx.Omit(clause.Associations).Create(note).Error; err != nil {
			return err
		}
		return tx.Scopes(publicUser).First(&note.From, followerID).Error
	})
	if err != nil {
		return false, nil, wrapDBError(err)
	}
	return following, note, nil
}

func (r *followRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	return r.pluck(ctx, "followed_id", "follower_id", userID)
}

func (r *followRepository) FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	return r.pluck(ctx, "follower_id", "followed_id", userID)
}

func (r *followRepository) pluck(ctx context.Context, column, by string, userID uint) ([]uint, error) {
	ids := make([]uint, 0)
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where(by+" = ?", userID).
		Order("id ASC").
		Pluck(column, &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
