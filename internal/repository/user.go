package repository

import (
	"context"
	"errors"
	"strings"

	"reelroom/internal/cache"
	"reelroom/internal/models"
	"reelroom/internal/observability"

	"gorm.io/gorm"
)

// profileColumns are the users columns a profile update may change.
var profileColumns = []string{
	"username", "full_name", "email", "bio", "link", "profile_img",
	"cover_img", "favorite_genres", "favorite_title", "watching_now",
	"username_fold", "full_name_fold", "updated_at",
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, user *models.User) error
	Search(ctx context.Context, query string, matchAny bool) ([]models.User, error)
	ListSuggested(ctx context.Context, userID uint, limit int) ([]models.User, error)
}

type userRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, log: observability.NewRepoLogger("users")}
}

// GetByID loads the public projection of a user, served from cache when
// possible.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := cache.Aside(ctx, cache.UserKey(id), cache.UserTTL, func() (models.User, error) {
		var u models.User
		if err := r.db.WithContext(ctx).Scopes(publicUser).First(&u, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return u, models.NewNotFoundMessage("User not found")
			}
			return u, models.NewInternalError(err)
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername returns nil, nil when no user has that username.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Scopes(publicUser).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Username or email is already taken")
		}
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"user_id": user.ID})
	return nil
}

// UpdateProfile writes profileColumns only; the credential hash is never touched.
func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	user.FoldSearchFields()
	err := r.db.WithContext(ctx).Model(&models.User{ID: user.ID}).
		Select(profileColumns).
		Updates(user).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Username or email is already taken")
		}
		r.log.LogError(ctx, err, "update_profile")
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	r.log.LogUpdate(ctx, map[string]interface{}{"user_id": user.ID})
	return nil
}

// Search matches query as a case-insensitive substring of full name and
// username. With matchAny a hit on either column is enough. Case is folded in
// Go against the *_fold columns so non-ASCII letters match on every driver.
func (r *userRepository) Search(ctx context.Context, query string, matchAny bool) ([]models.User, error) {
	pattern := containsPattern(strings.ToLower(query))
	cond := `full_name_fold LIKE ? ESCAPE '\' AND username_fold LIKE ? ESCAPE '\'`
	if matchAny {
		cond = `full_name_fold LIKE ? ESCAPE '\' OR username_fold LIKE ? ESCAPE '\'`
	}

	var users []models.User
	err := r.db.WithContext(ctx).Scopes(publicUser).
		Where(cond, pattern, pattern).
		Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// ListSuggested returns up to limit random users that userID does not follow.
func (r *userRepository) ListSuggested(ctx context.Context, userID uint, limit int) ([]models.User, error) {
	db := r.db.WithContext(ctx)
	followed := db.Model(&models.Follow{}).Select("followed_id").Where("follower_id = ?", userID)

	var users []models.User
	err := db.Scopes(publicUser).
		Where("id <> ?", userID).
		Where("id NOT IN (?)", followed).
		Order("RANDOM()").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
