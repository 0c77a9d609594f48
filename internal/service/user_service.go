package service

import (
	"context"
	"strings"

	"reelroom/internal/cache"
	"reelroom/internal/models"
	"reelroom/internal/repository"
	"reelroom/internal/validation"
)

const suggestedLimit = 4

type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	postRepo   repository.PostRepository
	media      MediaStore
	publisher  NotificationPublisher
	runAsync   asyncRunner
}

// UpdateProfileInput carries the editable profile fields. Empty fields keep
// their current value. ProfileImg and CoverImg may be data URIs.
type UpdateProfileInput struct {
	UserID         uint   `json:"-"`
	FullName       string `json:"fullName" validate:"max=100"`
	Username       string `json:"username" validate:"omitempty,min=3,max=30,handle"`
	Email          string `json:"email" validate:"omitempty,email,max=254"`
	Bio            string `json:"bio" validate:"max=160"`
	Link           string `json:"link" validate:"omitempty,http_url,max=255"`
	ProfileImg     string `json:"profileImg"`
	CoverImg       string `json:"coverImg"`
	FavoriteGenres string `json:"favoriteGenres" validate:"max=200"`
	FavoriteTitle  string `json:"favoriteTitle" validate:"max=120"`
	WatchingNow    string `json:"watchingNow" validate:"max=120"`
}

// FollowResult reports the follow state after ToggleFollow.
type FollowResult struct {
	Following bool
	Message   string
}

func NewUserService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	postRepo repository.PostRepository,
	media MediaStore,
	publisher NotificationPublisher,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
		postRepo:   postRepo,
		media:      media,
		publisher:  publisher,
		runAsync:   goAsync,
	}
}

func (s *UserService) withRelations(ctx context.Context, user *models.User, withLikes bool) (*models.User, error) {
	following, err := s.followRepo.FollowingIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	followers, err := s.followRepo.FollowerIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Following, user.Followers = following, followers
	if withLikes {
		liked, err := s.postRepo.LikedPostIDs(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		user.LikedPosts = liked
	}
	return user, nil
}

func (s *UserService) GetProfile(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundMessage("User not found")
	}
	return s.withRelations(ctx, user, false)
}

// Me returns the actor's own profile including the posts they liked.
func (s *UserService) Me(ctx context.Context, actorID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.withRelations(ctx, user, true)
}

func (s *UserService) ToggleFollow(ctx context.Context, actorID, targetID uint) (*FollowResult, error) {
	if actorID == targetID {
		return nil, models.NewValidationError("You can't follow/unfollow yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, actorID); err != nil {
		return nil, err
	}

	following, note, err := s.followRepo.Toggle(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.SuggestedKey(actorID))
	publishAsync(s.runAsync, ctx, s.publisher, note)

	if following {
		return &FollowResult{Following: true, Message: "User followed successfully"}, nil
	}
	return &FollowResult{Following: false, Message: "User unfollowed successfully"}, nil
}

// Suggested returns a few users the actor does not follow yet.
func (s *UserService) Suggested(ctx context.Context, actorID uint) ([]models.User, error) {
	return cache.Aside(ctx, cache.SuggestedKey(actorID), cache.SuggestedTTL, func() ([]models.User, error) {
		users, err := s.userRepo.ListSuggested(ctx, actorID, suggestedLimit)
		if err != nil {
			return nil, err
		}
		if users == nil {
			users = []models.User{}
		}
		return users, nil
	})
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	in = trimProfileInput(in)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	keep := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	keep(&user.FullName, in.FullName)
	keep(&user.Username, in.Username)
	keep(&user.Email, in.Email)
	keep(&user.Bio, in.Bio)
	keep(&user.Link, in.Link)
	keep(&user.FavoriteGenres, in.FavoriteGenres)
	keep(&user.FavoriteTitle, in.FavoriteTitle)
	keep(&user.WatchingNow, in.WatchingNow)

	oldProfile, oldCover := user.ProfileImg, user.CoverImg
	var uploaded []string
	for _, img := range []struct {
		dst *string
		in  string
	}{
		{&user.ProfileImg, in.ProfileImg},
		{&user.CoverImg, in.CoverImg},
	} {
		if img.in == "" || img.in == *img.dst {
			continue
		}
		url, err := s.upload(ctx, img.in)
		if err != nil {
			for _, u := range uploaded {
				deleteMediaAsync(s.runAsync, ctx, s.media, u)
			}
			return nil, err
		}
		if url != img.in {
			uploaded = append(uploaded, url)
		}
		*img.dst = url
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		for _, u := range uploaded {
			deleteMediaAsync(s.runAsync, ctx, s.media, u)
		}
		return nil, err
	}

	if user.ProfileImg != oldProfile {
		deleteMediaAsync(s.runAsync, ctx, s.media, oldProfile)
	}
	if user.CoverImg != oldCover {
		deleteMediaAsync(s.runAsync, ctx, s.media, oldCover)
	}
	cache.Invalidate(ctx, cache.UserKey(user.ID))
	return user, nil
}

func (s *UserService) upload(ctx context.Context, data string) (string, error) {
	if s.media == nil {
		return data, nil
	}
	return s.media.Upload(ctx, data)
}

func trimProfileInput(in UpdateProfileInput) UpdateProfileInput {
	for _, f := range []*string{
		&in.FullName, &in.Username, &in.Email, &in.Bio, &in.Link, &in.ProfileImg,
		&in.CoverImg, &in.FavoriteGenres, &in.FavoriteTitle, &in.WatchingNow,
	} {
		*f = strings.TrimSpace(*f)
	}
	return in
}
