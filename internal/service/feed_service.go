package service

import (
	"context"

	"reelroom/internal/models"
	"reelroom/internal/repository"
)

// FeedService answers the read-only post listings.
type FeedService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

func NewFeedService(postRepo repository.PostRepository, userRepo repository.UserRepository) *FeedService {
	return &FeedService{postRepo: postRepo, userRepo: userRepo}
}

// kindFilter returns the post type to filter on. Unknown values do not
// filter.
func kindFilter(kind string) string {
	switch kind {
	case models.PostTypePost, models.PostTypeReview:
		return kind
	default:
		return ""
	}
}

func (s *FeedService) ListAll(ctx context.Context, kind string) ([]*models.Post, error) {
	return s.postRepo.List(ctx, repository.PostFilter{PostType: kindFilter(kind)})
}

func (s *FeedService) ListByUsername(ctx context.Context, username, kind string) ([]*models.Post, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundMessage("User not found")
	}
	return s.postRepo.List(ctx, repository.PostFilter{
		PostType: kindFilter(kind),
		AuthorID: user.ID,
	})
}

func (s *FeedService) ListLiked(ctx context.Context, userID uint) ([]*models.Post, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.postRepo.List(ctx, repository.PostFilter{LikedBy: userID})
}

// ListFollowing returns plain posts by the users actorID follows. Reviews are
// not part of this feed.
func (s *FeedService) ListFollowing(ctx context.Context, actorID uint) ([]*models.Post, error) {
	if _, err := s.userRepo.GetByID(ctx, actorID); err != nil {
		return nil, err
	}
	return s.postRepo.List(ctx, repository.PostFilter{
		PostType:   models.PostTypePost,
		FollowedBy: actorID,
	})
}
