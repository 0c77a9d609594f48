package service

import (
	"context"
	"strings"

	"reelroom/internal/models"
	"reelroom/internal/observability"
	"reelroom/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

type PostService struct {
	postRepo  repository.PostRepository
	userRepo  repository.UserRepository
	media     MediaStore
	publisher NotificationPublisher
	runAsync  asyncRunner
}

type CreatePostInput struct {
	UserID     uint
	Text       string
	Img        string
	PostType   string
	ReviewData *models.ReviewData
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

type CommentInput struct {
	UserID uint
	PostID uint
	Text   string
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	media MediaStore,
	publisher NotificationPublisher,
) *PostService {
	return &PostService{
		postRepo:  postRepo,
		userRepo:  userRepo,
		media:     media,
		publisher: publisher,
		runAsync:  goAsync,
	}
}

// validateCreate checks the input against the rules of its post type.
// Review fields on a plain post are dropped.
func validateCreate(in *CreatePostInput) error {
	in.Text = strings.TrimSpace(in.Text)
	in.Img = strings.TrimSpace(in.Img)

	switch in.PostType {
	case models.PostTypePost:
		if in.Text == "" && in.Img == "" {
			return models.NewValidationError("Post must have text or image")
		}
		in.ReviewData = nil
	case models.PostTypeReview:
		if in.Text == "" {
			return models.NewValidationError("Review must have text")
		}
		if in.ReviewData == nil || strings.TrimSpace(in.ReviewData.MovieName) == "" {
			return models.NewValidationError("Movie name is required")
		}
		if in.ReviewData.Rating < models.MinRating || in.ReviewData.Rating > models.MaxRating {
			return models.NewValidationError("Rating must be between 1-5")
		}
		in.ReviewData.MovieName = strings.TrimSpace(in.ReviewData.MovieName)
	default:
		return models.NewValidationError("Invalid post type")
	}
	return nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (post *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "CreatePost", attribute.String("post_type", in.PostType))
	defer func() { observability.EndSpan(span, err) }()

	if _, err := s.userRepo.GetByID(ctx, in.UserID); err != nil {
		return nil, err
	}
	if err := validateCreate(&in); err != nil {
		return nil, err
	}

	img := in.Img
	if img != "" && s.media != nil {
		img, err = s.media.Upload(ctx, in.Img)
		if err != nil {
			return nil, err
		}
	}

	created := &models.Post{
		UserID:     in.UserID,
		Text:       in.Text,
		Img:        img,
		PostType:   in.PostType,
		ReviewData: in.ReviewData,
	}
	if err := s.postRepo.Create(ctx, created); err != nil {
		if img != in.Img {
			deleteMediaAsync(s.runAsync, ctx, s.media, img)
		}
		return nil, err
	}
	observability.PostsCreated.WithLabelValues(created.PostType).Inc()

	return s.postRepo.GetByID(ctx, created.ID)
}

// DeletePost removes a post owned by the caller. Its image is removed from
// the media host in the background.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return err
	}
	if post.UserID != in.UserID {
		return models.NewUnauthorizedError("You are not authorized to delete this post")
	}
	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		return err
	}
	deleteMediaAsync(s.runAsync, ctx, s.media, post.Img)
	return nil
}

func (s *PostService) CommentOnPost(ctx context.Context, in CommentInput) (*models.Post, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, models.NewValidationError("Text field is required")
	}
	comment := &models.Comment{PostID: in.PostID, UserID: in.UserID, Text: text}
	if err := s.postRepo.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, in.PostID)
}

// ToggleLike likes or unlikes a post for userID and returns the post's likes
// after the change.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (res *repository.LikeResult, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "ToggleLike",
		attribute.Int64("post_id", int64(postID)))
	defer func() { observability.EndSpan(span, err) }()

	res, err = s.postRepo.ToggleLike(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	result := "unliked"
	if res.Liked {
		result = "liked"
	}
	observability.LikeToggles.WithLabelValues(result).Inc()
	publishAsync(s.runAsync, ctx, s.publisher, res.Notification)
	return res, nil
}
