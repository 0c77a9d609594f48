package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"reelroom/internal/models"
	"reelroom/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn       func(context.Context, *models.Post) error
	getByIDFn      func(context.Context, uint) (*models.Post, error)
	listFn         func(context.Context, repository.PostFilter) ([]*models.Post, error)
	deleteFn       func(context.Context, uint) error
	addCommentFn   func(context.Context, *models.Comment) error
	toggleLikeFn   func(context.Context, uint, uint) (*repository.LikeResult, error)
	likedPostIDsFn func(context.Context, uint) ([]uint, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, filter repository.PostFilter) ([]*models.Post, error) {
	return s.listFn(ctx, filter)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) AddComment(ctx context.Context, comment *models.Comment) error {
	return s.addCommentFn(ctx, comment)
}
func (s *postRepoStub) ToggleLike(ctx context.Context, userID, postID uint) (*repository.LikeResult, error) {
	return s.toggleLikeFn(ctx, userID, postID)
}
func (s *postRepoStub) LikedPostIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.likedPostIDsFn(ctx, userID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:     func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:    func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		listFn:       func(_ context.Context, _ repository.PostFilter) ([]*models.Post, error) { return []*models.Post{}, nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
		addCommentFn: func(_ context.Context, _ *models.Comment) error { return nil },
		toggleLikeFn: func(_ context.Context, _, _ uint) (*repository.LikeResult, error) {
			return &repository.LikeResult{Likes: []uint{}}, nil
		},
		likedPostIDsFn: func(_ context.Context, _ uint) ([]uint, error) { return []uint{}, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateProfileFn func(context.Context, *models.User) error
	searchFn        func(context.Context, string, bool) ([]models.User, error)
	listSuggestedFn func(context.Context, uint, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) UpdateProfile(ctx context.Context, user *models.User) error {
	return s.updateProfileFn(ctx, user)
}
func (s *userRepoStub) Search(ctx context.Context, query string, matchAny bool) ([]models.User, error) {
	return s.searchFn(ctx, query, matchAny)
}
func (s *userRepoStub) ListSuggested(ctx context.Context, userID uint, limit int) ([]models.User, error) {
	return s.listSuggestedFn(ctx, userID, limit)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "user"}, nil
		},
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		updateProfileFn: func(_ context.Context, _ *models.User) error { return nil },
		searchFn:        func(_ context.Context, _ string, _ bool) ([]models.User, error) { return nil, nil },
		listSuggestedFn: func(_ context.Context, _ uint, _ int) ([]models.User, error) { return nil, nil },
	}
}

// mediaStub records uploads and deletes.
type mediaStub struct {
	mu        sync.Mutex
	uploadErr error
	uploads   []string
	deletes   []string
}

func (m *mediaStub) Upload(_ context.Context, data string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	m.uploads = append(m.uploads, data)
	return "https://media.example.com/" + data + ".webp", nil
}

func (m *mediaStub) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, url)
	return nil
}

// publisherStub records published notifications.
type publisherStub struct {
	published []*models.Notification
	err       error
}

func (p *publisherStub) PublishNotification(_ context.Context, n *models.Notification) error {
	p.published = append(p.published, n)
	return p.err
}

func syncRunner(fn func()) { fn() }

func assertAppError(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

// assertValidationError asserts that err is a VALIDATION_ERROR with msg.
func assertValidationError(t *testing.T, err error, msg string) {
	t.Helper()
	appErr := assertAppError(t, err, models.CodeValidation)
	if msg != "" {
		assert.Equal(t, msg, appErr.Message)
	}
}
