package service

import (
	"context"
	"testing"

	"reelroom/internal/featureflags"
	"reelroom/internal/models"
	"reelroom/internal/repository"
	"reelroom/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type services struct {
	db     *gorm.DB
	posts  *PostService
	feed   *FeedService
	users  *UserService
	search *SearchService
	notes  *NotificationService
	pub    *publisherStub
}

func newServices(t *testing.T, flags string) *services {
	t.Helper()
	db := testutil.NewTestDB(t)
	postRepo := repository.NewPostRepository(db)
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	pub := &publisherStub{}
	media := &mediaStub{}

	posts := NewPostService(postRepo, userRepo, media, pub)
	posts.runAsync = syncRunner
	users := NewUserService(userRepo, followRepo, postRepo, media, pub)
	users.runAsync = syncRunner

	return &services{
		db:     db,
		posts:  posts,
		feed:   NewFeedService(postRepo, userRepo),
		users:  users,
		search: NewSearchService(userRepo, featureflags.NewManager(flags)),
		notes:  NewNotificationService(repository.NewNotificationRepository(db)),
		pub:    pub,
	}
}

func TestScenario_CreateReview(t *testing.T) {
	s := newServices(t, "")
	ctx := context.Background()
	alice := testutil.CreateUser(t, s.db, "alice99", "Alice")

	post, err := s.posts.CreatePost(ctx, CreatePostInput{
		UserID:     alice.ID,
		PostType:   models.PostTypeReview,
		Text:       "A slow burn that pays off.",
		ReviewData: &models.ReviewData{MovieName: "Dune: Part Two", DirectorName: "Denis Villeneuve", Rating: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, models.PostTypeReview, post.PostType)
	require.NotNil(t, post.ReviewData)
	assert.Equal(t, "Dune: Part Two", post.ReviewData.MovieName)
	assert.Equal(t, 5, post.ReviewData.Rating)
	assert.Equal(t, "alice99", post.User.Username)
	assert.Empty(t, post.User.Password)
	assert.Empty(t, post.Likes)
	assert.Empty(t, post.Comments)

	reviews, err := s.feed.ListAll(ctx, models.PostTypeReview)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, post.ID, reviews[0].ID)
}

func TestScenario_LikeUnlikeKeepsOneNotification(t *testing.T) {
	s := newServices(t, "")
	ctx := context.Background()
	alice := testutil.CreateUser(t, s.db, "alice99", "Alice")
	bob := testutil.CreateUser(t, s.db, "bob", "Bob")
	post := testutil.CreatePost(t, s.db, alice, "hello")

	res, err := s.posts.ToggleLike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{bob.ID}, res.Likes)

	me, err := s.users.Me(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{post.ID}, me.LikedPosts)

	res, err = s.posts.ToggleLike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Likes)

	me, err = s.users.Me(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, me.LikedPosts)

	notes, err := s.notes.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationLike, notes[0].Type)
	assert.Equal(t, "bob", notes[0].From.Username)
	assert.Len(t, s.pub.published, 1)
}

func TestScenario_SearchPredicate(t *testing.T) {
	ctx := context.Background()

	t.Run("both fields must match by default", func(t *testing.T) {
		s := newServices(t, "")
		testutil.CreateUser(t, s.db, "janedoe", "Jane Doe")
		testutil.CreateUser(t, s.db, "cinephile", "Jane Smith")

		got, err := s.search.SearchUsers(ctx, 1, "jane")
		require.NoError(t, err)
		assert.Equal(t, []models.UserSummary{{Username: "janedoe", FullName: "Jane Doe"}}, got)
	})

	t.Run("either field matches with search_match_any", func(t *testing.T) {
		s := newServices(t, "search_match_any=on")
		testutil.CreateUser(t, s.db, "janedoe", "Jane Doe")
		testutil.CreateUser(t, s.db, "cinephile", "Jane Smith")

		got, err := s.search.SearchUsers(ctx, 1, "JANE")
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("blank query matches nobody", func(t *testing.T) {
		s := newServices(t, "")
		testutil.CreateUser(t, s.db, "janedoe", "Jane Doe")

		got, err := s.search.SearchUsers(ctx, 1, "   ")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestScenario_FollowingFeedExcludesReviews(t *testing.T) {
	s := newServices(t, "")
	ctx := context.Background()
	alice := testutil.CreateUser(t, s.db, "alice99", "Alice")
	bob := testutil.CreateUser(t, s.db, "bob", "Bob")
	carol := testutil.CreateUser(t, s.db, "carol", "Carol")

	follow, err := s.users.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, follow.Following)

	plain := testutil.CreatePost(t, s.db, bob, "watching tonight")
	_, err = s.posts.CreatePost(ctx, CreatePostInput{
		UserID:     bob.ID,
		PostType:   models.PostTypeReview,
		Text:       "great",
		ReviewData: &models.ReviewData{MovieName: "Heat", Rating: 4},
	})
	require.NoError(t, err)
	testutil.CreatePost(t, s.db, carol, "not followed")

	feed, err := s.feed.ListFollowing(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, plain.ID, feed[0].ID)

	bobsPosts, err := s.feed.ListByUsername(ctx, "bob", "")
	require.NoError(t, err)
	assert.Len(t, bobsPosts, 2)

	_, err = s.feed.ListByUsername(ctx, "nobody", "")
	assertAppError(t, err, models.CodeNotFound)
}

func TestScenario_NonOwnerDeleteLeavesPost(t *testing.T) {
	s := newServices(t, "")
	ctx := context.Background()
	alice := testutil.CreateUser(t, s.db, "alice99", "Alice")
	bob := testutil.CreateUser(t, s.db, "bob", "Bob")
	post := testutil.CreatePost(t, s.db, alice, "keep me")

	err := s.posts.DeletePost(ctx, DeletePostInput{UserID: bob.ID, PostID: post.ID})
	assertAppError(t, err, models.CodeUnauthorized)

	all, err := s.feed.ListAll(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "keep me", all[0].Text)
}

func TestScenario_CommentRoundTrip(t *testing.T) {
	s := newServices(t, "")
	ctx := context.Background()
	alice := testutil.CreateUser(t, s.db, "alice99", "Alice")
	bob := testutil.CreateUser(t, s.db, "bob", "Bob")
	post := testutil.CreatePost(t, s.db, alice, "thoughts?")

	_, err := s.posts.CommentOnPost(ctx, CommentInput{UserID: alice.ID, PostID: post.ID, Text: "first"})
	require.NoError(t, err)
	got, err := s.posts.CommentOnPost(ctx, CommentInput{UserID: bob.ID, PostID: post.ID, Text: "second"})
	require.NoError(t, err)

	require.Len(t, got.Comments, 2)
	last := got.Comments[len(got.Comments)-1]
	assert.Equal(t, "second", last.Text)
	assert.Equal(t, "bob", last.User.Username)
	assert.Empty(t, last.User.Password)

	_, err = s.posts.CommentOnPost(ctx, CommentInput{UserID: bob.ID, PostID: 999, Text: "lost"})
	assertAppError(t, err, models.CodeNotFound)
}
