package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"reelroom/internal/assistant"
	"reelroom/internal/models"
	"reelroom/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowUnfollowUser(t *testing.T) {
	env := newTestEnv(t, "", nil)
	alice := testutil.CreateUser(t, env.db, "alice", "Alice Liddell")
	bob := testutil.CreateUser(t, env.db, "bob", "Bob Stone")
	tok := env.token(t, alice)
	path := fmt.Sprintf("/api/users/follow/%d", bob.ID)

	status, body := env.do(t, http.MethodPost, path, tok, nil)
	require.Equal(t, fiber.StatusOK, status, string(body))
	assert.Equal(t, "User followed successfully", decode[map[string]string](t, body)["message"])

	status, body = env.do(t, http.MethodGet, "/api/users/profile/bob", tok, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []uint{alice.ID}, decode[models.User](t, body).Followers)

	status, body = env.do(t, http.MethodPost, path, tok, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "User unfollowed successfully", decode[map[string]string](t, body)["message"])

	status, body = env.do(t, http.MethodPost, fmt.Sprintf("/api/users/follow/%d", alice.ID), tok, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "You can't follow/unfollow yourself", decode[models.ErrorResponse](t, body).Error)

	status, _ = env.do(t, http.MethodPost, "/api/users/follow/9999", tok, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = env.do(t, http.MethodGet, "/api/notifications", env.token(t, bob), nil)
	require.Equal(t, fiber.StatusOK, status)
	notes := decode[[]models.Notification](t, body)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationFollow, notes[0].Type)
}

func TestGetMe_IncludesLikedPosts(t *testing.T) {
	env := newTestEnv(t, "", nil)
	alice := testutil.CreateUser(t, env.db, "alice", "Alice Liddell")
	bob := testutil.CreateUser(t, env.db, "bob", "Bob Stone")
	post := testutil.CreatePost(t, env.db, bob, "a post")
	tok := env.token(t, alice)

	status, _ := env.do(t, http.MethodPost, fmt.Sprintf("/api/posts/like/%d", post.ID), tok, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, body := env.do(t, http.MethodGet, "/api/users/me", tok, nil)
	require.Equal(t, fiber.StatusOK, status)
	me := decode[models.User](t, body)
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, []uint{post.ID}, me.LikedPosts)
	assert.NotContains(t, string(body), "password")

	status, body = env.do(t, http.MethodGet, fmt.Sprintf("/api/posts/likes/%d", alice.ID), tok, nil)
	require.Equal(t, fiber.StatusOK, status)
	liked := decode[[]models.Post](t, body)
	require.Len(t, liked, 1)
	assert.Equal(t, post.ID, liked[0].ID)
}

func TestGetUserProfile_NotFound(t *testing.T) {
	env := newTestEnv(t, "", nil)
	alice := testutil.CreateUser(t, env.db, "alice", "Alice Liddell")

	status, body := env.do(t, http.MethodGet, "/api/users/profile/nobody", env.token(t, alice), nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "User not found", decode[models.ErrorResponse](t, body).Error)

	status, _ = env.do(t, http.MethodGet, "/api/posts/user/nobody", env.token(t, alice), nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestGetSuggestedUsers(t *testing.T) {
	env := newTestEnv(t, "", nil)
	alice := testutil.CreateUser(t, env.db, "alice", "Alice Liddell")
	testutil.CreateUser(t, env.db, "bob", "Bob Stone")
	testutil.CreateUser(t, env.db, "carol", "Carol Reed")

	status, body := env.do(t, http.MethodGet, "/api/users/suggested", env.token(t, alice), nil)
	require.Equal(t, fiber.StatusOK, status)
	users := decode[[]models.User](t, body)
	assert.Len(t, users, 2)
	for _, u := range users {
		assert.NotEqual(t, alice.ID, u.ID)
	}
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t, "", nil)
	alice := testutil.CreateUser(t, env.db, "alice", "Alice Liddell")
	testutil.CreateUser(t, env.db, "bob", "Bob Stone")
	tok := env.token(t, alice)

	status, body := env.do(t, http.MethodPost, "/api/users/update", tok, map[string]string{
		"bio":            "Criterion collector",
		"favoriteGenres": "noir, anime",
		"watchingNow":    "Frieren",
	})
	require.Equal(t, fiber.StatusOK, status, string(body))
	got := decode[models.User](t, body)
	assert.Equal(t, "Criterion collector", got.Bio)
	assert.Equal(t, "Frieren", got.WatchingNow)
	assert.Equal(t, "Alice Liddell", got.FullName)

	status, body = env.do(t, http.MethodPost, "/api/users/update", tok, map[string]string{"link": "not a url"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "link must be a valid URL", decode[models.ErrorResponse](t, body).Error)

	status, body = env.do(t, http.MethodPost, "/api/users/update", tok, map[string]string{"username": "bob"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Username or email is already taken", decode[models.ErrorResponse](t, body).Error)
}

func TestFeeds(t *testing.T) {
	env := newTestEnv(t, "", nil)
	alice := testutil.CreateUser(t, env.db, "alice", "Alice Liddell")
	bob := testutil.CreateUser(t, env.db, "bob", "Bob Stone")
	testutil.CreatePost(t, env.db, bob, "plain")
	require.NoError(t, env.db.Create(&models.Post{
		UserID:     bob.ID,
		Text:       "review",
		PostType:   models.PostTypeReview,
		ReviewData: &models.ReviewData{MovieName: "Heat", Rating: 4},
	}).Error)
	tok := env.token(t, alice)

	status, body := env.do(t, http.MethodGet, "/api/posts/following", tok, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, decode[[]models.Post](t, body))

	status, _ = env.do(t, http.MethodPost, fmt.Sprintf("/api/users/follow/%d", bob.ID), tok, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, body = env.do(t, http.MethodGet, "/api/posts/following", tok, nil)
	require.Equal(t, fiber.StatusOK, status)
	following := decode[[]models.Post](t, body)
	require.Len(t, following, 1)
	assert.Equal(t, models.PostTypePost, following[0].PostType)

	status, body = env.do(t, http.MethodGet, "/api/posts/all", tok, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]models.Post](t, body), 2)

	status, body = env.do(t, http.MethodGet, "/api/posts/all?type=bogus", tok, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]models.Post](t, body), 2, "unknown type is ignored")

	status, body = env.do(t, http.MethodGet, "/api/posts/user/bob?type=review", tok, nil)
	require.Equal(t, fiber.StatusOK, status)
	reviews := decode[[]models.Post](t, body)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Heat", reviews[0].ReviewData.MovieName)
}

func TestSearchUsers(t *testing.T) {
	env := newTestEnv(t, "", nil)
	alice := testutil.CreateUser(t, env.db, "alice", "Alice Liddell")
	testutil.CreateUser(t, env.db, "annie", "Annie Hall")
	testutil.CreateUser(t, env.db, "hal", "Hal Nine")
	tok := env.token(t, alice)

	status, body := env.do(t, http.MethodPost, "/api/search", tok, map[string]string{"userQuery": "ANN"})
	require.Equal(t, fiber.StatusOK, status)
	res := decode[struct {
		Message string               `json:"message"`
		Users   []models.UserSummary `json:"users"`
	}](t, body)
	assert.Equal(t, "Search Successful", res.Message)
	require.Len(t, res.Users, 1)
	assert.Equal(t, "annie", res.Users[0].Username)
	assert.Contains(t, string(body), `"Img"`)

	status, body = env.do(t, http.MethodPost, "/api/search", tok, map[string]string{"userQuery": "  "})
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"message":"Search Successful","users":[]}`, string(body))
}

func TestAskAssistant(t *testing.T) {
	gen := &fakeGenerator{reply: "Try Paprika."}
	env := newTestEnv(t, "ai_assistant=on", gen)
	alice := testutil.CreateUser(t, env.db, "alice", "Alice Liddell")
	tok := env.token(t, alice)

	status, body := env.do(t, http.MethodPost, "/api/ai", tok, map[string]string{"prompt": ""})
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"success":true,"result":"Try Paprika."}`, string(body))
	assert.Equal(t, []string{assistant.DefaultPrompt}, gen.got)

	gen.err = errors.New("upstream down")
	status, body = env.do(t, http.MethodPost, "/api/ai", tok, map[string]string{"prompt": "anime like Akira"})
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.JSONEq(t, `{"success":false,"error":"Something went wrong."}`, string(body))
}

func TestAskAssistant_FlagOff(t *testing.T) {
	env := newTestEnv(t, "ai_assistant=off", &fakeGenerator{reply: "unused"})
	alice := testutil.CreateUser(t, env.db, "alice", "Alice Liddell")

	status, _ := env.do(t, http.MethodPost, "/api/ai", env.token(t, alice), map[string]string{"prompt": "hi"})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestNotifications_ListMarksReadThenClear(t *testing.T) {
	env := newTestEnv(t, "", nil)
	alice := testutil.CreateUser(t, env.db, "alice", "Alice Liddell")
	bob := testutil.CreateUser(t, env.db, "bob", "Bob Stone")
	require.NoError(t, env.db.Create(&models.Notification{FromID: bob.ID, ToID: alice.ID, Type: models.NotificationFollow}).Error)
	tok := env.token(t, alice)

	status, body := env.do(t, http.MethodGet, "/api/notifications", tok, nil)
	require.Equal(t, fiber.StatusOK, status)
	notes := decode[[]models.Notification](t, body)
	require.Len(t, notes, 1)
	assert.False(t, notes[0].Read)

	status, body = env.do(t, http.MethodGet, "/api/notifications", tok, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, decode[[]models.Notification](t, body)[0].Read)

	status, body = env.do(t, http.MethodDelete, "/api/notifications", tok, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Notifications deleted successfully", decode[map[string]string](t, body)["message"])

	status, body = env.do(t, http.MethodGet, "/api/notifications", tok, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, decode[[]models.Notification](t, body))
}
