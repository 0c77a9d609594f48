package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("bad"), http.StatusBadRequest},
		{"not found", NewNotFoundError("Post", 3), http.StatusNotFound},
		{"unauthorized", NewUnauthorizedError("nope"), http.StatusUnauthorized},
		{"internal", NewInternalError(errors.New("db down")), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("ctx: %w", NewValidationError("bad")), http.StatusBadRequest},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestRespondWithError_HidesInternalDetails(t *testing.T) {
	t.Parallel()
	app := fiber.New()
	app.Get("/internal", func(c *fiber.Ctx) error {
		return RespondWithAppError(c, NewInternalError(errors.New("pq: connection refused")))
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return RespondWithAppError(c, NewNotFoundError("Post", 9))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/internal", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Internal server error", body.Error)
	assert.Equal(t, CodeInternal, body.Code)
	assert.Empty(t, body.Details)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Post with ID 9 not found", body.Error)
}

func TestPost_ReviewColumnsRoundTrip(t *testing.T) {
	t.Parallel()

	review := &Post{
		PostType:   PostTypeReview,
		Text:       "Great!",
		ReviewData: &ReviewData{MovieName: "Dune", DirectorName: "Villeneuve", Rating: 5},
	}
	require.NoError(t, review.BeforeSave(nil))
	require.NotNil(t, review.Rating)
	assert.Equal(t, 5, *review.Rating)
	assert.Equal(t, "Dune", review.MovieName)

	review.ReviewData = nil
	require.NoError(t, review.AfterFind(nil))
	require.NotNil(t, review.ReviewData)
	assert.Equal(t, "Villeneuve", review.ReviewData.DirectorName)
	assert.Equal(t, 5, review.ReviewData.Rating)
}

func TestPost_PlainPostDropsReviewFields(t *testing.T) {
	t.Parallel()

	p := &Post{
		PostType:   PostTypePost,
		Text:       "hello",
		ReviewData: &ReviewData{MovieName: "ignored", Rating: 3},
	}
	require.NoError(t, p.BeforeSave(nil))
	assert.Empty(t, p.MovieName)
	assert.Nil(t, p.Rating)

	require.NoError(t, p.AfterFind(nil))
	assert.Nil(t, p.ReviewData)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "reviewData")
}

func TestUser_PasswordNeverSerialized(t *testing.T) {
	t.Parallel()
	u := User{ID: 1, Username: "alice99", FullName: "Alice", Password: "$2a$10$hash", ProfileImg: "a.webp"}
	out, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "hash")
	assert.Equal(t, UserSummary{Username: "alice99", FullName: "Alice", Img: "a.webp"}, u.Summary())
}
