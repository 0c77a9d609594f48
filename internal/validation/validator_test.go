package validation

import (
	"errors"
	"strings"
	"testing"

	"reelroom/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profileForm struct {
	Username string `json:"username" validate:"omitempty,min=3,max=30,handle"`
	Email    string `json:"email" validate:"omitempty,email"`
	Link     string `json:"link" validate:"omitempty,http_url"`
	Bio      string `json:"bio" validate:"max=160"`
}

func TestStruct(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		form    profileForm
		wantMsg string
	}{
		{"Valid", profileForm{Username: "film_buff", Email: "a@b.co", Link: "https://letterboxd.com/x"}, ""},
		{"Empty Optional Fields", profileForm{}, ""},
		{"Short Username", profileForm{Username: "ab"}, "username must be at least 3 characters long"},
		{"Illegal Username", profileForm{Username: "bad name"}, "username may only contain letters, numbers, dots and underscores"},
		{"Trailing Dot", profileForm{Username: "user."}, "username may only contain"},
		{"Bad Email", profileForm{Email: "not-an-email"}, "email must be a valid email"},
		{"Bad Link", profileForm{Link: "letterboxd"}, "link must be a valid URL"},
		{"Long Bio", profileForm{Bio: strings.Repeat("x", 161)}, "bio must be at most 160 characters long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.form)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var appErr *models.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, models.CodeValidation, appErr.Code)
			assert.Contains(t, appErr.Message, tt.wantMsg)
		})
	}
}

func TestStruct_ReportsEveryField(t *testing.T) {
	t.Parallel()
	err := Struct(profileForm{Username: "ab", Email: "nope"})
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "email must be a valid email", appErr.Message)
	assert.Contains(t, appErr.Err.Error(), "username must be at least 3")
}

func TestToDetails_NonValidatorError(t *testing.T) {
	t.Parallel()
	assert.Nil(t, ToDetails(nil))
	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(errors.New("x")))
}
