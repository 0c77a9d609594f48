package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

func newAuthApp(a *Authenticator) *fiber.App {
	app := fiber.New()
	app.Get("/me", a.Required(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": c.Locals("userID").(uint)})
	})
	return app
}

func TestAuthRequired(t *testing.T) {
	a := NewAuthenticator(testSecret, "reelroom-api", nil)
	app := newAuthApp(a)

	valid, err := a.Issue(7, time.Hour)
	require.NoError(t, err)

	foreign, err := NewAuthenticator(testSecret, "someone-else", nil).Issue(7, time.Hour)
	require.NoError(t, err)

	expired, err := a.Issue(7, -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"no token", func(*http.Request) {}, http.StatusUnauthorized},
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+valid) }, http.StatusOK},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AuthCookie, Value: valid}) }, http.StatusOK},
		{"malformed header", func(r *http.Request) { r.Header.Set("Authorization", valid) }, http.StatusUnauthorized},
		{"wrong issuer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+foreign) }, http.StatusUnauthorized},
		{"expired", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expired) }, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestAuthRequired_QueryTokenAndNoneAlg(t *testing.T) {
	a := NewAuthenticator(testSecret, "reelroom-api", nil)
	app := newAuthApp(a)

	valid, err := a.Issue(3, time.Hour)
	require.NoError(t, err)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me?token="+valid, nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id":3}`, string(body))

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "3",
		Issuer:    "reelroom-api",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = a.Verify(context.Background(), raw)
	assert.Error(t, err)
}

func TestAuthenticator_Revoke(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	a := NewAuthenticator(testSecret, "reelroom-api", rdb)

	token, err := a.Issue(11, time.Hour)
	require.NoError(t, err)

	id, err := a.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, uint(11), id)

	require.NoError(t, a.Revoke(context.Background(), token))
	_, err = a.Verify(context.Background(), token)
	assert.ErrorIs(t, err, errRevokedToken)
}
