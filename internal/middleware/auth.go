package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// AuthCookie is the cookie the web client stores its session token in.
const AuthCookie = "jwt"

var (
	errNoToken      = errors.New("Unauthorized: No Token Provided")
	errInvalidToken = errors.New("Unauthorized: Invalid Token")
	errRevokedToken = errors.New("Unauthorized: Token Revoked")
)

// Authenticator verifies HMAC-signed session tokens and exposes the caller's
// user id to handlers through c.Locals("userID").
type Authenticator struct {
	secret []byte
	issuer string
	redis  *redis.Client
}

// NewAuthenticator returns an Authenticator. rdb may be nil, in which case
// revocation is not checked.
func NewAuthenticator(secret, issuer string, rdb *redis.Client) *Authenticator {
	return &Authenticator{secret: []byte(secret), issuer: issuer, redis: rdb}
}

// Issue signs a token for userID valid for ttl.
func (a *Authenticator) Issue(userID uint, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    a.issuer,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Verify parses tokenString and returns the user id it was issued for.
func (a *Authenticator) Verify(ctx context.Context, tokenString string) (uint, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithIssuer(a.issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return 0, errInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return 0, errInvalidToken
	}

	if a.redis != nil && claims.ID != "" {
		revoked, err := a.redis.Exists(ctx, "blacklist:"+claims.ID).Result()
		if err == nil && revoked > 0 {
			return 0, errRevokedToken
		}
	}

	return uint(userID), nil
}

// Revoke blacklists the token's id until it would have expired anyway.
func (a *Authenticator) Revoke(ctx context.Context, tokenString string) error {
	if a.redis == nil {
		return errors.New("redis client is nil")
	}
	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithIssuer(a.issuer)); err != nil {
		return errInvalidToken
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return a.redis.Set(ctx, "blacklist:"+claims.ID, 1, ttl).Err()
}

// Required rejects requests without a valid token. Tokens are read from the
// Authorization header, then the session cookie, then the token query
// parameter used by websocket clients.
func (a *Authenticator) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := extractToken(c)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": errNoToken.Error()})
		}

		userID, err := a.Verify(c.UserContext(), tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}

		c.Locals("userID", userID)
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
		return c.Next()
	}
}

func extractToken(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie := c.Cookies(AuthCookie); cookie != "" {
		return cookie
	}
	return c.Query("token")
}
