package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%d"
	SuggestedKeyPrefix = "suggested:%d"
)

const (
	UserTTL      = 5 * time.Minute
	SuggestedTTL = time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func SuggestedKey(userID uint) string {
	return fmt.Sprintf(SuggestedKeyPrefix, userID)
}

// Invalidate deletes keys. It is a no-op without Redis.
func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateUser drops everything cached for userID.
func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID), SuggestedKey(userID))
}

// GetJSON loads key into dest. It reports false on a miss or without Redis.
func GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if client == nil {
		return false
	}
	raw, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// SetJSON stores value under key for ttl. Errors are ignored; the cache is
// best effort.
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	client.Set(ctx, key, raw, ttl)
}

// Aside returns the cached value for key or calls load and caches its result.
func Aside[T any](ctx context.Context, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var cached T
	if GetJSON(ctx, key, &cached) {
		return cached, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	SetJSON(ctx, key, v, ttl)
	return v, nil
}
