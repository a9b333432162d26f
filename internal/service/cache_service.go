package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rukshanyomal11/farm-management-system/internal/constants"
	"github.com/rukshanyomal11/farm-management-system/internal/dto"
	"github.com/rukshanyomal11/farm-management-system/pkg/logger"
)

// ProfileCache keeps public identity profiles in Redis so the /me
// lookup does not hit the database on every request. A nil client
// turns every operation into a no-op, which is how the service runs
// when Redis is disabled.
type ProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProfileCache(client *redis.Client, ttl time.Duration) *ProfileCache {
	return &ProfileCache{client: client, ttl: ttl}
}

func profileKey(userID uint) string {
	return fmt.Sprintf("%s%d", constants.CacheKeyProfile, userID)
}

// Get returns the cached profile for a user, or (nil, false) on any
// miss or cache error.
func (c *ProfileCache) Get(ctx context.Context, userID uint) (*dto.UserResponse, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, profileKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.WarnWithContext(ctx, "profile cache read failed").
				Uint("user_id", userID).
				Err(err).
				Log()
		}
		return nil, false
	}

	var profile dto.UserResponse
	if err := json.Unmarshal(raw, &profile); err != nil {
		logger.WarnWithContext(ctx, "profile cache entry corrupt").
			Uint("user_id", userID).
			Err(err).
			Log()
		return nil, false
	}

	logger.DebugWithContext(ctx, "profile cache hit").
		Uint("user_id", userID).
		Log()

	return &profile, true
}

// Set stores a profile. Failures are logged and swallowed; the cache
// never fails a request.
func (c *ProfileCache) Set(ctx context.Context, profile *dto.UserResponse) {
	if c == nil || c.client == nil || profile == nil {
		return
	}

	raw, err := json.Marshal(profile)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, profileKey(profile.ID), raw, c.ttl).Err(); err != nil {
		logger.WarnWithContext(ctx, "profile cache write failed").
			Uint("user_id", profile.ID).
			Err(err).
			Log()
	}
}

// Invalidate drops the cached profile after any mutation that changes
// what /me would return.
func (c *ProfileCache) Invalidate(ctx context.Context, userID uint) {
	if c == nil || c.client == nil {
		return
	}

	if err := c.client.Del(ctx, profileKey(userID)).Err(); err != nil {
		logger.WarnWithContext(ctx, "profile cache invalidation failed").
			Uint("user_id", userID).
			Err(err).
			Log()
	}
}
