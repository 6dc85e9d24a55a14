package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/quoteboard/quoteboard/internal/auth"
	"github.com/quoteboard/quoteboard/internal/model"
)

// sessionPrefix is the Redis key prefix for sessions. Keys are derived
// from a hash of the token so the raw secret never reaches storage.
const sessionPrefix = "session:"

// storedSession is the session payload kept in Redis.
type storedSession struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `json:"is_admin"`
}

// SetSession stores the principal under the session token for the given TTL.
func (c *Cache) SetSession(ctx context.Context, token string, p *model.Principal, ttl time.Duration) error {
	data, err := json.Marshal(storedSession{
		UserID:      p.UserID,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		IsAdmin:     p.IsAdmin,
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return c.client.Set(ctx, sessionKey(token), data, ttl).Err()
}

// GetSession retrieves the principal for a session token.
// Returns nil on a miss; a miss is not an error.
func (c *Cache) GetSession(ctx context.Context, token string) (*model.Principal, error) {
	data, err := c.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		// Expired or unknown token
		return nil, nil //nolint:nilerr
	}

	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		// Corrupted entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.Principal{
		UserID:      stored.UserID,
		Username:    stored.Username,
		DisplayName: stored.DisplayName,
		IsAdmin:     stored.IsAdmin,
	}, nil
}

// DeleteSession removes a session. Used by logout.
func (c *Cache) DeleteSession(ctx context.Context, token string) error {
	return c.client.Del(ctx, sessionKey(token)).Err()
}

func sessionKey(token string) string {
	return sessionPrefix + auth.QuickHash(token)
}
