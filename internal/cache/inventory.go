package cache

import (
	"fmt"
	"time"
)

const (
	UserKeyPrefix = "user:%d"
	TrendingKey   = "trending:topics"
)

const (
	UserTTL     = 5 * time.Minute
	TrendingTTL = time.Minute
)

// UserKey is the cache key for an authenticated principal.
func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}
