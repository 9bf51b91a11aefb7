package helpers

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient returns nil for an empty address, which callers treat as
// "redis disabled". Timeouts are short so a stalled server makes the rate
// limiter fail open quickly instead of holding requests.
func NewRedisClient(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  300 * time.Millisecond,
		WriteTimeout: 300 * time.Millisecond,
		PoolTimeout:  500 * time.Millisecond,
	})
}
