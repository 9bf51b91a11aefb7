package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-notes/internal/container"
	"github.com/oksasatya/go-ddd-notes/internal/interface/middleware"
)

// Limiter builds rate-limit middleware; it is a pass-through when Redis is off.
type Limiter struct {
	rdb    *redis.Client
	logger *logrus.Logger
}

func NewLimiter(c *container.Container) *Limiter {
	l := &Limiter{logger: c.Logger}
	if c.Config.RateLimitEnabled {
		l.rdb = c.Redis
	}
	return l
}

func (l *Limiter) PerIPAndPath(limit int, window time.Duration) gin.HandlerFunc {
	return middleware.RateLimit(l.rdb, l.logger, limit, window, middleware.KeyByIPAndPath(), nil)
}

func (l *Limiter) PerUser(limit int, window time.Duration) gin.HandlerFunc {
	return middleware.RateLimit(l.rdb, l.logger, limit, window, middleware.KeyByUserID(), nil)
}
