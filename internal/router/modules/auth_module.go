package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ddd-notes/internal/interface/http"
)

// AuthModule routes:
// POST /api/auth (register), POST /api/auth/login, POST /api/auth/logout, GET /api/auth/me
type AuthModule struct {
	Handler *handlers.AuthHandler
	Limiter *Limiter
}

func NewAuthModule(h *handlers.AuthHandler, l *Limiter) *AuthModule {
	return &AuthModule{Handler: h, Limiter: l}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	registerLimiter := m.Limiter.PerIPAndPath(10, time.Minute)
	loginLimiter := m.Limiter.PerIPAndPath(20, time.Minute)

	rg.POST("/auth", registerLimiter, m.Handler.Register)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/logout", m.Handler.Logout)
	rg.GET("/auth/me", m.Handler.Me)
}
