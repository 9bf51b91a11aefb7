package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-notes/internal/interface/middleware"
)

type DebugModule struct {
	Limiter *Limiter
}

func NewDebugModule(l *Limiter) *DebugModule { return &DebugModule{Limiter: l} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// expvar metrics, private networks only, rate-limited per IP
	rl := m.Limiter.PerIPAndPath(120, time.Minute)
	rg.GET("/debug/vars", middleware.PrivateOnly(), rl, gin.WrapH(expvar.Handler()))
}
