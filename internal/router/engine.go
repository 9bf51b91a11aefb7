package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-notes/internal/container"
	"github.com/oksasatya/go-ddd-notes/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-notes/pkg/helpers"
	"github.com/oksasatya/go-ddd-notes/pkg/response"
	"github.com/oksasatya/go-ddd-notes/pkg/validation"
)

// NewEngine builds the gin engine with global middleware and every module registered.
func NewEngine(c *container.Container) *gin.Engine {
	validation.Init()

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.CustomRecovery(func(ctx *gin.Context, rec any) {
		helpers.RequestLogger(c.Logger, ctx).WithField("panic", fmt.Sprint(rec)).Error("panic recovered")
		response.Abort(ctx, http.StatusInternalServerError, "Internal server error")
	}))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	r.Use(cors.New(corsConfig(c.Config.CORSOrigins())))
	if c.Config.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	r.NoRoute(func(ctx *gin.Context) {
		response.Error(ctx, http.StatusNotFound, "Not found", nil)
	})
	r.NoMethod(func(ctx *gin.Context) {
		response.Error(ctx, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	reg := NewRegistry(r)
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}

// corsConfig allows credentials; with no configured list the request origin is echoed.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) > 0 {
		cfg.AllowOrigins = origins
	} else {
		cfg.AllowOriginFunc = func(string) bool { return true }
	}
	return cfg
}
