package modules

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-notes/internal/application"
	handlers "github.com/oksasatya/go-ddd-notes/internal/interface/http"
	"github.com/oksasatya/go-ddd-notes/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-notes/pkg/helpers"
	"github.com/oksasatya/go-ddd-notes/pkg/response"
)

// routeMethods is what each notes path serves; every other verb answers 405
// from inside the group, so sessions are checked before the method.
var routeMethods = map[string][]string{
	"":        {http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	"/search": {http.MethodGet},
	"/tags":   {http.MethodGet},
	"/export": {http.MethodPost},
}

var verbs = []string{
	http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
}

func methodNotAllowed(c *gin.Context) {
	response.Error(c, http.StatusMethodNotAllowed, "Method not allowed", nil)
}

// NotesModule routes, all behind the session middleware:
// GET/POST/PUT/DELETE /api/notes, GET /api/notes/search, GET /api/notes/tags, POST /api/notes/export
type NotesModule struct {
	Handler *handlers.NoteHandler
	Auth    *application.AuthService
	Cookies *helpers.Manager
	Limiter *Limiter
}

func NewNotesModule(h *handlers.NoteHandler, auth *application.AuthService, cookies *helpers.Manager, l *Limiter) *NotesModule {
	return &NotesModule{Handler: h, Auth: auth, Cookies: cookies, Limiter: l}
}

func (m *NotesModule) Register(rg *gin.RouterGroup) {
	notes := rg.Group("/notes")
	notes.Use(middleware.Auth(m.Auth, m.Cookies))
	{
		notes.GET("", m.Handler.List)
		notes.POST("", m.Handler.Create)
		notes.PUT("", m.Handler.Update)
		notes.DELETE("", m.Handler.Delete)

		notes.GET("/search", m.Handler.Search)
		notes.GET("/tags", m.Handler.Tags)
		notes.POST("/export", m.Limiter.PerUser(5, time.Minute), m.Handler.Export)
	}

	for path, allowed := range routeMethods {
		for _, verb := range verbs {
			if !contains(allowed, verb) {
				notes.Handle(verb, path, methodNotAllowed)
			}
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
