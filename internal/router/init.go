package router

import (
	"github.com/oksasatya/go-ddd-notes/internal/application"
	"github.com/oksasatya/go-ddd-notes/internal/container"
	"github.com/oksasatya/go-ddd-notes/internal/infrastructure/search"
	"github.com/oksasatya/go-ddd-notes/internal/infrastructure/storage"
	handlers "github.com/oksasatya/go-ddd-notes/internal/interface/http"
	"github.com/oksasatya/go-ddd-notes/internal/router/modules"
)

type AuthModuleDeps struct {
	Service *application.AuthService
	Handler *handlers.AuthHandler
}

type NoteModuleDeps struct {
	Service *application.NoteService
	Handler *handlers.NoteHandler
}

func buildAuthDeps(c *container.Container) AuthModuleDeps {
	var jobs application.JobPublisher
	if c.Rabbit != nil && c.Config.MailSendEnabled {
		jobs = c.Rabbit
	}
	service := application.NewAuthService(c.Users, c.JWT, jobs, c.Config.AppName, c.Logger)
	return AuthModuleDeps{
		Service: service,
		Handler: handlers.NewAuthHandler(service, c.Cookies, c.Logger),
	}
}

func buildNoteDeps(c *container.Container) NoteModuleDeps {
	var index application.NoteIndex
	if c.ES != nil {
		index = search.NewNoteIndex(c.ES, c.Config.ESNotesIndex, c.Logger)
	}
	var uploader application.ObjectUploader
	if c.GCS != nil && c.Config.GCSBucket != "" {
		uploader = storage.NewGCSUploader(c.GCS, c.Config.GCSBucket)
	}
	service := application.NewNoteService(c.Notes, index, uploader, c.Logger)
	return NoteModuleDeps{
		Service: service,
		Handler: handlers.NewNoteHandler(service, c.Logger),
	}
}

// InitModules wires every feature module from the container into the registry.
// This function should be called once during application startup.
func InitModules(r *Registry, c *container.Container) {
	authDeps := buildAuthDeps(c)
	noteDeps := buildNoteDeps(c)

	limiter := modules.NewLimiter(c)
	r.Add(modules.NewAuthModule(authDeps.Handler, limiter))
	r.Add(modules.NewNotesModule(noteDeps.Handler, authDeps.Service, c.Cookies, limiter))
	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(limiter))
	}
}
