package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-notes/internal/application"
	"github.com/oksasatya/go-ddd-notes/internal/domain/entity"
	"github.com/oksasatya/go-ddd-notes/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-notes/pkg/helpers"
	"github.com/oksasatya/go-ddd-notes/pkg/notefilter"
	"github.com/oksasatya/go-ddd-notes/pkg/response"
)

type NoteHandler struct {
	Svc    *application.NoteService
	Logger *logrus.Logger
}

func NewNoteHandler(svc *application.NoteService, logger *logrus.Logger) *NoteHandler {
	return &NoteHandler{Svc: svc, Logger: logger}
}

type createNoteRequest struct {
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Tags    *[]string `json:"tags"`
}

// Absent and null fields both keep the stored value.
type updateNoteRequest struct {
	ID      string    `json:"id"`
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Tags    *[]string `json:"tags"`
}

type exportResponse struct {
	URL string `json:"url"`
}

func userID(c *gin.Context) string {
	return c.GetString(middleware.CtxUserIDKey)
}

// List GET /api/notes
func (h *NoteHandler) List(c *gin.Context) {
	notes, err := h.Svc.List(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, application.ToNoteViews(notes))
}

// Create POST /api/notes
func (h *NoteHandler) Create(c *gin.Context) {
	var req createNoteRequest
	if err := bindJSON(c, &req); err != nil {
		badBody(c, err)
		return
	}
	n, err := h.Svc.Create(c.Request.Context(), userID(c), application.CreateNoteInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	noteOps.Add("created", 1)
	response.Success(c, http.StatusCreated, application.ToNoteView(*n))
}

// Update PUT /api/notes
func (h *NoteHandler) Update(c *gin.Context) {
	var req updateNoteRequest
	if err := bindJSON(c, &req); err != nil {
		badBody(c, err)
		return
	}
	n, err := h.Svc.Update(c.Request.Context(), userID(c), req.ID, entity.NotePatch{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	noteOps.Add("updated", 1)
	response.Success(c, http.StatusOK, application.ToNoteView(*n))
}

// Delete DELETE /api/notes?id=
func (h *NoteHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), userID(c), c.Query("id")); err != nil {
		fail(c, h.Logger, err)
		return
	}
	noteOps.Add("deleted", 1)
	response.Message(c, http.StatusOK, "Note deleted")
}

// Search GET /api/notes/search?q=&tag=
func (h *NoteHandler) Search(c *gin.Context) {
	crit := notefilter.Criteria{Search: c.Query("q"), Tag: c.Query("tag")}
	notes, err := h.Svc.Search(c.Request.Context(), userID(c), crit)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, application.ToNoteViews(notes))
}

// Tags GET /api/notes/tags
func (h *NoteHandler) Tags(c *gin.Context) {
	tags, err := h.Svc.Tags(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, tags)
}

// Export POST /api/notes/export
func (h *NoteHandler) Export(c *gin.Context) {
	url, err := h.Svc.Export(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	noteOps.Add("exported", 1)
	helpers.RequestLogger(h.Logger, c).WithField("url", url).Info("notes exported")
	response.Success(c, http.StatusOK, exportResponse{URL: url})
}
