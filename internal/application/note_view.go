package application

import (
	"time"

	"github.com/oksasatya/go-ddd-notes/internal/domain/entity"
)

// NoteView is the wire shape of a note
type NoteView struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func ToNoteView(n entity.Note) NoteView {
	return NoteView{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Tags:      entity.NormalizeTags(n.Tags),
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func ToNoteViews(notes []entity.Note) []NoteView {
	out := make([]NoteView, 0, len(notes))
	for _, n := range notes {
		out = append(out, ToNoteView(n))
	}
	return out
}
