package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-notes/internal/domain/entity"
)

// NoteRepository scopes every operation to the owning user.
type NoteRepository interface {
	// ListByUser returns the user's notes, most recently updated first.
	ListByUser(ctx context.Context, userID string) ([]entity.Note, error)
	// Create fills ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, n *entity.Note) error
	// Update applies the patch and refreshes updated_at. ErrNotFound when id and
	// owner do not both match.
	Update(ctx context.Context, userID, id string, patch entity.NotePatch) (*entity.Note, error)
	// Delete is a no-op when nothing matches.
	Delete(ctx context.Context, userID, id string) error
}
