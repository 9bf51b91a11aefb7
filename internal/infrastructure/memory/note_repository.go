package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-ddd-notes/internal/domain/entity"
	"github.com/oksasatya/go-ddd-notes/internal/domain/repository"
)

type NoteRepository struct {
	mu    sync.RWMutex
	notes map[string]entity.Note
	now   func() time.Time
	last  time.Time
}

func NewNoteRepository() *NoteRepository {
	return &NoteRepository{
		notes: make(map[string]entity.Note),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *NoteRepository) ListByUser(_ context.Context, userID string) ([]entity.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entity.Note, 0)
	for _, n := range r.notes {
		if n.UserID == userID {
			out = append(out, clone(n))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *NoteRepository) Create(_ context.Context, n *entity.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.tick()
	n.ID = uuid.NewString()
	n.Tags = entity.NormalizeTags(n.Tags)
	n.CreatedAt = now
	n.UpdatedAt = now
	r.notes[n.ID] = clone(*n)
	return nil
}

func (r *NoteRepository) Update(_ context.Context, userID, id string, patch entity.NotePatch) (*entity.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notes[id]
	if !ok || n.UserID != userID {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&n)
	n.UpdatedAt = r.tick()
	r.notes[id] = n
	out := clone(n)
	return &out, nil
}

func (r *NoteRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n, ok := r.notes[id]; ok && n.UserID == userID {
		delete(r.notes, id)
	}
	return nil
}

// tick returns a write timestamp strictly after every earlier one, so
// updated_at always advances and list order is stable even on a coarse clock.
// Callers hold mu.
func (r *NoteRepository) tick() time.Time {
	now := r.now()
	if !now.After(r.last) {
		now = r.last.Add(time.Microsecond)
	}
	r.last = now
	return now
}

func clone(n entity.Note) entity.Note {
	n.Tags = entity.NormalizeTags(n.Tags)
	return n
}

var _ repository.NoteRepository = (*NoteRepository)(nil)
