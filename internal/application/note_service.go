package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-notes/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-notes/internal/domain/repository"
	"github.com/oksasatya/go-ddd-notes/pkg/notefilter"
)

// NoteIndex mirrors notes into a full-text index (Elasticsearch).
type NoteIndex interface {
	Index(ctx context.Context, n entity.Note) error
	Remove(ctx context.Context, id string) error
	// Search returns matching note ids for the user, best match first.
	Search(ctx context.Context, userID string, c notefilter.Criteria) ([]string, error)
}

// ObjectUploader stores an object and returns its URL (GCS).
type ObjectUploader interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

type NoteService struct {
	Notes    repo.NoteRepository
	Index    NoteIndex      // optional
	Uploader ObjectUploader // optional
	Logger   *logrus.Logger
	now      func() time.Time
}

func NewNoteService(notes repo.NoteRepository, index NoteIndex, uploader ObjectUploader, logger *logrus.Logger) *NoteService {
	return &NoteService{
		Notes:    notes,
		Index:    index,
		Uploader: uploader,
		Logger:   logger,
		now:      time.Now,
	}
}

// CreateNoteInput: nil fields take the defaults
type CreateNoteInput struct {
	Title   *string
	Content *string
	Tags    *[]string
}

func (s *NoteService) List(ctx context.Context, userID string) ([]entity.Note, error) {
	return s.Notes.ListByUser(ctx, userID)
}

func (s *NoteService) Create(ctx context.Context, userID string, in CreateNoteInput) (*entity.Note, error) {
	n := &entity.Note{UserID: userID, Title: entity.DefaultNoteTitle, Tags: []string{}}
	entity.NotePatch{Title: in.Title, Content: in.Content, Tags: in.Tags}.Apply(n)
	if err := s.Notes.Create(ctx, n); err != nil {
		return nil, err
	}
	s.index(ctx, *n)
	return n, nil
}

// Update applies a partial patch. Ids that cannot exist are reported as not found.
func (s *NoteService) Update(ctx context.Context, userID, id string, patch entity.NotePatch) (*entity.Note, error) {
	if id == "" {
		return nil, invalid(MsgNoteIDRequired)
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNoteNotFound
	}
	n, err := s.Notes.Update(ctx, userID, id, patch)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, err
	}
	s.index(ctx, *n)
	return n, nil
}

// Delete succeeds whether or not a matching note existed.
func (s *NoteService) Delete(ctx context.Context, userID, id string) error {
	if id == "" {
		return invalid(MsgNoteIDRequired)
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	if err := s.Notes.Delete(ctx, userID, id); err != nil {
		return err
	}
	if s.Index != nil {
		if err := s.Index.Remove(ctx, id); err != nil {
			s.warn(err, "remove note from index failed", id)
		}
	}
	return nil
}

// Search filters the user's notes. The stored notes decide what matches;
// when the index is present its hits are used only if they agree with that
// result, and any drift is repaired by reindexing the notes involved.
func (s *NoteService) Search(ctx context.Context, userID string, c notefilter.Criteria) ([]entity.Note, error) {
	notes, err := s.Notes.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !c.Active() {
		return notes, nil
	}
	matches := notefilter.Apply(notes, c, noteFields)
	if s.Index == nil {
		return matches, nil
	}
	ids, err := s.Index.Search(ctx, userID, c)
	if err != nil {
		s.warn(err, "index search failed, filtering in memory", "")
		return matches, nil
	}
	hits := pick(notes, ids)
	if sameIDs(hits, matches) && len(hits) == len(ids) {
		return hits, nil
	}
	s.repairIndex(ctx, notes, ids, matches)
	return matches, nil
}

// repairIndex reindexes every note the index got wrong for one search and
// drops documents of notes that no longer exist.
func (s *NoteService) repairIndex(ctx context.Context, notes []entity.Note, ids []string, matches []entity.Note) {
	stored := make(map[string]entity.Note, len(notes))
	for _, n := range notes {
		stored[n.ID] = n
	}
	hit := make(map[string]bool, len(ids))
	for _, id := range ids {
		hit[id] = true
		if _, ok := stored[id]; !ok {
			if err := s.Index.Remove(ctx, id); err != nil {
				s.warn(err, "remove stale index document failed", id)
			}
		}
	}
	matched := make(map[string]bool, len(matches))
	for _, n := range matches {
		matched[n.ID] = true
	}
	repaired := 0
	for id, n := range stored {
		if hit[id] != matched[id] {
			s.index(ctx, n)
			repaired++
		}
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"reindexed": repaired, "hits": len(ids), "matches": len(matches)}).Warn("note index out of date; served stored matches")
	}
}

func sameIDs(a, b []entity.Note) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, n := range a {
		set[n.ID] = struct{}{}
	}
	for _, n := range b {
		if _, ok := set[n.ID]; !ok {
			return false
		}
	}
	return true
}

// Tags returns the distinct tags across the user's notes, sorted.
func (s *NoteService) Tags(ctx context.Context, userID string) ([]string, error) {
	notes, err := s.Notes.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sets := make([][]string, 0, len(notes))
	for _, n := range notes {
		sets = append(sets, n.Tags)
	}
	return notefilter.DistinctTags(sets...), nil
}

type exportDocument struct {
	ExportedAt time.Time  `json:"exportedAt"`
	Notes      []NoteView `json:"notes"`
}

// Export writes a JSON snapshot of the user's notes and returns its URL.
func (s *NoteService) Export(ctx context.Context, userID string) (string, error) {
	if s.Uploader == nil {
		return "", ErrExportUnavailable
	}
	notes, err := s.Notes.ListByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	at := s.now().UTC()
	b, err := json.Marshal(exportDocument{ExportedAt: at, Notes: ToNoteViews(notes)})
	if err != nil {
		return "", err
	}
	path := fmt.Sprintf("exports/%s/%s.json", userID, at.Format("20060102T150405Z"))
	return s.Uploader.Upload(ctx, path, "application/json", bytes.NewReader(b))
}

func (s *NoteService) index(ctx context.Context, n entity.Note) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, n); err != nil {
		s.warn(err, "index note failed", n.ID)
	}
}

func (s *NoteService) warn(err error, msg, noteID string) {
	if s.Logger == nil {
		return
	}
	entry := s.Logger.WithError(err)
	if noteID != "" {
		entry = entry.WithField("note_id", noteID)
	}
	entry.Warn(msg)
}

func noteFields(n entity.Note) (string, string, []string) {
	return n.Title, n.Content, n.Tags
}

// pick keeps the notes named by ids, in ids order. Ids the store no longer
// knows are skipped.
func pick(notes []entity.Note, ids []string) []entity.Note {
	byID := make(map[string]entity.Note, len(notes))
	for _, n := range notes {
		byID[n.ID] = n
	}
	out := make([]entity.Note, 0, len(ids))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			out = append(out, n)
		}
	}
	return out
}
