package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-notes/internal/domain/entity"
	"github.com/oksasatya/go-ddd-notes/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-notes/pkg/helpers"
	"github.com/oksasatya/go-ddd-notes/pkg/notefilter"
)

type stubIndex struct {
	indexed  []string
	removed  []string
	ids      []string
	err      error
	indexErr error
}

func (s *stubIndex) Index(_ context.Context, n entity.Note) error {
	s.indexed = append(s.indexed, n.ID)
	return s.indexErr
}

func (s *stubIndex) Remove(_ context.Context, id string) error {
	s.removed = append(s.removed, id)
	return nil
}

func (s *stubIndex) Search(context.Context, string, notefilter.Criteria) ([]string, error) {
	return s.ids, s.err
}

type memUploader struct {
	path, contentType string
	body              []byte
}

func (u *memUploader) Upload(_ context.Context, path, contentType string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	u.path, u.contentType, u.body = path, contentType, b
	return "https://storage.test/" + path, nil
}

func ptr[T any](v T) *T { return &v }

func newNoteService(index NoteIndex, up ObjectUploader) *NoteService {
	return NewNoteService(memory.NewNoteRepository(), index, up, helpers.NewNopLogger())
}

func TestNoteService_CreateDefaults(t *testing.T) {
	svc := newNoteService(nil, nil)

	n, err := svc.Create(context.Background(), "u1", CreateNoteInput{})
	require.NoError(t, err)
	assert.Equal(t, "Untitled", n.Title)
	assert.Equal(t, "", n.Content)
	assert.NotNil(t, n.Tags)
	assert.Empty(t, n.Tags)
	assert.Equal(t, n.CreatedAt, n.UpdatedAt)
}

func TestNoteService_UpdateAndOwnership(t *testing.T) {
	svc := newNoteService(nil, nil)
	ctx := context.Background()

	n, err := svc.Create(ctx, "u1", CreateNoteInput{Title: ptr("A"), Content: ptr("body"), Tags: ptr([]string{"x"})})
	require.NoError(t, err)

	got, err := svc.Update(ctx, "u1", n.ID, entity.NotePatch{Content: ptr("new")})
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)
	assert.Equal(t, "new", got.Content)
	assert.Equal(t, []string{"x"}, got.Tags)
	assert.True(t, got.UpdatedAt.After(n.UpdatedAt))

	_, err = svc.Update(ctx, "u2", n.ID, entity.NotePatch{Title: ptr("stolen")})
	assert.ErrorIs(t, err, ErrNoteNotFound)

	_, err = svc.Update(ctx, "u1", "not-a-uuid", entity.NotePatch{})
	assert.ErrorIs(t, err, ErrNoteNotFound)

	_, err = svc.Update(ctx, "u1", "", entity.NotePatch{})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, MsgNoteIDRequired, err.Error())
}

func TestNoteService_DeleteIsIdempotentAndScoped(t *testing.T) {
	idx := &stubIndex{}
	svc := newNoteService(idx, nil)
	ctx := context.Background()

	n, err := svc.Create(ctx, "u1", CreateNoteInput{})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "u2", n.ID))
	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, "u1", n.ID))
	require.NoError(t, svc.Delete(ctx, "u1", n.ID))
	require.NoError(t, svc.Delete(ctx, "u1", "garbage"))
	assert.ErrorIs(t, svc.Delete(ctx, "u1", ""), ErrValidation)

	list, err = svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Contains(t, idx.indexed, n.ID)
	assert.Contains(t, idx.removed, n.ID)
}

func TestNoteService_SearchFallbackAndTags(t *testing.T) {
	svc := newNoteService(nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", CreateNoteInput{Title: ptr("Groceries"), Tags: ptr([]string{"home"})})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "u1", CreateNoteInput{Title: ptr("Standup"), Content: ptr("buy milk"), Tags: ptr([]string{"work", "daily"})})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "u2", CreateNoteInput{Title: ptr("milk"), Tags: ptr([]string{"secret"})})
	require.NoError(t, err)

	got, err := svc.Search(ctx, "u1", notefilter.Criteria{Search: "MILK"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Standup", got[0].Title)

	got, err = svc.Search(ctx, "u1", notefilter.Criteria{Tag: "home"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Groceries", got[0].Title)

	tags, err := svc.Tags(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"daily", "home", "work"}, tags)
}

func TestNoteService_SearchUsesIndexThenFallsBack(t *testing.T) {
	idx := &stubIndex{}
	svc := newNoteService(idx, nil)
	ctx := context.Background()

	a, err := svc.Create(ctx, "u1", CreateNoteInput{Title: ptr("alpha")})
	require.NoError(t, err)
	b, err := svc.Create(ctx, "u1", CreateNoteInput{Title: ptr("beta")})
	require.NoError(t, err)

	// hits that agree with the stored notes are served in index order
	idx.ids = []string{a.ID, b.ID}
	got, err := svc.Search(ctx, "u1", notefilter.Criteria{Search: "a"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)
	assert.Empty(t, idx.removed)

	// a document for a note deleted behind the index's back is dropped
	idx.ids = []string{b.ID, "6f1c2f9e-3a0f-4b8e-9a51-0a2b3c4d5e6f", a.ID}
	got, err = svc.Search(ctx, "u1", notefilter.Criteria{Search: "a"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"6f1c2f9e-3a0f-4b8e-9a51-0a2b3c4d5e6f"}, idx.removed)

	idx.err = errors.New("cluster red")
	got, err = svc.Search(ctx, "u1", notefilter.Criteria{Search: "bet"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)
}

func TestNoteService_Export(t *testing.T) {
	ctx := context.Background()

	_, err := newNoteService(nil, nil).Export(ctx, "u1")
	assert.ErrorIs(t, err, ErrExportUnavailable)

	up := &memUploader{}
	svc := newNoteService(nil, up)
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	_, err = svc.Create(ctx, "u1", CreateNoteInput{Title: ptr("A")})
	require.NoError(t, err)

	url, err := svc.Export(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "exports/u1/20260102T030405Z.json", up.path)
	assert.Equal(t, "https://storage.test/exports/u1/20260102T030405Z.json", url)
	assert.Equal(t, "application/json", up.contentType)

	var doc struct {
		Notes []NoteView `json:"notes"`
	}
	require.NoError(t, json.Unmarshal(up.body, &doc))
	require.Len(t, doc.Notes, 1)
	assert.Equal(t, "A", doc.Notes[0].Title)
}

func TestNoteService_SearchIgnoresStaleIndexHits(t *testing.T) {
	idx := &stubIndex{}
	svc := newNoteService(idx, nil)
	ctx := context.Background()

	n, err := svc.Create(ctx, "u1", CreateNoteInput{Title: ptr("alpha")})
	require.NoError(t, err)

	// the rename never reaches the index
	idx.indexErr = errors.New("cluster unavailable")
	_, err = svc.Update(ctx, "u1", n.ID, entity.NotePatch{Title: ptr("beta")})
	require.NoError(t, err)
	idx.indexErr = nil
	idx.indexed = nil

	idx.ids = []string{n.ID}
	got, err := svc.Search(ctx, "u1", notefilter.Criteria{Search: "alpha"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, []string{n.ID}, idx.indexed, "stale document is reindexed")
}

func TestNoteService_SearchFindsNotesMissingFromIndex(t *testing.T) {
	svc := newNoteService(nil, nil)
	ctx := context.Background()

	// written before the index was enabled
	n, err := svc.Create(ctx, "u1", CreateNoteInput{Title: ptr("Quarterly plan")})
	require.NoError(t, err)

	idx := &stubIndex{}
	svc.Index = idx
	got, err := svc.Search(ctx, "u1", notefilter.Criteria{Search: "quarter"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, n.ID, got[0].ID)
	assert.Equal(t, []string{n.ID}, idx.indexed)
}
