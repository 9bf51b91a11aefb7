package client

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-notes/pkg/notefilter"
)

// DefaultSyncDelay is the quiet period before an edited note is saved.
const DefaultSyncDelay = 800 * time.Millisecond

type Option func(*Store)

func WithSyncDelay(d time.Duration) Option { return func(s *Store) { s.delay = d } }

func WithLogger(l *logrus.Logger) Option { return func(s *Store) { s.logger = l } }

// WithSyncErrorHandler is told about background saves that failed. The local
// edit is kept either way.
func WithSyncErrorHandler(fn func(noteID string, err error)) Option {
	return func(s *Store) { s.onSyncError = fn }
}

// Store is the client-side view of the signed-in user's notes. Edits are
// applied locally first; saves to the server are debounced per note.
type Store struct {
	api         Backend
	delay       time.Duration
	syncTimeout time.Duration
	logger      *logrus.Logger
	onSyncError func(noteID string, err error)
	now         func() time.Time

	mu       sync.RWMutex
	user     *User
	notes    []Note
	loading  bool
	selected string
	pending  map[string]NotePatch

	debounce *Debouncer
}

func NewStore(api Backend, opts ...Option) *Store {
	s := &Store{
		api:         api,
		delay:       DefaultSyncDelay,
		syncTimeout: 15 * time.Second,
		logger:      logrus.StandardLogger(),
		now:         time.Now,
		notes:       []Note{},
		pending:     make(map[string]NotePatch),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.debounce = NewDebouncer(s.delay)
	return s
}

// Load resolves the session and fetches the notes. Any failure leaves the
// store signed out and empty; the error is returned for display only.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	user, notes, err := s.fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.user, s.notes, s.selected = nil, []Note{}, ""
		return err
	}
	s.user, s.notes = user, notes
	return nil
}

func (s *Store) fetch(ctx context.Context) (*User, []Note, error) {
	user, err := s.api.Me(ctx)
	if err != nil {
		return nil, nil, err
	}
	notes, err := s.api.ListNotes(ctx)
	if err != nil {
		return nil, nil, err
	}
	if notes == nil {
		notes = []Note{}
	}
	return user, notes, nil
}

// Login signs in and loads the account's notes.
func (s *Store) Login(ctx context.Context, email, password string) error {
	if _, err := s.api.Login(ctx, email, password); err != nil {
		return err
	}
	return s.Load(ctx)
}

// Register creates the account, which also signs it in, and loads its notes.
func (s *Store) Register(ctx context.Context, name, email, password string) error {
	if _, err := s.api.Register(ctx, name, email, password); err != nil {
		return err
	}
	return s.Load(ctx)
}

// CreateNote saves a new note, puts it first and selects it.
func (s *Store) CreateNote(ctx context.Context, patch NotePatch) (Note, error) {
	n, err := s.api.CreateNote(ctx, patch)
	if err != nil {
		return Note{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append([]Note{*n}, s.notes...)
	s.selected = n.ID
	return *n, nil
}

// UpdateNote applies patch locally right away and schedules the save. Edits
// to the same note inside the quiet period are merged into one request.
func (s *Store) UpdateNote(id string, patch NotePatch) {
	if patch.Empty() {
		return
	}
	if patch.Tags != nil {
		tags := append([]string{}, (*patch.Tags)...)
		patch.Tags = &tags
	}
	s.mu.Lock()
	found := false
	for i := range s.notes {
		if s.notes[i].ID == id {
			patch.apply(&s.notes[i])
			s.notes[i].UpdatedAt = s.now().UTC()
			found = true
			break
		}
	}
	if found {
		s.pending[id] = s.pending[id].Merge(patch)
	}
	s.mu.Unlock()

	if found && !s.debounce.Schedule(id, func() { s.sync(id) }) {
		// closed store: nothing will fire later, so save now
		s.sync(id)
	}
}

// sync sends the merged pending patch for one note.
func (s *Store) sync(id string) {
	s.mu.Lock()
	patch, ok := s.pending[id]
	delete(s.pending, id)
	s.mu.Unlock()
	if !ok || patch.Empty() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.syncTimeout)
	defer cancel()
	if _, err := s.api.UpdateNote(ctx, id, patch); err != nil {
		s.logger.WithError(err).WithField("note_id", id).Warn("note sync failed; local copy kept")
		if s.onSyncError != nil {
			s.onSyncError(id, err)
		}
	}
}

// AddTag normalizes raw and adds it to the note's tags through UpdateNote.
func (s *Store) AddTag(id, raw string) bool {
	n, ok := s.Note(id)
	if !ok {
		return false
	}
	tags, added := AddTag(n.Tags, raw)
	if added {
		s.UpdateNote(id, NotePatch{Tags: &tags})
	}
	return added
}

func (s *Store) RemoveTag(id, tag string) {
	n, ok := s.Note(id)
	if !ok {
		return
	}
	tags := RemoveTag(n.Tags, tag)
	s.UpdateNote(id, NotePatch{Tags: &tags})
}

// DeleteNote removes the note locally, drops its unsaved edits, then deletes
// it on the server. A server failure is returned but not rolled back.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	s.debounce.Cancel(id)

	s.mu.Lock()
	delete(s.pending, id)
	kept := make([]Note, 0, len(s.notes))
	for _, n := range s.notes {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	s.notes = kept
	if s.selected == id {
		s.selected = ""
		if len(kept) > 0 {
			s.selected = kept[0].ID
		}
	}
	s.mu.Unlock()

	if err := s.api.DeleteNote(ctx, id); err != nil {
		s.logger.WithError(err).WithField("note_id", id).Warn("note delete failed on server")
		return err
	}
	return nil
}

// Logout saves pending edits first, then ends the session. Local state is
// cleared only once the server call succeeds.
func (s *Store) Logout(ctx context.Context) error {
	s.debounce.Flush()
	if err := s.api.Logout(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user, s.notes, s.selected = nil, []Note{}, ""
	return nil
}

// Flush saves every pending edit now.
func (s *Store) Flush() {
	s.debounce.Flush()
}

// Close flushes pending edits and stops scheduling new ones.
func (s *Store) Close() {
	s.debounce.Flush()
	s.debounce.Stop()
}

func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Notes returns a copy of the local list in display order.
func (s *Store) Notes() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyNotes(s.notes)
}

func (s *Store) Note(id string) (Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.notes {
		if n.ID == id {
			return copyNote(n), true
		}
	}
	return Note{}, false
}

func (s *Store) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = id
}

// Selected returns the selected note, if it still exists.
func (s *Store) Selected() (Note, bool) {
	s.mu.RLock()
	id := s.selected
	s.mu.RUnlock()
	if id == "" {
		return Note{}, false
	}
	return s.Note(id)
}

func (s *Store) Filtered(c notefilter.Criteria) []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyNotes(notefilter.Apply(s.notes, c, func(n Note) (string, string, []string) {
		return n.Title, n.Content, n.Tags
	}))
}

// Tags lists the distinct tags across local notes, sorted.
func (s *Store) Tags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sets := make([][]string, 0, len(s.notes))
	for _, n := range s.notes {
		sets = append(sets, n.Tags)
	}
	return notefilter.DistinctTags(sets...)
}

func copyNote(n Note) Note {
	n.Tags = append([]string{}, n.Tags...)
	return n
}

func copyNotes(in []Note) []Note {
	out := make([]Note, len(in))
	for i, n := range in {
		out[i] = copyNote(n)
	}
	return out
}
