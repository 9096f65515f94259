package session

import (
	"sync"
	"time"

	"github.com/swapavan11/apricity-notebook/internal/config"
	"github.com/swapavan11/apricity-notebook/internal/errors"
	"github.com/swapavan11/apricity-notebook/internal/ink"
	"github.com/swapavan11/apricity-notebook/internal/logger"
	"github.com/swapavan11/apricity-notebook/internal/note"
	"github.com/swapavan11/apricity-notebook/internal/richtext"
)

// DefaultTitle names notes created implicitly when the store is empty.
const DefaultTitle = "Untitled"

// Store is the persistence surface a session saves into.
type Store interface {
	Latest() (*note.Note, error)
	Create(title string) (*note.Note, error)
	Fetch(id string) (*note.Note, error)
	Save(n *note.Note) error
	Delete(id string) error
	List(limit, offset int) ([]note.Summary, int, error)
}

// Session owns the note currently open in the editor: its rich text
// document, its ink layer, and the debounced autosave that keeps the
// store in sync. The autosave timer fires on its own goroutine, so all
// editor state is guarded by a mutex; mutate the document and layer
// through EditText/EditInk, which serialize against an in-flight save.
type Session struct {
	cfg   *config.Config
	store Store

	mu        sync.Mutex
	current   *note.Note
	doc       *richtext.Document
	layer     *ink.Layer
	textDirty bool
	saveErr   error
	lastSaved time.Time

	debouncer *Debouncer
}

// New builds a session over store with an empty editor. Pass a nil
// factory for real autosave timers.
func New(cfg *config.Config, store Store, factory TimerFactory) *Session {
	s := &Session{
		cfg:   cfg,
		store: store,
	}
	s.resetEditor()
	s.debouncer = NewDebouncer(cfg.AutosaveDebounce(), s.autosave, factory)
	return s
}

// resetEditor clears the editor state. Caller holds the lock (or owns
// the session exclusively, as in New).
func (s *Session) resetEditor() {
	s.current = nil
	s.doc = richtext.NewDocument()
	s.layer = ink.NewLayer(s.geometry())
	s.textDirty = false
}

func (s *Session) geometry() ink.Geometry {
	return ink.Geometry{
		DocWidth:        float64(s.cfg.DocWidth),
		PageHeight:      float64(s.cfg.PageHeight),
		HeightIncrement: float64(s.cfg.HeightIncrement),
		BottomMargin:    float64(s.cfg.BottomMargin),
	}
}

// Current returns the open note, or nil when nothing is loaded.
func (s *Session) Current() *note.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Document returns the rich text document for inspection. Mutations
// must go through EditText.
func (s *Session) Document() *richtext.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Layer returns the ink layer for inspection. Mutations must go
// through EditInk.
func (s *Session) Layer() *ink.Layer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layer
}

// EditText applies a rich text edit under the session lock, marks the
// text dirty, and schedules an autosave.
func (s *Session) EditText(fn func(*richtext.Document)) {
	s.mu.Lock()
	fn(s.doc)
	s.textDirty = true
	s.mu.Unlock()
	s.debouncer.Trigger()
}

// EditInk applies an ink edit under the session lock and schedules an
// autosave. The layer tracks its own dirty state.
func (s *Session) EditInk(fn func(*ink.Layer)) {
	s.mu.Lock()
	fn(s.layer)
	s.mu.Unlock()
	s.debouncer.Trigger()
}

// MarkTextDirty records a rich text edit and schedules an autosave.
func (s *Session) MarkTextDirty() {
	s.mu.Lock()
	s.textDirty = true
	s.mu.Unlock()
	s.TriggerAutosave()
}

// TriggerAutosave restarts the autosave countdown. Call after every
// edit; bursts collapse into a single save.
func (s *Session) TriggerAutosave() {
	s.debouncer.Trigger()
}

func (s *Session) autosave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveNow(); err != nil {
		s.saveErr = err
		logger.Error("autosave failed", err)
	}
}

// SaveErr returns the last autosave failure, if any. Cleared by the
// next successful save.
func (s *Session) SaveErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveErr
}

// Dirty reports whether the editor holds unsaved changes.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty()
}

func (s *Session) dirty() bool {
	return s.textDirty || s.layer.Dirty()
}

// SaveNow serializes the open note and writes it to the store. With no
// note open or no pending changes it does nothing. On failure the
// editor keeps its dirty state so the changes are retried later.
func (s *Session) SaveNow() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveNow()
}

func (s *Session) saveNow() error {
	if s.current == nil || !s.dirty() {
		return nil
	}

	snapshot, err := ink.EncodePNG(ink.Render(s.layer, 1.0))
	if err != nil {
		return errors.NewInternal(err)
	}

	s.current.Content = s.doc.MarshalHTML()
	s.current.Strokes = s.layer.Strokes()
	s.current.Snapshot = snapshot

	if err := s.store.Save(s.current); err != nil {
		return err
	}

	s.textDirty = false
	s.layer.MarkClean()
	s.saveErr = nil
	s.lastSaved = time.Now()
	return nil
}

// LastSaved returns when the open note last reached the store. Zero
// until the first successful save.
func (s *Session) LastSaved() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaved
}

// Open loads the most recently updated note, creating a default one
// when the store is empty.
func (s *Session) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.store.Latest()
	if errors.Is(err, errors.ErrNotFound) {
		n, err = s.store.Create(DefaultTitle)
	}
	if err != nil {
		return err
	}
	s.load(n)
	return nil
}

// SwitchNote flushes any unsaved changes on the open note, then loads
// the note with the given id. The outgoing save completes before the
// incoming note is fetched so a quick switch-back never shows stale
// content.
func (s *Session) SwitchNote(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.ID == id {
		return nil
	}

	s.debouncer.Cancel()
	if err := s.saveNow(); err != nil {
		return err
	}

	n, err := s.store.Fetch(id)
	if err != nil {
		return err
	}
	s.load(n)
	return nil
}

// NewNote flushes the open note and starts a fresh one with title.
func (s *Session) NewNote(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.debouncer.Cancel()
	if err := s.saveNow(); err != nil {
		return err
	}

	n, err := s.store.Create(title)
	if err != nil {
		return err
	}
	s.load(n)
	return nil
}

// DeleteCurrent removes the open note from the store and clears the
// editor. Pending autosaves for the deleted note are dropped.
func (s *Session) DeleteCurrent() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return errors.NewInvalidRequest("no note is open")
	}

	s.debouncer.Cancel()
	if err := s.store.Delete(s.current.ID); err != nil {
		return err
	}
	s.resetEditor()
	return nil
}

// Close flushes any pending save. Call before shutdown.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.debouncer.Cancel()
	return s.saveNow()
}

// load installs a fetched note into the editor. Caller holds the lock.
func (s *Session) load(n *note.Note) {
	s.current = n
	s.textDirty = false

	s.doc = richtext.NewDocument()
	if n.Content != "" {
		if doc, err := richtext.UnmarshalHTML(n.Content); err == nil {
			s.doc = doc
		} else {
			logger.Warn("note content unreadable, starting blank",
				map[string]interface{}{"note_id": n.ID})
		}
	}

	s.layer = ink.NewLayer(s.geometry())
	switch {
	case len(n.Strokes) > 0:
		s.layer.SetStrokes(n.Strokes)
	case len(n.Snapshot) > 0:
		img, err := ink.DecodePNG(n.Snapshot)
		if err != nil {
			logger.Error("ink snapshot unreadable, starting blank",
				errors.NewSnapshotDecode(n.ID, err))
			return
		}
		s.layer.SetSnapshot(img)
	}
}
