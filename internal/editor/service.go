package editor

import (
	"context"
	"sync"

	"github.com/debemdeboas/inkwell/internal/model"
	"github.com/debemdeboas/inkwell/internal/push"
	"github.com/debemdeboas/inkwell/internal/store"
)

const untitled = "Untitled"

type entry struct {
	session *Session
	draftID DraftID

	mu  sync.Mutex
	doc model.Document
}

func (e *entry) document() model.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc
}

// Service keeps the open editing sessions. Saving a session writes the
// document to the store and then tells the widget about it.
type Service struct {
	docs     *store.DocumentStore
	notifier *push.Notifier
	drafts   Repository
	opts     Options

	mu       sync.RWMutex
	sessions map[string]*entry
}

func NewService(docs *store.DocumentStore, notifier *push.Notifier, drafts Repository, opts Options) *Service {
	if drafts == nil {
		drafts = NewMemoryRepository()
	}
	return &Service{
		docs:     docs,
		notifier: notifier,
		drafts:   drafts,
		opts:     opts,
		sessions: make(map[string]*entry),
	}
}

// Open starts a session on the document with the given id. Id 0 opens a new,
// empty document that is created on its first save.
func (s *Service) Open(ctx context.Context, id model.DocumentID) (*Session, error) {
	doc := model.Document{Title: untitled}
	if id != 0 {
		var err error
		if doc, err = s.docs.Document(ctx, id); err != nil {
			return nil, err
		}
	}

	draft, err := s.drafts.CreateDraft(doc.ID)
	if err != nil {
		return nil, err
	}

	e := &entry{doc: doc, draftID: draft.ID}
	opts := s.opts
	opts.OnCapture = func(content string) {
		if err := s.drafts.SaveDraft(e.draftID, []byte(content)); err != nil {
			editorLogger.Error().Err(err).Str("draft_id", string(e.draftID)).Msg("Error saving draft")
		}
	}

	session, err := NewSession(doc.Title, doc.Content, func(ctx context.Context, content string) {
		s.persist(ctx, e, content)
	}, opts)
	if err != nil {
		s.drafts.DeleteDraft(draft.ID)
		return nil, err
	}
	e.session = session

	s.mu.Lock()
	s.sessions[session.ID()] = e
	s.mu.Unlock()

	editorLogger.Info().Str("session_id", session.ID()).Str("document_id", doc.ID.String()).Msg("Editing session opened")
	return session, nil
}

// persist never fails the caller: store and delivery errors are logged and the
// widget catches up through its other triggers.
func (s *Service) persist(ctx context.Context, e *entry, content string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc := e.doc
	doc.Content = content
	saved, err := s.docs.SaveDocument(ctx, doc)
	if err != nil {
		editorLogger.Error().Err(err).Str("document_id", doc.ID.String()).Msg("Error saving document")
		return
	}
	e.doc = saved

	if s.notifier != nil {
		s.notifier.DocumentsChanged(ctx, saved.ID)
	}
}

func (s *Service) Session(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return e.session, true
}

// Document returns the document a session edits, as last saved.
func (s *Service) Document(sessionID string) (model.Document, bool) {
	s.mu.RLock()
	e, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return model.Document{}, false
	}
	return e.document(), true
}

// Draft returns the in-progress content of a session.
func (s *Service) Draft(sessionID string) (*Draft, error) {
	s.mu.RLock()
	e, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.drafts.GetDraft(e.draftID)
}

func (s *Service) Close(sessionID string) error {
	s.mu.Lock()
	e, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	e.session.Close()
	if err := s.drafts.DeleteDraft(e.draftID); err != nil {
		editorLogger.Error().Err(err).Str("draft_id", string(e.draftID)).Msg("Error deleting draft")
	}

	editorLogger.Info().Str("session_id", sessionID).Msg("Editing session closed")
	return nil
}

func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Shutdown closes every open session.
func (s *Service) Shutdown() {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	for _, id := range ids {
		s.Close(id)
	}
}
