package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/debemdeboas/inkwell/internal/model"
)

// DocumentsKey is the key the document list is kept under.
const DocumentsKey = "socialHubPosts"

// RecognizedKeys are the keys whose mutation means the document list may have changed.
var RecognizedKeys = []string{DocumentsKey, "blogPosts", "posts"}

func IsRecognizedKey(key string) bool {
	return slices.Contains(RecognizedKeys, key)
}

var ErrDocumentNotFound = errors.New("document not found")

// DocumentStore keeps the whole document list as one JSON array under a single key.
type DocumentStore struct {
	kv  KV
	key string

	ids *model.IDSource
	now func() time.Time

	// mu serializes read-modify-write cycles of this process.
	mu sync.Mutex
}

func NewDocumentStore(kv KV, key string) *DocumentStore {
	if key == "" {
		key = DocumentsKey
	}
	return &DocumentStore{
		kv:  kv,
		key: key,
		ids: model.NewIDSource(),
		now: time.Now,
	}
}

func (s *DocumentStore) Key() string { return s.key }

func (s *DocumentStore) KV() KV { return s.kv }

// LoadDocuments returns the stored list. A missing key, an unreadable store or
// a value that is not a non-empty JSON array all yield DefaultDocuments.
func (s *DocumentStore) LoadDocuments(ctx context.Context) []model.Document {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		storeLogger.Debug().Str("key", s.key).Msg("No stored documents, using defaults")
		return model.DefaultDocuments()
	}
	if err != nil {
		storeLogger.Error().Err(err).Str("key", s.key).Msg("Error reading documents, using defaults")
		return model.DefaultDocuments()
	}

	docs, err := decodeDocuments(data)
	if err != nil {
		storeLogger.Warn().Err(err).Str("key", s.key).Msg("Stored documents are unusable, using defaults")
		return model.DefaultDocuments()
	}
	if len(docs) == 0 {
		return model.DefaultDocuments()
	}
	return docs
}

func decodeDocuments(data []byte) ([]model.Document, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse documents: %w", err)
	}
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("documents value is not an array")
	}

	var docs []model.Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("parse documents: %w", err)
	}
	return docs, nil
}

// SaveDocuments replaces the whole list.
func (s *DocumentStore) SaveDocuments(ctx context.Context, docs []model.Document) error {
	if docs == nil {
		docs = []model.Document{}
	}
	data, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("encode documents: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("save documents: %w", err)
	}
	return nil
}

// SaveDocument stores doc. A document without an id is new: it gets an id and
// today's date and goes to the front of the list. A known id is replaced in place.
func (s *DocumentStore) SaveDocument(ctx context.Context, doc model.Document) (model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.LoadDocuments(ctx)

	if doc.ID == 0 {
		doc.ID = s.ids.NextDocumentID()
	}
	if doc.Date == "" {
		doc.Date = model.DisplayDate(s.now())
	}

	idx := slices.IndexFunc(docs, func(d model.Document) bool { return d.ID == doc.ID })
	if idx >= 0 {
		docs[idx] = doc
	} else {
		docs = append([]model.Document{doc}, docs...)
	}

	if err := s.SaveDocuments(ctx, docs); err != nil {
		return doc, err
	}

	storeLogger.Debug().Str("document_id", doc.ID.String()).Bool("new", idx < 0).Msg("Document saved")
	return doc, nil
}

func (s *DocumentStore) Document(ctx context.Context, id model.DocumentID) (model.Document, error) {
	for _, d := range s.LoadDocuments(ctx) {
		if d.ID == id {
			return d, nil
		}
	}
	return model.Document{}, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
}

func (s *DocumentStore) DeleteDocument(ctx context.Context, id model.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.LoadDocuments(ctx)
	idx := slices.IndexFunc(docs, func(d model.Document) bool { return d.ID == id })
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}

	return s.SaveDocuments(ctx, slices.Delete(docs, idx, idx+1))
}
