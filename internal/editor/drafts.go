package editor

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/debemdeboas/inkwell/internal/model"
)

type DraftID string

// Draft is the last captured content of an editing session.
type Draft struct {
	ID         DraftID
	DocumentID model.DocumentID
	Content    []byte
	UpdatedAt  time.Time

	Initialized bool
}

type Repository interface {
	CreateDraft(documentID model.DocumentID) (*Draft, error)
	SaveDraft(id DraftID, content []byte) error
	GetDraft(id DraftID) (*Draft, error)
	DeleteDraft(id DraftID) error
}

type MemoryRepository struct { // implements Repository
	drafts sync.Map
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) CreateDraft(documentID model.DocumentID) (*Draft, error) {
	id := DraftID(uuid.New().String())
	draft := &Draft{
		ID:         id,
		DocumentID: documentID,
		Content:    []byte{},
		UpdatedAt:  time.Now(),
	}
	r.drafts.Store(id, draft)
	return draft, nil
}

// SaveDraft replaces the draft content. Drafts are stored by value so that a
// draft handed out earlier never changes under its reader.
func (r *MemoryRepository) SaveDraft(id DraftID, content []byte) error {
	var documentID model.DocumentID
	if existing, ok := r.drafts.Load(id); ok {
		documentID = existing.(*Draft).DocumentID
	} else if len(content) == 0 {
		return nil
	}

	r.drafts.Store(id, &Draft{
		ID:          id,
		DocumentID:  documentID,
		Content:     append([]byte(nil), content...),
		UpdatedAt:   time.Now(),
		Initialized: len(content) > 0,
	})
	return nil
}

func (r *MemoryRepository) GetDraft(id DraftID) (*Draft, error) {
	if draft, ok := r.drafts.Load(id); ok {
		return draft.(*Draft), nil
	}
	return nil, fmt.Errorf("draft not found: %s", id)
}

func (r *MemoryRepository) DeleteDraft(id DraftID) error {
	r.drafts.Delete(id)
	return nil
}
