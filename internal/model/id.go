package model

import (
	"sync"
	"time"
)

// IDSource hands out ids from a time-based counter. Ids are strictly increasing
// even when several are requested within the same millisecond.
type IDSource struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDSource() *IDSource {
	return &IDSource{now: time.Now}
}

func (s *IDSource) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.now().UnixMilli()
	if next <= s.last {
		next = s.last + 1
	}
	s.last = next
	return next
}

func (s *IDSource) NextDocumentID() DocumentID { return DocumentID(s.Next()) }

func (s *IDSource) NextImageID() ImageID { return ImageID(s.Next()) }
