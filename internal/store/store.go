// Package store persists the document list under a well-known key and reports
// every mutation so that readers in other components can follow it.
package store

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

var storeLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	storeLogger = l
}

var (
	ErrNotFound = errors.New("key not found")
	ErrClosed   = errors.New("store closed")
)

// Change reports that the value under Key was written or removed.
type Change struct {
	Key string
}

// KV is a string-keyed blob store with change notifications.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Watch returns a channel of changes that is closed once ctx is done or
	// the store is closed.
	Watch(ctx context.Context) (<-chan Change, error)
	Close() error
}
