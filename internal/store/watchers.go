package store

import (
	"context"
	"sync"
)

const watchBuffer = 16

// watchers fans changes out to every live Watch channel. Slow readers miss
// changes instead of blocking writers.
type watchers struct {
	mu     sync.RWMutex
	subs   map[chan Change]struct{}
	closed bool
}

func newWatchers() *watchers {
	return &watchers{subs: make(map[chan Change]struct{})}
}

func (w *watchers) subscribe(ctx context.Context) (<-chan Change, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrClosed
	}

	ch := make(chan Change, watchBuffer)
	w.subs[ch] = struct{}{}

	go func() {
		<-ctx.Done()
		w.remove(ch)
	}()

	return ch, nil
}

func (w *watchers) remove(ch chan Change) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.subs[ch]; ok {
		delete(w.subs, ch)
		close(ch)
	}
}

func (w *watchers) publish(key string) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for ch := range w.subs {
		select {
		case ch <- Change{Key: key}:
		default:
			storeLogger.Warn().Str("key", key).Msg("Watcher is not keeping up, dropping change")
		}
	}
}

func (w *watchers) count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.subs)
}

func (w *watchers) close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.closed = true
	for ch := range w.subs {
		delete(w.subs, ch)
		close(ch)
	}
}
