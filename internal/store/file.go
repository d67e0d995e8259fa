package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

const fileExt = ".json"

// FileKV stores one file per key in a directory. Changes are observed through
// the file system, so writes from other processes are reported like local ones.
type FileKV struct { // implements KV
	dir string

	mu      sync.Mutex
	closed  bool
	cancels map[int]context.CancelFunc
	nextID  int
	wg      sync.WaitGroup
}

func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileKV{
		dir:     dir,
		cancels: make(map[int]context.CancelFunc),
	}, nil
}

func (f *FileKV) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+fileExt)
}

func (f *FileKV) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Set writes through a hidden temp file and a rename so that readers never
// observe a partial value.
func (f *FileKV) Set(_ context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

func (f *FileKV) Delete(_ context.Context, key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (f *FileKV) Watch(ctx context.Context) (<-chan Change, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, ErrClosed
	}
	ctx, cancel := context.WithCancel(ctx)
	id := f.nextID
	f.nextID++
	f.cancels[id] = cancel
	f.wg.Add(1)
	f.mu.Unlock()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		f.forget(id)
		f.wg.Done()
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(f.dir); err != nil {
		watcher.Close()
		f.forget(id)
		f.wg.Done()
		return nil, fmt.Errorf("watch %s: %w", f.dir, err)
	}

	out := make(chan Change, watchBuffer)
	go func() {
		defer f.wg.Done()
		defer close(out)
		defer watcher.Close()
		defer f.forget(id)

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				change := f.handleFsEvent(ev)
				if change == nil {
					continue
				}
				select {
				case out <- *change:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				storeLogger.Error().Err(err).Str("dir", f.dir).Msg("File watcher error")
			}
		}
	}()

	return out, nil
}

func (f *FileKV) forget(id int) {
	f.mu.Lock()
	cancel, ok := f.cancels[id]
	delete(f.cancels, id)
	f.mu.Unlock()

	if ok {
		cancel()
	}
}

// handleFsEvent maps a file system event to the key it affects. Hidden files,
// foreign files and attribute-only changes are ignored.
func (f *FileKV) handleFsEvent(ev fsnotify.Event) *Change {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return nil
	}

	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
		return nil
	}

	key, err := url.PathUnescape(strings.TrimSuffix(name, fileExt))
	if err != nil {
		storeLogger.Debug().Str("file", name).Msg("Ignoring file with an undecodable name")
		return nil
	}
	return &Change{Key: key}
}

// Close stops every watcher and returns once their channels are closed.
func (f *FileKV) Close() error {
	f.mu.Lock()
	f.closed = true
	cancels := f.cancels
	f.cancels = make(map[int]context.CancelFunc)
	f.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	f.wg.Wait()
	return nil
}
