package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/debemdeboas/inkwell/internal/db"
	"github.com/debemdeboas/inkwell/internal/util"
	"github.com/debemdeboas/inkwell/internal/util/compression"
)

type SQLiteKV struct { // implements KV
	db         db.DB
	compressor compression.Compressor
	watchers   *watchers

	mu     sync.Mutex
	hashes map[string]string // last known value hash per key

	stopPolling context.CancelFunc
	pollDone    chan struct{}
}

func NewSQLiteKV(database db.DB, compressor compression.Compressor) *SQLiteKV {
	if compressor == nil {
		compressor = compression.ZstdCompressor{}
	}
	return &SQLiteKV{
		db:         database,
		compressor: compressor,
		watchers:   newWatchers(),
		hashes:     make(map[string]string),
	}
}

func (s *SQLiteKV) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var compressed []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&compressed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", key, err)
	}

	value, err := s.compressor.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("error decompressing %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key. Writing the value that is already stored is a
// no-op and does not notify watchers.
func (s *SQLiteKV) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	hash := util.ContentHash(value)

	s.mu.Lock()
	defer s.mu.Unlock()

	var current string
	err := s.db.QueryRow(`SELECT value_hash FROM kv WHERE key = ?`, key).Scan(&current)
	switch {
	case err == nil && current == hash:
		storeLogger.Debug().Str("key", key).Msg("Value unchanged, skipping write")
		return nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("error reading hash of %s: %w", key, err)
	}

	compressed, err := s.compressor.Compress(value)
	if err != nil {
		return fmt.Errorf("error compressing %s: %w", key, err)
	}

	_, err = s.db.Exec(
		`INSERT INTO kv (key, value, value_hash, modified_at) VALUES (?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, value_hash = excluded.value_hash, modified_at = excluded.modified_at`,
		key, compressed, hash, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("error saving %s: %w", key, err)
	}

	s.hashes[key] = hash
	s.watchers.publish(key)
	return nil
}

func (s *SQLiteKV) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("error deleting %s: %w", key, err)
	}
	delete(s.hashes, key)

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.watchers.publish(key)
	}
	return nil
}

func (s *SQLiteKV) Watch(ctx context.Context) (<-chan Change, error) {
	return s.watchers.subscribe(ctx)
}

// StartPolling periodically compares stored hashes with the last known ones
// so that writes made by another process sharing the database are reported.
func (s *SQLiteKV) StartPolling(interval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopPolling != nil {
		return nil
	}

	hashes, err := s.scan()
	if err != nil {
		return err
	}
	s.hashes = hashes

	ctx, cancel := context.WithCancel(context.Background())
	s.stopPolling = cancel
	s.pollDone = make(chan struct{})

	go func() {
		defer close(s.pollDone)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.poll(); err != nil {
					storeLogger.Error().Err(err).Msg("Error polling for external changes")
				}
			}
		}
	}()

	return nil
}

func (s *SQLiteKV) poll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hashes, err := s.scan()
	if err != nil {
		return err
	}

	for key, hash := range hashes {
		if s.hashes[key] != hash {
			storeLogger.Info().Str("key", key).Msg("Value changed externally")
			s.watchers.publish(key)
		}
	}
	for key := range s.hashes {
		if _, ok := hashes[key]; !ok {
			storeLogger.Info().Str("key", key).Msg("Value removed externally")
			s.watchers.publish(key)
		}
	}

	s.hashes = hashes
	return nil
}

func (s *SQLiteKV) scan() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value_hash FROM kv`)
	if err != nil {
		return nil, fmt.Errorf("error querying hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var key, hash string
		if err := rows.Scan(&key, &hash); err != nil {
			return nil, fmt.Errorf("error scanning hash: %w", err)
		}
		hashes[key] = hash
	}
	return hashes, rows.Err()
}

func (s *SQLiteKV) Close() error {
	s.mu.Lock()
	stop, done := s.stopPolling, s.pollDone
	s.stopPolling = nil
	s.mu.Unlock()

	if stop != nil {
		stop()
		<-done
	}

	s.watchers.close()
	return s.db.Close()
}
