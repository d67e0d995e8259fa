package store

import (
	"fmt"

	"github.com/debemdeboas/inkwell/internal/config"
	"github.com/debemdeboas/inkwell/internal/db"
	"github.com/debemdeboas/inkwell/internal/util/compression"
)

// Open creates the KV backend selected by cfg.
func Open(cfg config.StoreConfig) (KV, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryKV(), nil

	case "sqlite":
		compressor, err := compression.ByName(cfg.SQLite.Compression)
		if err != nil {
			return nil, err
		}
		database := db.NewSQLite(cfg.SQLite.Path)
		if err := database.InitDB(); err != nil {
			return nil, fmt.Errorf(config.ErrInitializeDatabaseFmt, err)
		}
		kv := NewSQLiteKV(database, compressor)
		if cfg.SQLite.PollInterval > 0 {
			if err := kv.StartPolling(cfg.SQLite.PollInterval); err != nil {
				kv.Close()
				return nil, err
			}
		}
		return kv, nil

	case "redis":
		return NewRedisKV(cfg.Redis.URL, cfg.Redis.Prefix)

	case "file":
		return NewFileKV(cfg.File.Dir)
	}

	return nil, fmt.Errorf("unsupported store backend %q", cfg.Backend)
}
