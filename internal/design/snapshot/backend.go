package snapshot

import (
	"context"
	"database/sql"
	"fmt"

	"roomdesigner/internal/common/config"
	"roomdesigner/internal/common/database"
)

// Backend is an opened persister plus whatever has to be closed with it.
type Backend struct {
	*Persister
	Name string

	closers []func() error
}

func (b *Backend) Close() error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenBackend builds the slot cfg selects. db is reused for the sqlite
// backend when given; otherwise DB_PATH is opened and migrated here.
func OpenBackend(ctx context.Context, cfg *config.Config, db *sql.DB) (*Backend, error) {
	codec, err := CodecByName(cfg.SnapshotCodec)
	if err != nil {
		return nil, err
	}

	b := &Backend{Name: cfg.SnapshotBackend}
	var slot Slot
	switch cfg.SnapshotBackend {
	case config.BackendFile:
		slot = NewFileSlot(cfg.SnapshotFile)
	case config.BackendMemory:
		slot = NewMemorySlot()
	case config.BackendSQLite:
		if db == nil {
			db, err = database.OpenSQLite(cfg.DBPath)
			if err != nil {
				return nil, err
			}
			b.closers = append(b.closers, db.Close)
			if err := database.Migrate(ctx, db); err != nil {
				b.Close()
				return nil, err
			}
		}
		slot = NewSQLiteSlot(db, cfg.SnapshotSlot)
	case config.BackendRedis:
		client, err := NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, client.Close)
		slot = NewRedisSlot(client, cfg.SnapshotSlot)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.SnapshotBackend)
	}

	b.Persister = NewPersister(codec, slot)
	return b, nil
}
