package store

import (
	"context"
	"fmt"

	"github.com/jason-s-yu/scoundrel/internal/config"
)

// Open builds the store selected by cfg.Store.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return NewMemoryStore(), nil
	case config.StoreFile:
		return NewFileStore(cfg.DataDir)
	case config.StoreRedis:
		return NewRedisStore(ctx, cfg.RedisURL)
	case config.StorePostgres:
		return NewPostgresStore(ctx, cfg.PostgresDSN)
	case config.StoreSQLite:
		return NewSQLiteStore(ctx, cfg.SQLitePath)
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store)
}
