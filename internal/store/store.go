// Package store provides write-only persistence for transformed record
// content, keyed by item id.
package store

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"review-transformer/internal/domain"
)

// RecordStore persists transformed content for one record. The orchestrator
// only writes; each successful item result triggers exactly one update.
type RecordStore interface {
	UpdateContent(ctx context.Context, id, content string) error
	Close() error
}

// Open builds the record store backend selected by settings.
func Open(settings domain.Settings) (RecordStore, error) {
	switch settings.StoreKind {
	case domain.StoreKindRedis:
		client := redis.NewClient(&redis.Options{Addr: settings.RedisAddr})
		return NewRedisStore(client, ""), nil
	case domain.StoreKindSQLite, "":
		return NewSQLiteStore(settings.StorePath)
	default:
		return nil, fmt.Errorf("unknown store kind %q", settings.StoreKind)
	}
}
