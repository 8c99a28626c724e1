package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	appErrors "github.com/noah-isme/noticeboard-api/pkg/errors"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryCacheRepository keeps JSON encoded entries in a per-process LRU.
// Values are stored encoded so callers never share mutable state with the cache.
type MemoryCacheRepository struct {
	lru *expirable.LRU[string, memoryEntry]
	now func() time.Time
}

// NewMemoryCacheRepository creates an LRU holding at most size entries, each
// living no longer than maxTTL.
func NewMemoryCacheRepository(size int, maxTTL time.Duration) *MemoryCacheRepository {
	if size <= 0 {
		size = 128
	}
	return &MemoryCacheRepository{
		lru: expirable.NewLRU[string, memoryEntry](size, nil, maxTTL),
		now: time.Now,
	}
}

// Get unmarshals a live entry into dest or returns ErrCacheMiss.
func (r *MemoryCacheRepository) Get(_ context.Context, key string, dest interface{}) error {
	entry, ok := r.lru.Get(key)
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if !entry.expiresAt.IsZero() && !r.now().Before(entry.expiresAt) {
		r.lru.Remove(key)
		return appErrors.ErrCacheMiss
	}
	if err := json.Unmarshal(entry.payload, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}
	return nil
}

// Set stores value. A per-entry ttl shorter than the LRU lifetime is honoured.
func (r *MemoryCacheRepository) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}
	entry := memoryEntry{payload: payload}
	if ttl > 0 {
		entry.expiresAt = r.now().Add(ttl)
	}
	r.lru.Add(key, entry)
	return nil
}

// Delete evicts key.
func (r *MemoryCacheRepository) Delete(_ context.Context, key string) error {
	r.lru.Remove(key)
	return nil
}
