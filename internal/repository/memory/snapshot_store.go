package memory

import (
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// SnapshotStore holds whole-value snapshots of server reads (questionnaires,
// question catalogs, session lists) keyed by scope tuple. Mutations call
// Invalidate so the next read refetches a complete snapshot; readers never
// observe a partially updated value.
type SnapshotStore struct {
	cache *cache.Cache
}

func NewSnapshotStore() *SnapshotStore {
	// Snapshots expire after an hour in case an invalidation is missed;
	// expired items are purged every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SnapshotStore{
		cache: c,
	}
}

// Key builds a cache key from a (workspace, exploration, id...) tuple.
func Key(parts ...string) string {
	return strings.Join(parts, "/")
}

func (s *SnapshotStore) Set(key string, value interface{}) {
	s.cache.Set(key, value, cache.DefaultExpiration)
}

func (s *SnapshotStore) Get(key string) (interface{}, bool) {
	return s.cache.Get(key)
}

func (s *SnapshotStore) Invalidate(key string) {
	s.cache.Delete(key)
}
