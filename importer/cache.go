package importer

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ipfs/go-cid"
)

var DefaultSeenCacheSize = 4096

// seenCache remembers the CIDs of recently written records.
type seenCache struct {
	data *lru.Cache[cid.Cid, struct{}]
}

// Seen reports whether c was already recorded, and records it if not.
func (s *seenCache) Seen(c cid.Cid) bool {
	ok, _ := s.data.ContainsOrAdd(c, struct{}{})
	return ok
}

// newSeenCache creates an LRU of record CIDs. Pass a size less than 1 to use
// [DefaultSeenCacheSize].
func newSeenCache(size int) (*seenCache, error) {
	if size <= 0 {
		size = DefaultSeenCacheSize
	}
	cache, err := lru.New[cid.Cid, struct{}](size)
	if err != nil {
		return nil, fmt.Errorf("creating seen LRU: %w", err)
	}
	return &seenCache{data: cache}, nil
}
