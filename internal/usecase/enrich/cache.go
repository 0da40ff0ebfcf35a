package enrich

import (
	"sync"
	"time"

	"github.com/agentauri/api.8004.dev-sub001/internal/domain/agent"
)

// passCache holds directory records across the enrichment passes of one
// paging session. Paginated requests re-enrich overlapping raw windows; the
// short TTL keeps those passes from hammering the directory while staying
// close to the snapshot.
type passCache struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]passEntry
}

type passEntry struct {
	detail  agent.Detail
	expires time.Time
}

func newPassCache(ttl time.Duration) *passCache {
	return &passCache{
		ttl: ttl,
		m:   make(map[string]passEntry),
	}
}

func (c *passCache) get(id string) (agent.Detail, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.m[id]
	if !ok {
		return agent.Detail{}, false
	}
	if time.Now().After(e.expires) {
		delete(c.m, id)
		return agent.Detail{}, false
	}
	return e.detail, true
}

func (c *passCache) set(id string, d agent.Detail) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Opportunistic sweep keeps the map from growing unbounded between
	// overlapping sessions.
	if len(c.m) > 4096 {
		now := time.Now()
		for k, e := range c.m {
			if now.After(e.expires) {
				delete(c.m, k)
			}
		}
	}
	c.m[id] = passEntry{detail: d, expires: time.Now().Add(c.ttl)}
}
