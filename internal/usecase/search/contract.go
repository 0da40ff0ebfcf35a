package search

import (
	"context"

	"github.com/agentauri/api.8004.dev-sub001/internal/domain/agent"
	"github.com/agentauri/api.8004.dev-sub001/internal/domain/search/filter"
	"github.com/agentauri/api.8004.dev-sub001/internal/domain/search/result"
)

// Backend is one ranked search backend. The vector client and the lexical
// fallback both satisfy it; the orchestrator decides which one serves a
// given request.
type Backend interface {
	Search(ctx context.Context, query string, limit, offset int, filters filter.Node) (result.Page, error)
}

// Enricher resolves raw hits into enriched agents. Enrichment is fail-open
// and therefore returns no error.
type Enricher interface {
	Enrich(ctx context.Context, hits []result.Hit) []agent.Enriched
}

// ResponseCache stores rendered first-page responses. Both lookups are
// best-effort; a nil ResponseCache disables caching entirely.
type ResponseCache interface {
	Key(query, filterFingerprint string, limit int, searchMode string) string
	Get(ctx context.Context, key string, v any) bool
	Set(ctx context.Context, key string, v any)
}
