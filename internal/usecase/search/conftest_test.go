package search

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/agentauri/api.8004.dev-sub001/internal/domain/agent"
	"github.com/agentauri/api.8004.dev-sub001/internal/domain/search/filter"
	"github.com/agentauri/api.8004.dev-sub001/internal/domain/search/result"
)

type (
	page       = result.Page
	filterNode = filter.Node
)

type searchFn func(ctx context.Context, query string, limit, offset int, filters filter.Node) (result.Page, error)

type mockBackend struct {
	calls    int
	searchFn searchFn
}

func (m *mockBackend) Search(ctx context.Context, query string, limit, offset int, filters filter.Node) (result.Page, error) {
	m.calls++
	return m.searchFn(ctx, query, limit, offset, filters)
}

func emptyPage() searchFn {
	return func(_ context.Context, _ string, _, _ int, _ filterNode) (page, error) {
		return page{}, nil
	}
}

func fixedPage(hits ...result.Hit) searchFn {
	return func(_ context.Context, _ string, _, _ int, _ filterNode) (page, error) {
		return page{Hits: hits, Total: len(hits)}, nil
	}
}

func hit(id string, chainID int64, score float64, name string) result.Hit {
	return result.New(id, chainID, score, name, "", nil, nil)
}

// mockEnricher resolves hits without side channels. caps assigns MCP and A2A
// flags by agent id; agents not listed get neither.
type mockEnricher struct {
	caps map[string][2]bool
}

func (m *mockEnricher) Enrich(_ context.Context, hits []result.Hit) []agent.Enriched {
	out := make([]agent.Enriched, len(hits))
	for i := range hits {
		c := m.caps[hits[i].AgentID()]
		out[i] = agent.Enriched{
			ID:      hits[i].AgentID(),
			ChainID: hits[i].ChainID(),
			Name:    hits[i].Name(),
			Score:   hits[i].Score(),
			Active:  true,
			Caps:    agent.Capabilities{MCP: c[0], A2A: c[1]},
		}
	}
	return out
}

func passEnricher() *mockEnricher {
	return &mockEnricher{}
}

// mockCache is an in-memory ResponseCache.
type mockCache struct {
	m map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{m: make(map[string][]byte)}
}

func (c *mockCache) Key(query, fingerprint string, limit int, searchMode string) string {
	return fmt.Sprintf("%s|%s|%d|%s", query, fingerprint, limit, searchMode)
}

func (c *mockCache) Get(_ context.Context, key string, v any) bool {
	data, ok := c.m[key]
	if !ok {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func (c *mockCache) Set(_ context.Context, key string, v any) {
	if data, err := json.Marshal(v); err == nil {
		c.m[key] = data
	}
}

func newTestService(vector, fallback Backend, enricher Enricher, cache ResponseCache) *Service {
	return NewService(vector, fallback, enricher, cache, Config{}, zap.NewNop())
}
