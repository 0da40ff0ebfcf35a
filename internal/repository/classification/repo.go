// Package classification reads the OASF taxonomy slugs produced by the
// classification worker. Lookups are batched: one MGET per enrichment pass,
// never one call per hit.
package classification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agentauri/api.8004.dev-sub001/internal/domain"
	"github.com/agentauri/api.8004.dev-sub001/internal/domain/agent"
)

var keyPrefix = domain.KeyPrefix + "classification:"

// store is the consumer interface for classification lookups.
type store interface {
	MGet(ctx context.Context, keys []string) ([][]byte, error)
}

// Repo reads agent classifications.
type Repo struct {
	store store
}

// New creates a classification repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// classificationDTO is the stored representation of a classification.
type classificationDTO struct {
	Skills  []string `json:"skills"`
	Domains []string `json:"domains"`
}

// BatchGet returns classifications keyed by agent id. Agents without a
// classification (not yet processed by the worker) are absent from the map;
// records that fail to decode are treated the same way.
func (r *Repo) BatchGet(ctx context.Context, agentIDs []string) (map[string]agent.Classification, error) {
	if len(agentIDs) == 0 {
		return nil, nil
	}

	keys := make([]string, len(agentIDs))
	for i, id := range agentIDs {
		keys[i] = keyPrefix + id
	}

	values, err := r.store.MGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch classifications: %w", err)
	}

	out := make(map[string]agent.Classification, len(agentIDs))
	for i, data := range values {
		if data == nil {
			continue
		}
		var dto classificationDTO
		if err := json.Unmarshal(data, &dto); err != nil {
			continue
		}
		out[agentIDs[i]] = agent.Classification{
			Skills:  dto.Skills,
			Domains: dto.Domains,
		}
	}
	return out, nil
}
