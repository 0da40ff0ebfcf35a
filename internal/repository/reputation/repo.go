// Package reputation reads aggregate feedback scores. Lookups are batched
// by agent id, mirroring the classification side-channel.
package reputation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agentauri/api.8004.dev-sub001/internal/domain"
	"github.com/agentauri/api.8004.dev-sub001/internal/domain/agent"
)

var keyPrefix = domain.KeyPrefix + "reputation:"

// store is the consumer interface for reputation lookups.
type store interface {
	MGet(ctx context.Context, keys []string) ([][]byte, error)
}

// Repo reads agent reputation scores.
type Repo struct {
	store store
}

// New creates a reputation repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// reputationDTO is the stored representation of a reputation aggregate.
type reputationDTO struct {
	Score float64 `json:"score"`
	Count int     `json:"count"`
}

// BatchGet returns reputation aggregates keyed by agent id. Agents without
// recorded feedback are absent from the map.
func (r *Repo) BatchGet(ctx context.Context, agentIDs []string) (map[string]agent.Reputation, error) {
	if len(agentIDs) == 0 {
		return nil, nil
	}

	keys := make([]string, len(agentIDs))
	for i, id := range agentIDs {
		keys[i] = keyPrefix + id
	}

	values, err := r.store.MGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch reputations: %w", err)
	}

	out := make(map[string]agent.Reputation, len(agentIDs))
	for i, data := range values {
		if data == nil {
			continue
		}
		var dto reputationDTO
		if err := json.Unmarshal(data, &dto); err != nil {
			continue
		}
		out[agentIDs[i]] = agent.Reputation{
			Score: dto.Score,
			Count: dto.Count,
		}
	}
	return out, nil
}
