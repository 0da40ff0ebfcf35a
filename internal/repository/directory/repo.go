// Package directory reads the agent directory snapshot from the store.
// The snapshot is maintained by the registry crawler; this service only
// reads it, for lexical fallback search and per-hit enrichment.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/agentauri/api.8004.dev-sub001/internal/db"
	"github.com/agentauri/api.8004.dev-sub001/internal/domain"
	"github.com/agentauri/api.8004.dev-sub001/internal/domain/agent"
)

var keyPrefix = domain.KeyPrefix + "agent:"

// store is the consumer interface for the directory snapshot.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo reads agent directory records.
type Repo struct {
	store store
}

// New creates a directory repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Get returns the directory record for one agent.
// Returns domain.ErrNotFound when the agent is not in the snapshot.
func (r *Repo) Get(ctx context.Context, chainID int64, tokenID string) (agent.Detail, error) {
	data, err := r.store.Get(ctx, keyPrefix+agent.FormatID(chainID, tokenID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return agent.Detail{}, domain.ErrNotFound
		}
		return agent.Detail{}, fmt.Errorf("get agent record: %w", err)
	}

	var dto detailDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return agent.Detail{}, fmt.Errorf("decode agent record: %w", err)
	}
	return dto.toDomain(), nil
}

// List returns every agent in the snapshot. Records that fail to decode are
// skipped; a partially corrupt snapshot must not break fallback search.
func (r *Repo) List(ctx context.Context) ([]agent.Detail, error) {
	keys, err := r.store.Scan(ctx, keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan agent records: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := r.store.MGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch agent records: %w", err)
	}

	details := make([]agent.Detail, 0, len(values))
	for _, data := range values {
		if data == nil {
			continue
		}
		var dto detailDTO
		if err := json.Unmarshal(data, &dto); err != nil {
			continue
		}
		details = append(details, dto.toDomain())
	}
	return details, nil
}
