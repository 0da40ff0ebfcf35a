package enrich

import (
	"context"

	"github.com/agentauri/api.8004.dev-sub001/internal/domain/agent"
)

// DirectoryReader resolves the full directory record for one agent.
type DirectoryReader interface {
	Get(ctx context.Context, chainID int64, tokenID string) (agent.Detail, error)
}

// ClassificationStore resolves taxonomy slugs for a batch of agents.
// Agents without a classification are absent from the returned map.
type ClassificationStore interface {
	BatchGet(ctx context.Context, agentIDs []string) (map[string]agent.Classification, error)
}

// ReputationStore resolves feedback aggregates for a batch of agents.
// Agents without recorded feedback are absent from the returned map.
type ReputationStore interface {
	BatchGet(ctx context.Context, agentIDs []string) (map[string]agent.Reputation, error)
}
