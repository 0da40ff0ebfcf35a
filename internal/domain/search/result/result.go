// Package result defines the immutable search hit produced by a backend.
package result

// Hit is a single search hit.
type Hit struct {
	agentID      string
	chainID      int64
	score        float64
	name         string
	description  string
	metadata     map[string]string
	matchReasons []string
}

// New creates a search hit.
func New(
	agentID string, chainID int64, score float64,
	name, description string,
	metadata map[string]string, matchReasons []string,
) Hit {
	return Hit{
		agentID: agentID, chainID: chainID, score: score,
		name: name, description: description,
		metadata: metadata, matchReasons: matchReasons,
	}
}

// AgentID returns the canonical agent identifier.
func (h *Hit) AgentID() string { return h.agentID }

// ChainID returns the chain the agent is registered on.
func (h *Hit) ChainID() int64 { return h.chainID }

// Score returns the relevance score.
func (h *Hit) Score() float64 { return h.score }

// Name returns the agent name carried by the backend.
func (h *Hit) Name() string { return h.name }

// Description returns the agent description carried by the backend.
func (h *Hit) Description() string { return h.description }

// Metadata returns the raw metadata embedded in the hit. Enrichment falls
// back to these values when the side-channel lookup fails.
func (h *Hit) Metadata() map[string]string { return h.metadata }

// MatchReasons returns the backend's explanation of why the hit matched.
func (h *Hit) MatchReasons() []string { return h.matchReasons }

// Page is a ranked page of hits returned by a backend.
type Page struct {
	Hits    []Hit
	Total   int
	HasMore bool
	// ByChain is the backend's per-chain hit count facet, when provided.
	ByChain map[int64]int
}
