// Package agent holds the agent-facing domain model: directory records,
// enrichment side-channel data, and the enriched search results returned
// to the route layer.
package agent

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Capabilities are the protocol support flags resolved for an agent.
type Capabilities struct {
	MCP  bool `json:"mcp"`
	A2A  bool `json:"a2a"`
	X402 bool `json:"x402"`
}

// Classification holds the OASF taxonomy slugs assigned to an agent by the
// classification worker.
type Classification struct {
	Skills  []string `json:"skills"`
	Domains []string `json:"domains"`
}

// Reputation is the aggregate feedback score for an agent.
type Reputation struct {
	Score float64 `json:"score"`
	Count int     `json:"count"`
}

// Identity holds the on-chain and naming identity fields of an agent.
type Identity struct {
	Owner string `json:"owner,omitempty"`
	ENS   string `json:"ens,omitempty"`
	DID   string `json:"did,omitempty"`
}

// Detail is the full directory record for a registered agent.
type Detail struct {
	ChainID     int64
	TokenID     string
	Name        string
	Description string
	Active      bool
	Caps        Capabilities
	Identity    Identity
	// TrustScore is the crawler-computed trust metric, when available.
	// Distinct from the feedback-based reputation score.
	TrustScore *float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	// Reachability attestations arrive over two independent channels:
	// the card prober and the registry crawler.
	LastPingAt  *time.Time
	LastCrawlAt *time.Time
}

// ID returns the canonical agent identifier, chainID:tokenID.
func (d Detail) ID() string {
	return FormatID(d.ChainID, d.TokenID)
}

// FormatID builds the canonical agent identifier.
func FormatID(chainID int64, tokenID string) string {
	return strconv.FormatInt(chainID, 10) + ":" + tokenID
}

// ParseID splits a canonical agent identifier into chain and token parts.
func ParseID(id string) (int64, string, error) {
	chain, token, ok := strings.Cut(id, ":")
	if !ok {
		return 0, "", fmt.Errorf("malformed agent id %q", id)
	}
	chainID, err := strconv.ParseInt(chain, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("malformed chain id in %q: %w", id, err)
	}
	if token == "" {
		return 0, "", fmt.Errorf("empty token id in %q", id)
	}
	return chainID, token, nil
}

// Enriched is a search hit merged with resolved side-channel data.
// When enrichment fails for a hit, fields fall back to the hit's embedded
// metadata; see the enrich usecase for the per-field defaults.
type Enriched struct {
	ID             string          `json:"id"`
	ChainID        int64           `json:"chain_id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Score          float64         `json:"score"`
	MatchReasons   []string        `json:"match_reasons,omitempty"`
	Active         bool            `json:"active"`
	Caps           Capabilities    `json:"capabilities"`
	Classification *Classification `json:"classification,omitempty"`
	Reputation     *Reputation     `json:"reputation,omitempty"`
	TrustScore     *float64        `json:"trust_score,omitempty"`
	Identity       Identity        `json:"identity"`
	CreatedAt      *time.Time      `json:"created_at,omitempty"`
	UpdatedAt      *time.Time      `json:"updated_at,omitempty"`
	LastPingAt     *time.Time      `json:"last_ping_at,omitempty"`
	LastCrawlAt    *time.Time      `json:"last_crawl_at,omitempty"`
	// Degraded marks hits whose detail lookup failed and whose fields were
	// reconstructed from embedded hit metadata.
	Degraded bool `json:"degraded,omitempty"`
}

// Skills returns the classified skill slugs, or nil when unclassified.
func (e *Enriched) Skills() []string {
	if e.Classification == nil {
		return nil
	}
	return e.Classification.Skills
}

// Domains returns the classified domain slugs, or nil when unclassified.
func (e *Enriched) Domains() []string {
	if e.Classification == nil {
		return nil
	}
	return e.Classification.Domains
}
