package directory

import (
	"time"

	"github.com/agentauri/api.8004.dev-sub001/internal/domain/agent"
)

// detailDTO is the stored representation of a directory record.
type detailDTO struct {
	ChainID     int64      `json:"chain_id"`
	TokenID     string     `json:"token_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Active      bool       `json:"active"`
	HasMCP      bool       `json:"has_mcp"`
	HasA2A      bool       `json:"has_a2a"`
	HasX402     bool       `json:"has_x402"`
	Owner       string     `json:"owner,omitempty"`
	ENS         string     `json:"ens,omitempty"`
	DID         string     `json:"did,omitempty"`
	TrustScore  *float64   `json:"trust_score,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastPingAt  *time.Time `json:"last_ping_at,omitempty"`
	LastCrawlAt *time.Time `json:"last_crawl_at,omitempty"`
}

func (d detailDTO) toDomain() agent.Detail {
	return agent.Detail{
		ChainID:     d.ChainID,
		TokenID:     d.TokenID,
		Name:        d.Name,
		Description: d.Description,
		Active:      d.Active,
		Caps: agent.Capabilities{
			MCP:  d.HasMCP,
			A2A:  d.HasA2A,
			X402: d.HasX402,
		},
		Identity: agent.Identity{
			Owner: d.Owner,
			ENS:   d.ENS,
			DID:   d.DID,
		},
		TrustScore:  d.TrustScore,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		LastPingAt:  d.LastPingAt,
		LastCrawlAt: d.LastCrawlAt,
	}
}
