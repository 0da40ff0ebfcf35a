package vector

import (
	"strconv"

	"github.com/agentauri/api.8004.dev-sub001/internal/domain/search/result"
)

// searchRequest is the backend wire request.
type searchRequest struct {
	Query    string       `json:"query"`
	Limit    int          `json:"limit"`
	Offset   int          `json:"offset"`
	MinScore float64      `json:"min_score,omitempty"`
	Filters  *wireFilters `json:"filters,omitempty"`
}

// wireFilters carries the upstream-supported predicate subset.
type wireFilters struct {
	Active *bool `json:"active,omitempty"`
}

// searchResponse is the backend wire response.
type searchResponse struct {
	Hits    []wireHit      `json:"hits"`
	Total   int            `json:"total"`
	HasMore bool           `json:"has_more"`
	ByChain map[string]int `json:"by_chain,omitempty"`
}

type wireHit struct {
	AgentID      string            `json:"agent_id"`
	ChainID      int64             `json:"chain_id"`
	Score        float64           `json:"score"`
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	MatchReasons []string          `json:"match_reasons,omitempty"`
}

func (r searchResponse) toDomain() result.Page {
	hits := make([]result.Hit, 0, len(r.Hits))
	for _, h := range r.Hits {
		hits = append(hits, result.New(
			h.AgentID, h.ChainID, h.Score,
			h.Name, h.Description, h.Metadata, h.MatchReasons,
		))
	}

	var byChain map[int64]int
	if len(r.ByChain) > 0 {
		byChain = make(map[int64]int, len(r.ByChain))
		for chain, count := range r.ByChain {
			id, err := strconv.ParseInt(chain, 10, 64)
			if err != nil {
				continue
			}
			byChain[id] = count
		}
	}

	return result.Page{
		Hits:    hits,
		Total:   r.Total,
		HasMore: r.HasMore,
		ByChain: byChain,
	}
}
