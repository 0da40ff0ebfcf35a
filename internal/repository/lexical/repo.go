// Package lexical is the fallback search backend. It scores the agent
// directory snapshot with plain string matching, so search stays available
// when the vector backend is down or returns nothing.
package lexical

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/agentauri/api.8004.dev-sub001/internal/domain/agent"
	"github.com/agentauri/api.8004.dev-sub001/internal/domain/search/filter"
	"github.com/agentauri/api.8004.dev-sub001/internal/domain/search/result"
)

// Match-quality tiers, best first. Every agent in the snapshot scores at
// least scoreDefault so that filter-only queries still return the full
// directory.
const (
	scoreNameExact      = 1.0
	scoreNamePrefix     = 0.9
	scoreNameSubstring  = 0.8
	scoreDescPrefix     = 0.7
	scoreDescSubstring  = 0.6
	scoreOverlapBase    = 0.3
	scoreOverlapPerWord = 0.25
	scoreDefault        = 0.3
)

// lister is the consumer interface for the directory snapshot.
type lister interface {
	List(ctx context.Context) ([]agent.Detail, error)
}

// Repo searches the directory snapshot lexically.
type Repo struct {
	directory lister
}

// New creates a lexical search repository.
func New(directory lister) *Repo {
	return &Repo{directory: directory}
}

// Search scores every agent in the snapshot against the query and returns
// the requested window, ranked by score. Ties break on agent id so paging
// over equal scores is stable.
func (r *Repo) Search(ctx context.Context, query string, limit, offset int, filters filter.Node) (result.Page, error) {
	details, err := r.directory.List(ctx)
	if err != nil {
		return result.Page{}, fmt.Errorf("lexical search: %w", err)
	}

	active := activeFlag(filters)

	type scored struct {
		detail agent.Detail
		score  float64
		reason string
	}
	hits := make([]scored, 0, len(details))
	byChain := make(map[int64]int)
	for _, d := range details {
		if active != nil && d.Active != *active {
			continue
		}
		score, reason := scoreAgent(query, d)
		hits = append(hits, scored{detail: d, score: score, reason: reason})
		byChain[d.ChainID]++
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].detail.ID() < hits[j].detail.ID()
	})

	total := len(hits)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	page := result.Page{
		Hits:    make([]result.Hit, 0, end-offset),
		Total:   total,
		HasMore: end < total,
		ByChain: byChain,
	}
	for _, h := range hits[offset:end] {
		page.Hits = append(page.Hits, result.New(
			h.detail.ID(), h.detail.ChainID, h.score,
			h.detail.Name, h.detail.Description,
			hitMetadata(h.detail), []string{h.reason},
		))
	}
	return page, nil
}

// scoreAgent walks the match-quality ladder top down and returns the first
// tier the agent reaches.
func scoreAgent(query string, d agent.Detail) (float64, string) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return scoreDefault, "default"
	}
	name := strings.ToLower(d.Name)
	desc := strings.ToLower(d.Description)

	switch {
	case name == q:
		return scoreNameExact, "name_exact"
	case strings.HasPrefix(name, q):
		return scoreNamePrefix, "name_prefix"
	case strings.Contains(name, q):
		return scoreNameSubstring, "name_substring"
	case strings.HasPrefix(desc, q):
		return scoreDescPrefix, "description_prefix"
	case strings.Contains(desc, q):
		return scoreDescSubstring, "description_substring"
	}

	if ratio := overlapRatio(q, name+" "+desc); ratio > 0 {
		return scoreOverlapBase + scoreOverlapPerWord*ratio, "word_overlap"
	}
	return scoreDefault, "default"
}

// overlapRatio returns the fraction of query words that appear in the text.
func overlapRatio(query, text string) float64 {
	words := strings.Fields(query)
	if len(words) == 0 {
		return 0
	}
	present := make(map[string]bool)
	for _, w := range strings.Fields(text) {
		present[w] = true
	}
	matched := 0
	for _, w := range words {
		if present[w] {
			matched++
		}
	}
	return float64(matched) / float64(len(words))
}

// hitMetadata embeds enough of the directory record in the hit for the
// enrichment layer to reconstruct a result when its detail lookup fails.
func hitMetadata(d agent.Detail) map[string]string {
	md := map[string]string{
		"name":   d.Name,
		"active": strconv.FormatBool(d.Active),
		"mcp":    strconv.FormatBool(d.Caps.MCP),
		"a2a":    strconv.FormatBool(d.Caps.A2A),
		"x402":   strconv.FormatBool(d.Caps.X402),
	}
	if d.Description != "" {
		md["description"] = d.Description
	}
	if d.Identity.Owner != "" {
		md["owner"] = d.Identity.Owner
	}
	return md
}

// activeFlag extracts the activity predicate, the only filter the snapshot
// scan applies itself. Everything else is applied post-enrichment.
func activeFlag(n filter.Node) *bool {
	switch node := n.(type) {
	case nil:
		return nil
	case filter.And:
		for _, child := range node.Nodes {
			if active := activeFlag(child); active != nil {
				return active
			}
		}
	case filter.Must:
		for _, c := range node.Conds {
			if c.Kind() == filter.KindMatch && c.Key() == filter.FieldActive {
				v := c.Match() == "true"
				return &v
			}
		}
	}
	return nil
}
