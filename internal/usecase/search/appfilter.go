package search

import (
	"strconv"
	"strings"
	"time"

	"github.com/agentauri/api.8004.dev-sub001/internal/domain/agent"
	"github.com/agentauri/api.8004.dev-sub001/internal/domain/search/filter"
)

// Matches evaluates a compiled filter tree against one enriched agent.
// This is the local re-application of every predicate the backends cannot
// evaluate reliably; it runs after enrichment so taxonomy and reputation
// predicates see resolved side-channel data.
func Matches(n filter.Node, e *agent.Enriched) bool {
	switch node := n.(type) {
	case nil:
		return true
	case filter.And:
		for _, child := range node.Nodes {
			if !Matches(child, e) {
				return false
			}
		}
		return true
	case filter.Must:
		for _, c := range node.Conds {
			if !matchCond(c, e) {
				return false
			}
		}
		return true
	case filter.Should:
		matched := 0
		for _, c := range node.Conds {
			if matchCond(c, e) {
				matched++
				if matched >= node.MinMatch {
					return true
				}
			}
		}
		return false
	case filter.MustNot:
		for _, c := range node.Conds {
			if matchCond(c, e) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Apply filters enriched agents through the tree, preserving order.
// A nil tree passes everything through.
func Apply(n filter.Node, agents []agent.Enriched) []agent.Enriched {
	if n == nil {
		return agents
	}
	out := make([]agent.Enriched, 0, len(agents))
	for i := range agents {
		if Matches(n, &agents[i]) {
			out = append(out, agents[i])
		}
	}
	return out
}

func matchCond(c filter.Condition, e *agent.Enriched) bool {
	switch c.Kind() {
	case filter.KindMatch:
		return matchExact(c, e)
	case filter.KindAnyOf:
		return matchAnyOf(c, e)
	case filter.KindRange:
		v := numericField(c.Key(), e)
		if v == nil {
			return false
		}
		if gte := c.GTE(); gte != nil && *v < *gte {
			return false
		}
		if lte := c.LTE(); lte != nil && *v > *lte {
			return false
		}
		return true
	case filter.KindTimeRange:
		t := timeField(c.Key(), e)
		if t == nil {
			return false
		}
		if after := c.After(); after != nil && t.Before(*after) {
			return false
		}
		if before := c.Before(); before != nil && t.After(*before) {
			return false
		}
		return true
	case filter.KindExists:
		return len(setField(c.Key(), e)) > 0
	case filter.KindCountGTE:
		return len(setField(c.Key(), e)) >= c.Threshold()
	default:
		return false
	}
}

func matchExact(c filter.Condition, e *agent.Enriched) bool {
	switch c.Key() {
	case filter.FieldActive:
		return strconv.FormatBool(e.Active) == c.Match()
	case filter.FieldHasMCP:
		return strconv.FormatBool(e.Caps.MCP) == c.Match()
	case filter.FieldHasA2A:
		return strconv.FormatBool(e.Caps.A2A) == c.Match()
	case filter.FieldHasX402:
		return strconv.FormatBool(e.Caps.X402) == c.Match()
	case filter.FieldOwner:
		// Addresses compare case-insensitively; checksummed and lowercase
		// forms of the same address must match.
		return strings.EqualFold(e.Identity.Owner, c.Match())
	case filter.FieldENS:
		return strings.EqualFold(e.Identity.ENS, c.Match())
	case filter.FieldDID:
		return e.Identity.DID == c.Match()
	case filter.FieldChainID:
		return strconv.FormatInt(e.ChainID, 10) == c.Match()
	default:
		return false
	}
}

func matchAnyOf(c filter.Condition, e *agent.Enriched) bool {
	switch c.Key() {
	case filter.FieldChainID:
		id := strconv.FormatInt(e.ChainID, 10)
		for _, v := range c.Values() {
			if v == id {
				return true
			}
		}
		return false
	default:
		return intersects(setField(c.Key(), e), c.Values())
	}
}

// intersects reports whether any wanted slug appears in the agent's set.
// Agent-side slugs are compared lowercased; wanted values are already
// normalized.
func intersects(have, want []string) bool {
	if len(have) == 0 {
		return false
	}
	for _, h := range have {
		h = strings.ToLower(h)
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

func setField(key string, e *agent.Enriched) []string {
	switch key {
	case filter.FieldSkills:
		return e.Skills()
	case filter.FieldDomains:
		return e.Domains()
	default:
		return nil
	}
}

func numericField(key string, e *agent.Enriched) *float64 {
	switch key {
	case filter.FieldReputation:
		if e.Reputation == nil {
			return nil
		}
		return &e.Reputation.Score
	case filter.FieldTrustScore:
		return e.TrustScore
	default:
		return nil
	}
}

func timeField(key string, e *agent.Enriched) *time.Time {
	switch key {
	case filter.FieldCreatedAt:
		return e.CreatedAt
	case filter.FieldUpdatedAt:
		return e.UpdatedAt
	case filter.FieldLastPingAt:
		return e.LastPingAt
	case filter.FieldLastCrawlAt:
		return e.LastCrawlAt
	default:
		return nil
	}
}
