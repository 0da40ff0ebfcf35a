package filter

import (
	"strconv"
	"time"

	"github.com/agentauri/api.8004.dev-sub001/internal/domain/search/params"
)

// Compile translates filter parameters into an expression tree. The second
// return is false when no predicate is present; callers treat that as
// "match everything".
//
// Predicates combine with AND except the boolean capability group, which
// becomes a Should group (min match 1) when OR mode is requested. Exclusions
// always compile to MustNot, regardless of mode. The recency convenience is
// the one cross-field OR permitted outside the capability group: a Should of
// the two reachability channels anchored at now.
//
// Compilation is deterministic: identical normalized params (and the same
// reference time) always yield an identical tree.
func Compile(p *params.Params, now time.Time) (Node, bool) {
	var (
		must    []Condition
		should  []Should
		mustNot []Condition
	)

	if len(p.Chains) > 0 {
		chains := make([]string, len(p.Chains))
		for i, c := range p.Chains {
			chains[i] = strconv.FormatInt(c, 10)
		}
		must = append(must, mustCond(NewAnyOf(FieldChainID, chains)))
	}

	caps := capabilityConds(p)
	if len(caps) > 0 {
		if p.Combine == params.CombineOR {
			group, err := NewShould(caps, 1)
			if err == nil {
				should = append(should, group)
			}
		} else {
			must = append(must, caps...)
		}
	}

	if len(p.Skills) > 0 {
		must = append(must, mustCond(NewAnyOf(FieldSkills, p.Skills)))
	}
	if len(p.Domains) > 0 {
		must = append(must, mustCond(NewAnyOf(FieldDomains, p.Domains)))
	}

	if p.MinReputation != nil || p.MaxReputation != nil {
		must = append(must, mustCond(NewRange(FieldReputation, p.MinReputation, p.MaxReputation)))
	}
	if p.MinTrustScore != nil || p.MaxTrustScore != nil {
		must = append(must, mustCond(NewRange(FieldTrustScore, p.MinTrustScore, p.MaxTrustScore)))
	}

	if p.Owner != "" {
		must = append(must, mustCond(NewMatch(FieldOwner, p.Owner)))
	}
	if p.ENS != "" {
		must = append(must, mustCond(NewMatch(FieldENS, p.ENS)))
	}
	if p.DID != "" {
		must = append(must, mustCond(NewMatch(FieldDID, p.DID)))
	}

	if p.CreatedAfter != nil || p.CreatedBefore != nil {
		must = append(must, mustCond(NewTimeRange(FieldCreatedAt, p.CreatedAfter, p.CreatedBefore)))
	}
	if p.UpdatedAfter != nil || p.UpdatedBefore != nil {
		must = append(must, mustCond(NewTimeRange(FieldUpdatedAt, p.UpdatedAfter, p.UpdatedBefore)))
	}

	if p.RecentlyReachable != nil {
		since := now.Add(-params.ReachabilityWindow)
		ping := mustCond(NewTimeRange(FieldLastPingAt, &since, nil))
		crawl := mustCond(NewTimeRange(FieldLastCrawlAt, &since, nil))
		if *p.RecentlyReachable {
			group, err := NewShould([]Condition{ping, crawl}, 1)
			if err == nil {
				should = append(should, group)
			}
		} else {
			// Not recently reachable on either channel.
			mustNot = append(mustNot, ping, crawl)
		}
	}

	if p.HasSkills != nil {
		if *p.HasSkills {
			must = append(must, mustCond(NewExists(FieldSkills)))
		} else {
			mustNot = append(mustNot, mustCond(NewExists(FieldSkills)))
		}
	}
	if p.HasDomains != nil {
		if *p.HasDomains {
			must = append(must, mustCond(NewExists(FieldDomains)))
		} else {
			mustNot = append(mustNot, mustCond(NewExists(FieldDomains)))
		}
	}

	if p.MinSkills != nil && *p.MinSkills > 0 {
		must = append(must, mustCond(NewCountGTE(FieldSkills, *p.MinSkills)))
	}
	if p.MinDomains != nil && *p.MinDomains > 0 {
		must = append(must, mustCond(NewCountGTE(FieldDomains, *p.MinDomains)))
	}

	if p.Active != nil {
		must = append(must, mustCond(NewMatch(FieldActive, strconv.FormatBool(*p.Active))))
	}

	if len(p.ExcludeSkills) > 0 {
		mustNot = append(mustNot, mustCond(NewAnyOf(FieldSkills, p.ExcludeSkills)))
	}
	if len(p.ExcludeDomains) > 0 {
		mustNot = append(mustNot, mustCond(NewAnyOf(FieldDomains, p.ExcludeDomains)))
	}

	var nodes []Node
	if len(must) > 0 {
		nodes = append(nodes, Must{Conds: must})
	}
	for _, g := range should {
		nodes = append(nodes, g)
	}
	if len(mustNot) > 0 {
		nodes = append(nodes, MustNot{Conds: mustNot})
	}

	switch len(nodes) {
	case 0:
		return nil, false
	case 1:
		return nodes[0], true
	default:
		return And{Nodes: nodes}, true
	}
}

func capabilityConds(p *params.Params) []Condition {
	var conds []Condition
	if p.MCP != nil {
		conds = append(conds, mustCond(NewMatch(FieldHasMCP, strconv.FormatBool(*p.MCP))))
	}
	if p.A2A != nil {
		conds = append(conds, mustCond(NewMatch(FieldHasA2A, strconv.FormatBool(*p.A2A))))
	}
	if p.X402 != nil {
		conds = append(conds, mustCond(NewMatch(FieldHasX402, strconv.FormatBool(*p.X402))))
	}
	return conds
}

// mustCond unwraps constructor results inside the compiler, where inputs are
// normalized and constructor failure is a programming error.
func mustCond(c Condition, err error) Condition {
	if err != nil {
		panic(err)
	}
	return c
}
