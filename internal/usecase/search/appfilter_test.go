package search

import (
	"testing"
	"time"

	"github.com/agentauri/api.8004.dev-sub001/internal/domain/agent"
	"github.com/agentauri/api.8004.dev-sub001/internal/domain/search/filter"
	"github.com/agentauri/api.8004.dev-sub001/internal/domain/search/params"
)

var appNow = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

func compile(t *testing.T, p params.Params) filter.Node {
	t.Helper()
	if err := p.Normalize(); err != nil {
		t.Fatal(err)
	}
	tree, ok := filter.Compile(&p, appNow)
	if !ok {
		t.Fatal("expected a non-empty filter tree")
	}
	return tree
}

func enrichedAgent(id string) agent.Enriched {
	return agent.Enriched{ID: id, ChainID: 1, Active: true}
}

func TestMatches_ReputationRange(t *testing.T) {
	tree := compile(t, params.Params{MinReputation: f64(50)})

	scored := enrichedAgent("1:1")
	scored.Reputation = &agent.Reputation{Score: 75, Count: 3}
	if !Matches(tree, &scored) {
		t.Error("score 75 must pass min 50")
	}

	low := enrichedAgent("1:2")
	low.Reputation = &agent.Reputation{Score: 49.9, Count: 8}
	if Matches(tree, &low) {
		t.Error("score 49.9 must fail min 50")
	}

	// An agent with no recorded feedback cannot satisfy a reputation bound.
	unrated := enrichedAgent("1:3")
	if Matches(tree, &unrated) {
		t.Error("unrated agent must fail a reputation range")
	}

	// Bounds are inclusive.
	edge := enrichedAgent("1:4")
	edge.Reputation = &agent.Reputation{Score: 50, Count: 1}
	if !Matches(tree, &edge) {
		t.Error("score 50 must pass min 50")
	}
}

func TestMatches_TrustScoreRange(t *testing.T) {
	tree := compile(t, params.Params{MinTrustScore: f64(0.7)})

	trusted := enrichedAgent("1:1")
	trusted.TrustScore = f64(0.8)
	if !Matches(tree, &trusted) {
		t.Error("trust 0.8 must pass min 0.7")
	}

	unknown := enrichedAgent("1:2")
	if Matches(tree, &unknown) {
		t.Error("agent without a trust score must fail a trust bound")
	}
}

func TestMatches_TaxonomyAndExclusions(t *testing.T) {
	tree := compile(t, params.Params{
		Skills:         []string{"trading"},
		ExcludeDomains: []string{"gambling"},
	})

	ok := enrichedAgent("1:1")
	ok.Classification = &agent.Classification{Skills: []string{"trading", "analytics"}, Domains: []string{"finance"}}
	if !Matches(tree, &ok) {
		t.Error("agent with the skill and without the excluded domain must pass")
	}

	excluded := enrichedAgent("1:2")
	excluded.Classification = &agent.Classification{Skills: []string{"trading"}, Domains: []string{"gambling"}}
	if Matches(tree, &excluded) {
		t.Error("excluded domain must reject the agent even though the skill matches")
	}

	unclassified := enrichedAgent("1:3")
	if Matches(tree, &unclassified) {
		t.Error("unclassified agent must fail a skill requirement")
	}
}

func TestMatches_ChainMembership(t *testing.T) {
	tree := compile(t, params.Params{Chains: []int64{1, 8453}})

	onBase := enrichedAgent("8453:1")
	onBase.ChainID = 8453
	if !Matches(tree, &onBase) {
		t.Error("agent on a listed chain must pass")
	}

	elsewhere := enrichedAgent("10:1")
	elsewhere.ChainID = 10
	if Matches(tree, &elsewhere) {
		t.Error("agent on an unlisted chain must fail")
	}
}

func TestMatches_RecentReachabilityEitherChannel(t *testing.T) {
	tr := true
	tree := compile(t, params.Params{RecentlyReachable: &tr})

	recent := appNow.Add(-24 * time.Hour)
	stale := appNow.Add(-30 * 24 * time.Hour)

	pingOnly := enrichedAgent("1:1")
	pingOnly.LastPingAt = &recent
	pingOnly.LastCrawlAt = &stale
	if !Matches(tree, &pingOnly) {
		t.Error("recent ping alone must satisfy reachability")
	}

	crawlOnly := enrichedAgent("1:2")
	crawlOnly.LastCrawlAt = &recent
	if !Matches(tree, &crawlOnly) {
		t.Error("recent crawl alone must satisfy reachability")
	}

	neither := enrichedAgent("1:3")
	neither.LastPingAt = &stale
	if Matches(tree, &neither) {
		t.Error("stale attestations on both channels must fail reachability")
	}
}

func TestMatches_IdentityCaseInsensitiveOwner(t *testing.T) {
	tree := compile(t, params.Params{Owner: "0xAbC123"})

	a := enrichedAgent("1:1")
	a.Identity.Owner = "0xabc123"
	if !Matches(tree, &a) {
		t.Error("owner addresses must compare case-insensitively")
	}
}

func TestMatches_CountThreshold(t *testing.T) {
	min := 2
	tree := compile(t, params.Params{MinSkills: &min})

	two := enrichedAgent("1:1")
	two.Classification = &agent.Classification{Skills: []string{"a", "b"}}
	if !Matches(tree, &two) {
		t.Error("two skills must satisfy min 2")
	}

	one := enrichedAgent("1:2")
	one.Classification = &agent.Classification{Skills: []string{"a"}}
	if Matches(tree, &one) {
		t.Error("one skill must fail min 2")
	}
}

func TestApply_PreservesOrderAndNilTree(t *testing.T) {
	agents := []agent.Enriched{enrichedAgent("1:2"), enrichedAgent("1:1")}

	if got := Apply(nil, agents); len(got) != 2 || got[0].ID != "1:2" {
		t.Errorf("nil tree must pass everything through in order, got %+v", got)
	}

	fl := false
	tree := compile(t, params.Params{Active: &fl})
	if got := Apply(tree, agents); len(got) != 0 {
		t.Errorf("active=false must reject active agents, got %+v", got)
	}
}
