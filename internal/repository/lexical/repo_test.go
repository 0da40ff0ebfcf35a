package lexical

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/agentauri/api.8004.dev-sub001/internal/domain/agent"
	"github.com/agentauri/api.8004.dev-sub001/internal/domain/search/filter"
)

type mockDirectory struct {
	listFn func(ctx context.Context) ([]agent.Detail, error)
}

func (m *mockDirectory) List(ctx context.Context) ([]agent.Detail, error) {
	return m.listFn(ctx)
}

func fixedDirectory(details []agent.Detail) *mockDirectory {
	return &mockDirectory{listFn: func(_ context.Context) ([]agent.Detail, error) {
		return details, nil
	}}
}

func detail(chainID int64, tokenID, name, description string) agent.Detail {
	return agent.Detail{
		ChainID:     chainID,
		TokenID:     tokenID,
		Name:        name,
		Description: description,
		Active:      true,
		CreatedAt:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSearch_RankingLadder(t *testing.T) {
	repo := New(fixedDirectory([]agent.Detail{
		detail(1, "1", "helper", "summarizes research papers"),
		detail(1, "2", "trade helper", "watches order books"),
		detail(1, "3", "portfolio", "helper for rebalancing"),
		detail(1, "4", "archivist", "a helpful archive agent"),
		detail(1, "5", "oracle", "price feeds"),
	}))

	page, err := repo.Search(context.Background(), "helper", 10, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 5 {
		t.Fatalf("Total = %d", page.Total)
	}

	want := []struct {
		id     string
		score  float64
		reason string
	}{
		{"1:1", 1.0, "name_exact"},
		{"1:2", 0.8, "name_substring"},
		{"1:3", 0.7, "description_prefix"},
		{"1:4", 0.3, "default"},
		{"1:5", 0.3, "default"},
	}
	for i, w := range want {
		h := page.Hits[i]
		if h.AgentID() != w.id || h.Score() != w.score {
			t.Errorf("hit %d = %s score %v, want %s score %v",
				i, h.AgentID(), h.Score(), w.id, w.score)
		}
		if len(h.MatchReasons()) != 1 || h.MatchReasons()[0] != w.reason {
			t.Errorf("hit %d reasons = %v, want [%s]", i, h.MatchReasons(), w.reason)
		}
	}
}

func TestSearch_WordOverlap(t *testing.T) {
	repo := New(fixedDirectory([]agent.Detail{
		detail(1, "1", "sentinel", "monitors onchain trading activity"),
	}))

	page, err := repo.Search(context.Background(), "trading signals", 10, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h := page.Hits[0]
	// One of two query words present: 0.3 + 0.25*0.5.
	if math.Abs(h.Score()-0.425) > 1e-9 {
		t.Errorf("score = %v", h.Score())
	}
	if h.MatchReasons()[0] != "word_overlap" {
		t.Errorf("reasons = %v", h.MatchReasons())
	}
}

func TestSearch_EmptyQueryReturnsAll(t *testing.T) {
	repo := New(fixedDirectory([]agent.Detail{
		detail(1, "1", "alpha", ""),
		detail(8453, "2", "beta", ""),
	}))

	page, err := repo.Search(context.Background(), "", 10, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("Total = %d", page.Total)
	}
	for _, h := range page.Hits {
		if h.Score() != 0.3 {
			t.Errorf("hit %s score = %v", h.AgentID(), h.Score())
		}
	}
	if page.ByChain[1] != 1 || page.ByChain[8453] != 1 {
		t.Errorf("ByChain = %v", page.ByChain)
	}
}

func TestSearch_Paging(t *testing.T) {
	repo := New(fixedDirectory([]agent.Detail{
		detail(1, "1", "alpha", ""),
		detail(1, "2", "beta", ""),
		detail(1, "3", "gamma", ""),
	}))

	first, err := repo.Search(context.Background(), "", 2, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first.Hits) != 2 || !first.HasMore {
		t.Fatalf("first page: %d hits, HasMore=%v", len(first.Hits), first.HasMore)
	}

	second, err := repo.Search(context.Background(), "", 2, 2, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second.Hits) != 1 || second.HasMore {
		t.Fatalf("second page: %d hits, HasMore=%v", len(second.Hits), second.HasMore)
	}
	// Equal scores page stably by agent id.
	if second.Hits[0].AgentID() != "1:3" {
		t.Errorf("second page hit = %s", second.Hits[0].AgentID())
	}
}

func TestSearch_HonorsActivityFlag(t *testing.T) {
	inactive := detail(1, "2", "beta", "")
	inactive.Active = false
	repo := New(fixedDirectory([]agent.Detail{
		detail(1, "1", "alpha", ""),
		inactive,
	}))

	cond, err := filter.NewMatch(filter.FieldActive, "true")
	if err != nil {
		t.Fatal(err)
	}
	must, err := filter.NewMust([]filter.Condition{cond})
	if err != nil {
		t.Fatal(err)
	}

	page, err := repo.Search(context.Background(), "", 10, 0, must)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 1 || page.Hits[0].AgentID() != "1:1" {
		t.Errorf("page = %+v", page)
	}
}

func TestSearch_DirectoryError(t *testing.T) {
	repo := New(&mockDirectory{listFn: func(_ context.Context) ([]agent.Detail, error) {
		return nil, errors.New("scan failed")
	}})

	if _, err := repo.Search(context.Background(), "x", 10, 0, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearch_MetadataCarriesDirectoryFields(t *testing.T) {
	d := detail(1, "1", "alpha", "summarizer")
	d.Caps.MCP = true
	d.Identity.Owner = "0xabc"
	repo := New(fixedDirectory([]agent.Detail{d}))

	page, err := repo.Search(context.Background(), "alpha", 10, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	md := page.Hits[0].Metadata()
	if md["name"] != "alpha" || md["mcp"] != "true" || md["a2a"] != "false" || md["owner"] != "0xabc" {
		t.Errorf("metadata = %v", md)
	}
}
