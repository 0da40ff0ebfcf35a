// Package enrich merges raw search hits with directory records, taxonomy
// classifications, and reputation aggregates. Enrichment never fails a
// search: lookups that error degrade per hit to the metadata embedded in
// the hit itself.
package enrich

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agentauri/api.8004.dev-sub001/internal/domain/agent"
	"github.com/agentauri/api.8004.dev-sub001/internal/domain/search/result"
	"github.com/agentauri/api.8004.dev-sub001/internal/metrics"
)

// Config holds enrichment tuning parameters.
type Config struct {
	// FanOut caps concurrent directory lookups per enrichment pass.
	FanOut int
	// DetailTimeout bounds each individual directory lookup.
	DetailTimeout time.Duration
	// PassCacheTTL bounds how long directory records are reused across
	// the enrichment passes of one paging session.
	PassCacheTTL time.Duration
}

// Service resolves search hits into enriched agents.
type Service struct {
	directory       DirectoryReader
	classifications ClassificationStore
	reputations     ReputationStore
	cache           *passCache
	cfg             Config
	logger          *zap.Logger
}

// NewService creates an enrichment service.
func NewService(
	directory DirectoryReader,
	classifications ClassificationStore,
	reputations ReputationStore,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if cfg.FanOut <= 0 {
		cfg.FanOut = 8
	}
	if cfg.DetailTimeout <= 0 {
		cfg.DetailTimeout = 500 * time.Millisecond
	}
	if cfg.PassCacheTTL <= 0 {
		cfg.PassCacheTTL = 30 * time.Second
	}
	return &Service{
		directory:       directory,
		classifications: classifications,
		reputations:     reputations,
		cache:           newPassCache(cfg.PassCacheTTL),
		cfg:             cfg,
		logger:          logger,
	}
}

// Enrich resolves side-channel data for every hit, preserving hit order.
// Classification and reputation are fetched in one batched round-trip each;
// directory records fan out with bounded concurrency. Lookup failures
// degrade the affected hits instead of failing the pass.
func (s *Service) Enrich(ctx context.Context, hits []result.Hit) []agent.Enriched {
	if len(hits) == 0 {
		return nil
	}

	ids := make([]string, len(hits))
	for i := range hits {
		ids[i] = hits[i].AgentID()
	}

	var (
		classifications map[string]agent.Classification
		reputations     map[string]agent.Reputation
	)
	details := make([]*agent.Detail, len(hits))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.classifications.BatchGet(gctx, ids)
		if err != nil {
			s.logger.Warn("Classification batch lookup failed", zap.Error(err))
			return nil
		}
		classifications = m
		return nil
	})
	g.Go(func() error {
		m, err := s.reputations.BatchGet(gctx, ids)
		if err != nil {
			s.logger.Warn("Reputation batch lookup failed", zap.Error(err))
			return nil
		}
		reputations = m
		return nil
	})

	dg, dctx := errgroup.WithContext(ctx)
	dg.SetLimit(s.cfg.FanOut)
	for i := range hits {
		i := i
		dg.Go(func() error {
			details[i] = s.lookupDetail(dctx, &hits[i])
			return nil
		})
	}

	_ = g.Wait()
	_ = dg.Wait()

	out := make([]agent.Enriched, len(hits))
	for i := range hits {
		cls := lookup(classifications, ids[i])
		rep := lookup(reputations, ids[i])
		if details[i] == nil {
			metrics.EnrichmentDegradedTotal.Inc()
			out[i] = degrade(&hits[i], cls, rep)
			continue
		}
		out[i] = merge(&hits[i], *details[i], cls, rep)
	}
	return out
}

// lookupDetail returns the directory record for one hit, or nil when the
// record cannot be resolved in time.
func (s *Service) lookupDetail(ctx context.Context, hit *result.Hit) *agent.Detail {
	id := hit.AgentID()
	if d, ok := s.cache.get(id); ok {
		return &d
	}

	chainID, tokenID, err := agent.ParseID(id)
	if err != nil {
		s.logger.Warn("Malformed agent id in search hit", zap.String("agent_id", id), zap.Error(err))
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.DetailTimeout)
	defer cancel()

	d, err := s.directory.Get(ctx, chainID, tokenID)
	if err != nil {
		s.logger.Warn("Directory lookup failed", zap.String("agent_id", id), zap.Error(err))
		return nil
	}
	s.cache.set(id, d)
	return &d
}

// merge combines a hit with its resolved directory record.
func merge(hit *result.Hit, d agent.Detail, cls *agent.Classification, rep *agent.Reputation) agent.Enriched {
	createdAt := d.CreatedAt
	updatedAt := d.UpdatedAt
	return agent.Enriched{
		ID:             hit.AgentID(),
		ChainID:        d.ChainID,
		Name:           d.Name,
		Description:    d.Description,
		Score:          hit.Score(),
		MatchReasons:   hit.MatchReasons(),
		Active:         d.Active,
		Caps:           d.Caps,
		Classification: cls,
		Reputation:     rep,
		TrustScore:     d.TrustScore,
		Identity:       d.Identity,
		CreatedAt:      &createdAt,
		UpdatedAt:      &updatedAt,
		LastPingAt:     d.LastPingAt,
		LastCrawlAt:    d.LastCrawlAt,
	}
}

// degrade reconstructs a result from the metadata embedded in the hit.
// Field defaults: name and description fall back to the hit's own copies,
// capability flags to false, activity to true so a degraded lookup does not
// hide an agent the backend already matched. Timestamps and identity are
// omitted; there is no trustworthy source for them.
func degrade(hit *result.Hit, cls *agent.Classification, rep *agent.Reputation) agent.Enriched {
	md := hit.Metadata()
	e := agent.Enriched{
		ID:             hit.AgentID(),
		ChainID:        hit.ChainID(),
		Name:           hit.Name(),
		Description:    hit.Description(),
		Score:          hit.Score(),
		MatchReasons:   hit.MatchReasons(),
		Active:         true,
		Classification: cls,
		Reputation:     rep,
		Degraded:       true,
	}
	if v, ok := md["name"]; ok && v != "" {
		e.Name = v
	}
	if v, ok := md["description"]; ok && v != "" {
		e.Description = v
	}
	if v, ok := md["active"]; ok {
		e.Active = v == "true"
	}
	e.Caps = agent.Capabilities{
		MCP:  md["mcp"] == "true",
		A2A:  md["a2a"] == "true",
		X402: md["x402"] == "true",
	}
	if v, ok := md["owner"]; ok {
		e.Identity.Owner = v
	}
	if v, ok := md["chain_id"]; ok {
		if chainID, err := strconv.ParseInt(v, 10, 64); err == nil {
			e.ChainID = chainID
		}
	}
	return e
}

func lookup[V any](m map[string]V, id string) *V {
	v, ok := m[id]
	if !ok {
		return nil
	}
	return &v
}
