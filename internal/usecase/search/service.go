// Package search orchestrates agent search: it plans which backend serves a
// request, cascades from the vector backend to lexical fallback when needed,
// enriches raw hits, re-applies filters locally, and pages the filtered
// stream behind an opaque cursor.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/agentauri/api.8004.dev-sub001/internal/domain"
	"github.com/agentauri/api.8004.dev-sub001/internal/domain/agent"
	"github.com/agentauri/api.8004.dev-sub001/internal/domain/search/cursor"
	"github.com/agentauri/api.8004.dev-sub001/internal/domain/search/filter"
	"github.com/agentauri/api.8004.dev-sub001/internal/domain/search/mode"
	"github.com/agentauri/api.8004.dev-sub001/internal/domain/search/params"
	"github.com/agentauri/api.8004.dev-sub001/internal/domain/search/result"
	"github.com/agentauri/api.8004.dev-sub001/internal/metrics"
)

// Request is one search request after transport decoding.
type Request struct {
	Query  string
	Mode   mode.Mode
	Cursor string
	Limit  int
	Params params.Params
}

// Response is the search envelope returned to the transport layer.
type Response struct {
	Agents     []agent.Enriched `json:"agents"`
	Total      int              `json:"total"`
	HasMore    bool             `json:"has_more"`
	NextCursor string           `json:"next_cursor,omitempty"`
	ModeUsed   mode.Used        `json:"search_mode_used"`
	ByChain    map[int64]int    `json:"by_chain,omitempty"`
}

// Config holds pagination and over-fetch tuning.
type Config struct {
	DefaultPageSize    int
	MaxPageSize        int
	OverfetchCap       int
	FallbackMultiplier int
}

// Service is the search orchestrator.
type Service struct {
	vector   Backend
	fallback Backend
	enricher Enricher
	cache    ResponseCache
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a search orchestrator. cache may be nil to disable
// response caching.
func NewService(
	vector Backend,
	fallback Backend,
	enricher Enricher,
	cache ResponseCache,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	if cfg.OverfetchCap <= 0 {
		cfg.OverfetchCap = 100
	}
	if cfg.FallbackMultiplier <= 0 {
		cfg.FallbackMultiplier = 3
	}
	return &Service{
		vector:   vector,
		fallback: fallback,
		enricher: enricher,
		cache:    cache,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Search runs one search request end to end.
//
// Mode auto tries the vector backend and cascades to lexical fallback on a
// backend fault or an empty first page; a cursor-bearing request never
// cascades, so one paging session stays on one backend. Mode semantic pins
// the vector backend and mode name pins the lexical one; neither cascades.
// The request fails with ErrSearchUnavailable only when no backend the plan
// permits can serve it.
func (s *Service) Search(ctx context.Context, req Request) (Response, error) {
	start := time.Now()

	req, p, err := s.validate(req)
	if err != nil {
		return Response{}, err
	}
	reqMode := string(req.Mode)

	offset := cursor.Decode(req.Cursor)
	firstPage := req.Cursor == ""
	tree, hasFilters := filter.Compile(&p, s.now())

	var cacheKey string
	if firstPage && s.cache != nil {
		cacheKey = s.cache.Key(req.Query, p.Fingerprint(), req.Limit, reqMode)
		var cached Response
		if s.cache.Get(ctx, cacheKey, &cached) {
			metrics.SearchesTotal.WithLabelValues(reqMode, "ok").Inc()
			metrics.SearchDuration.WithLabelValues(reqMode).Observe(time.Since(start).Seconds())
			return cached, nil
		}
	}

	page, used, err := s.execute(ctx, req, tree, offset, firstPage, &p)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues(reqMode, "error").Inc()
		return Response{}, err
	}

	enriched := s.enricher.Enrich(ctx, page.Hits)

	var matched []agent.Enriched
	consumed := len(page.Hits)
	extra := 0
	if hasFilters {
		matched, consumed, extra = filterWindow(tree, enriched, req.Limit)
	} else if len(enriched) > req.Limit {
		matched = enriched[:req.Limit]
		consumed = req.Limit
		extra = len(enriched) - req.Limit
	} else {
		matched = enriched
	}

	if matched == nil {
		matched = []agent.Enriched{}
	}
	hasMore := page.HasMore || extra > 0
	resp := Response{
		Agents:   matched,
		Total:    page.Total,
		HasMore:  hasMore,
		ModeUsed: used,
		ByChain:  page.ByChain,
	}
	if hasMore {
		resp.NextCursor = cursor.Encode(offset + consumed)
	}

	if cacheKey != "" {
		s.cache.Set(ctx, cacheKey, resp)
	}
	metrics.SearchesTotal.WithLabelValues(reqMode, "ok").Inc()
	metrics.SearchDuration.WithLabelValues(reqMode).Observe(time.Since(start).Seconds())
	return resp, nil
}

// validate normalizes the request in place and returns the normalized
// params. All rejections wrap domain.ErrValidation.
func (s *Service) validate(req Request) (Request, params.Params, error) {
	if req.Mode == "" {
		req.Mode = mode.Auto
	}
	if !req.Mode.IsValid() {
		return req, params.Params{}, fmt.Errorf("%w: unknown search mode %q", domain.ErrValidation, req.Mode)
	}

	p := req.Params
	if err := p.Normalize(); err != nil {
		return req, params.Params{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" && !p.HasAny() {
		return req, params.Params{}, fmt.Errorf("%w: a query or at least one filter is required", domain.ErrValidation)
	}

	if req.Limit <= 0 {
		req.Limit = s.cfg.DefaultPageSize
	}
	if req.Limit > s.cfg.MaxPageSize {
		req.Limit = s.cfg.MaxPageSize
	}
	return req, p, nil
}

// execute runs the backend plan for the request mode and reports which
// strategy produced the page.
func (s *Service) execute(
	ctx context.Context, req Request, tree filter.Node, offset int, firstPage bool, p *params.Params,
) (result.Page, mode.Used, error) {
	fetch := s.overfetch(req.Limit, p, 1)

	switch req.Mode {
	case mode.Name:
		// The lexical backend always over-fetches at least the fallback
		// multiplier: local re-filtering would otherwise shorten pages even
		// for predicates outside the selective groups.
		fetch = s.overfetch(req.Limit, p, s.cfg.FallbackMultiplier)
		page, err := s.fallback.Search(ctx, req.Query, fetch, offset, tree)
		if err != nil {
			return result.Page{}, "", fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, err)
		}
		return page, mode.UsedName, nil

	case mode.Semantic:
		page, err := s.vector.Search(ctx, req.Query, fetch, offset, tree)
		if err != nil {
			return result.Page{}, "", fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, err)
		}
		return page, mode.UsedVector, nil

	default: // mode.Auto
		page, err := s.vector.Search(ctx, req.Query, fetch, offset, tree)
		vectorFaulted := err != nil
		if !vectorFaulted && (len(page.Hits) > 0 || !firstPage) {
			return page, mode.UsedVector, nil
		}
		if vectorFaulted {
			s.logger.Warn("Vector backend faulted, cascading to fallback", zap.Error(err))
		} else {
			s.logger.Debug("Vector backend returned nothing, cascading to fallback",
				zap.String("query", req.Query))
		}
		metrics.FallbackCascadesTotal.Inc()

		fpage, ferr := s.fallback.Search(
			ctx, req.Query, s.overfetch(req.Limit, p, s.cfg.FallbackMultiplier), offset, tree,
		)
		if ferr != nil {
			if vectorFaulted {
				return result.Page{}, "", fmt.Errorf("%w: %w", domain.ErrSearchUnavailable,
					errors.Join(err, ferr))
			}
			// The vector backend answered (empty); serve its answer rather
			// than surface a fallback-only fault.
			s.logger.Warn("Fallback faulted after empty vector page", zap.Error(ferr))
			return page, mode.UsedVector, nil
		}
		return fpage, mode.UsedFallback, nil
	}
}

// overfetch sizes the raw window for one backend call. Local re-filtering
// discards hits after retrieval, so selective predicate groups widen the
// window: boolean or chain predicates fetch 3x, taxonomy predicates 10x
// (taxonomy wins when both apply). The window never exceeds the cap.
func (s *Service) overfetch(limit int, p *params.Params, minFactor int) int {
	factor := 1
	if p.HasBooleanFilters() || p.HasChainFilters() {
		factor = 3
	}
	if p.HasTaxonomyFilters() {
		factor = 10
	}
	if factor < minFactor {
		factor = minFactor
	}
	fetch := limit * factor
	if fetch > s.cfg.OverfetchCap {
		fetch = s.cfg.OverfetchCap
	}
	if fetch < limit {
		fetch = limit
	}
	return fetch
}

// filterWindow takes the first limit agents matching the tree, tracking how
// many raw hits were consumed through the last taken match. consumed feeds
// the next cursor: the follow-up request resumes right after the last raw
// hit this page actually used. extra counts matches left beyond the limit,
// which force hasMore even when the backend window is exhausted.
func filterWindow(tree filter.Node, enriched []agent.Enriched, limit int) (matched []agent.Enriched, consumed, extra int) {
	matched = make([]agent.Enriched, 0, limit)
	consumed = len(enriched)
	for i := range enriched {
		if !Matches(tree, &enriched[i]) {
			continue
		}
		if len(matched) == limit {
			extra++
			continue
		}
		matched = append(matched, enriched[i])
		if len(matched) == limit {
			consumed = i + 1
		}
	}
	return matched, consumed, extra
}
