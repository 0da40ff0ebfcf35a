// Package vector is the client for the external semantic search backend.
// It forwards only the predicates the backend evaluates reliably; everything
// else is re-applied locally after retrieval.
package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/agentauri/api.8004.dev-sub001/internal/domain"
	"github.com/agentauri/api.8004.dev-sub001/internal/domain/search/filter"
	"github.com/agentauri/api.8004.dev-sub001/internal/domain/search/result"
)

// Config holds backend connection parameters.
type Config struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	MinScore float64
}

// Client calls the semantic search backend over HTTP.
// The client performs no retries; retry policy belongs to the transport
// in front of the backend, not here.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a backend client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{},
		logger: logger,
	}, nil
}

// Search runs one semantic query against the backend. Each call carries its
// own timeout. The filter tree is reduced to the upstream-supported subset
// (the activity flag); the rest is ignored here by design of the cascade.
func (c *Client) Search(
	ctx context.Context, query string, limit, offset int, filters filter.Node,
) (result.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	reqBody := searchRequest{
		Query:    query,
		Limit:    limit,
		Offset:   offset,
		MinScore: c.cfg.MinScore,
	}
	if active := activeFlag(filters); active != nil {
		reqBody.Filters = &wireFilters{Active: active}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return result.Page{}, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.cfg.BaseURL+"/v1/search", bytes.NewReader(payload),
	)
	if err != nil {
		return result.Page{}, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return result.Page{}, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("vector backend error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return result.Page{}, fmt.Errorf("%w: status %d", domain.ErrBackendUnavailable, resp.StatusCode)
	}

	var wire searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return result.Page{}, fmt.Errorf("%w: decode response: %w", domain.ErrBackendUnavailable, err)
	}

	return wire.toDomain(), nil
}

// Ping checks backend reachability.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", domain.ErrBackendUnavailable, resp.StatusCode)
	}
	return nil
}

// activeFlag extracts the activity predicate from the filter tree. The
// backend mishandles false booleans and array containment, so the activity
// flag is the only condition forwarded upstream.
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
