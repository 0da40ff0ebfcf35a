package chi

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/agentauri/api.8004.dev-sub001/internal/domain/search/mode"
	"github.com/agentauri/api.8004.dev-sub001/internal/domain/search/params"
	healthuc "github.com/agentauri/api.8004.dev-sub001/internal/usecase/health"
	searchuc "github.com/agentauri/api.8004.dev-sub001/internal/usecase/search"
)

// searchRequestDTO is the POST body of /v1/agents/search.
type searchRequestDTO struct {
	Query   string     `json:"query"`
	Mode    string     `json:"mode,omitempty"`
	Cursor  string     `json:"cursor,omitempty"`
	Limit   int        `json:"limit,omitempty"`
	Filters filtersDTO `json:"filters"`
}

// filtersDTO carries the structured predicates of a search request.
type filtersDTO struct {
	Chains            []int64    `json:"chains,omitempty"`
	MCP               *bool      `json:"mcp,omitempty"`
	A2A               *bool      `json:"a2a,omitempty"`
	X402              *bool      `json:"x402,omitempty"`
	Skills            []string   `json:"skills,omitempty"`
	Domains           []string   `json:"domains,omitempty"`
	ExcludeSkills     []string   `json:"exclude_skills,omitempty"`
	ExcludeDomains    []string   `json:"exclude_domains,omitempty"`
	MinReputation     *float64   `json:"min_reputation,omitempty"`
	MaxReputation     *float64   `json:"max_reputation,omitempty"`
	MinTrustScore     *float64   `json:"min_trust_score,omitempty"`
	MaxTrustScore     *float64   `json:"max_trust_score,omitempty"`
	Owner             string     `json:"owner,omitempty"`
	ENS               string     `json:"ens,omitempty"`
	DID               string     `json:"did,omitempty"`
	CreatedAfter      *time.Time `json:"created_after,omitempty"`
	CreatedBefore     *time.Time `json:"created_before,omitempty"`
	UpdatedAfter      *time.Time `json:"updated_after,omitempty"`
	UpdatedBefore     *time.Time `json:"updated_before,omitempty"`
	RecentlyReachable *bool      `json:"recently_reachable,omitempty"`
	HasSkills         *bool      `json:"has_skills,omitempty"`
	HasDomains        *bool      `json:"has_domains,omitempty"`
	MinSkills         *int       `json:"min_skills,omitempty"`
	MinDomains        *int       `json:"min_domains,omitempty"`
	Active            *bool      `json:"active,omitempty"`
	FilterMode        string     `json:"filter_mode,omitempty"`
}

func (d searchRequestDTO) toDomain() searchuc.Request {
	return searchuc.Request{
		Query:  d.Query,
		Mode:   mode.Mode(d.Mode),
		Cursor: d.Cursor,
		Limit:  d.Limit,
		Params: params.Params{
			Chains:            d.Filters.Chains,
			MCP:               d.Filters.MCP,
			A2A:               d.Filters.A2A,
			X402:              d.Filters.X402,
			Skills:            d.Filters.Skills,
			Domains:           d.Filters.Domains,
			ExcludeSkills:     d.Filters.ExcludeSkills,
			ExcludeDomains:    d.Filters.ExcludeDomains,
			MinReputation:     d.Filters.MinReputation,
			MaxReputation:     d.Filters.MaxReputation,
			MinTrustScore:     d.Filters.MinTrustScore,
			MaxTrustScore:     d.Filters.MaxTrustScore,
			Owner:             d.Filters.Owner,
			ENS:               d.Filters.ENS,
			DID:               d.Filters.DID,
			CreatedAfter:      d.Filters.CreatedAfter,
			CreatedBefore:     d.Filters.CreatedBefore,
			UpdatedAfter:      d.Filters.UpdatedAfter,
			UpdatedBefore:     d.Filters.UpdatedBefore,
			RecentlyReachable: d.Filters.RecentlyReachable,
			HasSkills:         d.Filters.HasSkills,
			HasDomains:        d.Filters.HasDomains,
			MinSkills:         d.Filters.MinSkills,
			MinDomains:        d.Filters.MinDomains,
			Active:            d.Filters.Active,
			Combine:           params.CombineMode(strings.ToUpper(d.Filters.FilterMode)),
		},
	}
}

// requestFromQuery decodes GET query parameters into a search request.
func requestFromQuery(r *http.Request) (searchuc.Request, error) {
	q := r.URL.Query()
	dto := searchRequestDTO{
		Query:  q.Get("q"),
		Mode:   q.Get("mode"),
		Cursor: q.Get("cursor"),
	}
	if dto.Query == "" {
		dto.Query = q.Get("query")
	}

	var err error
	if dto.Limit, err = queryInt(q, "limit"); err != nil {
		return searchuc.Request{}, err
	}

	f := &dto.Filters
	if f.Chains, err = queryChains(q, "chains"); err != nil {
		return searchuc.Request{}, err
	}
	f.Skills = queryCSV(q, "skills")
	f.Domains = queryCSV(q, "domains")
	f.ExcludeSkills = queryCSV(q, "exclude_skills")
	f.ExcludeDomains = queryCSV(q, "exclude_domains")
	f.Owner = q.Get("owner")
	f.ENS = q.Get("ens")
	f.DID = q.Get("did")
	f.FilterMode = q.Get("filter_mode")

	boolFields := map[string]**bool{
		"mcp":                &f.MCP,
		"a2a":                &f.A2A,
		"x402":               &f.X402,
		"recently_reachable": &f.RecentlyReachable,
		"has_skills":         &f.HasSkills,
		"has_domains":        &f.HasDomains,
		"active":             &f.Active,
	}
	for key, dst := range boolFields {
		if *dst, err = queryBoolPtr(q, key); err != nil {
			return searchuc.Request{}, err
		}
	}

	floatFields := map[string]**float64{
		"min_reputation":  &f.MinReputation,
		"max_reputation":  &f.MaxReputation,
		"min_trust_score": &f.MinTrustScore,
		"max_trust_score": &f.MaxTrustScore,
	}
	for key, dst := range floatFields {
		if *dst, err = queryFloatPtr(q, key); err != nil {
			return searchuc.Request{}, err
		}
	}

	intFields := map[string]**int{
		"min_skills":  &f.MinSkills,
		"min_domains": &f.MinDomains,
	}
	for key, dst := range intFields {
		if *dst, err = queryIntPtr(q, key); err != nil {
			return searchuc.Request{}, err
		}
	}

	timeFields := map[string]**time.Time{
		"created_after":  &f.CreatedAfter,
		"created_before": &f.CreatedBefore,
		"updated_after":  &f.UpdatedAfter,
		"updated_before": &f.UpdatedBefore,
	}
	for key, dst := range timeFields {
		if *dst, err = queryTimePtr(q, key); err != nil {
			return searchuc.Request{}, err
		}
	}

	return dto.toDomain(), nil
}

func queryInt(q url.Values, key string) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return v, nil
}

func queryIntPtr(q url.Values, key string) (*int, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", key, raw)
	}
	return &v, nil
}

func queryBoolPtr(q url.Values, key string) (*bool, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", key, raw)
	}
	return &v, nil
}

func queryFloatPtr(q url.Values, key string) (*float64, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", key, raw)
	}
	return &v, nil
}

func queryTimePtr(q url.Values, key string) (*time.Time, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: expected RFC 3339", key, raw)
	}
	return &v, nil
}

func queryCSV(q url.Values, key string) []string {
	raw := q.Get(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func queryChains(q url.Values, key string) ([]int64, error) {
	parts := queryCSV(q, key)
	if len(parts) == 0 {
		return nil, nil
	}
	out := make([]int64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chain id %q", part)
		}
		out[i] = v
	}
	return out, nil
}

// healthDTO is the GET /health response body.
type healthDTO struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func healthToDTO(r healthuc.Report) healthDTO {
	checks := make(map[string]string, len(r.Checks))
	for name, result := range r.Checks {
		checks[name] = string(result)
	}
	return healthDTO{
		Status: string(r.Status),
		Checks: checks,
	}
}
