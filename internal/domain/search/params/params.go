// Package params defines the structured filter parameters accepted alongside
// a free-text query. All predicates are optional; an absent predicate never
// constrains the result set.
package params

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// CombineMode controls how the boolean capability group combines. Every
// other predicate group stays AND-combined regardless of mode.
type CombineMode string

// Combination modes for the capability group.
const (
	CombineAND CombineMode = "AND"
	CombineOR  CombineMode = "OR"
)

// IsValid checks if the mode is one of the supported values.
func (m CombineMode) IsValid() bool {
	return m == CombineAND || m == CombineOR
}

// ReachabilityWindow is how far back a reachability attestation counts as
// recent, on either channel.
const ReachabilityWindow = 14 * 24 * time.Hour

// Params holds the structured filter predicates of one search request.
// A zero Params matches everything.
type Params struct {
	// Chain membership.
	Chains []int64

	// Boolean capability group. Only this group honors Combine=OR.
	MCP  *bool
	A2A  *bool
	X402 *bool

	// OASF taxonomy slugs, with exclusion variants.
	Skills         []string
	Domains        []string
	ExcludeSkills  []string
	ExcludeDomains []string

	// Inclusive numeric ranges; a nil bound is unbounded on that side.
	MinReputation *float64
	MaxReputation *float64
	MinTrustScore *float64
	MaxTrustScore *float64

	// Exact-match identity fields.
	Owner string
	ENS   string
	DID   string

	// Datetime windows.
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	UpdatedAfter  *time.Time
	UpdatedBefore *time.Time

	// RecentlyReachable is the two-channel recency convenience: reachability
	// attested within ReachabilityWindow on either channel.
	RecentlyReachable *bool

	// "Has X" conveniences and count thresholds.
	HasSkills  *bool
	HasDomains *bool
	MinSkills  *int
	MinDomains *int

	// Active is the one predicate the upstream backend evaluates reliably.
	Active *bool

	Combine CombineMode
}

// Normalize lowercases and dedupes slug sets, sorts chains, and defaults the
// combine mode. Empty sets stay empty (treated as absent, never as
// "match nothing").
func (p *Params) Normalize() error {
	if p.Combine == "" {
		p.Combine = CombineAND
	}
	if !p.Combine.IsValid() {
		return fmt.Errorf("invalid filter mode %q", p.Combine)
	}

	sort.Slice(p.Chains, func(i, j int) bool { return p.Chains[i] < p.Chains[j] })
	p.Skills = normalizeSlugs(p.Skills)
	p.Domains = normalizeSlugs(p.Domains)
	p.ExcludeSkills = normalizeSlugs(p.ExcludeSkills)
	p.ExcludeDomains = normalizeSlugs(p.ExcludeDomains)

	if p.MinReputation != nil && p.MaxReputation != nil && *p.MinReputation > *p.MaxReputation {
		return fmt.Errorf("reputation range is inverted")
	}
	if p.MinTrustScore != nil && p.MaxTrustScore != nil && *p.MinTrustScore > *p.MaxTrustScore {
		return fmt.Errorf("trust score range is inverted")
	}
	if p.MinSkills != nil && *p.MinSkills < 0 {
		return fmt.Errorf("min skills must be non-negative")
	}
	if p.MinDomains != nil && *p.MinDomains < 0 {
		return fmt.Errorf("min domains must be non-negative")
	}
	return nil
}

func normalizeSlugs(slugs []string) []string {
	if len(slugs) == 0 {
		return slugs
	}
	seen := make(map[string]struct{}, len(slugs))
	out := slugs[:0]
	for _, s := range slugs {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// HasBooleanFilters reports whether any capability flag is set.
func (p *Params) HasBooleanFilters() bool {
	return p.MCP != nil || p.A2A != nil || p.X402 != nil
}

// HasChainFilters reports whether chain membership is constrained.
func (p *Params) HasChainFilters() bool {
	return len(p.Chains) > 0
}

// HasTaxonomyFilters reports whether skill or domain slugs are constrained,
// including the exclusion variants.
func (p *Params) HasTaxonomyFilters() bool {
	return len(p.Skills) > 0 || len(p.Domains) > 0 ||
		len(p.ExcludeSkills) > 0 || len(p.ExcludeDomains) > 0
}

// HasAny reports whether at least one predicate is present.
func (p *Params) HasAny() bool {
	return p.HasChainFilters() || p.HasBooleanFilters() || p.HasTaxonomyFilters() ||
		p.MinReputation != nil || p.MaxReputation != nil ||
		p.MinTrustScore != nil || p.MaxTrustScore != nil ||
		p.Owner != "" || p.ENS != "" || p.DID != "" ||
		p.CreatedAfter != nil || p.CreatedBefore != nil ||
		p.UpdatedAfter != nil || p.UpdatedBefore != nil ||
		p.RecentlyReachable != nil ||
		p.HasSkills != nil || p.HasDomains != nil ||
		p.MinSkills != nil || p.MinDomains != nil ||
		p.Active != nil
}

// Fingerprint renders the normalized predicates as a stable string. Equal
// params produce equal fingerprints; the response cache keys on it.
func (p *Params) Fingerprint() string {
	var b strings.Builder
	writeInts(&b, "chains", p.Chains)
	writeBoolPtr(&b, "mcp", p.MCP)
	writeBoolPtr(&b, "a2a", p.A2A)
	writeBoolPtr(&b, "x402", p.X402)
	writeStrings(&b, "skills", p.Skills)
	writeStrings(&b, "domains", p.Domains)
	writeStrings(&b, "xskills", p.ExcludeSkills)
	writeStrings(&b, "xdomains", p.ExcludeDomains)
	writeFloatPtr(&b, "repmin", p.MinReputation)
	writeFloatPtr(&b, "repmax", p.MaxReputation)
	writeFloatPtr(&b, "trustmin", p.MinTrustScore)
	writeFloatPtr(&b, "trustmax", p.MaxTrustScore)
	writeString(&b, "owner", p.Owner)
	writeString(&b, "ens", p.ENS)
	writeString(&b, "did", p.DID)
	writeTimePtr(&b, "cafter", p.CreatedAfter)
	writeTimePtr(&b, "cbefore", p.CreatedBefore)
	writeTimePtr(&b, "uafter", p.UpdatedAfter)
	writeTimePtr(&b, "ubefore", p.UpdatedBefore)
	writeBoolPtr(&b, "reach", p.RecentlyReachable)
	writeBoolPtr(&b, "hskills", p.HasSkills)
	writeBoolPtr(&b, "hdomains", p.HasDomains)
	writeIntPtr(&b, "minskills", p.MinSkills)
	writeIntPtr(&b, "mindomains", p.MinDomains)
	writeBoolPtr(&b, "active", p.Active)
	writeString(&b, "combine", string(p.Combine))
	return b.String()
}

func writeString(b *strings.Builder, key, v string) {
	if v == "" {
		return
	}
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(v)
	b.WriteByte(';')
}

func writeStrings(b *strings.Builder, key string, vs []string) {
	if len(vs) == 0 {
		return
	}
	writeString(b, key, strings.Join(vs, ","))
}

func writeInts(b *strings.Builder, key string, vs []int64) {
	if len(vs) == 0 {
		return
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatInt(v, 10)
	}
	writeString(b, key, strings.Join(parts, ","))
}

func writeBoolPtr(b *strings.Builder, key string, v *bool) {
	if v == nil {
		return
	}
	writeString(b, key, strconv.FormatBool(*v))
}

func writeIntPtr(b *strings.Builder, key string, v *int) {
	if v == nil {
		return
	}
	writeString(b, key, strconv.Itoa(*v))
}

func writeFloatPtr(b *strings.Builder, key string, v *float64) {
	if v == nil {
		return
	}
	writeString(b, key, strconv.FormatFloat(*v, 'g', -1, 64))
}

func writeTimePtr(b *strings.Builder, key string, v *time.Time) {
	if v == nil {
		return
	}
	writeString(b, key, v.UTC().Format(time.RFC3339Nano))
}
