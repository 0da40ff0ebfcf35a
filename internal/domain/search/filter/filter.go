// Package filter defines the structured filter expression tree compiled from
// search parameters, and the compiler producing it. Backend translators map
// the variant tree to their native query form; predicates a backend cannot
// evaluate reliably are re-applied locally by the application filter.
package filter

import (
	"fmt"
	"time"
)

// MaxConditionsPerGroup is the maximum number of conditions per filter group.
const MaxConditionsPerGroup = 32

// Node is one node of a filter expression tree.
type Node interface {
	isNode()
}

// And combines child nodes; every child must hold.
type And struct {
	Nodes []Node
}

// Must holds conditions that must all match.
type Must struct {
	Conds []Condition
}

// Should holds alternatives of which at least MinMatch must hold. A Should
// group is never silently optional: MinMatch is always >= 1.
type Should struct {
	Conds    []Condition
	MinMatch int
}

// MustNot holds conditions that must not match. MustNot groups are evaluated
// after Must and Should, and apply regardless of combination mode.
type MustNot struct {
	Conds []Condition
}

func (And) isNode()     {}
func (Must) isNode()    {}
func (Should) isNode()  {}
func (MustNot) isNode() {}

// NewMust validates and creates a Must group.
func NewMust(conds []Condition) (Must, error) {
	if len(conds) == 0 {
		return Must{}, fmt.Errorf("must group requires at least one condition")
	}
	if len(conds) > MaxConditionsPerGroup {
		return Must{}, fmt.Errorf("too many must conditions (max %d)", MaxConditionsPerGroup)
	}
	return Must{Conds: conds}, nil
}

// NewShould validates and creates a Should group requiring minMatch matches.
func NewShould(conds []Condition, minMatch int) (Should, error) {
	if len(conds) == 0 {
		return Should{}, fmt.Errorf("should group requires at least one condition")
	}
	if len(conds) > MaxConditionsPerGroup {
		return Should{}, fmt.Errorf("too many should conditions (max %d)", MaxConditionsPerGroup)
	}
	if minMatch < 1 {
		return Should{}, fmt.Errorf("should group requires min match >= 1, got %d", minMatch)
	}
	if minMatch > len(conds) {
		return Should{}, fmt.Errorf("min match %d exceeds condition count %d", minMatch, len(conds))
	}
	return Should{Conds: conds, MinMatch: minMatch}, nil
}

// NewMustNot validates and creates a MustNot group.
func NewMustNot(conds []Condition) (MustNot, error) {
	if len(conds) == 0 {
		return MustNot{}, fmt.Errorf("must_not group requires at least one condition")
	}
	if len(conds) > MaxConditionsPerGroup {
		return MustNot{}, fmt.Errorf("too many must_not conditions (max %d)", MaxConditionsPerGroup)
	}
	return MustNot{Conds: conds}, nil
}

// Kind discriminates the condition variants.
type Kind int

// Condition kinds.
const (
	// KindMatch is an exact value match on a single-valued field.
	KindMatch Kind = iota
	// KindAnyOf matches when the agent's multi-valued field intersects the
	// supplied set.
	KindAnyOf
	// KindRange is an inclusive numeric range; a nil bound is unbounded.
	KindRange
	// KindTimeRange is an inclusive datetime window; a nil bound is unbounded.
	KindTimeRange
	// KindExists matches when the multi-valued field is non-empty.
	KindExists
	// KindCountGTE matches when the multi-valued field has at least N entries.
	KindCountGTE
)

// Condition is a single filter clause on one field.
type Condition struct {
	key       string
	kind      Kind
	match     string
	values    []string
	gte       *float64
	lte       *float64
	after     *time.Time
	before    *time.Time
	threshold int
}

// NewMatch creates an exact match condition.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, kind: KindMatch, match: match}, nil
}

// NewAnyOf creates a set-containment condition. The supplied set must be
// non-empty; callers treat an empty set as an absent predicate.
func NewAnyOf(key string, values []string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if len(values) == 0 {
		return Condition{}, fmt.Errorf("any-of values are required for key %q", key)
	}
	return Condition{key: key, kind: KindAnyOf, values: values}, nil
}

// NewRange creates an inclusive numeric range condition.
// At least one bound is required.
func NewRange(key string, gte, lte *float64) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if gte == nil && lte == nil {
		return Condition{}, fmt.Errorf("at least one range bound is required for key %q", key)
	}
	return Condition{key: key, kind: KindRange, gte: gte, lte: lte}, nil
}

// NewTimeRange creates an inclusive datetime window condition.
// At least one bound is required.
func NewTimeRange(key string, after, before *time.Time) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if after == nil && before == nil {
		return Condition{}, fmt.Errorf("at least one window bound is required for key %q", key)
	}
	return Condition{key: key, kind: KindTimeRange, after: after, before: before}, nil
}

// NewExists creates a non-empty-field condition.
func NewExists(key string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, kind: KindExists}, nil
}

// NewCountGTE creates a count-threshold condition.
func NewCountGTE(key string, threshold int) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if threshold < 1 {
		return Condition{}, fmt.Errorf("count threshold must be >= 1 for key %q", key)
	}
	return Condition{key: key, kind: KindCountGTE, threshold: threshold}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Kind returns the condition variant.
func (c Condition) Kind() Kind { return c.kind }

// Match returns the exact match value.
func (c Condition) Match() string { return c.match }

// Values returns the any-of set.
func (c Condition) Values() []string { return c.values }

// GTE returns the inclusive numeric lower bound.
func (c Condition) GTE() *float64 { return c.gte }

// LTE returns the inclusive numeric upper bound.
func (c Condition) LTE() *float64 { return c.lte }

// After returns the inclusive window start.
func (c Condition) After() *time.Time { return c.after }

// Before returns the inclusive window end.
func (c Condition) Before() *time.Time { return c.before }

// Threshold returns the count threshold.
func (c Condition) Threshold() int { return c.threshold }
