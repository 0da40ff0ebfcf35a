package filter

import (
	"strconv"
	"testing"
	"time"
)

func TestNewMatch(t *testing.T) {
	c, err := NewMatch("owner", "0xabc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Kind() != KindMatch || c.Key() != "owner" || c.Match() != "0xabc" {
		t.Errorf("condition = %+v", c)
	}

	if _, err := NewMatch("", "v"); err == nil {
		t.Error("expected error for empty key")
	}
	if _, err := NewMatch("k", ""); err == nil {
		t.Error("expected error for empty value")
	}
}

func TestNewAnyOf(t *testing.T) {
	c, err := NewAnyOf("skills", []string{"nlp", "coding"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Kind() != KindAnyOf || len(c.Values()) != 2 {
		t.Errorf("condition = %+v", c)
	}

	if _, err := NewAnyOf("skills", nil); err == nil {
		t.Error("expected error for empty set")
	}
}

func TestNewRange(t *testing.T) {
	lo := 10.0
	c, err := NewRange("reputation_score", &lo, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Kind() != KindRange || *c.GTE() != 10.0 || c.LTE() != nil {
		t.Errorf("condition = %+v", c)
	}

	if _, err := NewRange("k", nil, nil); err == nil {
		t.Error("expected error for unbounded range")
	}
}

func TestNewTimeRange(t *testing.T) {
	after := time.Now()
	c, err := NewTimeRange("created_at", &after, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Kind() != KindTimeRange || c.After() == nil || c.Before() != nil {
		t.Errorf("condition = %+v", c)
	}

	if _, err := NewTimeRange("k", nil, nil); err == nil {
		t.Error("expected error for unbounded window")
	}
}

func TestNewCountGTE(t *testing.T) {
	c, err := NewCountGTE("skills", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Kind() != KindCountGTE || c.Threshold() != 3 {
		t.Errorf("condition = %+v", c)
	}

	if _, err := NewCountGTE("skills", 0); err == nil {
		t.Error("expected error for zero threshold")
	}
}

func TestNewShould_MinMatch(t *testing.T) {
	c, _ := NewMatch("has_mcp", "true")

	if _, err := NewShould([]Condition{c}, 0); err == nil {
		t.Error("should group must reject min match 0")
	}
	if _, err := NewShould([]Condition{c}, 2); err == nil {
		t.Error("min match above condition count must be rejected")
	}

	g, err := NewShould([]Condition{c}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.MinMatch != 1 {
		t.Errorf("MinMatch = %d", g.MinMatch)
	}
}

func TestGroupLimits(t *testing.T) {
	conds := make([]Condition, MaxConditionsPerGroup+1)
	for i := range conds {
		conds[i], _ = NewMatch("k", "v"+strconv.Itoa(i))
	}

	if _, err := NewMust(conds); err == nil {
		t.Error("expected error for oversized must group")
	}
	if _, err := NewShould(conds, 1); err == nil {
		t.Error("expected error for oversized should group")
	}
	if _, err := NewMustNot(conds); err == nil {
		t.Error("expected error for oversized must_not group")
	}
	if _, err := NewMust(nil); err == nil {
		t.Error("expected error for empty must group")
	}
}
