package respcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/agentauri/api.8004.dev-sub001/internal/db"
)

type mockStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	return m.getFn(ctx, key)
}

func (m *mockStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.setFn(ctx, key, value, ttl)
}

type payload struct {
	Total int `json:"total"`
}

func TestGet_Hit(t *testing.T) {
	ms := &mockStore{
		getFn: func(_ context.Context, key string) ([]byte, error) {
			if key != "k" {
				t.Errorf("key = %q", key)
			}
			return []byte(`{"total":42}`), nil
		},
	}
	c := New(ms, time.Minute, nil, zap.NewNop())

	var got payload
	if !c.Get(context.Background(), "k", &got) {
		t.Fatal("expected hit")
	}
	if got.Total != 42 {
		t.Errorf("Total = %d", got.Total)
	}
}

func TestGet_FailsOpen(t *testing.T) {
	tests := []struct {
		name string
		fn   func(ctx context.Context, key string) ([]byte, error)
	}{
		{"miss", func(_ context.Context, _ string) ([]byte, error) {
			return nil, db.ErrKeyNotFound
		}},
		{"store error", func(_ context.Context, _ string) ([]byte, error) {
			return nil, errors.New("conn refused")
		}},
		{"corrupt entry", func(_ context.Context, _ string) ([]byte, error) {
			return []byte(`not json`), nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&mockStore{getFn: tt.fn}, time.Minute, nil, zap.NewNop())
			var got payload
			if c.Get(context.Background(), "k", &got) {
				t.Error("expected miss")
			}
		})
	}
}

func TestSet_SwallowsStoreError(t *testing.T) {
	var stored []byte
	ms := &mockStore{
		setFn: func(_ context.Context, _ string, value []byte, ttl time.Duration) error {
			stored = value
			if ttl != 30*time.Second {
				t.Errorf("ttl = %v", ttl)
			}
			return errors.New("conn refused")
		},
	}
	c := New(ms, 30*time.Second, nil, zap.NewNop())

	c.Set(context.Background(), "k", payload{Total: 7})
	if string(stored) != `{"total":7}` {
		t.Errorf("stored = %s", stored)
	}
}

func TestKey_Deterministic(t *testing.T) {
	a := Key("trading bot", "chains=1;mcp=t", 20, "auto")
	b := Key("trading bot", "chains=1;mcp=t", 20, "auto")
	if a != b {
		t.Error("same request shape must map to the same key")
	}

	variants := []string{
		Key("trading bots", "chains=1;mcp=t", 20, "auto"),
		Key("trading bot", "chains=8453;mcp=t", 20, "auto"),
		Key("trading bot", "chains=1;mcp=t", 21, "auto"),
		Key("trading bot", "chains=1;mcp=t", 20, "semantic"),
	}
	for i, v := range variants {
		if v == a {
			t.Errorf("variant %d collided with base key", i)
		}
	}
}
