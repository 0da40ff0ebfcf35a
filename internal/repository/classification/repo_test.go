package classification

import (
	"context"
	"errors"
	"testing"
)

type mockStore struct {
	mgetFn func(ctx context.Context, keys []string) ([][]byte, error)
}

func (m *mockStore) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	return m.mgetFn(ctx, keys)
}

func TestBatchGet(t *testing.T) {
	ms := &mockStore{
		mgetFn: func(_ context.Context, keys []string) ([][]byte, error) {
			if len(keys) != 3 {
				t.Fatalf("keys = %v", keys)
			}
			if keys[0] != "a8004:classification:1:1" {
				t.Errorf("keys[0] = %q", keys[0])
			}
			return [][]byte{
				[]byte(`{"skills":["nlp"],"domains":["research"]}`),
				nil, // unclassified
				[]byte(`not json`),
			}, nil
		},
	}

	got, err := New(ms).BatchGet(context.Background(), []string{"1:1", "1:2", "1:3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("got = %v", got)
	}
	c, ok := got["1:1"]
	if !ok || len(c.Skills) != 1 || c.Skills[0] != "nlp" {
		t.Errorf("classification = %+v", c)
	}
	if _, ok := got["1:2"]; ok {
		t.Error("unclassified agent must be absent from the map")
	}
	if _, ok := got["1:3"]; ok {
		t.Error("undecodable record must be absent from the map")
	}
}

func TestBatchGet_EmptyInput(t *testing.T) {
	repo := New(&mockStore{mgetFn: func(_ context.Context, _ []string) ([][]byte, error) {
		t.Fatal("store must not be called for an empty batch")
		return nil, nil
	}})

	got, err := repo.BatchGet(context.Background(), nil)
	if err != nil || got != nil {
		t.Errorf("got %v, %v", got, err)
	}
}

func TestBatchGet_StoreError(t *testing.T) {
	ms := &mockStore{
		mgetFn: func(_ context.Context, _ []string) ([][]byte, error) {
			return nil, errors.New("conn refused")
		},
	}

	if _, err := New(ms).BatchGet(context.Background(), []string{"1:1"}); err == nil {
		t.Fatal("expected error")
	}
}
