package store

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rushteam/seedrank/core"
)

func TestMemoryStore_ZRange(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	for _, m := range []struct {
		member string
		score  float64
	}{
		{"c", 0.5}, {"a", 0.9}, {"b", 0.5}, {"d", 0.1},
	} {
		if err := s.ZAdd(ctx, "q", m.score, m.member); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name        string
		start, stop int64
		want        []string
	}{
		{name: "all", start: 0, stop: -1, want: []string{"a", "c", "b", "d"}},
		{name: "head", start: 0, stop: 1, want: []string{"a", "c"}},
		{name: "tail", start: 2, stop: 10, want: []string{"b", "d"}},
		{name: "empty", start: 3, stop: 1, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ZRange(ctx, "q", tt.start, tt.stop)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ZRange mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMemoryStore_UpdateKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.ZAdd(ctx, "q", 1, "x")
	_ = s.ZAdd(ctx, "q", 2, "y")
	_ = s.ZAdd(ctx, "q", 2, "x") // 更新分数，保持首次写入顺序

	got, _ := s.ZRange(ctx, "q", 0, -1)
	if diff := cmp.Diff([]string{"x", "y"}, got); diff != "" {
		t.Errorf("ZRange mismatch (-want +got):\n%s", diff)
	}
	if score, err := s.ZScore(ctx, "q", "x"); err != nil || score != 2 {
		t.Errorf("ZScore(x) = %v, %v", score, err)
	}
}

func TestMemoryStore_NotFoundAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.ZScore(ctx, "none", "a"); !core.IsStoreNotFound(err) {
		t.Errorf("ZScore on missing key error = %v", err)
	}
	_ = s.ZAdd(ctx, "q", 1, "a")
	if _, err := s.ZScore(ctx, "q", "b"); !core.IsStoreNotFound(err) {
		t.Errorf("ZScore on missing member error = %v", err)
	}
	if err := s.Delete(ctx, "q"); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.ZRange(ctx, "q", 0, -1); got != nil {
		t.Errorf("ZRange after Delete = %v", got)
	}
	if err := s.Delete(ctx, "q"); err != nil {
		t.Errorf("Delete on missing key error = %v", err)
	}
}

func TestOpen_Memory(t *testing.T) {
	for _, addr := range []string{"", "memory", "MEMORY"} {
		s, err := Open(context.Background(), addr)
		if err != nil {
			t.Fatalf("Open(%q) error = %v", addr, err)
		}
		if s.Name() != "memory" {
			t.Errorf("Open(%q).Name() = %q", addr, s.Name())
		}
	}
}

func TestNewRedisStoreFromURL_BadURL(t *testing.T) {
	_, err := NewRedisStoreFromURL(context.Background(), "redis://localhost:6379/notanumber")
	if !core.IsInvalidInput(err) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}
