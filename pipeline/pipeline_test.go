package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rushteam/seedrank/core"
)

// dropFirst 去掉第一个候选
type dropFirst struct{ name string }

func (n dropFirst) Name() string { return n.name }
func (n dropFirst) Kind() Kind { return KindReRank }
func (n dropFirst) Process(_ context.Context, _ *core.RankContext, cands []*core.Candidate) ([]*core.Candidate, error) {
	if len(cands) == 0 {
		return cands, nil
	}
	return cands[1:], nil
}

type failing struct{}

func (failing) Name() string { return "failing" }
func (failing) Kind() Kind { return KindFilter }
func (failing) Process(context.Context, *core.RankContext, []*core.Candidate) ([]*core.Candidate, error) {
	return nil, errors.New("boom")
}

func candidates(names ...string) []*core.Candidate {
	out := make([]*core.Candidate, len(names))
	for i, n := range names {
		out[i] = core.NewCandidate(n, i)
	}
	return out
}

func filenames(cands []*core.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Filename
	}
	return out
}

func TestPipeline_Run(t *testing.T) {
	p := &Pipeline{Nodes: []Node{dropFirst{"one"}, dropFirst{"two"}}}
	got, err := p.Run(context.Background(), &core.RankContext{}, candidates("a", "b", "c"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"c"}, filenames(got)); diff != "" {
		t.Errorf("Run() mismatch (-want +got):\n%s", diff)
	}

	var nilPipeline *Pipeline
	got, _ = nilPipeline.Run(context.Background(), nil, candidates("a"))
	if len(got) != 1 {
		t.Error("nil pipeline should pass candidates through")
	}
}

func TestPipeline_RunError(t *testing.T) {
	p := &Pipeline{Nodes: []Node{failing{}}}
	if _, err := p.Run(context.Background(), nil, candidates("a")); err == nil {
		t.Error("expected error")
	}
}

func TestPipeline_Prepend(t *testing.T) {
	base := &Pipeline{Nodes: []Node{dropFirst{"base"}}}
	p := base.Prepend(dropFirst{"head"})
	if len(base.Nodes) != 1 || len(p.Nodes) != 2 || p.Nodes[0].Name() != "head" {
		t.Errorf("Prepend() nodes = %v", p.Nodes)
	}
	var nilPipeline *Pipeline
	if got := nilPipeline.Prepend(dropFirst{"x"}); len(got.Nodes) != 1 {
		t.Errorf("Prepend on nil = %v", got.Nodes)
	}
}

func TestConfig_LoadAndBuild(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, "p.yaml")
	if err := os.WriteFile(yml, []byte("pipeline:\n  name: demo\n  nodes:\n    - type: drop\n      config: {}\n    - type: drop\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	js := filepath.Join(dir, "p.json")
	if err := os.WriteFile(js, []byte(`{"pipeline":{"name":"demo","nodes":[{"type":"drop"}]}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	factory := NewNodeFactory()
	factory.Register("drop", func(map[string]interface{}) (Node, error) { return dropFirst{"drop"}, nil })

	for path, want := range map[string]int{yml: 2, js: 1} {
		cfg, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile(%s) error = %v", path, err)
		}
		if cfg.Pipeline.Name != "demo" {
			t.Errorf("name = %q", cfg.Pipeline.Name)
		}
		p, err := cfg.BuildPipeline(factory)
		if err != nil {
			t.Fatal(err)
		}
		if len(p.Nodes) != want {
			t.Errorf("%s: nodes = %d, want %d", path, len(p.Nodes), want)
		}
	}

	if _, err := factory.Build("unknown", nil); err == nil {
		t.Error("expected unknown node type error")
	}
}
