package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/rushteam/seedrank/core"
	"github.com/rushteam/seedrank/model"
	"github.com/rushteam/seedrank/table"
)

// execute 在进程内运行一次 seedrank，返回 stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// fixture 12 个候选文件，其中 3 个在执行表中触发了崩溃或新覆盖
func fixture(t *testing.T) (candDir, execPath string) {
	t.Helper()
	dir := t.TempDir()
	candDir = filepath.Join(dir, "cands")
	if err := os.Mkdir(candDir, 0o755); err != nil {
		t.Fatal(err)
	}

	var exec strings.Builder
	exec.WriteString("filename,crashed,bb_hits,path_depth\n")
	for i := 0; i < 12; i++ {
		name := fmt.Sprintf("id_%02d", i)
		var content string
		crashed, hits := 0, 0
		if i%4 == 1 {
			content = strings.Repeat("9A7%", 20+i)
			crashed, hits = 1, 4
		} else {
			content = strings.Repeat("a", 5+i)
		}
		writeFile(t, filepath.Join(candDir, name), content)
		fmt.Fprintf(&exec, "%s,%d,%d,%d\n", name, crashed, hits, i%3)
	}
	execPath = filepath.Join(dir, "exec.csv")
	writeFile(t, execPath, exec.String())
	return candDir, execPath
}

func readTable(t *testing.T, path string) *table.Table {
	t.Helper()
	tbl, err := table.ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV(%s) error = %v", path, err)
	}
	return tbl
}

func TestFeaturizeTrainScorePublish(t *testing.T) {
	candDir, execPath := fixture(t)
	dir := t.TempDir()
	labeled := filepath.Join(dir, "labeled.csv")
	cands := filepath.Join(dir, "cands.csv")
	modelPath := filepath.Join(dir, "model.json")
	ranked := filepath.Join(dir, "ranked.csv")

	out, err := execute(t, "featurize", "--candidates", candDir, "--exec", execPath,
		"--out", labeled, "--cands-out", cands, "--strip-placeholders", "--workers", "4")
	if err != nil {
		t.Fatalf("featurize: %v", err)
	}
	if !strings.Contains(out, "Wrote "+labeled+" (12 rows)") {
		t.Errorf("featurize output = %q", out)
	}
	if tbl := readTable(t, cands); tbl.Has(core.ColLabel) || tbl.Has(core.ColCrashed) {
		t.Errorf("placeholders not stripped: %v", tbl.Columns)
	}

	out, err = execute(t, "train", "--input", labeled, "--model-out", modelPath, "--folds", "3", "--trees", "10")
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if !strings.Contains(out, "CV ROC-AUC: ") || !strings.Contains(out, "Saved model to "+modelPath) {
		t.Errorf("train output = %q", out)
	}
	art, err := model.Load(modelPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(art.Forest.Trees) != 10 || art.Positives != 3 || art.CV == nil || art.CV.Folds != 3 {
		t.Errorf("artifact: %d trees, %d positives, cv %+v", len(art.Forest.Trees), art.Positives, art.CV)
	}

	if _, err := execute(t, "score", "--model", modelPath, "--candidates", cands, "--out", ranked); err != nil {
		t.Fatalf("score: %v", err)
	}
	tbl := readTable(t, ranked)
	if tbl.Len() != 12 || tbl.Columns[len(tbl.Columns)-1] != core.ColScore {
		t.Fatalf("ranked: %d rows, columns %v", tbl.Len(), tbl.Columns)
	}
	prev := 2.0
	for i := 0; i < tbl.Len(); i++ {
		cell, _ := tbl.Get(i, core.ColScore)
		s, err := strconv.ParseFloat(cell, 64)
		if err != nil || s > prev {
			t.Fatalf("row %d score %q not descending", i, cell)
		}
		prev = s
	}

	out, err = execute(t, "publish", "--ranked", ranked, "--redis", "memory", "--key", "q", "--top", "5")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !strings.Contains(out, "Published 5 candidates to q via memory") {
		t.Errorf("publish output = %q", out)
	}
}

func TestRank_ConfigPipeline(t *testing.T) {
	candDir, execPath := fixture(t)
	dir := t.TempDir()
	labeled := filepath.Join(dir, "labeled.csv")
	cands := filepath.Join(dir, "cands.csv")
	modelPath := filepath.Join(dir, "model.json")
	ranked := filepath.Join(dir, "ranked.csv")
	cfgPath := filepath.Join(dir, "seedrank.yaml")
	writeFile(t, cfgPath, `
ranker:
  trees: 5
  folds: 2
  model_path: `+modelPath+`
pipeline:
  nodes:
    - type: rerank.topn
      config: {n: 4}
`)

	if _, err := execute(t, "featurize", "--candidates", candDir, "--exec", execPath,
		"--out", labeled, "--cands-out", cands); err != nil {
		t.Fatalf("featurize: %v", err)
	}
	if _, err := execute(t, "--config", cfgPath, "rank", "--input", labeled, "--candidates", cands,
		"--out", ranked, "--skip-queued", "--redis", "memory"); err != nil {
		t.Fatalf("rank: %v", err)
	}

	if n := readTable(t, ranked).Len(); n != 4 {
		t.Errorf("ranked rows = %d, want 4", n)
	}
	art, err := model.Load(modelPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(art.Forest.Trees) != 5 || art.CV == nil || art.CV.Folds != 2 {
		t.Errorf("config not applied: %d trees, cv %+v", len(art.Forest.Trees), art.CV)
	}

	// 命令行参数优先于配置文件
	if _, err := execute(t, "--config", cfgPath, "train", "--input", labeled, "--trees", "3"); err != nil {
		t.Fatalf("train: %v", err)
	}
	if art, err = model.Load(modelPath); err != nil || len(art.Forest.Trees) != 3 {
		t.Errorf("--trees override not applied: %v", err)
	}
}

func TestTrain_MissingLabel(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	modelPath := filepath.Join(dir, "model.json")
	writeFile(t, input, "filename,len\na,1\nb,2\n")

	_, err := execute(t, "train", "--input", input, "--model-out", modelPath)
	if err == nil || !strings.Contains(err.Error(), "Input must contain a label column") {
		t.Fatalf("train error = %v", err)
	}
	if _, statErr := os.Stat(modelPath); !os.IsNotExist(statErr) {
		t.Error("model written despite missing label")
	}
}

func TestCommandErrors(t *testing.T) {
	dir := t.TempDir()
	labeled := filepath.Join(dir, "labeled.csv")
	writeFile(t, labeled, "filename,len,label\na,1,0\nb,2,1\n")
	badCfg := filepath.Join(dir, "bad.yaml")
	writeFile(t, badCfg, "ranker:\n  folds: 1\n")

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing required flag", args: []string{"featurize", "--candidates", dir}},
		{name: "missing candidates dir", args: []string{"featurize", "--candidates", filepath.Join(dir, "nope"), "--out", filepath.Join(dir, "o.csv")}},
		{name: "bad label expr", args: []string{"featurize", "--candidates", dir, "--out", filepath.Join(dir, "o.csv"), "--label-expr", "crashed =="}},
		{name: "bad log level", args: []string{"--log-level", "loud", "train", "--input", labeled}},
		{name: "unknown kind", args: []string{"train", "--input", labeled, "--kind", "svm"}},
		{name: "invalid config", args: []string{"--config", badCfg, "train", "--input", labeled}},
		{name: "missing model", args: []string{"score", "--model", filepath.Join(dir, "none.json"), "--candidates", labeled, "--out", filepath.Join(dir, "r.csv")}},
		{name: "publish without score", args: []string{"publish", "--ranked", labeled, "--redis", "memory"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Errorf("seedrank %v: expected error", tt.args)
			}
		})
	}
}
