package rank

import (
	"context"
	"math"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rushteam/seedrank/core"
	"github.com/rushteam/seedrank/model"
)

// firstFeature 以第一个特征作为分数，不需要训练
type firstFeature struct{}

func (firstFeature) Fit([][]float64, []int) error { return nil }
func (firstFeature) PredictProba(x []float64) float64 { return x[0] }

func TestStratifiedKFold(t *testing.T) {
	y := make([]int, 15)
	for i := 10; i < 15; i++ {
		y[i] = 1
	}
	folds, err := StratifiedKFold(y, 5, true, 42)
	if err != nil {
		t.Fatalf("StratifiedKFold() error = %v", err)
	}
	if len(folds) != 5 {
		t.Fatalf("folds = %d, want 5", len(folds))
	}

	var all []int
	for i, f := range folds {
		pos := 0
		for _, j := range f.Test {
			pos += y[j]
		}
		if len(f.Test) != 3 || pos != 1 {
			t.Errorf("fold %d: test size %d with %d positives, want 3 with 1", i, len(f.Test), pos)
		}
		if len(f.Train)+len(f.Test) != len(y) {
			t.Errorf("fold %d: train+test = %d", i, len(f.Train)+len(f.Test))
		}
		all = append(all, f.Test...)
	}
	sort.Ints(all)
	want := make([]int, len(y))
	for i := range want {
		want[i] = i
	}
	if diff := cmp.Diff(want, all); diff != "" {
		t.Errorf("test folds do not partition the rows (-want +got):\n%s", diff)
	}

	again, _ := StratifiedKFold(y, 5, true, 42)
	if diff := cmp.Diff(folds, again); diff != "" {
		t.Errorf("same seed produced different folds (-first +second):\n%s", diff)
	}
}

func TestStratifiedKFold_Errors(t *testing.T) {
	if _, err := StratifiedKFold([]int{0, 1, 0}, 1, true, 42); !core.IsInvalidInput(err) {
		t.Errorf("k=1 error = %v", err)
	}
	if _, err := StratifiedKFold([]int{0, 1, 0}, 5, true, 42); !core.IsInvalidInput(err) {
		t.Errorf("n<k error = %v", err)
	}
}

func TestROCAUC(t *testing.T) {
	tests := []struct {
		name   string
		y      []int
		scores []float64
		want   float64
	}{
		{name: "classic", y: []int{0, 0, 1, 1}, scores: []float64{0.1, 0.4, 0.35, 0.8}, want: 0.75},
		{name: "perfect", y: []int{0, 1, 0, 1}, scores: []float64{0.1, 0.9, 0.2, 0.8}, want: 1},
		{name: "inverted", y: []int{1, 0}, scores: []float64{0.1, 0.9}, want: 0},
		{name: "all tied", y: []int{0, 1, 0, 1}, scores: []float64{0.5, 0.5, 0.5, 0.5}, want: 0.5},
		{name: "partial tie", y: []int{0, 1, 1}, scores: []float64{0.2, 0.2, 0.9}, want: 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ROCAUC(tt.y, tt.scores); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("ROCAUC() = %v, want %v", got, tt.want)
			}
		})
	}
	if got := ROCAUC([]int{0, 0}, []float64{0.1, 0.2}); !math.IsNaN(got) {
		t.Errorf("single class ROCAUC() = %v, want NaN", got)
	}
}

func TestCrossValidate_FreshClassifierPerFold(t *testing.T) {
	var X [][]float64
	var y []int
	for i := 0; i < 20; i++ {
		X = append(X, []float64{float64(i)})
		y = append(y, i/10)
	}

	calls := 0
	newClf := func() (model.Classifier, error) {
		calls++
		return firstFeature{}, nil
	}
	res, err := CrossValidate(context.Background(), newClf, X, y, 5, 42)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 5 {
		t.Errorf("classifier constructed %d times, want 5", calls)
	}
	if diff := cmp.Diff([]float64{1, 1, 1, 1, 1}, res.Scores); diff != "" {
		t.Errorf("Scores mismatch (-want +got):\n%s", diff)
	}
	if res.Mean != 1 || res.Std != 0 || len(res.Skipped) != 0 {
		t.Errorf("Mean=%v Std=%v Skipped=%v", res.Mean, res.Std, res.Skipped)
	}
	if s := res.Summary(); s == nil || s.Folds != 5 || s.Mean != 1 {
		t.Errorf("Summary() = %+v", s)
	}
}

func TestCrossValidate_SkipsSingleClassFold(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}, {3}}
	y := []int{0, 0, 0, 1}
	newClf := func() (model.Classifier, error) { return firstFeature{}, nil }

	res, err := CrossValidate(context.Background(), newClf, X, y, 2, 42)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{0}, res.Skipped); diff != "" {
		t.Errorf("Skipped mismatch (-want +got):\n%s", diff)
	}
	if len(res.Scores) != 1 || res.Scores[0] != 1 {
		t.Errorf("Scores = %v, want [1]", res.Scores)
	}
}

func TestCVResult_SummaryEmpty(t *testing.T) {
	var nilResult *CVResult
	if nilResult.Summary() != nil {
		t.Error("nil result should have nil summary")
	}
	res := &CVResult{Folds: 2, Skipped: []int{0, 1}, Mean: math.NaN(), Std: math.NaN()}
	if res.Summary() != nil {
		t.Error("result without scores should have nil summary")
	}
}

func TestMeanStd_Population(t *testing.T) {
	mean, std := meanStd([]float64{0.5, 1})
	if mean != 0.75 || std != 0.25 {
		t.Errorf("meanStd() = %v, %v; want 0.75, 0.25", mean, std)
	}
}
