// Package rank 训练、评估、持久化并应用候选排序模型。
package rank

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rushteam/seedrank/core"
	"github.com/rushteam/seedrank/feature"
	"github.com/rushteam/seedrank/model"
	"github.com/rushteam/seedrank/pkg/logging"
	"github.com/rushteam/seedrank/table"
)

// DefaultFolds 默认交叉验证折数
const DefaultFolds = 5

// Trainer 训练流程：
//  1. 校验标签列（缺失即失败，不做任何训练或写盘）
//  2. schema 补全：缺失的特征列补 0，缺失值按 0 处理
//  3. 分层 k 折交叉验证（ROC-AUC），每折全新分类器，只用于报告
//  4. 在全部样本上重新训练
//  5. 写出模型产物（覆盖已有文件）
type Trainer struct {
	Params    model.Params
	Folds     int
	ModelPath string
	Metadata  *feature.Metadata

	now    func() time.Time
	logger *slog.Logger
}

// TrainerOption Trainer 配置选项
type TrainerOption func(*Trainer)

func WithParams(p model.Params) TrainerOption {
	return func(t *Trainer) {
		t.Params = p
	}
}

func WithFolds(k int) TrainerOption {
	return func(t *Trainer) {
		t.Folds = k
	}
}

// WithModelPath 设置模型产物路径，为空时不落盘
func WithModelPath(path string) TrainerOption {
	return func(t *Trainer) {
		t.ModelPath = path
	}
}

func WithMetadata(m *feature.Metadata) TrainerOption {
	return func(t *Trainer) {
		t.Metadata = m
	}
}

func WithClock(now func() time.Time) TrainerOption {
	return func(t *Trainer) {
		t.now = now
	}
}

func WithLogger(l *slog.Logger) TrainerOption {
	return func(t *Trainer) {
		t.logger = l
	}
}

func NewTrainer(opts ...TrainerOption) *Trainer {
	t := &Trainer{
		Params:   model.DefaultParams(),
		Folds:    DefaultFolds,
		Metadata: feature.DefaultMetadata(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = logging.New("rank")
	}
	return t
}

// TrainResult 一次训练的产出
type TrainResult struct {
	Artifact *model.Artifact
	// CV 为 nil 表示样本数少于折数，未做交叉验证
	CV *CVResult
	// Synthesized 被补 0 的缺失特征列
	Synthesized []string
}

func (t *Trainer) Train(ctx context.Context, labeled *table.Table) (*TrainResult, error) {
	meta := t.Metadata
	y, err := meta.Labels(labeled)
	if err != nil {
		return nil, err
	}
	if len(y) == 0 {
		return nil, core.NewDomainError(core.ModuleRank, core.ErrorCodeInvalidInput, "training input has no rows")
	}

	res := &TrainResult{Synthesized: meta.GetMissingFeatures(labeled)}
	if len(res.Synthesized) > 0 {
		t.logger.Info("synthesized missing feature columns", slog.Any("columns", res.Synthesized))
	}
	X, err := meta.BuildMatrix(meta.Complete(labeled))
	if err != nil {
		return nil, err
	}

	if t.logger.Enabled(ctx, slog.LevelDebug) {
		stats := feature.SummarizeColumns(meta.FeatureColumns, X)
		for _, col := range meta.FeatureColumns {
			s := stats[col]
			t.logger.Debug("feature summary", slog.String("feature", col),
				slog.Float64("mean", s.Mean), slog.Float64("std", s.Std),
				slog.Float64("min", s.Min), slog.Float64("p95", s.P95), slog.Float64("max", s.Max))
		}
	}

	positives := 0
	for _, v := range y {
		positives += v
	}

	newClf := func() (model.Classifier, error) {
		return model.NewClassifier(t.Params, meta.FeatureColumns)
	}

	if len(y) >= t.Folds {
		cv, err := CrossValidate(ctx, newClf, X, y, t.Folds, t.Params.Seed)
		if err != nil {
			return nil, fmt.Errorf("cross validate: %w", err)
		}
		for _, f := range cv.Skipped {
			t.logger.Warn("fold skipped: validation split has a single class", slog.Int("fold", f+1))
		}
		res.CV = cv
		if len(cv.Scores) == 0 {
			t.logger.Warn("cross validation produced no score", slog.Int("folds", cv.Folds))
		} else {
			t.logger.Info("cross validation",
				slog.Int("folds", cv.Folds),
				slog.Any("auc", cv.Scores),
				slog.Float64("mean", cv.Mean),
				slog.Float64("std", cv.Std),
			)
		}
	} else {
		t.logger.Warn("cross validation skipped: fewer rows than folds",
			slog.Int("rows", len(y)), slog.Int("folds", t.Folds))
	}

	clf, err := newClf()
	if err != nil {
		return nil, err
	}
	if err := clf.Fit(X, y); err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}

	art, err := model.NewArtifact(meta, clf)
	if err != nil {
		return nil, err
	}
	art.TrainedAt = t.now().UTC()
	art.Samples = len(y)
	art.Positives = positives
	art.CV = res.CV.Summary()
	res.Artifact = art

	if t.ModelPath != "" {
		if err := art.Save(t.ModelPath); err != nil {
			return nil, err
		}
		t.logger.Info("model saved",
			slog.String("path", t.ModelPath),
			slog.String("kind", art.Kind),
			slog.Int("samples", art.Samples),
			slog.Int("positives", art.Positives),
		)
	}
	return res, nil
}
