package model

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/rushteam/seedrank/core"
	"github.com/rushteam/seedrank/feature"
	"github.com/rushteam/seedrank/table"
)

// ArtifactVersion 当前模型产物格式版本
const ArtifactVersion = 1

// CVSummary 交叉验证摘要。Scores 只包含可计算 AUC 的折，单一类别的折计入 Skipped。
type CVSummary struct {
	Folds   int       `json:"folds"`
	Scores  []float64 `json:"scores"`
	Mean    float64   `json:"mean"`
	Std     float64   `json:"std"`
	Skipped int       `json:"skipped,omitempty"`
}

// Artifact 是持久化的模型产物：分类器本身加上训练时的 schema 与评估信息。
// 打分前用 CheckSchema 校验特征列，避免拿旧模型给新 schema 打分。
//
// Artifact 实现 RankModel，可直接交给 rank.ModelNode。
type Artifact struct {
	Version        int        `json:"version"`
	Kind           string     `json:"kind"`
	FeatureColumns []string   `json:"feature_columns"`
	SchemaHash     string     `json:"schema_hash"`
	TrainedAt      time.Time  `json:"trained_at"`
	Samples        int        `json:"samples"`
	Positives      int        `json:"positives"`
	CV             *CVSummary `json:"cv,omitempty"`

	Forest *RandomForest `json:"forest,omitempty"`
	LR     *Logistic     `json:"lr,omitempty"`
}

// NewArtifact 包装一个已训练的分类器
func NewArtifact(meta *feature.Metadata, clf Classifier) (*Artifact, error) {
	a := &Artifact{
		Version:        ArtifactVersion,
		FeatureColumns: append([]string(nil), meta.FeatureColumns...),
		SchemaHash:     meta.SchemaHash(),
	}
	switch c := clf.(type) {
	case *RandomForest:
		a.Kind, a.Forest = KindForest, c
	case *Logistic:
		a.Kind, a.LR = KindLR, c
	default:
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeNotSupported,
			fmt.Sprintf("cannot persist classifier %T", clf))
	}
	return a, nil
}

// Classifier 返回产物中的分类器
func (a *Artifact) Classifier() Classifier {
	switch a.Kind {
	case KindForest:
		if a.Forest != nil {
			return a.Forest
		}
	case KindLR:
		if a.LR != nil {
			return a.LR
		}
	}
	return nil
}

// Metadata 返回训练时的特征 schema
func (a *Artifact) Metadata() *feature.Metadata {
	return &feature.Metadata{
		FeatureColumns: append([]string(nil), a.FeatureColumns...),
		LabelColumn:    core.ColLabel,
	}
}

func (a *Artifact) Name() string { return a.Kind }

// Predict 按训练时的列顺序构建向量，缺失的特征按 0 处理
func (a *Artifact) Predict(features map[string]float64) (float64, error) {
	clf := a.Classifier()
	if clf == nil {
		return 0, core.NewDomainError(core.ModuleModel, core.ErrorCodeInternalError, "artifact has no classifier")
	}
	return clf.PredictProba(a.Metadata().FromMap(features)), nil
}

// CheckSchema 校验打分 schema 与训练 schema 是否一致
func (a *Artifact) CheckSchema(meta *feature.Metadata) error {
	if a.SchemaHash == meta.SchemaHash() && slices.Equal(a.FeatureColumns, meta.FeatureColumns) {
		return nil
	}
	return core.NewDomainError(core.ModuleModel, core.ErrorCodeSchemaMismatch,
		fmt.Sprintf("model trained on %v (%s), scoring with %v (%s)",
			a.FeatureColumns, a.SchemaHash, meta.FeatureColumns, meta.SchemaHash()))
}

// Save 原子写出产物，覆盖已有文件
func (a *Artifact) Save(path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return core.WrapDomainError(core.ModuleModel, core.ErrorCodeInternalError, "encode model artifact", err)
	}
	return table.WriteFileAtomic(path, append(data, '\n'))
}

// Load 读取并校验模型产物
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleModel, core.ErrorCodeIO, "read model artifact "+path, err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, core.WrapDomainError(core.ModuleModel, core.ErrorCodeInvalidInput, "decode model artifact "+path, err)
	}
	if a.Version != ArtifactVersion {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeNotSupported,
			fmt.Sprintf("model artifact version %d, want %d", a.Version, ArtifactVersion))
	}
	if a.Classifier() == nil {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput,
			fmt.Sprintf("model artifact %s has no %q classifier", path, a.Kind))
	}
	return &a, nil
}
