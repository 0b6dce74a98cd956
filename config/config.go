// Package config 加载运行配置（YAML/JSON），并维护打分 Pipeline 的 Node 注册表。
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/seedrank/core"
	"github.com/rushteam/seedrank/dataset"
	"github.com/rushteam/seedrank/model"
	"github.com/rushteam/seedrank/pipeline"
	"github.com/rushteam/seedrank/pkg/logging"
	"github.com/rushteam/seedrank/rank"
)

// Config 是 seedrank 的运行配置。示例：
//
//	log:
//	  level: info
//	  format: text
//	dataset:
//	  workers: 8
//	  label_expr: "crashed == 1 || bb_hits > 0"
//	ranker:
//	  kind: forest
//	  trees: 50
//	  seed: 42
//	  folds: 5
//	  model_path: model.json
//	pipeline:
//	  name: default
//	  nodes:
//	    - type: filter.expr
//	      config: {expr: "features.len <= 65536"}
//	    - type: rerank.topn
//	      config: {n: 500}
//	publish:
//	  redis: redis://localhost:6379/0
//	  key: seedrank:queue
type Config struct {
	pipeline.Config `yaml:",inline"`

	Log     LogConfig     `yaml:"log" json:"log"`
	Dataset DatasetConfig `yaml:"dataset" json:"dataset"`
	Ranker  RankerConfig  `yaml:"ranker" json:"ranker"`
	Publish PublishConfig `yaml:"publish" json:"publish"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"` // text / json
}

type DatasetConfig struct {
	// Workers 特征抽取并发数
	Workers int `yaml:"workers" json:"workers"`
	// LabelExpr 标签规则（CEL），为空时使用默认规则
	LabelExpr string `yaml:"label_expr" json:"label_expr"`
	// StripPlaceholders 候选特征表去掉 label / crashed 占位列
	StripPlaceholders bool `yaml:"strip_placeholders" json:"strip_placeholders"`
}

type RankerConfig struct {
	model.Params `yaml:",inline"`

	Folds     int    `yaml:"folds" json:"folds"`
	ModelPath string `yaml:"model_path" json:"model_path"`
}

type PublishConfig struct {
	// Redis 地址，"memory" 表示进程内存储（仅测试）
	Redis   string `yaml:"redis" json:"redis"`
	Key     string `yaml:"key" json:"key"`
	Top     int    `yaml:"top" json:"top"`
	Replace bool   `yaml:"replace" json:"replace"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Log:     LogConfig{Level: "info", Format: "text"},
		Dataset: DatasetConfig{Workers: 1, LabelExpr: dataset.DefaultLabelExpr},
		Ranker: RankerConfig{
			Params:    model.DefaultParams(),
			Folds:     rank.DefaultFolds,
			ModelPath: "model.json",
		},
		Publish: PublishConfig{Key: "seedrank:queue"},
	}
}

// Load 从文件加载配置（按扩展名选择 JSON 或 YAML），未出现的字段保留默认值
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeIO, "read config "+path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "parse config "+path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置；Pipeline 中的 Node 类型必须已注册
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, fmt.Sprintf(format, args...))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level: %v", err)
	}
	if c.Log.Format != "" && c.Log.Format != "text" && c.Log.Format != "json" {
		return invalid("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Dataset.Workers < 0 {
		return invalid("dataset.workers must be >= 0, got %d", c.Dataset.Workers)
	}
	if _, err := dataset.PolicyFromExpr(c.Dataset.LabelExpr); err != nil {
		return invalid("dataset.label_expr: %v", err)
	}
	switch c.Ranker.Kind {
	case "", model.KindForest, model.KindLR:
	default:
		return invalid("ranker.kind must be forest or lr, got %q", c.Ranker.Kind)
	}
	if c.Ranker.Trees < 1 {
		return invalid("ranker.trees must be >= 1, got %d", c.Ranker.Trees)
	}
	if c.Ranker.Folds < 2 {
		return invalid("ranker.folds must be >= 2, got %d", c.Ranker.Folds)
	}
	if c.Ranker.MaxDepth < 0 || c.Ranker.MinLeaf < 0 {
		return invalid("ranker.max_depth and ranker.min_leaf must be >= 0")
	}
	if c.Ranker.ClassWeight != "" && c.Ranker.ClassWeight != model.ClassWeightBalanced {
		return invalid("ranker.class_weight must be empty or %q, got %q", model.ClassWeightBalanced, c.Ranker.ClassWeight)
	}
	if c.Publish.Top < 0 {
		return invalid("publish.top must be >= 0, got %d", c.Publish.Top)
	}
	return ValidatePipelineConfig(&c.Config)
}
