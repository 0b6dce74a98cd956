// Package builders 注册内置 Node 的构建逻辑。入口处 import _ 即可被配置驱动。
package builders

import (
	"fmt"

	"github.com/rushteam/seedrank/config"
	"github.com/rushteam/seedrank/feature"
	"github.com/rushteam/seedrank/filter"
	"github.com/rushteam/seedrank/model"
	"github.com/rushteam/seedrank/pipeline"
	"github.com/rushteam/seedrank/pkg/conv"
	"github.com/rushteam/seedrank/pkg/logging"
	"github.com/rushteam/seedrank/rank"
	"github.com/rushteam/seedrank/rerank"
)

func init() {
	config.Register("rank.model", BuildModelNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.min_score", BuildMinScoreNode)
	config.Register("rerank.diversity", BuildDiversityNode)
	config.Register("filter", BuildFilterNode)
	config.Register("filter.expr", BuildExprFilterNode)
}

// BuildModelNode 用另一个模型产物重新打分排序，例如 forest 之后再按 lr 排一次。
//
//	config: {path: other.json}
func BuildModelNode(cfg map[string]interface{}) (pipeline.Node, error) {
	path := conv.ConfigGet(cfg, "path", "")
	if path == "" {
		return nil, fmt.Errorf("path not found")
	}
	art, err := model.Load(path)
	if err != nil {
		return nil, err
	}
	// 打分输入总是按默认特征 schema 补全，模型必须与之一致
	if err := art.CheckSchema(feature.DefaultMetadata()); err != nil {
		return nil, err
	}
	return &rank.ModelNode{Model: art}, nil
}

func BuildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	n := conv.ConfigGetInt64(cfg, "n", 0)
	if n < 0 {
		return nil, fmt.Errorf("n must be >= 0, got %d", n)
	}
	return &rerank.TopNNode{N: int(n)}, nil
}

func BuildMinScoreNode(cfg map[string]interface{}) (pipeline.Node, error) {
	if _, ok := cfg["threshold"]; !ok {
		return nil, fmt.Errorf("threshold not found")
	}
	return &rerank.MinScoreNode{Threshold: conv.ConfigGetFloat64(cfg, "threshold", 0)}, nil
}

func BuildDiversityNode(cfg map[string]interface{}) (pipeline.Node, error) {
	key := conv.ConfigGet(cfg, "key", "")
	if key == "" {
		return nil, fmt.Errorf("key not found")
	}
	return &rerank.Diversity{Key: key, PerKey: int(conv.ConfigGetInt64(cfg, "per_key", 1))}, nil
}

func BuildExprFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	f, err := buildExprFilter(cfg)
	if err != nil {
		return nil, err
	}
	return &filter.FilterNode{Filters: []filter.Filter{f}, Logger: logging.New("filter")}, nil
}

// BuildFilterNode 组合多个过滤器：
//
//	config:
//	  filters:
//	    - {type: expr, expr: "score >= 0.1"}
//	    - {type: exclude, filenames: [a.bin, b.bin]}
func BuildFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}

	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]interface{})
		if !ok {
			continue
		}
		filterType := conv.ConfigGet(filterMap, "type", "")
		switch filterType {
		case "expr":
			f, err := buildExprFilter(filterMap)
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)

		case "exclude":
			names := conv.SliceAnyToString(filterMap["filenames"])
			filters = append(filters, filter.NewExcludeFilter(names, nil, ""))

		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}

	return &filter.FilterNode{Filters: filters, Logger: logging.New("filter")}, nil
}

func buildExprFilter(cfg map[string]interface{}) (*filter.ExprFilter, error) {
	expr := conv.ConfigGet(cfg, "expr", "")
	if expr == "" {
		return nil, fmt.Errorf("expr not found")
	}
	return filter.NewExprFilter(expr)
}
