// Package dataset 把候选目录与执行元数据合并为带标签的训练集和待打分的候选特征表。
package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/seedrank/core"
	"github.com/rushteam/seedrank/feature"
	"github.com/rushteam/seedrank/pkg/logging"
	"github.com/rushteam/seedrank/table"
)

// Builder 构建数据集：
//  1. 列出候选目录中的普通文件，按文件名排序（子目录与非普通文件忽略）
//  2. 逐文件抽取特征（可并发，结果按下标回填，顺序与并发度无关）
//  3. bb_hits / path_depth / label 默认 0
//  4. 若提供执行元数据，按 filename 左连接覆盖 crashed / bb_hits / path_depth
//  5. 有执行记录的行按 LabelPolicy 重新计算 label
//  6. 产出带标签的数据集与候选特征表
type Builder struct {
	// Extractor 文件特征抽取器，默认 feature.FileExtractor
	Extractor feature.Extractor

	// Policy 标签规则，默认 DefaultLabelPolicy
	Policy LabelPolicy

	// Workers 特征抽取并发数，<= 1 时串行
	Workers int

	// StripPlaceholders 为 true 时候选特征表去掉 label / crashed 两列。
	// 这两列对未执行的候选只是占位值，不是真实标签。
	StripPlaceholders bool

	logger *slog.Logger
}

// Option Builder 配置选项
type Option func(*Builder)

// WithExtractor 设置特征抽取器
func WithExtractor(e feature.Extractor) Option {
	return func(b *Builder) {
		b.Extractor = e
	}
}

// WithPolicy 设置标签规则
func WithPolicy(p LabelPolicy) Option {
	return func(b *Builder) {
		b.Policy = p
	}
}

// WithWorkers 设置特征抽取并发数
func WithWorkers(n int) Option {
	return func(b *Builder) {
		b.Workers = n
	}
}

// WithStripPlaceholders 设置候选特征表是否去掉占位列
func WithStripPlaceholders(strip bool) Option {
	return func(b *Builder) {
		b.StripPlaceholders = strip
	}
}

// WithLogger 设置 logger
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// NewBuilder 创建 Builder
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		Extractor: feature.NewFileExtractor(),
		Policy:    DefaultLabelPolicy{},
		Workers:   1,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = logging.New("dataset")
	}
	return b
}

// Result 是一次构建的两张输出表
type Result struct {
	// Labeled 带标签的完整数据集
	Labeled *table.Table
	// Candidates 待打分的候选特征表（与 Labeled 同 schema，或去掉占位列）
	Candidates *table.Table
}

// ListCandidates 返回目录中的普通文件路径（按文件名排序）。符号链接按目标判断。
func ListCandidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleDataset, core.ErrorCodeIO, "read candidates dir "+dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		mode := e.Type()
		if mode&os.ModeSymlink != 0 {
			info, err := os.Stat(filepath.Join(dir, e.Name()))
			if err != nil {
				continue
			}
			mode = info.Mode().Type()
		}
		if !mode.IsRegular() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
	}
	return paths, nil
}

// Build 构建数据集。exec 为 nil 表示没有执行元数据。
// 任何候选文件读取失败都会中止整个构建，不返回部分结果。
func (b *Builder) Build(ctx context.Context, dir string, exec *ExecutionTable) (*Result, error) {
	paths, err := ListCandidates(dir)
	if err != nil {
		return nil, err
	}

	vectors, err := b.extractAll(ctx, paths)
	if err != nil {
		return nil, err
	}

	columns := append([]string(nil), core.DatasetColumns...)
	withCrashed := exec.Has(core.ColCrashed)
	if withCrashed {
		columns = append(columns, core.ColCrashed)
	}
	labeled := table.New(columns...)

	matched, positives := 0, 0
	for _, v := range vectors {
		var rec Record
		label := 0
		if r, ok := exec.Lookup(v.Filename); ok {
			matched++
			rec = r
			label, err = b.Policy.Label(rec)
			if err != nil {
				return nil, core.WrapDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
					fmt.Sprintf("label policy %s on %s", b.Policy.Name(), v.Filename), err)
			}
		}
		positives += label

		row := []string{
			v.Filename,
			table.FormatInt(int64(v.Len)),
			table.FormatFloat(v.Entropy),
			table.FormatInt(int64(v.NumDigits)),
			table.FormatInt(int64(v.ByteRuns)),
			table.FormatInt(rec.BBHits),
			table.FormatInt(rec.PathDepth),
			table.FormatInt(int64(label)),
		}
		if withCrashed {
			row = append(row, table.FormatInt(rec.Crashed))
		}
		if err := labeled.Append(row); err != nil {
			return nil, err
		}
	}

	candidates := labeled.Clone()
	if b.StripPlaceholders {
		candidates = candidates.DropColumns(core.ColLabel, core.ColCrashed)
	}

	b.logger.Info("dataset built",
		slog.Int("files", len(vectors)),
		slog.Int("matched", matched),
		slog.Int("exec_records", exec.Len()),
		slog.Int("positives", positives),
		slog.String("policy", b.Policy.Name()),
	)
	return &Result{Labeled: labeled, Candidates: candidates}, nil
}

func (b *Builder) extractAll(ctx context.Context, paths []string) ([]feature.Vector, error) {
	vectors := make([]feature.Vector, len(paths))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(max(b.Workers, 1))

	for i, p := range paths {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			v, err := b.Extractor.ExtractFile(egCtx, p)
			if err != nil {
				return fmt.Errorf("extract %s: %w", filepath.Base(p), err)
			}
			// 以 base name 为 key，与抽取器实现无关
			v.Filename = filepath.Base(p)
			vectors[i] = v
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// WriteOutputs 原子写出两张表。两张表先全部编码并写入临时文件，全部成功后才 rename 就位，
// 任一步失败都不会留下其中一张表；candidatesPath 为空时只写数据集。
func WriteOutputs(res *Result, labeledPath, candidatesPath string) error {
	labeled, err := res.Labeled.Encode()
	if err != nil {
		return fmt.Errorf("encode labeled: %w", err)
	}
	paths, data := []string{labeledPath}, [][]byte{labeled}
	if candidatesPath != "" {
		cands, err := res.Candidates.Encode()
		if err != nil {
			return fmt.Errorf("encode candidates: %w", err)
		}
		paths, data = append(paths, candidatesPath), append(data, cands)
	}
	return table.WriteFilesAtomic(paths, data)
}
