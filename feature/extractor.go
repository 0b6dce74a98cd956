package feature

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rushteam/seedrank/core"
)

// Vector 是单个候选文件的特征向量，以文件 base name 为 key，与目录无关。
//
// 不变量：
//   - NumDigits <= Len
//   - Len > 0 时 1 <= ByteRuns <= Len；Len == 0 时 ByteRuns == 0
//   - 0 <= Entropy <= 8
type Vector struct {
	Filename  string
	Len       int
	Entropy   float64
	NumDigits int
	ByteRuns  int
}

// Map 以列名为 key 返回数值特征（不含 filename）。
func (v Vector) Map() map[string]float64 {
	return map[string]float64{
		core.ColLen:       float64(v.Len),
		core.ColEntropy:   v.Entropy,
		core.ColNumDigits: float64(v.NumDigits),
		core.ColByteRuns:  float64(v.ByteRuns),
	}
}

// Extract 对一段字节计算全部特征。确定性、O(n)、无随机性。
func Extract(name string, data []byte) Vector {
	return Vector{
		Filename:  filepath.Base(name),
		Len:       len(data),
		Entropy:   ShannonEntropy(data),
		NumDigits: NumDigits(data),
		ByteRuns:  ByteRuns(data),
	}
}

// Extractor 是文件级特征抽取器的统一接口，采用策略模式。
//
// 默认实现 FileExtractor 一次性读取整个文件；测试或特殊存储（如压缩包内的语料）
// 可以自定义实现。读取失败必须返回错误，不允许伪造部分特征。
type Extractor interface {
	// ExtractFile 读取 path 并返回特征向量
	ExtractFile(ctx context.Context, path string) (Vector, error)

	// Name 返回抽取器名称（用于日志/监控）
	Name() string
}

// FileExtractor 是默认的本地文件特征抽取器。
type FileExtractor struct{}

// NewFileExtractor 创建默认文件抽取器
func NewFileExtractor() *FileExtractor {
	return &FileExtractor{}
}

func (e *FileExtractor) Name() string { return "file" }

func (e *FileExtractor) ExtractFile(_ context.Context, path string) (Vector, error) {
	return ExtractFile(path)
}

// ExtractFile 读取文件全部内容并计算特征。
func ExtractFile(path string) (Vector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vector{}, core.WrapDomainError(core.ModuleFeature, core.ErrorCodeIO, "read candidate "+path, err)
	}
	return Extract(path, data), nil
}

// CustomExtractor 允许用户以函数形式自定义抽取逻辑。
type CustomExtractor struct {
	name    string
	extract func(ctx context.Context, path string) (Vector, error)
}

// NewCustomExtractor 创建自定义抽取器
func NewCustomExtractor(name string, extract func(ctx context.Context, path string) (Vector, error)) *CustomExtractor {
	return &CustomExtractor{
		name:    name,
		extract: extract,
	}
}

func (e *CustomExtractor) Name() string {
	return e.name
}

func (e *CustomExtractor) ExtractFile(ctx context.Context, path string) (Vector, error) {
	if e.extract == nil {
		return ExtractFile(path)
	}
	return e.extract(ctx, path)
}
