package core

// 表格列名。数据集、候选特征表、排序输出表共享同一套列名。
const (
	ColFilename  = "filename"
	ColLen       = "len"
	ColEntropy   = "entropy"
	ColNumDigits = "num_digits"
	ColByteRuns  = "byte_runs"
	ColBBHits    = "bb_hits"
	ColPathDepth = "path_depth"
	ColLabel     = "label"
	ColCrashed   = "crashed"
	ColExitCode  = "exit_code"
	ColRuntimeMS = "runtime_ms"
	ColScore     = "score"
)

// FeatureColumns 是分类器的特征 schema（按顺序）。训练与打分必须使用同一份。
var FeatureColumns = []string{
	ColLen,
	ColEntropy,
	ColNumDigits,
	ColByteRuns,
	ColBBHits,
	ColPathDepth,
}

// DatasetColumns 是数据集表的基础列顺序；crashed 仅在执行元数据提供时追加在末尾。
var DatasetColumns = []string{
	ColFilename,
	ColLen,
	ColEntropy,
	ColNumDigits,
	ColByteRuns,
	ColBBHits,
	ColPathDepth,
	ColLabel,
}
