package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rushteam/seedrank/core"
)

// ReadCSV 从文件读取表格。文件不可读属于致命的输入访问错误。
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleTable, core.ErrorCodeIO, "open table "+path, err)
	}
	defer f.Close()

	t, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return t, nil
}

// ParseCSV 解析 CSV。行字段数不一致、表头缺失或列名重复都视为无效输入。
func ParseCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 0 // 以表头为准，行长度不一致时报错

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, core.NewDomainError(core.ModuleTable, core.ErrorCodeInvalidInput, "table: missing header")
	}
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleTable, core.ErrorCodeInvalidInput, "table: read header", err)
	}

	seen := make(map[string]bool, len(header))
	for _, c := range header {
		if seen[c] {
			return nil, core.NewDomainError(core.ModuleTable, core.ErrorCodeInvalidInput, fmt.Sprintf("table: duplicate column %q", c))
		}
		seen[c] = true
	}

	t := New(header...)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, core.WrapDomainError(core.ModuleTable, core.ErrorCodeInvalidInput, "table: read row", err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// Encode 把表格编码为 CSV 字节（\n 换行）。
func (t *Table) Encode() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns); err != nil {
		return nil, err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCSV 原子写出表格：先写同目录临时文件，再 rename 覆盖目标。
func (t *Table) WriteCSV(path string) error {
	data, err := t.Encode()
	if err != nil {
		return core.WrapDomainError(core.ModuleTable, core.ErrorCodeInternalError, "table: encode", err)
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic 写临时文件后 rename，任何一步失败都会清理临时文件。
func WriteFileAtomic(path string, data []byte) error {
	return WriteFilesAtomic([]string{path}, [][]byte{data})
}

// WriteFilesAtomic 原子写出多个文件：先全部写入各自目录下的临时文件，全部成功后再依次 rename。
// 暂存阶段失败时不产生任何目标文件；rename 阶段失败时删除本次已经就位的文件。
func WriteFilesAtomic(paths []string, data [][]byte) error {
	if len(paths) != len(data) {
		return core.NewDomainError(core.ModuleTable, core.ErrorCodeInternalError,
			fmt.Sprintf("write files: %d paths, %d payloads", len(paths), len(data)))
	}

	staged := make([]string, 0, len(paths))
	removeStaged := func(from int) {
		for _, tmp := range staged[from:] {
			_ = os.Remove(tmp)
		}
	}
	for i, path := range paths {
		tmp, err := stageFile(path, data[i])
		if err != nil {
			removeStaged(0)
			return err
		}
		staged = append(staged, tmp)
	}

	for i, tmp := range staged {
		if err := os.Rename(tmp, paths[i]); err != nil {
			removeStaged(i)
			for _, done := range paths[:i] {
				_ = os.Remove(done)
			}
			return core.WrapDomainError(core.ModuleTable, core.ErrorCodeIO, "rename into "+paths[i], err)
		}
	}
	return nil
}

// stageFile 在目标目录写入临时文件并返回其路径，失败时不留下临时文件。
func stageFile(path string, data []byte) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", core.WrapDomainError(core.ModuleTable, core.ErrorCodeIO, "create dir "+dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", core.WrapDomainError(core.ModuleTable, core.ErrorCodeIO, "create temp for "+path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return "", core.WrapDomainError(core.ModuleTable, core.ErrorCodeIO, "write "+path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", core.WrapDomainError(core.ModuleTable, core.ErrorCodeIO, "close "+path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return "", core.WrapDomainError(core.ModuleTable, core.ErrorCodeIO, "chmod "+path, err)
	}
	return tmpName, nil
}
