package table

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rushteam/seedrank/core"
)

func TestParseCSV(t *testing.T) {
	tbl, err := ParseCSV(strings.NewReader("filename,len\na.bin,3\n\"b,c\",\n"))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if diff := cmp.Diff([]string{"filename", "len"}, tbl.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if got, _ := tbl.Get(1, "filename"); got != "b,c" {
		t.Errorf("quoted cell = %q", got)
	}
	if got, ok := tbl.Get(0, "missing"); ok || got != "" {
		t.Error("Get on missing column should fail")
	}
}

func TestParseCSV_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":     "",
		"ragged":    "a,b\n1\n",
		"duplicate": "a,a\n1,2\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseCSV(strings.NewReader(in)); !core.IsInvalidInput(err) {
				t.Errorf("ParseCSV() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestTable_ColumnOps(t *testing.T) {
	tbl := New("filename", "label", "crashed")
	if err := tbl.Append([]string{"a", "1", "0"}); err != nil {
		t.Fatal(err)
	}
	if err := tbl.Append([]string{"short"}); err == nil {
		t.Error("Append() should reject ragged row")
	}

	tbl.AddColumn("score", "0")
	tbl.AddColumn("score", "9") // 已存在，不变
	if diff := cmp.Diff([]string{"a", "1", "0", "0"}, tbl.Rows[0]); diff != "" {
		t.Errorf("AddColumn mismatch (-want +got):\n%s", diff)
	}

	dropped := tbl.DropColumns("label", "crashed", "nope")
	if diff := cmp.Diff([]string{"filename", "score"}, dropped.Columns); diff != "" {
		t.Errorf("DropColumns columns mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "0"}, dropped.Rows[0]); diff != "" {
		t.Errorf("DropColumns row mismatch (-want +got):\n%s", diff)
	}
	if len(tbl.Columns) != 4 {
		t.Error("DropColumns must not modify the source table")
	}

	if err := tbl.Set(0, "score", "0.5"); err != nil {
		t.Fatal(err)
	}
	if got := tbl.RowMap(0)["score"]; got != "0.5" {
		t.Errorf("RowMap score = %q", got)
	}
	if err := tbl.Set(0, "nope", "x"); err == nil {
		t.Error("Set on missing column should fail")
	}
}

func TestParseHelpers(t *testing.T) {
	if v, ok, err := ParseInt("3.0"); err != nil || !ok || v != 3 {
		t.Errorf("ParseInt(3.0) = %v, %v, %v", v, ok, err)
	}
	if _, ok, err := ParseInt(""); err != nil || ok {
		t.Error("ParseInt empty should be null")
	}
	if _, _, err := ParseInt("2.5"); err == nil {
		t.Error("ParseInt(2.5) should fail")
	}
	if _, ok, err := ParseFloat("NaN"); err != nil || ok {
		t.Error("ParseFloat(NaN) should be null")
	}
	if FormatFloat(0) != "0" || FormatFloat(1.5) != "1.5" {
		t.Error("FormatFloat formatting changed")
	}
}

func TestWriteCSV_RoundTripAndAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.csv")

	tbl := New("filename", "score")
	_ = tbl.Append([]string{"a", "0.25"})
	if err := tbl.WriteCSV(path); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	// 覆盖写
	_ = tbl.Append([]string{"b", "0.5"})
	if err := tbl.WriteCSV(path); err != nil {
		t.Fatal(err)
	}

	got, err := ReadCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(tbl, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestReadCSV_Missing(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "none.csv"))
	if de := core.GetDomainError(err); de == nil || de.Code != core.ErrorCodeIO {
		t.Errorf("ReadCSV() error = %v, want IO", err)
	}
}

func TestWriteFilesAtomic_StageFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "blocker"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	first := filepath.Join(dir, "first.csv")
	second := filepath.Join(dir, "blocker", "second.csv")

	err := WriteFilesAtomic([]string{first, second}, [][]byte{[]byte("a\n"), []byte("b\n")})
	if de := core.GetDomainError(err); de == nil || de.Code != core.ErrorCodeIO {
		t.Fatalf("WriteFilesAtomic() error = %v, want IO", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if diff := cmp.Diff([]string{"blocker"}, names); diff != "" {
		t.Errorf("dir contents mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteFilesAtomic_LengthMismatch(t *testing.T) {
	err := WriteFilesAtomic([]string{filepath.Join(t.TempDir(), "a.csv")}, nil)
	if de := core.GetDomainError(err); de == nil || de.Code != core.ErrorCodeInternalError {
		t.Errorf("WriteFilesAtomic() error = %v, want INTERNAL_ERROR", err)
	}
}
