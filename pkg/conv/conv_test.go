package conv

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestConfigGet_FromYAML(t *testing.T) {
	var m map[string]any
	if err := yaml.Unmarshal([]byte("n: 20\nthreshold: 1\nratio: 0.25\nname: x\nids: [a, 3]\n"), &m); err != nil {
		t.Fatal(err)
	}

	if got := ConfigGetInt64(m, "n", 0); got != 20 {
		t.Errorf("ConfigGetInt64(n) = %d", got)
	}
	if got := ConfigGetFloat64(m, "threshold", 0); got != 1 {
		t.Errorf("ConfigGetFloat64(threshold) = %v", got)
	}
	if got := ConfigGetFloat64(m, "ratio", 0); got != 0.25 {
		t.Errorf("ConfigGetFloat64(ratio) = %v", got)
	}
	if got := ConfigGet(m, "name", ""); got != "x" {
		t.Errorf("ConfigGet(name) = %q", got)
	}
	if got := ConfigGet(m, "n", "default"); got != "default" {
		t.Errorf("type mismatch should fall back, got %q", got)
	}
	if got := ConfigGetInt64(m, "missing", 7); got != 7 {
		t.Errorf("missing key = %d", got)
	}
	if diff := cmp.Diff([]string{"a", "3"}, SliceAnyToString(m["ids"])); diff != "" {
		t.Errorf("SliceAnyToString mismatch (-want +got):\n%s", diff)
	}
	if got := ConfigGetInt64(nil, "n", 1); got != 1 {
		t.Errorf("nil map = %d", got)
	}
}
