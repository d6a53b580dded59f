package env

import (
	"sort"
	"strings"
	"testing"
)

// FuzzMergeOverrides checks that merged output is well formed, sorted, and
// that a plain override always replaces the base value.
func FuzzMergeOverrides(f *testing.F) {
	f.Add("PATH=/usr/bin\nHOME=/root", "HOME=/srv\nPORT=8000")
	f.Add("A=1", "B=${A}-x\nA=2")
	f.Add("", "=novalue\nK=")
	f.Add("X=${Y}", "Y=${X}")

	f.Fuzz(func(t *testing.T, base, overrides string) {
		e := New()
		e.env = parsePairs(lines(base, 16))
		over := lines(overrides, 16)
		e.SetPairs(over)

		out := e.Merge()
		if !sort.StringsAreSorted(out) {
			t.Fatalf("output not sorted: %q", out)
		}
		got := make(map[string]string, len(out))
		for _, kv := range out {
			i := strings.IndexByte(kv, '=')
			if i <= 0 {
				t.Fatalf("malformed entry %q", kv)
			}
			got[kv[:i]] = kv[i+1:]
		}
		for k, v := range parsePairs(over) {
			if strings.Contains(v, "${") {
				continue
			}
			if got[k] != v {
				t.Fatalf("override %s=%q lost, got %q", k, v, got[k])
			}
		}
	})
}

func lines(s string, max int) []string {
	var out []string
	for _, ln := range strings.Split(s, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			out = append(out, ln)
		}
		if len(out) == max {
			break
		}
	}
	return out
}
