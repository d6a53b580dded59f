package detector

import (
	"strings"
	"testing"
)

// FuzzMatchNameCaseInsensitive checks that upper and lower case variants of a
// fragment select the same entries from the same snapshot.
func FuzzMatchNameCaseInsensitive(f *testing.F) {
	f.Add("python", "python.exe")
	f.Add("PY", "Python3")
	f.Add("", "chrome")
	f.Add("ß", "STRASSE")

	f.Fuzz(func(t *testing.T, fragment, name string) {
		entries := []ProcessEntry{{PID: 1, Name: name}, {PID: 2, Name: strings.ToUpper(name)}}
		lower := MatchName(entries, strings.ToLower(fragment))
		upper := MatchName(entries, strings.ToUpper(fragment))
		if strings.ToLower(fragment) != strings.ToLower(strings.ToUpper(fragment)) {
			// case mapping is not round-trippable for this input
			return
		}
		if len(lower) != len(upper) {
			t.Fatalf("fragment %q: lower matched %d, upper matched %d", fragment, len(lower), len(upper))
		}
	})
}
