package mode

import "testing"

func TestIsValid(t *testing.T) {
	for _, m := range []Mode{Structured, Semantic, Visual} {
		if !m.IsValid() {
			t.Errorf("%q should be valid", m)
		}
	}
	for _, m := range []Mode{"", "clip", "sbert", "hybrid"} {
		if m.IsValid() {
			t.Errorf("%q should be invalid", m)
		}
	}
}
