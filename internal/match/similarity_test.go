package match

import "testing"

func TestRatioBoundsAndSymmetry(t *testing.T) {
	pairs := [][2]string{
		{"batman", "batman"},
		{"arrival", "arrivel"},
		{"heat", "dune"},
		{"", "heat"},
		{"the shawshank redemption", "shawshank redemption"},
	}
	for _, pair := range pairs {
		ab := Ratio(pair[0], pair[1])
		ba := Ratio(pair[1], pair[0])
		if ab != ba {
			t.Errorf("Ratio(%q, %q) = %d but reversed = %d", pair[0], pair[1], ab, ba)
		}
		if ab < 0 || ab > 100 {
			t.Errorf("Ratio(%q, %q) = %d out of [0,100]", pair[0], pair[1], ab)
		}
	}
}

func TestRatioValues(t *testing.T) {
	if got := Ratio("batman", "batman"); got != 100 {
		t.Errorf("identical strings scored %d", got)
	}
	if got := Ratio("", ""); got != 100 {
		t.Errorf("two empty strings scored %d", got)
	}
	if got := Ratio("batman", ""); got != 0 {
		t.Errorf("empty vs non-empty scored %d", got)
	}
	// One substitution in seven runes: 100*(1-1/7) rounds to 86.
	if got := Ratio("arrival", "arrivel"); got != 86 {
		t.Errorf("one-edit score = %d, want 86", got)
	}
	if got := Ratio("heat", "dune"); got >= 50 {
		t.Errorf("unrelated titles scored %d", got)
	}
}
