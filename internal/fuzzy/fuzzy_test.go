package fuzzy

import (
	"reflect"
	"testing"
)

func TestNormalize_ShouldLowercaseAndCollapsePunctuation(t *testing.T) {
	got := Normalize("  What is FEKRA?!  ")
	want := "what is fekra"
	if got != want {
		t.Errorf("Normalize: got %q, want %q", got, want)
	}
}

func TestNormalize_ShouldStripDiacritics(t *testing.T) {
	got := Normalize("Qué es FEKRA")
	want := "que es fekra"
	if got != want {
		t.Errorf("Normalize: got %q, want %q", got, want)
	}
}

func TestNormalize_ShouldCollapseNonAlnumRuns(t *testing.T) {
	got := Normalize("sat---prep...2023")
	want := "sat prep 2023"
	if got != want {
		t.Errorf("Normalize: got %q, want %q", got, want)
	}
}

func TestTokens_ShouldSplitNormalizedText(t *testing.T) {
	got := Tokens("Who founded FEKRA?")
	want := []string{"who", "founded", "fekra"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens: got %v, want %v", got, want)
	}
}

func TestDistance_ShouldReturnZeroForEqualStrings(t *testing.T) {
	if d := Distance("what is fekra", "what is fekra"); d != 0 {
		t.Errorf("Distance of equal strings: got %d, want 0", d)
	}
}

func TestDistance_ShouldCountEdits(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 3},
		{"wat", "what", 1},
		{"", "abc", 3},
		{"abc", "", 3},
		{"flaw", "lawn", 2},
	}
	for _, c := range cases {
		if got := Distance(c.a, c.b); got != c.want {
			t.Errorf("Distance(%q, %q): got %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestDistance_ShouldBeSymmetric(t *testing.T) {
	if Distance("scholarship", "scholer ship") != Distance("scholer ship", "scholarship") {
		t.Error("Distance should be symmetric")
	}
}
