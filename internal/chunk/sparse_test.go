package chunk

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenize_WhenGivenRepeatedWords_ShouldCountTermFrequencies(t *testing.T) {
	sv := Tokenize("cache the cache")
	if len(sv.Indices) != 2 {
		t.Fatalf("expected 2 distinct tokens, got %d", len(sv.Indices))
	}

	cacheIdx := hashToken("cache")
	found := false
	for i, idx := range sv.Indices {
		if idx == cacheIdx {
			found = true
			if sv.Values[i] != 2 {
				t.Errorf("expected frequency 2 for 'cache', got %v", sv.Values[i])
			}
		}
	}
	if !found {
		t.Error("expected 'cache' among the indices")
	}
}

func TestTokenize_ShouldLowercaseBeforeHashing(t *testing.T) {
	a := Tokenize("Cache CACHE cache")
	if len(a.Indices) != 1 {
		t.Fatalf("expected case variants to collapse, got %d indices", len(a.Indices))
	}
	if a.Values[0] != 3 {
		t.Errorf("expected frequency 3, got %v", a.Values[0])
	}
}

func TestTokenize_ShouldDropSingleCharacterRuns(t *testing.T) {
	sv := Tokenize("a b c go")
	if len(sv.Indices) != 1 {
		t.Fatalf("expected only 'go' to survive, got %d indices", len(sv.Indices))
	}
	if sv.Indices[0] != hashToken("go") {
		t.Error("expected the surviving token to be 'go'")
	}
}

func TestTokenize_ShouldTreatNonAlphanumericRunsAsSeparators(t *testing.T) {
	sv := Tokenize("foo-bar_baz.qux42")
	want := map[uint32]bool{
		hashToken("foo"):   true,
		hashToken("bar"):   true,
		hashToken("baz"):   true,
		hashToken("qux42"): true,
	}
	if len(sv.Indices) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(sv.Indices))
	}
	for _, idx := range sv.Indices {
		if !want[idx] {
			t.Errorf("unexpected index %d", idx)
		}
	}
}

func TestTokenize_ShouldEmitIndicesSortedAscending(t *testing.T) {
	sv := Tokenize("the quick brown fox jumps over the lazy dog")
	if !sort.SliceIsSorted(sv.Indices, func(i, j int) bool { return sv.Indices[i] < sv.Indices[j] }) {
		t.Error("expected indices sorted ascending")
	}
}

func TestTokenize_ShouldBeDeterministic(t *testing.T) {
	first := Tokenize("reproducible sparse vectors please")
	second := Tokenize("reproducible sparse vectors please")
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("tokenizations differ (-first +second):\n%s", diff)
	}
}

func TestTokenize_WhenGivenEmptyText_ShouldReturnEmptyVector(t *testing.T) {
	sv := Tokenize("")
	if len(sv.Indices) != 0 || len(sv.Values) != 0 {
		t.Errorf("expected empty vector, got %+v", sv)
	}
}

func TestHashToken_ShouldStayWithin31Bits(t *testing.T) {
	for _, tok := range []string{"go", "steward", "0123456789", "zzzzzzzz"} {
		if h := hashToken(tok); h > 1<<31-1 {
			t.Errorf("hash of %q exceeds 31 bits: %d", tok, h)
		}
	}
}
