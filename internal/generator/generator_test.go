package generator

import (
	"sort"
	"testing"

	"github.com/verte-zerg/qwerty/internal/model"
)

func TestShuffleIsPermutation(t *testing.T) {
	words := []model.Word{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}, {Name: "e"}}
	out := NewSeeded(7).Shuffle(words)
	if len(out) != len(words) {
		t.Fatalf("expected %d words, got %d", len(words), len(out))
	}
	if words[0].Name != "a" || words[4].Name != "e" {
		t.Fatalf("input was modified: %v", words)
	}
	names := make([]string, len(out))
	for i, w := range out {
		names[i] = w.Name
	}
	sort.Strings(names)
	for i, w := range words {
		if names[i] != w.Name {
			t.Fatalf("not a permutation: %v", names)
		}
	}
}

func TestShuffleSeeded(t *testing.T) {
	words := []model.Word{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}, {Name: "e"}, {Name: "f"}}
	first := NewSeeded(42).Shuffle(words)
	second := NewSeeded(42).Shuffle(words)
	for i := range first {
		if first[i].Name != second[i].Name {
			t.Fatalf("same seed produced different orders: %v vs %v", first, second)
		}
	}
}

func TestShuffleEmpty(t *testing.T) {
	if out := New().Shuffle(nil); len(out) != 0 {
		t.Fatalf("expected empty result, got %v", out)
	}
}
