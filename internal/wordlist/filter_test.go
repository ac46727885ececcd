package wordlist

import (
	"strings"
	"testing"
)

func TestTypeable(t *testing.T) {
	for _, word := range []string{"hello", "co-op", "don't", "ice cream"} {
		if !Typeable(word) {
			t.Fatalf("expected %q to be typeable", word)
		}
	}
	for _, word := range []string{"", "résumé", "naïve", "don’t", "tab\tbed"} {
		if Typeable(word) {
			t.Fatalf("expected %q to be rejected", word)
		}
	}
}

func TestParseWordsSeparators(t *testing.T) {
	input := strings.Join([]string{
		"cancel\tv. 取消\t[ˈkænsl]\t[ˈkænsəl]",
		"explosive, adj. 爆炸的",
		"numerous",
		"",
		"résumé\tn. 简历",
	}, "\n")
	words, err := ParseWords(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseWords failed: %v", err)
	}
	if len(words) != 3 {
		t.Fatalf("expected 3 words, got %d", len(words))
	}
	if words[0].Name != "cancel" || words[0].Trans[0] != "v. 取消" || words[0].UKPhone != "[ˈkænsəl]" {
		t.Fatalf("unexpected first word: %+v", words[0])
	}
	if words[1].Name != "explosive" || words[1].Trans[0] != "adj. 爆炸的" {
		t.Fatalf("unexpected second word: %+v", words[1])
	}
	if words[2].Trans[0] != noTranslation {
		t.Fatalf("expected placeholder translation, got %v", words[2].Trans)
	}
}

func TestParseWordsEmpty(t *testing.T) {
	if _, err := ParseWords(strings.NewReader("\n\n")); err == nil {
		t.Fatalf("expected error for empty list")
	}
}
