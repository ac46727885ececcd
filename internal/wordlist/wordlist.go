// Package wordlist loads plain-text dictionaries.
package wordlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/verte-zerg/qwerty/internal/model"
)

// noTranslation stands in for a missing translation column.
const noTranslation = "-"

// LoadWords reads one word per line from the provided file path.
func LoadWords(path string) ([]model.Word, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()
	return ParseWords(file)
}

// ParseWords reads lines of the form "name<sep>translation<sep>us<sep>uk".
// The separator is a tab when present, else a comma, else whitespace. Words
// that cannot be typed are dropped.
func ParseWords(r io.Reader) ([]model.Word, error) {
	var words []model.Word
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		word := parseLine(line)
		if !Typeable(word.Name) {
			continue
		}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}

func parseLine(line string) model.Word {
	var parts []string
	switch {
	case strings.Contains(line, "\t"):
		parts = strings.Split(line, "\t")
	case strings.Contains(line, ","):
		parts = strings.Split(line, ",")
	default:
		parts = strings.Fields(line)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	word := model.Word{Name: parts[0], Trans: []string{noTranslation}}
	if len(parts) > 1 && parts[1] != "" {
		word.Trans = []string{parts[1]}
	}
	if len(parts) > 2 {
		word.USPhone = parts[2]
	}
	if len(parts) > 3 {
		word.UKPhone = parts[3]
	}
	return word
}
