// Package wordsource resolves a dictionary chapter into its words.
package wordsource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/verte-zerg/qwerty/internal/chapter"
	"github.com/verte-zerg/qwerty/internal/model"
	"github.com/verte-zerg/qwerty/internal/wordlist"
)

// CustomScheme prefixes the id of an imported dictionary.
const CustomScheme = "custom://"

var (
	// ErrDictNotFound is returned for an unknown dictionary id.
	ErrDictNotFound = errors.New("dictionary not found")
	// ErrChapterOutOfRange is returned for a chapter past the dictionary end.
	ErrChapterOutOfRange = errors.New("chapter out of range")
	// ErrNoReviewWords is returned when a review has nothing to replay.
	ErrNoReviewWords = errors.New("no missed words to review")
)

// KV is the string medium holding imported dictionaries and the frozen
// review list.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MistakeSource reports per-word mistakes recorded for a dictionary.
type MistakeSource interface {
	ListWordAggregates(ctx context.Context, dictID string) ([]model.WordAggregate, error)
}

// Dictionary describes an available dictionary.
type Dictionary struct {
	ID            string
	Name          string
	Category      string
	ChapterLength int
	Words         []model.Word
	Custom        bool
}

// Chapters returns the number of chapters in the dictionary.
func (d Dictionary) Chapters() int {
	return chapter.Count(len(d.Words), d.ChapterLength)
}

// Source loads built-in dictionaries from a directory and imported ones
// from the KV medium.
type Source struct {
	dir           string
	kv            KV
	mistakes      MistakeSource
	chapterLength int
}

// New returns a Source. chapterLength applies to dictionaries that do not
// define their own.
func New(dir string, kv KV, mistakes MistakeSource, chapterLength int) *Source {
	if chapterLength <= 0 {
		chapterLength = chapter.DefaultLength
	}
	return &Source{dir: dir, kv: kv, mistakes: mistakes, chapterLength: chapterLength}
}

// IsCustom reports whether ref addresses an imported dictionary.
func IsCustom(ref string) bool {
	return strings.HasPrefix(ref, CustomScheme)
}

// Fetch returns the ordered words of the chapter identified by id. Review
// identities yield the previously missed words of the dictionary instead.
func (s *Source) Fetch(ctx context.Context, id model.Identity) ([]model.Word, error) {
	dict, err := s.Dictionary(ctx, id.DictID)
	if err != nil {
		return nil, err
	}
	words := dict.Words
	if id.ReviewMode {
		words, err = s.reviewWords(ctx, dict)
		if err != nil {
			return nil, err
		}
	}
	out, ok := chapter.Slice(words, id.Chapter, dict.ChapterLength)
	if !ok {
		return nil, fmt.Errorf("%w: %s chapter %d", ErrChapterOutOfRange, id.DictID, id.Chapter)
	}
	return out, nil
}

// Dictionary loads the dictionary addressed by ref.
func (s *Source) Dictionary(ctx context.Context, ref string) (Dictionary, error) {
	if IsCustom(ref) {
		return s.customDictionary(ctx, strings.TrimPrefix(ref, CustomScheme))
	}
	return s.builtinDictionary(ref)
}

// List returns all built-in and imported dictionaries sorted by id.
func (s *Source) List(ctx context.Context) ([]Dictionary, error) {
	var dicts []Dictionary
	entries, err := os.ReadDir(s.dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read dictionary directory: %w", err)
	}
	seen := map[string]struct{}{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".json" && ext != ".txt" {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ext)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		dict, err := s.builtinDictionary(id)
		if err != nil {
			return nil, err
		}
		dicts = append(dicts, dict)
	}

	custom, err := s.loadCustom(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range custom {
		dicts = append(dicts, c.dictionary())
	}
	sort.Slice(dicts, func(i, j int) bool { return dicts[i].ID < dicts[j].ID })
	return dicts, nil
}

func (s *Source) builtinDictionary(id string) (Dictionary, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return Dictionary{}, fmt.Errorf("%w: %q", ErrDictNotFound, id)
	}
	dict := Dictionary{ID: id, Name: id, ChapterLength: s.chapterLength}

	jsonPath := filepath.Join(s.dir, id+".json")
	raw, err := os.ReadFile(jsonPath)
	switch {
	case err == nil:
		file, err := decodeDictFile(raw)
		if err != nil {
			return Dictionary{}, fmt.Errorf("failed to parse %s: %w", jsonPath, err)
		}
		if file.Name != "" {
			dict.Name = file.Name
		}
		dict.Category = file.Category
		if file.ChapterLength > 0 {
			dict.ChapterLength = file.ChapterLength
		}
		dict.Words = file.Words
		return dict, nil
	case !os.IsNotExist(err):
		return Dictionary{}, fmt.Errorf("failed to read %s: %w", jsonPath, err)
	}

	txtPath := filepath.Join(s.dir, id+".txt")
	words, err := wordlist.LoadWords(txtPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Dictionary{}, fmt.Errorf("%w: %q", ErrDictNotFound, id)
		}
		return Dictionary{}, fmt.Errorf("failed to load %s: %w", txtPath, err)
	}
	dict.Words = words
	return dict, nil
}

// reviewWords returns the frozen review list of dict when there is one.
// Otherwise it ranks the missed words and freezes the result, so records
// written while the review is typed cannot reorder it.
func (s *Source) reviewWords(ctx context.Context, dict Dictionary) ([]model.Word, error) {
	frozen, err := s.frozenReview(ctx, dict)
	if err != nil {
		return nil, err
	}
	if len(frozen) > 0 {
		return frozen, nil
	}
	if s.mistakes == nil {
		return nil, ErrNoReviewWords
	}
	aggs, err := s.mistakes.ListWordAggregates(ctx, dict.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mistakes: %w", err)
	}
	words := SelectReviewWords(dict.Words, aggs)
	if len(words) == 0 {
		return nil, ErrNoReviewWords
	}
	if err := s.freezeReview(ctx, dict.ID, words); err != nil {
		return nil, err
	}
	return words, nil
}

// SelectReviewWords returns the dictionary words that were mistyped at
// least once, highest error rate first.
func SelectReviewWords(words []model.Word, aggs []model.WordAggregate) []model.Word {
	missed := make(map[string]model.WordAggregate, len(aggs))
	for _, agg := range aggs {
		if agg.Wrong > 0 {
			missed[agg.Word] = agg
		}
	}
	type candidate struct {
		word model.Word
		rate float64
		pos  int
	}
	candidates := make([]candidate, 0, len(missed))
	for i, w := range words {
		agg, ok := missed[w.Name]
		if !ok {
			continue
		}
		delete(missed, w.Name)
		candidates = append(candidates, candidate{
			word: w,
			rate: float64(agg.Wrong) / float64(max(agg.Attempts, 1)),
			pos:  i,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].rate == candidates[j].rate {
			return candidates[i].pos < candidates[j].pos
		}
		return candidates[i].rate > candidates[j].rate
	})
	out := make([]model.Word, len(candidates))
	for i, c := range candidates {
		out[i] = c.word
	}
	return out
}

type dictFile struct {
	Name          string       `json:"name"`
	Category      string       `json:"category"`
	ChapterLength int          `json:"chapterLength"`
	Words         []model.Word `json:"words"`
}

// decodeDictFile accepts either a bare word array or an object with a
// "words" array.
func decodeDictFile(raw []byte) (dictFile, error) {
	trimmed := strings.TrimSpace(string(raw))
	var file dictFile
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(raw, &file.Words); err != nil {
			return dictFile{}, err
		}
	} else {
		if err := json.Unmarshal(raw, &file); err != nil {
			return dictFile{}, err
		}
	}
	file.Words = validWords(file.Words)
	if len(file.Words) == 0 {
		return dictFile{}, fmt.Errorf("no valid words")
	}
	return file, nil
}

func validWords(words []model.Word) []model.Word {
	out := make([]model.Word, 0, len(words))
	for _, w := range words {
		if w.Name == "" || len(w.Trans) == 0 || !wordlist.Typeable(w.Name) {
			continue
		}
		out = append(out, w)
	}
	return out
}
