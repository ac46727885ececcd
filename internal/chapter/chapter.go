// Package chapter builds the per-attempt chapter data.
package chapter

import (
	"slices"

	"github.com/verte-zerg/qwerty/internal/model"
)

// DefaultLength is the number of words per chapter when a dictionary does
// not specify one.
const DefaultLength = 20

// Shuffler permutes a word sequence.
type Shuffler interface {
	Shuffle(words []model.Word) []model.Word
}

// Options controls how a chapter attempt is initialized.
type Options struct {
	Shuffle      bool
	ReviewMode   bool
	InitialIndex int
	Restore      *model.SavedProgress
	Shuffler     Shuffler
}

// Build turns a word sequence into fresh or restored chapter data.
//
// A restore snapshot is never shuffled: it keeps the order recorded in the
// snapshot (or the given order for snapshots without one) and its counters.
// A snapshot that does not fit words, or an out-of-range initial index,
// yields a fresh attempt at index 0.
func Build(words []model.Word, opts Options) model.ChapterData {
	ordered := slices.Clone(words)

	if opts.Restore != nil {
		if arranged, ok := arrange(ordered, opts.Restore); ok {
			return restored(arranged, opts.Restore)
		}
		return fresh(ordered, 0)
	}

	if opts.Shuffle && !opts.ReviewMode && opts.Shuffler != nil {
		ordered = opts.Shuffler.Shuffle(ordered)
	}
	index := opts.InitialIndex
	if !validIndex(index, len(ordered)) {
		index = 0
	}
	return fresh(ordered, index)
}

func fresh(words []model.Word, index int) model.ChapterData {
	return model.ChapterData{
		Words:         words,
		Index:         index,
		UserInputLogs: []model.InputLog{},
		WordRecordIDs: []int64{},
	}
}

func restored(words []model.Word, p *model.SavedProgress) model.ChapterData {
	logs := slices.Clone(p.UserInputLogs)
	if logs == nil {
		logs = []model.InputLog{}
	}
	ids := slices.Clone(p.WordRecordIDs)
	if ids == nil {
		ids = []int64{}
	}
	return model.ChapterData{
		Words:         words,
		Index:         p.WordIndex,
		WordCount:     p.WordCount,
		CorrectCount:  p.CorrectCount,
		WrongCount:    p.WrongCount,
		UserInputLogs: logs,
		WordRecordIDs: ids,
	}
}

// Restorable reports whether a snapshot can resume a chapter of words.
func Restorable(p *model.SavedProgress, words []model.Word) bool {
	_, ok := arrange(words, p)
	return ok
}

// arrange returns words in the order recorded by p. It fails when the
// resume index is out of range or the recorded names are not exactly the
// names of words.
func arrange(words []model.Word, p *model.SavedProgress) ([]model.Word, bool) {
	if p == nil || !validIndex(p.WordIndex, len(words)) {
		return nil, false
	}
	if len(p.WordOrder) == 0 {
		return words, true
	}
	if len(p.WordOrder) != len(words) {
		return nil, false
	}
	byName := make(map[string][]model.Word, len(words))
	for _, w := range words {
		byName[w.Name] = append(byName[w.Name], w)
	}
	out := make([]model.Word, 0, len(words))
	for _, name := range p.WordOrder {
		queue := byName[name]
		if len(queue) == 0 {
			return nil, false
		}
		out = append(out, queue[0])
		byName[name] = queue[1:]
	}
	return out, true
}

// Names returns the names of words in order.
func Names(words []model.Word) []string {
	names := make([]string, len(words))
	for i, w := range words {
		names[i] = w.Name
	}
	return names
}

func validIndex(index, length int) bool {
	return index >= 0 && index < length
}

// Count returns how many chapters a dictionary of total words has.
func Count(total, length int) int {
	if length <= 0 {
		length = DefaultLength
	}
	if total <= 0 {
		return 0
	}
	return (total + length - 1) / length
}

// Slice returns the words of the given zero-based chapter. ok is false when
// the chapter lies outside the dictionary.
func Slice(words []model.Word, chapter, length int) ([]model.Word, bool) {
	if length <= 0 {
		length = DefaultLength
	}
	if chapter < 0 || chapter >= Count(len(words), length) {
		return nil, false
	}
	start := chapter * length
	end := start + length
	if end > len(words) {
		end = len(words)
	}
	return slices.Clone(words[start:end]), true
}
