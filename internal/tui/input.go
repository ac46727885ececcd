package tui

import (
	"slices"
	"unicode"

	"github.com/verte-zerg/qwerty/internal/model"
)

// skipAfter is the number of failed attempts after which skipping a word
// is offered.
const skipAfter = 4

type pressResult int

const (
	pressIgnored pressResult = iota
	pressProgress
	pressMistake
	pressComplete
)

// wordInput tracks keystrokes against the current word. A wrong letter
// restarts the word.
type wordInput struct {
	target     []rune
	typed      []rune
	wrong      int
	mistakes   map[int][]string
	flash      bool
	ignoreCase bool
}

func newWordInput(word string, ignoreCase bool) wordInput {
	return wordInput{
		target:     []rune(word),
		mistakes:   map[int][]string{},
		ignoreCase: ignoreCase,
	}
}

func (w *wordInput) press(r rune) pressResult {
	pos := len(w.typed)
	if pos >= len(w.target) {
		return pressIgnored
	}
	w.flash = false
	if !w.matches(w.target[pos], r) {
		w.mistakes[pos] = append(w.mistakes[pos], string(r))
		w.wrong++
		w.typed = w.typed[:0]
		w.flash = true
		return pressMistake
	}
	w.typed = append(w.typed, r)
	if len(w.typed) == len(w.target) {
		return pressComplete
	}
	return pressProgress
}

func (w *wordInput) backspace() {
	if len(w.typed) == 0 {
		return
	}
	w.typed = w.typed[:len(w.typed)-1]
}

func (w *wordInput) matches(expected, got rune) bool {
	if w.ignoreCase {
		return unicode.ToLower(expected) == unicode.ToLower(got)
	}
	return expected == got
}

func (w *wordInput) offerSkip() bool {
	return w.wrong >= skipAfter
}

func (w *wordInput) log() model.InputLog {
	mistakes := make(map[int][]string, len(w.mistakes))
	for pos, keys := range w.mistakes {
		mistakes[pos] = slices.Clone(keys)
	}
	return model.InputLog{
		Word:           string(w.target),
		CorrectCount:   1,
		WrongCount:     w.wrong,
		LetterMistakes: mistakes,
	}
}
