// Package session implements the typing session state machine.
package session

import (
	"math"

	"github.com/verte-zerg/qwerty/internal/model"
)

// Phase is the coarse lifecycle position of an attempt.
type Phase int

const (
	PhaseIdle     Phase = iota // no words loaded
	PhaseReady                 // words loaded, timer paused
	PhaseActive                // timer running
	PhaseFinished              // every word completed or skipped
)

func (p Phase) String() string {
	switch p {
	case PhaseReady:
		return "ready"
	case PhaseActive:
		return "active"
	case PhaseFinished:
		return "finished"
	default:
		return "idle"
	}
}

// State is the full session state. Values returned by Reduce never share
// mutable storage with their predecessor.
type State struct {
	ChapterData    model.ChapterData
	TimerData      model.TimerData
	IsTyping       bool
	IsFinished     bool
	IsSavingRecord bool
	IsShowSkip     bool
}

// Phase derives the lifecycle phase from the state flags.
func (s State) Phase() Phase {
	switch {
	case s.IsFinished:
		return PhaseFinished
	case len(s.ChapterData.Words) == 0:
		return PhaseIdle
	case s.IsTyping:
		return PhaseActive
	default:
		return PhaseReady
	}
}

// Progressed reports whether the attempt is unfinished and has at least one
// completed word, i.e. whether it is worth persisting.
func (s State) Progressed() bool {
	return !s.IsFinished && len(s.ChapterData.Words) > 0 && s.ChapterData.WordCount > 0
}

// CurrentWord returns the word at the current index.
func (s State) CurrentWord() (model.Word, bool) {
	data := s.ChapterData
	if data.Index < 0 || data.Index >= len(data.Words) {
		return model.Word{}, false
	}
	return data.Words[data.Index], true
}

// Skipped returns how many words were passed over without being typed.
func (s State) Skipped() int {
	return s.ChapterData.Index - s.ChapterData.WordCount
}

// Metrics derives words per minute and accuracy from the counters and the
// elapsed seconds. Both are rounded to whole numbers.
func Metrics(correct, wrong, seconds int) (wpm, accuracy int) {
	wpm = int(math.Round(float64(correct) / float64(max(seconds, 1)) * 60))
	accuracy = int(math.Round(float64(correct) / float64(max(correct+wrong, 1)) * 100))
	return wpm, accuracy
}
