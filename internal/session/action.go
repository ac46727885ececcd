package session

import (
	"github.com/verte-zerg/qwerty/internal/chapter"
	"github.com/verte-zerg/qwerty/internal/model"
)

// Action is a discrete event applied to the session state by Reduce.
// The set of variants is closed: only this package can add new ones.
type Action interface {
	action()
}

// SetupChapter loads a word sequence, optionally restoring a snapshot.
type SetupChapter struct {
	Words        []model.Word
	Shuffle      bool
	ReviewMode   bool
	InitialIndex int
	Restore      *model.SavedProgress
	Shuffler     chapter.Shuffler
}

// SetIsTyping starts or pauses the attempt.
type SetIsTyping struct {
	Typing bool
}

// TickTimer advances the elapsed time by one second.
type TickTimer struct{}

// CompleteWord reports the result of typing the word at the current index.
type CompleteWord struct {
	Log model.InputLog
}

// SkipWord moves past the current word without scoring it.
type SkipWord struct{}

// SetShowSkip toggles whether skipping is offered.
type SetShowSkip struct {
	Show bool
}

// SetIsSavingRecord marks an external record save as in flight.
type SetIsSavingRecord struct {
	Saving bool
}

// AddWordRecordID appends the id of a persisted word record.
type AddWordRecordID struct {
	ID int64
}

func (SetupChapter) action()      {}
func (SetIsTyping) action()       {}
func (TickTimer) action()         {}
func (CompleteWord) action()      {}
func (SkipWord) action()          {}
func (SetShowSkip) action()       {}
func (SetIsSavingRecord) action() {}
func (AddWordRecordID) action()   {}
