package session

import (
	"slices"

	"github.com/verte-zerg/qwerty/internal/chapter"
	"github.com/verte-zerg/qwerty/internal/model"
)

// Reduce applies an action and returns the next state. Actions that do not
// fit the current state are ignored and the input state is returned as is.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetupChapter:
		return setupChapter(a)
	case SetIsTyping:
		return setIsTyping(s, a.Typing)
	case TickTimer:
		return tickTimer(s)
	case CompleteWord:
		return completeWord(s, a.Log)
	case SkipWord:
		return skipWord(s)
	case SetShowSkip:
		if s.IsFinished || s.IsShowSkip == a.Show {
			return s
		}
		s.IsShowSkip = a.Show
		return s
	case SetIsSavingRecord:
		s.IsSavingRecord = a.Saving
		return s
	case AddWordRecordID:
		s.ChapterData.WordRecordIDs = append(slices.Clone(s.ChapterData.WordRecordIDs), a.ID)
		return s
	default:
		return s
	}
}

func setupChapter(a SetupChapter) State {
	data := chapter.Build(a.Words, chapter.Options{
		Shuffle:      a.Shuffle,
		ReviewMode:   a.ReviewMode,
		InitialIndex: a.InitialIndex,
		Restore:      a.Restore,
		Shuffler:     a.Shuffler,
	})
	next := State{ChapterData: data}
	if chapter.Restorable(a.Restore, a.Words) {
		next.TimerData = a.Restore.TimerData
	}
	return next
}

func setIsTyping(s State, typing bool) State {
	if typing && s.Phase() != PhaseReady {
		return s
	}
	s.IsTyping = typing
	return s
}

func tickTimer(s State) State {
	if !s.IsTyping || s.IsFinished {
		return s
	}
	t := s.TimerData.Time + 1
	wpm, acc := Metrics(s.ChapterData.CorrectCount, s.ChapterData.WrongCount, t)
	s.TimerData = model.TimerData{Time: t, WPM: wpm, Accuracy: acc}
	return s
}

func completeWord(s State, log model.InputLog) State {
	word, ok := s.CurrentWord()
	if !ok || s.IsFinished {
		return s
	}
	data := s.ChapterData
	log.Index = data.Index
	if log.Word == "" {
		log.Word = word.Name
	}
	log.LetterMistakes = cloneMistakes(log.LetterMistakes)

	data.UserInputLogs = append(slices.Clone(data.UserInputLogs), log)
	data.WordCount++
	data.CorrectCount += max(log.CorrectCount, 0)
	data.WrongCount += max(log.WrongCount, 0)
	s.ChapterData = data
	return advance(s)
}

func skipWord(s State) State {
	if !s.IsShowSkip || s.IsFinished {
		return s
	}
	if _, ok := s.CurrentWord(); !ok {
		return s
	}
	return advance(s)
}

// advance moves to the next word. It is the only place that sets
// IsFinished.
func advance(s State) State {
	s.ChapterData.Index++
	s.IsShowSkip = false
	if s.ChapterData.Index == len(s.ChapterData.Words) {
		s.IsFinished = true
		s.IsTyping = false
	}
	return s
}

func cloneMistakes(in map[int][]string) map[int][]string {
	if in == nil {
		return nil
	}
	out := make(map[int][]string, len(in))
	for pos, keys := range in {
		out[pos] = slices.Clone(keys)
	}
	return out
}
