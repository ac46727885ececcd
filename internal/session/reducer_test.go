package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/qwerty/internal/model"
)

func testWords(n int) []model.Word {
	words := make([]model.Word, n)
	for i := range words {
		words[i] = model.Word{Name: fmt.Sprintf("word%d", i), Trans: []string{fmt.Sprintf("trans%d", i)}}
	}
	return words
}

type reverser struct{}

func (reverser) Shuffle(words []model.Word) []model.Word {
	out := make([]model.Word, len(words))
	for i, w := range words {
		out[len(words)-1-i] = w
	}
	return out
}

func reduceAll(s State, actions ...Action) State {
	for _, a := range actions {
		s = Reduce(s, a)
	}
	return s
}

func correctWord() CompleteWord {
	return CompleteWord{Log: model.InputLog{CorrectCount: 1}}
}

func checkConsistent(t *testing.T, s State) {
	t.Helper()
	data := s.ChapterData
	require.GreaterOrEqual(t, data.WordCount, 0)
	require.LessOrEqual(t, data.WordCount, data.Index)
	require.LessOrEqual(t, data.Index, len(data.Words))
	require.Equal(t, len(data.Words) > 0 && data.Index == len(data.Words), s.IsFinished)
}

func TestSetupChapterFreshKeepsOrder(t *testing.T) {
	words := testWords(5)
	s := Reduce(State{}, SetupChapter{Words: words})

	assert.Equal(t, 0, s.ChapterData.Index)
	assert.Equal(t, 0, s.ChapterData.WordCount)
	assert.Equal(t, words, s.ChapterData.Words)
	assert.Equal(t, PhaseReady, s.Phase())
	assert.Equal(t, model.TimerData{}, s.TimerData)
}

func TestSetupChapterEmptyIsIdle(t *testing.T) {
	s := Reduce(State{}, SetupChapter{})
	assert.Equal(t, PhaseIdle, s.Phase())
	assert.False(t, Reduce(s, SetIsTyping{Typing: true}).IsTyping)
}

func TestSetupChapterShuffle(t *testing.T) {
	words := testWords(3)
	s := Reduce(State{}, SetupChapter{Words: words, Shuffle: true, Shuffler: reverser{}})
	assert.Equal(t, "word2", s.ChapterData.Words[0].Name)

	review := Reduce(State{}, SetupChapter{Words: words, Shuffle: true, ReviewMode: true, Shuffler: reverser{}})
	assert.Equal(t, words, review.ChapterData.Words, "review attempts never shuffle")
}

func TestSetupChapterRestoresSnapshot(t *testing.T) {
	words := testWords(5)
	snap := &model.SavedProgress{
		DictID:        "cet4",
		WordIndex:     3,
		WordCount:     3,
		CorrectCount:  3,
		WrongCount:    2,
		UserInputLogs: []model.InputLog{{Index: 0}, {Index: 1}, {Index: 2}},
		WordRecordIDs: []int64{7, 8, 9},
		TimerData:     model.TimerData{Time: 12, WPM: 15, Accuracy: 60},
	}
	s := Reduce(State{}, SetupChapter{Words: words, Shuffle: true, Shuffler: reverser{}, Restore: snap})

	assert.Equal(t, words, s.ChapterData.Words, "restored attempts keep their order")
	assert.Equal(t, 3, s.ChapterData.Index)
	assert.Len(t, s.ChapterData.UserInputLogs, 3)
	assert.Equal(t, []int64{7, 8, 9}, s.ChapterData.WordRecordIDs)
	assert.Equal(t, snap.TimerData, s.TimerData)
	checkConsistent(t, s)
}

func TestSetupChapterClampsStaleSnapshot(t *testing.T) {
	words := testWords(5)
	for _, idx := range []int{5, 9} {
		snap := &model.SavedProgress{WordIndex: idx, WordCount: 4, CorrectCount: 4, TimerData: model.TimerData{Time: 30}}
		s := Reduce(State{}, SetupChapter{Words: words, Restore: snap})
		assert.Equal(t, 0, s.ChapterData.Index)
		assert.Equal(t, 0, s.ChapterData.WordCount)
		assert.Equal(t, 0, s.ChapterData.CorrectCount)
		assert.Empty(t, s.ChapterData.UserInputLogs)
		assert.Equal(t, model.TimerData{}, s.TimerData)
		checkConsistent(t, s)
	}
}

func TestSetupChapterClampsInitialIndex(t *testing.T) {
	s := Reduce(State{}, SetupChapter{Words: testWords(3), InitialIndex: 3})
	assert.Equal(t, 0, s.ChapterData.Index)

	s = Reduce(State{}, SetupChapter{Words: testWords(3), ReviewMode: true, InitialIndex: 2})
	assert.Equal(t, 2, s.ChapterData.Index)
}

func TestTickTimerWhilePausedIsNoop(t *testing.T) {
	s := reduceAll(State{}, SetupChapter{Words: testWords(2)}, correctWord())
	before := s.TimerData
	for i := 0; i < 3; i++ {
		s = Reduce(s, TickTimer{})
	}
	assert.Equal(t, before, s.TimerData)
}

func TestTickTimerMetrics(t *testing.T) {
	s := reduceAll(State{}, SetupChapter{Words: testWords(5)}, SetIsTyping{Typing: true})
	s.ChapterData.CorrectCount = 50
	s.ChapterData.WrongCount = 10
	for i := 0; i < 65; i++ {
		s = Reduce(s, TickTimer{})
	}
	assert.Equal(t, model.TimerData{Time: 65, WPM: 46, Accuracy: 83}, s.TimerData)
}

func TestMetricsZeroInputs(t *testing.T) {
	wpm, acc := Metrics(0, 0, 0)
	assert.Equal(t, 0, wpm)
	assert.Equal(t, 0, acc)
}

func TestPauseKeepsTime(t *testing.T) {
	s := reduceAll(State{}, SetupChapter{Words: testWords(2)}, SetIsTyping{Typing: true}, TickTimer{}, TickTimer{})
	s = Reduce(s, SetIsTyping{Typing: false})
	assert.Equal(t, PhaseReady, s.Phase())
	assert.Equal(t, 2, s.TimerData.Time)

	s = reduceAll(s, SetIsTyping{Typing: true}, TickTimer{})
	assert.Equal(t, PhaseActive, s.Phase())
	assert.Equal(t, 3, s.TimerData.Time)
}

func TestCompleteWordsToFinish(t *testing.T) {
	s := reduceAll(State{}, SetupChapter{Words: testWords(5)}, SetIsTyping{Typing: true})
	for i := 0; i < 4; i++ {
		s = Reduce(s, CompleteWord{Log: model.InputLog{CorrectCount: 1, WrongCount: i}})
		checkConsistent(t, s)
		require.False(t, s.IsFinished)
	}
	s = Reduce(s, correctWord())

	assert.True(t, s.IsFinished)
	assert.False(t, s.IsTyping)
	assert.Equal(t, PhaseFinished, s.Phase())
	assert.Equal(t, 5, s.ChapterData.WordCount)
	assert.Equal(t, 5, s.ChapterData.CorrectCount)
	assert.Equal(t, 6, s.ChapterData.WrongCount)
	require.Len(t, s.ChapterData.UserInputLogs, 5)
	assert.Equal(t, 4, s.ChapterData.UserInputLogs[4].Index)
	assert.Equal(t, "word4", s.ChapterData.UserInputLogs[4].Word)

	after := reduceAll(s, correctWord(), SetShowSkip{Show: true}, SkipWord{}, SetIsTyping{Typing: true}, TickTimer{})
	assert.Equal(t, s, after, "finished attempts ignore further input")
}

func TestSkipWord(t *testing.T) {
	s := reduceAll(State{}, SetupChapter{Words: testWords(2)}, SetIsTyping{Typing: true})

	s = Reduce(s, SkipWord{})
	assert.Equal(t, 0, s.ChapterData.Index, "skip requires the skip offer")

	s = reduceAll(s, SetShowSkip{Show: true}, SkipWord{})
	assert.Equal(t, 1, s.ChapterData.Index)
	assert.Equal(t, 0, s.ChapterData.WordCount)
	assert.Empty(t, s.ChapterData.UserInputLogs)
	assert.False(t, s.IsShowSkip)
	checkConsistent(t, s)

	s = reduceAll(s, SetShowSkip{Show: true}, SkipWord{})
	assert.True(t, s.IsFinished)
	assert.Equal(t, 2, s.Skipped())
	checkConsistent(t, s)
}

func TestReduceDoesNotAlias(t *testing.T) {
	s0 := reduceAll(State{}, SetupChapter{Words: testWords(3)}, SetIsTyping{Typing: true}, correctWord(), AddWordRecordID{ID: 1})
	s1 := reduceAll(s0,
		CompleteWord{Log: model.InputLog{CorrectCount: 1, LetterMistakes: map[int][]string{0: {"x"}}}},
		AddWordRecordID{ID: 2},
	)

	assert.Len(t, s0.ChapterData.UserInputLogs, 1)
	assert.Equal(t, []int64{1}, s0.ChapterData.WordRecordIDs)
	assert.Len(t, s1.ChapterData.UserInputLogs, 2)
	assert.Equal(t, []int64{1, 2}, s1.ChapterData.WordRecordIDs)

	s1.ChapterData.UserInputLogs[0].Word = "changed"
	assert.NotEqual(t, "changed", s0.ChapterData.UserInputLogs[0].Word)
}

func TestSavingRecordFlag(t *testing.T) {
	s := Reduce(State{}, SetIsSavingRecord{Saving: true})
	assert.True(t, s.IsSavingRecord)
	s = Reduce(s, SetupChapter{Words: testWords(1)})
	assert.False(t, s.IsSavingRecord)
}

func TestProgressed(t *testing.T) {
	s := Reduce(State{}, SetupChapter{Words: testWords(2)})
	assert.False(t, s.Progressed())
	s = Reduce(s, correctWord())
	assert.True(t, s.Progressed())
	s = Reduce(s, correctWord())
	assert.False(t, s.Progressed())
}
