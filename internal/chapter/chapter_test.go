package chapter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/qwerty/internal/generator"
	"github.com/verte-zerg/qwerty/internal/model"
)

func words(n int) []model.Word {
	out := make([]model.Word, n)
	for i := range out {
		out[i] = model.Word{Name: fmt.Sprintf("w%d", i)}
	}
	return out
}

func TestBuildDoesNotShareInput(t *testing.T) {
	in := words(3)
	data := Build(in, Options{})
	data.Words[0].Name = "changed"
	assert.Equal(t, "w0", in[0].Name)
}

func TestBuildShuffleIsPermutation(t *testing.T) {
	in := words(30)
	data := Build(in, Options{Shuffle: true, Shuffler: generator.NewSeeded(42)})
	require.Len(t, data.Words, len(in))
	assert.ElementsMatch(t, in, data.Words)
	assert.NotEqual(t, in, data.Words)
}

func TestBuildRestoreCopiesCounters(t *testing.T) {
	snap := &model.SavedProgress{
		WordIndex:     2,
		WordCount:     1,
		CorrectCount:  1,
		WrongCount:    4,
		UserInputLogs: []model.InputLog{{Index: 0, Word: "w0"}},
	}
	data := Build(words(4), Options{Restore: snap, Shuffle: true, Shuffler: generator.NewSeeded(1)})
	assert.Equal(t, words(4), data.Words)
	assert.Equal(t, 2, data.Index)
	assert.Equal(t, 1, data.WordCount)
	assert.Equal(t, 4, data.WrongCount)
	assert.Equal(t, []int64{}, data.WordRecordIDs)

	data.UserInputLogs[0].Word = "other"
	assert.Equal(t, "w0", snap.UserInputLogs[0].Word)
}

func TestBuildRejectsNegativeIndex(t *testing.T) {
	data := Build(words(4), Options{InitialIndex: -1})
	assert.Equal(t, 0, data.Index)
	assert.False(t, Restorable(&model.SavedProgress{WordIndex: -2}, words(4)))
	assert.False(t, Restorable(nil, words(4)))
}

func TestCountAndSlice(t *testing.T) {
	all := words(45)
	assert.Equal(t, 3, Count(len(all), 20))
	assert.Equal(t, 0, Count(0, 20))
	assert.Equal(t, 3, Count(len(all), 0))

	last, ok := Slice(all, 2, 20)
	require.True(t, ok)
	require.Len(t, last, 5)
	assert.Equal(t, "w40", last[0].Name)

	_, ok = Slice(all, 3, 20)
	assert.False(t, ok)
	_, ok = Slice(all, -1, 20)
	assert.False(t, ok)
}

func TestBuildRestoreFollowsRecordedOrder(t *testing.T) {
	snap := &model.SavedProgress{
		WordIndex: 1,
		WordCount: 1,
		WordOrder: []string{"w2", "w0", "w1"},
	}
	data := Build(words(3), Options{Restore: snap})
	assert.Equal(t, []string{"w2", "w0", "w1"}, Names(data.Words))
	assert.Equal(t, 1, data.Index)
	assert.True(t, Restorable(snap, words(3)))
}

func TestBuildRestoreWithForeignOrderStartsFresh(t *testing.T) {
	for _, order := range [][]string{
		{"w0", "w1"},
		{"w0", "w1", "x"},
		{"w0", "w0", "w1"},
	} {
		snap := &model.SavedProgress{WordIndex: 1, WordCount: 1, WordOrder: order}
		assert.False(t, Restorable(snap, words(3)), order)
		data := Build(words(3), Options{Restore: snap})
		assert.Equal(t, 0, data.Index, order)
		assert.Equal(t, 0, data.WordCount, order)
	}
}

func TestBuildRestoreKeepsDuplicateNames(t *testing.T) {
	in := []model.Word{{Name: "a", Trans: []string{"1"}}, {Name: "a", Trans: []string{"2"}}, {Name: "b"}}
	snap := &model.SavedProgress{WordIndex: 0, WordOrder: []string{"b", "a", "a"}}
	data := Build(in, Options{Restore: snap})
	require.Len(t, data.Words, 3)
	assert.Equal(t, "b", data.Words[0].Name)
	assert.Equal(t, []string{"1"}, data.Words[1].Trans)
	assert.Equal(t, []string{"2"}, data.Words[2].Trans)
}
