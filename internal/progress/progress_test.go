package progress

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/qwerty/internal/model"
	"github.com/verte-zerg/qwerty/internal/session"
)

type memKV struct {
	data   map[string]string
	getErr error
}

func newMemKV() *memKV {
	return &memKV{data: map[string]string{}}
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

type logSink struct {
	lines []string
}

func (l *logSink) logf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

var cet4 = model.Identity{DictID: "cet4", Chapter: 2}

func sampleProgress() model.SavedProgress {
	return model.SavedProgress{
		DictID:    "cet4",
		Chapter:   2,
		WordIndex: 3,
		UserInputLogs: []model.InputLog{
			{Index: 0, Word: "cancel", CorrectCount: 1},
			{Index: 1, Word: "explosive", CorrectCount: 1, WrongCount: 2, LetterMistakes: map[int][]string{3: {"k", "l"}}},
			{Index: 2, Word: "numerous", CorrectCount: 1, LetterMistakes: map[int][]string{}},
		},
		TimerData:     model.TimerData{Time: 21, WPM: 9, Accuracy: 60},
		WordCount:     3,
		CorrectCount:  3,
		WrongCount:    2,
		WordRecordIDs: []int64{11, 12, 13},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := New(newMemKV())
	want := sampleProgress()

	require.NoError(t, st.Save(ctx, want))
	got, ok := st.Load(ctx, cet4)
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.True(t, st.HasUnfinishedProgress(ctx, cet4))
}

func TestLoadEmpty(t *testing.T) {
	st := New(newMemKV())
	_, ok := st.Load(context.Background(), cet4)
	assert.False(t, ok)
}

func TestLoadMismatchKeepsBlob(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	st := New(kv)
	require.NoError(t, st.Save(ctx, sampleProgress()))
	stored := kv.data[StorageKey]

	for _, other := range []model.Identity{
		{DictID: "cet6", Chapter: 2},
		{DictID: "cet4", Chapter: 3},
		{DictID: "cet4", Chapter: 2, ReviewMode: true},
	} {
		_, ok := st.Load(ctx, other)
		assert.False(t, ok)
		assert.False(t, st.HasUnfinishedProgress(ctx, other))
	}
	assert.Equal(t, stored, kv.data[StorageKey])

	_, ok := st.Load(ctx, cet4)
	assert.True(t, ok)
}

func TestLoadCorruptedDeletes(t *testing.T) {
	ctx := context.Background()
	for name, blob := range map[string]string{
		"invalid json":     "{not json",
		"negative index":   `{"dictId":"cet4","chapter":2,"wordIndex":-1}`,
		"count past index": `{"dictId":"cet4","chapter":2,"wordIndex":1,"wordCount":2}`,
	} {
		t.Run(name, func(t *testing.T) {
			kv := newMemKV()
			kv.data[StorageKey] = blob
			sink := &logSink{}
			st := New(kv, WithLogger(sink.logf))

			_, ok := st.Load(ctx, cet4)
			assert.False(t, ok)
			assert.NotContains(t, kv.data, StorageKey)
			assert.NotEmpty(t, sink.lines)
		})
	}
}

func TestLoadReadErrorIsNoProgress(t *testing.T) {
	kv := newMemKV()
	kv.data[StorageKey] = "{}"
	kv.getErr = errors.New("disk gone")
	sink := &logSink{}
	st := New(kv, WithLogger(sink.logf))

	_, ok := st.Load(context.Background(), cet4)
	assert.False(t, ok)
	assert.Contains(t, kv.data, StorageKey)
	assert.Len(t, sink.lines, 1)
}

func TestClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := New(newMemKV())
	require.NoError(t, st.Save(ctx, sampleProgress()))
	require.NoError(t, st.Clear(ctx))
	require.NoError(t, st.Clear(ctx))
	_, ok := st.Peek(ctx)
	assert.False(t, ok)
}

func TestSaveStateRequiresProgress(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	st := New(kv)

	s := session.Reduce(session.State{}, session.SetupChapter{Words: []model.Word{{Name: "a"}, {Name: "b"}}})
	assert.ErrorIs(t, st.SaveState(ctx, cet4, s), ErrNotProgressed)
	assert.Empty(t, kv.data)

	s = session.Reduce(s, session.CompleteWord{Log: model.InputLog{CorrectCount: 1}})
	require.NoError(t, st.SaveState(ctx, cet4, s))
	got, ok := st.Load(ctx, cet4)
	require.True(t, ok)
	assert.Equal(t, 1, got.WordIndex)
	assert.Equal(t, 1, got.WordCount)
	assert.Len(t, got.UserInputLogs, 1)
	assert.Equal(t, []string{"a", "b"}, got.WordOrder)
}

func TestCorruptedLoadWithoutLogger(t *testing.T) {
	kv := newMemKV()
	kv.data[StorageKey] = "{not json"
	_, ok := New(kv).Load(context.Background(), cet4)
	assert.False(t, ok)
	assert.NotContains(t, kv.data, StorageKey)
}
