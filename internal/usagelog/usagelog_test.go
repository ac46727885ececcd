package usagelog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/qwerty/internal/model"
)

func TestUploadAppendsFrames(t *testing.T) {
	archive := New(filepath.Join(t.TempDir(), "nested", "usage.jsonl.zst"))
	ctx := context.Background()
	ended := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	first := model.UsageLog{AttemptID: "a", DictID: "cet4", Words: 20, TimeSeconds: 65, WPM: 46, Accuracy: 83, EndedAt: ended}
	second := model.UsageLog{AttemptID: "b", DictID: "custom://mine", Chapter: 2, ReviewMode: true, Skipped: 1, EndedAt: ended.Add(time.Minute)}
	require.NoError(t, archive.Upload(ctx, first))
	require.NoError(t, archive.Upload(ctx, second))

	entries, err := archive.ReadAll()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first, entries[0])
	assert.Equal(t, second, entries[1])
}

func TestReadAllMissingArchive(t *testing.T) {
	entries, err := New(filepath.Join(t.TempDir(), "none.jsonl.zst")).ReadAll()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReadAllRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.jsonl.zst")
	require.NoError(t, os.WriteFile(path, []byte("not zstd at all"), 0o644))
	_, err := New(path).ReadAll()
	assert.Error(t, err)
}

func TestUploadHonoursCancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.jsonl.zst")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, New(path).Upload(ctx, model.UsageLog{AttemptID: "x"}), context.Canceled)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
