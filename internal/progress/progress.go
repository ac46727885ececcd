// Package progress persists the snapshot of the attempt in progress.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/verte-zerg/qwerty/internal/chapter"
	"github.com/verte-zerg/qwerty/internal/model"
	"github.com/verte-zerg/qwerty/internal/session"
)

// StorageKey is the single slot holding the current attempt.
const StorageKey = "typing_chapter_progress"

// ErrNotProgressed is returned by Save for a state not worth persisting.
var ErrNotProgressed = errors.New("attempt has no progress to save")

// KV is a durable string-keyed, string-valued medium.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Store reads and writes the progress slot.
type Store struct {
	kv   KV
	logf func(format string, args ...any)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger routes diagnostics to logf. Without it they are dropped.
func WithLogger(logf func(format string, args ...any)) Option {
	return func(s *Store) {
		if logf != nil {
			s.logf = logf
		}
	}
}

// New returns a Store backed by kv.
func New(kv KV, opts ...Option) *Store {
	s := &Store{kv: kv, logf: func(string, ...any) {}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot captures the resumable part of a session state.
func Snapshot(id model.Identity, st session.State) model.SavedProgress {
	data := st.ChapterData
	return model.SavedProgress{
		DictID:        id.DictID,
		Chapter:       id.Chapter,
		IsReviewMode:  id.ReviewMode,
		WordIndex:     data.Index,
		UserInputLogs: data.UserInputLogs,
		TimerData:     st.TimerData,
		WordCount:     data.WordCount,
		CorrectCount:  data.CorrectCount,
		WrongCount:    data.WrongCount,
		WordRecordIDs: data.WordRecordIDs,
		WordOrder:     chapter.Names(data.Words),
	}
}

// SaveState persists the state under id if it has progressed.
func (s *Store) SaveState(ctx context.Context, id model.Identity, st session.State) error {
	if !st.Progressed() {
		return ErrNotProgressed
	}
	return s.Save(ctx, Snapshot(id, st))
}

// Save overwrites the slot with p.
func (s *Store) Save(ctx context.Context, p model.SavedProgress) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, string(raw)); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// Load returns the stored snapshot when it belongs to id. A snapshot for
// another identity is left in place. A corrupted snapshot is deleted.
func (s *Store) Load(ctx context.Context, id model.Identity) (model.SavedProgress, bool) {
	p, ok := s.Peek(ctx)
	if !ok {
		return model.SavedProgress{}, false
	}
	if !p.Identity().Equal(id) {
		return model.SavedProgress{}, false
	}
	return p, true
}

// Peek returns the stored snapshot whatever identity it belongs to.
func (s *Store) Peek(ctx context.Context) (model.SavedProgress, bool) {
	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		s.logf("failed to read progress: %v\n", err)
		return model.SavedProgress{}, false
	}
	if !ok {
		return model.SavedProgress{}, false
	}
	p, err := decode(raw)
	if err != nil {
		s.logf("discarding corrupted progress: %v\n", err)
		if derr := s.kv.Delete(ctx, StorageKey); derr != nil {
			s.logf("failed to delete corrupted progress: %v\n", derr)
		}
		return model.SavedProgress{}, false
	}
	return p, true
}

// Clear removes the slot. Clearing an empty slot is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("failed to clear progress: %w", err)
	}
	return nil
}

// HasUnfinishedProgress reports whether a snapshot for id exists.
func (s *Store) HasUnfinishedProgress(ctx context.Context, id model.Identity) bool {
	_, ok := s.Load(ctx, id)
	return ok
}

func decode(raw string) (model.SavedProgress, error) {
	var p model.SavedProgress
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return model.SavedProgress{}, err
	}
	switch {
	case p.WordIndex < 0:
		return model.SavedProgress{}, fmt.Errorf("negative word index %d", p.WordIndex)
	case p.WordCount < 0 || p.CorrectCount < 0 || p.WrongCount < 0:
		return model.SavedProgress{}, fmt.Errorf("negative counters")
	case p.WordCount > p.WordIndex:
		return model.SavedProgress{}, fmt.Errorf("word count %d beyond index %d", p.WordCount, p.WordIndex)
	}
	return p, nil
}
