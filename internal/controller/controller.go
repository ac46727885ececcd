// Package controller drives a typing session: it feeds lifecycle events
// into the session reducer and performs the persistence side effects.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/qwerty/internal/chapter"
	"github.com/verte-zerg/qwerty/internal/model"
	"github.com/verte-zerg/qwerty/internal/progress"
	"github.com/verte-zerg/qwerty/internal/session"
)

// TickInterval is the period of the session clock.
const TickInterval = time.Second

// WordSource resolves an identity into the words of its chapter.
type WordSource interface {
	Fetch(ctx context.Context, id model.Identity) ([]model.Word, error)
}

// ProgressStore persists the snapshot of the unfinished attempt.
type ProgressStore interface {
	Load(ctx context.Context, id model.Identity) (model.SavedProgress, bool)
	Save(ctx context.Context, p model.SavedProgress) error
	Clear(ctx context.Context) error
}

// Recorder stores durable per-word and per-chapter records.
type Recorder interface {
	InsertWordRecord(ctx context.Context, rec model.WordRecord) (int64, error)
	InsertChapterRecord(ctx context.Context, rec model.ChapterRecord) (int64, error)
}

// Uploader ships the usage entry of a finished attempt.
type Uploader interface {
	Upload(ctx context.Context, entry model.UsageLog) error
}

// ReviewList keeps the word list of a review attempt fixed until reset.
type ReviewList interface {
	ResetReview(ctx context.Context) error
}

// Clock schedules fn every d until the returned cancel func is called. fn
// must not run before Every returns.
type Clock interface {
	Every(d time.Duration, fn func()) (cancel func())
}

// Deps are the collaborators of a Controller. Recorder, Uploader and Review
// are optional.
type Deps struct {
	Words    WordSource
	Progress ProgressStore
	Recorder Recorder
	Uploader Uploader
	Review   ReviewList
	Clock    Clock
}

// Option configures a Controller.
type Option func(*Controller)

// WithShuffler shuffles fresh non-review chapters with s.
func WithShuffler(s chapter.Shuffler) Option {
	return func(c *Controller) {
		c.shuffler = s
	}
}

// WithReviewIndex sets where a review session starts when nothing is
// restored.
func WithReviewIndex(index int) Option {
	return func(c *Controller) {
		c.reviewIndex = index
	}
}

// WithLogger routes diagnostics to logf. Without it they are dropped.
func WithLogger(logf func(format string, args ...any)) Option {
	return func(c *Controller) {
		if logf != nil {
			c.logf = logf
		}
	}
}

// WithNow overrides the wall clock used for record timestamps.
func WithNow(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithAttemptIDs overrides the attempt id generator.
func WithAttemptIDs(next func() string) Option {
	return func(c *Controller) {
		if next != nil {
			c.newID = next
		}
	}
}

// Controller owns the session state of one identity at a time. All methods
// are safe for concurrent use; clock callbacks are serialized with them.
type Controller struct {
	mu    sync.Mutex
	deps  Deps
	id    model.Identity
	state session.State

	shuffler    chapter.Shuffler
	reviewIndex int
	logf        func(format string, args ...any)
	now         func() time.Time
	newID       func() string

	stopTicks func()
	tickGen   uint64
	closedOut bool
}

// New returns a Controller for id. The constructor counts as the first
// identity observation, so it never clears stored progress.
func New(id model.Identity, deps Deps, opts ...Option) *Controller {
	c := &Controller{
		deps:  deps,
		id:    id,
		logf:  func(string, ...any) {},
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Identity returns the identity currently driven.
func (c *Controller) Identity() model.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// State returns the current session state.
func (c *Controller) State() session.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Mount loads the chapter words and any matching snapshot, then sets up the
// attempt. It reports whether progress was restored. On a word source
// failure the session is left idle.
//
// A restored attempt replays the word order recorded in its snapshot, so a
// shuffled chapter resumes on its shuffled sequence. Snapshots written
// without an order resume on the order the word source returns. A review
// without a snapshot starts from a freshly ranked review list.
func (c *Controller) Mount(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mount(ctx)
}

func (c *Controller) mount(ctx context.Context) (bool, error) {
	c.stopClock()
	c.state = session.State{}
	c.closedOut = false

	if c.id.ReviewMode {
		if _, ok := c.deps.Progress.Load(ctx, c.id); !ok {
			c.resetReview(ctx)
		}
	}

	words, err := c.deps.Words.Fetch(ctx, c.id)
	if err != nil {
		return false, fmt.Errorf("failed to load chapter: %w", err)
	}
	if len(words) == 0 {
		return false, fmt.Errorf("failed to load chapter: %s chapter %d has no words", c.id.DictID, c.id.Chapter)
	}

	var restore *model.SavedProgress
	if saved, ok := c.deps.Progress.Load(ctx, c.id); ok {
		if chapter.Restorable(&saved, words) {
			restore = &saved
		} else {
			c.logf("discarding progress at word %d of %d\n", saved.WordIndex, len(words))
			c.clearProgress(ctx)
		}
	}

	initial := 0
	if c.id.ReviewMode && restore == nil {
		initial = c.reviewIndex
	}
	c.dispatch(session.SetupChapter{
		Words:        words,
		Shuffle:      c.shuffler != nil,
		ReviewMode:   c.id.ReviewMode,
		InitialIndex: initial,
		Restore:      restore,
		Shuffler:     c.shuffler,
	})
	return restore != nil, nil
}

// SetIdentity switches to id. A changed identity clears stored progress and
// remounts; an unchanged one is a no-op.
func (c *Controller) SetIdentity(ctx context.Context, id model.Identity) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id.Equal(c.id) {
		return false, nil
	}
	c.clearProgress(ctx)
	c.id = id
	return c.mount(ctx)
}

// Restart sets up the current identity again from scratch.
func (c *Controller) Restart(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearProgress(ctx)
	_, err := c.mount(ctx)
	return err
}

// StartTyping resumes or starts the attempt clock.
func (c *Controller) StartTyping() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dispatch(session.SetIsTyping{Typing: true})
}

// Blur pauses the attempt, e.g. when the terminal loses focus.
func (c *Controller) Blur() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dispatch(session.SetIsTyping{Typing: false})
}

// ShowSkip toggles whether skipping the current word is offered.
func (c *Controller) ShowSkip(show bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dispatch(session.SetShowSkip{Show: show})
}

// Dispatch applies a raw action.
func (c *Controller) Dispatch(a session.Action) session.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dispatch(a)
	return c.state
}

// CompleteWord scores the current word, records it and saves progress. When
// it was the last word the attempt is closed out.
func (c *Controller) CompleteWord(ctx context.Context, log model.InputLog) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := c.state.ChapterData.WordCount
	c.dispatch(session.CompleteWord{Log: log})
	if c.state.ChapterData.WordCount == before {
		return nil
	}
	c.recordWord(ctx)
	c.saveProgress(ctx)
	return c.closeOut(ctx)
}

// SkipWord passes over the current word if skipping is offered.
func (c *Controller) SkipWord(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := c.state.ChapterData.Index
	c.dispatch(session.SkipWord{})
	if c.state.ChapterData.Index == before {
		return nil
	}
	c.saveProgress(ctx)
	return c.closeOut(ctx)
}

// BeforeUnload saves an unfinished attempt and reports whether leaving
// should be confirmed.
func (c *Controller) BeforeUnload(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Progressed() {
		return false
	}
	c.saveProgress(ctx)
	return true
}

// Close stops the clock.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopClock()
}

func (c *Controller) dispatch(a session.Action) {
	prev := c.state
	c.state = session.Reduce(prev, a)
	_, setup := a.(session.SetupChapter)
	switch {
	case setup:
		c.stopClock()
	case !prev.IsTyping && c.state.IsTyping:
		c.startClock()
	case prev.IsTyping && !c.state.IsTyping:
		c.stopClock()
	}
}

func (c *Controller) startClock() {
	c.stopClock()
	if c.deps.Clock == nil {
		return
	}
	c.tickGen++
	gen := c.tickGen
	c.stopTicks = c.deps.Clock.Every(TickInterval, func() {
		c.tick(gen)
	})
}

func (c *Controller) stopClock() {
	if c.stopTicks != nil {
		c.stopTicks()
		c.stopTicks = nil
	}
	c.tickGen++
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.tickGen {
		return
	}
	c.dispatch(session.TickTimer{})
}

func (c *Controller) recordWord(ctx context.Context) {
	if c.deps.Recorder == nil {
		return
	}
	logs := c.state.ChapterData.UserInputLogs
	last := logs[len(logs)-1]

	c.dispatch(session.SetIsSavingRecord{Saving: true})
	defer c.dispatch(session.SetIsSavingRecord{Saving: false})
	id, err := c.deps.Recorder.InsertWordRecord(ctx, model.WordRecord{
		DictID:         c.id.DictID,
		Chapter:        c.id.Chapter,
		Word:           last.Word,
		WrongCount:     last.WrongCount,
		LetterMistakes: last.LetterMistakes,
		CreatedAt:      c.now(),
	})
	if err != nil {
		c.logf("failed to save word record: %v\n", err)
		return
	}
	c.dispatch(session.AddWordRecordID{ID: id})
}

func (c *Controller) saveProgress(ctx context.Context) {
	if !c.state.Progressed() {
		return
	}
	if err := c.deps.Progress.Save(ctx, progress.Snapshot(c.id, c.state)); err != nil {
		c.logf("failed to save progress: %v\n", err)
	}
}

func (c *Controller) clearProgress(ctx context.Context) {
	if err := c.deps.Progress.Clear(ctx); err != nil {
		c.logf("failed to clear progress: %v\n", err)
	}
}

func (c *Controller) resetReview(ctx context.Context) {
	if c.deps.Review == nil {
		return
	}
	if err := c.deps.Review.ResetReview(ctx); err != nil {
		c.logf("failed to reset review list: %v\n", err)
	}
}

// closeOut runs the completion side effects once per attempt.
func (c *Controller) closeOut(ctx context.Context) error {
	if !c.state.IsFinished || c.state.IsSavingRecord || c.closedOut {
		return nil
	}
	c.closedOut = true
	c.dispatch(session.SetIsSavingRecord{Saving: true})
	defer c.dispatch(session.SetIsSavingRecord{Saving: false})

	data := c.state.ChapterData
	seconds := c.state.TimerData.Time
	wpm, accuracy := session.Metrics(data.CorrectCount, data.WrongCount, seconds)
	attemptID := c.newID()
	ended := c.now()

	var errs []error
	if c.deps.Uploader != nil {
		err := c.deps.Uploader.Upload(ctx, model.UsageLog{
			AttemptID:    attemptID,
			DictID:       c.id.DictID,
			Chapter:      c.id.Chapter,
			ReviewMode:   c.id.ReviewMode,
			Words:        len(data.Words),
			Skipped:      c.state.Skipped(),
			TimeSeconds:  seconds,
			WPM:          wpm,
			Accuracy:     accuracy,
			CorrectCount: data.CorrectCount,
			WrongCount:   data.WrongCount,
			EndedAt:      ended,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to upload usage log: %w", err))
		}
	}
	if c.deps.Recorder != nil {
		_, err := c.deps.Recorder.InsertChapterRecord(ctx, model.ChapterRecord{
			AttemptID:     attemptID,
			DictID:        c.id.DictID,
			Chapter:       c.id.Chapter,
			ReviewMode:    c.id.ReviewMode,
			TimeSeconds:   seconds,
			WPM:           wpm,
			Accuracy:      accuracy,
			CorrectCount:  data.CorrectCount,
			WrongCount:    data.WrongCount,
			WordCount:     data.WordCount,
			WordRecordIDs: data.WordRecordIDs,
			EndedAt:       ended,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to save chapter record: %w", err))
		}
	}
	c.clearProgress(ctx)
	if c.id.ReviewMode {
		c.resetReview(ctx)
	}

	err := errors.Join(errs...)
	if err != nil {
		c.logf("%v\n", err)
	}
	return err
}

