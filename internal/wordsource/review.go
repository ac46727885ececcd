package wordsource

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/verte-zerg/qwerty/internal/model"
)

// ReviewRecordKey holds the word list of the review in progress.
const ReviewRecordKey = "reviewRecord"

type reviewRecord struct {
	DictID    string    `json:"dictId"`
	Words     []string  `json:"words"`
	CreatedAt time.Time `json:"createdAt"`
}

// ResetReview forgets the frozen review list so the next review ranks the
// missed words again.
func (s *Source) ResetReview(ctx context.Context) error {
	if s.kv == nil {
		return nil
	}
	if err := s.kv.Delete(ctx, ReviewRecordKey); err != nil {
		return fmt.Errorf("failed to reset review list: %w", err)
	}
	return nil
}

func (s *Source) frozenReview(ctx context.Context, dict Dictionary) ([]model.Word, error) {
	if s.kv == nil {
		return nil, nil
	}
	raw, ok, err := s.kv.Get(ctx, ReviewRecordKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read review list: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var rec reviewRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || rec.DictID != dict.ID {
		return nil, nil
	}
	byName := make(map[string]model.Word, len(dict.Words))
	for _, w := range dict.Words {
		if _, seen := byName[w.Name]; !seen {
			byName[w.Name] = w
		}
	}
	words := make([]model.Word, 0, len(rec.Words))
	for _, name := range rec.Words {
		if w, ok := byName[name]; ok {
			words = append(words, w)
		}
	}
	return words, nil
}

func (s *Source) freezeReview(ctx context.Context, dictID string, words []model.Word) error {
	if s.kv == nil {
		return nil
	}
	rec := reviewRecord{DictID: dictID, Words: make([]string, len(words)), CreatedAt: time.Now()}
	for i, w := range words {
		rec.Words[i] = w.Name
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode review list: %w", err)
	}
	if err := s.kv.Set(ctx, ReviewRecordKey, string(raw)); err != nil {
		return fmt.Errorf("failed to save review list: %w", err)
	}
	return nil
}
