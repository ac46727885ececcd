package wordsource

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/verte-zerg/qwerty/internal/chapter"
	"github.com/verte-zerg/qwerty/internal/model"
)

// CustomDictsKey holds the imported dictionaries in the KV medium.
const CustomDictsKey = "customDicts"

// CustomDict is an imported dictionary as stored in the KV medium.
type CustomDict struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Category      string       `json:"category"`
	ChapterLength int          `json:"chapterLength"`
	Words         []model.Word `json:"words"`
	CreatedAt     time.Time    `json:"createdAt"`
}

func (c CustomDict) dictionary() Dictionary {
	length := c.ChapterLength
	if length <= 0 {
		length = chapter.DefaultLength
	}
	return Dictionary{
		ID:            CustomScheme + c.ID,
		Name:          c.Name,
		Category:      c.Category,
		ChapterLength: length,
		Words:         c.Words,
		Custom:        true,
	}
}

// AddCustomDict stores dict, replacing an imported dictionary with the same
// id. It returns the reference to use as dictionary id.
func (s *Source) AddCustomDict(ctx context.Context, dict CustomDict) (string, error) {
	if dict.ID == "" {
		return "", fmt.Errorf("dictionary id is required")
	}
	dict.Words = validWords(dict.Words)
	if len(dict.Words) == 0 {
		return "", fmt.Errorf("dictionary %q has no valid words", dict.ID)
	}
	if dict.Name == "" {
		dict.Name = dict.ID
	}
	if dict.CreatedAt.IsZero() {
		dict.CreatedAt = time.Now()
	}
	dicts, err := s.loadCustom(ctx)
	if err != nil {
		return "", err
	}
	replaced := false
	for i := range dicts {
		if dicts[i].ID == dict.ID {
			dicts[i] = dict
			replaced = true
		}
	}
	if !replaced {
		dicts = append(dicts, dict)
	}
	if err := s.saveCustom(ctx, dicts); err != nil {
		return "", err
	}
	return CustomScheme + dict.ID, nil
}

// RemoveCustomDict deletes an imported dictionary.
func (s *Source) RemoveCustomDict(ctx context.Context, ref string) error {
	id := ref
	if IsCustom(ref) {
		id = ref[len(CustomScheme):]
	}
	dicts, err := s.loadCustom(ctx)
	if err != nil {
		return err
	}
	kept := dicts[:0]
	for _, d := range dicts {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	if len(kept) == len(dicts) {
		return fmt.Errorf("%w: %q", ErrDictNotFound, ref)
	}
	return s.saveCustom(ctx, kept)
}

func (s *Source) customDictionary(ctx context.Context, id string) (Dictionary, error) {
	dicts, err := s.loadCustom(ctx)
	if err != nil {
		return Dictionary{}, err
	}
	for _, d := range dicts {
		if d.ID == id {
			return d.dictionary(), nil
		}
	}
	return Dictionary{}, fmt.Errorf("%w: %q", ErrDictNotFound, CustomScheme+id)
}

func (s *Source) loadCustom(ctx context.Context) ([]CustomDict, error) {
	if s.kv == nil {
		return nil, nil
	}
	raw, ok, err := s.kv.Get(ctx, CustomDictsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read imported dictionaries: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var dicts []CustomDict
	if err := json.Unmarshal([]byte(raw), &dicts); err != nil {
		return nil, fmt.Errorf("failed to parse imported dictionaries: %w", err)
	}
	return dicts, nil
}

func (s *Source) saveCustom(ctx context.Context, dicts []CustomDict) error {
	if s.kv == nil {
		return fmt.Errorf("no storage for imported dictionaries")
	}
	raw, err := json.Marshal(dicts)
	if err != nil {
		return fmt.Errorf("failed to encode imported dictionaries: %w", err)
	}
	if err := s.kv.Set(ctx, CustomDictsKey, string(raw)); err != nil {
		return fmt.Errorf("failed to save imported dictionaries: %w", err)
	}
	return nil
}

// ParseDictFile decodes a JSON dictionary file body.
func ParseDictFile(raw []byte) (CustomDict, error) {
	file, err := decodeDictFile(raw)
	if err != nil {
		return CustomDict{}, err
	}
	return CustomDict{
		Name:          file.Name,
		Category:      file.Category,
		ChapterLength: file.ChapterLength,
		Words:         file.Words,
	}, nil
}
