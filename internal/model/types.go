// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	DictID        string
	Chapter       int
	ChapterLength int
	Shuffle       bool
	Review        bool
	ReviewIndex   int
	IgnoreCase    bool
}

// Identity returns the identity tuple of the configured attempt.
func (c Config) Identity() Identity {
	return Identity{DictID: c.DictID, Chapter: c.Chapter, ReviewMode: c.Review}
}

// RecordsConfig defines filters for chapter record output.
type RecordsConfig struct {
	DictID string
	Since  *time.Time
	Last   int
	Window int
}

// Word is a single unit of practice.
type Word struct {
	Name    string   `json:"name"`
	Trans   []string `json:"trans"`
	USPhone string   `json:"usphone,omitempty"`
	UKPhone string   `json:"ukphone,omitempty"`
}

// Identity distinguishes one resumable attempt from another.
type Identity struct {
	DictID     string
	Chapter    int
	ReviewMode bool
}

// Equal reports whether both identities address the same attempt.
func (id Identity) Equal(other Identity) bool {
	return id.DictID == other.DictID && id.Chapter == other.Chapter && id.ReviewMode == other.ReviewMode
}

// InputLog records how a single word was typed. LetterMistakes maps a
// letter position to the wrong keys pressed there.
type InputLog struct {
	Index          int              `json:"index"`
	Word           string           `json:"word"`
	CorrectCount   int              `json:"correctCount"`
	WrongCount     int              `json:"wrongCount"`
	LetterMistakes map[int][]string `json:"LetterMistakes"`
}

// ChapterData is the mutable per-attempt state.
type ChapterData struct {
	Words         []Word
	Index         int
	WordCount     int
	CorrectCount  int
	WrongCount    int
	UserInputLogs []InputLog
	WordRecordIDs []int64
}

// TimerData holds elapsed time and derived speed metrics.
type TimerData struct {
	Time     int `json:"time"`
	WPM      int `json:"wpm"`
	Accuracy int `json:"accuracy"`
}

// SavedProgress is the persisted snapshot of an unfinished attempt.
type SavedProgress struct {
	DictID        string     `json:"dictId"`
	Chapter       int        `json:"chapter"`
	IsReviewMode  bool       `json:"isReviewMode"`
	WordIndex     int        `json:"wordIndex"`
	UserInputLogs []InputLog `json:"userInputLogs"`
	TimerData     TimerData  `json:"timerData"`
	WordCount     int        `json:"wordCount"`
	CorrectCount  int        `json:"correctCount"`
	WrongCount    int        `json:"wrongCount"`
	WordRecordIDs []int64    `json:"wordRecordIds"`
	// WordOrder lists the word names in attempt order so a shuffled or
	// review attempt resumes on the same sequence.
	WordOrder []string `json:"wordOrder,omitempty"`
}

// Identity returns the identity tuple the snapshot belongs to.
func (p SavedProgress) Identity() Identity {
	return Identity{DictID: p.DictID, Chapter: p.Chapter, ReviewMode: p.IsReviewMode}
}

// WordRecord is the durable record of one completed word.
type WordRecord struct {
	DictID         string
	Chapter        int
	Word           string
	WrongCount     int
	LetterMistakes map[int][]string
	CreatedAt      time.Time
}

// ChapterRecord is the durable record of one finished attempt.
type ChapterRecord struct {
	ID            int64
	AttemptID     string
	DictID        string
	Chapter       int
	ReviewMode    bool
	TimeSeconds   int
	WPM           int
	Accuracy      int
	CorrectCount  int
	WrongCount    int
	WordCount     int
	WordRecordIDs []int64
	EndedAt       time.Time
}

// UsageLog is the analytics entry emitted for a finished attempt.
type UsageLog struct {
	AttemptID    string    `json:"attemptId"`
	DictID       string    `json:"dictId"`
	Chapter      int       `json:"chapter"`
	ReviewMode   bool      `json:"reviewMode"`
	Words        int       `json:"words"`
	Skipped      int       `json:"skipped"`
	TimeSeconds  int       `json:"time"`
	WPM          int       `json:"wpm"`
	Accuracy     int       `json:"accuracy"`
	CorrectCount int       `json:"correctCount"`
	WrongCount   int       `json:"wrongCount"`
	EndedAt      time.Time `json:"endedAt"`
}

// WordAggregate summarizes mistakes on one word across records.
type WordAggregate struct {
	Word     string
	Attempts int
	Wrong    int
}
