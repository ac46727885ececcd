// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/qwerty/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for progress and record data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`PRAGMA busy_timeout = 5000;`,
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS word_records (
			id INTEGER PRIMARY KEY,
			dict_id TEXT NOT NULL,
			chapter INTEGER NOT NULL,
			word TEXT NOT NULL,
			wrong_count INTEGER NOT NULL,
			letter_mistakes TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS chapter_records (
			id INTEGER PRIMARY KEY,
			attempt_id TEXT NOT NULL UNIQUE,
			dict_id TEXT NOT NULL,
			chapter INTEGER NOT NULL,
			review_mode INTEGER NOT NULL,
			time_seconds INTEGER NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			correct_count INTEGER NOT NULL,
			wrong_count INTEGER NOT NULL,
			word_count INTEGER NOT NULL,
			word_record_ids TEXT NOT NULL,
			ended_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_word_records_dict_word ON word_records(dict_id, word);`,
		`CREATE INDEX IF NOT EXISTS idx_chapter_records_ended_at ON chapter_records(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Format(time.RFC3339Nano))
	return err
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

// InsertWordRecord stores a completed word and returns its id.
func (s *Store) InsertWordRecord(ctx context.Context, rec model.WordRecord) (int64, error) {
	mistakes := rec.LetterMistakes
	if mistakes == nil {
		mistakes = map[int][]string{}
	}
	raw, err := json.Marshal(mistakes)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO word_records (dict_id, chapter, word, wrong_count, letter_mistakes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.DictID,
		rec.Chapter,
		rec.Word,
		rec.WrongCount,
		string(raw),
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// InsertChapterRecord stores a finished attempt and returns its id.
// Inserting the same attempt twice returns the id of the first insert.
func (s *Store) InsertChapterRecord(ctx context.Context, rec model.ChapterRecord) (int64, error) {
	ids := rec.WordRecordIDs
	if ids == nil {
		ids = []int64{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return 0, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	var existing int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM chapter_records WHERE attempt_id = ?`, rec.AttemptID).Scan(&existing)
	switch {
	case err == nil:
		err = tx.Commit()
		return existing, err
	case !errors.Is(err, sql.ErrNoRows):
		return 0, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO chapter_records (attempt_id, dict_id, chapter, review_mode, time_seconds, wpm, accuracy, correct_count, wrong_count, word_count, word_record_ids, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.AttemptID,
		rec.DictID,
		rec.Chapter,
		boolToInt(rec.ReviewMode),
		rec.TimeSeconds,
		rec.WPM,
		rec.Accuracy,
		rec.CorrectCount,
		rec.WrongCount,
		rec.WordCount,
		string(raw),
		rec.EndedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListChapterRecords returns finished attempts filtered by cfg, oldest first.
func (s *Store) ListChapterRecords(ctx context.Context, cfg model.RecordsConfig) ([]model.ChapterRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.DictID != "" {
		clauses = append(clauses, "dict_id = ?")
		args = append(args, cfg.DictID)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, attempt_id, dict_id, chapter, review_mode, time_seconds, wpm, accuracy,
		correct_count, wrong_count, word_count, word_record_ids, ended_at
		FROM chapter_records
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.ChapterRecord
	for rows.Next() {
		var rec model.ChapterRecord
		var review int
		var rawIDs, endedAt string
		if err := rows.Scan(&rec.ID, &rec.AttemptID, &rec.DictID, &rec.Chapter, &review, &rec.TimeSeconds,
			&rec.WPM, &rec.Accuracy, &rec.CorrectCount, &rec.WrongCount, &rec.WordCount, &rawIDs, &endedAt); err != nil {
			return nil, err
		}
		rec.ReviewMode = review != 0
		if err := json.Unmarshal([]byte(rawIDs), &rec.WordRecordIDs); err != nil {
			return nil, fmt.Errorf("record %d: %w", rec.ID, err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		rec.EndedAt = parsed
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(records) > cfg.Last {
		records = records[len(records)-cfg.Last:]
	}
	return records, nil
}

// ListWordAggregates sums attempts and mistakes per word for a dictionary.
func (s *Store) ListWordAggregates(ctx context.Context, dictID string) ([]model.WordAggregate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT word, COUNT(*) AS attempts, SUM(wrong_count) AS wrong
		 FROM word_records
		 WHERE dict_id = ?
		 GROUP BY word`, dictID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.WordAggregate
	for rows.Next() {
		var agg model.WordAggregate
		if err := rows.Scan(&agg.Word, &agg.Attempts, &agg.Wrong); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
