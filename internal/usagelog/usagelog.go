// Package usagelog archives finished attempts as zstd-compressed JSON lines.
package usagelog

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/verte-zerg/qwerty/internal/model"
)

// Archive appends usage entries to a single .jsonl.zst file. Every upload is
// written as its own zstd frame so the file stays readable after a crash
// between uploads.
type Archive struct {
	path string
	mu   sync.Mutex
}

// New returns an archive stored at path.
func New(path string) *Archive {
	return &Archive{path: path}
}

// Path returns the archive file location.
func (a *Archive) Path() string {
	return a.path
}

// Upload appends entry to the archive.
func (a *Archive) Upload(ctx context.Context, entry model.UsageLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode usage log: %w", err)
	}
	line = append(line, '\n')

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		return fmt.Errorf("failed to create usage log dir: %w", err)
	}
	file, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open usage log: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close; the frame is already flushed.
			_ = cerr
		}
	}()

	encoder, err := zstd.NewWriter(file)
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	if _, err := encoder.Write(line); err != nil {
		_ = encoder.Close()
		return fmt.Errorf("failed to compress usage log: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to finalize usage log: %w", err)
	}
	return nil
}

// ReadAll returns every archived entry in upload order. A missing archive
// yields no entries.
func (a *Archive) ReadAll() ([]model.UsageLog, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	file, err := os.Open(a.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open usage log: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only archive.
			_ = cerr
		}
	}()
	return Decode(file)
}

// Decode reads zstd-compressed JSON lines from r.
func Decode(r io.Reader) ([]model.UsageLog, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer decoder.Close()

	var entries []model.UsageLog
	scanner := bufio.NewScanner(decoder)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var entry model.UsageLog
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return nil, fmt.Errorf("failed to parse usage log entry %d: %w", len(entries)+1, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to decompress usage log: %w", err)
	}
	return entries, nil
}
