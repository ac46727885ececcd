package stats

import (
	"context"
	"fmt"
	"io"

	"github.com/verte-zerg/qwerty/internal/model"
)

// defaultWeakTop caps the weak word list of a report.
const defaultWeakTop = 10

// RecordSource lists stored records.
type RecordSource interface {
	ListChapterRecords(ctx context.Context, cfg model.RecordsConfig) ([]model.ChapterRecord, error)
	ListWordAggregates(ctx context.Context, dictID string) ([]model.WordAggregate, error)
}

// Report contains precomputed data for records rendering.
type Report struct {
	Records   []model.ChapterRecord
	WeakWords []model.WordAggregate
	Window    int
}

// BuildReport loads and prepares data for records rendering. Weak words are
// only collected when cfg names a dictionary.
func BuildReport(ctx context.Context, src RecordSource, cfg model.RecordsConfig) (Report, error) {
	records, err := src.ListChapterRecords(ctx, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list chapter records: %w", err)
	}
	report := Report{Records: records, Window: cfg.Window}
	if cfg.DictID == "" {
		return report, nil
	}
	aggs, err := src.ListWordAggregates(ctx, cfg.DictID)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list word aggregates: %w", err)
	}
	report.WeakWords = SelectWeakWords(aggs, defaultWeakTop)
	return report, nil
}

// Render writes the full plain-text report.
func (r Report) Render(w io.Writer, width int, useColor bool) error {
	if err := RenderSummary(w, r.Records); err != nil {
		return err
	}
	if err := RenderCurves(w, r.Records, r.Window, width, useColor); err != nil {
		return err
	}
	if err := RenderRecordTable(w, r.Records); err != nil {
		return err
	}
	return RenderWeakWords(w, r.WeakWords)
}
