package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/qwerty/internal/model"
	"github.com/verte-zerg/qwerty/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "qwerty.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		rec := model.ChapterRecord{
			AttemptID:   string(rune('a' + i)),
			DictID:      "cet4",
			Chapter:     i,
			TimeSeconds: 60,
			WPM:         20 + i,
			Accuracy:    90,
			WordCount:   20,
			EndedAt:     time.Unix(0, 0).Add(time.Duration(i) * time.Minute),
		}
		if _, err := st.InsertChapterRecord(ctx, rec); err != nil {
			t.Fatalf("insert record: %v", err)
		}
	}
	if _, err := st.InsertWordRecord(ctx, model.WordRecord{DictID: "cet4", Word: "cancel", WrongCount: 2, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("insert word record: %v", err)
	}

	report, err := BuildReport(ctx, st, model.RecordsConfig{DictID: "cet4", Last: 2, Window: 2})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(report.Records))
	}
	if report.Records[0].Chapter != 1 || report.Records[1].Chapter != 2 {
		t.Fatalf("unexpected records: %+v", report.Records)
	}
	if len(report.WeakWords) != 1 || report.WeakWords[0].Word != "cancel" {
		t.Fatalf("unexpected weak words: %+v", report.WeakWords)
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, 60, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Summary", "Learning Curves", "Dictionary", "Weak Words", "cancel"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("report missing %q:\n%s", want, buf.String())
		}
	}

	all, err := BuildReport(ctx, st, model.RecordsConfig{})
	if err != nil {
		t.Fatalf("build unfiltered report: %v", err)
	}
	if len(all.Records) != 3 || all.WeakWords != nil {
		t.Fatalf("unexpected unfiltered report: %d records, weak=%v", len(all.Records), all.WeakWords)
	}
}
