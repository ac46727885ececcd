package stats

import (
	"fmt"
	"io"
	"strconv"

	"github.com/verte-zerg/qwerty/internal/model"
)

// RenderUsage writes archived usage entries as a table, oldest first.
func RenderUsage(w io.Writer, entries []model.UsageLog) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No usage entries archived.")
		return err
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		chapter := strconv.Itoa(e.Chapter + 1)
		if e.ReviewMode {
			chapter = "review"
		}
		rows = append(rows, []string{
			e.EndedAt.Local().Format("2006-01-02 15:04"),
			e.DictID,
			chapter,
			strconv.Itoa(e.Words),
			strconv.Itoa(e.Skipped),
			FormatDuration(e.TimeSeconds),
			strconv.Itoa(e.WPM),
			fmt.Sprintf("%d%%", e.Accuracy),
		})
	}
	headers := []string{"Ended", "Dictionary", "Chapter", "Words", "Skipped", "Time", "WPM", "Accuracy"}
	right := map[int]bool{3: true, 4: true, 5: true, 6: true, 7: true}
	for _, line := range alignTable(headers, rows, right) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
