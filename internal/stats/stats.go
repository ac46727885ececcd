// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/qwerty/internal/model"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := minMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = min(max(idx, 0), len(sparkChars)-1)
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func minMax(values []float64) (float64, float64) {
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	return minVal, maxVal
}

// Resample stretches or shrinks values to exactly width points by picking
// the nearest sample.
func Resample(values []float64, width int) []float64 {
	if width <= 0 || len(values) == 0 {
		return nil
	}
	if len(values) <= width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	step := float64(len(values)-1) / float64(max(width-1, 1))
	for i := range out {
		out[i] = values[int(math.Round(float64(i)*step))]
	}
	return out
}

// RenderSummary prints a summary for finished chapters.
func RenderSummary(w io.Writer, records []model.ChapterRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No chapter records found.")
		return err
	}
	var totalWPM, totalAcc, totalTime, totalWords int
	bestWPM := 0
	for _, r := range records {
		totalWPM += r.WPM
		totalAcc += r.Accuracy
		totalTime += r.TimeSeconds
		totalWords += r.WordCount
		bestWPM = max(bestWPM, r.WPM)
	}
	count := float64(len(records))
	lines := []string{
		"Summary",
		fmt.Sprintf("Chapters: %d", len(records)),
		fmt.Sprintf("Words: %d", totalWords),
		fmt.Sprintf("Time: %s", FormatDuration(totalTime)),
		fmt.Sprintf("Avg WPM: %.1f", float64(totalWPM)/count),
		fmt.Sprintf("Best WPM: %d", bestWPM),
		fmt.Sprintf("Avg Accuracy: %.1f%%", float64(totalAcc)/count),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints WPM and accuracy sparklines smoothed over window.
func RenderCurves(w io.Writer, records []model.ChapterRecord, window, width int, useColor bool) error {
	if len(records) < 2 {
		return nil
	}
	wpms := make([]float64, len(records))
	accs := make([]float64, len(records))
	for i, r := range records {
		wpms[i] = float64(r.WPM)
		accs[i] = float64(r.Accuracy)
	}
	if _, err := fmt.Fprintln(w, "Learning Curves"); err != nil {
		return err
	}
	type curve struct {
		name   string
		values []float64
	}
	curves := []curve{
		{name: "WPM", values: MovingAverage(wpms, window)},
		{name: "Accuracy", values: MovingAverage(accs, window)},
	}
	plotWidth := max(width-labelWidth, minCurveWidth)
	for i, series := range curves {
		line := Sparkline(Resample(series.values, plotWidth))
		if useColor {
			line = curveColors[i%len(curveColors)] + line + colorReset
		}
		lo, hi := minMax(series.values)
		if _, err := fmt.Fprintf(w, "%-*s%s  %.0f..%.0f\n", labelWidth, series.name, line, lo, hi); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderRecordTable prints one row per finished chapter.
func RenderRecordTable(w io.Writer, records []model.ChapterRecord) error {
	if len(records) == 0 {
		return nil
	}
	headers := []string{"Ended", "Dictionary", "Chapter", "Time", "WPM", "Accuracy", "Words", "Mistakes"}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, RecordRow(r))
	}
	rightAlign := map[int]bool{2: true, 3: true, 4: true, 5: true, 6: true, 7: true}
	for _, line := range alignTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RecordRow formats a chapter record as table cells.
func RecordRow(r model.ChapterRecord) []string {
	chapter := fmt.Sprintf("%d", r.Chapter+1)
	if r.ReviewMode {
		chapter = "review"
	}
	return []string{
		r.EndedAt.Local().Format("2006-01-02 15:04"),
		r.DictID,
		chapter,
		FormatDuration(r.TimeSeconds),
		fmt.Sprintf("%d", r.WPM),
		fmt.Sprintf("%d%%", r.Accuracy),
		fmt.Sprintf("%d", r.WordCount),
		fmt.Sprintf("%d", r.WrongCount),
	}
}

// RenderWeakWords prints the words with the highest error rate.
func RenderWeakWords(w io.Writer, aggs []model.WordAggregate) error {
	if len(aggs) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Weak Words"); err != nil {
		return err
	}
	headers := []string{"Word", "Attempts", "Mistakes", "Error Rate"}
	rows := make([][]string, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, []string{
			agg.Word,
			fmt.Sprintf("%d", agg.Attempts),
			fmt.Sprintf("%d", agg.Wrong),
			fmt.Sprintf("%.2f", errorRate(agg)),
		})
	}
	for _, line := range alignTable(headers, rows, map[int]bool{1: true, 2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// FormatDuration renders seconds as mm:ss, or h:mm:ss past an hour.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	if seconds >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
