// Package main provides the CLI entrypoint for qwerty.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/qwerty/internal/chapter"
	"github.com/verte-zerg/qwerty/internal/config"
	"github.com/verte-zerg/qwerty/internal/controller"
	"github.com/verte-zerg/qwerty/internal/generator"
	"github.com/verte-zerg/qwerty/internal/model"
	"github.com/verte-zerg/qwerty/internal/progress"
	"github.com/verte-zerg/qwerty/internal/store"
	"github.com/verte-zerg/qwerty/internal/tui"
	"github.com/verte-zerg/qwerty/internal/usagelog"
	"github.com/verte-zerg/qwerty/internal/wordsource"
)

const (
	defaultDict        = "cet4"
	defaultCurveWindow = 5
)

var (
	practiceDict          string
	practiceChapter       int
	practiceChapterLength int
	practiceShuffle       bool
	practiceReview        bool
	practiceReviewIndex   int
	practiceIgnoreCase    bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "qwerty",
		Short:         "TUI vocabulary typing trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceDict, "dict", defaultDict, "dictionary id (custom://<id> for imported ones)")
	rootCmd.Flags().IntVar(&practiceChapter, "chapter", 0, "chapter number, starting at 0")
	rootCmd.Flags().IntVar(&practiceChapterLength, "chapter-length", chapter.DefaultLength, "words per chapter for dictionaries without their own")
	rootCmd.Flags().BoolVar(&practiceShuffle, "shuffle", false, "shuffle the words of a fresh chapter")
	rootCmd.Flags().BoolVar(&practiceReview, "review", false, "replay previously mistyped words")
	rootCmd.Flags().IntVar(&practiceReviewIndex, "review-index", 0, "word to start a review at")
	rootCmd.Flags().BoolVar(&practiceIgnoreCase, "ignore-case", false, "accept letters regardless of case")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newDictsCmd())
	rootCmd.AddCommand(newProgressCmd())
	rootCmd.AddCommand(newRecordsCmd())
	rootCmd.AddCommand(newUsageCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "dict", &practiceDict, fileCfg.Practice.Dict)
	applyIntConfig(cmd, "chapter", &practiceChapter, fileCfg.Practice.Chapter)
	applyIntConfig(cmd, "chapter-length", &practiceChapterLength, fileCfg.Practice.ChapterLength)
	applyBoolConfig(cmd, "shuffle", &practiceShuffle, fileCfg.Practice.Shuffle)
	applyBoolConfig(cmd, "review", &practiceReview, fileCfg.Practice.Review)
	applyIntConfig(cmd, "review-index", &practiceReviewIndex, fileCfg.Practice.ReviewIndex)
	applyBoolConfig(cmd, "ignore-case", &practiceIgnoreCase, fileCfg.Practice.IgnoreCase)

	cfg := model.Config{
		DictID:        practiceDict,
		Chapter:       practiceChapter,
		ChapterLength: practiceChapterLength,
		Shuffle:       practiceShuffle,
		Review:        practiceReview,
		ReviewIndex:   practiceReviewIndex,
		IgnoreCase:    practiceIgnoreCase,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	paths := fileCfg.ResolvePaths()
	diag, err := openDiagLog(paths.Log)
	if err != nil {
		return err
	}
	defer diag.Close()

	st, err := store.Open(paths.DB)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	src := wordsource.New(paths.Dicts, st, st, cfg.ChapterLength)
	dict, err := resolveDictionary(ctx, src, &cfg, paths.Dicts)
	if err != nil {
		return err
	}
	if !cfg.Review && cfg.Chapter >= dict.Chapters() {
		return fmt.Errorf("--chapter must be < %d for %s", dict.Chapters(), dict.ID)
	}

	opts := []controller.Option{
		controller.WithReviewIndex(cfg.ReviewIndex),
		controller.WithLogger(diag.Logf),
	}
	if cfg.Shuffle {
		opts = append(opts, controller.WithShuffler(generator.New()))
	}
	clock := &tui.ProgramClock{}
	ctrl := controller.New(cfg.Identity(), controller.Deps{
		Words:    src,
		Progress: progress.New(st, progress.WithLogger(diag.Logf)),
		Recorder: st,
		Uploader: usagelog.New(paths.UsageLog),
		Review:   src,
		Clock:    clock,
	}, opts...)
	defer ctrl.Close()

	restored, err := ctrl.Mount(ctx)
	if err != nil {
		if errors.Is(err, wordsource.ErrNoReviewWords) {
			return fmt.Errorf("%w for %s; practice a chapter first", err, dict.ID)
		}
		return fmt.Errorf("failed to load chapter: %w", err)
	}

	return tui.Run(ctrl, clock, tui.Options{
		DictName:   dict.Name,
		Chapters:   dict.Chapters(),
		IgnoreCase: cfg.IgnoreCase,
		Restored:   restored,
		Logf:       diag.Logf,
	})
}

// resolveDictionary loads the configured dictionary. An unknown id falls
// back to the first available dictionary at chapter 0.
func resolveDictionary(ctx context.Context, src *wordsource.Source, cfg *model.Config, dir string) (wordsource.Dictionary, error) {
	dict, err := src.Dictionary(ctx, cfg.DictID)
	if err == nil {
		return dict, nil
	}
	if !errors.Is(err, wordsource.ErrDictNotFound) {
		return wordsource.Dictionary{}, err
	}
	dicts, lerr := src.List(ctx)
	if lerr != nil {
		return wordsource.Dictionary{}, lerr
	}
	if len(dicts) == 0 {
		return wordsource.Dictionary{}, fmt.Errorf("no dictionaries found in %s\nImport one with: qwerty dicts import <file>", dir)
	}
	logErrf("dictionary %q not found; using %s\n", cfg.DictID, dicts[0].ID)
	cfg.DictID = dicts[0].ID
	cfg.Chapter = 0
	return dicts[0], nil
}

func validateConfig(cfg model.Config) error {
	if cfg.DictID == "" {
		return fmt.Errorf("--dict must not be empty")
	}
	if cfg.Chapter < 0 {
		return fmt.Errorf("--chapter must be >= 0")
	}
	if cfg.ChapterLength <= 0 {
		return fmt.Errorf("--chapter-length must be > 0")
	}
	if cfg.ReviewIndex < 0 {
		return fmt.Errorf("--review-index must be >= 0")
	}
	return nil
}

// diagLog appends timestamped diagnostics to a file so they do not
// interfere with the alternate screen.
type diagLog struct {
	mu   sync.Mutex
	file *os.File
}

func openDiagLog(path string) (*diagLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	return &diagLog{file: file}, nil
}

func (l *diagLog) Logf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := fmt.Fprintf(l.file, "%s "+format, append([]any{time.Now().Format(time.RFC3339)}, args...)...); err != nil {
		// Best-effort diagnostics.
		_ = err
	}
}

func (l *diagLog) Close() {
	if cerr := l.file.Close(); cerr != nil {
		logErrf("failed to close log: %v\n", cerr)
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
