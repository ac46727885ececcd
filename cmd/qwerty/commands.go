package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/qwerty/internal/chapter"
	"github.com/verte-zerg/qwerty/internal/config"
	"github.com/verte-zerg/qwerty/internal/model"
	"github.com/verte-zerg/qwerty/internal/progress"
	"github.com/verte-zerg/qwerty/internal/stats"
	"github.com/verte-zerg/qwerty/internal/statsui"
	"github.com/verte-zerg/qwerty/internal/store"
	"github.com/verte-zerg/qwerty/internal/usagelog"
	"github.com/verte-zerg/qwerty/internal/wordlist"
	"github.com/verte-zerg/qwerty/internal/wordsource"
)

var (
	importID            string
	importName          string
	importChapterLength int

	recordsDict   string
	recordsSince  string
	recordsLast   int
	recordsWindow int
	recordsPlain  bool
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# qwerty configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# dict = %q              # Dictionary id (custom://<id> for imported ones)
# chapter = 0             # Chapter number, starting at 0
# chapter-length = %d     # Words per chapter for dictionaries without their own
# shuffle = false         # Shuffle the words of a fresh chapter
# review = false          # Replay previously mistyped words
# review-index = 0        # Word to start a review at
# ignore-case = false     # Accept letters regardless of case

[paths]
# dicts = %q
# db = %q
# usage-log = %q
# log = %q
`,
		defaultDict,
		chapter.DefaultLength,
		config.DefaultDictDir(),
		config.DefaultDBPath(),
		config.DefaultUsageLogPath(),
		config.DefaultLogPath(),
	)
}

// withStore loads the config file, opens the database and hands both to fn.
func withStore(fn func(ctx context.Context, paths config.Paths, st *store.Store) error) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	paths := fileCfg.ResolvePaths()
	st, err := store.Open(paths.DB)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	return fn(context.Background(), paths, st)
}

func newDictsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dicts",
		Short: "List dictionaries",
		Args:  cobra.NoArgs,
		RunE:  runDictsCmd,
	}

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a JSON or text dictionary",
		Args:  cobra.ExactArgs(1),
		RunE:  runDictsImportCmd,
	}
	importCmd.Flags().StringVar(&importID, "id", "", "dictionary id (default: file name)")
	importCmd.Flags().StringVar(&importName, "name", "", "display name")
	importCmd.Flags().IntVar(&importChapterLength, "chapter-length", 0, "words per chapter")

	removeCmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an imported dictionary",
		Args:  cobra.ExactArgs(1),
		RunE:  runDictsRemoveCmd,
	}

	cmd.AddCommand(importCmd, removeCmd)
	return cmd
}

func runDictsCmd(cmd *cobra.Command, _ []string) error {
	return withStore(func(ctx context.Context, paths config.Paths, st *store.Store) error {
		src := wordsource.New(paths.Dicts, st, st, 0)
		dicts, err := src.List(ctx)
		if err != nil {
			return err
		}
		if len(dicts) == 0 {
			logErrf("No dictionaries found in %s. Import one with: qwerty dicts import <file>\n", paths.Dicts)
			return fmt.Errorf("no dictionaries found")
		}
		for _, d := range dicts {
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-24s %5d words %3d chapters\n",
				d.ID, d.Name, len(d.Words), d.Chapters()); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		return nil
	})
}

func runDictsImportCmd(cmd *cobra.Command, args []string) error {
	path := args[0]
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	var dict wordsource.CustomDict
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		words, err := wordlist.ParseWords(bytes.NewReader(raw))
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		dict.Words = words
	} else {
		dict, err = wordsource.ParseDictFile(raw)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	dict.ID = importID
	if dict.ID == "" {
		dict.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if importName != "" {
		dict.Name = importName
	}
	if importChapterLength > 0 {
		dict.ChapterLength = importChapterLength
	}

	return withStore(func(ctx context.Context, paths config.Paths, st *store.Store) error {
		src := wordsource.New(paths.Dicts, st, st, 0)
		ref, err := src.AddCustomDict(ctx, dict)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Imported %d words as %s\n", len(dict.Words), ref); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	})
}

func runDictsRemoveCmd(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, paths config.Paths, st *store.Store) error {
		src := wordsource.New(paths.Dicts, st, st, 0)
		if err := src.RemoveCustomDict(ctx, args[0]); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0]); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	})
}

func newProgressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Inspect the unfinished chapter",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the saved unfinished chapter",
		Args:  cobra.NoArgs,
		RunE:  runProgressShowCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Discard the saved unfinished chapter",
		Args:  cobra.NoArgs,
		RunE:  runProgressClearCmd,
	})
	return cmd
}

func runProgressShowCmd(cmd *cobra.Command, _ []string) error {
	return withStore(func(ctx context.Context, _ config.Paths, st *store.Store) error {
		p, ok := progress.New(st, progress.WithLogger(logErrf)).Peek(ctx)
		if !ok {
			logErrln("No unfinished chapter saved.")
			return nil
		}
		_, err := fmt.Fprint(cmd.OutOrStdout(), formatProgress(p))
		if err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	})
}

func formatProgress(p model.SavedProgress) string {
	mode := "chapter"
	if p.IsReviewMode {
		mode = "review"
	}
	return fmt.Sprintf(
		"Dictionary: %s\nChapter:    %d (%s)\nNext word:  %d\nCompleted:  %d words\nTime:       %s\nWPM:        %d\nAccuracy:   %d%%\n",
		p.DictID,
		p.Chapter,
		mode,
		p.WordIndex+1,
		len(p.UserInputLogs),
		stats.FormatDuration(p.TimerData.Time),
		p.TimerData.WPM,
		p.TimerData.Accuracy,
	)
}

func runProgressClearCmd(cmd *cobra.Command, _ []string) error {
	return withStore(func(ctx context.Context, _ config.Paths, st *store.Store) error {
		if err := progress.New(st).Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear progress: %w", err)
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), "Progress cleared."); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	})
}

func newRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Show chapter records",
		Args:  cobra.NoArgs,
		RunE:  runRecordsCmd,
	}
	cmd.Flags().StringVar(&recordsDict, "dict", "", "dictionary filter")
	cmd.Flags().StringVar(&recordsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&recordsLast, "last", 0, "limit to last N chapters")
	cmd.Flags().IntVar(&recordsWindow, "window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&recordsPlain, "plain", false, "print a text report instead of the TUI")
	return cmd
}

func runRecordsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if recordsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", recordsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if recordsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if recordsWindow < 1 {
		return fmt.Errorf("--window must be >= 1")
	}
	cfg := model.RecordsConfig{
		DictID: recordsDict,
		Since:  sinceTime,
		Last:   recordsLast,
		Window: recordsWindow,
	}

	return withStore(func(ctx context.Context, _ config.Paths, st *store.Store) error {
		if recordsPlain {
			report, err := stats.BuildReport(ctx, st, cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return report.Render(out, stats.TerminalWidth(out), stats.ShouldUseColor(out))
		}
		program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run records TUI: %w", err)
		}
		return nil
	})
}

func newUsageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Print the archived usage log",
		Args:  cobra.NoArgs,
		RunE:  runUsageCmd,
	}
}

func runUsageCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	archive := usagelog.New(fileCfg.ResolvePaths().UsageLog)
	entries, err := archive.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", archive.Path(), err)
	}
	return stats.RenderUsage(cmd.OutOrStdout(), entries)
}
