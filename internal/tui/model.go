// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/qwerty/internal/model"
	"github.com/verte-zerg/qwerty/internal/session"
)

// noticeDuration is how long transient notices stay on screen.
const noticeDuration = 3 * time.Second

// Session is the controller surface driven by the typing screen.
type Session interface {
	State() session.State
	Identity() model.Identity
	StartTyping()
	Blur()
	ShowSkip(show bool)
	CompleteWord(ctx context.Context, log model.InputLog) error
	SkipWord(ctx context.Context) error
	SetIdentity(ctx context.Context, id model.Identity) (bool, error)
	Restart(ctx context.Context) error
	BeforeUnload(ctx context.Context) bool
	Close()
}

// Options describe what the typing screen shows around the session.
type Options struct {
	DictName   string
	Chapters   int
	IgnoreCase bool
	Restored   bool
	Logf       func(format string, args ...any)
}

type noticeExpiredMsg struct {
	seq int
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	sess Session
	opts Options

	width  int
	height int

	input      wordInput
	inputIndex int

	notice      string
	noticeSeq   int
	confirmQuit bool
}

var (
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cursorStyle    = pendingStyle.Underline(true)
	transStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	headerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	wordStyle      = lipgloss.NewStyle().Bold(true)
)

// NewModel constructs a typing TUI model around a mounted session.
func NewModel(sess Session, opts Options) *Model {
	if opts.Logf == nil {
		opts.Logf = func(string, ...any) {}
	}
	m := &Model{sess: sess, opts: opts, inputIndex: -1}
	m.syncInput()
	if opts.Restored {
		m.notice = "Progress restored"
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.notice != "" {
		return m.expireNotice()
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case clockMsg:
		msg.fire()
		return m, nil
	case tea.BlurMsg:
		m.sess.Blur()
		return m, nil
	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}
	m.confirmQuit = false

	st := m.sess.State()
	switch st.Phase() {
	case session.PhaseIdle:
		return m, nil
	case session.PhaseFinished:
		return m.handleFinishedKey(msg)
	case session.PhaseReady:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			m.sess.StartTyping()
		}
		return m, nil
	}

	ctx := context.Background()
	switch msg.Type {
	case tea.KeyEsc:
		m.sess.Blur()
		return m, nil
	case tea.KeyTab:
		if !st.IsShowSkip {
			return m, nil
		}
		if err := m.sess.SkipWord(ctx); err != nil {
			return m, m.showNotice(err.Error())
		}
		m.syncInput()
		return m, nil
	case tea.KeyBackspace, tea.KeyDelete:
		m.input.backspace()
		return m, nil
	case tea.KeySpace:
		return m.handleRunes(ctx, []rune{' '})
	case tea.KeyRunes:
		return m.handleRunes(ctx, msg.Runes)
	default:
		return m, nil
	}
}

func (m *Model) handleRunes(ctx context.Context, runes []rune) (tea.Model, tea.Cmd) {
	for _, r := range runes {
		switch m.input.press(r) {
		case pressMistake:
			if m.input.offerSkip() {
				m.sess.ShowSkip(true)
			}
		case pressComplete:
			err := m.sess.CompleteWord(ctx, m.input.log())
			m.syncInput()
			if err != nil {
				return m, m.showNotice(err.Error())
			}
			if m.sess.State().IsFinished {
				return m, nil
			}
		}
	}
	return m, nil
}

func (m *Model) handleFinishedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	switch {
	case msg.Type == tea.KeyEnter || msg.String() == "r":
		if err := m.sess.Restart(ctx); err != nil {
			return m, m.showNotice(err.Error())
		}
		m.inputIndex = -1
		m.syncInput()
		return m, nil
	case msg.String() == "n":
		id := m.sess.Identity()
		if id.ReviewMode || id.Chapter+1 >= m.opts.Chapters {
			return m, m.showNotice("No next chapter")
		}
		id.Chapter++
		if _, err := m.sess.SetIdentity(ctx, id); err != nil {
			return m, m.showNotice(err.Error())
		}
		m.inputIndex = -1
		m.syncInput()
		return m, nil
	case msg.String() == "q" || msg.Type == tea.KeyEsc:
		m.sess.Close()
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	ctx := context.Background()
	if !m.confirmQuit && m.sess.BeforeUnload(ctx) {
		m.confirmQuit = true
		m.sess.Blur()
		m.notice = "Progress saved. Press ctrl+c again to quit"
		return m, m.expireNotice()
	}
	m.sess.Close()
	return m, tea.Quit
}

// syncInput resets the keystroke tracker when the session moved to another
// word.
func (m *Model) syncInput() {
	st := m.sess.State()
	word, ok := st.CurrentWord()
	if !ok {
		m.input = wordInput{}
		m.inputIndex = -1
		return
	}
	if m.inputIndex == st.ChapterData.Index && len(m.input.target) > 0 {
		return
	}
	m.input = newWordInput(word.Name, m.opts.IgnoreCase)
	m.inputIndex = st.ChapterData.Index
}

func (m *Model) showNotice(text string) tea.Cmd {
	m.opts.Logf("%s\n", text)
	m.notice = text
	return m.expireNotice()
}

func (m *Model) expireNotice() tea.Cmd {
	m.noticeSeq++
	seq := m.noticeSeq
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

// View implements tea.Model.
func (m *Model) View() string {
	st := m.sess.State()
	var body string
	switch st.Phase() {
	case session.PhaseIdle:
		body = headerStyle.Render("Loading…")
	case session.PhaseFinished:
		body = m.renderResult(st)
	default:
		body = m.renderWord(st)
	}

	lines := []string{m.renderHeader()}
	if m.notice != "" {
		lines = append(lines, noticeStyle.Render(m.notice))
	}
	lines = append(lines, "", body)
	content := strings.Join(lines, "\n")
	footer := m.renderFooter(st)
	if m.width == 0 || m.height == 0 {
		return content + "\n\n" + footer
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	main := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return main + "\n" + footerLine
}

func (m *Model) renderHeader() string {
	id := m.sess.Identity()
	name := m.opts.DictName
	if name == "" {
		name = id.DictID
	}
	segments := []string{name}
	if id.ReviewMode {
		segments = append(segments, "review")
	} else {
		segments = append(segments, fmt.Sprintf("Chapter %d/%d", id.Chapter+1, max(m.opts.Chapters, 1)))
	}
	return headerStyle.Render(strings.Join(segments, " · "))
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	return max(int(float64(m.width)*0.70), 1)
}

func (m *Model) renderWord(st session.State) string {
	word, ok := st.CurrentWord()
	if !ok {
		return ""
	}
	cursor := -1
	if st.IsTyping {
		cursor = len(m.input.typed)
	}
	styled := buildWordRunes(m.input.target, m.input.typed, cursor, m.input.flash)
	lines := []string{wordStyle.Render(renderStyledRunes(styled))}

	if phones := phoneLine(word); phones != "" {
		lines = append(lines, headerStyle.Render(phones))
	}
	trans := strings.Join(word.Trans, "; ")
	lines = append(lines, wrapStyledRunes(buildTextRunes(trans, transStyle), m.contentWidth()))

	switch {
	case st.IsShowSkip:
		lines = append(lines, "", footerStyle.Render("Tab to skip this word"))
	case !st.IsTyping:
		lines = append(lines, "", footerStyle.Render("Press any key to start"))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func phoneLine(word model.Word) string {
	var parts []string
	if word.USPhone != "" {
		parts = append(parts, "US /"+word.USPhone+"/")
	}
	if word.UKPhone != "" {
		parts = append(parts, "UK /"+word.UKPhone+"/")
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderResult(st session.State) string {
	data := st.ChapterData
	wpm, acc := session.Metrics(data.CorrectCount, data.WrongCount, st.TimerData.Time)
	lines := []string{
		wordStyle.Render("Chapter complete"),
		"",
		fmt.Sprintf("Time %s  WPM %d  Accuracy %d%%", formatClock(st.TimerData.Time), wpm, acc),
		fmt.Sprintf("Words %d  Skipped %d  Mistakes %d", data.WordCount, st.Skipped(), data.WrongCount),
	}
	if missed := missedWords(data.UserInputLogs); len(missed) > 0 {
		lines = append(lines, incorrectStyle.Render("Missed: "+strings.Join(missed, ", ")))
	}
	lines = append(lines, "", footerStyle.Render("enter repeat · n next chapter · q quit"))
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func missedWords(logs []model.InputLog) []string {
	var out []string
	for _, log := range logs {
		if log.WrongCount > 0 {
			out = append(out, log.Word)
		}
	}
	return out
}

// renderFooter draws the speed panel and chapter progress.
func (m *Model) renderFooter(st session.State) string {
	data := st.ChapterData
	if len(data.Words) == 0 {
		return ""
	}
	timer := st.TimerData
	progress := data.Index * 100 / len(data.Words)
	segments := []string{
		"Time " + formatClock(timer.Time),
		fmt.Sprintf("Input %d", data.CorrectCount+data.WrongCount),
		fmt.Sprintf("WPM %d", timer.WPM),
		fmt.Sprintf("Correct %d", data.CorrectCount),
		fmt.Sprintf("Accuracy %d%%", timer.Accuracy),
		fmt.Sprintf("%d / %d · %d%%", data.Index, len(data.Words), progress),
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func formatClock(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Run starts the typing screen and blocks until it exits.
func Run(sess Session, clock *ProgramClock, opts Options) error {
	program := tea.NewProgram(NewModel(sess, opts), tea.WithAltScreen(), tea.WithReportFocus())
	clock.Attach(program)
	defer clock.Attach(nil)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
