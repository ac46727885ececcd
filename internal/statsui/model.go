// Package statsui provides the Bubble Tea records interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/qwerty/internal/model"
	"github.com/verte-zerg/qwerty/internal/stats"
)

const (
	tabOverview = iota
	tabRecords
	tabWeakWords
)

const (
	fieldDict = iota
	fieldSince
	fieldLast
	fieldWindow
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#5FAFD7"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#A8A8A8")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#444444"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#767676"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#D75F5F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#444444"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EEEEEE")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#BCBCBC"))
)

type keyMap struct {
	Prev   key.Binding
	Next   key.Binding
	Scroll key.Binding
	Wider  key.Binding
	Narrow key.Binding
	Filter key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Scroll, k.Narrow, k.Wider, k.Filter, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Prev:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev tab")),
	Next:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next tab")),
	Scroll: key.NewBinding(key.WithKeys("up", "down", "pgup", "pgdown"), key.WithHelp("↑/↓", "scroll")),
	Wider:  key.NewBinding(key.WithKeys("="), key.WithHelp("=", "wider window")),
	Narrow: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "narrower window")),
	Filter: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model implements the Bubble Tea records UI.
type Model struct {
	src stats.RecordSource
	cfg model.RecordsConfig

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model
	records   table.Model
	weak      table.Model
	help      help.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a records UI model.
func NewModel(src stats.RecordSource, cfg model.RecordsConfig) *Model {
	if cfg.Window < 1 {
		cfg.Window = 1
	}
	m := &Model{
		src:      src,
		cfg:      cfg,
		tabs:     []string{"Overview", "Records", "Weak Words"},
		overview: viewport.New(0, 0),
		records:  newTable(recordColumns()),
		weak:     newTable(weakColumns()),
		help:     help.New(),
	}
	m.initInputs()
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.updateLayout()
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Prev):
			m.moveTab(-1)
			return m, tea.ClearScreen
		case key.Matches(msg, keys.Next):
			m.moveTab(1)
			return m, tea.ClearScreen
		case key.Matches(msg, keys.Wider):
			m.cfg.Window = nextWindow(m.cfg.Window)
			m.refreshReport()
			return m, nil
		case key.Matches(msg, keys.Narrow):
			m.cfg.Window = prevWindow(m.cfg.Window)
			m.refreshReport()
			return m, nil
		case key.Matches(msg, keys.Filter):
			return m.startFilter()
		}
		var cmd tea.Cmd
		switch m.activeTab {
		case tabRecords:
			m.records, cmd = m.records.Update(msg)
		case tabWeakWords:
			m.weak, cmd = m.weak.Update(msg)
		default:
			m.overview, cmd = m.overview.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Dictionary: "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
		newFilterInput("Curve window: "),
	}
	m.setInputsFromConfig()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	m.filterInputs[fieldDict].SetValue(m.cfg.DictID)
	since := ""
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	m.filterInputs[fieldSince].SetValue(since)
	last := ""
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	m.filterInputs[fieldLast].SetValue(last)
	m.filterInputs[fieldWindow].SetValue(strconv.Itoa(m.cfg.Window))
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(lipgloss.Height(activeNavStyle.Render("X")), 1)
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(m.height-headerHeight-footerHeight, 1)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	for _, t := range []*table.Model{&m.records, &m.weak} {
		t.SetWidth(m.width)
		t.SetHeight(max(bodyHeight-1, 1))
	}
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = max(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = (m.activeTab + delta + count) % count
	m.records.Blur()
	m.weak.Blur()
	switch m.activeTab {
	case tabRecords:
		m.records.Focus()
	case tabWeakWords:
		m.weak.Focus()
	}
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.src, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.report = stats.Report{}
	} else {
		m.errMsg = ""
		m.report = report
	}
	m.records.SetRows(recordRows(m.report.Records))
	m.weak.SetRows(weakRows(m.report.WeakWords))
	m.updateLayout()
	m.renderOverview()
}

func (m *Model) renderOverview() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	if m.errMsg != "" {
		m.overview.SetContent("Failed to load records.")
		return
	}
	records := m.report.Records
	if len(records) == 0 {
		m.overview.SetContent("No chapter records found.")
		return
	}
	var buf bytes.Buffer
	if err := stats.RenderCurves(&buf, records, m.cfg.Window, width, true); err != nil {
		m.overview.SetContent(fmt.Sprintf("Failed to render curves: %v", err))
		return
	}
	content := renderSummaryCards(records, width)
	if curves := strings.TrimRight(buf.String(), "\n"); curves != "" {
		content += "\n\n" + curves
	}
	m.overview.SetContent(content)
}

func renderSummaryCards(records []model.ChapterRecord, width int) string {
	var totalWPM, totalAcc, totalTime int
	best := 0
	for _, r := range records {
		totalWPM += r.WPM
		totalAcc += r.Accuracy
		totalTime += r.TimeSeconds
		best = max(best, r.WPM)
	}
	count := float64(len(records))
	cards := []string{
		metricCard("Chapters", strconv.Itoa(len(records))),
		metricCard("Avg WPM", fmt.Sprintf("%.1f", float64(totalWPM)/count)),
		metricCard("Best WPM", strconv.Itoa(best)),
		metricCard("Avg Acc", fmt.Sprintf("%.1f%%", float64(totalAcc)/count)),
		metricCard("Time", stats.FormatDuration(totalTime)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	return cardStyle.Render(cardTitleStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

func (m *Model) renderHeader() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	return tabs + "\n" + headerStyle.Render(truncateLine(m.filterSummary(), m.width))
}

func (m *Model) filterSummary() string {
	dict := m.cfg.DictID
	if dict == "" {
		dict = "any"
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	return fmt.Sprintf("Settings: dict=%s  since=%s  last=%s  window=%d", dict, since, last, m.cfg.Window)
}

func (m *Model) renderBody() string {
	if m.filterMode {
		lines := []string{"Settings (enter to apply, esc to cancel)"}
		for _, input := range m.filterInputs {
			lines = append(lines, input.View())
		}
		if m.filterError != "" {
			lines = append(lines, errorStyle.Render(m.filterError))
		}
		return strings.Join(lines, "\n")
	}
	switch m.activeTab {
	case tabRecords:
		if len(m.report.Records) == 0 {
			return "No chapter records found."
		}
		return tableMutedStyle.Render(m.records.View())
	case tabWeakWords:
		if m.cfg.DictID == "" {
			return "Filter by dictionary (/) to list weak words."
		}
		if len(m.report.WeakWords) == 0 {
			return "No mistyped words recorded."
		}
		return tableMutedStyle.Render(m.weak.View())
	default:
		return m.overview.View()
	}
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	footer := m.help.View(keys)
	if m.errMsg != "" {
		footer += "\n" + errorStyle.Render(m.errMsg)
	}
	return footer
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		cfg, err := m.parseFilter()
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.cfg = cfg
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	m.filterIndex = (idx + count) % count
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) parseFilter() (model.RecordsConfig, error) {
	cfg := model.RecordsConfig{DictID: strings.TrimSpace(m.filterInputs[fieldDict].Value())}

	if raw := strings.TrimSpace(m.filterInputs[fieldSince].Value()); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return model.RecordsConfig{}, fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		cfg.Since = &parsed
	}
	if raw := strings.TrimSpace(m.filterInputs[fieldLast].Value()); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return model.RecordsConfig{}, fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		cfg.Last = parsed
	}
	cfg.Window = 1
	if raw := strings.TrimSpace(m.filterInputs[fieldWindow].Value()); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return model.RecordsConfig{}, fmt.Errorf("invalid curve window (use integer >= 1)")
		}
		cfg.Window = parsed
	}
	return cfg, nil
}

func newTable(columns []table.Column) table.Model {
	t := table.New(table.WithColumns(columns), table.WithHeight(1))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#444444")).
		Foreground(lipgloss.Color("#C6C6C6")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#EEEEEE")).
		Bold(true)
	t.SetStyles(styles)
	return t
}

func recordColumns() []table.Column {
	return []table.Column{
		{Title: "Ended", Width: 16},
		{Title: "Dictionary", Width: 14},
		{Title: "Chapter", Width: 7},
		{Title: "Time", Width: 8},
		{Title: "WPM", Width: 4},
		{Title: "Accuracy", Width: 8},
		{Title: "Words", Width: 5},
		{Title: "Mistakes", Width: 8},
	}
}

// recordRows lists the newest record first.
func recordRows(records []model.ChapterRecord) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		rows = append(rows, table.Row(stats.RecordRow(records[i])))
	}
	return rows
}

func weakColumns() []table.Column {
	return []table.Column{
		{Title: "Word", Width: 20},
		{Title: "Attempts", Width: 8},
		{Title: "Mistakes", Width: 8},
	}
}

func weakRows(aggs []model.WordAggregate) []table.Row {
	rows := make([]table.Row, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, table.Row{agg.Word, strconv.Itoa(agg.Attempts), strconv.Itoa(agg.Wrong)})
	}
	return rows
}

func nextWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
