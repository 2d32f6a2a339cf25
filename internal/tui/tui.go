package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Zuo-Peng/wachat-insight/internal/index"
	"github.com/Zuo-Peng/wachat-insight/internal/search"
)

const debounceDelay = 200 * time.Millisecond

type tuiMode int

const (
	modeSearch tuiMode = iota
	modeList
)

type searchResultMsg struct {
	query   string
	filters string
	results []search.Result
	err     error
}

type debounceTickMsg struct {
	query string
}

type sendersLoadedMsg struct {
	senders []string
}

// model is the message browser: a query box, a list of matching messages
// and the conversation around the selected one.
type model struct {
	db       *index.DB
	baseOpts search.Options
	mode     tuiMode
	query    string

	// senders and labels are the values tab and shift+tab cycle through;
	// index 0 means no extra filter.
	senders   []string
	senderSel int
	labelSel  int

	results     []search.Result
	cursor      int
	listOffset  int
	filterInput textinput.Model
	preview     viewport.Model
	previewKey  string // "archive:idx" to avoid duplicate renders
	width       int
	height      int
	ready       bool
	quitting    bool
	picked      *search.Result
}

func initialModel(db *index.DB, query string, opts search.Options) model {
	ti := textinput.New()
	ti.Placeholder = "Search messages..."
	ti.Focus()
	ti.SetValue(query)
	ti.Prompt = "> "
	ti.PromptStyle = styleInputPrompt
	ti.TextStyle = styleInput
	ti.CharLimit = 256

	return model{
		db:          db,
		baseOpts:    opts,
		query:       query,
		senders:     []string{""},
		filterInput: ti,
		preview:     viewport.New(0, 0),
	}
}

// Run starts the TUI and blocks until it exits. The message picked with
// Enter is copied to the clipboard.
func Run(db *index.DB, query string, opts search.Options) error {
	return run(db, initialModel(db, query, opts))
}

// RunList starts the TUI in list mode, showing all messages newest first.
func RunList(db *index.DB, opts search.Options) error {
	m := initialModel(db, "", opts)
	m.mode = modeList
	m.filterInput.Placeholder = "Filter..."
	return run(db, m)
}

func run(db *index.DB, m model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	fm := finalModel.(model)
	if fm.picked != nil {
		return copyMessage(db, fm.picked.Archive, fm.picked.Idx)
	}
	return nil
}

// copyMessage copies a record as "[ts] sender: message" to the clipboard,
// printing it instead when no clipboard is available.
func copyMessage(db *index.DB, archive string, idx int) error {
	rec, err := db.GetRecord(archive, idx)
	if err != nil {
		return fmt.Errorf("get record: %w", err)
	}
	if rec == nil {
		return fmt.Errorf("record not found: %s:%d", archive, idx)
	}

	text := FormatRecord(*rec)
	if err := clipboard.WriteAll(text); err != nil {
		fmt.Printf("%s\n", text)
		return nil
	}

	fmt.Printf("Copied to clipboard: %s\n", firstLine(text))
	return nil
}

// FormatRecord renders a stored record the way it is copied or exported as text.
func FormatRecord(r index.RecordRow) string {
	ts := strings.Replace(r.Ts, "T", " ", 1)
	if ts == "" {
		ts = "no time"
	}
	return fmt.Sprintf("[%s] %s: %s", ts, r.Sender, r.Message)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, loadSendersCmd(m.db)}
	if m.mode == modeList || m.query != "" {
		cmds = append(cmds, m.runQuery(m.query))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.preview = newViewport(m.previewWidth(), m.panelHeight())
		m.previewKey = ""
		return m, m.loadCurrentPreview()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case sendersLoadedMsg:
		m.senders = append([]string{""}, msg.senders...)
		return m, nil

	case debounceTickMsg:
		if msg.query != m.query {
			return m, nil
		}
		return m, m.runQuery(msg.query)

	case searchResultMsg:
		return m.applyResults(msg)

	case previewRenderedMsg:
		return m.applyPreview(msg), nil
	}
	return m, nil
}

func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	listW := m.listWidth()
	previewW := m.previewWidth()
	panelH := m.panelHeight()

	listPanel := stylePanelBorder.
		Width(listW).
		Height(panelH).
		Render(m.renderList(listW, panelH))

	m.preview.Width = previewW
	m.preview.Height = panelH
	previewPanel := styleActiveBorder.
		Width(previewW).
		Height(panelH).
		Render(m.preview.View())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, listPanel, previewPanel)
	return lipgloss.JoinVertical(lipgloss.Left, m.filterInput.View(), panels, m.statusBar())
}

func (m model) listWidth() int {
	if m.width <= 0 {
		return 40
	}
	w := m.width*40/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) previewWidth() int {
	if m.width <= 0 {
		return 60
	}
	w := m.width*60/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

// panelHeight leaves room for the input row, the status bar and borders.
func (m model) panelHeight() int {
	if m.height <= 0 {
		return 20
	}
	h := m.height - 6
	if h < 5 {
		h = 5
	}
	return h
}

// itemRows is the number of list rows available for results, below the
// column header.
func (m model) itemRows() int {
	return m.panelHeight() - listHeaderLines
}

func (m model) statusBar() string {
	parts := []string{fmt.Sprintf("%d messages", len(m.results))}
	if f := m.filterSummary(); f != "" {
		parts = append(parts, f)
	}
	parts = append(parts,
		"tab sender",
		"S-tab sentiment",
		"C-u/C-d scroll",
		"Enter copy",
		"Esc quit",
	)
	return styleStatusBar.Render(strings.Join(parts, " | "))
}

func (m model) scheduleDebouncedSearch(query string) tea.Cmd {
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceTickMsg{query: query}
	})
}

func previewCacheKey(archive string, idx int) string {
	return fmt.Sprintf("%s:%d", archive, idx)
}
