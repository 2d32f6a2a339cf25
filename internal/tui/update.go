package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/wachat-insight/internal/content"
	"github.com/Zuo-Peng/wachat-insight/internal/index"
	"github.com/Zuo-Peng/wachat-insight/internal/search"
)

// labelCycle is what shift+tab steps through; "" shows every sentiment.
var labelCycle = append([]string{""}, content.SentimentClasses...)

func loadSendersCmd(db *index.DB) tea.Cmd {
	return func() tea.Msg {
		counts, err := db.Senders()
		if err != nil {
			return sendersLoadedMsg{}
		}
		names := make([]string, len(counts))
		for i, c := range counts {
			names[i] = c.Sender
		}
		return sendersLoadedMsg{senders: names}
	}
}

// options applies the sender and sentiment picked in the TUI on top of the
// command-line filters.
func (m model) options() search.Options {
	opts := m.baseOpts
	if s := m.senders[m.senderSel]; s != "" {
		opts.Senders = []string{s}
	}
	if l := labelCycle[m.labelSel]; l != "" {
		opts.Label = l
	}
	return opts
}

func (m model) filterKey() string {
	return fmt.Sprintf("%d/%d", m.senderSel, m.labelSel)
}

// filterSummary describes the active filters for the status bar.
func (m model) filterSummary() string {
	opts := m.options()
	var parts []string
	if len(opts.Senders) > 0 {
		parts = append(parts, "from "+strings.Join(opts.Senders, ", "))
	}
	if opts.Label != "" {
		parts = append(parts, opts.Label)
	}
	switch {
	case opts.Since != "" && opts.Until != "":
		parts = append(parts, opts.Since+".."+opts.Until)
	case opts.Since != "":
		parts = append(parts, "since "+opts.Since)
	case opts.Until != "":
		parts = append(parts, "until "+opts.Until)
	}
	return strings.Join(parts, ", ")
}

// runQuery searches for query under the current filters. In list mode an
// empty query lists every message newest first.
func (m model) runQuery(query string) tea.Cmd {
	db := m.db
	opts := m.options()
	opts.Query = query
	filters := m.filterKey()
	listAll := m.mode == modeList && query == ""
	return func() tea.Msg {
		msg := searchResultMsg{query: query, filters: filters}
		switch {
		case listAll:
			msg.results, msg.err = search.ListAll(db, opts)
		case query != "":
			msg.results, msg.err = search.Search(db, opts)
		}
		return msg
	}
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	half := m.panelHeight() / 2

	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Copy):
		if r, ok := m.selected(); ok {
			m.picked = &r
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case key.Matches(msg, keys.Up):
		return m.moveCursor(m.cursor - 1)

	case key.Matches(msg, keys.Down):
		return m.moveCursor(m.cursor + 1)

	case key.Matches(msg, keys.NextSender):
		m.senderSel = (m.senderSel + 1) % len(m.senders)
		return m, m.runQuery(m.query)

	case key.Matches(msg, keys.NextLabel):
		m.labelSel = (m.labelSel + 1) % len(labelCycle)
		return m, m.runQuery(m.query)

	case key.Matches(msg, keys.ScrollUp):
		m.preview.LineUp(half)
		return m, nil

	case key.Matches(msg, keys.ScrollDown):
		m.preview.LineDown(half)
		return m, nil

	case key.Matches(msg, keys.PageUp):
		m.preview.LineUp(m.panelHeight())
		return m, nil

	case key.Matches(msg, keys.PageDown):
		m.preview.LineDown(m.panelHeight())
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	if q := m.filterInput.Value(); q != m.query {
		m.query = q
		return m, tea.Batch(cmd, m.scheduleDebouncedSearch(q))
	}
	return m, cmd
}

func (m model) selected() (search.Result, bool) {
	if m.cursor < 0 || m.cursor >= len(m.results) {
		return search.Result{}, false
	}
	return m.results[m.cursor], true
}

func (m model) moveCursor(to int) (tea.Model, tea.Cmd) {
	if to < 0 || to >= len(m.results) || to == m.cursor {
		return m, nil
	}
	m.cursor = to
	m.adjustListScroll(m.itemRows())
	return m, m.loadCurrentPreview()
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.ready || len(m.results) == 0 {
		return m, nil
	}

	region, item := m.hitTest(msg.X, msg.Y)
	wheel := msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown

	switch {
	case region == regionList && msg.Button == tea.MouseButtonWheelUp:
		if m.listOffset > 0 {
			m.listOffset--
		}
	case region == regionList && msg.Button == tea.MouseButtonWheelDown:
		maxOffset := len(m.results) - m.itemRows()/linesPerItem
		if m.listOffset < maxOffset {
			m.listOffset++
		}
	case region == regionList && msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		if item >= 0 {
			return m.moveCursor(item)
		}
	case region == regionPreview && wheel:
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	}
	return m, nil
}

type mouseRegion int

const (
	regionNone mouseRegion = iota
	regionList
	regionPreview
)

// hitTest maps terminal coordinates to a panel and, inside the list, to a
// result index (-1 on the column header).
func (m model) hitTest(x, y int) (mouseRegion, int) {
	top := 2 // input row and top border
	if y < top || y >= top+m.panelHeight() {
		return regionNone, -1
	}

	lw := m.listWidth()
	switch {
	case x >= 1 && x <= lw:
		row := y - top - listHeaderLines
		if row < 0 {
			return regionList, -1
		}
		return regionList, m.listOffset + row/linesPerItem
	case x > lw+2:
		return regionPreview, -1
	}
	return regionNone, -1
}

// applyResults installs a finished search unless the query or filters moved
// on while it ran.
func (m model) applyResults(msg searchResultMsg) (tea.Model, tea.Cmd) {
	if msg.query != m.query || msg.filters != m.filterKey() {
		return m, nil
	}
	m.cursor = 0
	m.listOffset = 0
	m.previewKey = ""
	if msg.err != nil {
		m.results = nil
		m.preview.SetContent("Error: " + msg.err.Error())
		return m, nil
	}
	m.results = msg.results
	if len(m.results) == 0 {
		m.preview.SetContent("")
		return m, nil
	}
	return m, m.loadCurrentPreview()
}

// applyPreview shows a rendered conversation if it still belongs to the
// selected message, scrolled to the hit.
func (m model) applyPreview(msg previewRenderedMsg) model {
	k := previewCacheKey(msg.archive, msg.idx)
	r, ok := m.selected()
	if k == m.previewKey || (ok && k != previewCacheKey(r.Archive, r.Idx)) {
		return m
	}
	if msg.err != nil {
		m.preview.SetContent("Preview error: " + msg.err.Error())
	} else {
		m.preview.SetContent(msg.content)
		if msg.hitLine > 0 {
			m.preview.SetYOffset(msg.hitLine)
		} else {
			m.preview.GotoTop()
		}
	}
	m.previewKey = k
	return m
}

func (m model) loadCurrentPreview() tea.Cmd {
	r, ok := m.selected()
	if !ok || previewCacheKey(r.Archive, r.Idx) == m.previewKey {
		return nil
	}
	return loadPreviewCmd(m.db, r, m.query, m.previewWidth())
}
