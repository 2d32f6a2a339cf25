package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/wachat-insight/internal/pipeline"
	"github.com/Zuo-Peng/wachat-insight/internal/render"
)

// dashModel shows a report one section at a time: section titles on the
// left, the selected section on the right.
type dashModel struct {
	title    string
	sections []render.Section
	cursor   int
	body     viewport.Model
	status   string
	width    int
	height   int
	ready    bool
	quitting bool
}

func newDashModel(rep *pipeline.Report) dashModel {
	title := fmt.Sprintf("%d messages", rep.Metrics.TotalMessages)
	if !rep.Filter.IsZero() {
		title += " | " + rep.Filter.String()
	}
	m := dashModel{
		title:    title,
		sections: render.ReportSections(rep),
		body:     viewport.New(0, 0),
	}
	m.showSection()
	return m
}

// RunDashboard shows a report until the user quits. Enter copies the
// current section to the clipboard.
func RunDashboard(rep *pipeline.Report) error {
	p := tea.NewProgram(newDashModel(rep), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func (m dashModel) Init() tea.Cmd {
	return nil
}

func (m dashModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.body = newViewport(m.bodyWidth(), m.panelHeight())
		m.showSection()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit), key.Matches(msg, keys.Close):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.showSection()
			}

		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.sections)-1 {
				m.cursor++
				m.showSection()
			}

		case key.Matches(msg, keys.Copy):
			if len(m.sections) > 0 {
				s := m.sections[m.cursor]
				if err := clipboard.WriteAll(s.Body); err != nil {
					m.status = "clipboard unavailable: " + err.Error()
				} else {
					m.status = "copied " + s.Title
				}
			}

		case key.Matches(msg, keys.ScrollUp):
			m.body.LineUp(m.panelHeight() / 2)

		case key.Matches(msg, keys.ScrollDown):
			m.body.LineDown(m.panelHeight() / 2)

		case key.Matches(msg, keys.PageUp):
			m.body.LineUp(m.panelHeight())

		case key.Matches(msg, keys.PageDown):
			m.body.LineDown(m.panelHeight())
		}
		return m, nil

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.body, cmd = m.body.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *dashModel) showSection() {
	m.status = ""
	if len(m.sections) == 0 {
		m.body.SetContent("(empty report)")
		return
	}
	m.body.SetContent(m.sections[m.cursor].Body)
	m.body.GotoTop()
}

func (m dashModel) View() string {
	if m.quitting || !m.ready {
		return ""
	}
	navW := m.navWidth()
	panelH := m.panelHeight()

	var nav []string
	for i, s := range m.sections {
		line := runewidth.Truncate(s.Title, navW-2, "")
		if i == m.cursor {
			line = styleListSelected.Render("> " + line)
		} else {
			line = "  " + line
		}
		nav = append(nav, line)
	}
	navPanel := stylePanelBorder.
		Width(navW).
		Height(panelH).
		Render(strings.Join(nav, "\n"))

	m.body.Width = m.bodyWidth()
	m.body.Height = panelH
	bodyPanel := styleActiveBorder.
		Width(m.bodyWidth()).
		Height(panelH).
		Render(m.body.View())

	status := m.status
	if status == "" {
		status = "up/dn section | C-u/C-d scroll | Enter copy section | Esc quit"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		styleTitle.Render(m.title),
		lipgloss.JoinHorizontal(lipgloss.Top, navPanel, bodyPanel),
		styleStatusBar.Render(status),
	)
}

func (m dashModel) navWidth() int {
	return 22
}

func (m dashModel) bodyWidth() int {
	if m.width <= 0 {
		return 60
	}
	w := m.width - m.navWidth() - 8
	if w < 20 {
		w = 20
	}
	return w
}

func (m dashModel) panelHeight() int {
	if m.height <= 0 {
		return 20
	}
	// title (1) + status bar (1) + borders (4)
	h := m.height - 6
	if h < 5 {
		h = 5
	}
	return h
}
