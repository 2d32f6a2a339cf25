package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/wachat-insight/internal/content"
	"github.com/Zuo-Peng/wachat-insight/internal/search"
)

// linesPerItem is the number of terminal lines each result occupies.
const linesPerItem = 2

// listHeaderLines is the column header above the results.
const listHeaderLines = 1

const (
	timeCol   = 11 // "MM-DD HH:MM"
	senderCol = 16
)

// listHeader labels the columns of formatResultLine's first line.
func listHeader(width int) string {
	h := "  " + runewidth.FillRight("time", timeCol) + " " + runewidth.FillRight("sender", senderWidth(width)) + " sentiment"
	return styleTitle.Render(runewidth.Truncate(h, width, ""))
}

// senderWidth is the sender column width for a list of the given width.
func senderWidth(width int) int {
	w := width - 2 - timeCol - 1 - 1 - len(content.Negative)
	if w > senderCol {
		w = senderCol
	}
	if w < 0 {
		w = 0
	}
	return w
}

// renderList renders the left panel: column header, then the results from
// listOffset on.
func (m model) renderList(width, height int) string {
	if len(m.results) == 0 {
		empty := lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No results")
		return empty
	}

	lines := []string{listHeader(width)}
	for i, r := range m.results {
		if i < m.listOffset {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		rows := formatResultLine(r, width, i == m.cursor)
		lines = append(lines, rows...)
	}

	// Pad remaining lines
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

// formatResultLine formats one message as two lines:
//
//	line 1: [>] MM-DD HH:MM sender           label
//	line 2:    snippet (dimmed)
func formatResultLine(r search.Result, width int, selected bool) []string {
	// "2025-02-03T14:05:00" -> "02-03 14:05"
	date := "----- --:--"
	if len(r.Ts) >= 16 {
		date = r.Ts[5:10] + " " + r.Ts[11:16]
	}

	sw := senderWidth(width)
	sender := runewidth.FillRight(runewidth.Truncate(r.Sender, sw, ""), sw)

	line1 := fmt.Sprintf("%s %s %s", date, senderStyle(r.Sender).Render(sender), labelStyle(r.Label).Render(r.Label))
	if selected {
		line1 = styleListSelected.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	// Line 2: snippet (dimmed, indented)
	snippet := strings.ReplaceAll(r.Snippet, "\n", " ")
	snippet = strings.ReplaceAll(snippet, "\t", " ")
	snippet = strings.ReplaceAll(snippet, ">>>", "")
	snippet = strings.ReplaceAll(snippet, "<<<", "")
	snippetMax := width - 4 // indent
	if snippetMax < 0 {
		snippetMax = 0
	}
	if runewidth.StringWidth(snippet) > snippetMax {
		snippet = runewidth.Truncate(snippet, snippetMax, "")
	}
	line2 := "    " + lipgloss.NewStyle().Foreground(colorDim).Render(snippet)

	return []string{line1, line2}
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := listHeight / linesPerItem
	if visibleItems < 1 {
		visibleItems = 1
	}
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}
