package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/wachat-insight/internal/index"
	"github.com/Zuo-Peng/wachat-insight/internal/render"
	"github.com/Zuo-Peng/wachat-insight/internal/search"
)

// previewRenderedMsg is sent when an async preview render completes.
type previewRenderedMsg struct {
	archive string
	idx     int
	content string
	hitLine int
	err     error
}

// previewContext is how many records around the hit the preview loads.
const previewContext = 200

// loadPreviewCmd returns a tea.Cmd that renders the conversation preview async.
func loadPreviewCmd(db *index.DB, r search.Result, query string, width int) tea.Cmd {
	return func() tea.Msg {
		content, hitLine, err := render.RenderConversation(db, r.Archive, render.Options{
			HitIdx:  r.Idx,
			Context: previewContext,
			Width:   width,
			Query:   query,
		})
		return previewRenderedMsg{
			archive: r.Archive,
			idx:     r.Idx,
			content: content,
			hitLine: hitLine,
			err:     err,
		}
	}
}

// newViewport creates a new viewport model with the given dimensions.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = stylePanelBorder
	return vp
}
