package tui

import (
	"hash/fnv"

	"github.com/charmbracelet/lipgloss"

	"github.com/Zuo-Peng/wachat-insight/internal/content"
	"github.com/Zuo-Peng/wachat-insight/internal/parse"
)

var (
	// Colors
	colorPrimary   = lipgloss.Color("12")  // bright blue
	colorSecondary = lipgloss.Color("10")  // bright green
	colorDim       = lipgloss.Color("240") // gray
	colorHighlight = lipgloss.Color("11")  // bright yellow
	colorBorder    = lipgloss.Color("238") // dark gray

	// Input area
	styleInput = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	// List items
	styleListSelected = lipgloss.NewStyle().
				Foreground(colorHighlight).
				Bold(true)

	// Sentiment labels
	styleLabelPositive = lipgloss.NewStyle().
				Foreground(colorSecondary)

	styleLabelNegative = lipgloss.NewStyle().
				Foreground(lipgloss.Color("9"))

	styleLabelNeutral = lipgloss.NewStyle().
				Foreground(colorDim)

	// Panels
	stylePanelBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder)

	styleActiveBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary)

	// Status bar
	styleStatusBar = lipgloss.NewStyle().
			Foreground(colorDim).
			Padding(0, 1)

	// Panel titles
	styleTitle = lipgloss.NewStyle().
			Foreground(colorDim).
			Bold(true)
)

// senderPalette matches the ANSI colors render uses for sender labels.
var senderPalette = []lipgloss.Color{"12", "10", "13", "14", "11", "9"}

func senderStyle(sender string) lipgloss.Style {
	if sender == parse.SystemSender {
		return lipgloss.NewStyle().Foreground(colorDim)
	}
	h := fnv.New32a()
	h.Write([]byte(sender))
	return lipgloss.NewStyle().Foreground(senderPalette[h.Sum32()%uint32(len(senderPalette))]).Bold(true)
}

func labelStyle(label string) lipgloss.Style {
	switch label {
	case content.Positive:
		return styleLabelPositive
	case content.Negative:
		return styleLabelNegative
	default:
		return styleLabelNeutral
	}
}
