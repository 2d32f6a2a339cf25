package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/wachat-insight/internal/content"
	"github.com/Zuo-Peng/wachat-insight/internal/index"
	"github.com/Zuo-Peng/wachat-insight/internal/metrics"
	"github.com/Zuo-Peng/wachat-insight/internal/pipeline"
	"github.com/Zuo-Peng/wachat-insight/internal/search"
)

func TestFormatResultLine(t *testing.T) {
	r := search.Result{
		Ts:      "2025-02-03T14:05:00",
		Sender:  "~ Priya",
		Label:   content.Positive,
		Snippet: "Agenda: >>>Resume<<< review",
	}
	lines := formatResultLine(r, 60, true)
	if len(lines) != linesPerItem {
		t.Fatalf("expected %d lines, got %d", linesPerItem, len(lines))
	}
	if !strings.Contains(lines[0], "02-03 14:05") {
		t.Errorf("expected short date, got %q", lines[0])
	}
	if strings.Contains(lines[1], ">>>") || !strings.Contains(lines[1], "Resume review") {
		t.Errorf("snippet markers should be stripped: %q", lines[1])
	}

	noTime := formatResultLine(search.Result{Sender: "System"}, 60, false)
	if !strings.Contains(noTime[0], "--:--") {
		t.Errorf("expected placeholder time, got %q", noTime[0])
	}
}

func TestAdjustListScroll(t *testing.T) {
	m := model{cursor: 12}
	m.adjustListScroll(10) // 5 items visible
	if m.listOffset != 8 {
		t.Errorf("expected offset 8, got %d", m.listOffset)
	}
	m.cursor = 3
	m.adjustListScroll(10)
	if m.listOffset != 3 {
		t.Errorf("expected offset 3, got %d", m.listOffset)
	}
}

func TestFormatRecord(t *testing.T) {
	got := FormatRecord(index.RecordRow{Ts: "2025-02-03T14:05:00", Sender: "~ Ravi", Message: "hi"})
	if got != "[2025-02-03 14:05:00] ~ Ravi: hi" {
		t.Errorf("unexpected %q", got)
	}
	if got := FormatRecord(index.RecordRow{Sender: "System", Message: "x"}); !strings.HasPrefix(got, "[no time]") {
		t.Errorf("unexpected %q", got)
	}
}

func TestDashboardNavigation(t *testing.T) {
	rep := &pipeline.Report{
		Metrics: metrics.Compute(nil),
		Content: content.Analyze(nil, content.Options{NoCloud: true}),
	}
	var m tea.Model = newDashModel(rep)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	dm := m.(dashModel)
	if dm.cursor != 2 {
		t.Fatalf("expected cursor 2, got %d", dm.cursor)
	}
	if !strings.Contains(dm.View(), dm.sections[2].Title) {
		t.Error("view should list the section titles")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.(dashModel).cursor != 1 {
		t.Errorf("expected cursor 1, got %d", m.(dashModel).cursor)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Error("esc should quit")
	}
}

func TestFilterCycling(t *testing.T) {
	var m tea.Model = initialModel(nil, "resume", search.Options{Since: "2025-02-01"})
	m, _ = m.Update(sendersLoadedMsg{senders: []string{"~ Ravi", "~ Priya"}})

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if cmd == nil {
		t.Error("changing the sender should search again")
	}
	opts := m.(model).options()
	if len(opts.Senders) != 1 || opts.Senders[0] != "~ Ravi" || opts.Since != "2025-02-01" {
		t.Errorf("unexpected options %+v", opts)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if got := m.(model).options().Label; got != content.Positive {
		t.Errorf("expected %s, got %q", content.Positive, got)
	}
	summary := m.(model).filterSummary()
	for _, want := range []string{"from ~ Ravi", content.Positive, "since 2025-02-01"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary %q should mention %q", summary, want)
		}
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if s := m.(model).options().Senders; s != nil {
		t.Errorf("cycling past the last sender should clear the filter, got %v", s)
	}
}

func TestApplyResults_Stale(t *testing.T) {
	m := initialModel(nil, "resume", search.Options{})
	results := []search.Result{{Archive: "a.zip", Idx: 1}, {Archive: "a.zip", Idx: 4}}

	got, _ := m.Update(searchResultMsg{query: "resum", filters: m.filterKey(), results: results})
	if len(got.(model).results) != 0 {
		t.Error("results for an older query should be dropped")
	}
	got, _ = m.Update(searchResultMsg{query: "resume", filters: "1/0", results: results})
	if len(got.(model).results) != 0 {
		t.Error("results for other filters should be dropped")
	}
	got, cmd := m.Update(searchResultMsg{query: "resume", filters: m.filterKey(), results: results})
	if len(got.(model).results) != 2 || cmd == nil {
		t.Error("current results should be shown and the first preview loaded")
	}
}

func TestHitTest(t *testing.T) {
	m := initialModel(nil, "", search.Options{})
	m.width, m.height, m.ready = 100, 30, true
	m.results = make([]search.Result, 10)

	tests := []struct {
		x, y   int
		region mouseRegion
		item   int
	}{
		{5, 0, regionNone, -1},
		{5, 2, regionList, -1}, // column header
		{5, 3, regionList, 0},
		{5, 4, regionList, 0},
		{5, 5, regionList, 1},
		{80, 10, regionPreview, -1},
	}
	for _, tt := range tests {
		region, item := m.hitTest(tt.x, tt.y)
		if region != tt.region || item != tt.item {
			t.Errorf("hitTest(%d, %d) = %v, %d; want %v, %d", tt.x, tt.y, region, item, tt.region, tt.item)
		}
	}
}
