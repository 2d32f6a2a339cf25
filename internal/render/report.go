package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/wachat-insight/internal/content"
	"github.com/Zuo-Peng/wachat-insight/internal/metrics"
	"github.com/Zuo-Peng/wachat-insight/internal/pipeline"
)

// TopSenders is how many senders the report tables show.
const TopSenders = 10

// heatShades go from no activity to the busiest hour.
var heatShades = []rune{' ', '░', '▒', '▓', '█'}

const barWidth = 40

// Section is one titled block of a report. Body is plain text.
type Section struct {
	Title string
	Body  string
}

// ReportSections renders each part of a report as plain text, in display order.
func ReportSections(rep *pipeline.Report) []Section {
	m := rep.Metrics
	c := rep.Content
	sections := []Section{
		{"Overview", overview(rep)},
		{"Top senders", senderTable(m.TopParticipants(TopSenders))},
		{"Busiest hours", hourTable(m.BusiestHours)},
		{"Busiest days", dayTable(m.BusiestDays)},
		{"Hourly activity", HeatMap(m.HourlyActivity)},
		{"Messages per day", dailyChart(m.DailyCounts)},
	}
	if c == nil {
		return sections
	}
	sections = append(sections,
		Section{"Top words", entryTable("word", c.TopWords, func(s string) string { return s })},
		Section{"Top bigrams", entryTable("bigram", c.TopBigrams, content.Bigram.String)},
		Section{"Keyphrases", keyphrases(c)},
		Section{"Topics", topics(c.Topics)},
		Section{"Sentiment", sentiment(c.Sentiment)},
		Section{"Languages", entryTable("language", c.Languages, func(s string) string { return s })},
	)
	return sections
}

// RenderReport renders the whole report for a terminal. Titles are bold when
// color is set.
func RenderReport(rep *pipeline.Report, color bool) string {
	var b strings.Builder
	for i, s := range ReportSections(rep) {
		if i > 0 {
			b.WriteString("\n")
		}
		title := "== " + s.Title + " =="
		if color {
			title = colorBold + title + colorReset
		}
		b.WriteString(title)
		b.WriteString("\n")
		b.WriteString(s.Body)
		if !strings.HasSuffix(s.Body, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func overview(rep *pipeline.Report) string {
	m := rep.Metrics
	rows := [][]string{
		{"Total messages", strconv.Itoa(m.TotalMessages)},
		{"Participants", strconv.Itoa(m.UniqueParticipants)},
		{"Average length", FormatAverage(m.AverageMessageLength)},
	}
	if m.FirstMessage != nil && m.LastMessage != nil {
		rows = append(rows,
			[]string{"First message", m.FirstMessage.Format("2006-01-02 15:04")},
			[]string{"Last message", m.LastMessage.Format("2006-01-02 15:04")},
		)
	}
	if h := m.PeakHour(); h >= 0 {
		rows = append(rows, []string{"Peak hour", fmt.Sprintf("%02d:00", h)})
	}
	if !rep.Filter.IsZero() {
		rows = append(rows, []string{"Filter", rep.Filter.String()})
	}
	return Table(nil, rows)
}

// FormatAverage prints an average message length, "n/a" when undefined.
func FormatAverage(a metrics.Average) string {
	if !a.Valid() {
		return "n/a"
	}
	return strconv.FormatFloat(float64(a), 'f', 2, 64)
}

func senderTable(senders []metrics.SenderCount) string {
	rows := make([][]string, len(senders))
	for i, s := range senders {
		rows[i] = []string{s.Sender, strconv.Itoa(s.Count)}
	}
	return Table([]string{"sender", "messages"}, rows)
}

func hourTable(hours []metrics.HourCount) string {
	rows := make([][]string, len(hours))
	for i, h := range hours {
		rows[i] = []string{fmt.Sprintf("%02d", h.Hour), strconv.Itoa(h.Count)}
	}
	return Table([]string{"hour", "messages"}, rows)
}

func dayTable(days []metrics.DayCount) string {
	rows := make([][]string, len(days))
	for i, d := range days {
		rows[i] = []string{d.Day, strconv.Itoa(d.Count)}
	}
	return Table([]string{"day", "messages"}, rows)
}

func entryTable[K comparable](label string, entries []content.Entry[K], format func(K) string) string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{format(e.Key), strconv.Itoa(e.Count)}
	}
	return Table([]string{label, "count"}, rows)
}

func keyphrases(c *content.Result) string {
	if c.KeyphraseErr != nil {
		return "(keyphrases unavailable: " + c.KeyphraseErr.Error() + ")"
	}
	return entryTable("phrase", c.TopKeyphrases, func(s string) string { return s })
}

func topics(ts []content.Topic) string {
	if len(ts) == 0 {
		return "(no data)"
	}
	rows := make([][]string, len(ts))
	for i, t := range ts {
		rows[i] = []string{t.Label, t.Words}
	}
	return Table([]string{"topic", "words"}, rows)
}

func sentiment(s content.SentimentSummary) string {
	var b strings.Builder
	rows := make([][]string, 0, len(content.SentimentClasses))
	for _, class := range content.SentimentClasses {
		rows = append(rows, []string{class, strconv.Itoa(s.Count(class))})
	}
	b.WriteString(Table([]string{"class", "messages"}, rows))
	for _, class := range content.SentimentClasses {
		samples := s.Samples[class]
		if len(samples) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s samples:\n", class)
		for _, m := range samples {
			b.WriteString("  - ")
			b.WriteString(strings.ReplaceAll(m, "\n", " "))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// HeatMap draws sender-by-hour activity with shade characters scaled to the
// busiest cell.
func HeatMap(m metrics.Matrix) string {
	if m.Empty() {
		return "(no data)"
	}
	top := m.Max()
	nameW := 0
	for _, s := range m.Senders {
		if w := runewidth.StringWidth(s); w > nameW {
			nameW = w
		}
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", nameW+1))
	for h := 0; h < 24; h += 6 {
		b.WriteString(fmt.Sprintf("%-6d", h))
	}
	b.WriteString("\n")
	for i, s := range m.Senders {
		b.WriteString(runewidth.FillRight(s, nameW))
		b.WriteString(" ")
		for _, n := range m.Counts[i] {
			b.WriteRune(shade(n, top))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func shade(n, top int) rune {
	if n <= 0 || top <= 0 {
		return heatShades[0]
	}
	i := 1 + (n*(len(heatShades)-2))/top
	if i >= len(heatShades) {
		i = len(heatShades) - 1
	}
	return heatShades[i]
}

func dailyChart(days []metrics.DateCount) string {
	if len(days) == 0 {
		return "(no data)"
	}
	top := 0
	for _, d := range days {
		if d.Count > top {
			top = d.Count
		}
	}
	var b strings.Builder
	for _, d := range days {
		n := d.Count * barWidth / top
		if n == 0 && d.Count > 0 {
			n = 1
		}
		fmt.Fprintf(&b, "%s %s %d\n", d.Date, strings.Repeat("█", n), d.Count)
	}
	return b.String()
}

// Table lays rows out in columns padded by display width. headers may be nil.
func Table(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return "(no data)"
	}
	cols := len(headers)
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	widths := make([]int, cols)
	measure := func(r []string) {
		for i, cell := range r {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(headers)
	for _, r := range rows {
		measure(r)
	}

	var b strings.Builder
	writeRow := func(r []string) {
		for i, cell := range r {
			if i > 0 {
				b.WriteString("  ")
			}
			if i == len(r)-1 {
				b.WriteString(cell)
			} else {
				b.WriteString(runewidth.FillRight(cell, widths[i]))
			}
		}
		b.WriteString("\n")
	}
	if headers != nil {
		writeRow(headers)
		rule := make([]string, len(headers))
		for i := range headers {
			rule[i] = strings.Repeat("-", widths[i])
		}
		writeRow(rule)
	}
	for _, r := range rows {
		writeRow(r)
	}
	return b.String()
}
