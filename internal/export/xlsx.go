package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Zuo-Peng/wachat-insight/internal/content"
	"github.com/Zuo-Peng/wachat-insight/internal/metrics"
	"github.com/Zuo-Peng/wachat-insight/internal/pipeline"
)

const recordsSheet = "Records"

type sheetData struct {
	name   string
	header []string
	rows   [][]any
}

// ReportXLSX writes the records on the first sheet and each analysis table
// on a sheet of its own. The word cloud, when rendered, gets its own sheet.
func ReportXLSX(rep *pipeline.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return nil, err
	}
	rows := make([][]any, len(rep.Records))
	for i, r := range rep.Records {
		rows[i] = []any{formatTime(r.Timestamp), r.Sender, r.Message, r.Cleaned, r.SentimentScore, r.SentimentLabel}
	}
	if err := writeSheet(f, recordsSheet, RecordHeader, rows); err != nil {
		return nil, err
	}
	f.SetColWidth(recordsSheet, "A", "A", 20)
	f.SetColWidth(recordsSheet, "B", "B", 20)
	f.SetColWidth(recordsSheet, "C", "D", 50)

	sheets := []sheetData{
		{"Summary", []string{"metric", "value"}, summaryRows(rep.Metrics)},
		{"Senders", []string{"sender", "messages"}, senderRows(rep.Metrics.MessagesPerParticipant)},
		{"Hours", []string{"hour", "messages"}, hourRows(rep.Metrics.BusiestHours)},
		{"Days", []string{"day", "messages"}, dayRows(rep.Metrics.BusiestDays)},
		{"Daily", []string{"date", "messages"}, dateRows(rep.Metrics.DailyCounts)},
		{"Activity", activityHeader(), activityRows(rep.Metrics.HourlyActivity)},
	}
	if c := rep.Content; c != nil {
		sheets = append(sheets,
			sheetData{"Words", []string{"word", "count"}, entryRows(c.TopWords, func(s string) string { return s })},
			sheetData{"Bigrams", []string{"bigram", "count"}, entryRows(c.TopBigrams, content.Bigram.String)},
			sheetData{"Keyphrases", []string{"phrase", "count"}, entryRows(c.TopKeyphrases, func(s string) string { return s })},
			sheetData{"Topics", []string{"topic", "words"}, topicRows(c.Topics)},
			sheetData{"Sentiment", []string{"class", "messages"}, sentimentRows(c.Sentiment)},
			sheetData{"Languages", []string{"language", "messages"}, entryRows(c.Languages, func(s string) string { return s })},
		)
	}
	for _, s := range sheets {
		if _, err := f.NewSheet(s.name); err != nil {
			return nil, err
		}
		if err := writeSheet(f, s.name, s.header, s.rows); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", s.name, err)
		}
	}

	if rep.Content != nil && rep.Content.HasWordCloud() {
		if _, err := f.NewSheet("Word cloud"); err != nil {
			return nil, err
		}
		err := f.AddPictureFromBytes("Word cloud", "A1", &excelize.Picture{
			Extension: ".png",
			File:      rep.Content.WordCloud,
		})
		if err != nil {
			return nil, fmt.Errorf("word cloud: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any) error {
	head := make([]any, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return err
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	f.SetCellStyle(sheet, "A1", last, headerStyle)

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func summaryRows(m *metrics.Result) [][]any {
	avg := any("n/a")
	if m.AverageMessageLength.Valid() {
		avg = float64(m.AverageMessageLength)
	}
	rows := [][]any{
		{"total_messages", m.TotalMessages},
		{"unique_participants", m.UniqueParticipants},
		{"average_message_length", avg},
	}
	if m.FirstMessage != nil && m.LastMessage != nil {
		rows = append(rows,
			[]any{"first_message", formatTime(m.FirstMessage)},
			[]any{"last_message", formatTime(m.LastMessage)},
		)
	}
	return rows
}

func senderRows(senders []metrics.SenderCount) [][]any {
	rows := make([][]any, len(senders))
	for i, s := range senders {
		rows[i] = []any{s.Sender, s.Count}
	}
	return rows
}

func hourRows(hours []metrics.HourCount) [][]any {
	rows := make([][]any, len(hours))
	for i, h := range hours {
		rows[i] = []any{h.Hour, h.Count}
	}
	return rows
}

func dayRows(days []metrics.DayCount) [][]any {
	rows := make([][]any, len(days))
	for i, d := range days {
		rows[i] = []any{d.Day, d.Count}
	}
	return rows
}

func dateRows(dates []metrics.DateCount) [][]any {
	rows := make([][]any, len(dates))
	for i, d := range dates {
		rows[i] = []any{d.Date, d.Count}
	}
	return rows
}

func activityHeader() []string {
	header := []string{"sender"}
	for h := 0; h < 24; h++ {
		header = append(header, fmt.Sprintf("%02d", h))
	}
	return header
}

func activityRows(m metrics.Matrix) [][]any {
	rows := make([][]any, len(m.Senders))
	for i, s := range m.Senders {
		row := []any{s}
		for _, n := range m.Counts[i] {
			row = append(row, n)
		}
		rows[i] = row
	}
	return rows
}

func entryRows[K comparable](entries []content.Entry[K], format func(K) string) [][]any {
	rows := make([][]any, len(entries))
	for i, e := range entries {
		rows[i] = []any{format(e.Key), e.Count}
	}
	return rows
}

func topicRows(topics []content.Topic) [][]any {
	rows := make([][]any, len(topics))
	for i, t := range topics {
		rows[i] = []any{t.Label, t.Words}
	}
	return rows
}

func sentimentRows(s content.SentimentSummary) [][]any {
	rows := make([][]any, len(content.SentimentClasses))
	for i, class := range content.SentimentClasses {
		rows[i] = []any{class, s.Count(class)}
	}
	return rows
}
