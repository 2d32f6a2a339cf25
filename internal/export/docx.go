package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/Zuo-Peng/wachat-insight/internal/parse"
	"github.com/Zuo-Peng/wachat-insight/internal/pipeline"
	"github.com/Zuo-Peng/wachat-insight/internal/render"
)

// ReportDOCX writes the report sections followed by the messages grouped
// by day.
func ReportDOCX(rep *pipeline.Report) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("create docx: %w", err)
	}
	defer doc.Close()

	doc.AddHeading("Chat report", 0)
	doc.AddParagraph(fmt.Sprintf("Run %s, generated %s", rep.RunID, rep.Generated.Format(timeLayout)))
	if !rep.Filter.IsZero() {
		doc.AddParagraph("Filter: " + rep.Filter.String())
	}

	for _, s := range render.ReportSections(rep) {
		doc.AddEmptyParagraph()
		doc.AddHeading(s.Title, 1)
		for _, line := range strings.Split(strings.TrimRight(s.Body, "\n"), "\n") {
			doc.AddParagraph(line)
		}
	}

	doc.AddEmptyParagraph()
	doc.AddHeading("Messages", 1)
	writeMessages(doc, rep.Records)

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}
	return buf.Bytes(), nil
}

// writeMessages writes records with a heading whenever the day changes.
func writeMessages(doc *docx.RootDoc, records []parse.ChatRecord) {
	currentDate := ""

	for _, r := range records {
		dateStr := "Undated"
		clock := "--:--:--"
		if r.Timestamp != nil {
			dateStr = r.Timestamp.Format(parse.DateLayout)
			clock = r.Timestamp.Format("15:04:05")
		}

		if dateStr != currentDate {
			currentDate = dateStr
			doc.AddEmptyParagraph()
			doc.AddHeading(dateStr, 2)
		}

		doc.AddParagraph(fmt.Sprintf("[%s] %s\n%s", r.Sender, clock, r.Message))
	}
}
