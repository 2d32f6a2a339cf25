// Package export writes records and reports as CSV, XLSX and DOCX.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Zuo-Peng/wachat-insight/internal/parse"
	"github.com/Zuo-Peng/wachat-insight/internal/pipeline"
)

type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
	DOCX Format = "docx"
)

var Formats = []Format{CSV, XLSX, DOCX}

// ParseFormat accepts a format name or a file name with a known extension.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(s)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	for _, f := range Formats {
		if s == string(f) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q (want csv, xlsx or docx)", s)
}

func (f Format) ContentType() string {
	switch f {
	case CSV:
		return "text/csv; charset=utf-8"
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case DOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/octet-stream"
}

// Report writes a report in the given format. CSV carries only the records;
// XLSX and DOCX carry the records and every analysis table.
func Report(rep *pipeline.Report, f Format) ([]byte, error) {
	log.Info().Int("count", len(rep.Records)).Str("format", string(f)).Msg("export processing")
	switch f {
	case CSV:
		return RecordsCSV(rep.Records)
	case XLSX:
		return ReportXLSX(rep)
	case DOCX:
		return ReportDOCX(rep)
	}
	return nil, fmt.Errorf("unknown export format %q", f)
}

// RecordHeader names the record columns in every tabular export.
var RecordHeader = []string{"timestamp", "sender", "message", "cleaned_message", "sentiment_score", "sentiment_label"}

const timeLayout = "2006-01-02 15:04:05"

// RecordRow renders one record as export cells.
func RecordRow(r parse.ChatRecord) []string {
	return []string{
		formatTime(r.Timestamp),
		r.Sender,
		r.Message,
		r.Cleaned,
		strconv.FormatFloat(r.SentimentScore, 'f', 4, 64),
		r.SentimentLabel,
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timeLayout)
}

// RecordsCSV writes records as CSV with a UTF-8 BOM so spreadsheet programs
// pick the right encoding.
func RecordsCSV(records []parse.ChatRecord) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(&buf)
	if err := w.Write(RecordHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		if err := w.Write(RecordRow(r)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	return buf.Bytes(), nil
}
