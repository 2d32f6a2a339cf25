package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/Zuo-Peng/wachat-insight/internal/content"
	"github.com/Zuo-Peng/wachat-insight/internal/parse"
	"github.com/Zuo-Peng/wachat-insight/internal/pipeline"
	"github.com/Zuo-Peng/wachat-insight/internal/synth"
	"github.com/Zuo-Peng/wachat-insight/internal/textclean"
)

func sampleReport(t *testing.T) *pipeline.Report {
	t.Helper()
	dir := t.TempDir()
	opts := synth.DefaultOptions()
	opts.Messages = 40
	opts.Multiline = true
	if _, err := synth.WriteSampleArchive(filepath.Join(dir, "sample.zip"), opts); err != nil {
		t.Fatal(err)
	}
	cleaner, err := textclean.NewCleaner(nil)
	if err != nil {
		t.Fatal(err)
	}
	ds, err := pipeline.Load(context.Background(), []string{dir}, cleaner)
	if err != nil {
		t.Fatal(err)
	}
	copts := content.DefaultOptions()
	copts.NoCloud = true
	copts.Passes = 1
	return ds.Analyze(parse.Filter{}, copts)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"csv", CSV, true},
		{"XLSX", XLSX, true},
		{"out/report.docx", DOCX, true},
		{"pdf", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestRecordsCSV(t *testing.T) {
	rep := sampleReport(t)
	b, err := RecordsCSV(rep.Records)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatal("expected a UTF-8 BOM")
	}
	rows, err := csv.NewReader(bytes.NewReader(b[3:])).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rows[0], RecordHeader) {
		t.Errorf("unexpected header %v", rows[0])
	}
	if len(rows) != len(rep.Records)+1 {
		t.Fatalf("expected %d rows, got %d", len(rep.Records)+1, len(rows))
	}
	for i, r := range rep.Records {
		if rows[i+1][2] != r.Message {
			t.Fatalf("row %d: message %q does not survive the round trip", i, r.Message)
		}
	}
}

func TestRecordRow_NoTimestamp(t *testing.T) {
	row := RecordRow(parse.ChatRecord{Sender: parse.SystemSender, Message: "x", SentimentLabel: content.Neutral})
	if row[0] != "" || row[4] != "0.0000" || row[5] != content.Neutral {
		t.Errorf("unexpected row %v", row)
	}
}

func TestReportXLSX(t *testing.T) {
	rep := sampleReport(t)
	b, err := Report(rep, XLSX)
	if err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	for _, want := range []string{"Records", "Summary", "Senders", "Activity", "Topics", "Sentiment"} {
		found := false
		for _, s := range sheets {
			if s == want {
				found = true
			}
		}
		if !found {
			t.Errorf("missing sheet %q in %v", want, sheets)
		}
	}

	rows, err := f.GetRows("Records")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != len(rep.Records)+1 {
		t.Errorf("expected %d rows, got %d", len(rep.Records)+1, len(rows))
	}
	activity, err := f.GetRows("Activity")
	if err != nil {
		t.Fatal(err)
	}
	if len(activity[0]) != 25 {
		t.Errorf("expected sender plus 24 hour columns, got %d", len(activity[0]))
	}
}

func TestReportDOCX(t *testing.T) {
	rep := sampleReport(t)
	b, err := Report(rep, DOCX)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, []byte("PK")) {
		t.Error("expected a zip container")
	}
}
