package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/Zuo-Peng/wachat-insight/internal/content"
	"github.com/Zuo-Peng/wachat-insight/internal/extract"
	"github.com/Zuo-Peng/wachat-insight/internal/parse"
	"github.com/Zuo-Peng/wachat-insight/internal/synth"
	"github.com/Zuo-Peng/wachat-insight/internal/textclean"
)

func newCleaner(t *testing.T) *textclean.Cleaner {
	t.Helper()
	c, err := textclean.NewCleaner(nil)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func sampleDir(t *testing.T, messages int) string {
	t.Helper()
	dir := t.TempDir()
	opts := synth.DefaultOptions()
	opts.Messages = messages
	if _, err := synth.WriteSampleArchive(filepath.Join(dir, "sample.zip"), opts); err != nil {
		t.Fatal(err)
	}
	return dir
}

func fastOptions() content.Options {
	opts := content.DefaultOptions()
	opts.NoCloud = true
	opts.Passes = 1
	return opts
}

func TestLoad_Directory(t *testing.T) {
	ds, err := Load(context.Background(), []string{sampleDir(t, 40)}, newCleaner(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.Records) != 43 {
		t.Fatalf("expected 43 records, got %d", len(ds.Records))
	}
	if ds.Records[0].Sender != parse.SystemSender {
		t.Errorf("expected a system notice first, got %q", ds.Records[0].Sender)
	}
	if len(ds.Entries) != 1 || len(ds.Failures) != 0 {
		t.Errorf("unexpected entries %v failures %v", ds.Entries, ds.Failures)
	}
	first, last := ds.Span()
	if first == nil || last == nil || last.Before(*first) {
		t.Errorf("unexpected span %v %v", first, last)
	}
	if senders := ds.Senders(); senders[0] != parse.SystemSender || len(senders) < 2 {
		t.Errorf("unexpected senders %v", senders)
	}
}

func TestLoad_NothingReadable(t *testing.T) {
	_, err := Load(context.Background(), []string{filepath.Join(t.TempDir(), "missing.zip")}, newCleaner(t))
	if !errors.Is(err, extract.ErrNoInput) {
		t.Errorf("expected ErrNoInput, got %v", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Load(ctx, []string{sampleDir(t, 5)}, newCleaner(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestAnalyze_Filtered(t *testing.T) {
	ds, err := Load(context.Background(), []string{sampleDir(t, 60)}, newCleaner(t))
	if err != nil {
		t.Fatal(err)
	}

	rep := ds.Analyze(parse.Filter{}, fastOptions())
	if rep.RunID == uuid.Nil {
		t.Error("expected a run id")
	}
	if rep.Metrics.TotalMessages != 63 {
		t.Errorf("expected 63 messages, got %d", rep.Metrics.TotalMessages)
	}

	priya := ds.Analyze(parse.Filter{Senders: []string{"~ Priya"}}, fastOptions())
	for _, r := range priya.Records {
		if r.Sender != "~ Priya" {
			t.Fatalf("filter leaked sender %q", r.Sender)
		}
	}
	if priya.Metrics.UniqueParticipants > 1 {
		t.Errorf("expected at most one participant, got %d", priya.Metrics.UniqueParticipants)
	}
	if priya.RunID == rep.RunID {
		t.Error("each run needs its own id")
	}
	for _, r := range ds.Records {
		if r.SentimentLabel != "" {
			t.Fatal("analysis must not modify the dataset")
		}
	}
}

func TestAnalyze_EmptySelection(t *testing.T) {
	ds, err := Load(context.Background(), []string{sampleDir(t, 10)}, newCleaner(t))
	if err != nil {
		t.Fatal(err)
	}
	rep := ds.Analyze(parse.Filter{Senders: []string{"Nobody"}}, fastOptions())
	if rep.Metrics.TotalMessages != 0 || !rep.Metrics.HourlyActivity.Empty() {
		t.Errorf("expected an empty report, got %+v", rep.Metrics)
	}
	if rep.Content.Topics != nil {
		t.Errorf("expected nil topics, got %v", rep.Content.Topics)
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(rep); err != nil {
		t.Fatalf("empty report must serialize: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"average_message_length":null`)) {
		t.Errorf("expected null average, got %s", buf.String())
	}
}
