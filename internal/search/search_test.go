package search

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Zuo-Peng/wachat-insight/internal/content"
	"github.com/Zuo-Peng/wachat-insight/internal/index"
	"github.com/Zuo-Peng/wachat-insight/internal/parse"
	"github.com/Zuo-Peng/wachat-insight/internal/synth"
	"github.com/Zuo-Peng/wachat-insight/internal/textclean"
)

func indexedSample(t *testing.T) *index.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := index.OpenDB(filepath.Join(dir, "wca.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	opts := synth.DefaultOptions()
	opts.Messages = 200
	archive := filepath.Join(dir, "sample.zip")
	if _, err := synth.WriteSampleArchive(archive, opts); err != nil {
		t.Fatal(err)
	}
	cleaner, err := textclean.NewCleaner(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := index.IndexAll(db, []string{archive}, cleaner); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestSearch_FTS(t *testing.T) {
	db := indexedSample(t)

	results, err := Search(db, Options{Query: "resume"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Fatal("expected hits for resume")
	}
	for _, r := range results {
		if !strings.Contains(r.Snippet, ">>>") {
			t.Errorf("snippet without match markers: %q", r.Snippet)
		}
	}

	limited, err := Search(db, Options{Query: "resume", Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("expected 1 result with limit, got %d", len(limited))
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	db := indexedSample(t)
	results, err := Search(db, Options{Query: "   "})
	if err != nil || results != nil {
		t.Errorf("expected nil results, got %v %v", results, err)
	}
}

func TestSearch_Filters(t *testing.T) {
	db := indexedSample(t)

	results, err := Search(db, Options{Query: "tomorrow", Senders: []string{"~ Priya"}})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if r.Sender != "~ Priya" {
			t.Errorf("sender filter leaked %q", r.Sender)
		}
	}

	results, err = Search(db, Options{Query: "thanks", Label: content.Positive})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if r.Label != content.Positive {
			t.Errorf("label filter leaked %q", r.Label)
		}
	}

	all, err := ListAll(db, Options{Since: "2025-02-02", Until: "2025-02-02"})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range all {
		if !strings.HasPrefix(r.Ts, "2025-02-02T") {
			t.Errorf("date filter leaked %q", r.Ts)
		}
	}
}

func TestListAll_NewestFirst(t *testing.T) {
	db := indexedSample(t)
	results, err := ListAll(db, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 203 {
		t.Fatalf("expected 203 records, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Ts > results[i-1].Ts {
			t.Fatalf("results out of order at %d: %s > %s", i, results[i].Ts, results[i-1].Ts)
		}
	}

	limited, err := ListAll(db, Options{Limit: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 5 {
		t.Errorf("expected 5 results, got %d", len(limited))
	}
}

func TestOptions_FromFilter(t *testing.T) {
	from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2025, 2, 3, 0, 0, 0, 0, time.Local)

	var o Options
	o.FromFilter(parse.Filter{From: &from, To: &to, Senders: []string{"~ Ravi", "~ Sneha"}})
	if o.Since != "2025-02-01" || o.Until != "2025-02-03" || len(o.Senders) != 2 {
		t.Errorf("unexpected options %+v", o)
	}

	var all Options
	all.FromFilter(parse.Filter{Senders: []string{"~ Ravi", parse.AllSenders}})
	if all.Senders != nil {
		t.Errorf("All should clear the sender filter, got %v", all.Senders)
	}
}

func TestMakeSnippet(t *testing.T) {
	tests := []struct {
		text, query string
		ctx         int
		want        string
	}{
		{"Agenda: Resume review", "resume", 40, "Agenda: >>>Resume<<< review"},
		{"no match here", "resume", 40, "no match here"},
		{"abcdefghij", "", 2, "abcd..."},
		{"0123456789 target 0123456789", "target", 4, "...789 >>>target<<< 012..."},
	}
	for _, tt := range tests {
		got := makeSnippet(tt.text, tt.query, tt.ctx)
		if got != tt.want {
			t.Errorf("makeSnippet(%q, %q) = %q, want %q", tt.text, tt.query, got, tt.want)
		}
	}
}

func TestNeedsLike(t *testing.T) {
	if needsLike("resume") {
		t.Error("latin text should use FTS")
	}
	if !needsLike("面试") {
		t.Error("han text should use LIKE")
	}
}
