package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Zuo-Peng/wachat-insight/internal/content"
	"github.com/Zuo-Peng/wachat-insight/internal/parse"
	"github.com/Zuo-Peng/wachat-insight/internal/synth"
	"github.com/Zuo-Peng/wachat-insight/internal/textclean"
)

func newTestService(t *testing.T, messages int) (*Service, *Source) {
	t.Helper()
	dir := t.TempDir()
	opts := synth.DefaultOptions()
	opts.Messages = messages
	if _, err := synth.WriteSampleArchive(filepath.Join(dir, "sample.zip"), opts); err != nil {
		t.Fatal(err)
	}
	cleaner, err := textclean.NewCleaner(nil)
	if err != nil {
		t.Fatal(err)
	}
	copts := content.DefaultOptions()
	copts.Passes = 1
	src := NewSource([]string{dir}, cleaner, copts)
	return NewService(src, &Config{}), src
}

func get(t *testing.T, s *Service, path string, query url.Values) *httptest.ResponseRecorder {
	t.Helper()
	if query != nil {
		path += "?" + query.Encode()
	}
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response %s: %v", w.Body.String(), err)
	}
	if !resp.Success {
		t.Fatalf("request failed: %s", w.Body.String())
	}
	if err := json.Unmarshal(resp.Data, data); err != nil {
		t.Fatal(err)
	}
}

func TestNotLoaded(t *testing.T) {
	s, _ := newTestService(t, 5)

	w := get(t, s, "/api/v1/health", nil)
	if w.Code != http.StatusOK || strings.Contains(w.Body.String(), "dataset") {
		t.Errorf("unexpected health %d %s", w.Code, w.Body.String())
	}
	if w := get(t, s, "/api/v1/records", nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before load, got %d", w.Code)
	}
	if w := get(t, s, "/api/v1/report", nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before load, got %d", w.Code)
	}
}

func TestRecords(t *testing.T) {
	s, src := newTestService(t, 20)
	if err := src.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	var page RecordsPage
	decode(t, get(t, s, "/api/v1/records", url.Values{"limit": {"5"}}), &page)
	if page.Total != 23 || len(page.Records) != 5 {
		t.Errorf("expected 5 of 23 records, got %d of %d", len(page.Records), page.Total)
	}

	decode(t, get(t, s, "/api/v1/records", url.Values{"sender": {"~ Priya"}}), &page)
	for _, r := range page.Records {
		if r.Sender != "~ Priya" {
			t.Fatalf("sender filter leaked %q", r.Sender)
		}
	}

	decode(t, get(t, s, "/api/v1/records", url.Values{"offset": {"100"}}), &page)
	if page.Records == nil || len(page.Records) != 0 {
		t.Errorf("expected an empty page past the end, got %v", page.Records)
	}

	if w := get(t, s, "/api/v1/records", url.Values{"from": {"yesterday"}}); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a bad date, got %d", w.Code)
	}
	if w := get(t, s, "/api/v1/records", url.Values{"limit": {"0"}}); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a zero limit, got %d", w.Code)
	}
}

func TestMetricsAndReport(t *testing.T) {
	s, src := newTestService(t, 30)
	if err := src.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	var m struct {
		TotalMessages int `json:"total_messages"`
	}
	decode(t, get(t, s, "/api/v1/metrics", nil), &m)
	if m.TotalMessages != 33 {
		t.Errorf("expected 33 messages, got %d", m.TotalMessages)
	}

	var first, second struct {
		RunID string `json:"run_id"`
	}
	decode(t, get(t, s, "/api/v1/report", nil), &first)
	decode(t, get(t, s, "/api/v1/report", nil), &second)
	if first.RunID == "" || first.RunID != second.RunID {
		t.Errorf("expected the cached run, got %q and %q", first.RunID, second.RunID)
	}

	var empty struct {
		Metrics struct {
			Average *float64 `json:"average_message_length"`
		} `json:"metrics"`
	}
	decode(t, get(t, s, "/api/v1/report", url.Values{"sender": {"Nobody"}}), &empty)
	if empty.Metrics.Average != nil {
		t.Errorf("expected a null average, got %v", *empty.Metrics.Average)
	}

	w := get(t, s, "/api/v1/report/text", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "== Overview ==") {
		t.Errorf("unexpected text report %d %s", w.Code, w.Body.String())
	}
}

func TestWordCloudAndExport(t *testing.T) {
	s, src := newTestService(t, 30)
	if err := src.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	w := get(t, s, "/api/v1/wordcloud.png", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("unexpected word cloud response %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("expected a PNG body")
	}

	if w := get(t, s, "/api/v1/wordcloud.png", url.Values{"sender": {"Nobody"}}); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for an empty corpus, got %d", w.Code)
	}

	w = get(t, s, "/api/v1/export", url.Values{"format": {"xlsx"}})
	if w.Code != http.StatusOK || !strings.Contains(w.Header().Get("Content-Disposition"), "wca-report.xlsx") {
		t.Errorf("unexpected export %d %v", w.Code, w.Header())
	}
	if w := get(t, s, "/api/v1/export", url.Values{"format": {"pdf"}}); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for pdf, got %d", w.Code)
	}
}

func TestUpload(t *testing.T) {
	s, _ := newTestService(t, 5)

	opts := synth.DefaultOptions()
	opts.Messages = 12
	var archive bytes.Buffer
	if err := synth.WriteArchive(&archive, synth.SampleEntryName, synth.Format(synth.Generate(opts))); err != nil {
		t.Fatal(err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "upload.zip")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(archive.Bytes())
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	var sum DatasetSummary
	decode(t, w, &sum)
	if sum.Records != 15 || sum.Origin != "upload" {
		t.Errorf("unexpected summary %+v", sum)
	}

	var page RecordsPage
	decode(t, get(t, s, "/api/v1/records", nil), &page)
	if page.Total != 15 {
		t.Errorf("expected the uploaded records, got %d", page.Total)
	}
}

func TestUpload_NotAnArchive(t *testing.T) {
	s, _ := newTestService(t, 5)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "notes.zip")
	fw.Write([]byte("plain text"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d %s", w.Code, w.Body.String())
	}
}

func TestUpload_NoChatLogKeepsDataset(t *testing.T) {
	s, src := newTestService(t, 5)
	if err := src.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	var before RecordsPage
	decode(t, get(t, s, "/api/v1/records", nil), &before)

	var archive bytes.Buffer
	if err := synth.WriteArchive(&archive, "notes.txt", "not a chat"); err != nil {
		t.Fatal(err)
	}
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "photos.zip")
	fw.Write(archive.Bytes())
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d %s", w.Code, w.Body.String())
	}

	var after RecordsPage
	decode(t, get(t, s, "/api/v1/records", nil), &after)
	if after.Total != before.Total || before.Total == 0 {
		t.Errorf("dataset should be kept: %d records before, %d after", before.Total, after.Total)
	}
}

func TestFilterKey(t *testing.T) {
	a, _ := parse.ParseFilter("2025-02-01", "", []string{"~ Ravi,~ Priya"})
	b, _ := parse.ParseFilter("2025-02-01", "", []string{"~ Priya", "~ Ravi"})
	if filterKey(a) != filterKey(b) {
		t.Error("sender order must not change the cache key")
	}
	c, _ := parse.ParseFilter("", "2025-02-01", []string{"~ Priya,~ Ravi"})
	if filterKey(a) == filterKey(c) {
		t.Error("from and to must not collide")
	}
}
