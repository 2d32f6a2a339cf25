package extract

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
)

type entry struct {
	name string
	data []byte
}

func buildZip(t *testing.T, entries ...entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(e.data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func writeZip(t *testing.T, dir, name string, entries ...entry) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, buildZip(t, entries...), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestIsChatEntry(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"WhatsApp Chat with Team A.txt", true},
		{"chats/WhatsApp Chat with Bob.txt", true},
		{"IMG-20250201-WA0001.jpg", false},
		{"WhatsApp Chat with Team A.txt.bak", false},
		{"notes.txt", false},
		{"whatsapp chat with x.txt", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsChatEntry(tt.name); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDecode_FallbackChain(t *testing.T) {
	s, enc, err := Decode([]byte("caf\xc3\xa9"))
	if err != nil || enc != "utf-8" || s != "café" {
		t.Errorf("utf-8: got %q %q %v", s, enc, err)
	}

	s, enc, err = Decode([]byte("caf\xe9"))
	if err != nil || enc != "latin-1" || s != "café" {
		t.Errorf("latin-1: got %q %q %v", s, enc, err)
	}
}

func TestExtractFiles_SelectsChatEntriesInOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeZip(t, dir, "a.zip",
		entry{"IMG-0001.jpg", []byte{0xff, 0xd8}},
		entry{"WhatsApp Chat with A.txt", []byte("line a1\nline a2")},
		entry{"WhatsApp Chat with A2.txt", []byte("line a3")},
	)
	b := writeZip(t, dir, "b.zip",
		entry{"WhatsApp Chat with B.txt", []byte("line b1")},
		entry{"readme.txt", []byte("ignored")},
	)

	res := ExtractFiles([]string{a, b})
	if err := res.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "line a1\nline a2\nline a3\nline b1"
	if res.Text != want {
		t.Errorf("expected %q, got %q", want, res.Text)
	}
	if len(res.Entries) != 3 {
		t.Errorf("expected 3 entries, got %d", len(res.Entries))
	}
	if len(res.Failures) != 0 {
		t.Errorf("expected no failures, got %v", res.Failures)
	}
}

func TestExtractFiles_BadArchivesDoNotAbortBatch(t *testing.T) {
	dir := t.TempDir()
	good := writeZip(t, dir, "good.zip", entry{"WhatsApp Chat with G.txt", []byte("hello")})
	corrupt := filepath.Join(dir, "corrupt.zip")
	if err := os.WriteFile(corrupt, []byte("this is not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "missing.zip")

	res := ExtractFiles([]string{missing, corrupt, good})
	if res.Text != "hello" {
		t.Errorf("expected text from the good archive, got %q", res.Text)
	}
	if len(res.Failures) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(res.Failures))
	}
	for _, f := range res.Failures {
		if !errors.Is(f.Err, ErrArchive) {
			t.Errorf("failure %s: expected ErrArchive, got %v", f.Source, f.Err)
		}
	}
	if err := res.Err(); err != nil {
		t.Errorf("partial success should not be a hard failure: %v", err)
	}
}

func TestExtractFiles_AllFailed(t *testing.T) {
	res := ExtractFiles([]string{filepath.Join(t.TempDir(), "nope.zip")})
	if !errors.Is(res.Err(), ErrNoInput) {
		t.Errorf("expected ErrNoInput, got %v", res.Err())
	}
}

func TestExtractFiles_NoChatEntry(t *testing.T) {
	dir := t.TempDir()
	photos := writeZip(t, dir, "photos.zip",
		entry{"IMG-0001.jpg", []byte{0xff, 0xd8}},
		entry{"readme.txt", []byte("ignored")},
	)
	res := ExtractFiles([]string{photos})
	if len(res.Failures) != 1 || res.Failures[0].Source != photos || !errors.Is(res.Failures[0].Err, ErrArchive) {
		t.Fatalf("expected one archive failure, got %v", res.Failures)
	}
	if !errors.Is(res.Err(), ErrNoInput) {
		t.Errorf("expected ErrNoInput, got %v", res.Err())
	}

	buf := ExtractBuffers([]Buffer{{Name: "photos.zip", Data: buildZip(t, entry{"IMG-0002.jpg", []byte{0xff}})}})
	if !errors.Is(buf.Err(), ErrNoInput) {
		t.Errorf("expected ErrNoInput for an upload without a chat log, got %v", buf.Err())
	}
}

func TestExtractFiles_NoInputsIsNotAnError(t *testing.T) {
	res := ExtractFiles(nil)
	if res.Err() != nil || res.Text != "" {
		t.Errorf("expected empty result, got %q %v", res.Text, res.Err())
	}
}

func TestExtractBuffers(t *testing.T) {
	data := buildZip(t, entry{"WhatsApp Chat with Mem.txt", []byte("in memory")})
	res := ExtractBuffers([]Buffer{
		{Name: "broken", Data: []byte("nope")},
		{Name: "upload.zip", Data: data},
	})
	if res.Text != "in memory" {
		t.Errorf("expected %q, got %q", "in memory", res.Text)
	}
	if len(res.Failures) != 1 || res.Failures[0].Source != "broken" {
		t.Errorf("unexpected failures: %v", res.Failures)
	}
}
