// Package extract pulls WhatsApp chat-log text out of exported zip archives.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/charmap"
)

const (
	// ChatMarker must appear in the name of a chat-log entry.
	ChatMarker = "WhatsApp Chat"
	// ChatExt is the extension of a chat-log entry.
	ChatExt = ".txt"

	maxEntrySize = 512 << 20 // 512MB
)

var (
	ErrArchive = errors.New("archive unreadable")
	ErrDecode  = errors.New("entry could not be decoded")
	ErrNoInput = errors.New("no chat text could be read from any input")
)

// Entry is one decoded chat-log entry.
type Entry struct {
	Archive  string
	Name     string
	Encoding string
	Size     int
}

// Failure records a per-archive or per-entry problem. It never aborts a batch.
type Failure struct {
	Source string
	Err    error
}

func (f Failure) Error() string {
	return f.Source + ": " + f.Err.Error()
}

type Result struct {
	Text     string
	Entries  []Entry
	Failures []Failure
	texts    []string
}

// Err reports a hard failure: inputs were given but none yielded any text.
func (r *Result) Err() error {
	if len(r.Entries) > 0 || len(r.Failures) == 0 {
		return nil
	}
	return fmt.Errorf("%w (%d failures, first: %v)", ErrNoInput, len(r.Failures), r.Failures[0])
}

// Buffer is an in-memory archive, e.g. an upload.
type Buffer struct {
	Name string
	Data []byte
}

// ExtractFiles reads every archive in order and concatenates the selected
// entries with newline separators.
func ExtractFiles(paths []string) *Result {
	res := &Result{}
	for _, p := range paths {
		if err := res.addFile(p); err != nil {
			res.fail(p, err)
		}
	}
	res.Text = strings.Join(res.texts, "\n")
	return res
}

// ExtractBuffers is ExtractFiles for archives already held in memory.
func ExtractBuffers(bufs []Buffer) *Result {
	res := &Result{}
	for _, b := range bufs {
		zr, err := zip.NewReader(bytes.NewReader(b.Data), int64(len(b.Data)))
		if err != nil {
			res.fail(b.Name, fmt.Errorf("%w: %v", ErrArchive, err))
			continue
		}
		res.addArchive(b.Name, zr)
	}
	res.Text = strings.Join(res.texts, "\n")
	return res
}

func (r *Result) addFile(path string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: file not found", ErrArchive)
		}
		return fmt.Errorf("%w: %v", ErrArchive, err)
	}
	defer zr.Close()

	r.addArchive(path, &zr.Reader)
	return nil
}

func (r *Result) addArchive(source string, zr *zip.Reader) {
	found := false
	for _, f := range zr.File {
		if !IsChatEntry(f.Name) {
			continue
		}
		found = true
		raw, err := readEntry(f)
		if err != nil {
			r.fail(source+"!"+f.Name, fmt.Errorf("%w: %v", ErrArchive, err))
			continue
		}
		text, enc, err := Decode(raw)
		if err != nil {
			r.fail(source+"!"+f.Name, err)
			continue
		}
		log.Debug().Str("archive", source).Str("entry", f.Name).Str("encoding", enc).Int("bytes", len(raw)).Msg("chat entry extracted")
		r.texts = append(r.texts, text)
		r.Entries = append(r.Entries, Entry{Archive: source, Name: f.Name, Encoding: enc, Size: len(raw)})
	}
	if !found {
		r.fail(source, fmt.Errorf("%w: no chat log entry", ErrArchive))
	}
}

func (r *Result) fail(source string, err error) {
	log.Warn().Err(err).Str("archive", source).Msg("skipping input")
	r.Failures = append(r.Failures, Failure{Source: source, Err: err})
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, maxEntrySize))
}

// IsChatEntry reports whether an archive entry holds a chat log.
func IsChatEntry(name string) bool {
	return strings.HasSuffix(name, ChatExt) && strings.Contains(name, ChatMarker)
}

type decoder struct {
	name   string
	decode func([]byte) (string, error)
}

var decoders = []decoder{
	{"utf-8", func(b []byte) (string, error) {
		if !utf8.Valid(b) {
			return "", errors.New("invalid utf-8 sequence")
		}
		return string(b), nil
	}},
	{"latin-1", func(b []byte) (string, error) {
		out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
		return string(out), err
	}},
	{"windows-1252", func(b []byte) (string, error) {
		out, err := charmap.Windows1252.NewDecoder().Bytes(b)
		return string(out), err
	}},
}

// Decode tries UTF-8, Latin-1 and Windows-1252 in that order and returns the
// first decoding that does not fail, with its name. The first two decoders
// succeeding on garbage is accepted: this is a fallback chain, not validation.
func Decode(b []byte) (string, string, error) {
	var errs []error
	for _, d := range decoders {
		s, err := d.decode(b)
		if err == nil {
			return s, d.name, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", d.name, err))
	}
	return "", "", fmt.Errorf("%w: %v", ErrDecode, errors.Join(errs...))
}
