package render

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/wachat-insight/internal/index"
	"github.com/Zuo-Peng/wachat-insight/internal/parse"
)

const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorDim     = "\033[2m"
	colorHit     = "\033[43m"   // yellow background
	colorBoldRed = "\033[1;31m" // bold red for keyword highlights
)

// senderColors are assigned to senders by hash so a sender keeps its color
// across windows.
var senderColors = []string{
	"\033[1;34m", // bold blue
	"\033[1;32m", // bold green
	"\033[1;35m", // bold magenta
	"\033[1;36m", // bold cyan
	"\033[1;33m", // bold yellow
	"\033[1;31m", // bold red
}

// SenderColor returns the ANSI color used for a sender's label.
func SenderColor(sender string) string {
	if sender == parse.SystemSender {
		return colorDim
	}
	h := fnv.New32a()
	h.Write([]byte(sender))
	return senderColors[h.Sum32()%uint32(len(senderColors))]
}

type Options struct {
	HitIdx  int    // record index of the hit, -1 for none
	Context int    // records before/after hit to show
	Width   int    // wrap width (0 = no wrap)
	Query   string // search query for keyword highlighting
}

// fts5Operators are FTS5 operators that should not be highlighted as keywords.
var fts5Operators = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "NEAR": true,
	"and": true, "or": true, "not": true, "near": true,
}

// highlightKeywords wraps case-insensitive matches of query terms in bold red ANSI codes.
func highlightKeywords(text, query string) string {
	if query == "" {
		return text
	}
	terms := strings.Fields(query)
	var filtered []string
	for _, t := range terms {
		if !fts5Operators[t] {
			filtered = append(filtered, t)
		}
	}
	if len(filtered) == 0 {
		return text
	}
	for _, term := range filtered {
		lower := strings.ToLower(term)
		i := 0
		for i < len(text) {
			idx := strings.Index(strings.ToLower(text[i:]), lower)
			if idx < 0 {
				break
			}
			pos := i + idx
			orig := text[pos : pos+len(term)]
			replacement := colorBoldRed + orig + colorReset
			text = text[:pos] + replacement + text[pos+len(term):]
			i = pos + len(replacement)
		}
	}
	return text
}

// indentLines prepends each line of text with the given prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, correctly skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// check for ANSI escape sequence: ESC[ ... m
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// RenderConversation renders a window of an archive's records and returns the
// content, the 0-based line number of the hit record header (-1 if no hit),
// and any error.
func RenderConversation(db *index.DB, archive string, opts Options) (string, int, error) {
	if opts.Context == 0 {
		opts.Context = 10
	}
	if opts.Context < 0 {
		opts.Context = 1000000 // no limit
	}

	arch, err := db.GetArchive(archive)
	if err != nil {
		return "", -1, fmt.Errorf("get archive: %w", err)
	}
	if arch == nil {
		return "", -1, fmt.Errorf("archive not found: %s", archive)
	}

	records, hitIdx, startPos, totalCount, err := db.GetRecordsWindow(archive, opts.HitIdx, opts.Context)
	if err != nil {
		return "", -1, fmt.Errorf("get records: %w", err)
	}

	if totalCount == 0 {
		return "(empty archive)", -1, nil
	}

	skipAfter := totalCount - startPos - len(records)

	var b strings.Builder
	hitLine := -1
	lineCount := 0
	wrapW := opts.Width

	// helper to track line count; wraps long lines if Width is set
	writeLine := func(s string) {
		wrapped := wrapLine(s, wrapW)
		for _, wl := range wrapped {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	// header
	writeLine(fmt.Sprintf("%s--- %s [%d records, %s .. %s] ---%s",
		colorDim, archive, arch.RecordCount, displayTs(arch.FirstTs), displayTs(arch.LastTs), colorReset))

	if startPos > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages before) ...%s", colorDim, startPos, colorReset))
	}

	for i, r := range records {
		isHit := (i == hitIdx)

		if isHit {
			hitLine = lineCount
		}

		ts := displayTs(r.Ts)
		if isHit {
			writeLine(fmt.Sprintf("%s>> %s > %s <<%s %s%s%s",
				colorHit, r.Sender, ts, colorReset, colorDim, r.Label, colorReset))
		} else {
			writeLine(fmt.Sprintf("%s%s >%s %s%s%s", SenderColor(r.Sender), r.Sender, colorReset, colorDim, ts, colorReset))
		}

		text := r.Message
		if r.Sender == parse.SystemSender {
			text = colorDim + text + colorReset
		}
		text = highlightKeywords(text, opts.Query)
		text = indentLines(text, "  ")

		for _, tl := range strings.Split(text, "\n") {
			writeLine(tl)
		}
	}

	if skipAfter > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages after) ...%s", colorDim, skipAfter, colorReset))
	}

	return b.String(), hitLine, nil
}

// displayTs turns a stored timestamp into "2006-01-02 15:04".
func displayTs(ts string) string {
	if ts == "" {
		return "no time"
	}
	ts = strings.Replace(ts, "T", " ", 1)
	if len(ts) > 16 {
		ts = ts[:16]
	}
	return ts
}
