package parse

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

const maxLineSize = 10 * 1024 * 1024 // 10MB

// NarrowNBSP separates the time from am/pm in exported headers.
const NarrowNBSP = "\u202f"

// headerRe matches `DD/MM/YY, H:MM<U+202F>am - [Sender: ]Message` over a whole line.
var headerRe = regexp.MustCompile(`^(\d{2}/\d{2}/\d{2}, \d{1,2}:\d{2}\x{202F}[ap]m) - (?:([^:]+): )?(.*)$`)

// Parser accumulates records line by line. Lines that do not start a record
// are appended to the last emitted one, or dropped if nothing was emitted yet.
type Parser struct {
	records []ParsedRecord
	line    int
}

// Feed consumes the next line (without its trailing newline).
func (p *Parser) Feed(line string) {
	p.line++
	m := headerRe.FindStringSubmatchIndex(line)
	if m == nil {
		if n := len(p.records); n > 0 {
			p.records[n-1].Message += "\n" + line
		}
		return
	}

	rec := ParsedRecord{
		TimestampText: line[m[2]:m[3]],
		Message:       line[m[6]:m[7]],
		Line:          p.line,
	}
	if m[4] >= 0 {
		sender := line[m[4]:m[5]]
		rec.Sender = &sender
	}
	p.records = append(p.records, rec)
}

// Records returns everything parsed so far.
func (p *Parser) Records() []ParsedRecord {
	return p.records
}

// Parse splits text on newlines and parses it in a single ordered pass.
func Parse(text string) []ParsedRecord {
	var p Parser
	for _, line := range strings.Split(text, "\n") {
		p.Feed(line)
	}
	return p.Records()
}

// ParseReader is Parse over a stream.
func ParseReader(r io.Reader) ([]ParsedRecord, error) {
	var p Parser
	br := bufio.NewReaderSize(r, 64*1024)
	for {
		line, err := br.ReadString('\n')
		if len(line) > maxLineSize {
			return p.Records(), bufio.ErrTooLong
		}
		if err == io.EOF {
			// a trailing newline still yields a final empty line, like strings.Split
			p.Feed(line)
			return p.Records(), nil
		}
		if err != nil {
			return p.Records(), err
		}
		p.Feed(strings.TrimSuffix(line, "\n"))
	}
}
