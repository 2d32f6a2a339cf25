package parse

import (
	"strings"
	"time"
)

// timestampLayout is the header timestamp after the narrow no-break space
// was replaced with a plain space.
const timestampLayout = "02/01/06, 3:04 pm"

// ParseTimestamp parses exported header timestamp text. ok is false when the
// text is not a valid date-time.
func ParseTimestamp(text string) (time.Time, bool) {
	s := strings.ReplaceAll(text, NarrowNBSP, " ")
	// the "pm" layout element only accepts lowercase
	s = strings.ToLower(s)
	t, err := time.ParseInLocation(timestampLayout, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Normalize converts parsed records into typed chat records. Count and order
// are preserved; unparseable timestamps become nil and a missing sender
// becomes SystemSender.
func Normalize(parsed []ParsedRecord) []ChatRecord {
	out := make([]ChatRecord, len(parsed))
	for i, p := range parsed {
		rec := ChatRecord{
			Index:   i,
			Sender:  SystemSender,
			Message: p.Message,
			Line:    p.Line,
		}
		if p.Sender != nil {
			rec.Sender = *p.Sender
		}
		if t, ok := ParseTimestamp(p.TimestampText); ok {
			rec.Timestamp = &t
		}
		out[i] = rec
	}
	return out
}

// Load parses and normalizes text in one call.
func Load(text string) []ChatRecord {
	return Normalize(Parse(text))
}
