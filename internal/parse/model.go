package parse

import "time"

// SystemSender labels records whose header carried no sender.
const SystemSender = "System"

// ParsedRecord is one header line plus its continuation lines.
type ParsedRecord struct {
	TimestampText string
	Sender        *string // nil for system/notice lines
	Message       string
	Line          int // 1-based line of the header in the parsed text
}

// ChatRecord is a normalized record. Cleaned and the sentiment fields are
// filled in later by the text normalizer and the content analyzer.
type ChatRecord struct {
	Index     int        `json:"index"`
	Timestamp *time.Time `json:"timestamp"` // nil when the timestamp text did not parse
	Sender    string     `json:"sender"`
	Message   string     `json:"message"`
	Line      int        `json:"line"`

	Cleaned        string  `json:"cleaned_message"`
	SentimentScore float64 `json:"sentiment_score"`
	SentimentLabel string  `json:"sentiment_label,omitempty"`
}

// HasTime reports whether the record carries a parsed timestamp.
func (r *ChatRecord) HasTime() bool {
	return r.Timestamp != nil
}

// IsSystem reports whether the record is a system/notice line.
func (r *ChatRecord) IsSystem() bool {
	return r.Sender == SystemSender
}
