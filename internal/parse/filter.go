package parse

import (
	"fmt"
	"strings"
	"time"
)

// AllSenders in a sender list disables sender filtering.
const AllSenders = "All"

// DateLayout is used for --from / --to flags and API query parameters.
const DateLayout = "2006-01-02"

// Filter narrows a record set by date range and sender. A nil bound is open.
type Filter struct {
	From    *time.Time `json:"from,omitempty"`
	To      *time.Time `json:"to,omitempty"`
	Senders []string   `json:"senders,omitempty"`
}

// IsZero reports whether the filter keeps every record.
func (f Filter) IsZero() bool {
	return f.From == nil && f.To == nil && f.allSenders()
}

func (f Filter) allSenders() bool {
	if len(f.Senders) == 0 {
		return true
	}
	for _, s := range f.Senders {
		if s == AllSenders {
			return true
		}
	}
	return false
}

// Apply returns the matching records in their original order. When a date
// bound is set, records without a timestamp are excluded. To is inclusive of
// its whole calendar day.
func (f Filter) Apply(records []ChatRecord) []ChatRecord {
	if f.IsZero() {
		return records
	}

	var senders map[string]struct{}
	if !f.allSenders() {
		senders = make(map[string]struct{}, len(f.Senders))
		for _, s := range f.Senders {
			senders[s] = struct{}{}
		}
	}

	var from, until time.Time
	if f.From != nil {
		from = startOfDay(*f.From)
	}
	if f.To != nil {
		until = startOfDay(*f.To).AddDate(0, 0, 1)
	}

	out := make([]ChatRecord, 0, len(records))
	for _, r := range records {
		if senders != nil {
			if _, ok := senders[r.Sender]; !ok {
				continue
			}
		}
		if f.From != nil || f.To != nil {
			if r.Timestamp == nil {
				continue
			}
			if f.From != nil && r.Timestamp.Before(from) {
				continue
			}
			if f.To != nil && !r.Timestamp.Before(until) {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseFilter builds a filter from flag/query values. Empty date strings
// leave the bound open; senders may be comma separated.
func ParseFilter(from, to string, senders []string) (Filter, error) {
	var f Filter
	if from != "" {
		t, err := time.ParseInLocation(DateLayout, from, time.Local)
		if err != nil {
			return f, fmt.Errorf("invalid from date %q: %w", from, err)
		}
		f.From = &t
	}
	if to != "" {
		t, err := time.ParseInLocation(DateLayout, to, time.Local)
		if err != nil {
			return f, fmt.Errorf("invalid to date %q: %w", to, err)
		}
		f.To = &t
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return f, fmt.Errorf("date range is empty: %s is before %s", to, from)
	}
	for _, s := range senders {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				f.Senders = append(f.Senders, part)
			}
		}
	}
	return f, nil
}

// String renders the filter for report headers.
func (f Filter) String() string {
	if f.IsZero() {
		return "all messages"
	}
	var parts []string
	if f.From != nil {
		parts = append(parts, "from "+f.From.Format(DateLayout))
	}
	if f.To != nil {
		parts = append(parts, "to "+f.To.Format(DateLayout))
	}
	if !f.allSenders() {
		parts = append(parts, "senders "+strings.Join(f.Senders, ", "))
	}
	return strings.Join(parts, ", ")
}
