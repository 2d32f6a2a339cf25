package parse

// SenderTable interns sender names as small integer codes, in order of first
// appearance. Codes only support equality and grouping.
type SenderTable struct {
	codes map[string]int
	names []string
}

func NewSenderTable() *SenderTable {
	return &SenderTable{codes: make(map[string]int)}
}

// Code returns the code for name, assigning the next one if it is new.
func (t *SenderTable) Code(name string) int {
	if c, ok := t.codes[name]; ok {
		return c
	}
	c := len(t.names)
	t.codes[name] = c
	t.names = append(t.names, name)
	return c
}

// Lookup returns the code for name without assigning one.
func (t *SenderTable) Lookup(name string) (int, bool) {
	c, ok := t.codes[name]
	return c, ok
}

// Name returns the sender for a code.
func (t *SenderTable) Name(code int) string {
	return t.names[code]
}

func (t *SenderTable) Len() int {
	return len(t.names)
}

// Names returns senders in first-appearance order.
func (t *SenderTable) Names() []string {
	return append([]string(nil), t.names...)
}

// EncodeSenders interns every record's sender and returns the per-record codes.
func EncodeSenders(records []ChatRecord) (*SenderTable, []int) {
	t := NewSenderTable()
	codes := make([]int, len(records))
	for i := range records {
		codes[i] = t.Code(records[i].Sender)
	}
	return t, codes
}
