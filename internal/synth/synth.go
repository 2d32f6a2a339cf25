// Package synth generates synthetic WhatsApp chat exports for demos and tests.
package synth

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/Zuo-Peng/wachat-insight/internal/parse"
)

// SampleEntryName is the chat-log entry written into sample archives.
const SampleEntryName = "WhatsApp Chat with Sample.txt"

// headerLayout renders timestamps the way the export does.
const headerLayout = "02/01/06, 3:04" + parse.NarrowNBSP + "pm"

var DefaultParticipants = []string{
	"~ Priya", "~ Ravi", "~ Sneha", "~ Arjun",
	"+91 98765 43210", "+91 91234 56789", "+91 99887 77665",
}

var cannedMessages = []string{
	"Hello everyone! Let's coordinate here.",
	"<Media omitted>",
	"Reminder: Registration closes tomorrow at 5 pm.",
	"Please don’t wait till the last minute.",
	"Joining the meeting now.",
	"Uploaded the company brochure.",
	"Agenda: Resume review and mock interviews.",
	"Thanks for the reminder!",
	"Don’t forget to update your resumes in the shared folder.",
	"This is important for tomorrow’s HR round.",
	"Updated mine, please check.",
	"Great discussion today, thanks everyone!",
	"Uploaded the mock interview schedule.",
	"All set for tomorrow’s drive!",
}

var multilineMessages = []string{
	"Checklist for the drive:\n1. Resume printouts\n2. ID card\n3. Two passport photos",
	"Forwarding the HR note:\nInterviews start at 10.\nBe on time.",
}

type Options struct {
	Messages     int
	Seed         int64
	Start        time.Time
	Participants []string
	// MaxGap bounds the random offset of each message from Start.
	MaxGap time.Duration
	// Multiline mixes in messages that span several lines.
	Multiline bool
}

func DefaultOptions() Options {
	return Options{
		Messages:     1000,
		Seed:         1,
		Start:        time.Date(2025, 2, 1, 8, 0, 0, 0, time.Local),
		Participants: DefaultParticipants,
		MaxGap:       5000 * time.Minute,
	}
}

// Message is one generated line. Sender is empty for system notices.
type Message struct {
	Time   time.Time
	Sender string
	Text   string
}

// Generate returns three group-creation notices followed by Messages random
// messages in time order. The same options always give the same messages.
func Generate(opts Options) []Message {
	d := DefaultOptions()
	if opts.Start.IsZero() {
		opts.Start = d.Start
	}
	if len(opts.Participants) == 0 {
		opts.Participants = d.Participants
	}
	if opts.MaxGap <= 0 {
		opts.MaxGap = d.MaxGap
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	creator := strings.TrimSpace(opts.Participants[0])
	out := []Message{
		{Time: opts.Start, Text: "Messages and calls are end-to-end encrypted. Only people in this chat can read, listen to, or share them. Learn more."},
		{Time: opts.Start.Add(time.Minute), Text: fmt.Sprintf("%s created group %q", creator, "Campus Drive 2026 - Team A")},
		{Time: opts.Start.Add(time.Minute), Text: "You were added"},
	}

	gapMinutes := int(opts.MaxGap / time.Minute)
	body := make([]Message, 0, opts.Messages)
	for i := 0; i < opts.Messages; i++ {
		text := cannedMessages[rng.Intn(len(cannedMessages))]
		if opts.Multiline && rng.Intn(10) == 0 {
			text = multilineMessages[rng.Intn(len(multilineMessages))]
		}
		body = append(body, Message{
			Time:   opts.Start.Add(time.Duration(1+rng.Intn(gapMinutes)) * time.Minute),
			Sender: opts.Participants[rng.Intn(len(opts.Participants))],
			Text:   text,
		})
	}
	sort.SliceStable(body, func(i, j int) bool { return body[i].Time.Before(body[j].Time) })
	return append(out, body...)
}

// FormatTimestamp renders t as an export header timestamp.
func FormatTimestamp(t time.Time) string {
	return t.Format(headerLayout)
}

// Format renders messages as export text, one header per message.
func Format(msgs []Message) string {
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(FormatTimestamp(m.Time))
		b.WriteString(" - ")
		if m.Sender != "" {
			b.WriteString(m.Sender)
			b.WriteString(": ")
		}
		b.WriteString(m.Text)
	}
	return b.String()
}

// WriteArchive writes text as a single chat-log entry of a zip archive.
func WriteArchive(w io.Writer, entryName, text string) error {
	zw := zip.NewWriter(w)
	fw, err := zw.Create(entryName)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(fw, text); err != nil {
		return err
	}
	return zw.Close()
}

// WriteSampleArchive generates a chat and saves it as a zip at path.
func WriteSampleArchive(path string, opts Options) (int, error) {
	msgs := Generate(opts)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	if err := WriteArchive(f, SampleEntryName, Format(msgs)); err != nil {
		f.Close()
		return 0, fmt.Errorf("write archive: %w", err)
	}
	return len(msgs), f.Close()
}
