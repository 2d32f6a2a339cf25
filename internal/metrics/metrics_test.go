package metrics

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/Zuo-Peng/wachat-insight/internal/parse"
)

func at(s string) *time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local)
	if err != nil {
		panic(err)
	}
	return &t
}

func rec(sender, msg string, ts *time.Time) parse.ChatRecord {
	return parse.ChatRecord{Sender: sender, Message: msg, Timestamp: ts}
}

func TestCompute_AverageLength(t *testing.T) {
	res := Compute([]parse.ChatRecord{rec("A", "hi", nil), rec("B", "hello there", nil)})
	if float64(res.AverageMessageLength) != 6.5 {
		t.Errorf("expected 6.5, got %v", res.AverageMessageLength)
	}
}

func TestCompute_AverageCountsRunesAndEmpty(t *testing.T) {
	res := Compute([]parse.ChatRecord{rec("A", "café", nil), rec("A", "", nil)})
	if float64(res.AverageMessageLength) != 2 {
		t.Errorf("expected 2, got %v", res.AverageMessageLength)
	}
}

func TestCompute_Empty(t *testing.T) {
	res := Compute(nil)
	if res.TotalMessages != 0 || res.UniqueParticipants != 0 {
		t.Errorf("expected zero counts, got %+v", res)
	}
	if res.AverageMessageLength.Valid() {
		t.Errorf("expected NaN average, got %v", res.AverageMessageLength)
	}
	if !res.HourlyActivity.Empty() {
		t.Errorf("expected empty matrix, got %+v", res.HourlyActivity)
	}
	if len(res.BusiestDays) != 7 {
		t.Errorf("expected 7 days, got %d", len(res.BusiestDays))
	}
	if res.PeakHour() != -1 {
		t.Errorf("expected no peak hour, got %d", res.PeakHour())
	}

	b, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"average_message_length":null`) {
		t.Errorf("expected null average in %s", b)
	}
	var back Result
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !math.IsNaN(float64(back.AverageMessageLength)) {
		t.Errorf("expected NaN after decoding null, got %v", back.AverageMessageLength)
	}
}

func TestCompute_Counts(t *testing.T) {
	// 2025-02-03 is a Monday
	records := []parse.ChatRecord{
		rec(parse.SystemSender, "group created", at("2025-02-01 08:01")),
		rec("Ravi", "a", at("2025-02-03 09:10")),
		rec("Sneha", "b", at("2025-02-03 09:40")),
		rec("Ravi", "c", at("2025-02-04 21:00")),
		rec("Sneha", "d", nil),
		rec("Arjun", "e", at("2025-02-09 09:00")),
	}
	res := Compute(records)

	if res.TotalMessages != 6 {
		t.Errorf("expected 6 messages, got %d", res.TotalMessages)
	}
	if res.UniqueParticipants != 3 {
		t.Errorf("expected 3 participants, got %d", res.UniqueParticipants)
	}

	wantSenders := []SenderCount{{"Ravi", 2}, {"Sneha", 2}, {parse.SystemSender, 1}, {"Arjun", 1}}
	if len(res.MessagesPerParticipant) != len(wantSenders) {
		t.Fatalf("expected %v, got %v", wantSenders, res.MessagesPerParticipant)
	}
	for i, w := range wantSenders {
		if res.MessagesPerParticipant[i] != w {
			t.Errorf("position %d: expected %v, got %v", i, w, res.MessagesPerParticipant[i])
		}
	}

	wantHours := []HourCount{{8, 1}, {9, 3}, {21, 1}}
	if len(res.BusiestHours) != len(wantHours) {
		t.Fatalf("expected %v, got %v", wantHours, res.BusiestHours)
	}
	for i, w := range wantHours {
		if res.BusiestHours[i] != w {
			t.Errorf("hour %d: expected %v, got %v", i, w, res.BusiestHours[i])
		}
	}
	if dense := res.DenseHours(); dense[9] != 3 || dense[10] != 0 {
		t.Errorf("unexpected dense hours %v", dense)
	}
	if res.PeakHour() != 9 {
		t.Errorf("expected peak hour 9, got %d", res.PeakHour())
	}

	if res.BusiestDays[0].Day != "Monday" || res.BusiestDays[0].Count != 2 {
		t.Errorf("expected Monday first with 2, got %v", res.BusiestDays[0])
	}
	if res.BusiestDays[2].Day != "Wednesday" || res.BusiestDays[2].Count != 0 {
		t.Errorf("expected Wednesday with 0, got %v", res.BusiestDays[2])
	}
	if res.BusiestDays[6].Day != "Sunday" || res.BusiestDays[6].Count != 1 {
		t.Errorf("expected Sunday last with 1, got %v", res.BusiestDays[6])
	}

	if len(res.DailyCounts) != 4 || res.DailyCounts[0].Date != "2025-02-01" || res.DailyCounts[1].Count != 2 {
		t.Errorf("unexpected daily counts %v", res.DailyCounts)
	}
	if res.FirstMessage == nil || !res.FirstMessage.Equal(*at("2025-02-01 08:01")) {
		t.Errorf("unexpected first message %v", res.FirstMessage)
	}
	if res.LastMessage == nil || !res.LastMessage.Equal(*at("2025-02-09 09:00")) {
		t.Errorf("unexpected last message %v", res.LastMessage)
	}
}

func TestCompute_HourlyActivityTopFive(t *testing.T) {
	var records []parse.ChatRecord
	add := func(sender string, n int, hour string) {
		for i := 0; i < n; i++ {
			records = append(records, rec(sender, "x", at("2025-02-03 "+hour)))
		}
	}
	add(parse.SystemSender, 10, "07:00")
	add("F", 1, "10:00")
	add("A", 6, "10:00")
	add("B", 5, "11:00")
	add("C", 4, "12:00")
	add("D", 3, "13:00")
	add("E", 3, "14:00")
	records = append(records, rec("A", "no time", nil))

	m := Compute(records).HourlyActivity
	want := []string{"A", "B", "C", "D", "E"}
	if strings.Join(m.Senders, ",") != strings.Join(want, ",") {
		t.Fatalf("expected senders %v, got %v", want, m.Senders)
	}
	if m.Counts[0][10] != 6 || m.Counts[0][11] != 0 {
		t.Errorf("unexpected row for A: %v", m.Counts[0])
	}
	if m.Counts[4][14] != 3 {
		t.Errorf("unexpected row for E: %v", m.Counts[4])
	}
	if m.Max() != 6 {
		t.Errorf("expected max 6, got %d", m.Max())
	}
}

func TestCompute_OnlySystem(t *testing.T) {
	res := Compute([]parse.ChatRecord{rec(parse.SystemSender, "joined", at("2025-02-03 09:00"))})
	if res.UniqueParticipants != 0 {
		t.Errorf("expected 0 participants, got %d", res.UniqueParticipants)
	}
	if !res.HourlyActivity.Empty() {
		t.Errorf("expected empty matrix, got %v", res.HourlyActivity.Senders)
	}
}
