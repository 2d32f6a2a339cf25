// Package metrics computes descriptive statistics over a set of chat records.
package metrics

import (
	"encoding/json"
	"math"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/Zuo-Peng/wachat-insight/internal/parse"
)

// TopActivitySenders is how many senders the hourly matrix keeps.
const TopActivitySenders = 5

// Weekdays lists days in display order.
var Weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

type SenderCount struct {
	Sender string `json:"sender"`
	Count  int    `json:"count"`
}

type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

type DateCount struct {
	Date  string `json:"date"` // 2006-01-02
	Count int    `json:"count"`
}

// Matrix holds per-sender message counts by hour of day.
type Matrix struct {
	Senders []string  `json:"senders"`
	Counts  [][24]int `json:"counts"`
}

func (m Matrix) Empty() bool {
	return len(m.Senders) == 0
}

// Max returns the largest cell, for scaling heat maps.
func (m Matrix) Max() int {
	top := 0
	for _, row := range m.Counts {
		for _, c := range row {
			if c > top {
				top = c
			}
		}
	}
	return top
}

// Average is a mean that may be undefined. NaN encodes as JSON null.
type Average float64

func (a Average) Valid() bool {
	return !math.IsNaN(float64(a))
}

func (a Average) MarshalJSON() ([]byte, error) {
	if !a.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(a))
}

func (a *Average) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*a = Average(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*a = Average(f)
	return nil
}

type Result struct {
	TotalMessages          int           `json:"total_messages"`
	UniqueParticipants     int           `json:"unique_participants"`
	MessagesPerParticipant []SenderCount `json:"messages_per_participant"`
	BusiestHours           []HourCount   `json:"busiest_hours"`
	BusiestDays            []DayCount    `json:"busiest_days"`
	AverageMessageLength   Average       `json:"average_message_length"`
	HourlyActivity         Matrix        `json:"hourly_activity_top_senders"`
	DailyCounts            []DateCount   `json:"daily_counts"`
	FirstMessage           *time.Time    `json:"first_message,omitempty"`
	LastMessage            *time.Time    `json:"last_message,omitempty"`
}

// Compute derives every statistic from scratch. It never fails: an empty
// input yields zero counts, a NaN average and an empty matrix.
func Compute(records []parse.ChatRecord) *Result {
	res := &Result{
		TotalMessages:          len(records),
		MessagesPerParticipant: []SenderCount{},
		BusiestHours:           []HourCount{},
		DailyCounts:            []DateCount{},
		HourlyActivity:         Matrix{Senders: []string{}, Counts: [][24]int{}},
	}

	table, codes := parse.EncodeSenders(records)
	perSender := make([]int, table.Len())
	var hours [24]int
	var days [7]int
	daily := make(map[string]int)
	var runes int

	for i := range records {
		r := &records[i]
		perSender[codes[i]]++
		runes += utf8.RuneCountInString(r.Message)

		if r.Timestamp == nil {
			continue
		}
		ts := *r.Timestamp
		hours[ts.Hour()]++
		days[ts.Weekday()]++
		daily[ts.Format(parse.DateLayout)]++
		if res.FirstMessage == nil || ts.Before(*res.FirstMessage) {
			t := ts
			res.FirstMessage = &t
		}
		if res.LastMessage == nil || ts.After(*res.LastMessage) {
			t := ts
			res.LastMessage = &t
		}
	}

	if len(records) == 0 {
		res.AverageMessageLength = Average(math.NaN())
	} else {
		res.AverageMessageLength = Average(float64(runes) / float64(len(records)))
	}

	// codes are assigned in first-encounter order, so a stable sort on
	// count keeps ties in that order
	for code, n := range perSender {
		name := table.Name(code)
		if name != parse.SystemSender {
			res.UniqueParticipants++
		}
		res.MessagesPerParticipant = append(res.MessagesPerParticipant, SenderCount{Sender: name, Count: n})
	}
	sort.SliceStable(res.MessagesPerParticipant, func(i, j int) bool {
		return res.MessagesPerParticipant[i].Count > res.MessagesPerParticipant[j].Count
	})

	for h, n := range hours {
		if n > 0 {
			res.BusiestHours = append(res.BusiestHours, HourCount{Hour: h, Count: n})
		}
	}
	for _, d := range Weekdays {
		res.BusiestDays = append(res.BusiestDays, DayCount{Day: d.String(), Count: days[d]})
	}
	for date, n := range daily {
		res.DailyCounts = append(res.DailyCounts, DateCount{Date: date, Count: n})
	}
	sort.Slice(res.DailyCounts, func(i, j int) bool {
		return res.DailyCounts[i].Date < res.DailyCounts[j].Date
	})

	res.HourlyActivity = hourlyActivity(records, codes, table, res.MessagesPerParticipant)
	return res
}

func hourlyActivity(records []parse.ChatRecord, codes []int, table *parse.SenderTable, ranked []SenderCount) Matrix {
	m := Matrix{Senders: []string{}, Counts: [][24]int{}}
	row := make(map[int]int)
	for _, sc := range ranked {
		if len(m.Senders) == TopActivitySenders {
			break
		}
		if sc.Sender == parse.SystemSender {
			continue
		}
		code, _ := table.Lookup(sc.Sender)
		row[code] = len(m.Senders)
		m.Senders = append(m.Senders, sc.Sender)
		m.Counts = append(m.Counts, [24]int{})
	}
	for i := range records {
		ri, ok := row[codes[i]]
		if !ok || records[i].Timestamp == nil {
			continue
		}
		m.Counts[ri][records[i].Timestamp.Hour()]++
	}
	return m
}

// DenseHours expands BusiestHours into a 0..23 histogram.
func (r *Result) DenseHours() [24]int {
	var out [24]int
	for _, h := range r.BusiestHours {
		out[h.Hour] = h.Count
	}
	return out
}

// TopParticipants returns at most n entries of MessagesPerParticipant.
func (r *Result) TopParticipants(n int) []SenderCount {
	if n < len(r.MessagesPerParticipant) {
		return r.MessagesPerParticipant[:n]
	}
	return r.MessagesPerParticipant
}

// PeakHour returns the busiest hour, or -1 when no record has a timestamp.
func (r *Result) PeakHour() int {
	best, peak := 0, -1
	for _, h := range r.BusiestHours {
		if h.Count > best {
			best, peak = h.Count, h.Hour
		}
	}
	return peak
}
