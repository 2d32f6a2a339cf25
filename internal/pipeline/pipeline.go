// Package pipeline wires extraction, parsing, cleaning and analysis into a
// loaded dataset that can be analyzed under different filters.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Zuo-Peng/wachat-insight/internal/content"
	"github.com/Zuo-Peng/wachat-insight/internal/extract"
	"github.com/Zuo-Peng/wachat-insight/internal/metrics"
	"github.com/Zuo-Peng/wachat-insight/internal/parse"
	"github.com/Zuo-Peng/wachat-insight/internal/scan"
	"github.com/Zuo-Peng/wachat-insight/internal/textclean"
)

// Dataset is every record read from one batch of inputs, cleaned and ready
// for analysis. Records are in input order.
type Dataset struct {
	Records  []parse.ChatRecord
	Entries  []extract.Entry
	Failures []extract.Failure
	LoadedAt time.Time
}

// Load scans inputs, extracts the chat text and normalizes it. It fails
// with extract.ErrNoInput when inputs were given but none could be read.
func Load(ctx context.Context, inputs []string, cleaner *textclean.Cleaner) (*Dataset, error) {
	files, err := scan.ScanInputs(inputs)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := extract.ExtractFiles(scan.Paths(files))
	return fromExtract(ctx, res, cleaner)
}

// LoadBuffers is Load for archives held in memory.
func LoadBuffers(ctx context.Context, bufs []extract.Buffer, cleaner *textclean.Cleaner) (*Dataset, error) {
	return fromExtract(ctx, extract.ExtractBuffers(bufs), cleaner)
}

func fromExtract(ctx context.Context, res *extract.Result, cleaner *textclean.Cleaner) (*Dataset, error) {
	if err := res.Err(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds := &Dataset{
		Records:  parse.Load(res.Text),
		Entries:  res.Entries,
		Failures: res.Failures,
		LoadedAt: time.Now(),
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleaner.Apply(ds.Records)
	log.Info().
		Int("archives", countArchives(res.Entries)).
		Int("entries", len(res.Entries)).
		Int("failures", len(res.Failures)).
		Int("records", len(ds.Records)).
		Msg("dataset loaded")
	return ds, nil
}

func countArchives(entries []extract.Entry) int {
	seen := make(map[string]struct{})
	for _, e := range entries {
		seen[e.Archive] = struct{}{}
	}
	return len(seen)
}

// Senders lists every sender in first-appearance order, System included.
func (d *Dataset) Senders() []string {
	t, _ := parse.EncodeSenders(d.Records)
	return t.Names()
}

// Span returns the earliest and latest timestamps, or nil when no record has one.
func (d *Dataset) Span() (first, last *time.Time) {
	for i := range d.Records {
		ts := d.Records[i].Timestamp
		if ts == nil {
			continue
		}
		if first == nil || ts.Before(*first) {
			first = ts
		}
		if last == nil || ts.After(*last) {
			last = ts
		}
	}
	return first, last
}

// Report is one analysis run over a filtered view of a dataset.
type Report struct {
	RunID     uuid.UUID          `json:"run_id"`
	Generated time.Time          `json:"generated"`
	Filter    parse.Filter       `json:"filter"`
	Records   []parse.ChatRecord `json:"-"`
	Metrics   *metrics.Result    `json:"metrics"`
	Content   *content.Result    `json:"content"`
}

// Analyze filters the dataset and runs the metrics engine and the content
// analyzer on what is left. The dataset's records are not modified.
func (d *Dataset) Analyze(filter parse.Filter, opts content.Options) *Report {
	start := time.Now()
	src := filter.Apply(d.Records)
	records := make([]parse.ChatRecord, len(src))
	copy(records, src)

	rep := &Report{
		RunID:     uuid.New(),
		Generated: start,
		Filter:    filter,
		Records:   records,
		Metrics:   metrics.Compute(records),
		Content:   content.Analyze(records, opts),
	}
	log.Debug().
		Str("run", rep.RunID.String()).
		Str("filter", filter.String()).
		Int("records", len(records)).
		Dur("took", time.Since(start)).
		Msg("analysis finished")
	return rep
}
