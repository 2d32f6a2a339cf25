package web

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Zuo-Peng/wachat-insight/internal/content"
	"github.com/Zuo-Peng/wachat-insight/internal/extract"
	"github.com/Zuo-Peng/wachat-insight/internal/parse"
	"github.com/Zuo-Peng/wachat-insight/internal/pipeline"
	"github.com/Zuo-Peng/wachat-insight/internal/textclean"
	"github.com/Zuo-Peng/wachat-insight/internal/watch"
)

// ErrNotLoaded is returned while no dataset has been loaded yet.
var ErrNotLoaded = errors.New("no dataset loaded")

// maxCachedReports bounds the per-filter report cache.
const maxCachedReports = 32

// Source holds the dataset the API serves. Reloads and uploads swap it
// atomically; reports are cached per filter until the next swap.
type Source struct {
	inputs  []string
	cleaner *textclean.Cleaner
	opts    content.Options

	mu      sync.RWMutex
	ds      *pipeline.Dataset
	origin  string
	loadErr error
	reports map[string]*pipeline.Report
}

func NewSource(inputs []string, cleaner *textclean.Cleaner, opts content.Options) *Source {
	return &Source{
		inputs:  inputs,
		cleaner: cleaner,
		opts:    opts,
		reports: make(map[string]*pipeline.Report),
	}
}

// Reload reads the configured inputs again. On failure the previous dataset
// stays in place.
func (s *Source) Reload(ctx context.Context) error {
	ds, err := pipeline.Load(ctx, s.inputs, s.cleaner)
	if err != nil {
		s.mu.Lock()
		s.loadErr = err
		s.mu.Unlock()
		log.Warn().Err(err).Strs("inputs", s.inputs).Msg("reload failed")
		return err
	}
	s.Replace(ds, "inputs")
	return nil
}

// Upload replaces the dataset with archives received in a request.
func (s *Source) Upload(ctx context.Context, bufs []extract.Buffer) (*pipeline.Dataset, error) {
	ds, err := pipeline.LoadBuffers(ctx, bufs, s.cleaner)
	if err != nil {
		return nil, err
	}
	s.Replace(ds, "upload")
	return ds, nil
}

// Watch reloads the inputs whenever an archive among them changes, once
// changes have settled for delay. The caller stops the returned watcher.
func (s *Source) Watch(delay time.Duration) (*watch.Watcher, error) {
	w, err := watch.New(s.inputs...)
	if err != nil {
		return nil, err
	}
	w.AddCallback(watch.Debounce(delay, func() {
		log.Info().Msg("inputs changed, reloading")
		s.Reload(context.Background())
	}))
	w.Start()
	return w, nil
}

func (s *Source) Replace(ds *pipeline.Dataset, origin string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds = ds
	s.origin = origin
	s.loadErr = nil
	s.reports = make(map[string]*pipeline.Report)
}

// Dataset returns the current dataset, the way it was loaded and the error
// of the last failed reload.
func (s *Source) Dataset() (*pipeline.Dataset, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds, s.origin, s.loadErr
}

// Report analyzes the current dataset under filter, reusing a cached run
// for the same filter.
func (s *Source) Report(filter parse.Filter) (*pipeline.Report, error) {
	key := filterKey(filter)

	s.mu.RLock()
	ds := s.ds
	rep, ok := s.reports[key]
	s.mu.RUnlock()
	if ds == nil {
		return nil, ErrNotLoaded
	}
	if ok {
		return rep, nil
	}

	rep = ds.Analyze(filter, s.opts)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ds != ds {
		// swapped while analyzing; serve the result but do not cache it
		return rep, nil
	}
	if len(s.reports) >= maxCachedReports {
		s.reports = make(map[string]*pipeline.Report)
	}
	s.reports[key] = rep
	return rep, nil
}

func filterKey(f parse.Filter) string {
	var b strings.Builder
	if f.From != nil {
		b.WriteString(f.From.Format(parse.DateLayout))
	}
	b.WriteByte('|')
	if f.To != nil {
		b.WriteString(f.To.Format(parse.DateLayout))
	}
	b.WriteByte('|')
	senders := append([]string(nil), f.Senders...)
	sort.Strings(senders)
	b.WriteString(strings.Join(senders, "\x1f"))
	return b.String()
}
