// Package watch reports changes to archive inputs so a running server can
// reload them.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

type Watcher struct {
	watcher   *fsnotify.Watcher
	files     map[string]struct{} // inputs given as files; their parent dir is watched
	dirs      map[string]struct{} // inputs given as directories
	callbacks []func(event fsnotify.Event)
	mu        sync.RWMutex
	done      chan struct{}
	stopOnce  sync.Once
}

// New watches each input. Directories are watched directly (not
// recursively); for a file input its parent directory is watched and only
// events on that file are reported.
func New(inputs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	files := make(map[string]struct{})
	dirs := make(map[string]struct{})
	added := make(map[string]struct{})
	for _, in := range inputs {
		in = filepath.Clean(in)
		dir := in
		if info, err := os.Stat(in); err == nil && info.IsDir() {
			dirs[in] = struct{}{}
		} else {
			dir = filepath.Dir(in)
			files[in] = struct{}{}
		}
		if _, ok := added[dir]; ok {
			continue
		}
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		added[dir] = struct{}{}
	}

	return &Watcher{
		watcher:   w,
		files:     files,
		dirs:      dirs,
		callbacks: make([]func(event fsnotify.Event), 0),
		done:      make(chan struct{}),
	}, nil
}

func (w *Watcher) Start() {
	go func() {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if w.relevant(event) {
					w.dispatch(event)
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Error().Err(err).Msg("watcher error")
			case <-w.done:
				return
			}
		}
	}()
}

func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) AddCallback(cb func(event fsnotify.Event)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// relevant keeps events on file inputs and on zip archives inside
// directory inputs.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Clean(event.Name)
	if _, ok := w.files[name]; ok {
		return true
	}
	if _, ok := w.dirs[filepath.Dir(name)]; !ok {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".zip")
}

func (w *Watcher) dispatch(event fsnotify.Event) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, cb := range w.callbacks {
		go cb(event)
	}
}

// Debounce returns a callback that runs fn once no event has arrived for
// delay. Bursts of writes (a copy in progress) trigger a single run.
func Debounce(delay time.Duration, fn func()) func(fsnotify.Event) {
	var mu sync.Mutex
	var timer *time.Timer
	return func(fsnotify.Event) {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, fn)
	}
}
