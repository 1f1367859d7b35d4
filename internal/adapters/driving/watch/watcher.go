// Package watch ingests export files as they appear in a directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
	"github.com/custodia-labs/recall/internal/logger"
)

// DefaultDebounce is how long a file must stay quiet before it is ingested.
const DefaultDebounce = 500 * time.Millisecond

// DefaultExtensions are the file types picked up by the watcher.
var DefaultExtensions = []string{".json", ".md", ".txt"}

var (
	// ErrMissingIngestService is returned when no ingest service is given.
	ErrMissingIngestService = errors.New("ingest service is required")

	// ErrMissingOwner is returned when no owner is given.
	ErrMissingOwner = errors.New("owner is required")
)

// ResultFunc receives the outcome of each ingested file.
type ResultFunc func(path string, res *domain.IngestResult, err error)

// Watcher ingests files created or written in a directory.
type Watcher struct {
	ingest     driving.IngestService
	owner      string
	debounce   time.Duration
	extensions map[string]bool
	onResult   ResultFunc
	log        zerolog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a changed file is ingested.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithExtensions replaces the watched file extensions.
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) {
		w.extensions = make(map[string]bool, len(exts))
		for _, ext := range exts {
			w.extensions[strings.ToLower(ext)] = true
		}
	}
}

// WithResultFunc registers a callback for ingestion outcomes.
func WithResultFunc(fn ResultFunc) Option {
	return func(w *Watcher) {
		w.onResult = fn
	}
}

// New creates a watcher that ingests files for owner.
func New(ingest driving.IngestService, owner string, opts ...Option) (*Watcher, error) {
	if ingest == nil {
		return nil, ErrMissingIngestService
	}
	if owner == "" {
		return nil, ErrMissingOwner
	}

	w := &Watcher{
		ingest:   ingest,
		owner:    owner,
		debounce: DefaultDebounce,
		log:      logger.With("watch"),
	}
	WithExtensions(DefaultExtensions...)(w)
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run watches dir until ctx is cancelled. Subdirectories are not watched.
func (w *Watcher) Run(ctx context.Context, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch %s: %w: not a directory", dir, domain.ErrInvalidInput)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.log.Info().Str("dir", dir).Dur("debounce", w.debounce).Msg("watching")

	ready := make(chan string, 16)
	deb := newDebouncer(w.debounce, func(path string) {
		select {
		case ready <- path:
		case <-ctx.Done():
		}
	})
	defer deb.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.shouldIngest(event) {
				deb.schedule(event.Name)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("watch error")
		case path := <-ready:
			w.ingestFile(ctx, path)
		}
	}
}

// debouncer fires once per path after delay has passed without another
// schedule call for it.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	fire    func(path string)
	timers  map[string]*time.Timer
	pending map[string]uint64
	gen     uint64
}

func newDebouncer(delay time.Duration, fire func(path string)) *debouncer {
	return &debouncer{
		delay:   delay,
		fire:    fire,
		timers:  make(map[string]*time.Timer),
		pending: make(map[string]uint64),
	}
}

// schedule (re)starts the quiet period for path. A timer that already fired
// but has not yet run expire is superseded by the new generation.
func (d *debouncer) schedule(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[path]; ok {
		t.Stop()
	}
	d.gen++
	g := d.gen
	d.pending[path] = g
	d.timers[path] = time.AfterFunc(d.delay, func() { d.expire(path, g) })
}

// expire fires path if g is still its latest generation.
func (d *debouncer) expire(path string, g uint64) {
	d.mu.Lock()
	if cur, ok := d.pending[path]; !ok || cur != g {
		d.mu.Unlock()
		return
	}
	delete(d.pending, path)
	delete(d.timers, path)
	d.mu.Unlock()
	d.fire(path)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path, t := range d.timers {
		t.Stop()
		delete(d.timers, path)
		delete(d.pending, path)
	}
}

// shouldIngest reports whether an event names a file worth ingesting.
// Removes, renames, chmods, directories and hidden files are skipped.
func (w *Watcher) shouldIngest(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}

	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if !w.extensions[strings.ToLower(filepath.Ext(base))] {
		return false
	}

	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return false
	}
	return true
}

func (w *Watcher) ingestFile(ctx context.Context, path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		w.log.Warn().Err(err).Str("file", path).Msg("read failed")
		w.report(path, nil, err)
		return
	}

	res, err := w.ingest.Ingest(ctx, domain.IngestRequest{
		OwnerID: w.owner,
		Files:   []domain.Upload{{Filename: filepath.Base(path), Content: string(content)}},
	})
	switch {
	case err != nil:
		w.log.Error().Err(err).Str("file", path).Msg("ingest rejected")
	case !res.Success:
		w.log.Error().Str("file", path).Str("error", res.Error).Msg("ingest failed")
	default:
		w.log.Info().
			Str("file", path).
			Int("conversations", res.ConversationsProcessed).
			Int("chunks", res.ChunksCreated).
			Msg("ingested")
	}
	w.report(path, res, err)
}

func (w *Watcher) report(path string, res *domain.IngestResult, err error) {
	if w.onResult != nil {
		w.onResult(path, res, err)
	}
}
