// Package app owns the reading session and exposes it to the front-ends.
// Both the terminal and the desktop reader drive a Controller; neither
// keeps session state of its own.
package app

import (
	"context"
	"sync"
	"time"

	"fiapo/internal/config"
	"fiapo/internal/decoder"
	"fiapo/internal/errors"
	"fiapo/internal/library"
	"fiapo/internal/log"
	"fiapo/internal/reader"
	"fiapo/internal/search"
	"fiapo/internal/session"
	"fiapo/internal/watch"
)

// Controller wires the session builder, the page server, the import
// history and the file watcher together.
type Controller struct {
	cfg     *config.Config
	builder *session.Builder
	server  *reader.Server
	library *library.Store
	watcher *watch.Watcher
	search  *search.Client

	mu      sync.Mutex
	picked  []string
	skipped []session.Skipped
	closed  bool
}

type options struct {
	documents decoder.Decoder
	images    decoder.Decoder
	library   *library.Store
	watch     bool
}

// Option configures a Controller
type Option func(*options)

// WithDecoders replaces the document and image decoders
func WithDecoders(documents, images decoder.Decoder) Option {
	return func(o *options) {
		o.documents = documents
		o.images = images
	}
}

// WithLibrary uses store for the import history regardless of the config
func WithLibrary(store *library.Store) Option {
	return func(o *options) { o.library = store }
}

// WithoutWatcher disables watching session files
func WithoutWatcher() Option {
	return func(o *options) { o.watch = false }
}

// New builds a Controller from cfg
func New(cfg *config.Config, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.NewConfigError("invalid configuration", "", errors.InvalidConfig, err)
	}

	o := &options{watch: true}
	for _, opt := range opts {
		opt(o)
	}
	if o.documents == nil {
		o.documents = decoder.NewFitz(cfg.Decoder.DPI)
	}
	if o.images == nil {
		o.images = decoder.NewImage()
	}

	classifier, err := session.NewClassifier(cfg.Import.Documents, cfg.Import.Images)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		cfg: cfg,
		builder: session.NewBuilder(classifier, o.documents, o.images,
			session.WithWorkers(cfg.Decoder.Workers),
			session.WithPrewarm(cfg.Reader.Prewarm),
		),
		server: reader.NewServer(
			reader.WithDepth(cfg.Reader.LookAround),
			reader.WithPrefetch(cfg.Reader.Prefetch),
		),
		library: o.library,
	}

	if c.library == nil && cfg.Library.Enabled {
		store, err := library.Open(cfg.Library.Path)
		if err != nil {
			// History is a convenience; reading works without it
			log.LogWithError(err).Warn("Import history unavailable")
		} else {
			c.library = store
		}
	}

	if cfg.Search.Enabled {
		c.search = search.NewClient(cfg.Search.BaseURL,
			search.WithCoverURL(cfg.Search.CoverURL),
			search.WithTimeout(time.Duration(cfg.Search.Timeout)*time.Second),
		)
	}

	if o.watch {
		w, err := watch.New()
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			log.LogWithError(err).Warn("File watching unavailable")
		} else {
			c.watcher = w
		}
	}

	return c, nil
}

// Config returns the configuration the Controller was built from
func (c *Controller) Config() *config.Config { return c.cfg }

// Import builds a session from paths and makes it current. When nothing
// readable is picked the previous session stays loaded and the
// EmptySession error is returned.
func (c *Controller) Import(ctx context.Context, paths []string) (*session.Plan, error) {
	plan, err := c.builder.Build(ctx, paths)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		plan.Close()
		return nil, errors.NewSessionError("controller is closed", errors.EmptySession, nil)
	}

	c.server.SetSources(plan.Sources, plan.TotalPages)
	c.picked = append([]string(nil), paths...)
	c.skipped = plan.Skipped

	files := make([]string, 0, len(plan.Sources))
	for _, s := range plan.Sources {
		files = append(files, s.Path())
	}
	if c.watcher != nil {
		if err := c.watcher.WatchFiles(files); err != nil {
			log.LogWithError(err).Warn("Cannot watch session files")
		}
	}
	if c.library != nil {
		if _, err := c.library.RecordImport(ctx, files, plan.TotalPages); err != nil {
			log.LogWithError(err).Warn("Cannot record import")
		}
	}

	log.LogWithFields(
		log.F("sources", len(plan.Sources)),
		log.F("pages", plan.TotalPages),
		log.F("skipped", len(plan.Skipped)),
	).Info("Session imported")
	return plan, nil
}

// Reload rebuilds the current session from the paths it was imported from
// and returns to the same page number, or the last page if the session
// shrank.
func (c *Controller) Reload(ctx context.Context) (*reader.Page, error) {
	c.mu.Lock()
	picked := c.picked
	c.mu.Unlock()
	if len(picked) == 0 {
		return nil, errors.NewSessionError("nothing to reload", errors.EmptySession, errors.ErrEmptySession)
	}

	current, _ := c.server.Progress()
	plan, err := c.Import(ctx, picked)
	if err != nil {
		return nil, err
	}
	if current > plan.TotalPages {
		current = plan.TotalPages
	}
	if current <= 1 {
		page, _ := c.server.Current()
		return page, nil
	}
	return c.server.JumpTo(current)
}

// Navigate turns one page in dir
func (c *Controller) Navigate(dir reader.Direction) (*reader.Page, bool) {
	return c.server.Navigate(dir)
}

// JumpTo shows the 1-based page number
func (c *Controller) JumpTo(number int) (*reader.Page, error) {
	return c.server.JumpTo(number)
}

// Current returns the page being read
func (c *Controller) Current() (*reader.Page, bool) {
	return c.server.Current()
}

// Progress returns the current page number and the session's page total
func (c *Controller) Progress() (current, total int) {
	return c.server.Progress()
}

// Wait blocks until background page replenishment is idle
func (c *Controller) Wait() {
	c.server.Wait()
}

// Skipped returns the paths the last import could not use
func (c *Controller) Skipped() []session.Skipped {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]session.Skipped(nil), c.skipped...)
}

// Reset closes the session
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.server.Reset()
	c.picked = nil
	c.skipped = nil
	if c.watcher != nil {
		if err := c.watcher.WatchFiles(nil); err != nil {
			log.LogWithError(err).Debug("Cannot clear watched files")
		}
	}
}

// Changes delivers modifications of session files. It is nil when file
// watching is disabled.
func (c *Controller) Changes() <-chan watch.Change {
	if c.watcher == nil {
		return nil
	}
	return c.watcher.Changes()
}

// Recent returns up to limit past imports, newest first
func (c *Controller) Recent(ctx context.Context, limit int) ([]*library.Import, error) {
	if c.library == nil {
		return nil, nil
	}
	return c.library.Recent(ctx, limit)
}

// Search queries the remote catalog for title and fetches cover
// thumbnails no larger than size pixels.
func (c *Controller) Search(ctx context.Context, title string, size uint) ([]search.Hit, error) {
	if c.search == nil {
		return nil, errors.NewSearchError("search is disabled", title, errors.SearchFailed, nil)
	}
	return c.search.SearchWithCovers(ctx, title, size)
}

// Close releases the session, the watcher and the history database
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.server.Wait()
	c.server.Reset()
	if c.watcher != nil {
		c.watcher.Stop()
	}
	if c.library != nil {
		return c.library.Close()
	}
	return nil
}
