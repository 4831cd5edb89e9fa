// Package session turns a set of picked paths into the ordered Sources of
// one reading session.
package session

import (
	"context"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"fiapo/internal/decoder"
	"fiapo/internal/errors"
	"fiapo/internal/log"
	"fiapo/internal/source"
)

// Skipped is a picked path that did not become a Source
type Skipped struct {
	Path   string
	Reason error
}

// Plan is the outcome of a successful Build
type Plan struct {
	Sources    []*source.Source
	TotalPages int
	Skipped    []Skipped
}

// Close releases any decoder handle the plan's sources hold
func (p *Plan) Close() {
	for _, s := range p.Sources {
		s.Close()
	}
}

// Builder validates, classifies and opens picked paths
type Builder struct {
	classifier *Classifier
	documents  decoder.Decoder
	images     decoder.Decoder
	workers    int
	prewarm    bool
}

// Option configures a Builder
type Option func(*Builder)

// WithWorkers bounds how many documents are opened concurrently
func WithWorkers(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithPrewarm keeps the handle of the first source in reading order open
func WithPrewarm(prewarm bool) Option {
	return func(b *Builder) { b.prewarm = prewarm }
}

// NewBuilder creates a Builder opening documents with documents and image
// files with images.
func NewBuilder(classifier *Classifier, documents, images decoder.Decoder, opts ...Option) *Builder {
	b := &Builder{
		classifier: classifier,
		documents:  documents,
		images:     images,
		workers:    4,
		prewarm:    true,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type candidate struct {
	path string
	kind source.Kind
}

type opened struct {
	src *source.Source
	err error
}

// Build classifies paths, opens every candidate to count its pages and
// returns the readable ones in reading order. It fails with EmptySession
// when nothing readable remains, and with the context error if ctx ends
// first.
func (b *Builder) Build(ctx context.Context, paths []string) (*Plan, error) {
	plan := &Plan{}
	candidates := b.candidates(paths, plan)

	// Sorted before opening so the pre-warmed source is the first one read
	sort.SliceStable(candidates, func(i, j int) bool {
		return filepath.Base(candidates[i].path) < filepath.Base(candidates[j].path)
	})

	results := make([]opened, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, c := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := source.New(c.kind, c.path, b.decoderFor(c.kind), b.prewarm && i == 0)
			results[i] = opened{src: src, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, r := range results {
			if r.src != nil {
				r.src.Close()
			}
		}
		return nil, err
	}

	kept := make([]*source.Source, 0, len(results))
	for i, r := range results {
		logger := log.LogWithFields(log.F("path", candidates[i].path))
		switch {
		case r.err != nil:
			logger.WithError(r.err).Warn("Dropping unreadable source")
			plan.Skipped = append(plan.Skipped, Skipped{Path: candidates[i].path, Reason: r.err})
		case r.src.PageCount() <= 0:
			logger.Warn("Dropping source without pages")
			r.src.Close()
			plan.Skipped = append(plan.Skipped, Skipped{
				Path:   candidates[i].path,
				Reason: errors.NewDecodeError("document has no pages", candidates[i].path, -1, errors.Unreadable, nil),
			})
		default:
			kept = append(kept, r.src)
		}
	}

	seq := source.NewSequencer(kept)
	plan.Sources = seq.Sources()
	plan.TotalPages = seq.TotalPages()
	if plan.TotalPages == 0 {
		return nil, errors.Wrapf(errors.ErrEmptySession, "none of %d picked paths", len(paths))
	}

	// The first candidate may have been dropped; warm the first kept one
	if b.prewarm {
		if err := plan.Sources[0].Open(); err != nil {
			log.LogWithError(err).Warn("Cannot keep the first source open")
		}
	}

	log.LogWithFields(
		log.F("sources", len(plan.Sources)),
		log.F("pages", plan.TotalPages),
		log.F("skipped", len(plan.Skipped)),
	).Info("Session built")
	return plan, nil
}

// candidates classifies paths, dropping duplicates, directories and paths
// that cannot be accessed.
func (b *Builder) candidates(paths []string, plan *Plan) []candidate {
	seen := make(map[string]bool, len(paths))
	out := make([]candidate, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = filepath.Clean(p)
		}
		logger := log.LogWithFields(log.F("path", abs))
		if seen[abs] {
			logger.Warn("Ignoring duplicate path")
			continue
		}
		seen[abs] = true

		kind, err := b.classifier.Classify(abs)
		if err != nil {
			logger.WithError(err).Warn("Skipping path")
			plan.Skipped = append(plan.Skipped, Skipped{Path: abs, Reason: err})
			continue
		}
		if kind == source.Directory {
			logger.Warn("Directories are not supported, skipping")
			plan.Skipped = append(plan.Skipped, Skipped{
				Path:   abs,
				Reason: errors.NewFileError("directories are not supported", abs, errors.InvalidPath, nil),
			})
			continue
		}
		out = append(out, candidate{path: abs, kind: kind})
	}
	return out
}

func (b *Builder) decoderFor(kind source.Kind) decoder.Decoder {
	if kind == source.ImageSequence {
		return b.images
	}
	return b.documents
}
