package photo

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/catalog"
	inserrors "github.com/a3tai/mcp-bridge-inspector/internal/inspection/errors"
	"github.com/a3tai/mcp-bridge-inspector/internal/metrics"
)

// DefaultWorkers bounds concurrent folder listings.
const DefaultWorkers = 8

// Lister lists object keys under a prefix. blob.Store satisfies it.
type Lister interface {
	List(ctx context.Context, prefix string) ([]string, error)
}

// Options scope a Resolver to one drawing.
type Options struct {
	Project string
	Drawing string
	Names   catalog.Names
	Workers int
}

// Resolver resolves patterns for one drawing import. Folder listings and
// per-pattern matches are memoized for the Resolver's lifetime, so a new
// Resolver is created per import.
type Resolver struct {
	lister  Lister
	opts    Options
	logger  *zap.Logger
	group   singleflight.Group
	mu      sync.Mutex
	folders map[string][]string
	matches map[Pattern][]string
}

// NewResolver creates a Resolver.
func NewResolver(lister Lister, opts Options, logger *zap.Logger) *Resolver {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		lister:  lister,
		opts:    opts,
		logger:  logger,
		folders: make(map[string][]string),
		matches: make(map[Pattern][]string),
	}
}

// Project returns the project the Resolver is scoped to.
func (r *Resolver) Project() string { return r.opts.Project }

// Drawing returns the drawing the Resolver is scoped to.
func (r *Resolver) Drawing() string { return r.opts.Drawing }

// Prefix is the listing prefix of a pattern's photographer folder.
func (r *Resolver) Prefix(p Pattern) string {
	return r.opts.Project + "/" + r.opts.Drawing + "/" + p.Folder()
}

// ResolveSpec parses spec with the Resolver's initials table and resolves it.
func (r *Resolver) ResolveSpec(ctx context.Context, spec string) ([]string, error) {
	return r.Resolve(ctx, ParseSpec(spec, r.opts.Names))
}

// Resolve looks up every pattern concurrently and returns the matching keys
// in pattern order without duplicates. An empty result is not an error.
func (r *Resolver) Resolve(ctx context.Context, patterns []Pattern) ([]string, error) {
	results := make([][]string, len(patterns))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, p := range patterns {
		g.Go(func() error {
			keys, err := r.lookup(gctx, p)
			if err != nil {
				return err
			}
			results[i] = keys
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	out := []string{}
	for _, keys := range results {
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out, nil
}

func (r *Resolver) lookup(ctx context.Context, p Pattern) ([]string, error) {
	r.mu.Lock()
	cached, ok := r.matches[p]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	prefix := r.Prefix(p)
	keys, err := r.folder(ctx, prefix)
	if err != nil {
		return nil, err
	}

	var found []string
	for _, k := range keys {
		if p.Matches(prefix, k) {
			found = append(found, k)
		}
	}

	r.mu.Lock()
	r.matches[p] = found
	r.mu.Unlock()

	r.logger.Debug("photo pattern resolved",
		zap.String("pattern", p.String()),
		zap.Int("matches", len(found)))
	return found, nil
}

func (r *Resolver) folder(ctx context.Context, prefix string) ([]string, error) {
	r.mu.Lock()
	keys, ok := r.folders[prefix]
	r.mu.Unlock()
	if ok {
		metrics.RecordPhotoLookup(true, 0)
		return keys, nil
	}

	start := time.Now()
	v, err, _ := r.group.Do(prefix, func() (interface{}, error) {
		r.mu.Lock()
		keys, ok := r.folders[prefix]
		r.mu.Unlock()
		if ok {
			return keys, nil
		}

		keys, err := r.lister.List(ctx, prefix)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.folders[prefix] = keys
		r.mu.Unlock()
		return keys, nil
	})
	if err != nil {
		return nil, inserrors.NewBlobAccess(prefix, err).WithDrawing(r.opts.Project, r.opts.Drawing)
	}
	metrics.RecordPhotoLookup(false, time.Since(start))
	return v.([]string), nil
}
