package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/schemtools/spicenet/pkg/cache"
	"github.com/schemtools/spicenet/pkg/errors"
	"github.com/schemtools/spicenet/pkg/hierarchy"
	"github.com/schemtools/spicenet/pkg/netlist"
	"github.com/schemtools/spicenet/pkg/observability"
	"github.com/schemtools/spicenet/pkg/schematic"
	"github.com/schemtools/spicenet/pkg/spice"
	"github.com/schemtools/spicenet/pkg/store"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the store, cache, and logger - it
// doesn't hold pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Store  store.Store
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner over the given store.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(st store.Store, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:  st,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete resolve → emit → fetch pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Resolve
	resolveStart := time.Now()
	schem, resolveHit, err := r.ResolveWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "resolving %s", opts.Schematic)
	}
	result.Schematic = schem
	result.Stats.ResolveTime = time.Since(resolveStart)
	result.Stats.GroupCount = len(schem.Groups)
	result.Stats.ModelCount = len(schem.Models)
	result.CacheInfo.ResolveHit = resolveHit

	if data, err := json.Marshal(schem); err == nil {
		result.DocsHash = cache.Hash(data)
	}

	r.Logger.Info("resolved hierarchy",
		"schematic", opts.Schematic,
		"groups", result.Stats.GroupCount,
		"models", result.Stats.ModelCount,
		"duration", result.Stats.ResolveTime)

	// Stage 2: Emit
	emitStart := time.Now()
	deck, emitHit, err := r.EmitWithCacheInfo(ctx, schem, result.DocsHash, opts)
	if err != nil {
		return nil, err
	}
	result.Spice = deck
	result.Stats.EmitTime = time.Since(emitStart)
	result.Stats.PendingCount = len(deck.Pending)
	result.CacheInfo.EmitHit = emitHit

	r.Logger.Info("generated deck",
		"simulator", opts.Simulator,
		"corner", opts.Corner,
		"pending_includes", result.Stats.PendingCount,
		"duration", result.Stats.EmitTime)

	// Stage 3: Fetch includes
	if opts.FetchIncludes && len(deck.Pending) > 0 {
		fetchStart := time.Now()
		if err := r.FetchIncludes(ctx, deck.Pending, opts.Logger); err != nil {
			return nil, err
		}
		result.Stats.FetchTime = time.Since(fetchStart)

		r.Logger.Info("fetched includes",
			"count", result.Stats.PendingCount,
			"duration", result.Stats.FetchTime)
	}

	return result, nil
}

// ResolveWithCacheInfo fetches the document closure with caching and returns
// cache hit info.
func (r *Runner) ResolveWithCacheInfo(ctx context.Context, opts Options) (*schematic.Schematic, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.HTTPKey("resolve", opts.Schematic)

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var schem schematic.Schematic
			if err := json.Unmarshal(data, &schem); err == nil {
				observability.Cache().OnCacheHit(ctx, "resolve")
				return &schem, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "resolve")
	}

	observability.Netlist().OnResolveStart(ctx, opts.Schematic)
	start := time.Now()
	schem, err := hierarchy.Resolve(ctx, r.Store, opts.Schematic, opts.Logger)
	observability.Netlist().OnResolveComplete(ctx, opts.Schematic, groupCount(schem), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(schem); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLStore); err == nil {
			observability.Cache().OnCacheSet(ctx, "resolve", len(data))
		}
	}

	return schem, false, nil
}

// Resolve is a convenience wrapper that discards the cache hit info.
func (r *Runner) Resolve(ctx context.Context, opts Options) (*schematic.Schematic, error) {
	schem, _, err := r.ResolveWithCacheInfo(ctx, opts)
	return schem, err
}

// EmitWithCacheInfo generates the deck with caching and returns cache hit
// info. The docsHash keys the cache entry; pass the hash of the resolved
// closure so edits invalidate cached decks.
func (r *Runner) EmitWithCacheInfo(ctx context.Context, schem *schematic.Schematic, docsHash string, opts Options) (*spice.Result, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.SpiceKey(docsHash, opts.SpiceKeyOpts())

	if docsHash != "" && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var deck spice.Result
			if err := json.Unmarshal(data, &deck); err == nil {
				observability.Cache().OnCacheHit(ctx, "spice")
				return &deck, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "spice")
	}

	observability.Netlist().OnEmitStart(ctx, opts.Schematic, opts.Simulator)
	start := time.Now()
	deck, err := spice.Emit(opts.Schematic, schem, opts.spiceOptions())
	observability.Netlist().OnEmitComplete(ctx, opts.Schematic, opts.Simulator, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if docsHash != "" {
		if data, err := json.Marshal(deck); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLSpice); err == nil {
				observability.Cache().OnCacheSet(ctx, "spice", len(data))
			}
		}
	}

	return deck, false, nil
}

// Nets resolves the schematic and extracts the nets of its top-level group.
func (r *Runner) Nets(ctx context.Context, opts Options) (netlist.Nets, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	schem, err := r.Resolve(ctx, opts)
	if err != nil {
		return nil, err
	}
	docs := schem.Groups[opts.Schematic]

	observability.Netlist().OnExtractStart(ctx, opts.Schematic, len(docs))
	start := time.Now()
	nets, err := netlist.Extract(docs, schem.Models)
	observability.Netlist().OnExtractComplete(ctx, opts.Schematic, len(nets), time.Since(start), err)
	return nets, err
}

// Vectors resolves the schematic and lists its simulation probe vectors.
func (r *Runner) Vectors(ctx context.Context, opts Options) ([]string, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	schem, err := r.Resolve(ctx, opts)
	if err != nil {
		return nil, err
	}
	return spice.Vectors(opts.Schematic, schem, opts.Simulator), nil
}

// FetchIncludes downloads pending include files one at a time so each fetch
// can be reported to the download hooks.
func (r *Runner) FetchIncludes(ctx context.Context, pending []spice.Download, logger *log.Logger) error {
	fetcher := spice.NewFetcher(logger)
	for _, dl := range pending {
		observability.Download().OnDownloadStart(ctx, dl.URL)
		start := time.Now()
		if err := fetcher.Fetch(ctx, []spice.Download{dl}); err != nil {
			observability.Download().OnDownloadError(ctx, dl.URL, err)
			return err
		}
		observability.Download().OnDownloadComplete(ctx, dl.URL, fileSize(dl.Path), time.Since(start))
	}
	return nil
}

// Close releases resources held by the runner.
func (r *Runner) Close(ctx context.Context) error {
	if r.Cache != nil {
		if err := r.Cache.Close(); err != nil {
			return err
		}
	}
	if r.Store != nil {
		return r.Store.Close(ctx)
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func groupCount(s *schematic.Schematic) int {
	if s == nil {
		return 0
	}
	return len(s.Groups)
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
