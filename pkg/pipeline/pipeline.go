// Package pipeline provides the core netlisting pipeline.
//
// This package implements the complete resolve → emit → fetch pipeline that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Resolve: Fetch the document closure of a schematic from the store
//  2. Emit: Extract nets and generate the SPICE deck
//  3. Fetch: Download the remote include files the deck references
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(st, cache, nil, logger)
//	opts := pipeline.Options{
//	    Schematic: "amplifier",
//	    Corner:    "tt",
//	    Simulator: "NgSpice",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	deck := result.Spice.Text
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/schemtools/spicenet/pkg/cache"
	"github.com/schemtools/spicenet/pkg/errors"
	"github.com/schemtools/spicenet/pkg/schematic"
	"github.com/schemtools/spicenet/pkg/spice"
)

// Default emission parameters, shared by CLI and API so both entry points
// produce identical decks for identical inputs.
const (
	// DefaultCorner is the process corner substituted into templates.
	DefaultCorner = "tt"

	// DefaultSimulator selects which template set models are rendered with.
	DefaultSimulator = "NgSpice"
)

// Options contains all configuration for the netlisting pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Schematic is the name of the top-level schematic group.
	Schematic string `json:"schematic"`

	// Emission options
	Corner    string `json:"corner,omitempty"`
	Simulator string `json:"simulator,omitempty"`
	Extra     string `json:"extra,omitempty"` // analysis cards appended before .end

	// IncludeDir is where downloaded include files land and what rewritten
	// include cards point into.
	IncludeDir string `json:"include_dir,omitempty"`

	// FetchIncludes downloads pending remote includes after emission.
	FetchIncludes bool `json:"fetch_includes,omitempty"`

	// Refresh bypasses the resolve cache and refetches from the store.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Schematic == "" {
		return errors.New(errors.ErrCodeInvalidInput, "schematic is required")
	}
	if err := errors.ValidateSchematicName(o.Schematic); err != nil {
		return err
	}
	if o.Corner == "" {
		o.Corner = DefaultCorner
	}
	if o.Simulator == "" {
		o.Simulator = DefaultSimulator
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// SpiceKeyOpts returns the cache key options for deck emission.
func (o *Options) SpiceKeyOpts() cache.SpiceKeyOpts {
	return cache.SpiceKeyOpts{
		Corner:    o.Corner,
		Simulator: o.Simulator,
		Extra:     o.Extra,
	}
}

// spiceOptions converts pipeline options to emission options.
func (o *Options) spiceOptions() spice.Options {
	return spice.Options{
		Corner:     o.Corner,
		Simulator:  o.Simulator,
		Extra:      o.Extra,
		IncludeDir: o.IncludeDir,
		Logger:     o.Logger,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Schematic is the resolved document closure.
	Schematic *schematic.Schematic

	// DocsHash is the content hash of the resolved documents.
	DocsHash string

	// Spice holds the generated deck and its pending include downloads.
	Spice *spice.Result

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	GroupCount   int
	ModelCount   int
	PendingCount int
	ResolveTime  time.Duration
	EmitTime     time.Duration
	FetchTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ResolveHit bool // Whether the document closure came from cache
	EmitHit    bool // Whether the deck came from cache
}
