// Package cache provides pluggable byte caches and cache-key derivation for
// the netlisting pipeline.
//
// Three backends implement the same interface: FileCache for CLI usage,
// RedisCache for server deployments, and NullCache to disable caching. Keys
// for pipeline artifacts are derived from content hashes so a cached netlist
// or SPICE deck is invalidated the moment its input documents change.
package cache

import (
	"context"
	"time"
)

// TTLs per cached artifact kind. Store responses go stale as soon as the
// schematic is edited, so they expire quickly; netlists and decks are keyed
// by content hash and only expire to bound cache growth.
const (
	TTLStore   = 5 * time.Minute
	TTLNetlist = 24 * time.Hour
	TTLSpice   = 24 * time.Hour
)

// Cache stores opaque byte values under string keys with optional TTL.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// SpiceKeyOpts carries the emission parameters that change generated output
// and therefore belong in the cache key.
type SpiceKeyOpts struct {
	Corner    string
	Simulator string
	Extra     string
}

// Keyer derives cache keys for the pipeline stages.
type Keyer interface {
	// HTTPKey keys a raw store response (group or model fetch).
	HTTPKey(namespace, key string) string

	// NetlistKey keys an extracted netlist by the content hash of the
	// documents and models it was computed from.
	NetlistKey(docsHash string) string

	// SpiceKey keys a generated deck by document hash plus the emission
	// options that shape the output.
	SpiceKey(docsHash string, opts SpiceKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for store response caching. The raw namespace and
// key stay readable so cache contents can be inspected by hand.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// NetlistKey generates a key for netlist caching.
func (k *DefaultKeyer) NetlistKey(docsHash string) string {
	return hashKey("netlist", docsHash)
}

// SpiceKey generates a key for generated-deck caching.
func (k *DefaultKeyer) SpiceKey(docsHash string, opts SpiceKeyOpts) string {
	return hashKey("spice", docsHash, opts)
}
