// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about netlisting runs, cache operations, and include
// downloads.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetNetlistHooks(&myNetlistHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Netlist().OnResolveStart(ctx, name)
//	// ... fetch the hierarchy ...
//	observability.Netlist().OnResolveComplete(ctx, name, groupCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Netlist Hooks
// =============================================================================

// NetlistHooks receives events from the netlisting run.
type NetlistHooks interface {
	// Hierarchy resolution events
	OnResolveStart(ctx context.Context, schematic string)
	OnResolveComplete(ctx context.Context, schematic string, groupCount int, duration time.Duration, err error)

	// Net extraction events
	OnExtractStart(ctx context.Context, group string, docCount int)
	OnExtractComplete(ctx context.Context, group string, netCount int, duration time.Duration, err error)

	// Emission events
	OnEmitStart(ctx context.Context, schematic, simulator string)
	OnEmitComplete(ctx context.Context, schematic, simulator string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Download Hooks
// =============================================================================

// DownloadHooks receives events from include-file downloads.
type DownloadHooks interface {
	// OnDownloadStart records the start of an include fetch.
	OnDownloadStart(ctx context.Context, url string)

	// OnDownloadComplete records a finished include fetch.
	OnDownloadComplete(ctx context.Context, url string, size int64, duration time.Duration)

	// OnDownloadError records a failed include fetch.
	OnDownloadError(ctx context.Context, url string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopNetlistHooks is a no-op implementation of NetlistHooks.
type NoopNetlistHooks struct{}

func (NoopNetlistHooks) OnResolveStart(context.Context, string) {}
func (NoopNetlistHooks) OnResolveComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopNetlistHooks) OnExtractStart(context.Context, string, int)                          {}
func (NoopNetlistHooks) OnExtractComplete(context.Context, string, int, time.Duration, error) {}
func (NoopNetlistHooks) OnEmitStart(context.Context, string, string)                          {}
func (NoopNetlistHooks) OnEmitComplete(context.Context, string, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopDownloadHooks is a no-op implementation of DownloadHooks.
type NoopDownloadHooks struct{}

func (NoopDownloadHooks) OnDownloadStart(context.Context, string)                        {}
func (NoopDownloadHooks) OnDownloadComplete(context.Context, string, int64, time.Duration) {}
func (NoopDownloadHooks) OnDownloadError(context.Context, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	netlistHooks  NetlistHooks  = NoopNetlistHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	downloadHooks DownloadHooks = NoopDownloadHooks{}
	hooksMu       sync.RWMutex
)

// SetNetlistHooks registers custom netlist hooks.
// This should be called once at application startup before any netlisting runs.
func SetNetlistHooks(h NetlistHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		netlistHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetDownloadHooks registers custom download hooks.
// This should be called once at application startup before any include fetches.
func SetDownloadHooks(h DownloadHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		downloadHooks = h
	}
}

// Netlist returns the registered netlist hooks.
func Netlist() NetlistHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return netlistHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Download returns the registered download hooks.
func Download() DownloadHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return downloadHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	netlistHooks = NoopNetlistHooks{}
	cacheHooks = NoopCacheHooks{}
	downloadHooks = NoopDownloadHooks{}
}
