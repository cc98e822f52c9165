package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Netlist hooks
	n := NoopNetlistHooks{}
	n.OnResolveStart(ctx, "amplifier")
	n.OnResolveComplete(ctx, "amplifier", 3, time.Second, nil)
	n.OnExtractStart(ctx, "amplifier", 40)
	n.OnExtractComplete(ctx, "amplifier", 12, time.Second, nil)
	n.OnEmitStart(ctx, "amplifier", "ngspice")
	n.OnEmitComplete(ctx, "amplifier", "ngspice", time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "netlist")
	c.OnCacheMiss(ctx, "spice")
	c.OnCacheSet(ctx, "spice", 1024)

	// Download hooks
	d := NoopDownloadHooks{}
	d.OnDownloadStart(ctx, "https://example.com/models.lib")
	d.OnDownloadComplete(ctx, "https://example.com/models.lib", 4096, time.Second)
	d.OnDownloadError(ctx, "https://example.com/models.lib", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Netlist().(NoopNetlistHooks); !ok {
		t.Error("Netlist() should return NoopNetlistHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Download().(NoopDownloadHooks); !ok {
		t.Error("Download() should return NoopDownloadHooks by default")
	}

	// Set custom hooks
	customNetlist := &testNetlistHooks{}
	SetNetlistHooks(customNetlist)
	if Netlist() != customNetlist {
		t.Error("SetNetlistHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customDownload := &testDownloadHooks{}
	SetDownloadHooks(customDownload)
	if Download() != customDownload {
		t.Error("SetDownloadHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Netlist().(NoopNetlistHooks); !ok {
		t.Error("Reset() should restore NoopNetlistHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testNetlistHooks{}
	SetNetlistHooks(custom)

	// Setting nil should be ignored
	SetNetlistHooks(nil)

	if Netlist() != custom {
		t.Error("SetNetlistHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testNetlistHooks struct{ NoopNetlistHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testDownloadHooks struct{ NoopDownloadHooks }
