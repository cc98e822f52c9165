package spice

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestRewriteIncludeLocalPathUntouched(t *testing.T) {
	card := ".include /opt/pdk/models.lib"
	got, dl := rewriteInclude(card, "cache")
	if got != card || dl != nil {
		t.Errorf("rewriteInclude = %q, %v", got, dl)
	}
}

func TestRewriteIncludeBareURL(t *testing.T) {
	got, dl := rewriteInclude(".include https://example.com/models.lib", "cache")
	if dl == nil {
		t.Fatal("no download produced")
	}
	if dl.URL != "https://example.com/models.lib" {
		t.Errorf("URL = %q", dl.URL)
	}
	if dl.ExtractTo != "" {
		t.Errorf("bare URL should not extract: %+v", dl)
	}
	if !strings.HasSuffix(dl.Path, ".lib") {
		t.Errorf("Path = %q, want .lib suffix", dl.Path)
	}
	if !strings.HasPrefix(got, ".include cache"+string(filepath.Separator)) {
		t.Errorf("card = %q", got)
	}
}

func TestRewriteIncludeArchiveFragment(t *testing.T) {
	got, dl := rewriteInclude(".lib https://example.com/pdk.zip#libs/tt.lib tt", "cache")
	if dl == nil {
		t.Fatal("no download produced")
	}
	if dl.URL != "https://example.com/pdk.zip" {
		t.Errorf("URL = %q", dl.URL)
	}
	if dl.ExtractTo == "" || !strings.HasSuffix(dl.Path, ".zip") {
		t.Errorf("Download = %+v", dl)
	}
	wantEntry := filepath.Join(dl.ExtractTo, "libs", "tt.lib")
	if !strings.Contains(got, wantEntry) {
		t.Errorf("card = %q, want entry path %q", got, wantEntry)
	}
	if !strings.HasSuffix(got, " tt") {
		t.Errorf("trailing args lost: %q", got)
	}
}

func TestRewriteIncludeStableKey(t *testing.T) {
	_, a := rewriteInclude(".include https://example.com/m.lib", "cache")
	_, b := rewriteInclude(".include https://example.com/m.lib", "cache")
	if a.Path != b.Path {
		t.Errorf("cache key not stable: %q vs %q", a.Path, b.Path)
	}
}

func TestFetcherDownloadsOnce(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(".model nfet nmos"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	_, dl := rewriteInclude(".include "+srv.URL+"/models.lib", dir)
	if dl == nil {
		t.Fatal("no download produced")
	}

	f := NewFetcher(nil)
	if err := f.Fetch(context.Background(), []Download{*dl}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	data, err := os.ReadFile(dl.Path)
	if err != nil {
		t.Fatalf("cached file missing: %v", err)
	}
	if string(data) != ".model nfet nmos" {
		t.Errorf("cached content = %q", data)
	}

	// second fetch is served from cache
	if err := f.Fetch(context.Background(), []Download{*dl}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if hits != 1 {
		t.Errorf("server hit %d times, want 1", hits)
	}
}

func TestFetcherExtractsZip(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entry, _ := zw.Create("libs/tt.lib")
	entry.Write([]byte("* corner lib"))
	zw.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	dir := t.TempDir()
	card, dl := rewriteInclude(".lib "+srv.URL+"/pdk.zip#libs/tt.lib tt", dir)
	if dl == nil {
		t.Fatal("no download produced")
	}

	f := NewFetcher(nil)
	if err := f.Fetch(context.Background(), []Download{*dl}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	entryPath := strings.Fields(card)[1]
	data, err := os.ReadFile(entryPath)
	if err != nil {
		t.Fatalf("extracted entry missing: %v", err)
	}
	if string(data) != "* corner lib" {
		t.Errorf("entry content = %q", data)
	}
}

func TestFetcherSkipsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	var logBuf bytes.Buffer
	f := NewFetcher(log.New(&logBuf))

	dir := t.TempDir()
	_, dl := rewriteInclude(".include "+srv.URL+"/missing.lib", dir)
	if err := f.Fetch(context.Background(), []Download{*dl}); err != nil {
		t.Fatalf("Fetch returned error for skippable failure: %v", err)
	}
	if _, err := os.Stat(dl.Path); err == nil {
		t.Error("failed download left a file behind")
	}
	if !strings.Contains(logBuf.String(), "skipping") {
		t.Errorf("no warning logged: %s", logBuf.String())
	}
}

func TestFetcherContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher(nil)
	err := f.Fetch(ctx, []Download{{URL: "https://example.com/x.lib", Path: filepath.Join(t.TempDir(), "x.lib")}})
	if err == nil {
		t.Error("cancelled context did not abort fetch")
	}
}
