package spice

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/schemtools/spicenet/pkg/errors"
)

// Download is one remote include awaiting resolution. URL is fetched into
// Path; when ExtractTo is set, Path is an archive that is unpacked there.
type Download struct {
	URL       string
	Path      string
	ExtractTo string
}

// includeKey derives the stable cache key for an include URL.
func includeKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])
}

// rewriteInclude rewrites a .include/.lib card whose path is a URL to point
// at the local cache location under dir, returning the download needed to
// populate it. Cards with local paths pass through untouched. A URL fragment
// names an entry inside an archive; the card then points at that entry in
// the extraction directory.
func rewriteInclude(card, dir string) (string, *Download) {
	fields := strings.Fields(card)
	if len(fields) < 2 {
		return card, nil
	}
	token := fields[1]
	if errors.ValidateURL(token) != nil {
		return card, nil
	}

	u, err := url.Parse(token)
	if err != nil {
		return card, nil
	}
	fragment := u.Fragment
	u.Fragment = ""
	base := u.String()
	key := includeKey(base)
	sub := filepath.Join(dir, key[:2])

	var local string
	var dl Download
	if fragment != "" {
		extractTo := filepath.Join(sub, key)
		local = filepath.Join(extractTo, filepath.FromSlash(fragment))
		dl = Download{
			URL:       base,
			Path:      filepath.Join(sub, key+archiveExt(u.Path)),
			ExtractTo: extractTo,
		}
	} else {
		local = filepath.Join(sub, key+path.Ext(u.Path))
		dl = Download{URL: base, Path: local}
	}

	fields[1] = local
	return strings.Join(fields, " "), &dl
}

// archiveExt keeps the archive suffix so the extraction format can be
// inferred from the cached file name.
func archiveExt(p string) string {
	lower := strings.ToLower(p)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"):
		return ".tar.gz"
	case strings.HasSuffix(lower, ".tgz"):
		return ".tgz"
	case strings.HasSuffix(lower, ".zip"):
		return ".zip"
	default:
		return path.Ext(p)
	}
}

// Fetcher resolves pending downloads from an emission pass. Failures are
// logged and skipped so one unreachable vendor file never blocks the rest.
type Fetcher struct {
	Client *http.Client
	Logger *log.Logger
}

// NewFetcher creates a Fetcher with a timeout-bounded HTTP client.
func NewFetcher(logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Fetcher{
		Client: &http.Client{Timeout: 5 * time.Minute},
		Logger: logger,
	}
}

// Fetch downloads every pending include that is not already cached. The
// only error returned is context cancellation; per-download failures are
// warnings.
func (f *Fetcher) Fetch(ctx context.Context, downloads []Download) error {
	for _, dl := range downloads {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := f.fetchOne(ctx, dl); err != nil {
			f.Logger.Warn("include download failed, skipping",
				"url", dl.URL, "err", err)
		}
	}
	return nil
}

func (f *Fetcher) fetchOne(ctx context.Context, dl Download) error {
	if _, err := os.Stat(dl.Path); err == nil {
		if dl.ExtractTo == "" {
			return nil
		}
		if _, err := os.Stat(dl.ExtractTo); err == nil {
			return nil
		}
		return f.extract(dl)
	}

	if err := os.MkdirAll(filepath.Dir(dl.Path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeDownloadFailed, err, "creating cache dir")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dl.URL, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeDownloadFailed, err, "building request for %s", dl.URL)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "fetching %s", dl.URL)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.New(errors.ErrCodeDownloadFailed, "fetching %s: status %d", dl.URL, resp.StatusCode)
	}

	// Write through a uniquely named temp file so concurrent fetches of the
	// same key never observe a partial file; first writer wins.
	tmp := filepath.Join(filepath.Dir(dl.Path), "tmp-"+uuid.NewString())
	out, err := os.Create(tmp)
	if err != nil {
		return errors.Wrap(errors.ErrCodeDownloadFailed, err, "creating %s", tmp)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeDownloadFailed, err, "writing %s", dl.Path)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeDownloadFailed, err, "closing %s", tmp)
	}
	if err := os.Rename(tmp, dl.Path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeDownloadFailed, err, "moving into place")
	}

	if dl.ExtractTo != "" {
		return f.extract(dl)
	}
	return nil
}

// extract unpacks a cached archive into its extraction directory, inferring
// the format from the file suffix.
func (f *Fetcher) extract(dl Download) error {
	lower := strings.ToLower(dl.Path)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return extractZip(dl.Path, dl.ExtractTo)
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return extractTarGz(dl.Path, dl.ExtractTo)
	default:
		return errors.New(errors.ErrCodeUnsupported, "unknown archive format: %s", dl.Path)
	}
}

// safeJoin joins an archive entry name under dir, rejecting traversal.
func safeJoin(dir, name string) (string, error) {
	name = filepath.FromSlash(name)
	if filepath.IsAbs(name) || strings.Contains(name, "..") {
		return "", errors.New(errors.ErrCodeDownloadFailed, "unsafe archive entry %q", name)
	}
	return filepath.Join(dir, name), nil
}

func extractZip(archive, dir string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return errors.Wrap(errors.ErrCodeDownloadFailed, err, "opening %s", archive)
	}
	defer r.Close()

	for _, file := range r.File {
		target, err := safeJoin(dir, file.Name)
		if err != nil {
			return err
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		src, err := file.Open()
		if err != nil {
			return errors.Wrap(errors.ErrCodeDownloadFailed, err, "reading %s", file.Name)
		}
		err = writeFile(target, src)
		src.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func extractTarGz(archive, dir string) error {
	file, err := os.Open(archive)
	if err != nil {
		return errors.Wrap(errors.ErrCodeDownloadFailed, err, "opening %s", archive)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return errors.Wrap(errors.ErrCodeDownloadFailed, err, "decompressing %s", archive)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeDownloadFailed, err, "reading %s", archive)
		}
		target, err := safeJoin(dir, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := writeFile(target, tr); err != nil {
				return err
			}
		}
	}
}

func writeFile(target string, src io.Reader) error {
	out, err := os.Create(target)
	if err != nil {
		return errors.Wrap(errors.ErrCodeDownloadFailed, err, "creating %s", target)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return errors.Wrap(errors.ErrCodeDownloadFailed, err, "writing %s", target)
	}
	return out.Close()
}
