package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/schemtools/spicenet/pkg/cache"
	"github.com/schemtools/spicenet/pkg/errors"
	"github.com/schemtools/spicenet/pkg/schematic"
)

// Couch is a Store over a CouchDB database. Schematic groups are fetched as
// _all_docs id-range scans and library searches go through a Mango _find
// selector, mirroring how the schematic editor itself stores documents.
type Couch struct {
	base string // database URL, e.g. http://localhost:5984/schematics
	http *http.Client
	user string
	pass string
}

// NewCouch creates a CouchDB-backed store for the database at baseURL.
// Credentials are optional; when set they are sent as HTTP basic auth.
func NewCouch(baseURL, user, pass string) (*Couch, error) {
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	return &Couch{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
		user: user,
		pass: pass,
	}, nil
}

// Group fetches every document with id prefix "name:" via a range query.
func (c *Couch) Group(ctx context.Context, name string) (schematic.Level, error) {
	if err := errors.ValidateSchematicName(name); err != nil {
		return nil, err
	}
	rows, err := c.allDocs(ctx, name+":", name+":"+rangeEnd)
	if err != nil {
		return nil, err
	}
	level := make(schematic.Level, len(rows))
	for _, row := range rows {
		var doc schematic.Document
		if err := json.Unmarshal(row.Doc, &doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decoding document %s", row.ID)
		}
		level[doc.ID] = &doc
	}
	return level, nil
}

// Models fetches the whole model library with a "models:" range query.
func (c *Couch) Models(ctx context.Context) (map[string]*schematic.Model, error) {
	rows, err := c.allDocs(ctx, schematic.ModelPrefix, schematic.ModelPrefix+rangeEnd)
	if err != nil {
		return nil, err
	}
	models := make(map[string]*schematic.Model, len(rows))
	for _, row := range rows {
		var m schematic.Model
		if err := json.Unmarshal(row.Doc, &m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "decoding model %s", row.ID)
		}
		models[m.ID] = &m
	}
	return models, nil
}

// Library searches the models with a Mango selector: per-element category
// path equality plus a case-insensitive name regex.
func (c *Couch) Library(ctx context.Context, filter string, category []string) ([]*schematic.Model, error) {
	if filter == "" && len(category) == 0 {
		models, err := c.Models(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]*schematic.Model, 0, len(models))
		for _, m := range models {
			out = append(out, m)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return out, nil
	}

	selector := map[string]any{
		"_id": map[string]any{
			"$gt": schematic.ModelPrefix,
			"$lt": schematic.ModelPrefix + rangeEnd,
		},
	}
	for i, cat := range category {
		selector[fmt.Sprintf("category.%d", i)] = cat
	}
	if filter != "" {
		selector["name"] = map[string]any{"$regex": "(?i)" + filter}
	}

	var resp struct {
		Docs []json.RawMessage `json:"docs"`
	}
	if err := c.post(ctx, "/_find", map[string]any{"selector": selector}, &resp); err != nil {
		return nil, err
	}

	out := make([]*schematic.Model, 0, len(resp.Docs))
	for _, raw := range resp.Docs {
		var m schematic.Model
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "decoding library result")
		}
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Close is a no-op; the HTTP client holds no persistent connections worth
// tearing down explicitly.
func (c *Couch) Close(ctx context.Context) error { return nil }

type allDocsRow struct {
	ID  string          `json:"id"`
	Doc json.RawMessage `json:"doc"`
}

// allDocs runs an _all_docs range scan with include_docs. Start and end keys
// are JSON strings per the CouchDB API.
func (c *Couch) allDocs(ctx context.Context, start, end string) ([]allDocsRow, error) {
	q := url.Values{}
	q.Set("include_docs", "true")
	q.Set("startkey", jsonString(start))
	q.Set("endkey", jsonString(end))

	var resp struct {
		Rows []allDocsRow `json:"rows"`
	}
	if err := c.get(ctx, "/_all_docs?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.Rows, nil
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func (c *Couch) get(ctx context.Context, path string, v any) error {
	return cache.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
		if err != nil {
			return err
		}
		return c.do(req, v)
	})
}

func (c *Couch) post(ctx context.Context, path string, body, v any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return cache.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		return c.do(req, v)
	})
}

func (c *Couch) do(req *http.Request, v any) error {
	if c.user != "" {
		req.SetBasicAuth(c.user, c.pass)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return cache.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "requesting %s", req.URL.Path))
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode, req.URL.Path); err != nil {
		io.Copy(io.Discard, resp.Body)
		return err
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// checkStatus maps CouchDB response codes: 404 means the database itself is
// missing, 5xx is retried, anything else non-200 is a hard network error.
func checkStatus(code int, path string) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "database resource %s not found", path)
	case code >= 500:
		return cache.Retryable(errors.New(errors.ErrCodeNetwork, "server error %d on %s", code, path))
	default:
		return errors.New(errors.ErrCodeNetwork, "unexpected status %d on %s", code, path)
	}
}

var _ Store = (*Couch)(nil)
