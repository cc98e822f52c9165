package store

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/schemtools/spicenet/pkg/errors"
	"github.com/schemtools/spicenet/pkg/schematic"
)

// Mem is an in-memory Store backed by plain maps. It serves tests and the
// local-file mode of the CLI.
type Mem struct {
	mu     sync.RWMutex
	docs   map[string]*schematic.Document
	models map[string]*schematic.Model

	// GroupCalls counts Group fetches per name, for tests asserting
	// fetch-once behavior.
	GroupCalls map[string]int
}

// NewMem creates an empty in-memory store.
func NewMem() *Mem {
	return &Mem{
		docs:       make(map[string]*schematic.Document),
		models:     make(map[string]*schematic.Model),
		GroupCalls: make(map[string]int),
	}
}

// memFile is the on-disk JSON layout for local schematic files.
type memFile struct {
	Documents []*schematic.Document `json:"documents"`
	Models    []*schematic.Model    `json:"models"`
}

// LoadFile reads documents and models from a local JSON schematic file into
// a Mem store.
func LoadFile(path string) (*Mem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "reading %s", path)
	}
	var f memFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "parsing %s", path)
	}
	m := NewMem()
	for _, d := range f.Documents {
		m.PutDoc(d)
	}
	for _, mod := range f.Models {
		m.PutModel(mod)
	}
	return m, nil
}

// PutDoc inserts or replaces a document.
func (m *Mem) PutDoc(doc *schematic.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc
}

// PutModel inserts or replaces a library model.
func (m *Mem) PutModel(model *schematic.Model) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.models[model.ID] = model
}

// Group returns the documents with id prefix "name:".
func (m *Mem) Group(ctx context.Context, name string) (schematic.Level, error) {
	m.mu.Lock()
	m.GroupCalls[name]++
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()
	level := make(schematic.Level)
	prefix := name + ":"
	for id, doc := range m.docs {
		if strings.HasPrefix(id, prefix) {
			level[id] = doc
		}
	}
	return level, nil
}

// Models returns a copy of the model library.
func (m *Mem) Models(ctx context.Context) (map[string]*schematic.Model, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*schematic.Model, len(m.models))
	for k, v := range m.models {
		out[k] = v
	}
	return out, nil
}

// Library searches the models by name substring and category prefix.
func (m *Mem) Library(ctx context.Context, filter string, category []string) ([]*schematic.Model, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*schematic.Model
	for _, mod := range m.models {
		if !matchModel(mod, filter, category) {
			continue
		}
		out = append(out, mod)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Close is a no-op for the in-memory store.
func (m *Mem) Close(ctx context.Context) error { return nil }

func matchModel(m *schematic.Model, filter string, category []string) bool {
	if filter != "" && !strings.Contains(strings.ToLower(m.Name), strings.ToLower(filter)) {
		return false
	}
	if len(category) > len(m.Category) {
		return false
	}
	for i, c := range category {
		if m.Category[i] != c {
			return false
		}
	}
	return true
}

var _ Store = (*Mem)(nil)
