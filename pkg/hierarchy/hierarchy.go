// Package hierarchy resolves the document closure of a schematic.
//
// Starting from the top-level group, the resolver walks device model
// references breadth first: every referenced model that is itself a
// schematic (it has no templates) contributes its body group, whose devices
// are inspected in turn. A seen-set guarantees each model is considered once
// even when the same sub-circuit is instantiated from several parents, so
// diamond-shaped reuse costs exactly one fetch.
package hierarchy

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/schemtools/spicenet/pkg/errors"
	"github.com/schemtools/spicenet/pkg/schematic"
	"github.com/schemtools/spicenet/pkg/store"
)

// Resolve fetches the model library plus every schematic group reachable
// from top. Dangling model references are logged and skipped; the engine
// later surfaces them as missing connectivity. A missing top-level group is
// an error.
func Resolve(ctx context.Context, st store.Store, top string, logger *log.Logger) (*schematic.Schematic, error) {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if err := errors.ValidateSchematicName(top); err != nil {
		return nil, err
	}

	models, err := st.Models(ctx)
	if err != nil {
		return nil, err
	}

	topDocs, err := st.Group(ctx, top)
	if err != nil {
		return nil, err
	}
	if len(topDocs) == 0 {
		return nil, errors.New(errors.ErrCodeSchematicNotFound, "schematic %s has no documents", top)
	}

	schem := schematic.NewSchematic()
	schem.Models = models
	schem.Groups[top] = topDocs

	seen := map[string]bool{}
	frontier := groupRefs(topDocs, seen)

	for len(frontier) > 0 {
		// The refs of one wave have no data dependencies, so their groups
		// are fetched concurrently; the seen-set has already deduplicated.
		var toFetch []string
		for _, bare := range frontier {
			m := models[schematic.ModelKey(bare)]
			if m == nil {
				logger.Warn("model not in library", "model", bare)
				continue
			}
			if !m.IsSchematic() {
				continue
			}
			if _, ok := schem.Groups[bare]; !ok {
				toFetch = append(toFetch, bare)
			}
		}

		fetched := make(map[string]schematic.Level, len(toFetch))
		var mu sync.Mutex
		var wg sync.WaitGroup
		var fetchErr error
		for _, bare := range toFetch {
			wg.Add(1)
			go func(bare string) {
				defer wg.Done()
				docs, err := st.Group(ctx, bare)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if fetchErr == nil {
						fetchErr = err
					}
					return
				}
				fetched[bare] = docs
			}(bare)
		}
		wg.Wait()
		if fetchErr != nil {
			return nil, fetchErr
		}

		frontier = frontier[:0]
		for _, bare := range sortedKeys(fetched) {
			docs := fetched[bare]
			if len(docs) == 0 {
				logger.Warn("schematic model has empty body group", "model", bare)
			}
			schem.Groups[bare] = docs
			frontier = append(frontier, groupRefs(docs, seen)...)
		}
	}

	return schem, nil
}

// groupRefs collects the unseen model references of one group, marking them
// seen, in sorted document order for stable traversal.
func groupRefs(docs schematic.Level, seen map[string]bool) []string {
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var refs []string
	for _, id := range ids {
		ref := docs[id].Model
		if ref == "" {
			continue
		}
		bare := schematic.BareModel(ref)
		if seen[bare] {
			continue
		}
		seen[bare] = true
		refs = append(refs, bare)
	}
	return refs
}

func sortedKeys(m map[string]schematic.Level) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
