// Package store provides access to schematic document stores.
//
// A Store hands out the two collections the netlisting engine consumes: the
// documents of one schematic group (fetched as an id-prefix range) and the
// model library. Backends exist for CouchDB (the native deployment), MongoDB,
// and an in-memory map for tests and local files.
package store

import (
	"context"

	"github.com/schemtools/spicenet/pkg/schematic"
)

// rangeEnd is the high key terminating an id-prefix range scan. U+FFF0
// sorts after every character that can appear in a document id.
const rangeEnd = "￰"

// Store is the document-store surface the engine depends on.
type Store interface {
	// Group fetches every document whose id is prefixed "name:".
	Group(ctx context.Context, name string) (schematic.Level, error)

	// Models fetches the full model library keyed by model document id.
	Models(ctx context.Context) (map[string]*schematic.Model, error)

	// Library searches models by case-insensitive name substring and
	// category path prefix. Empty arguments match everything.
	Library(ctx context.Context, filter string, category []string) ([]*schematic.Model, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
