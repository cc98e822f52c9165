// Package pkg provides the core libraries for Spicenet schematic netlisting.
//
// # Overview
//
// Spicenet turns hierarchical circuit schematics into SPICE netlists. The
// pkg directory covers the full path from stored documents to a runnable
// deck:
//
//  1. [schematic] - Document and model types plus symbol geometry
//  2. [netlist] - Geometric net extraction for one schematic level
//  3. [hierarchy] - Sub-circuit closure over a document store
//  4. [spice] - Template-driven deck emission and include handling
//  5. [pipeline] - Orchestration (resolve → emit → fetch) with caching
//
// # Architecture
//
// The typical data flow through Spicenet:
//
//	CouchDB / MongoDB / JSON file
//	         ↓
//	    [store] package (fetch document groups + model library)
//	         ↓
//	    [hierarchy] package (resolve the sub-circuit closure)
//	         ↓
//	    [netlist] package (flood-fill nets per level)
//	         ↓
//	    [spice] package (render templates into a deck)
//	         ↓
//	    SPICE netlist text + pending include downloads
//
// # Quick Start
//
// Netlist a schematic from a CouchDB store:
//
//	import (
//	    "context"
//	    "github.com/schemtools/spicenet/pkg/pipeline"
//	    "github.com/schemtools/spicenet/pkg/store"
//	)
//
//	st, _ := store.NewCouch("http://localhost:5984/schematics", "", "")
//	runner := pipeline.NewRunner(st, nil, nil, nil)
//	res, _ := runner.Execute(context.Background(), pipeline.Options{
//	    Schematic: "amplifier",
//	})
//	fmt.Print(res.Spice.Text)
//
// # Main Packages
//
// [schematic] - Wire types for documents (wires, devices, ports, labels) and
// models (port layout, SPICE templates), affine symbol transforms, and the
// grid geometry that places ports on the canvas.
//
// [netlist] - Connectivity extraction. Wires and device ports that touch on
// the grid are flooded into nets, named after port and label documents.
//
// [hierarchy] - Breadth-first closure over schematic model references,
// fetching each referenced sub-circuit group once.
//
// [spice] - Deck emission. Device templates are matched by simulator and
// corner, instantiated per device, and assembled bottom-up into .subckt
// definitions. Remote .include/.lib cards become pending downloads.
//
// [store] - Document stores: CouchDB, MongoDB, in-memory, and local JSON
// files, all behind one interface.
//
// [cache] - File, Redis, and null caches with TTL semantics, shared by the
// pipeline for resolved schematics and emitted decks.
//
// [pipeline] - The complete netlisting pipeline used by the CLI and the HTTP
// API. Ensures consistent caching and observability across entry points.
//
// [render/netgraph] - Device/net connectivity graphs via Graphviz.
//
// [observability] - Hook registry for instrumenting resolve, extract, emit,
// cache, and download events.
//
// [errors] - Coded errors shared across the module.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/netlist/...      # Specific package
//
// [schematic]: https://pkg.go.dev/github.com/schemtools/spicenet/pkg/schematic
// [netlist]: https://pkg.go.dev/github.com/schemtools/spicenet/pkg/netlist
// [hierarchy]: https://pkg.go.dev/github.com/schemtools/spicenet/pkg/hierarchy
// [spice]: https://pkg.go.dev/github.com/schemtools/spicenet/pkg/spice
// [store]: https://pkg.go.dev/github.com/schemtools/spicenet/pkg/store
// [cache]: https://pkg.go.dev/github.com/schemtools/spicenet/pkg/cache
// [pipeline]: https://pkg.go.dev/github.com/schemtools/spicenet/pkg/pipeline
// [render/netgraph]: https://pkg.go.dev/github.com/schemtools/spicenet/pkg/render/netgraph
// [observability]: https://pkg.go.dev/github.com/schemtools/spicenet/pkg/observability
// [errors]: https://pkg.go.dev/github.com/schemtools/spicenet/pkg/errors
package pkg
