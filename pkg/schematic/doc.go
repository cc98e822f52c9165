// Package schematic defines the document model for grid-based circuit
// schematics and the geometry that turns placed symbols into port coordinates.
//
// A schematic is stored as a flat collection of documents, one per placed
// symbol: wires, ports, text labels, primitive devices (resistors,
// transistors, sources) and instances of library models. Documents carry
// integer grid positions and, for non-wire devices, a 2D affine transform
// describing rotation and mirroring.
//
// The central operation is [Ports], which computes the absolute grid
// coordinates of every terminal a document exposes. Connectivity extraction
// (package netlist) and SPICE generation (package spice) are built on top of
// that single primitive.
//
// # Identifiers
//
// Document IDs are namespaced as "group:device", where the group is either a
// schematic name or the reserved "models" library prefix. [SplitID],
// [ModelKey] and [BareModel] convert between the forms.
package schematic
