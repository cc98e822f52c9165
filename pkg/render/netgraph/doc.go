// Package netgraph renders extracted connectivity as node-link diagrams.
//
// # Overview
//
// This package produces an undirected bipartite view of one schematic level
// using Graphviz: devices appear as boxes, nets as ellipses, and each edge
// carries the name of the device port it represents. It complements the
// SPICE deck output when a schematic's connectivity needs visual inspection.
//
// # Usage
//
// Extract nets, convert to DOT format, then render to SVG:
//
//	nets, err := netlist.Extract(docs, models)
//	dot := netgraph.ToDOT(docs, nets, netgraph.Options{Detailed: false})
//	svg, err := netgraph.RenderSVG(dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := netgraph.RenderPDF(dot)
//	png, err := netgraph.RenderPNG(dot, 2.0)  // 2x scale
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: When true, device labels include type and model reference
//
// # DOT Format
//
// The [ToDOT] function produces Graphviz DOT source that can be:
//
//   - Rendered directly via [RenderSVG]
//   - Saved and processed with external Graphviz tools
//   - Customized before rendering
//
// The generated DOT uses the neato layout engine, which spreads the
// bipartite graph out by spring forces rather than imposing a rank
// direction that has no meaning for electrical connectivity.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package netgraph
