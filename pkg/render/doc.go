// Package render provides visualization rendering for extracted netlists.
//
// # Overview
//
// This package contains the rendering helpers that turn connectivity data
// into visual outputs. It provides:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Connectivity graphs (in [netgraph] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg, err := netgraph.RenderSVG(dot)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// # Connectivity Graphs
//
// The [netgraph] subpackage draws one schematic level as a bipartite graph
// of devices and nets using Graphviz. Devices appear as boxes, nets as
// ellipses, and each edge is labeled with the device port it represents.
//
//	dot := netgraph.ToDOT(docs, nets, netgraph.Options{})
//	svg, err := netgraph.RenderSVG(dot)
//
// [netgraph]: github.com/schemtools/spicenet/pkg/render/netgraph
package render
