package netgraph

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/schemtools/spicenet/pkg/netlist"
	"github.com/schemtools/spicenet/pkg/render"
	"github.com/schemtools/spicenet/pkg/schematic"
)

// Options configures connectivity graph rendering.
type Options struct {
	// Detailed includes device types and model references in node labels.
	// When false, only the device label is shown.
	Detailed bool
}

// ToDOT converts one extracted level to Graphviz DOT format: an undirected
// bipartite graph with a box per device, an ellipse per net, and port-labeled
// edges between them. The resulting DOT string can be rendered using
// [RenderSVG], [RenderPDF], or [RenderPNG].
func ToDOT(docs schematic.Level, nets netlist.Nets, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph nets {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")

	for _, devID := range sortedKeys(nets) {
		label := fmtLabel(docs[devID], devID, opts.Detailed)
		fmt.Fprintf(&buf, "  %q [label=%q];\n", devID, label)
	}

	buf.WriteString("\n")
	for _, net := range netNames(nets) {
		fmt.Fprintf(&buf, "  %q [shape=ellipse, fillcolor=lightgrey, label=%q];\n", "net:"+net, net)
	}

	buf.WriteString("\n")
	for _, devID := range sortedKeys(nets) {
		ports := nets[devID]
		names := make([]string, 0, len(ports))
		for p := range ports {
			names = append(names, p)
		}
		sort.Strings(names)
		for _, port := range names {
			fmt.Fprintf(&buf, "  %q -- %q [label=%q, fontsize=10];\n",
				devID, "net:"+ports[port], port)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(doc *schematic.Document, devID string, detailed bool) string {
	if doc == nil {
		return devID
	}
	label := doc.Label()
	if !detailed {
		return label
	}
	parts := []string{label, "type: " + doc.Type}
	if doc.Model != "" {
		parts = append(parts, "model: "+schematic.BareModel(doc.Model))
	}
	return strings.Join(parts, "\n")
}

func sortedKeys(nets netlist.Nets) []string {
	keys := make([]string, 0, len(nets))
	for k := range nets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func netNames(nets netlist.Nets) []string {
	seen := make(map[string]bool)
	var names []string
	for _, ports := range nets {
		for _, net := range ports {
			if !seen[net] {
				seen[net] = true
				names = append(names, net)
			}
		}
	}
	sort.Strings(names)
	return names
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
