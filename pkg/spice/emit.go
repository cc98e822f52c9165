package spice

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/schemtools/spicenet/pkg/netlist"
	"github.com/schemtools/spicenet/pkg/schematic"
)

// Options configures one emission pass.
type Options struct {
	// Corner is the simulation corner substituted into declaration
	// templates. Defaults to "tt".
	Corner string

	// Simulator selects among a model's template candidates by name.
	// Defaults to "NgSpice".
	Simulator string

	// Extra is caller-supplied SPICE text appended after the circuit body.
	Extra string

	// IncludeDir is the local cache directory remote includes are rewritten
	// into. Defaults to "spice-includes".
	IncludeDir string

	// Logger receives template-parse and include warnings. Defaults to a
	// discard logger.
	Logger *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Corner == "" {
		o.Corner = "tt"
	}
	if o.Simulator == "" {
		o.Simulator = "NgSpice"
	}
	if o.IncludeDir == "" {
		o.IncludeDir = "spice-includes"
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o
}

// Result is the outcome of an emission pass: the generated deck plus the
// remote includes it references, which still need downloading.
type Result struct {
	Text    string
	Pending []Download
}

// Port orderings for the primitive families, matched to the symbol shapes.
var (
	twoPortOrder = []string{"P", "N"}
	mosfetOrder  = []string{"D", "G", "S", "B"}
	bjtOrder     = []string{"C", "B", "E"}
)

var primitivePrefix = map[schematic.DeviceType]string{
	schematic.DeviceResistor:  "R",
	schematic.DeviceCapacitor: "C",
	schematic.DeviceInductor:  "L",
	schematic.DeviceDiode:     "D",
	schematic.DeviceVSource:   "V",
	schematic.DeviceISource:   "I",
	schematic.DeviceNMOS:      "M",
	schematic.DevicePMOS:      "M",
	schematic.DeviceNPN:       "Q",
	schematic.DevicePNP:       "Q",
}

type emitter struct {
	schem   *schematic.Schematic
	opts    Options
	ckt     *Circuit
	used    map[string]bool // bare model refs instantiated so far
	queue   []string        // instantiated refs awaiting declaration
	pending []Download
	seen    map[string]bool // dedup for pending downloads
}

// Emit generates a SPICE deck for the named top-level schematic. Only models
// actually instantiated are declared. The returned Result carries any remote
// includes as pending downloads; run them through a Fetcher before handing
// the deck to a simulator.
func Emit(top string, schem *schematic.Schematic, opts Options) (*Result, error) {
	e := &emitter{
		schem: schem,
		opts:  opts.withDefaults(),
		ckt:   &Circuit{Title: top},
		used:  make(map[string]bool),
		seen:  make(map[string]bool),
	}

	body, err := e.groupBody(schem.Groups[top])
	if err != nil {
		return nil, err
	}
	e.ckt.Body = body

	if err := e.declareUsed(); err != nil {
		return nil, err
	}

	return &Result{Text: e.ckt.Render(e.opts.Extra), Pending: e.pending}, nil
}

// groupBody nets one schematic level and renders its element lines.
func (e *emitter) groupBody(docs schematic.Level) ([]string, error) {
	nets, err := netlist.Extract(docs, e.schem.Models)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(nets))
	for id := range nets {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var lines []string
	for _, id := range ids {
		doc := docs[id]
		if doc == nil {
			continue
		}
		lines = append(lines, e.elementLine(doc, nets[id]))
	}
	return lines, nil
}

// elementLine renders one device as a SPICE card, honoring any template
// override attached to the device's model.
func (e *emitter) elementLine(doc *schematic.Document, ports map[string]string) string {
	kind := doc.Kind()
	name := doc.Label()

	model := e.schem.Model(doc.Model)
	var templ *schematic.Template
	if doc.Model != "" {
		if model == nil {
			e.opts.Logger.Warn("model not found", "device", doc.ID, "model", doc.Model)
		} else {
			e.mark(doc.Model)
			templ = model.Template("spice", e.opts.Simulator)
		}
	}

	modelToken := ""
	if model != nil {
		modelToken = model.SubcktName()
	}

	var prefix string
	var order []string
	switch {
	case templ != nil && templ.RefTempl != "":
		// the reference template spells out its own model name, so only
		// the document's literal props are substituted
		portList := e.portList(doc, model, kind, ports)
		r := strings.NewReplacer(
			"{name}", name,
			"{ports}", portList,
			"{properties}", renderProps(doc.Props, ""),
			"{corner}", e.opts.Corner,
		)
		return r.Replace(templ.RefTempl)
	case templ != nil && templ.UseX:
		prefix, order = "X", model.PortOrder()
	case kind == schematic.DeviceSubcircuit:
		prefix = "X"
		if model != nil {
			order = model.PortOrder()
		}
	default:
		prefix = primitivePrefix[kind]
		switch kind {
		case schematic.DeviceNMOS, schematic.DevicePMOS:
			order = mosfetOrder
		case schematic.DeviceNPN, schematic.DevicePNP:
			order = bjtOrder
		default:
			order = twoPortOrder
		}
	}

	props := renderProps(doc.Props, modelToken)
	portList := joinPorts(name, order, ports)
	line := prefix + name
	if portList != "" {
		line += " " + portList
	}
	if props != "" {
		line += " " + props
	}
	return line
}

// portList resolves the net list for a reftempl {ports} substitution using
// the same ordering the default syntax would use.
func (e *emitter) portList(doc *schematic.Document, model *schematic.Model, kind schematic.DeviceType, ports map[string]string) string {
	var order []string
	switch kind {
	case schematic.DeviceNMOS, schematic.DevicePMOS:
		order = mosfetOrder
	case schematic.DeviceNPN, schematic.DevicePNP:
		order = bjtOrder
	case schematic.DeviceSubcircuit:
		if model != nil {
			order = model.PortOrder()
		}
	default:
		order = twoPortOrder
	}
	return joinPorts(doc.Label(), order, ports)
}

func joinPorts(name string, order []string, ports map[string]string) string {
	nets := make([]string, 0, len(order))
	for _, p := range order {
		if n, ok := ports[p]; ok && n != "" {
			nets = append(nets, n)
		} else {
			// dangling terminal still needs a node for valid syntax
			nets = append(nets, "nc_"+name+"_"+p)
		}
	}
	return strings.Join(nets, " ")
}

// mark records a model reference for the declaration pass.
func (e *emitter) mark(ref string) {
	bare := schematic.BareModel(ref)
	if e.used[bare] {
		return
	}
	e.used[bare] = true
	e.queue = append(e.queue, bare)
}

// declareUsed drains the worklist of instantiated models, declaring each
// exactly once. Schematic models recurse into their body group, which may
// instantiate further models.
func (e *emitter) declareUsed() error {
	for len(e.queue) > 0 {
		bare := e.queue[0]
		e.queue = e.queue[1:]

		m := e.schem.Model(bare)
		if m == nil {
			continue // already warned at the reference site
		}

		if m.IsSchematic() {
			docs, ok := e.schem.Groups[bare]
			if !ok {
				e.opts.Logger.Warn("schematic model has no body group", "model", bare)
				continue
			}
			body, err := e.groupBody(docs)
			if err != nil {
				return err
			}
			e.ckt.AddSubckt(renderSubckt(Subckt{
				Name:  m.SubcktName(),
				Ports: m.PortOrder(),
				Body:  body,
			}))
			continue
		}

		templ := m.Template("spice", e.opts.Simulator)
		if templ == nil {
			continue
		}
		if templ.DeclTempl != "" {
			decl := strings.ReplaceAll(templ.DeclTempl, "{corner}", e.opts.Corner)
			e.mergeFragment(m.ID, decl)
		}
		if templ.Code != "" {
			e.mergeFragment(m.ID, templ.Code)
		}
	}
	return nil
}

// mergeFragment parses template text into the circuit, rewriting remote
// includes to cache paths; on parse failure the text is kept verbatim in the
// raw section and the failure is logged, never raised.
func (e *emitter) mergeFragment(modelKey, text string) {
	nl, err := Parse(text)
	if err != nil {
		e.opts.Logger.Warn("template did not parse, keeping verbatim",
			"model", modelKey, "err", err)
		e.ckt.Raw = appendNew(e.ckt.Raw, []string{text})
		return
	}
	for i, card := range nl.Includes {
		rewritten, dl := rewriteInclude(card, e.opts.IncludeDir)
		nl.Includes[i] = rewritten
		if dl != nil && !e.seen[dl.URL] {
			e.seen[dl.URL] = true
			e.pending = append(e.pending, *dl)
		}
	}
	e.ckt.Merge(nl)
}

// renderProps renders a device property map: the model token first and bare,
// a "spice" passthrough last and raw, everything else as sorted key=value
// pairs. modelToken, when non-empty, replaces any "model" property.
func renderProps(props map[string]any, modelToken string) string {
	var parts []string
	if modelToken == "" {
		if v, ok := props["model"]; ok {
			modelToken = fmt.Sprintf("%v", v)
		}
	}
	if modelToken != "" {
		parts = append(parts, modelToken)
	}

	keys := make([]string, 0, len(props))
	for k := range props {
		if k == "model" || k == "spice" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, props[k]))
	}

	if v, ok := props["spice"]; ok {
		parts = append(parts, fmt.Sprintf("%v", v))
	}
	return strings.Join(parts, " ")
}
