package schematic

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ModelPrefix namespaces model documents in the store. A device's bare model
// reference "amp" resolves to the library document "models:amp".
const ModelPrefix = "models:"

// DeviceType is the closed set of document tags the engine understands.
// Anything outside the fixed set is a hierarchical instance of a library
// model and is tagged DeviceSubcircuit, with the reference kept on the
// document itself.
type DeviceType int

const (
	DeviceWire DeviceType = iota
	DevicePort
	DeviceText
	DeviceResistor
	DeviceCapacitor
	DeviceInductor
	DeviceVSource
	DeviceISource
	DeviceDiode
	DeviceNMOS
	DevicePMOS
	DeviceNPN
	DevicePNP
	// DeviceSubcircuit marks an instance of a library model. The model
	// reference lives in Document.Model.
	DeviceSubcircuit
)

var deviceTypes = map[string]DeviceType{
	"wire":      DeviceWire,
	"port":      DevicePort,
	"text":      DeviceText,
	"resistor":  DeviceResistor,
	"capacitor": DeviceCapacitor,
	"inductor":  DeviceInductor,
	"vsource":   DeviceVSource,
	"isource":   DeviceISource,
	"diode":     DeviceDiode,
	"nmos":      DeviceNMOS,
	"pmos":      DevicePMOS,
	"npn":       DeviceNPN,
	"pnp":       DevicePNP,
}

// String returns the document tag for the device type.
func (t DeviceType) String() string {
	for tag, dt := range deviceTypes {
		if dt == t {
			return tag
		}
	}
	return "subcircuit"
}

// Coord is an absolute position on the schematic grid.
type Coord struct {
	X int
	Y int
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// Document is one placed symbol inside a schematic group. Wires use X/Y plus
// the RX/RY endpoint delta; every other device uses X/Y plus Transform.
// Documents are externally owned and treated as immutable for the duration
// of a netlisting pass.
type Document struct {
	ID        string         `json:"_id" bson:"_id"`
	Type      string         `json:"type" bson:"type"`
	X         float64        `json:"x" bson:"x"`
	Y         float64        `json:"y" bson:"y"`
	RX        float64        `json:"rx,omitempty" bson:"rx,omitempty"`
	RY        float64        `json:"ry,omitempty" bson:"ry,omitempty"`
	Transform []float64      `json:"transform,omitempty" bson:"transform,omitempty"`
	Name      string         `json:"name,omitempty" bson:"name,omitempty"`
	Model     string         `json:"model,omitempty" bson:"model,omitempty"`
	Props     map[string]any `json:"props,omitempty" bson:"props,omitempty"`
}

// Kind maps the document's string tag onto the closed DeviceType set.
func (d *Document) Kind() DeviceType {
	if t, ok := deviceTypes[d.Type]; ok {
		return t
	}
	return DeviceSubcircuit
}

// matrix returns the affine transform [a b c d e f], defaulting to identity
// when the document carries none (or a malformed one).
func (d *Document) matrix() [6]float64 {
	if len(d.Transform) != 6 {
		return [6]float64{1, 0, 0, 1, 0, 0}
	}
	var m [6]float64
	copy(m[:], d.Transform)
	return m
}

// Label returns the human label for SPICE element naming: the document's
// name if set, otherwise its ID with namespace colons flattened (SPICE
// element names cannot contain colons).
func (d *Document) Label() string {
	if d.Name != "" {
		return d.Name
	}
	return strings.ReplaceAll(d.ID, ":", "_")
}

// Template is one per-simulator code template attached to a model.
// RefTempl overrides the element reference line, DeclTempl the declaration
// emitted once per model (with `{corner}` substituted), and Code is free-form
// SPICE text merged into the output. UseX forces X-style instantiation.
type Template struct {
	Name      string `json:"name,omitempty" bson:"name,omitempty"`
	Code      string `json:"code,omitempty" bson:"code,omitempty"`
	UseX      bool   `json:"use_x,omitempty" bson:"use_x,omitempty"`
	RefTempl  string `json:"reftempl,omitempty" bson:"reftempl,omitempty"`
	DeclTempl string `json:"decltempl,omitempty" bson:"decltempl,omitempty"`

	// Component names the internal element probes attach to when the model
	// wraps its device in a sub-circuit, and Vectors lists the simulator
	// vectors worth saving for instances of the model.
	Component string   `json:"component,omitempty" bson:"component,omitempty"`
	Vectors   []string `json:"vectors,omitempty" bson:"vectors,omitempty"`
}

// Conn is one entry of a model's legacy port layout: an explicit local
// coordinate plus port name. The JSON wire form is a 3-element array
// [x, y, "port"].
type Conn struct {
	X    int
	Y    int
	Port string
}

// UnmarshalJSON decodes the [x, y, "port"] array form.
func (c *Conn) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("conn entry needs [x, y, port], got %d elements", len(raw))
	}
	x, ok := raw[0].(float64)
	if !ok {
		return fmt.Errorf("conn x is not a number: %v", raw[0])
	}
	y, ok := raw[1].(float64)
	if !ok {
		return fmt.Errorf("conn y is not a number: %v", raw[1])
	}
	p, ok := raw[2].(string)
	if !ok {
		return fmt.Errorf("conn port is not a string: %v", raw[2])
	}
	c.X, c.Y, c.Port = int(x), int(y), p
	return nil
}

// MarshalJSON encodes the [x, y, "port"] array form.
func (c Conn) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.X, c.Y, c.Port})
}

// Model is a reusable device or sub-circuit definition from the library.
// A model without templates is a schematic sub-circuit whose body is stored
// as its own document group; a model with templates is a primitive or
// SPICE-level definition.
type Model struct {
	ID       string   `json:"_id" bson:"_id"`
	Name     string   `json:"name,omitempty" bson:"name,omitempty"`
	Type     string   `json:"type,omitempty" bson:"type,omitempty"`
	Category []string `json:"category,omitempty" bson:"category,omitempty"`

	// Ports lays terminals out along the symbol perimeter, keyed by edge
	// ("top", "bottom", "left", "right"), each an ordered name list.
	Ports map[string][]string `json:"ports,omitempty" bson:"ports,omitempty"`

	// Conn is the legacy explicit layout, preferred over Ports when present.
	Conn []Conn `json:"conn,omitempty" bson:"conn,omitempty"`

	// Templates maps a target language ("spice") to candidate templates.
	Templates map[string][]Template `json:"templates,omitempty" bson:"templates,omitempty"`
}

// IsSchematic reports whether the model is a schematic sub-circuit rather
// than a primitive/SPICE-only definition. The discriminator is the absence
// of templates.
func (m *Model) IsSchematic() bool { return len(m.Templates) == 0 }

// SubcktName returns the identifier used for the model's SPICE sub-circuit:
// the display name if set, otherwise the bare model key.
func (m *Model) SubcktName() string {
	if m.Name != "" {
		return m.Name
	}
	return BareModel(m.ID)
}

// Template selects the candidate template for a language and simulator:
// the entry whose name matches the simulator, or the first entry when no
// name matches. Returns nil when the model has no templates for lang.
func (m *Model) Template(lang, simulator string) *Template {
	cands := m.Templates[lang]
	if len(cands) == 0 {
		return nil
	}
	for i := range cands {
		if cands[i].Name == simulator {
			return &cands[i]
		}
	}
	return &cands[0]
}

// PortOrder returns the model's terminal names in canonical order: the conn
// order when a legacy layout is present, otherwise perimeter order (top,
// left, right, bottom; each edge in declared order). This order is used both
// for .subckt declarations and X-instance references so the two always agree.
func (m *Model) PortOrder() []string {
	if len(m.Conn) > 0 {
		names := make([]string, len(m.Conn))
		for i, c := range m.Conn {
			names[i] = c.Port
		}
		return names
	}
	var names []string
	for _, edge := range perimeterEdges {
		names = append(names, m.Ports[edge]...)
	}
	return names
}

// Level is one schematic group: every document placed directly inside one
// hierarchical body, keyed by document ID.
type Level map[string]*Document

// Schematic is a resolved multi-level schematic: the model library plus the
// document groups reachable from the top level. Group keys are bare model
// references (or the top-level schematic name).
type Schematic struct {
	Models map[string]*Model `json:"models"`
	Groups map[string]Level  `json:"groups"`
}

// NewSchematic creates an empty schematic with initialized maps.
func NewSchematic() *Schematic {
	return &Schematic{
		Models: make(map[string]*Model),
		Groups: make(map[string]Level),
	}
}

// Model resolves a bare model reference against the library. Returns nil
// when the reference is dangling.
func (s *Schematic) Model(bare string) *Model {
	return s.Models[ModelKey(bare)]
}

// ModelKey converts a bare model reference to its library document ID.
// Already-prefixed keys pass through unchanged.
func ModelKey(bare string) string {
	if strings.HasPrefix(bare, ModelPrefix) {
		return bare
	}
	return ModelPrefix + bare
}

// BareModel strips the library prefix from a model document ID.
func BareModel(key string) string {
	return strings.TrimPrefix(key, ModelPrefix)
}

/// SplitID splits a namespaced document ID "group:device" into its parts.
// IDs without a colon are returned as a bare group with an empty device.
func SplitID(id string) (group, device string) {
	group, device, _ = strings.Cut(id, ":")
	return group, device
}
