package spice

import (
	"sort"
	"strings"

	"github.com/schemtools/spicenet/pkg/schematic"
)

// defaultVectors lists the simulator vectors worth probing on each primitive
// family when the device carries no model of its own.
var defaultVectors = map[schematic.DeviceType][]string{
	schematic.DeviceResistor:  {"i"},
	schematic.DeviceCapacitor: {"i"},
	schematic.DeviceInductor:  {"i"},
	schematic.DeviceVSource:   {"i"},
	schematic.DeviceISource:   {},
	schematic.DeviceDiode:     {},
	schematic.DeviceNMOS:      {"gm", "id", "vdsat"},
	schematic.DevicePMOS:      {"gm", "id", "vdsat"},
	schematic.DeviceNPN:       {"gm", "ic", "ib"},
	schematic.DevicePNP:       {"gm", "ic", "ib"},
}

// Vectors collects the NgSpice save vectors for a schematic: every non-gnd
// port net plus the per-device vectors declared on instantiated models (or
// the primitive defaults), with hierarchical device paths for sub-circuit
// instances. Example device vector: "@m.x1.mnfet[gm]".
func Vectors(top string, schem *schematic.Schematic, simulator string) []string {
	if simulator == "" {
		simulator = "NgSpice"
	}
	return groupVectors(schem.Groups[top], schem, simulator, nil)
}

func groupVectors(docs schematic.Level, schem *schematic.Schematic, simulator string, path []string) []string {
	var vectors []string
	for _, doc := range sortedDocs(docs) {
		kind := doc.Kind()
		if kind == schematic.DevicePort {
			if strings.EqualFold(doc.Name, "gnd") || doc.Name == "" {
				continue
			}
			vectors = append(vectors, strings.ToLower(strings.Join(append(path, doc.Name), ".")))
			continue
		}
		if kind == schematic.DeviceWire || kind == schematic.DeviceText {
			continue
		}

		name := doc.Label()
		model := schem.Model(doc.Model)

		if model != nil && model.IsSchematic() {
			sub, ok := schem.Groups[schematic.BareModel(doc.Model)]
			if ok {
				vectors = append(vectors, groupVectors(sub, schem, simulator, append(path, "X"+name))...)
			}
			continue
		}

		if model != nil {
			templ := model.Template("spice", simulator)
			if templ == nil || len(templ.Vectors) == 0 {
				continue
			}
			typ := firstLetter(templ.Component, templ.RefTempl, "X")
			dtyp := firstLetter(templ.RefTempl, "X")
			var full string
			switch {
			case templ.Component != "":
				full = typ + "." + strings.Join(append(append(append([]string{}, path...), dtyp+name), templ.Component), ".")
			case len(path) > 0:
				full = typ + "." + strings.Join(append(append([]string{}, path...), dtyp+name), ".")
			default:
				full = typ + name
			}
			for _, v := range templ.Vectors {
				vectors = append(vectors, strings.ToLower("@"+full+"["+v+"]"))
			}
			continue
		}

		vex, ok := defaultVectors[kind]
		if !ok {
			continue
		}
		typ := strings.ToLower(primitivePrefix[kind])
		var full string
		if len(path) > 0 {
			full = typ + "." + strings.Join(append(append([]string{}, path...), typ+name), ".")
		} else {
			full = typ + name
		}
		for _, v := range vex {
			vectors = append(vectors, strings.ToLower("@"+full+"["+v+"]"))
		}
	}
	return vectors
}

// firstLetter returns the first character of the first non-empty candidate.
func firstLetter(cands ...string) string {
	for _, c := range cands {
		if c != "" {
			return c[:1]
		}
	}
	return "X"
}

// sortedDocs returns a level's documents in stable ID order.
func sortedDocs(docs schematic.Level) []*schematic.Document {
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*schematic.Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, docs[id])
	}
	return out
}
