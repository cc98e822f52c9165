package schematic

import "math"

// shapePort is one terminal of a local shape template, in shape-grid
// coordinates before any transform is applied.
type shapePort struct {
	X    int
	Y    int
	Name string
}

// parseShape turns an ASCII grid into shape ports. Each non-space rune is a
// terminal whose name is looked up in names (falling back to the rune
// itself), at column X and row Y.
func parseShape(grid []string, names map[rune]string) []shapePort {
	var ports []shapePort
	for y, row := range grid {
		for x, c := range row {
			if c == ' ' {
				continue
			}
			name := names[c]
			if name == "" {
				name = string(c)
			}
			ports = append(ports, shapePort{X: x, Y: y, Name: name})
		}
	}
	return ports
}

// Fixed symbol shapes for the primitive device families. All are 3x3 cells
// so that rotation keeps terminals on the grid.
var (
	mosfetShape = parseShape([]string{
		" D ",
		"GB ",
		" S ",
	}, nil)

	bjtShape = parseShape([]string{
		" C ",
		"B  ",
		" E ",
	}, nil)

	twoPortShape = parseShape([]string{
		" P ",
		"   ",
		" N ",
	}, nil)
)

// perimeterEdges is the canonical edge order for perimeter port layout and
// derived port ordering.
var perimeterEdges = [4]string{"top", "left", "right", "bottom"}

// perimeterShape lays a model's edge port lists out along the four sides of
// a square bounding box. The box is sized to fit the longest edge with one
// empty cell of margin on each side, and each edge's ports are centered
// along it in declared order.
func perimeterShape(ports map[string][]string) []shapePort {
	maxEdge := 0
	for _, names := range ports {
		if len(names) > maxEdge {
			maxEdge = len(names)
		}
	}
	if maxEdge == 0 {
		return nil
	}
	side := maxEdge + 2
	var shape []shapePort
	for _, edge := range perimeterEdges {
		names := ports[edge]
		off := (side - len(names)) / 2
		for i, name := range names {
			switch edge {
			case "top":
				shape = append(shape, shapePort{X: off + i, Y: 0, Name: name})
			case "bottom":
				shape = append(shape, shapePort{X: off + i, Y: side - 1, Name: name})
			case "left":
				shape = append(shape, shapePort{X: 0, Y: off + i, Name: name})
			case "right":
				shape = append(shape, shapePort{X: side - 1, Y: off + i, Name: name})
			}
		}
	}
	return shape
}

// connShape converts a model's explicit conn layout into shape ports.
func connShape(conn []Conn) []shapePort {
	shape := make([]shapePort, len(conn))
	for i, c := range conn {
		shape[i] = shapePort{X: c.X, Y: c.Y, Name: c.Port}
	}
	return shape
}

// shapeFor returns the local shape for a model: the explicit conn layout
// when present, otherwise the perimeter layout derived from the edge lists.
func shapeFor(m *Model) []shapePort {
	if len(m.Conn) > 0 {
		return connShape(m.Conn)
	}
	return perimeterShape(m.Ports)
}

// round is the single grid rounding rule: half away from zero, applied
// identically to every transformed coordinate so connected endpoints land on
// the same cell.
func round(v float64) int { return int(math.Round(v)) }

// place applies a document's affine transform to a local shape. Local
// coordinates are centered on the shape's bounding-box midpoint, mapped
// through [a b c d] with the [e f] offset, then shifted back by the midpoint
// plus the device origin and snapped to the grid.
func place(shape []shapePort, tr [6]float64, devX, devY float64) map[Coord]string {
	a, b, c, d, e, f := tr[0], tr[1], tr[2], tr[3], tr[4], tr[5]
	width := 0
	for _, p := range shape {
		if p.X+1 > width {
			width = p.X + 1
		}
		if p.Y+1 > width {
			width = p.Y + 1
		}
	}
	mid := float64(width)/2 - 0.5
	res := make(map[Coord]string, len(shape))
	for _, p := range shape {
		x := float64(p.X) - mid
		y := float64(p.Y) - mid
		nx := a*x + c*y + e
		ny := b*x + d*y + f
		res[Coord{round(devX + nx + mid), round(devY + ny + mid)}] = p.Name
	}
	return res
}

// Ports resolves a document's terminal positions to absolute grid
// coordinates. Wires yield their two endpoints with empty names, ports a
// single named node, primitives their fixed symbol shape under the
// document's transform, and hierarchical instances their model's layout.
// Text yields nothing, as does an instance whose model reference cannot be
// resolved against the library.
func Ports(doc *Document, models map[string]*Model) map[Coord]string {
	switch doc.Kind() {
	case DeviceWire:
		a := Coord{round(doc.X), round(doc.Y)}
		b := Coord{round(doc.X + doc.RX), round(doc.Y + doc.RY)}
		return map[Coord]string{a: "", b: ""}
	case DeviceText:
		return map[Coord]string{}
	case DevicePort:
		return map[Coord]string{{round(doc.X), round(doc.Y)}: doc.Name}
	case DeviceNMOS, DevicePMOS:
		return place(mosfetShape, doc.matrix(), doc.X, doc.Y)
	case DeviceNPN, DevicePNP:
		return place(bjtShape, doc.matrix(), doc.X, doc.Y)
	case DeviceResistor, DeviceCapacitor, DeviceInductor,
		DeviceVSource, DeviceISource, DeviceDiode:
		return place(twoPortShape, doc.matrix(), doc.X, doc.Y)
	default:
		m, ok := models[ModelKey(doc.Model)]
		if !ok || m == nil {
			return map[Coord]string{}
		}
		return place(shapeFor(m), doc.matrix(), doc.X, doc.Y)
	}
}
