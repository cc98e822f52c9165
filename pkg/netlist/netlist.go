// Package netlist extracts electrical connectivity from one schematic level.
//
// The extractor indexes every document's terminals by grid coordinate, then
// flood-fills connected wires, ports, and device terminals into nets. Each
// net is named after the first port or named wire found during traversal;
// nets without any name get a synthesized net0, net1, ... label that never
// collides with an explicit name.
package netlist

import (
	"fmt"
	"sort"

	"github.com/schemtools/spicenet/pkg/errors"
	"github.com/schemtools/spicenet/pkg/schematic"
)

// Nets is the result of net extraction: device ID -> port name -> net name.
type Nets map[string]map[string]string

// Net returns the net a device port is connected to, or "" when the port is
// dangling.
func (n Nets) Net(devID, port string) string {
	return n[devID][port]
}

// terminal is one device terminal found at a coordinate.
type terminal struct {
	port string
	dev  *schematic.Document
}

// component is one flood-filled connected group before naming.
type component struct {
	name string                     // first explicit name found, or ""
	devs map[string]map[string]bool // device ID -> set of ports
}

// Extract computes the nets of a single schematic level. Device terminals
// placed on the same grid cell connect without an explicit wire. A document
// that is neither a wire nor a port ending up in the wire index is a data
// error and aborts the call.
func Extract(docs schematic.Level, models map[string]*schematic.Model) (Nets, error) {
	wireIndex := make(map[schematic.Coord][]*schematic.Document)
	deviceIndex := make(map[schematic.Coord][]terminal)

	// Index in sorted document order so bucket contents, and with them
	// traversal order and net naming, are stable across runs.
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		doc := docs[id]
		ports := schematic.Ports(doc, models)
		switch doc.Kind() {
		case schematic.DeviceWire, schematic.DevicePort:
			for at := range ports {
				wireIndex[at] = append(wireIndex[at], doc)
			}
		default:
			for at, port := range ports {
				deviceIndex[at] = append(deviceIndex[at], terminal{port: port, dev: doc})
				// A zero-length stub lets two terminals on the same
				// cell connect without an explicit wire.
				stub := &schematic.Document{
					Type: "wire",
					X:    float64(at.X),
					Y:    float64(at.Y),
				}
				wireIndex[at] = append(wireIndex[at], stub)
			}
		}
	}

	seeds := make([]schematic.Coord, 0, len(wireIndex))
	for at := range wireIndex {
		seeds = append(seeds, at)
	}
	sort.Slice(seeds, func(i, j int) bool {
		if seeds[i].X != seeds[j].X {
			return seeds[i].X < seeds[j].X
		}
		return seeds[i].Y < seeds[j].Y
	})

	visited := make(map[schematic.Coord]bool)
	var comps []*component

	for _, seed := range seeds {
		if visited[seed] {
			continue
		}
		visited[seed] = true
		comp := &component{devs: make(map[string]map[string]bool)}
		queue := append([]*schematic.Document(nil), wireIndex[seed]...)

		for len(queue) > 0 {
			doc := queue[0]
			queue = queue[1:]
			switch doc.Kind() {
			case schematic.DevicePort:
				if comp.name == "" {
					comp.name = doc.Name
				}
			case schematic.DeviceWire:
				if comp.name == "" {
					comp.name = doc.Name
				}
				for at := range schematic.Ports(doc, models) {
					if !visited[at] {
						visited[at] = true
						queue = append(queue, wireIndex[at]...)
					}
					for _, t := range deviceIndex[at] {
						ports := comp.devs[t.dev.ID]
						if ports == nil {
							ports = make(map[string]bool)
							comp.devs[t.dev.ID] = ports
						}
						ports[t.port] = true
					}
				}
			default:
				return nil, errors.New(errors.ErrCodeInvalidDocument,
					"document %s of type %s indexed as wire", doc.ID, doc.Type)
			}
		}
		comps = append(comps, comp)
	}

	// Name the anonymous components after all explicit names are known so
	// a synthesized label can never shadow a real one.
	taken := make(map[string]bool)
	for _, comp := range comps {
		if comp.name != "" {
			taken[comp.name] = true
		}
	}
	netnum := 0
	for _, comp := range comps {
		if comp.name != "" {
			continue
		}
		for {
			name := fmt.Sprintf("net%d", netnum)
			netnum++
			if !taken[name] {
				comp.name = name
				taken[name] = true
				break
			}
		}
	}

	nets := make(Nets)
	for _, comp := range comps {
		for devID, ports := range comp.devs {
			m := nets[devID]
			if m == nil {
				m = make(map[string]string)
				nets[devID] = m
			}
			for port := range ports {
				m[port] = comp.name
			}
		}
	}
	return nets, nil
}
