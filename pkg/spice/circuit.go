package spice

import "strings"

// Circuit accumulates the sections of a SPICE deck during emission and
// assembles them in simulator-friendly order: title, includes, params,
// options, globals, models, sub-circuit declarations, element body, raw
// fallback text, caller extra, .end.
type Circuit struct {
	Title    string
	Includes []string
	Params   []string
	Options  []string
	Globals  []string
	Models   []string
	Subckts  []string
	Body     []string
	Raw      []string
}

// Merge copies a parsed fragment's cards into the circuit, skipping cards
// already present so a template shared by many device instances is merged
// once.
func (c *Circuit) Merge(nl *Netlist) {
	c.Includes = appendNew(c.Includes, nl.Includes)
	c.Params = appendNew(c.Params, nl.Params)
	c.Options = appendNew(c.Options, nl.Options)
	c.Globals = appendNew(c.Globals, nl.Globals)
	c.Models = appendNew(c.Models, nl.Models)
	for _, s := range nl.Subckts {
		c.AddSubckt(renderSubckt(s))
	}
	c.Body = append(c.Body, nl.Elements...)
}

// AddSubckt appends a rendered .subckt block unless an identical block is
// already declared.
func (c *Circuit) AddSubckt(block string) {
	for _, s := range c.Subckts {
		if s == block {
			return
		}
	}
	c.Subckts = append(c.Subckts, block)
}

// AddModel appends a model declaration card unless already present.
func (c *Circuit) AddModel(card string) {
	c.Models = appendNew(c.Models, []string{card})
}

func appendNew(dst, src []string) []string {
	for _, s := range src {
		dup := false
		for _, d := range dst {
			if d == s {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, s)
		}
	}
	return dst
}

func renderSubckt(s Subckt) string {
	var b strings.Builder
	b.WriteString(".subckt ")
	b.WriteString(s.Name)
	for _, p := range s.Ports {
		b.WriteByte(' ')
		b.WriteString(p)
	}
	for _, line := range s.Body {
		b.WriteByte('\n')
		b.WriteString(line)
	}
	b.WriteString("\n.ends ")
	b.WriteString(s.Name)
	return b.String()
}

// Render assembles the final deck. Extra is caller-supplied SPICE appended
// after the body, before the .end terminator.
func (c *Circuit) Render(extra string) string {
	var out []string
	out = append(out, "* "+c.Title)
	out = append(out, c.Includes...)
	out = append(out, c.Params...)
	out = append(out, c.Options...)
	out = append(out, c.Globals...)
	out = append(out, c.Models...)
	out = append(out, c.Subckts...)
	out = append(out, strings.Join(c.Body, "\n"))
	if len(c.Raw) > 0 {
		out = append(out, c.Raw...)
	}
	if extra != "" {
		out = append(out, extra)
	}
	out = append(out, ".end\n")
	return strings.Join(out, "\n")
}
