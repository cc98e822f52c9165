package spice

import (
	"strings"

	"github.com/schemtools/spicenet/pkg/errors"
)

// Subckt is one parsed .subckt block.
type Subckt struct {
	Name  string
	Ports []string
	Body  []string
}

// Netlist holds the classified cards of a parsed SPICE fragment. Card text
// is kept verbatim (continuations joined, comments dropped) so a fragment
// can be merged into an output circuit without reformatting.
type Netlist struct {
	Includes []string
	Params   []string
	Options  []string
	Globals  []string
	Models   []string
	Subckts  []Subckt
	Elements []string
}

// Empty reports whether the fragment contained no cards at all.
func (n *Netlist) Empty() bool {
	return len(n.Includes) == 0 && len(n.Params) == 0 && len(n.Options) == 0 &&
		len(n.Globals) == 0 && len(n.Models) == 0 && len(n.Subckts) == 0 &&
		len(n.Elements) == 0
}

// elementLetters is the set of first characters a SPICE element card may
// start with.
const elementLetters = "ABCDEFGHIJKLMOQRSTUVWXZ"

// joinCards splits raw SPICE text into logical cards: comments removed,
// "+" continuation lines appended to the previous card.
func joinCards(code string) []string {
	var cards []string
	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimRight(line, " \t\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "*") {
			continue
		}
		// strip end-of-line comments
		if i := strings.IndexAny(trimmed, ";$"); i > 0 {
			trimmed = strings.TrimSpace(trimmed[:i])
			if trimmed == "" {
				continue
			}
		}
		if strings.HasPrefix(trimmed, "+") && len(cards) > 0 {
			cards[len(cards)-1] += " " + strings.TrimSpace(trimmed[1:])
			continue
		}
		cards = append(cards, trimmed)
	}
	return cards
}

// Parse classifies a free-form SPICE fragment into a Netlist. Fragments are
// template bodies, not full decks, so no title line is assumed and .end is
// accepted but ignored. Any card that cannot be classified is an error; the
// caller is expected to fall back to verbatim inclusion.
func Parse(code string) (*Netlist, error) {
	nl := &Netlist{}
	var cur *Subckt
	depth := 0

	for _, card := range joinCards(code) {
		fields := strings.Fields(card)
		lower := strings.ToLower(fields[0])

		if strings.HasPrefix(lower, ".") {
			switch lower {
			case ".subckt":
				if len(fields) < 2 {
					return nil, errors.New(errors.ErrCodeTemplateParse, "subckt card without a name: %q", card)
				}
				depth++
				if depth == 1 {
					cur = &Subckt{Name: fields[1], Ports: fields[2:]}
					continue
				}
				// nested definitions stay verbatim in the outer body
			case ".ends":
				if depth == 0 {
					return nil, errors.New(errors.ErrCodeTemplateParse, "unmatched .ends")
				}
				depth--
				if depth == 0 {
					nl.Subckts = append(nl.Subckts, *cur)
					cur = nil
					continue
				}
			}
			if cur != nil {
				cur.Body = append(cur.Body, card)
				continue
			}
			switch lower {
			case ".include", ".inc", ".lib":
				nl.Includes = append(nl.Includes, card)
			case ".param", ".csparam":
				nl.Params = append(nl.Params, card)
			case ".option", ".options", ".temp":
				nl.Options = append(nl.Options, card)
			case ".global":
				nl.Globals = append(nl.Globals, card)
			case ".model":
				if len(fields) < 3 {
					return nil, errors.New(errors.ErrCodeTemplateParse, "model card needs name and type: %q", card)
				}
				nl.Models = append(nl.Models, card)
			case ".end":
				// terminator of a full deck pasted into a template
			default:
				return nil, errors.New(errors.ErrCodeTemplateParse, "unknown directive %q", fields[0])
			}
			continue
		}

		first := strings.ToUpper(lower[:1])
		if !strings.Contains(elementLetters, first) {
			return nil, errors.New(errors.ErrCodeTemplateParse, "unrecognized card %q", card)
		}
		if len(fields) < 3 {
			return nil, errors.New(errors.ErrCodeTemplateParse, "element card too short: %q", card)
		}
		if cur != nil {
			cur.Body = append(cur.Body, card)
		} else {
			nl.Elements = append(nl.Elements, card)
		}
	}

	if depth != 0 {
		return nil, errors.New(errors.ErrCodeTemplateParse, "unterminated .subckt %s", cur.Name)
	}
	return nl, nil
}
