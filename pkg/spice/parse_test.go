package spice

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseClassifiesCards(t *testing.T) {
	code := `* vendor header
.include /opt/pdk/models.lib
.param vdd=1.8
.option temp=27
.global vss
.model dmod D (is=1e-14)
R1 a b 1k
M1 d g s b nfet_mod
+ W=0.5 L=0.15
`
	nl, err := Parse(code)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(nl.Includes) != 1 || nl.Includes[0] != ".include /opt/pdk/models.lib" {
		t.Errorf("Includes = %v", nl.Includes)
	}
	if len(nl.Params) != 1 || len(nl.Options) != 1 || len(nl.Globals) != 1 {
		t.Errorf("Params/Options/Globals = %v/%v/%v", nl.Params, nl.Options, nl.Globals)
	}
	if len(nl.Models) != 1 {
		t.Errorf("Models = %v", nl.Models)
	}
	want := []string{"R1 a b 1k", "M1 d g s b nfet_mod W=0.5 L=0.15"}
	if !reflect.DeepEqual(nl.Elements, want) {
		t.Errorf("Elements = %v, want %v", nl.Elements, want)
	}
}

func TestParseSubckt(t *testing.T) {
	code := `.subckt amp in out vdd vss
M1 out in vss vss nfet
R1 vdd out 10k
.ends amp
X1 a y vdd 0 amp
`
	nl, err := Parse(code)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(nl.Subckts) != 1 {
		t.Fatalf("Subckts = %v", nl.Subckts)
	}
	s := nl.Subckts[0]
	if s.Name != "amp" {
		t.Errorf("Name = %q", s.Name)
	}
	if !reflect.DeepEqual(s.Ports, []string{"in", "out", "vdd", "vss"}) {
		t.Errorf("Ports = %v", s.Ports)
	}
	if len(s.Body) != 2 {
		t.Errorf("Body = %v", s.Body)
	}
	if len(nl.Elements) != 1 || !strings.HasPrefix(nl.Elements[0], "X1") {
		t.Errorf("Elements = %v", nl.Elements)
	}
}

func TestParseNestedSubckt(t *testing.T) {
	code := `.subckt outer a b
.subckt inner x y
R1 x y 1
.ends inner
Xi a b inner
.ends outer
`
	nl, err := Parse(code)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(nl.Subckts) != 1 || nl.Subckts[0].Name != "outer" {
		t.Fatalf("Subckts = %v", nl.Subckts)
	}
	// the nested definition stays verbatim inside the outer body
	if len(nl.Subckts[0].Body) != 4 {
		t.Errorf("Body = %v", nl.Subckts[0].Body)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"garbage", "{ not spice at all }"},
		{"unknown directive", ".frobnicate 1 2 3"},
		{"unterminated subckt", ".subckt amp a b\nR1 a b 1k"},
		{"unmatched ends", ".ends amp"},
		{"short element", "R1 a"},
		{"bad model card", ".model dmod"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.code); err == nil {
				t.Errorf("Parse(%q) did not fail", tt.code)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	nl, err := Parse("* just a comment\n\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !nl.Empty() {
		t.Errorf("expected empty netlist: %+v", nl)
	}
}
