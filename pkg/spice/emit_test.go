package spice

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/schemtools/spicenet/pkg/schematic"
)

// rcFilter is a voltage source driving an RC low-pass: V1.P wired to R1.P
// (net "in"), R1.N touching C1.P (net "out"), both returns grounded through
// ports named "0".
func rcFilter() *schematic.Schematic {
	s := schematic.NewSchematic()
	s.Groups["top"] = schematic.Level{
		"top:v1":   {ID: "top:v1", Type: "vsource", Name: "1", Props: map[string]any{"spice": "dc 1"}},
		"top:r1":   {ID: "top:r1", Type: "resistor", Name: "1", X: 3, Props: map[string]any{"spice": "1k"}},
		"top:c1":   {ID: "top:c1", Type: "capacitor", Name: "1", X: 3, Y: 2, Props: map[string]any{"spice": "100n"}},
		"top:w1":   {ID: "top:w1", Type: "wire", X: 1, Y: 0, RX: 3, RY: 0},
		"top:in":   {ID: "top:in", Type: "port", X: 4, Y: 0, Name: "in"},
		"top:out":  {ID: "top:out", Type: "port", X: 4, Y: 2, Name: "out"},
		"top:gnd1": {ID: "top:gnd1", Type: "port", X: 1, Y: 2, Name: "0"},
		"top:gnd2": {ID: "top:gnd2", Type: "port", X: 4, Y: 4, Name: "0"},
	}
	return s
}

func TestEmitRCFilter(t *testing.T) {
	res, err := Emit("top", rcFilter(), Options{})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	want := "* top\n" +
		"C1 out 0 100n\n" +
		"R1 in out 1k\n" +
		"V1 in 0 dc 1\n" +
		".end\n"
	if res.Text != want {
		t.Errorf("Text =\n%s\nwant\n%s", res.Text, want)
	}
	if len(res.Pending) != 0 {
		t.Errorf("Pending = %v", res.Pending)
	}
}

// ampSchematic is a hierarchical schematic: two instances of the "amp"
// sub-circuit at the top level, plus a library model that is never used.
func ampSchematic() *schematic.Schematic {
	s := schematic.NewSchematic()
	s.Models["models:amp"] = &schematic.Model{
		ID: "models:amp",
		Conn: []schematic.Conn{
			{X: 0, Y: 1, Port: "in"},
			{X: 2, Y: 1, Port: "out"},
		},
	}
	s.Models["models:unused"] = &schematic.Model{
		ID:   "models:unused",
		Conn: []schematic.Conn{{X: 0, Y: 1, Port: "a"}},
	}
	s.Groups["amp"] = schematic.Level{
		"amp:r1":  {ID: "amp:r1", Type: "resistor", Name: "1", Props: map[string]any{"spice": "1k"}},
		"amp:in":  {ID: "amp:in", Type: "port", X: 1, Y: 0, Name: "in"},
		"amp:out": {ID: "amp:out", Type: "port", X: 1, Y: 2, Name: "out"},
	}
	s.Groups["top"] = schematic.Level{
		"top:x1": {ID: "top:x1", Type: "ckt", Name: "x1", Model: "amp"},
		"top:x2": {ID: "top:x2", Type: "ckt", Name: "x2", Model: "amp", X: 10},
	}
	return s
}

func TestEmitHierarchy(t *testing.T) {
	res, err := Emit("top", ampSchematic(), Options{})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if n := strings.Count(res.Text, ".subckt amp"); n != 1 {
		t.Errorf("amp declared %d times:\n%s", n, res.Text)
	}
	if strings.Contains(res.Text, "unused") {
		t.Errorf("unused model declared:\n%s", res.Text)
	}
	if !strings.Contains(res.Text, ".subckt amp in out\nR1 in out 1k\n.ends amp") {
		t.Errorf("bad subckt block:\n%s", res.Text)
	}
	if !strings.Contains(res.Text, "Xx1 net0 net1 amp") ||
		!strings.Contains(res.Text, "Xx2 net2 net3 amp") {
		t.Errorf("bad instance lines:\n%s", res.Text)
	}
	if !strings.HasSuffix(res.Text, ".end\n") {
		t.Errorf("missing terminator:\n%s", res.Text)
	}
}

func TestEmitReftemplOverride(t *testing.T) {
	s := schematic.NewSchematic()
	s.Models["models:nfet"] = &schematic.Model{
		ID: "models:nfet",
		Templates: map[string][]schematic.Template{
			"spice": {
				{Name: "Xyce", RefTempl: "YM{name} {ports}"},
				{
					Name:      "NgSpice",
					RefTempl:  "M{name} {ports} nfet_mod {properties}",
					DeclTempl: ".model nfet_mod nmos(level=8 corner={corner})",
				},
			},
		},
	}
	s.Groups["top"] = schematic.Level{
		"top:m1": {ID: "top:m1", Type: "nmos", Name: "1", Model: "nfet",
			Props: map[string]any{"W": 0.5}},
		"top:d": {ID: "top:d", Type: "port", X: 1, Y: 0, Name: "d"},
		"top:g": {ID: "top:g", Type: "port", X: 0, Y: 1, Name: "g"},
		"top:b": {ID: "top:b", Type: "port", X: 1, Y: 1, Name: "b"},
		"top:s": {ID: "top:s", Type: "port", X: 1, Y: 2, Name: "s"},
	}

	res, err := Emit("top", s, Options{Corner: "ss"})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(res.Text, "M1 d g s b nfet_mod W=0.5") {
		t.Errorf("reference template not applied:\n%s", res.Text)
	}
	if !strings.Contains(res.Text, ".model nfet_mod nmos(level=8 corner=ss)") {
		t.Errorf("declaration template or corner missing:\n%s", res.Text)
	}
}

func TestEmitUseX(t *testing.T) {
	s := schematic.NewSchematic()
	s.Models["models:bigfet"] = &schematic.Model{
		ID:   "models:bigfet",
		Name: "power_nfet",
		Ports: map[string][]string{
			"top":    {"D"},
			"left":   {"G"},
			"bottom": {"S"},
		},
		Templates: map[string][]schematic.Template{
			"spice": {{
				Name: "NgSpice",
				UseX: true,
				Code: ".subckt power_nfet D G S\nM1 D G S S nfet W=100\n.ends power_nfet",
			}},
		},
	}
	s.Groups["top"] = schematic.Level{
		"top:m1": {ID: "top:m1", Type: "ckt", Name: "1", Model: "bigfet"},
		"top:d":  {ID: "top:d", Type: "port", X: 1, Y: 0, Name: "vd"},
		"top:g":  {ID: "top:g", Type: "port", X: 0, Y: 1, Name: "vg"},
		"top:s":  {ID: "top:s", Type: "port", X: 1, Y: 2, Name: "vs"},
	}

	res, err := Emit("top", s, Options{})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(res.Text, "X1 vd vg vs power_nfet") {
		t.Errorf("use_x instantiation missing:\n%s", res.Text)
	}
	if n := strings.Count(res.Text, ".subckt power_nfet"); n != 1 {
		t.Errorf("power_nfet declared %d times:\n%s", n, res.Text)
	}
}

func TestEmitMalformedTemplateFallsBack(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)

	s := schematic.NewSchematic()
	s.Models["models:vendor"] = &schematic.Model{
		ID:   "models:vendor",
		Name: "vendor",
		Conn: []schematic.Conn{{X: 0, Y: 1, Port: "a"}},
		Templates: map[string][]schematic.Template{
			"spice": {{Name: "NgSpice", Code: "%% vendor gibberish %%\nnot a card"}},
		},
	}
	s.Groups["top"] = schematic.Level{
		"top:x1": {ID: "top:x1", Type: "ckt", Name: "1", Model: "vendor"},
	}

	res, err := Emit("top", s, Options{Logger: logger})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(res.Text, "%% vendor gibberish %%") {
		t.Errorf("raw fallback missing:\n%s", res.Text)
	}
	if !strings.Contains(buf.String(), "did not parse") {
		t.Errorf("no warning logged: %s", buf.String())
	}
}

func TestEmitExtraBeforeEnd(t *testing.T) {
	res, err := Emit("top", rcFilter(), Options{Extra: ".tran 1u 1m"})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.HasSuffix(res.Text, ".tran 1u 1m\n.end\n") {
		t.Errorf("extra not placed before .end:\n%s", res.Text)
	}
}

func TestEmitRemoteIncludePending(t *testing.T) {
	s := schematic.NewSchematic()
	s.Models["models:pdk"] = &schematic.Model{
		ID:   "models:pdk",
		Name: "pdk_res",
		Conn: []schematic.Conn{{X: 0, Y: 1, Port: "a"}},
		Templates: map[string][]schematic.Template{
			"spice": {{
				Name:      "NgSpice",
				DeclTempl: ".lib https://example.com/pdk.tar.gz#models/sky130.lib {corner}",
			}},
		},
	}
	s.Groups["top"] = schematic.Level{
		"top:x1": {ID: "top:x1", Type: "ckt", Name: "1", Model: "pdk"},
	}

	res, err := Emit("top", s, Options{IncludeDir: "cache"})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(res.Pending) != 1 {
		t.Fatalf("Pending = %v", res.Pending)
	}
	dl := res.Pending[0]
	if dl.URL != "https://example.com/pdk.tar.gz" {
		t.Errorf("URL = %q", dl.URL)
	}
	if dl.ExtractTo == "" || !strings.HasSuffix(dl.Path, ".tar.gz") {
		t.Errorf("Download = %+v", dl)
	}
	if strings.Contains(res.Text, "https://") {
		t.Errorf("URL not rewritten:\n%s", res.Text)
	}
	if !strings.Contains(res.Text, "sky130.lib tt") {
		t.Errorf("rewritten include or corner missing:\n%s", res.Text)
	}
}

func TestRenderProps(t *testing.T) {
	props := map[string]any{
		"model": "nfet",
		"W":     0.5,
		"L":     0.15,
		"spice": "m=2",
	}
	if got := renderProps(props, ""); got != "nfet L=0.15 W=0.5 m=2" {
		t.Errorf("renderProps = %q", got)
	}
	if got := renderProps(props, "power_nfet"); got != "power_nfet L=0.15 W=0.5 m=2" {
		t.Errorf("renderProps with override = %q", got)
	}
	if got := renderProps(nil, ""); got != "" {
		t.Errorf("renderProps(nil) = %q", got)
	}
}
