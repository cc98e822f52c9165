package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/schemtools/spicenet/pkg/schematic"
)

func TestMemGroupPrefixIsolation(t *testing.T) {
	m := NewMem()
	m.PutDoc(&schematic.Document{ID: "amp:m1", Type: "nmos"})
	m.PutDoc(&schematic.Document{ID: "amp:w1", Type: "wire"})
	m.PutDoc(&schematic.Document{ID: "amplifier:m1", Type: "nmos"})

	level, err := m.Group(context.Background(), "amp")
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	if len(level) != 2 {
		t.Fatalf("got %d documents, want 2", len(level))
	}
	if _, ok := level["amplifier:m1"]; ok {
		t.Error("prefix match leaked a document from another group")
	}
}

func TestMemLibraryFilter(t *testing.T) {
	m := NewMem()
	m.PutModel(&schematic.Model{ID: "models:nfet", Name: "NFET", Category: []string{"transistors", "nmos"}})
	m.PutModel(&schematic.Model{ID: "models:pfet", Name: "PFET", Category: []string{"transistors", "pmos"}})
	m.PutModel(&schematic.Model{ID: "models:res", Name: "resistor", Category: []string{"passives"}})

	tests := []struct {
		name     string
		filter   string
		category []string
		want     []string
	}{
		{"all", "", nil, []string{"models:nfet", "models:pfet", "models:res"}},
		{"name substring case-insensitive", "fet", nil, []string{"models:nfet", "models:pfet"}},
		{"category prefix", "", []string{"transistors"}, []string{"models:nfet", "models:pfet"}},
		{"category exact path", "", []string{"transistors", "nmos"}, []string{"models:nfet"}},
		{"filter and category", "p", []string{"transistors"}, []string{"models:pfet"}},
		{"no match", "cap", nil, nil},
		{"category deeper than model", "", []string{"passives", "resistors"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := m.Library(context.Background(), tt.filter, tt.category)
			if err != nil {
				t.Fatalf("Library: %v", err)
			}
			if len(out) != len(tt.want) {
				t.Fatalf("got %d models, want %d", len(out), len(tt.want))
			}
			for i, id := range tt.want {
				if out[i].ID != id {
					t.Errorf("out[%d] = %s, want %s", i, out[i].ID, id)
				}
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rc.json")
	data := `{
		"documents": [
			{"_id": "top:r1", "type": "resistor", "x": 0, "y": 0, "props": {"resistance": "1k"}},
			{"_id": "top:w1", "type": "wire", "x": 1, "y": 0, "rx": 2}
		],
		"models": [
			{"_id": "models:opamp", "name": "opamp", "conn": [[0, 1, "in"], [2, 1, "out"]]}
		]
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	level, err := m.Group(context.Background(), "top")
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	if len(level) != 2 {
		t.Fatalf("got %d documents, want 2", len(level))
	}
	if level["top:r1"].Props["resistance"] != "1k" {
		t.Errorf("props = %v", level["top:r1"].Props)
	}

	models, err := m.Models(context.Background())
	if err != nil {
		t.Fatalf("Models: %v", err)
	}
	op := models["models:opamp"]
	if op == nil {
		t.Fatal("opamp model missing")
	}
	if len(op.Conn) != 2 || op.Conn[1].Port != "out" {
		t.Errorf("conn = %v", op.Conn)
	}
	if !op.IsSchematic() {
		t.Error("model without templates should be a schematic")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
