package hierarchy

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/schemtools/spicenet/pkg/schematic"
	"github.com/schemtools/spicenet/pkg/store"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func schematicModel(name string) *schematic.Model {
	return &schematic.Model{
		ID:   schematic.ModelKey(name),
		Name: name,
	}
}

func primitiveModel(name string) *schematic.Model {
	return &schematic.Model{
		ID:   schematic.ModelKey(name),
		Name: name,
		Templates: map[string][]schematic.Template{
			"spice": {{Name: "default", Code: ".subckt " + name + "\n.ends\n"}},
		},
	}
}

func instance(group, id, model string) *schematic.Document {
	return &schematic.Document{
		ID:    group + ":" + id,
		Type:  "ckt",
		Model: "models:" + model,
	}
}

func TestResolveDiamondFetchesOnce(t *testing.T) {
	// top instantiates amp twice; amp instantiates bias; bias uses a
	// primitive nfet. Every group must be fetched exactly once.
	st := store.NewMem()
	st.PutModel(schematicModel("amp"))
	st.PutModel(schematicModel("bias"))
	st.PutModel(primitiveModel("nfet"))

	st.PutDoc(instance("top", "x1", "amp"))
	st.PutDoc(instance("top", "x2", "amp"))
	st.PutDoc(instance("amp", "x1", "bias"))
	st.PutDoc(instance("bias", "m1", "nfet"))

	schem, err := Resolve(context.Background(), st, "top", testLogger())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	for _, group := range []string{"top", "amp", "bias"} {
		if _, ok := schem.Groups[group]; !ok {
			t.Errorf("group %q not resolved", group)
		}
		if got := st.GroupCalls[group]; got != 1 {
			t.Errorf("group %q fetched %d times, want 1", group, got)
		}
	}
	if _, ok := schem.Groups["nfet"]; ok {
		t.Error("primitive model nfet must not contribute a group")
	}
	if st.GroupCalls["nfet"] != 0 {
		t.Errorf("primitive group fetched %d times, want 0", st.GroupCalls["nfet"])
	}
}

func TestResolveMissingModelIsNonFatal(t *testing.T) {
	st := store.NewMem()
	st.PutDoc(instance("top", "x1", "ghost"))

	schem, err := Resolve(context.Background(), st, "top", testLogger())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(schem.Groups) != 1 {
		t.Fatalf("got %d groups, want only top", len(schem.Groups))
	}
}

func TestResolveMissingTop(t *testing.T) {
	st := store.NewMem()
	if _, err := Resolve(context.Background(), st, "nowhere", testLogger()); err == nil {
		t.Fatal("expected error for missing top-level schematic")
	}
}

func TestResolveDeepChain(t *testing.T) {
	st := store.NewMem()
	st.PutModel(schematicModel("a"))
	st.PutModel(schematicModel("b"))
	st.PutModel(schematicModel("c"))
	st.PutDoc(instance("top", "x", "a"))
	st.PutDoc(instance("a", "x", "b"))
	st.PutDoc(instance("b", "x", "c"))
	st.PutDoc(&schematic.Document{ID: "c:w", Type: "wire", X: 0, Y: 0, RX: 1})

	schem, err := Resolve(context.Background(), st, "top", testLogger())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(schem.Groups) != 4 {
		t.Fatalf("got %d groups, want 4", len(schem.Groups))
	}
}

func TestResolveRejectsBadName(t *testing.T) {
	st := store.NewMem()
	if _, err := Resolve(context.Background(), st, "top level", testLogger()); err == nil {
		t.Fatal("expected validation error for name with whitespace")
	}
}
