package rad

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/chazu/lumen/pkg/geometry"
	"github.com/chazu/lumen/pkg/model"
	"github.com/chazu/lumen/pkg/modifier"
	"github.com/chazu/lumen/pkg/scene"
)

func buildScene(t *testing.T) *scene.Scene {
	t.Helper()
	m := model.New("TinyHouse")
	room, err := model.BoxRoom("Zone", 5, 10, 3, 0)
	if err != nil {
		t.Fatalf("BoxRoom: %v", err)
	}
	ap, err := room.Faces[1].ApertureByRatio(0.25)
	if err != nil {
		t.Fatalf("ApertureByRatio: %v", err)
	}
	ap.Overhangs = append(ap.Overhangs, model.OverhangSpec{Depth: 0.5})
	m.AddRoom(room)

	s, err := scene.NewAssembler().BuildScene(m)
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}
	return s
}

func TestSerializeDeclarationShape(t *testing.T) {
	var w Writer
	out, err := w.Serialize(buildScene(t))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	blocks := strings.Split(strings.TrimRight(out, "\n"), "\n\n")
	if len(blocks) < 10 {
		t.Fatalf("got %d declarations, want at least 10:\n%s", len(blocks), out)
	}
	for _, block := range blocks {
		lines := strings.Split(block, "\n")
		if len(lines) != 4 {
			t.Fatalf("declaration has %d lines, want 4:\n%s", len(lines), block)
		}
		if len(strings.Fields(lines[0])) != 3 {
			t.Errorf("header %q: want <modifier> <kind> <name>", lines[0])
		}
		if lines[1] != "0" || lines[2] != "0" {
			t.Errorf("declaration %q: middle lines %q %q, want two zeros", lines[0], lines[1], lines[2])
		}
		args := strings.Fields(lines[3])
		if len(args) == 0 {
			t.Fatalf("declaration %q has no argument line", lines[0])
		}
		if args[0] != strconv.Itoa(len(args)-1) {
			t.Errorf("declaration %q: count %s does not match %d arguments",
				lines[0], args[0], len(args)-1)
		}
	}
}

func TestSerializeModifierLines(t *testing.T) {
	var w Writer
	out, err := w.Serialize(buildScene(t))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	wall := modifier.GenericWall
	want := "void plastic " + wall.Identifier()
	if !strings.Contains(out, want) {
		t.Errorf("output missing modifier header %q", want)
	}
	// The window modifier is a glass primitive with 3 params.
	if !strings.Contains(out, "void glass "+modifier.GenericExteriorWindow.Identifier()) {
		t.Error("output missing glass modifier header")
	}
}

func TestSerializePolygonArgCount(t *testing.T) {
	var w Writer
	s := buildScene(t)
	out, err := w.Serialize(s)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	// A quad polygon carries 12 coordinates.
	header := modifier.GenericFloor.Identifier() + " polygon Zone_Floor\n0\n0\n12 "
	if !strings.Contains(out, header) {
		t.Errorf("output missing floor declaration:\n%s", out)
	}
}

func TestSerializeDeterministic(t *testing.T) {
	var w Writer
	a, err := w.Serialize(buildScene(t))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	b, err := w.Serialize(buildScene(t))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if a != b {
		t.Error("two serializations of the same model differ")
	}
}

func TestSerializeBanners(t *testing.T) {
	w := Writer{Banners: true}
	out, err := w.Serialize(buildScene(t))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	for _, banner := range []string{"# ---- Modifiers ----", "# ---- Zone ----"} {
		if !strings.Contains(out, banner) {
			t.Errorf("output missing banner %q", banner)
		}
	}

	// Banners are cosmetic: stripping comment lines and renormalizing
	// blank lines yields the bannerless output.
	var plain Writer
	want, _ := plain.Serialize(buildScene(t))
	if stripComments(out) != want {
		t.Error("banner output differs from plain output beyond comments")
	}
}

func stripComments(s string) string {
	var kept []string
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		kept = append(kept, line)
	}
	out := strings.Join(kept, "\n")
	for strings.Contains(out, "\n\n\n") {
		out = strings.ReplaceAll(out, "\n\n\n", "\n\n")
	}
	return strings.TrimPrefix(out, "\n")
}

func TestSerializeMinimal(t *testing.T) {
	w := Writer{Minimal: true}
	out, err := w.Serialize(buildScene(t))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 6 {
			t.Errorf("minimal line %q too short", line)
		}
		if fields[3] != "0" || fields[4] != "0" {
			t.Errorf("minimal line %q: fields 4 and 5 should be zeros", line)
		}
	}
}

func TestSerializeShortestFloats(t *testing.T) {
	var w Writer
	out, err := w.Serialize(buildScene(t))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if strings.Contains(out, "0.500000") {
		t.Error("floats serialized with trailing zeros")
	}
}

func TestWriteUnregisteredModifier(t *testing.T) {
	s := &scene.Scene{
		Name:     "Broken",
		Registry: modifier.NewRegistry(),
		Entries: []scene.Entry{
			{
				Kind:         scene.EntryPolygon,
				Name:         "Orphan",
				ModifierName: "no_such_material",
				Polygon: geometry.MustPolygon([]geometry.Vec{
					{}, {X: 1}, {X: 1, Y: 1}, {Y: 1},
				}),
			},
		},
	}
	var w Writer
	_, err := w.Serialize(s)
	var notFound modifier.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("got %v, want NotFoundError", err)
	}
}

func TestSerializeModifierHelper(t *testing.T) {
	p, _ := modifier.NewPlastic("paint", 0.5, 0.4, 0.3, 0, 0)
	got := SerializeModifier(p)
	want := "void plastic paint\n0\n0\n5 0.5 0.4 0.3 0 0\n"
	if got != want {
		t.Errorf("SerializeModifier:\n got %q\nwant %q", got, want)
	}
}
