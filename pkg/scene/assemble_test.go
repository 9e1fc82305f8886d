package scene

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/chazu/lumen/pkg/geometry"
	"github.com/chazu/lumen/pkg/model"
	"github.com/chazu/lumen/pkg/modifier"
)

func unitSquare() geometry.Polygon {
	return geometry.MustPolygon([]geometry.Vec{
		{}, {X: 1}, {X: 1, Y: 1}, {Y: 1},
	})
}

// tinyHouse is a single-zone model with a south-facing window, an
// outdoor overhang, an indoor light shelf, and a tree canopy.
func tinyHouse(t *testing.T) *model.Model {
	t.Helper()
	m := model.New("TinyHouse")
	room, err := model.BoxRoom("TinyHouseZone", 5, 10, 3, 0)
	if err != nil {
		t.Fatalf("BoxRoom: %v", err)
	}
	ap, err := room.Faces[1].ApertureByRatio(0.4)
	if err != nil {
		t.Fatalf("ApertureByRatio: %v", err)
	}
	ap.Overhangs = append(ap.Overhangs,
		model.OverhangSpec{Depth: 0.5},
		model.OverhangSpec{Depth: 0.4, Offset: 0.5, Indoor: true},
	)
	m.AddRoom(room)
	m.AddShade(&model.Shade{
		Name: "TreeCanopy",
		Geometry: geometry.MustPolygon([]geometry.Vec{
			{X: -2, Y: -2, Z: 4},
			{X: 0, Y: -2, Z: 4},
			{X: 0, Y: 0, Z: 4},
			{X: -2, Y: 0, Z: 4},
		}),
	})
	return m
}

func polygonEntries(s *Scene) []Entry {
	var out []Entry
	for _, e := range s.Entries {
		if e.Kind == EntryPolygon {
			out = append(out, e)
		}
	}
	return out
}

func findEntry(s *Scene, name string) (Entry, bool) {
	for _, e := range s.Entries {
		if e.Kind == EntryPolygon && e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

func TestBuildSceneEmissionOrder(t *testing.T) {
	scene, err := NewAssembler().BuildScene(tinyHouse(t))
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}
	var names []string
	for _, e := range polygonEntries(scene) {
		names = append(names, e.Name)
	}
	want := []string{
		"TinyHouseZone_Floor",
		"TinyHouseZone_Front",
		"TinyHouseZone_Front_Glz0",
		"TinyHouseZone_Front_Glz0_OutOverhang0",
		"TinyHouseZone_Front_Glz0_InOverhang0",
		"TinyHouseZone_Right",
		"TinyHouseZone_Back",
		"TinyHouseZone_Left",
		"TinyHouseZone_Ceiling",
		"TreeCanopy",
	}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("emission order\n got %v\nwant %v", names, want)
	}
}

func TestBuildSceneModifiersPrecedeGeometry(t *testing.T) {
	scene, err := NewAssembler().BuildScene(tinyHouse(t))
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}
	seenPolygon := false
	declared := make(map[string]bool)
	for _, e := range scene.Entries {
		switch e.Kind {
		case EntryModifier:
			if seenPolygon {
				t.Fatalf("modifier %q declared after geometry", e.Modifier.Identifier())
			}
			declared[e.Modifier.Identifier()] = true
		case EntryPolygon:
			seenPolygon = true
			if !declared[e.ModifierName] {
				t.Errorf("polygon %q references undeclared modifier %q", e.Name, e.ModifierName)
			}
		}
	}
	if !seenPolygon {
		t.Fatal("scene has no geometry")
	}
}

func TestBuildSceneDefaultModifiers(t *testing.T) {
	scene, err := NewAssembler().BuildScene(tinyHouse(t))
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}
	cases := map[string]string{
		"TinyHouseZone_Floor":                   modifier.GenericFloor.Identifier(),
		"TinyHouseZone_Front":                   modifier.GenericWall.Identifier(),
		"TinyHouseZone_Ceiling":                 modifier.GenericCeiling.Identifier(),
		"TinyHouseZone_Front_Glz0":              modifier.GenericExteriorWindow.Identifier(),
		"TinyHouseZone_Front_Glz0_OutOverhang0": modifier.GenericExteriorShade.Identifier(),
		"TinyHouseZone_Front_Glz0_InOverhang0":  modifier.GenericInteriorShade.Identifier(),
		"TreeCanopy":                            modifier.GenericContext.Identifier(),
	}
	for name, wantMod := range cases {
		e, ok := findEntry(scene, name)
		if !ok {
			t.Errorf("no entry %q", name)
			continue
		}
		if e.ModifierName != wantMod {
			t.Errorf("%s: modifier %q, want %q", name, e.ModifierName, wantMod)
		}
	}
}

func TestBuildSceneSharedModifierDeclaredOnce(t *testing.T) {
	scene, err := NewAssembler().BuildScene(tinyHouse(t))
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}
	// Four walls share the generic wall modifier.
	count := 0
	for _, e := range scene.Entries {
		if e.Kind == EntryModifier && e.Modifier.Identifier() == modifier.GenericWall.Identifier() {
			count++
		}
	}
	if count != 1 {
		t.Errorf("generic wall declared %d times, want 1", count)
	}
}

func TestBuildSceneOverhangGeometry(t *testing.T) {
	scene, err := NewAssembler().BuildScene(tinyHouse(t))
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}
	e, ok := findEntry(scene, "TinyHouseZone_Front_Glz0_OutOverhang0")
	if !ok {
		t.Fatal("no outdoor overhang entry")
	}
	// The front wall's outward normal is -Y, so the overhang lies in
	// negative Y, 0.5 deep, level with the aperture's top edge.
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range e.Polygon.Points() {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	if math.Abs(minY-(-0.5)) > 1e-9 || math.Abs(maxY) > 1e-9 {
		t.Errorf("overhang spans Y [%g, %g], want [-0.5, 0]", minY, maxY)
	}

	shelf, ok := findEntry(scene, "TinyHouseZone_Front_Glz0_InOverhang0")
	if !ok {
		t.Fatal("no indoor shelf entry")
	}
	for _, p := range shelf.Polygon.Points() {
		if p.Y < -1e-9 {
			t.Errorf("indoor shelf point %v on the outdoor side", p)
		}
	}
}

func TestBuildSceneDeterministic(t *testing.T) {
	a, err := NewAssembler().BuildScene(tinyHouse(t))
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}
	b, err := NewAssembler().BuildScene(tinyHouse(t))
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}
	if !reflect.DeepEqual(a.Entries, b.Entries) {
		t.Error("two builds of the same model produced different scenes")
	}
}

func TestBuildSceneRejectsConflictingModifiers(t *testing.T) {
	paintA, _ := modifier.NewPlastic("paint", 0.5, 0.5, 0.5, 0, 0)
	paintB, _ := modifier.NewPlastic("paint", 0.2, 0.2, 0.2, 0, 0)

	m := tinyHouse(t)
	m.Rooms[0].Faces[2].Modifier = paintA
	m.Rooms[0].Faces[3].Modifier = paintB

	if _, err := NewAssembler().BuildScene(m); err == nil {
		t.Fatal("BuildScene accepted conflicting modifier definitions")
	}
}

func TestBuildSceneRejectsDuplicateNames(t *testing.T) {
	m := tinyHouse(t)
	m.AddShade(&model.Shade{Name: "TreeCanopy", Geometry: unitSquare()})

	if _, err := NewAssembler().BuildScene(m); err == nil {
		t.Fatal("BuildScene accepted duplicate primitive names")
	}
}

func TestBuildSceneRejectsShadeCycle(t *testing.T) {
	a := &model.Shade{Name: "A", Geometry: unitSquare()}
	b := &model.Shade{Name: "B", Geometry: unitSquare()}
	a.Children = []*model.Shade{b}
	b.Children = []*model.Shade{a}

	m := model.New("Loop")
	m.AddShade(a)

	_, err := NewAssembler().BuildScene(m)
	if err == nil {
		t.Fatal("BuildScene accepted a cyclic shade hierarchy")
	}
	var cyc CycleError
	if !errors.As(err, &cyc) {
		t.Fatalf("want CycleError, got %v", err)
	}
}

func TestBuildSceneNestedShades(t *testing.T) {
	m := tinyHouse(t)
	canopy := m.Shades[0]
	canopy.Children = append(canopy.Children, &model.Shade{
		Name:     "TreeTrunk",
		Geometry: unitSquare(),
	})

	scene, err := NewAssembler().BuildScene(m)
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}
	names := polygonEntries(scene)
	last, secondLast := names[len(names)-1], names[len(names)-2]
	if secondLast.Name != "TreeCanopy" || last.Name != "TreeTrunk" {
		t.Errorf("nested shade order: got %q then %q, want TreeCanopy then TreeTrunk",
			secondLast.Name, last.Name)
	}
}

func TestNameAllocatorClaim(t *testing.T) {
	a := NewNameAllocator()
	if err := a.Claim("Wall"); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	err := a.Claim("Wall")
	var conflict ConflictError
	if !errors.As(err, &conflict) || conflict.Name != "Wall" {
		t.Fatalf("second Claim: got %v, want ConflictError{Wall}", err)
	}
	if err := a.Claim(""); err == nil {
		t.Fatal("Claim accepted an empty name")
	}
}

func TestNameAllocatorDerive(t *testing.T) {
	a := NewNameAllocator()
	if got := a.Derive("Glz", "OutOverhang"); got != "Glz_OutOverhang0" {
		t.Errorf("first derive: %q", got)
	}
	if got := a.Derive("Glz", "OutOverhang"); got != "Glz_OutOverhang1" {
		t.Errorf("second derive: %q", got)
	}
	// A claimed name is skipped.
	if err := a.Claim("Glz_OutOverhang2"); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if got := a.Derive("Glz", "OutOverhang"); got != "Glz_OutOverhang3" {
		t.Errorf("derive after claim: %q", got)
	}
}
