package modifier

import (
	"math"
	"strings"
	"testing"
)

func TestPlasticParams(t *testing.T) {
	p, err := NewPlastic("generic_wall_0.50", 0.5, 0.5, 0.5, 0, 0)
	if err != nil {
		t.Fatalf("NewPlastic: %v", err)
	}
	if p.Kind() != "plastic" {
		t.Errorf("Kind = %q, want plastic", p.Kind())
	}
	params := p.Params()
	want := []float64{0.5, 0.5, 0.5, 0, 0}
	if len(params) != len(want) {
		t.Fatalf("Params length = %d, want %d", len(params), len(want))
	}
	for i := range want {
		if params[i] != want[i] {
			t.Errorf("Params[%d] = %g, want %g", i, params[i], want[i])
		}
	}
	if !p.Opaque() {
		t.Error("plastic should be opaque")
	}
}

func TestPlasticReflectanceOutOfRange(t *testing.T) {
	if _, err := NewPlastic("bad", 1.2, 0, 0, 0, 0); err == nil {
		t.Error("reflectance above 1 should be rejected")
	}
	if _, err := NewPlastic("bad", -0.1, 0, 0, 0, 0); err == nil {
		t.Error("negative reflectance should be rejected")
	}
}

func TestRangeErrorReportsFirstInvalidField(t *testing.T) {
	// With several fields out of range, the first in parameter order is
	// the one named, every time.
	for i := 0; i < 10; i++ {
		_, err := NewPlastic("bad", -0.1, 0.5, 0.5, 0, 2)
		if err == nil {
			t.Fatal("out-of-range plastic accepted")
		}
		if !strings.Contains(err.Error(), "red reflectance") {
			t.Fatalf("want red reflectance named first, got %v", err)
		}
		_, err = NewLight("dim", 1, -2, -3)
		if err == nil {
			t.Fatal("negative emittance accepted")
		}
		if !strings.Contains(err.Error(), "green emittance") {
			t.Fatalf("want green emittance named first, got %v", err)
		}
	}
}

func TestGlassParamCount(t *testing.T) {
	g, err := GlassFromTransmissivity("clear", 0.96)
	if err != nil {
		t.Fatalf("GlassFromTransmissivity: %v", err)
	}
	if n := len(g.Params()); n != 3 {
		t.Errorf("glass without refraction index: %d params, want 3", n)
	}
	if g.Opaque() {
		t.Error("glass should not be opaque")
	}

	g2, err := NewGlass("etfe", 0.9, 0.9, 0.9, 1.4)
	if err != nil {
		t.Fatalf("NewGlass: %v", err)
	}
	if n := len(g2.Params()); n != 4 {
		t.Errorf("glass with refraction index: %d params, want 4", n)
	}
	if g2.Params()[3] != 1.4 {
		t.Errorf("refraction index = %g, want 1.4", g2.Params()[3])
	}
}

func TestTransmissivityConversion(t *testing.T) {
	// A 0.6 transmittance maps to roughly 0.6536 transmissivity.
	got := Transmissivity(0.6)
	if math.Abs(got-0.6536) > 1e-3 {
		t.Errorf("Transmissivity(0.6) = %g, want ~0.6536", got)
	}
	if Transmissivity(0) != 0 {
		t.Errorf("Transmissivity(0) should be 0")
	}
	// Transmissivity always exceeds the transmittance it was derived from.
	for _, tr := range []float64{0.1, 0.3, 0.5, 0.7, 0.88} {
		if ts := Transmissivity(tr); ts <= tr {
			t.Errorf("Transmissivity(%g) = %g, want > %g", tr, ts, tr)
		}
	}
}

func TestTransParams(t *testing.T) {
	tr, err := NewTrans("leaf", 0.3, 0.4, 0.3, 0, 0, 0.45, 0)
	if err != nil {
		t.Fatalf("NewTrans: %v", err)
	}
	if n := len(tr.Params()); n != 7 {
		t.Errorf("trans params = %d, want 7", n)
	}
}

func TestGlowAndLightParams(t *testing.T) {
	g, err := NewGlow("white_glow", 1, 1, 1, 0)
	if err != nil {
		t.Fatalf("NewGlow: %v", err)
	}
	if n := len(g.Params()); n != 4 {
		t.Errorf("glow params = %d, want 4", n)
	}

	l, err := NewLight("lamp", 100, 100, 100)
	if err != nil {
		t.Fatalf("NewLight: %v", err)
	}
	if n := len(l.Params()); n != 3 {
		t.Errorf("light params = %d, want 3", n)
	}
	if _, err := NewLight("bad", -1, 0, 0); err == nil {
		t.Error("negative emittance should be rejected")
	}
}

func TestMirrorParams(t *testing.T) {
	m, err := NewMirror("silver", 0.9, 0.9, 0.9)
	if err != nil {
		t.Fatalf("NewMirror: %v", err)
	}
	if n := len(m.Params()); n != 3 {
		t.Errorf("mirror params = %d, want 3", n)
	}
}

func TestSameDefinition(t *testing.T) {
	a, _ := PlasticFromReflectance("w", 0.5)
	b, _ := PlasticFromReflectance("w", 0.5)
	c, _ := PlasticFromReflectance("w", 0.6)
	d, _ := NewMetal("w", 0.5, 0.5, 0.5, 0, 0)

	if !SameDefinition(a, b) {
		t.Error("identical definitions should match")
	}
	if SameDefinition(a, c) {
		t.Error("different parameters should not match")
	}
	if SameDefinition(a, d) {
		t.Error("different kinds should not match")
	}
}

func TestDefaultIdentifiers(t *testing.T) {
	cases := []struct {
		m    Modifier
		name string
	}{
		{GenericFloor, "generic_floor_0.20"},
		{GenericWall, "generic_wall_0.50"},
		{GenericCeiling, "generic_ceiling_0.80"},
		{GenericInteriorShade, "generic_interior_shade_0.50"},
		{GenericExteriorShade, "generic_exterior_shade_0.35"},
		{GenericContext, "generic_context_0.20"},
		{GenericExteriorWindow, "generic_exterior_window_vis_0.64"},
		{AirWall, "air_wall"},
		{WhiteGlow, "white_glow"},
	}
	for _, c := range cases {
		if c.m.Identifier() != c.name {
			t.Errorf("identifier = %q, want %q", c.m.Identifier(), c.name)
		}
	}
	// Glazing defaults store transmissivity, not the raw transmittance.
	if GenericExteriorWindow.R <= 0.64 {
		t.Errorf("GenericExteriorWindow.R = %g, want > 0.64 (transmissivity)",
			GenericExteriorWindow.R)
	}
}
