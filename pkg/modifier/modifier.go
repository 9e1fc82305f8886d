// Package modifier defines named optical material definitions for scene
// primitives: opaque diffuse surfaces, glazing, translucent materials,
// mirrors and light sources. Modifiers are immutable values identified by
// a globally unique name; geometric primitives reference them by that name.
package modifier

import (
	"fmt"
	"math"
)

// Modifier is a named optical material definition. The parameter vector
// returned by Params is what appears on the final line of the material's
// wire declaration; its length and meaning depend on the kind.
type Modifier interface {
	// Identifier returns the unique material name.
	Identifier() string
	// Kind returns the wire-format kind keyword (plastic, glass, ...).
	Kind() string
	// Params returns the numeric parameter vector.
	Params() []float64
	// Opaque reports whether the material blocks light entirely.
	Opaque() bool
}

// rangeErr builds the error for a parameter outside [0, 1].
func rangeErr(name, fieldName string, v float64) error {
	return fmt.Errorf("modifier %q: %s must be between 0 and 1, got %g", name, fieldName, v)
}

// field pairs a parameter name with its value. Validation walks fields
// in declaration order so the first invalid one is reported every time.
type field struct {
	name  string
	value float64
}

// checkUnit validates that every listed field value is within [0, 1].
func checkUnit(name string, fields []field) error {
	for _, f := range fields {
		if f.value < 0 || f.value > 1 {
			return rangeErr(name, f.name, f.value)
		}
	}
	return nil
}

// checkNonNegative validates that every listed field value is >= 0.
func checkNonNegative(name string, fields []field) error {
	for _, f := range fields {
		if f.value < 0 {
			return fmt.Errorf("modifier %q: %s must not be negative, got %g", name, f.name, f.value)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Plastic
// ---------------------------------------------------------------------------

// Plastic is an opaque diffuse material with optional specularity and
// roughness. Its parameter vector is
// [r_reflectance, g_reflectance, b_reflectance, specularity, roughness].
type Plastic struct {
	Name        string
	R, G, B     float64
	Specularity float64
	Roughness   float64
}

// NewPlastic validates the channel reflectances and returns a Plastic.
func NewPlastic(name string, r, g, b, specularity, roughness float64) (Plastic, error) {
	err := checkUnit(name, []field{
		{"red reflectance", r},
		{"green reflectance", g},
		{"blue reflectance", b},
		{"specularity", specularity},
		{"roughness", roughness},
	})
	if err != nil {
		return Plastic{}, err
	}
	return Plastic{Name: name, R: r, G: g, B: b, Specularity: specularity, Roughness: roughness}, nil
}

// PlasticFromReflectance creates a neutral-colored Plastic with the same
// reflectance on all three channels and no specular component.
func PlasticFromReflectance(name string, reflectance float64) (Plastic, error) {
	return NewPlastic(name, reflectance, reflectance, reflectance, 0, 0)
}

func (p Plastic) Identifier() string { return p.Name }
func (p Plastic) Kind() string       { return "plastic" }
func (p Plastic) Opaque() bool       { return true }

func (p Plastic) Params() []float64 {
	return []float64{p.R, p.G, p.B, p.Specularity, p.Roughness}
}

// AverageReflectance returns the mean of the three channel reflectances.
func (p Plastic) AverageReflectance() float64 {
	return (p.R + p.G + p.B) / 3
}

// ---------------------------------------------------------------------------
// Metal
// ---------------------------------------------------------------------------

// Metal is like Plastic except that light reflected specularly keeps the
// material color. Same 5-value parameter vector.
type Metal struct {
	Name        string
	R, G, B     float64
	Specularity float64
	Roughness   float64
}

// NewMetal validates the channel reflectances and returns a Metal.
func NewMetal(name string, r, g, b, specularity, roughness float64) (Metal, error) {
	err := checkUnit(name, []field{
		{"red reflectance", r},
		{"green reflectance", g},
		{"blue reflectance", b},
		{"specularity", specularity},
		{"roughness", roughness},
	})
	if err != nil {
		return Metal{}, err
	}
	return Metal{Name: name, R: r, G: g, B: b, Specularity: specularity, Roughness: roughness}, nil
}

func (m Metal) Identifier() string { return m.Name }
func (m Metal) Kind() string       { return "metal" }
func (m Metal) Opaque() bool       { return true }

func (m Metal) Params() []float64 {
	return []float64{m.R, m.G, m.B, m.Specularity, m.Roughness}
}

// ---------------------------------------------------------------------------
// Glass
// ---------------------------------------------------------------------------

// Glass is a transmissive glazing material. Its parameter vector holds the
// three channel transmissivities, plus the refraction index when one is
// set (RefractionIndex 0 means the renderer default).
type Glass struct {
	Name            string
	R, G, B         float64
	RefractionIndex float64
}

// NewGlass validates the channel transmissivities and returns a Glass.
func NewGlass(name string, r, g, b, refractionIndex float64) (Glass, error) {
	err := checkUnit(name, []field{
		{"red transmissivity", r},
		{"green transmissivity", g},
		{"blue transmissivity", b},
	})
	if err != nil {
		return Glass{}, err
	}
	if refractionIndex < 0 {
		return Glass{}, fmt.Errorf("modifier %q: refraction index must not be negative, got %g",
			name, refractionIndex)
	}
	return Glass{Name: name, R: r, G: g, B: b, RefractionIndex: refractionIndex}, nil
}

// GlassFromTransmissivity creates a neutral Glass with the same
// transmissivity on all three channels.
func GlassFromTransmissivity(name string, transmissivity float64) (Glass, error) {
	return NewGlass(name, transmissivity, transmissivity, transmissivity, 0)
}

// GlassFromTransmittance creates a neutral Glass from a measured
// transmittance value. Transmissivity is the amount of light not absorbed
// in one traversal of the pane; transmittance, the value usually measured,
// is the total light transmitted including multiple reflections.
func GlassFromTransmittance(name string, transmittance float64) (Glass, error) {
	t := Transmissivity(transmittance)
	return NewGlass(name, t, t, t, 0)
}

// Transmissivity converts a transmittance value to the transmissivity the
// renderer expects on a glass declaration.
func Transmissivity(transmittance float64) float64 {
	if transmittance == 0 {
		return 0
	}
	return (math.Sqrt(0.8402528435+0.0072522239*transmittance*transmittance) -
		0.9166530661) / 0.0036261119 / transmittance
}

func (g Glass) Identifier() string { return g.Name }
func (g Glass) Kind() string       { return "glass" }
func (g Glass) Opaque() bool       { return false }

func (g Glass) Params() []float64 {
	if g.RefractionIndex != 0 {
		return []float64{g.R, g.G, g.B, g.RefractionIndex}
	}
	return []float64{g.R, g.G, g.B}
}

// ---------------------------------------------------------------------------
// Trans
// ---------------------------------------------------------------------------

// Trans is a translucent diffuse material. Its parameter vector is
// [r, g, b, specularity, roughness, transmitted_diffuse, transmitted_specular].
type Trans struct {
	Name                string
	R, G, B             float64
	Specularity         float64
	Roughness           float64
	TransmittedDiffuse  float64
	TransmittedSpecular float64
}

// NewTrans validates all fractions and returns a Trans.
func NewTrans(name string, r, g, b, specularity, roughness, transDiff, transSpec float64) (Trans, error) {
	err := checkUnit(name, []field{
		{"red reflectance", r},
		{"green reflectance", g},
		{"blue reflectance", b},
		{"specularity", specularity},
		{"roughness", roughness},
		{"transmitted diffuse", transDiff},
		{"transmitted specular", transSpec},
	})
	if err != nil {
		return Trans{}, err
	}
	return Trans{
		Name: name, R: r, G: g, B: b,
		Specularity: specularity, Roughness: roughness,
		TransmittedDiffuse: transDiff, TransmittedSpecular: transSpec,
	}, nil
}

func (t Trans) Identifier() string { return t.Name }
func (t Trans) Kind() string       { return "trans" }
func (t Trans) Opaque() bool       { return false }

func (t Trans) Params() []float64 {
	return []float64{
		t.R, t.G, t.B, t.Specularity, t.Roughness,
		t.TransmittedDiffuse, t.TransmittedSpecular,
	}
}

// ---------------------------------------------------------------------------
// Mirror
// ---------------------------------------------------------------------------

// Mirror is a perfectly specular reflector with parameter vector
// [r_reflectance, g_reflectance, b_reflectance].
type Mirror struct {
	Name    string
	R, G, B float64
}

// NewMirror validates the channel reflectances and returns a Mirror.
func NewMirror(name string, r, g, b float64) (Mirror, error) {
	err := checkUnit(name, []field{
		{"red reflectance", r},
		{"green reflectance", g},
		{"blue reflectance", b},
	})
	if err != nil {
		return Mirror{}, err
	}
	return Mirror{Name: name, R: r, G: g, B: b}, nil
}

func (m Mirror) Identifier() string { return m.Name }
func (m Mirror) Kind() string       { return "mirror" }
func (m Mirror) Opaque() bool       { return true }

func (m Mirror) Params() []float64 {
	return []float64{m.R, m.G, m.B}
}

// ---------------------------------------------------------------------------
// Glow
// ---------------------------------------------------------------------------

// Glow is a self-luminous material whose emission falls off beyond
// MaxRadius. Its parameter vector is [r, g, b, max_radius]; emittance
// values have no upper bound.
type Glow struct {
	Name      string
	R, G, B   float64
	MaxRadius float64
}

// NewGlow validates that emittances are non-negative and returns a Glow.
func NewGlow(name string, r, g, b, maxRadius float64) (Glow, error) {
	err := checkNonNegative(name, []field{
		{"red emittance", r},
		{"green emittance", g},
		{"blue emittance", b},
	})
	if err != nil {
		return Glow{}, err
	}
	return Glow{Name: name, R: r, G: g, B: b, MaxRadius: maxRadius}, nil
}

func (g Glow) Identifier() string { return g.Name }
func (g Glow) Kind() string       { return "glow" }
func (g Glow) Opaque() bool       { return true }

func (g Glow) Params() []float64 {
	return []float64{g.R, g.G, g.B, g.MaxRadius}
}

// ---------------------------------------------------------------------------
// Light
// ---------------------------------------------------------------------------

// Light is the basic self-luminous material with parameter vector
// [r_emittance, g_emittance, b_emittance].
type Light struct {
	Name    string
	R, G, B float64
}

// NewLight validates that emittances are non-negative and returns a Light.
func NewLight(name string, r, g, b float64) (Light, error) {
	err := checkNonNegative(name, []field{
		{"red emittance", r},
		{"green emittance", g},
		{"blue emittance", b},
	})
	if err != nil {
		return Light{}, err
	}
	return Light{Name: name, R: r, G: g, B: b}, nil
}

func (l Light) Identifier() string { return l.Name }
func (l Light) Kind() string       { return "light" }
func (l Light) Opaque() bool       { return true }

func (l Light) Params() []float64 {
	return []float64{l.R, l.G, l.B}
}

// SameDefinition reports whether two modifiers carry the same name, kind
// and parameter vector. Used by the registry's dedupe logic.
func SameDefinition(a, b Modifier) bool {
	if a.Identifier() != b.Identifier() || a.Kind() != b.Kind() {
		return false
	}
	pa, pb := a.Params(), b.Params()
	if len(pa) != len(pb) {
		return false
	}
	for i := range pa {
		if pa[i] != pb[i] {
			return false
		}
	}
	return true
}
