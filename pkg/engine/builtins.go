package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/lumen/pkg/geometry"
	"github.com/chazu/lumen/pkg/model"
	"github.com/chazu/lumen/pkg/modifier"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms Lumen Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: box-room -> box_room
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpModifier wraps a modifier.Modifier so it can be passed between builtins.
type sexpModifier struct {
	mod modifier.Modifier
}

func (m *sexpModifier) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %q)", m.mod.Kind(), m.mod.Identifier())
}
func (m *sexpModifier) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a geometry.Vec.
type sexpVec3 struct {
	vec geometry.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpPolygon wraps a validated geometry.Polygon.
type sexpPolygon struct {
	poly geometry.Polygon
}

func (p *sexpPolygon) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(polygon %d-gon)", p.poly.NumPoints())
}
func (p *sexpPolygon) Type() *zygo.RegisteredType { return nil }

// sexpRoom wraps a room attached to the model under construction.
type sexpRoom struct {
	room *model.Room
}

func (r *sexpRoom) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(room %q)", r.room.Name)
}
func (r *sexpRoom) Type() *zygo.RegisteredType { return nil }

// sexpFace wraps one face of a room.
type sexpFace struct {
	face *model.Face
}

func (f *sexpFace) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(face %q)", f.face.Name)
}
func (f *sexpFace) Type() *zygo.RegisteredType { return nil }

// sexpAperture wraps an aperture embedded in a face.
type sexpAperture struct {
	ap *model.Aperture
}

func (a *sexpAperture) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(aperture %q)", a.ap.Name)
}
func (a *sexpAperture) Type() *zygo.RegisteredType { return nil }

// sexpShade wraps a shade, attached or not.
type sexpShade struct {
	shade *model.Shade
}

func (s *sexpShade) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(shade %q)", s.shade.Name)
}
func (s *sexpShade) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
// Keyword names are normalized to underscore form, so :max-radius and
// :max_radius address the same argument.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			name = strings.ReplaceAll(name, "-", "_")
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// float returns the keyword's numeric value, or fallback when absent.
func (a kwArgs) float(name string, fallback float64) (float64, error) {
	v, ok := a.kw[name]
	if !ok {
		return fallback, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// boolean returns the keyword's truth value, or fallback when absent.
func (a kwArgs) boolean(name string, fallback bool) (bool, error) {
	v, ok := a.kw[name]
	if !ok {
		return fallback, nil
	}
	if b, ok := v.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("%s: expected bool, got %T", name, v)
}

// mod returns the keyword's modifier value, or nil when absent.
func (a kwArgs) mod(name string) (modifier.Modifier, error) {
	v, ok := a.kw[name]
	if !ok {
		return nil, nil
	}
	sm, ok := v.(*sexpModifier)
	if !ok {
		return nil, fmt.Errorf("%s: expected modifier, got %T", name, v)
	}
	return sm.mod, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_back) and plain strings ("back").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toVec extracts a geometry.Vec from a sexpVec3.
func toVec(s zygo.Sexp) (geometry.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return geometry.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toPolygon extracts a geometry.Polygon from a sexpPolygon.
func toPolygon(s zygo.Sexp) (geometry.Polygon, error) {
	if p, ok := s.(*sexpPolygon); ok {
		return p.poly, nil
	}
	return geometry.Polygon{}, fmt.Errorf("expected polygon, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all Lumen DSL builtins into a zygomys
// environment. The builtins populate the provided model during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation
// so that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, m *model.Model) {

	// -----------------------------------------------------------------------
	// (building "TinyHouse")
	// -----------------------------------------------------------------------
	env.AddFunction("building", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("building: expected 1 argument, got %d", len(args))
		}
		s, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("building: %w", err)
		}
		m.Name = s
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (plastic "white-paint" :reflectance 0.7)
	// (plastic "red-paint" :r 0.6 :g 0.1 :b 0.1 :specularity 0 :roughness 0)
	// -----------------------------------------------------------------------
	opaque := func(fname string, build func(name string, r, g, b, spec, rough float64) (modifier.Modifier, error)) zygo.ZlispUserFunction {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			if len(pa.positional) != 1 {
				return zygo.SexpNull, fmt.Errorf("%s: expected a name argument", fname)
			}
			matName, err := toString(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fname, err)
			}

			refl, err := pa.float("reflectance", 0)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fname, err)
			}
			r, err := pa.float("r", refl)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fname, err)
			}
			g, err := pa.float("g", refl)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fname, err)
			}
			b, err := pa.float("b", refl)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fname, err)
			}
			spec, err := pa.float("specularity", 0)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fname, err)
			}
			rough, err := pa.float("roughness", 0)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fname, err)
			}

			mod, err := build(matName, r, g, b, spec, rough)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fname, err)
			}
			return &sexpModifier{mod: mod}, nil
		}
	}
	env.AddFunction("plastic", opaque("plastic", func(name string, r, g, b, spec, rough float64) (modifier.Modifier, error) {
		return modifier.NewPlastic(name, r, g, b, spec, rough)
	}))
	env.AddFunction("metal", opaque("metal", func(name string, r, g, b, spec, rough float64) (modifier.Modifier, error) {
		return modifier.NewMetal(name, r, g, b, spec, rough)
	}))

	// -----------------------------------------------------------------------
	// (glass "clear" :transmittance 0.6)
	// (glass "low-e" :transmissivity 0.55 :refraction 1.52)
	// -----------------------------------------------------------------------
	env.AddFunction("glass", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("glass: expected a name argument")
		}
		matName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("glass: %w", err)
		}

		_, hasTn := pa.kw["transmittance"]
		_, hasTs := pa.kw["transmissivity"]
		if hasTn == hasTs {
			return zygo.SexpNull, fmt.Errorf("glass: give exactly one of :transmittance or :transmissivity")
		}

		var mod modifier.Modifier
		if hasTn {
			tn, err := pa.float("transmittance", 0)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("glass: %w", err)
			}
			mod, err = modifier.GlassFromTransmittance(matName, tn)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("glass: %w", err)
			}
		} else {
			ts, err := pa.float("transmissivity", 0)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("glass: %w", err)
			}
			mod, err = modifier.GlassFromTransmissivity(matName, ts)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("glass: %w", err)
			}
		}
		if v, ok := pa.kw["refraction"]; ok {
			ri, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("glass: refraction: %w", err)
			}
			g := mod.(modifier.Glass)
			g.RefractionIndex = ri
			mod = g
		}
		return &sexpModifier{mod: mod}, nil
	})

	// -----------------------------------------------------------------------
	// (trans "curtain" :reflectance 0.5 :transmitted-diffuse 0.3
	//        :transmitted-specular 0)
	// -----------------------------------------------------------------------
	env.AddFunction("trans", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("trans: expected a name argument")
		}
		matName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("trans: %w", err)
		}
		refl, err := pa.float("reflectance", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("trans: %w", err)
		}
		r, err := pa.float("r", refl)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("trans: %w", err)
		}
		g, err := pa.float("g", refl)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("trans: %w", err)
		}
		b, err := pa.float("b", refl)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("trans: %w", err)
		}
		spec, err := pa.float("specularity", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("trans: %w", err)
		}
		rough, err := pa.float("roughness", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("trans: %w", err)
		}
		td, err := pa.float("transmitted_diffuse", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("trans: %w", err)
		}
		ts, err := pa.float("transmitted_specular", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("trans: %w", err)
		}
		mod, err := modifier.NewTrans(matName, r, g, b, spec, rough, td, ts)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("trans: %w", err)
		}
		return &sexpModifier{mod: mod}, nil
	})

	// -----------------------------------------------------------------------
	// (glow "sky" :r 1 :g 1 :b 1 :max-radius 0)
	// -----------------------------------------------------------------------
	env.AddFunction("glow", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("glow: expected a name argument")
		}
		matName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("glow: %w", err)
		}
		r, err := pa.float("r", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("glow: %w", err)
		}
		g, err := pa.float("g", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("glow: %w", err)
		}
		b, err := pa.float("b", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("glow: %w", err)
		}
		maxR, err := pa.float("max_radius", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("glow: %w", err)
		}
		mod, err := modifier.NewGlow(matName, r, g, b, maxR)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("glow: %w", err)
		}
		return &sexpModifier{mod: mod}, nil
	})

	// -----------------------------------------------------------------------
	// (mirror "polished" :r 0.9 :g 0.9 :b 0.9)
	// (light "lamp" :r 100 :g 100 :b 100)
	// -----------------------------------------------------------------------
	rgbOnly := func(fname string, build func(name string, r, g, b float64) (modifier.Modifier, error)) zygo.ZlispUserFunction {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			if len(pa.positional) != 1 {
				return zygo.SexpNull, fmt.Errorf("%s: expected a name argument", fname)
			}
			matName, err := toString(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fname, err)
			}
			r, err := pa.float("r", 0)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fname, err)
			}
			g, err := pa.float("g", 0)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fname, err)
			}
			b, err := pa.float("b", 0)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fname, err)
			}
			mod, err := build(matName, r, g, b)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fname, err)
			}
			return &sexpModifier{mod: mod}, nil
		}
	}
	env.AddFunction("mirror", rgbOnly("mirror", func(name string, r, g, b float64) (modifier.Modifier, error) {
		return modifier.NewMirror(name, r, g, b)
	}))
	env.AddFunction("light", rgbOnly("light", func(name string, r, g, b float64) (modifier.Modifier, error) {
		return modifier.NewLight(name, r, g, b)
	}))

	// -----------------------------------------------------------------------
	// (vec3 1 2.5 0)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3: expected 3 numbers, got %d arguments", len(args))
		}
		var coords [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %w", err)
			}
			coords[i] = f
		}
		return &sexpVec3{vec: geometry.Vec{X: coords[0], Y: coords[1], Z: coords[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (polygon (vec3 0 0 0) (vec3 1 0 0) (vec3 1 1 0) (vec3 0 1 0))
	// -----------------------------------------------------------------------
	env.AddFunction("polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pts := make([]geometry.Vec, 0, len(args))
		for _, a := range args {
			v, err := toVec(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("polygon: %w", err)
			}
			pts = append(pts, v)
		}
		poly, err := geometry.NewPolygon(pts)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polygon: %w", err)
		}
		return &sexpPolygon{poly: poly}, nil
	})

	// -----------------------------------------------------------------------
	// (box-room "Zone" :width 5 :depth 10 :height 3 :angle 0)
	// Adds the room to the model and returns it.
	// -----------------------------------------------------------------------
	env.AddFunction("box_room", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("box-room: expected a name argument")
		}
		roomName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box-room: %w", err)
		}
		width, err := pa.float("width", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box-room: %w", err)
		}
		depth, err := pa.float("depth", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box-room: %w", err)
		}
		height, err := pa.float("height", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box-room: %w", err)
		}
		angle, err := pa.float("angle", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box-room: %w", err)
		}
		room, err := model.BoxRoom(roomName, width, depth, height, angle)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box-room: %w", err)
		}
		m.AddRoom(room)
		return &sexpRoom{room: room}, nil
	})

	// -----------------------------------------------------------------------
	// (face room :back)  or  (face room "Zone_Back")
	// -----------------------------------------------------------------------
	env.AddFunction("face", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("face: expected room and face name, got %d arguments", len(args))
		}
		r, ok := args[0].(*sexpRoom)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("face: expected room, got %T", args[0])
		}
		faceName, err := toKeywordString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("face: %w", err)
		}
		for _, f := range r.room.Faces {
			if strings.EqualFold(f.Name, faceName) ||
				strings.EqualFold(f.Name, r.room.Name+"_"+faceName) {
				return &sexpFace{face: f}, nil
			}
		}
		return zygo.SexpNull, fmt.Errorf("face: room %q has no face %q", r.room.Name, faceName)
	})

	// -----------------------------------------------------------------------
	// (set-modifier target mod)
	// Works on faces, apertures and shades; returns the target.
	// -----------------------------------------------------------------------
	env.AddFunction("set_modifier", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("set-modifier: expected target and modifier, got %d arguments", len(args))
		}
		sm, ok := args[1].(*sexpModifier)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("set-modifier: expected modifier, got %T", args[1])
		}
		switch t := args[0].(type) {
		case *sexpFace:
			t.face.Modifier = sm.mod
		case *sexpAperture:
			t.ap.Modifier = sm.mod
		case *sexpShade:
			t.shade.Modifier = sm.mod
		default:
			return zygo.SexpNull, fmt.Errorf("set-modifier: cannot modify %T", args[0])
		}
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (aperture face :ratio 0.4 :modifier clear-glass)
	// -----------------------------------------------------------------------
	env.AddFunction("aperture", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("aperture: expected a face argument")
		}
		f, ok := pa.positional[0].(*sexpFace)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("aperture: expected face, got %T", pa.positional[0])
		}
		ratio, err := pa.float("ratio", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("aperture: %w", err)
		}
		ap, err := f.face.ApertureByRatio(ratio)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("aperture: %w", err)
		}
		mod, err := pa.mod("modifier")
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("aperture: %w", err)
		}
		ap.Modifier = mod
		return &sexpAperture{ap: ap}, nil
	})

	// -----------------------------------------------------------------------
	// (overhang ap :depth 0.5 :offset 0 :indoor true :modifier shelf)
	// Returns the aperture so calls can chain.
	// -----------------------------------------------------------------------
	env.AddFunction("overhang", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("overhang: expected an aperture argument")
		}
		a, ok := pa.positional[0].(*sexpAperture)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("overhang: expected aperture, got %T", pa.positional[0])
		}
		depth, err := pa.float("depth", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("overhang: %w", err)
		}
		if depth <= 0 {
			return zygo.SexpNull, fmt.Errorf("overhang: depth must be positive, got %g", depth)
		}
		offset, err := pa.float("offset", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("overhang: %w", err)
		}
		indoor, err := pa.boolean("indoor", false)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("overhang: %w", err)
		}
		mod, err := pa.mod("modifier")
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("overhang: %w", err)
		}
		a.ap.Overhangs = append(a.ap.Overhangs, model.OverhangSpec{
			Depth:    depth,
			Offset:   offset,
			Indoor:   indoor,
			Modifier: mod,
		})
		return a, nil
	})

	// -----------------------------------------------------------------------
	// (shade "TreeCanopy" poly :modifier bark)
	// Returns an unattached shade; attach with context, room-shade or nest.
	// -----------------------------------------------------------------------
	env.AddFunction("shade", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("shade: expected name and polygon arguments")
		}
		shadeName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shade: %w", err)
		}
		poly, err := toPolygon(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shade: %w", err)
		}
		mod, err := pa.mod("modifier")
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shade: %w", err)
		}
		return &sexpShade{shade: &model.Shade{Name: shadeName, Geometry: poly, Modifier: mod}}, nil
	})

	// -----------------------------------------------------------------------
	// (context tree fence ...)  attaches shades to the model.
	// -----------------------------------------------------------------------
	env.AddFunction("context", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		for _, a := range args {
			s, ok := a.(*sexpShade)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("context: expected shade, got %T", a)
			}
			m.AddShade(s.shade)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (room-shade room shelf)  attaches a shade to a room's interior.
	// -----------------------------------------------------------------------
	env.AddFunction("room_shade", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("room-shade: expected room and shade, got %d arguments", len(args))
		}
		r, ok := args[0].(*sexpRoom)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("room-shade: expected room, got %T", args[0])
		}
		s, ok := args[1].(*sexpShade)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("room-shade: expected shade, got %T", args[1])
		}
		r.room.AddShade(s.shade)
		return args[1], nil
	})

	// -----------------------------------------------------------------------
	// (nest parent child)  nests one shade under another.
	// -----------------------------------------------------------------------
	env.AddFunction("nest", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("nest: expected parent and child shades, got %d arguments", len(args))
		}
		parent, ok := args[0].(*sexpShade)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("nest: expected shade, got %T", args[0])
		}
		child, ok := args[1].(*sexpShade)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("nest: expected shade, got %T", args[1])
		}
		if parent.shade == child.shade {
			return zygo.SexpNull, fmt.Errorf("nest: shade %q cannot contain itself", parent.shade.Name)
		}
		parent.shade.Children = append(parent.shade.Children, child.shade)
		return args[0], nil
	})
}
