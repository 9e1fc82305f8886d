// Package rad serializes assembled scenes to the Radiance scene
// description format: plain-text declarations of the form
//
//	<modifier> <kind> <name>
//	0
//	0
//	<N> <arg1> ... <argN>
//
// separated by single blank lines. Output is deterministic: the same
// scene always serializes to the same bytes.
package rad

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chazu/lumen/pkg/modifier"
	"github.com/chazu/lumen/pkg/scene"
)

// Writer controls output shape. The zero value produces the standard
// multi-line format without banners.
type Writer struct {
	// Banners emits a comment line at each section boundary.
	Banners bool
	// Minimal collapses each declaration onto a single line.
	Minimal bool
}

// Serialize renders the scene to a string.
func (w *Writer) Serialize(s *scene.Scene) (string, error) {
	var b strings.Builder
	if err := w.Write(&b, s); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Write renders the scene to out. Polygons whose modifier is not in the
// scene registry fail with the registry's NotFoundError; assembled
// scenes never trip this, hand-built ones can.
func (w *Writer) Write(out io.Writer, s *scene.Scene) error {
	section := ""
	first := true
	for _, e := range s.Entries {
		var decl string
		switch e.Kind {
		case scene.EntryModifier:
			decl = w.declaration("void", e.Modifier.Kind(), e.Modifier.Identifier(), e.Modifier.Params())
		case scene.EntryPolygon:
			if _, err := s.Registry.Resolve(e.ModifierName); err != nil {
				return fmt.Errorf("polygon %q: %w", e.Name, err)
			}
			decl = w.declaration(e.ModifierName, "polygon", e.Name, e.Polygon.Flattened())
		default:
			return fmt.Errorf("entry %q: unknown kind %d", e.Name, e.Kind)
		}

		if !first {
			if _, err := io.WriteString(out, "\n"); err != nil {
				return err
			}
		}
		if w.Banners && e.Section != section {
			section = e.Section
			banner := fmt.Sprintf("# ---- %s ----\n\n", section)
			if _, err := io.WriteString(out, banner); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(out, decl); err != nil {
			return err
		}
		first = false
	}
	return nil
}

// declaration renders one primitive. The two zero lines are the string
// and integer argument counts, unused by every primitive this package
// emits.
func (w *Writer) declaration(mod, kind, name string, args []float64) string {
	fields := make([]string, 0, len(args)+1)
	fields = append(fields, strconv.Itoa(len(args)))
	for _, v := range args {
		fields = append(fields, formatFloat(v))
	}
	argLine := strings.Join(fields, " ")

	if w.Minimal {
		return fmt.Sprintf("%s %s %s 0 0 %s\n", mod, kind, name, argLine)
	}
	return fmt.Sprintf("%s %s %s\n0\n0\n%s\n", mod, kind, name, argLine)
}

// formatFloat renders v with the shortest representation that parses
// back to the same float64.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// SerializeModifier renders a single modifier declaration, useful for
// material library files.
func SerializeModifier(m modifier.Modifier) string {
	var w Writer
	return w.declaration("void", m.Kind(), m.Identifier(), m.Params())
}
