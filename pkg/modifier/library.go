package modifier

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// libraryEntry is one modifier record in a YAML library document.
type libraryEntry struct {
	Identifier string    `yaml:"identifier"`
	Kind       string    `yaml:"kind"`
	Params     []float64 `yaml:"params"`
}

// libraryDoc is the top-level YAML library document.
type libraryDoc struct {
	Modifiers []libraryEntry `yaml:"modifiers"`
}

// paramCounts maps each kind keyword to its accepted parameter counts.
var paramCounts = map[string][]int{
	"plastic": {5},
	"metal":   {5},
	"glass":   {3, 4},
	"trans":   {7},
	"mirror":  {3},
	"glow":    {4},
	"light":   {3},
}

// LoadLibrary parses a YAML document of modifier definitions into typed
// Modifier values, preserving document order. The document shape is:
//
//	modifiers:
//	  - identifier: generic_wall_0.50
//	    kind: plastic
//	    params: [0.5, 0.5, 0.5, 0, 0]
//
// Entries with unknown kinds or wrong parameter counts are rejected.
func LoadLibrary(data []byte) ([]Modifier, error) {
	var doc libraryDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("modifier library: %w", err)
	}

	mods := make([]Modifier, 0, len(doc.Modifiers))
	for i, e := range doc.Modifiers {
		m, err := entryToModifier(e)
		if err != nil {
			return nil, fmt.Errorf("modifier library entry %d: %w", i, err)
		}
		mods = append(mods, m)
	}
	return mods, nil
}

func entryToModifier(e libraryEntry) (Modifier, error) {
	if e.Identifier == "" {
		return nil, fmt.Errorf("missing identifier")
	}
	counts, ok := paramCounts[e.Kind]
	if !ok {
		return nil, fmt.Errorf("modifier %q: unknown kind %q", e.Identifier, e.Kind)
	}
	valid := false
	for _, c := range counts {
		if len(e.Params) == c {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("modifier %q: kind %s expects %v params, got %d",
			e.Identifier, e.Kind, counts, len(e.Params))
	}

	p := e.Params
	switch e.Kind {
	case "plastic":
		m, err := NewPlastic(e.Identifier, p[0], p[1], p[2], p[3], p[4])
		return m, err
	case "metal":
		m, err := NewMetal(e.Identifier, p[0], p[1], p[2], p[3], p[4])
		return m, err
	case "glass":
		refraction := 0.0
		if len(p) == 4 {
			refraction = p[3]
		}
		m, err := NewGlass(e.Identifier, p[0], p[1], p[2], refraction)
		return m, err
	case "trans":
		m, err := NewTrans(e.Identifier, p[0], p[1], p[2], p[3], p[4], p[5], p[6])
		return m, err
	case "mirror":
		m, err := NewMirror(e.Identifier, p[0], p[1], p[2])
		return m, err
	case "glow":
		m, err := NewGlow(e.Identifier, p[0], p[1], p[2], p[3])
		return m, err
	case "light":
		m, err := NewLight(e.Identifier, p[0], p[1], p[2])
		return m, err
	}
	return nil, fmt.Errorf("modifier %q: unknown kind %q", e.Identifier, e.Kind)
}
