package knowledge

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

// Archetype is a presentation style with its recommended slide-type sequence.
type Archetype struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Sequence    []string `yaml:"sequence" json:"sequence"`
}

// SlideTypeInfo describes one slide type for template listings.
type SlideTypeInfo struct {
	Type           string   `json:"type"`
	RequiredFields []string `json:"requiredFields"`
	Seconds        int      `json:"seconds"`
}

// Catalog is the template listing served to editors.
type Catalog struct {
	Archetypes []Archetype     `json:"archetypes"`
	SlideTypes []SlideTypeInfo `json:"slideTypes"`
}

var archetypes = mustLoadArchetypes(templatesYAML)

func mustLoadArchetypes(data []byte) []Archetype {
	out, err := ParseArchetypes(data)
	if err != nil {
		panic(err)
	}
	return out
}

// ParseArchetypes decodes an archetype YAML document.
func ParseArchetypes(data []byte) ([]Archetype, error) {
	var doc struct {
		Archetypes []Archetype `yaml:"archetypes"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing archetypes: %w", err)
	}
	for i, a := range doc.Archetypes {
		if a.ID == "" {
			return nil, fmt.Errorf("archetype %d has no id", i)
		}
		if len(a.Sequence) == 0 {
			return nil, fmt.Errorf("archetype %q has an empty sequence", a.ID)
		}
	}
	return doc.Archetypes, nil
}

// Archetypes returns a copy of the embedded archetypes in file order.
func Archetypes() []Archetype {
	out := make([]Archetype, len(archetypes))
	copy(out, archetypes)
	return out
}

// LookupArchetype finds an archetype by id.
func LookupArchetype(id string) (Archetype, bool) {
	for _, a := range archetypes {
		if a.ID == id {
			return a, true
		}
	}
	return Archetype{}, false
}

// TemplateCatalog lists archetypes plus every slide type with a timing entry,
// sorted by type name.
func TemplateCatalog() Catalog {
	types := make([]string, 0, len(SlideTiming))
	for t := range SlideTiming {
		if t == "default" {
			continue
		}
		types = append(types, t)
	}
	sort.Strings(types)

	infos := make([]SlideTypeInfo, 0, len(types))
	for _, t := range types {
		required := RequiredFields[t]
		if required == nil {
			required = []string{}
		}
		infos = append(infos, SlideTypeInfo{Type: t, RequiredFields: required, Seconds: SlideTiming[t]})
	}
	return Catalog{Archetypes: Archetypes(), SlideTypes: infos}
}
