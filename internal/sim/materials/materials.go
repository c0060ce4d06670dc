package materials

import (
	"fmt"
	"math/rand"
	"strings"
)

// Location is one of the fixed places of the factory floor. The canonical
// form is the lowercase name; Title() is the display form.
type Location string

const (
	Cafeteria     Location = "cafeteria"
	FooMine       Location = "foo mine"
	BarMine       Location = "bar mine"
	AssemblyLine  Location = "assembly line"
	MaterialStore Location = "material store"
	RobotsStore   Location = "robots store"
	OnMyWay       Location = "on my way"
)

// All lists every location in floor order. OnMyWay is last: robots are only
// there transiently while moving.
func All() []Location {
	return []Location{
		Cafeteria,
		FooMine,
		BarMine,
		AssemblyLine,
		MaterialStore,
		RobotsStore,
		OnMyWay,
	}
}

type UnknownLocationError struct {
	Name string
}

func (e *UnknownLocationError) Error() string {
	return fmt.Sprintf("unknown location %q", e.Name)
}

// LocationFromName resolves a user-supplied location name, case-insensitively.
func LocationFromName(name string) (Location, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, loc := range All() {
		if string(loc) == want {
			return loc, nil
		}
	}
	return "", &UnknownLocationError{Name: name}
}

// Title returns the display form of a location ("foo mine" -> "Foo Mine").
func (l Location) Title() string {
	words := strings.Fields(string(l))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Material is a raw resource together with the mine it comes from.
type Material struct {
	Name   string
	Source Location
}

var (
	Foo = Material{Name: "foo", Source: FooMine}
	Bar = Material{Name: "bar", Source: BarMine}
)

type UnknownMaterialError struct {
	Name string
}

func (e *UnknownMaterialError) Error() string {
	return fmt.Sprintf("unknown material %q", e.Name)
}

// FromName resolves a material by name, case-insensitively.
func FromName(name string) (Material, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Foo.Name:
		return Foo, nil
	case Bar.Name:
		return Bar, nil
	}
	return Material{}, &UnknownMaterialError{Name: name}
}

// Extraction time for a foo is fixed; a bar's is rolled when mining starts.
const fooExtractionSeconds = 1

// ExtractionSeconds resolves the concrete duration of one extraction.
// For bars the duration is drawn uniformly from [barMin, barMax] at call
// time, so two mining runs under the same settings may take different
// numbers of ticks.
func (m Material) ExtractionSeconds(rng *rand.Rand, barMin, barMax int) int {
	if m == Bar {
		return barMin + rng.Intn(barMax-barMin+1)
	}
	return fooExtractionSeconds
}
