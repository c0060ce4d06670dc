package materials

import (
	"errors"
	"math/rand"
	"testing"
)

func TestLocationFromName(t *testing.T) {
	for _, loc := range All() {
		got, err := LocationFromName(string(loc))
		if err != nil {
			t.Fatalf("%q: %v", loc, err)
		}
		if got != loc {
			t.Fatalf("%q resolved to %q", loc, got)
		}
	}
}

func TestLocationFromName_IgnoresCaseAndPadding(t *testing.T) {
	got, err := LocationFromName("  Foo Mine ")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != FooMine {
		t.Fatalf("got %q, want %q", got, FooMine)
	}
}

func TestLocationFromName_Unknown(t *testing.T) {
	_, err := LocationFromName("moon base")
	var unknown *UnknownLocationError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want UnknownLocationError", err)
	}
	if unknown.Name != "moon base" {
		t.Fatalf("Name = %q", unknown.Name)
	}
}

func TestTitle(t *testing.T) {
	cases := map[Location]string{
		FooMine:      "Foo Mine",
		Cafeteria:    "Cafeteria",
		AssemblyLine: "Assembly Line",
	}
	for loc, want := range cases {
		if got := loc.Title(); got != want {
			t.Fatalf("%q.Title() = %q, want %q", loc, got, want)
		}
	}
}

func TestFromName(t *testing.T) {
	got, err := FromName("BAR")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != Bar {
		t.Fatalf("got %+v, want Bar", got)
	}
	if got.Source != BarMine {
		t.Fatalf("Source = %q", got.Source)
	}
}

func TestFromName_Unknown(t *testing.T) {
	_, err := FromName("baz")
	var unknown *UnknownMaterialError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want UnknownMaterialError", err)
	}
}

func TestExtractionSeconds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		if got := Foo.ExtractionSeconds(rng, 1, 10); got != 1 {
			t.Fatalf("foo extraction = %d, want 1", got)
		}
		got := Bar.ExtractionSeconds(rng, 3, 7)
		if got < 3 || got > 7 {
			t.Fatalf("bar extraction = %d, want within [3, 7]", got)
		}
	}
}
