package fixture

import (
	"fmt"
	"maps"
	"slices"
)

// Canonical fixture parameters, as consumed by downstream reader tests.
const (
	StdVectorSeed    = 2072019
	StdVectorEntries = 10
)

// Registry maps generator names to generator factory functions.
// Factories let every run start from a fresh generator.
var Registry = map[string]func() Generator{
	"stdvector": func() Generator {
		return &VectorGenerator{
			Count: StdVectorEntries,
			Seed:  StdVectorSeed,
			Desc:  "Canonical std::vector<float> fixture: 10 entries, fixed seed",
		}
	},
	"hvector": func() Generator {
		return &VectorGenerator{
			Count: 20000,
			Desc:  "Tutorial-scale std::vector<float> tree: 20000 entries, fresh seed",
		}
	},
}

// Get returns a new generator by name
func Get(name string) (Generator, error) {
	factory, exists := Registry[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGenerator, name)
	}
	return factory(), nil
}

// List returns all available generator names, sorted
func List() []string {
	return slices.Sorted(maps.Keys(Registry))
}

// Register adds or replaces a generator factory.
func Register(name string, factory func() Generator) {
	Registry[name] = factory
}
