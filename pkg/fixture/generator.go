package fixture

import "pkg.jsn.cam/vecgen/pkg/rng"

// Generator produces fixture events for one named dataset.
type Generator interface {
	// Init attaches the random source. Generators never seed it themselves,
	// so the caller controls reproducibility.
	Init(r *rng.Random3)

	// Fill overwrites evt with the next record.
	Fill(evt *Event)

	// Description returns a human-readable description of the dataset
	Description() string

	// DefaultCount returns the suggested number of records
	DefaultCount() int64

	// DefaultSeed returns the seed used when none is given. Zero means a
	// fresh seed on every run.
	DefaultSeed() uint32
}

// MaxMultiplicity bounds the number of values per record (exclusive).
const MaxMultiplicity = 15

// VectorGenerator draws a multiplicity in [0, MaxMultiplicity) and that
// many (px, py, pz, rand) tuples per record, where (px, py) is a standard
// normal pair and pz = px*px + py*py.
type VectorGenerator struct {
	Count int64
	Seed  uint32
	Desc  string

	rand *rng.Random3
}

func (g *VectorGenerator) Init(r *rng.Random3) {
	g.rand = r
}

func (g *VectorGenerator) Fill(evt *Event) {
	evt.Reset()
	npx := int(g.rand.Rndm() * MaxMultiplicity)

	for j := 0; j < npx; j++ {
		px, py := g.rand.Rannor()
		// explicit conversions keep the products in single precision and
		// stop the compiler from fusing them into an FMA
		pz := float32(px*px) + float32(py*py)
		random := float32(g.rand.Rndm())

		evt.Px = append(evt.Px, px)
		evt.Py = append(evt.Py, py)
		evt.Pz = append(evt.Pz, pz)
		evt.Rand = append(evt.Rand, random)
	}
}

func (g *VectorGenerator) Description() string {
	return g.Desc
}

func (g *VectorGenerator) DefaultCount() int64 {
	return g.Count
}

func (g *VectorGenerator) DefaultSeed() uint32 {
	return g.Seed
}
