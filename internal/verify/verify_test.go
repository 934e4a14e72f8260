package verify

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkg.jsn.cam/vecgen/pkg/fixture"
)

func generated(t *testing.T, seed uint32, n int64) []fixture.Event {
	t.Helper()
	events, err := fixture.Generate(context.Background(), &fixture.VectorGenerator{}, seed, n)
	require.NoError(t, err)
	return events
}

func TestCheck_StdVectorIsClean(t *testing.T) {
	events := generated(t, fixture.StdVectorSeed, fixture.StdVectorEntries)

	r := Check(events, Expectation{Entries: fixture.StdVectorEntries})

	assert.True(t, r.OK(), r.Violations)
	assert.NoError(t, r.Err())
	assert.Equal(t, int64(fixture.StdVectorEntries), r.Entries)
}

func TestCheck_Violations(t *testing.T) {
	tests := []struct {
		name   string
		events []fixture.Event
		expect Expectation
		entry  int64
	}{
		{
			name:   "entry count",
			events: []fixture.Event{{}},
			expect: Expectation{Entries: 10},
			entry:  -1,
		},
		{
			name: "length mismatch",
			events: []fixture.Event{{
				Px: []float32{1, 2}, Py: []float32{1}, Pz: []float32{2, 5}, Rand: []float32{.5, .5},
			}},
			expect: Expectation{Entries: -1},
			entry:  0,
		},
		{
			name: "pz identity",
			events: []fixture.Event{{}, {
				Px: []float32{1}, Py: []float32{2}, Pz: []float32{4}, Rand: []float32{.5},
			}},
			expect: Expectation{Entries: 2},
			entry:  1,
		},
		{
			name: "vrand range",
			events: []fixture.Event{{
				Px: []float32{1}, Py: []float32{2}, Pz: []float32{5}, Rand: []float32{0},
			}},
			expect: Expectation{Entries: 1},
			entry:  0,
		},
		{
			name: "vrand NaN",
			events: []fixture.Event{{
				Px: []float32{1}, Py: []float32{2}, Pz: []float32{5}, Rand: []float32{float32(math.NaN())},
			}},
			expect: Expectation{Entries: 1},
			entry:  0,
		},
		{
			name: "multiplicity",
			events: []fixture.Event{{
				Px:   make([]float32, fixture.MaxMultiplicity),
				Py:   make([]float32, fixture.MaxMultiplicity),
				Pz:   make([]float32, fixture.MaxMultiplicity),
				Rand: fill(fixture.MaxMultiplicity, .5),
			}},
			expect: Expectation{Entries: 1},
			entry:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Check(tt.events, tt.expect)

			require.Len(t, r.Violations, 1)
			assert.Equal(t, tt.entry, r.Violations[0].Entry)
			assert.ErrorIs(t, r.Err(), ErrVerification)
		})
	}
}

func fill(n int, v float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestCompare_SameSeedMatches(t *testing.T) {
	r := Compare(generated(t, 7, 30), generated(t, 7, 30))

	assert.NoError(t, r.Err())
}

func TestCompare_DifferentSeedDiffers(t *testing.T) {
	r := Compare(generated(t, 7, 30), generated(t, 8, 30))

	assert.ErrorIs(t, r.Err(), ErrVerification)
}

func TestCompare_NilEqualsEmpty(t *testing.T) {
	want := []fixture.Event{{}}
	got := []fixture.Event{{Px: []float32{}, Py: []float32{}, Pz: []float32{}, Rand: []float32{}}}

	assert.True(t, Compare(want, got).OK())
}

func TestCompare_CountMismatch(t *testing.T) {
	events := generated(t, 7, 3)

	r := Compare(events, events[:2])

	require.NotEmpty(t, r.Violations)
	assert.Equal(t, int64(-1), r.Violations[0].Entry)
}

func TestViolation_String(t *testing.T) {
	assert.Equal(t, "entry 3: bad", Violation{Entry: 3, Reason: "bad"}.String())
	assert.Equal(t, "bad", Violation{Entry: -1, Reason: "bad"}.String())
}
