package fixture

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkg.jsn.cam/vecgen/pkg/rng"
)

func TestGet_UnknownGenerator(t *testing.T) {
	_, err := Get("nope")

	assert.ErrorIs(t, err, ErrUnknownGenerator)
}

func TestList_Sorted(t *testing.T) {
	assert.Equal(t, []string{"hvector", "stdvector"}, List())
}

func TestRegister_AddsFactory(t *testing.T) {
	Register("tiny", func() Generator { return &VectorGenerator{Count: 2, Seed: 7} })
	defer delete(Registry, "tiny")

	gen, err := Get("tiny")
	require.NoError(t, err)
	assert.Equal(t, int64(2), gen.DefaultCount())
	assert.Equal(t, uint32(7), gen.DefaultSeed())
}

func TestStdVector_Defaults(t *testing.T) {
	gen, err := Get("stdvector")
	require.NoError(t, err)

	assert.Equal(t, int64(StdVectorEntries), gen.DefaultCount())
	assert.Equal(t, uint32(StdVectorSeed), gen.DefaultSeed())
	assert.NotEmpty(t, gen.Description())
}

func TestGenerate_StdVectorProperties(t *testing.T) {
	gen, err := Get("stdvector")
	require.NoError(t, err)

	events, err := Generate(context.Background(), gen, StdVectorSeed, StdVectorEntries)
	require.NoError(t, err)
	require.Len(t, events, StdVectorEntries)

	for i, evt := range events {
		n := evt.Len()
		assert.Lessf(t, n, MaxMultiplicity, "entry %d", i)
		require.Lenf(t, evt.Py, n, "entry %d", i)
		require.Lenf(t, evt.Pz, n, "entry %d", i)
		require.Lenf(t, evt.Rand, n, "entry %d", i)
		for j := 0; j < n; j++ {
			assert.Equal(t, float32(evt.Px[j]*evt.Px[j])+float32(evt.Py[j]*evt.Py[j]), evt.Pz[j])
			assert.Greater(t, evt.Rand[j], float32(0))
			assert.LessOrEqual(t, evt.Rand[j], float32(1))
		}
	}
}

func TestGenerate_Reproducible(t *testing.T) {
	ctx := context.Background()
	first, err := Generate(ctx, &VectorGenerator{}, StdVectorSeed, 50)
	require.NoError(t, err)
	second, err := Generate(ctx, &VectorGenerator{}, StdVectorSeed, 50)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	other, err := Generate(ctx, &VectorGenerator{}, StdVectorSeed+1, 50)
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestGenerate_FirstMultiplicityFollowsFirstDraw(t *testing.T) {
	want := int(rng.New(StdVectorSeed).Rndm() * MaxMultiplicity)

	events, err := Generate(context.Background(), &VectorGenerator{}, StdVectorSeed, 1)
	require.NoError(t, err)

	assert.Equal(t, want, events[0].Len())
}

func TestFill_ZeroEntries(t *testing.T) {
	var c Collector
	n, err := Fill(context.Background(), &VectorGenerator{}, rng.New(1), 0, &c, nil)

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, c.Events)
}

func TestFill_NegativeCount(t *testing.T) {
	var c Collector
	_, err := Fill(context.Background(), &VectorGenerator{}, rng.New(1), -1, &c, nil)

	assert.ErrorIs(t, err, ErrInvalidCount)
}

func TestFill_ReportsProgress(t *testing.T) {
	var c Collector
	var seen []int64

	_, err := Fill(context.Background(), &VectorGenerator{}, rng.New(1), 3, &c, func(done int64) {
		seen = append(seen, done)
	})

	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, seen)
}

func TestFill_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var c Collector

	n, err := Fill(ctx, &VectorGenerator{}, rng.New(1), 100, &c, func(done int64) {
		if done == 5 {
			cancel()
		}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(5), n)
	assert.Len(t, c.Events, 5)
}

type failingWriter struct{ after int }

func (w *failingWriter) Write(*Event) error {
	if w.after == 0 {
		return errors.New("disk full")
	}
	w.after--
	return nil
}

func (w *failingWriter) Close() error { return nil }

func TestFill_PropagatesWriteError(t *testing.T) {
	n, err := Fill(context.Background(), &VectorGenerator{}, rng.New(1), 10, &failingWriter{after: 2}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry 2")
	assert.Equal(t, int64(2), n)
}

func TestEvent_CloneIsIndependent(t *testing.T) {
	evt := Event{Px: []float32{1}, Py: []float32{2}, Pz: []float32{5}, Rand: []float32{0.5}}

	c := evt.Clone()
	evt.Px[0] = 9

	assert.Equal(t, float32(1), c.Px[0])
}
