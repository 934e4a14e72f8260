package fixture

import (
	"context"
	"fmt"

	"pkg.jsn.cam/vecgen/pkg/rng"
)

// Progress is called after each committed record with the number of
// records written so far.
type Progress func(done int64)

// Fill seeds gen with r and writes n records to w. It stops early when ctx
// is cancelled and returns the number of records written. Fill does not
// close w.
func Fill(ctx context.Context, gen Generator, r *rng.Random3, n int64, w Writer, progress Progress) (int64, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}
	gen.Init(r)

	var evt Event
	for i := int64(0); i < n; i++ {
		if err := ctx.Err(); err != nil {
			return i, err
		}

		gen.Fill(&evt)
		if err := w.Write(&evt); err != nil {
			return i, fmt.Errorf("failed to write entry %d: %w", i, err)
		}

		if progress != nil {
			progress(i + 1)
		}
	}

	return n, nil
}

// Collector is a Writer that keeps copies of every event in memory.
type Collector struct {
	Events []Event
}

func (c *Collector) Write(evt *Event) error {
	c.Events = append(c.Events, evt.Clone())
	return nil
}

func (c *Collector) Close() error {
	return nil
}

// Generate runs gen with the given seed and returns all events in memory.
func Generate(ctx context.Context, gen Generator, seed uint32, n int64) ([]Event, error) {
	var c Collector
	if _, err := Fill(ctx, gen, rng.New(seed), n, &c, nil); err != nil {
		return nil, err
	}
	return c.Events, nil
}
