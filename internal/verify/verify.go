// Package verify checks generated fixtures against the properties their
// consumers rely on.
package verify

import (
	"errors"
	"fmt"
	"math"

	"pkg.jsn.cam/vecgen/pkg/fixture"
)

var ErrVerification = errors.New("fixture verification failed")

// Expectation configures Check. A negative Entries skips the count check.
type Expectation struct {
	Entries int64
}

// Violation is one failed property.
type Violation struct {
	// Entry is the record index, or -1 for file-level violations.
	Entry  int64
	Reason string
}

func (v Violation) String() string {
	if v.Entry < 0 {
		return v.Reason
	}
	return fmt.Sprintf("entry %d: %s", v.Entry, v.Reason)
}

// Report collects the outcome of a check.
type Report struct {
	Entries    int64
	Values     int64
	Violations []Violation
}

// OK reports whether no property was violated.
func (r *Report) OK() bool {
	return len(r.Violations) == 0
}

// Err returns nil when the report is clean, or an error wrapping
// ErrVerification that lists every violation.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, 0, len(r.Violations)+1)
	errs = append(errs, ErrVerification)
	for _, v := range r.Violations {
		errs = append(errs, errors.New(v.String()))
	}
	return errors.Join(errs...)
}

func (r *Report) addf(entry int64, format string, args ...any) {
	r.Violations = append(r.Violations, Violation{Entry: entry, Reason: fmt.Sprintf(format, args...)})
}

// Check validates events: the record count, equal sequence lengths within
// each record, the multiplicity bound, pz = px*px + py*py and vrand in (0, 1].
func Check(events []fixture.Event, expect Expectation) *Report {
	r := &Report{Entries: int64(len(events))}

	if expect.Entries >= 0 && r.Entries != expect.Entries {
		r.addf(-1, "found %d entries, want %d", r.Entries, expect.Entries)
	}

	for i, evt := range events {
		entry := int64(i)
		n := len(evt.Px)
		if len(evt.Py) != n || len(evt.Pz) != n || len(evt.Rand) != n {
			r.addf(entry, "sequence lengths differ: %s=%d %s=%d %s=%d %s=%d",
				fixture.BranchPx, n,
				fixture.BranchPy, len(evt.Py),
				fixture.BranchPz, len(evt.Pz),
				fixture.BranchRand, len(evt.Rand))
			continue
		}
		if n >= fixture.MaxMultiplicity {
			r.addf(entry, "multiplicity %d exceeds %d", n, fixture.MaxMultiplicity-1)
		}
		r.Values += int64(n)

		for j := 0; j < n; j++ {
			px, py := evt.Px[j], evt.Py[j]
			if want := float32(px*px) + float32(py*py); evt.Pz[j] != want {
				r.addf(entry, "%s[%d]=%v, want %v", fixture.BranchPz, j, evt.Pz[j], want)
			}
			if v := evt.Rand[j]; !(v > 0 && v <= 1) || math.IsNaN(float64(v)) {
				r.addf(entry, "%s[%d]=%v outside (0, 1]", fixture.BranchRand, j, v)
			}
		}
	}

	return r
}

// Compare reports every record where got differs from want value by value.
// Nil and empty sequences compare equal.
func Compare(want, got []fixture.Event) *Report {
	r := &Report{Entries: int64(len(got))}

	if len(want) != len(got) {
		r.addf(-1, "found %d entries, want %d", len(got), len(want))
	}

	for i := 0; i < min(len(want), len(got)); i++ {
		w, g := want[i], got[i]
		pairs := []struct {
			name      string
			want, got []float32
		}{
			{fixture.BranchPx, w.Px, g.Px},
			{fixture.BranchPy, w.Py, g.Py},
			{fixture.BranchPz, w.Pz, g.Pz},
			{fixture.BranchRand, w.Rand, g.Rand},
		}
		for _, p := range pairs {
			if j, ok := firstDifference(p.want, p.got); !ok {
				r.addf(int64(i), "%s differs at index %d", p.name, j)
			}
		}
		r.Values += int64(len(g.Px))
	}

	return r
}

func firstDifference(a, b []float32) (int, bool) {
	for i := 0; i < min(len(a), len(b)); i++ {
		if math.Float32bits(a[i]) != math.Float32bits(b[i]) {
			return i, false
		}
	}
	if len(a) != len(b) {
		return min(len(a), len(b)), false
	}
	return 0, true
}
