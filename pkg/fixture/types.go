package fixture

// Tree layout shared by every generator and output format.
const (
	TreeName  = "tvec"
	TreeTitle = "Tree with vectors"

	BranchPx   = "vpx"
	BranchPy   = "vpy"
	BranchPz   = "vpz"
	BranchRand = "vrand"
)

// Branches lists the branch names in write order.
var Branches = []string{BranchPx, BranchPy, BranchPz, BranchRand}

// Event is one record of the tvec tree. The four slices always have the
// same length; Pz holds Px*Px + Py*Py and Rand an independent uniform draw.
type Event struct {
	Px   []float32 `json:"vpx"`
	Py   []float32 `json:"vpy"`
	Pz   []float32 `json:"vpz"`
	Rand []float32 `json:"vrand"`
}

// Reset empties the event, keeping the backing arrays for reuse.
func (e *Event) Reset() {
	e.Px = e.Px[:0]
	e.Py = e.Py[:0]
	e.Pz = e.Pz[:0]
	e.Rand = e.Rand[:0]
}

// Len returns the multiplicity of the event.
func (e *Event) Len() int {
	return len(e.Px)
}

// Clone returns a deep copy that does not share memory with e.
func (e *Event) Clone() Event {
	return Event{
		Px:   append([]float32{}, e.Px...),
		Py:   append([]float32{}, e.Py...),
		Pz:   append([]float32{}, e.Pz...),
		Rand: append([]float32{}, e.Rand...),
	}
}

// Writer consumes events. Implementations must not retain the event
// after Write returns; the caller reuses it.
type Writer interface {
	Write(evt *Event) error
	Close() error
}
