package sink

import (
	"compress/flate"
	"fmt"
	"os"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rtree"

	"pkg.jsn.cam/vecgen/pkg/fixture"
)

// rootWriter fills a TTree with one std::vector<float> branch per sequence.
type rootWriter struct {
	file *groot.File
	tree rtree.Writer
	evt  fixture.Event
}

func createROOT(path string, opts Options) (*rootWriter, error) {
	wopts := []rtree.WriteOption{rtree.WithTitle(opts.title())}
	if opts.BasketSize > 0 {
		wopts = append(wopts, rtree.WithBasketSize(opts.BasketSize))
	}
	switch opts.Compression {
	case CompressionDefault:
	case CompressionNone:
		wopts = append(wopts, rtree.WithoutCompression())
	case CompressionZlib:
		wopts = append(wopts, rtree.WithZlib(flate.DefaultCompression))
	case CompressionLZ4:
		wopts = append(wopts, rtree.WithLZ4(flate.DefaultCompression))
	case CompressionZstd:
		wopts = append(wopts, rtree.WithZstd(flate.DefaultCompression))
	case CompressionLZMA:
		wopts = append(wopts, rtree.WithLZMA(flate.DefaultCompression))
	default:
		return nil, unsupported(FormatROOT, opts.Compression)
	}

	f, err := groot.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	w := &rootWriter{file: f}
	wvars := []rtree.WriteVar{
		{Name: fixture.BranchPx, Value: &w.evt.Px},
		{Name: fixture.BranchPy, Value: &w.evt.Py},
		{Name: fixture.BranchPz, Value: &w.evt.Pz},
		{Name: fixture.BranchRand, Value: &w.evt.Rand},
	}
	w.tree, err = rtree.NewWriter(f, fixture.TreeName, wvars, wopts...)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("%w: could not create tree %q: %w", ErrOpen, fixture.TreeName, err)
	}

	return w, nil
}

func (w *rootWriter) Write(evt *fixture.Event) error {
	w.evt.Px = append(w.evt.Px[:0], evt.Px...)
	w.evt.Py = append(w.evt.Py[:0], evt.Py...)
	w.evt.Pz = append(w.evt.Pz[:0], evt.Pz...)
	w.evt.Rand = append(w.evt.Rand[:0], evt.Rand...)

	_, err := w.tree.Write()
	return err
}

func (w *rootWriter) Close() error {
	if err := w.tree.Close(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("could not close tree: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("could not close ROOT file: %w", err)
	}
	return nil
}

func openTree(path string) (*groot.File, rtree.Tree, error) {
	f, err := groot.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open ROOT file: %w", err)
	}

	obj, err := f.Get(fixture.TreeName)
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("%w: %s in %s: %w", ErrTreeNotFound, fixture.TreeName, path, err)
	}

	tree, ok := obj.(rtree.Tree)
	if !ok {
		_ = f.Close()
		return nil, nil, fmt.Errorf("%w: %s is a %s", ErrNotROOT, fixture.TreeName, obj.Class())
	}

	return f, tree, nil
}

func readROOT(path string) ([]fixture.Event, error) {
	f, tree, err := openTree(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var evt fixture.Event
	rvars := []rtree.ReadVar{
		{Name: fixture.BranchPx, Value: &evt.Px},
		{Name: fixture.BranchPy, Value: &evt.Py},
		{Name: fixture.BranchPz, Value: &evt.Pz},
		{Name: fixture.BranchRand, Value: &evt.Rand},
	}
	r, err := rtree.NewReader(tree, rvars)
	if err != nil {
		return nil, fmt.Errorf("could not create tree reader: %w", err)
	}
	defer r.Close()

	events := make([]fixture.Event, 0, tree.Entries())
	err = r.Read(func(ctx rtree.RCtx) error {
		events = append(events, evt.Clone())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not read tree: %w", err)
	}

	return events, nil
}

// TreeInfo summarises the fixture tree of a ROOT file.
type TreeInfo struct {
	Name     string
	Title    string
	Entries  int64
	Branches []BranchInfo
}

// BranchInfo describes one top-level branch and its leaf type.
type BranchInfo struct {
	Name  string
	Title string
	Class string
	Type  string
}

// Describe reads the fixture tree metadata of the ROOT file at path.
func Describe(path string) (*TreeInfo, error) {
	f, tree, err := openTree(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info := &TreeInfo{
		Name:    tree.Name(),
		Title:   tree.Title(),
		Entries: tree.Entries(),
	}
	for _, b := range tree.Branches() {
		bi := BranchInfo{
			Name:  b.Name(),
			Title: b.Title(),
			Class: b.Class(),
		}
		if leaves := b.Leaves(); len(leaves) > 0 {
			bi.Type = leaves[0].TypeName()
		}
		info.Branches = append(info.Branches, bi)
	}

	return info, nil
}
