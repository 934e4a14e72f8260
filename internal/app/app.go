// Package app wires generators, sinks, the verifier and the catalog into the
// operations exposed by the vecgen command.
package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"pkg.jsn.cam/vecgen/internal/catalog"
	"pkg.jsn.cam/vecgen/internal/sink"
	"pkg.jsn.cam/vecgen/internal/verify"
	"pkg.jsn.cam/vecgen/pkg/fixture"
	"pkg.jsn.cam/vecgen/pkg/rng"
)

// DefaultOutputDir is where fixtures go when no output path is given.
const DefaultOutputDir = "var"

// App runs vecgen operations against a catalog.
type App struct {
	catalog catalog.Store
	logger  log.Logger
}

// New returns an App recording runs in store.
func New(store catalog.Store, logger log.Logger) *App {
	return &App{
		catalog: store,
		logger:  log.With(logger, "component", "app"),
	}
}

// GenerateRequest describes one fixture to write. Negative Seed or Entries
// select the generator's defaults; Seed 0 asks for a fresh seed.
type GenerateRequest struct {
	Generator   string
	Output      string
	Format      sink.Format
	Compression sink.Compression
	Seed        int64
	Entries     int64
	BasketSize  int
	Progress    fixture.Progress
}

// Generate writes a fixture file and records it in the catalog.
func (a *App) Generate(ctx context.Context, req GenerateRequest) (*catalog.Run, error) {
	gen, err := fixture.Get(req.Generator)
	if err != nil {
		return nil, err
	}

	if req.Seed > math.MaxUint32 {
		return nil, fmt.Errorf("seed %d does not fit in 32 bits", req.Seed)
	}
	seed := gen.DefaultSeed()
	if req.Seed >= 0 {
		seed = uint32(req.Seed)
	}
	entries := gen.DefaultCount()
	if req.Entries >= 0 {
		entries = req.Entries
	}

	format, output, err := resolveOutput(req.Generator, req.Format, req.Output)
	if err != nil {
		return nil, err
	}

	r := rng.New(seed)
	w, err := sink.Create(format, output, sink.Options{
		Compression: req.Compression,
		BasketSize:  req.BasketSize,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create %s: %w", output, err)
	}

	start := time.Now()
	written, fillErr := fixture.Fill(ctx, gen, r, entries, w, req.Progress)
	closeErr := w.Close()
	if err := errors.Join(fillErr, closeErr); err != nil {
		_ = os.Remove(output)
		level.Error(a.logger).Log("msg", "generation failed, output removed", "path", output, "written", written, "err", err)
		return nil, err
	}

	sum, size, err := catalog.Checksum(output)
	if err != nil {
		return nil, err
	}

	run := catalog.NewRun(req.Generator)
	run.Format = string(format)
	run.Compression = string(req.Compression)
	run.Path = output
	run.Seed = r.Seed()
	run.Entries = written
	run.Bytes = size
	run.Checksum = sum
	run.Duration = time.Since(start)

	// catalog errors are not fatal
	if err := a.catalog.SaveRun(run); err != nil {
		level.Warn(a.logger).Log("msg", "could not record run in catalog", "id", run.ID, "err", err)
	}

	level.Info(a.logger).Log(
		"msg", "fixture written",
		"id", run.ID,
		"generator", run.Generator,
		"format", run.Format,
		"path", run.Path,
		"seed", run.Seed,
		"entries", run.Entries,
		"bytes", run.Bytes,
		"checksum", catalog.FormatChecksum(run.Checksum),
		"duration", run.Duration,
	)
	return run, nil
}

func resolveOutput(generator string, format sink.Format, output string) (sink.Format, string, error) {
	var err error
	switch {
	case format != "":
		if format, err = sink.ParseFormat(string(format)); err != nil {
			return "", "", err
		}
	case output != "":
		if format, err = sink.FormatFromPath(output); err != nil {
			format = sink.FormatROOT
		}
	default:
		format = sink.FormatROOT
	}

	if output == "" {
		output = filepath.Join(DefaultOutputDir, generator+format.Extension())
	}
	return format, output, nil
}

// VerifyRequest selects a fixture file to check. With RunID set, Path,
// Format and Entries default to the recorded run and the file is also
// compared against a fresh regeneration from the recorded seed. A negative
// Entries skips the count check.
type VerifyRequest struct {
	Path    string
	Format  sink.Format
	Entries int64
	RunID   string
}

// Verify reads a fixture back and checks it. The report is returned even
// when verification fails; the error then wraps verify.ErrVerification.
func (a *App) Verify(ctx context.Context, req VerifyRequest) (*verify.Report, error) {
	var run *catalog.Run
	if req.RunID != "" {
		var err error
		if run, err = a.catalog.GetRun(req.RunID); err != nil {
			return nil, err
		}
		if err := run.CheckCompatible(); err != nil {
			return nil, err
		}
		if req.Path == "" {
			req.Path = run.Path
		}
		if req.Format == "" {
			req.Format = sink.Format(run.Format)
		}
		if req.Entries < 0 {
			req.Entries = run.Entries
		}
	}
	if req.Path == "" {
		return nil, errors.New("no fixture file given")
	}

	var (
		format sink.Format
		err    error
	)
	if req.Format == "" {
		format, err = sink.FormatFromPath(req.Path)
	} else {
		format, err = sink.ParseFormat(string(req.Format))
	}
	if err != nil {
		return nil, err
	}

	events, err := sink.ReadAll(format, req.Path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", req.Path, err)
	}

	report := verify.Check(events, verify.Expectation{Entries: req.Entries})

	if run != nil {
		gen, err := fixture.Get(run.Generator)
		if err != nil {
			return nil, err
		}
		want, err := fixture.Generate(ctx, gen, run.Seed, run.Entries)
		if err != nil {
			return nil, err
		}
		report.Violations = append(report.Violations, verify.Compare(want, events).Violations...)

		if sum, _, err := catalog.Checksum(req.Path); err == nil && sum != run.Checksum {
			report.Violations = append(report.Violations, verify.Violation{
				Entry: -1,
				Reason: fmt.Sprintf("checksum %s differs from recorded %s",
					catalog.FormatChecksum(sum), catalog.FormatChecksum(run.Checksum)),
			})
		}
	}

	logger := log.With(a.logger, "path", req.Path, "entries", report.Entries, "values", report.Values)
	if err := report.Err(); err != nil {
		level.Warn(logger).Log("msg", "fixture verification failed", "violations", len(report.Violations))
		return report, err
	}
	level.Info(logger).Log("msg", "fixture verified")
	return report, nil
}

// Inspection summarises a fixture file.
type Inspection struct {
	Path     string
	Format   sink.Format
	Bytes    int64
	Checksum uint64
	Tree     *sink.TreeInfo
	Values   int64
}

// Inspect reads the file's tree layout and counts its entries and values.
func (a *App) Inspect(path string) (*Inspection, error) {
	format, err := sink.FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	sum, size, err := catalog.Checksum(path)
	if err != nil {
		return nil, err
	}
	events, err := sink.ReadAll(format, path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	in := &Inspection{Path: path, Format: format, Bytes: size, Checksum: sum}
	for _, evt := range events {
		in.Values += int64(evt.Len())
	}

	if format == sink.FormatROOT {
		if in.Tree, err = sink.Describe(path); err != nil {
			return nil, err
		}
		return in, nil
	}

	in.Tree = &sink.TreeInfo{Name: fixture.TreeName, Entries: int64(len(events))}
	for _, name := range fixture.Branches {
		in.Tree.Branches = append(in.Tree.Branches, sink.BranchInfo{Name: name, Type: "float32[]"})
	}
	return in, nil
}

// ListRuns returns the recorded runs, newest first.
func (a *App) ListRuns() ([]*catalog.Run, error) {
	return a.catalog.LoadRuns()
}
