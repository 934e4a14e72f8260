// Package sink writes fixture events into columnar container files and
// reads them back.
package sink

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pkg.jsn.cam/vecgen/pkg/fixture"
)

var (
	ErrUnknownFormat          = errors.New("unknown output format")
	ErrUnsupportedCompression = errors.New("compression not supported by format")
	ErrOpen                   = errors.New("failed to open output")
	ErrTreeNotFound           = errors.New("tree not found")
	ErrNotROOT                = errors.New("not a ROOT tree")
)

// Format selects the container written by a sink.
type Format string

const (
	FormatROOT    Format = "root"
	FormatParquet Format = "parquet"
	FormatArrow   Format = "arrow"
)

// Formats lists the supported formats.
var Formats = []Format{FormatROOT, FormatParquet, FormatArrow}

// ParseFormat validates a format name. An empty name selects ROOT.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatROOT, nil
	}
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, s)
}

// FormatFromPath guesses the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".root":
		return FormatROOT, nil
	case ".parquet", ".pq":
		return FormatParquet, nil
	case ".arrow", ".ipc", ".feather":
		return FormatArrow, nil
	}
	return "", fmt.Errorf("%w: cannot infer from %q", ErrUnknownFormat, path)
}

// Extension returns the conventional file extension for the format.
func (f Format) Extension() string {
	return "." + string(f)
}

// Compression names a codec. Each format maps it to its own implementation.
type Compression string

const (
	CompressionDefault Compression = ""
	CompressionNone    Compression = "none"
	CompressionZlib    Compression = "zlib"
	CompressionLZ4     Compression = "lz4"
	CompressionZstd    Compression = "zstd"
	CompressionLZMA    Compression = "lzma"
)

// Options tunes a sink. Zero values select each format's defaults.
type Options struct {
	Compression Compression

	// Title overrides the tree title (ROOT) or the title metadata entry.
	Title string

	// BasketSize is the ROOT basket buffer size in bytes.
	BasketSize int

	// BatchSize is the number of rows per Arrow record batch.
	BatchSize int
}

func (o Options) title() string {
	if o.Title == "" {
		return fixture.TreeTitle
	}
	return o.Title
}

// Create opens path for writing in the given format. Parent directories are
// created as needed. A file created here is removed again if the writer
// cannot be set up; whatever existed at path before is never removed.
func Create(format Format, path string, opts Options) (fixture.Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	var (
		w   fixture.Writer
		err error
	)
	switch format {
	case FormatROOT:
		w, err = createROOT(path, opts)
	case FormatParquet:
		w, err = createParquet(path, opts)
	case FormatArrow:
		w, err = createArrow(path, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// ReadAll reads every event of the fixture tree stored at path.
func ReadAll(format Format, path string) ([]fixture.Event, error) {
	switch format {
	case FormatROOT:
		return readROOT(path)
	case FormatParquet:
		return readParquet(path)
	case FormatArrow:
		return readArrow(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
}

func unsupported(format Format, c Compression) error {
	return fmt.Errorf("%w: %s does not support %s", ErrUnsupportedCompression, format, c)
}
