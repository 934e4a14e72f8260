package sink

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"pkg.jsn.cam/vecgen/pkg/fixture"
)

// parquetRow mirrors fixture.Event with one repeated float column per branch.
type parquetRow struct {
	Px   []float32 `parquet:"vpx"`
	Py   []float32 `parquet:"vpy"`
	Pz   []float32 `parquet:"vpz"`
	Rand []float32 `parquet:"vrand"`
}

type parquetWriter struct {
	file *os.File
	w    *parquet.GenericWriter[parquetRow]
	row  [1]parquetRow
}

func createParquet(path string, opts Options) (*parquetWriter, error) {
	wopts := []parquet.WriterOption{
		parquet.KeyValueMetadata("tree", fixture.TreeName),
		parquet.KeyValueMetadata("title", opts.title()),
	}
	switch opts.Compression {
	case CompressionDefault:
	case CompressionNone:
		wopts = append(wopts, parquet.Compression(&parquet.Uncompressed))
	case CompressionZlib:
		wopts = append(wopts, parquet.Compression(&parquet.Gzip))
	case CompressionLZ4:
		wopts = append(wopts, parquet.Compression(&parquet.Lz4Raw))
	case CompressionZstd:
		wopts = append(wopts, parquet.Compression(&parquet.Zstd))
	default:
		return nil, unsupported(FormatParquet, opts.Compression)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	return &parquetWriter{
		file: f,
		w:    parquet.NewGenericWriter[parquetRow](f, wopts...),
	}, nil
}

func (w *parquetWriter) Write(evt *fixture.Event) error {
	w.row[0] = parquetRow{Px: evt.Px, Py: evt.Py, Pz: evt.Pz, Rand: evt.Rand}
	_, err := w.w.Write(w.row[:])
	w.row[0] = parquetRow{}
	return err
}

func (w *parquetWriter) Close() error {
	if err := w.w.Close(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("could not close parquet writer: %w", err)
	}
	return w.file.Close()
}

func readParquet(path string) ([]fixture.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := parquet.NewGenericReader[parquetRow](f)
	defer r.Close()

	events := make([]fixture.Event, 0, r.NumRows())
	rows := make([]parquetRow, 128)
	for {
		n, err := r.Read(rows)
		for _, row := range rows[:n] {
			// the reader reuses row buffers between calls
			evt := fixture.Event{Px: row.Px, Py: row.Py, Pz: row.Pz, Rand: row.Rand}
			events = append(events, evt.Clone())
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not read parquet rows: %w", err)
		}
	}

	return events, nil
}
