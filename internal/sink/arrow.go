package sink

import (
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"pkg.jsn.cam/vecgen/pkg/fixture"
)

const defaultBatchSize = 1024

func arrowSchema(title string) *arrow.Schema {
	fields := make([]arrow.Field, len(fixture.Branches))
	for i, name := range fixture.Branches {
		fields[i] = arrow.Field{Name: name, Type: arrow.ListOf(arrow.PrimitiveTypes.Float32)}
	}
	md := arrow.NewMetadata([]string{"tree", "title"}, []string{fixture.TreeName, title})
	return arrow.NewSchema(fields, &md)
}

// arrowWriter buffers rows in a record builder and flushes them as IPC
// record batches of BatchSize rows.
type arrowWriter struct {
	file      *os.File
	w         *ipc.FileWriter
	b         *array.RecordBuilder
	rows      int
	batchSize int
}

func createArrow(path string, opts Options) (*arrowWriter, error) {
	mem := memory.NewGoAllocator()
	schema := arrowSchema(opts.title())

	iopts := []ipc.Option{ipc.WithSchema(schema), ipc.WithAllocator(mem)}
	switch opts.Compression {
	case CompressionDefault, CompressionNone:
	case CompressionLZ4:
		iopts = append(iopts, ipc.WithLZ4())
	case CompressionZstd:
		iopts = append(iopts, ipc.WithZstd())
	default:
		return nil, unsupported(FormatArrow, opts.Compression)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	w, err := ipc.NewFileWriter(f, iopts...)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("%w: could not create arrow writer: %w", ErrOpen, err)
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return &arrowWriter{
		file:      f,
		w:         w,
		b:         array.NewRecordBuilder(mem, schema),
		batchSize: batchSize,
	}, nil
}

func (w *arrowWriter) Write(evt *fixture.Event) error {
	for i, values := range [][]float32{evt.Px, evt.Py, evt.Pz, evt.Rand} {
		lb := w.b.Field(i).(*array.ListBuilder)
		lb.Append(true)
		lb.ValueBuilder().(*array.Float32Builder).AppendValues(values, nil)
	}
	w.rows++

	if w.rows >= w.batchSize {
		return w.flush()
	}
	return nil
}

func (w *arrowWriter) flush() error {
	if w.rows == 0 {
		return nil
	}
	rec := w.b.NewRecord()
	defer rec.Release()
	w.rows = 0

	if err := w.w.Write(rec); err != nil {
		return fmt.Errorf("could not write record batch: %w", err)
	}
	return nil
}

func (w *arrowWriter) Close() error {
	defer w.b.Release()

	if err := w.flush(); err != nil {
		_ = w.w.Close()
		_ = w.file.Close()
		return err
	}
	if err := w.w.Close(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("could not close arrow writer: %w", err)
	}
	return w.file.Close()
}

func readArrow(path string) ([]fixture.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, fmt.Errorf("could not open arrow file: %w", err)
	}
	defer r.Close()

	var events []fixture.Event
	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.Record(i)
		if err != nil {
			return nil, fmt.Errorf("could not read record batch %d: %w", i, err)
		}
		if int(rec.NumCols()) != len(fixture.Branches) {
			return nil, fmt.Errorf("record batch %d has %d columns, want %d", i, rec.NumCols(), len(fixture.Branches))
		}

		cols := make([][]float32, len(fixture.Branches))
		lists := make([]*array.List, len(fixture.Branches))
		for j := range lists {
			l, ok := rec.Column(j).(*array.List)
			if !ok {
				return nil, fmt.Errorf("column %s is %s, want list<float32>", fixture.Branches[j], rec.Column(j).DataType())
			}
			values, ok := l.ListValues().(*array.Float32)
			if !ok {
				return nil, fmt.Errorf("column %s is %s, want list<float32>", fixture.Branches[j], l.DataType())
			}
			lists[j] = l
			cols[j] = values.Float32Values()
		}

		for row := 0; row < int(rec.NumRows()); row++ {
			values := make([][]float32, len(lists))
			for j, l := range lists {
				start, end := l.ValueOffsets(row)
				values[j] = append([]float32{}, cols[j][start:end]...)
			}
			events = append(events, fixture.Event{Px: values[0], Py: values[1], Pz: values[2], Rand: values[3]})
		}
	}

	return events, nil
}
