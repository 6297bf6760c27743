package rawcodec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
)

type flushWriter interface {
	io.Writer
	Flush() error
}

// bufferWriter lets a *bytes.Buffer stand in for a flushable writer.
type bufferWriter struct{ *bytes.Buffer }

func (bufferWriter) Flush() error { return nil }

// Writer is a buffered record writer. It tracks the first error that occurs;
// after an error every subsequent write is a no-op, so a sequence of writes
// needs a single check at the end.
type Writer struct {
	w     flushWriter
	count int64 // total bytes written
	err   error // first error encountered. Subsequent writes become no-ops.
	depth int
	order binary.ByteOrder
	log   Logger
}

// NewWriterSize creates a new Writer with a specified buffer size.
// It returns an error to prevent double-buffering, a common source of bugs.
func NewWriterSize(w io.Writer, size int) (*Writer, error) {
	if w == nil {
		return nil, ErrNilIO
	}

	switch bw := w.(type) {
	// Share the buffer of an outer Writer; only the outermost one flushes.
	case *Writer:
		return &Writer{w: bw.w, depth: bw.depth + 1, order: bw.order, log: bw.log}, nil

	// prevent unpredictable double-buffering.
	case *bufio.Writer:
		if bw.Size() >= size {
			return &Writer{w: bw, depth: 1, order: Order, log: noopLogger{}}, nil
		}
		return nil, ErrAlreadyBuffered

	// underlying is a buf so we don't need buffering
	case *BytesWriter:
		return &Writer{w: bw, order: Order, log: noopLogger{}}, nil
	case *bytes.Buffer:
		return &Writer{w: bufferWriter{bw}, order: Order, log: noopLogger{}}, nil
	}

	return &Writer{w: bufio.NewWriterSize(w, size), order: Order, log: noopLogger{}}, nil
}

// NewWriter creates a new Writer with a default buffer size.
func NewWriter(w io.Writer) (*Writer, error) {
	return NewWriterSize(w, 0)
}

// WithByteOrder sets the order used by WriteRecord and returns w for chaining.
func (w *Writer) WithByteOrder(order binary.ByteOrder) *Writer {
	w.order = order
	return w
}

// WithLogger sets the logger told about the first error and returns w for chaining.
func (w *Writer) WithLogger(l Logger) *Writer {
	if l == nil {
		l = noopLogger{}
	}
	w.log = l
	return w
}

// Write implements the io.Writer interface.
func (w *Writer) Write(buf []byte) (int, error) {
	if len(buf) == 0 || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(buf)
	w.count += int64(n)
	w.setError(err)
	return n, w.err
}

func (w *Writer) Count() int64 { return w.count }
func (w *Writer) Err() error   { return w.err }

// setError records the first non-nil error.
// This preserves the root cause of a failure chain instead of a later,
// less relevant error.
func (w *Writer) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
		w.log.Debug("rawcodec: writer failed", "count", w.count, "err", err)
	}
}

// Result flushes the buffer and returns the final count and error state.
func (w *Writer) Result() (int64, error) {
	w.Flush()
	return w.count, w.err
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	// Only the outermost writer flushes, so nested writers cannot
	// flush the shared buffer prematurely.
	if w.depth > 0 || w.err != nil {
		return w.err
	}
	err := w.w.Flush()
	w.setError(err)
	return err
}

// WriteFrom writes a value that knows how to encode itself, such as Fixed or Array.
func (w *Writer) WriteFrom(wt io.WriterTo) {
	if wt == nil || w.err != nil {
		return
	}
	n, err := wt.WriteTo(w.w)
	w.count += n
	w.setError(err)
}

// WriteZeros writes n zero bytes, often for padding.
func (w *Writer) WriteZeros(n int64) {
	if w.err != nil || n <= 0 {
		return
	}
	if n <= BUFFER_SIZE {
		w.Write(empty[:n])
	} else {
		_, err := io.CopyN(w, Zero, n)
		w.setError(err)
	}
}

// Align writes zero bytes until the count is a multiple of n.
func (w *Writer) Align(n int) {
	if err := checkAlignment(n); err != nil {
		w.setError(err)
		return
	}
	if n > 1 {
		w.WriteZeros(Roundup(w.count, int64(n)) - w.count)
	}
}

// WriteRecord writes the raw encoding of v in the writer's byte order.
func WriteRecord[T any](w *Writer, v T) {
	if w.err != nil {
		return
	}
	c, err := codecWith[T](w.order)
	if err != nil {
		w.setError(err)
		return
	}
	n, err := c.Write(w.w, v)
	w.count += int64(n)
	w.setError(err)
}
