package rawcodec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const defaultBufSize = 4096

// Reader is a buffered record reader. It tracks the first error; subsequent
// reads become no-ops, so a sequence of reads needs a single check at the end.
type Reader struct {
	r     io.Reader
	count int64 // total bytes read
	err   error // first error encountered.
	order binary.ByteOrder
	log   Logger
}

// NewReaderSize creates a new Reader with a specified buffer size.
func NewReaderSize(r io.Reader, size int) (*Reader, error) {
	if r == nil {
		return nil, ErrNilIO
	}

	switch reader := r.(type) {
	// Share the source of an outer Reader.
	case *Reader:
		return &Reader{r: reader.r, order: reader.order, log: reader.log}, nil

	// prevent unpredictable double-buffering.
	case *bufio.Reader:
		if reader.Size() >= size {
			return &Reader{r: reader, order: Order, log: noopLogger{}}, nil
		}
		return nil, ErrAlreadyBuffered

	// underlying is a buf so we don't need buffering
	case *BytesReader, *bytes.Reader, *bytes.Buffer:
		return &Reader{r: r, order: Order, log: noopLogger{}}, nil
	}

	if size < 16 {
		return nil, ErrSizeTooSmall
	}

	return &Reader{r: bufio.NewReaderSize(r, size), order: Order, log: noopLogger{}}, nil
}

// NewReader creates a new Reader with a default buffer size.
func NewReader(r io.Reader) (*Reader, error) {
	return NewReaderSize(r, defaultBufSize)
}

// WithByteOrder sets the order used by ReadRecord and returns r for chaining.
func (r *Reader) WithByteOrder(order binary.ByteOrder) *Reader {
	r.order = order
	return r
}

// WithLogger sets the logger told about the first error and returns r for chaining.
func (r *Reader) WithLogger(l Logger) *Reader {
	if l == nil {
		l = noopLogger{}
	}
	r.log = l
	return r
}

// Read implements the io.Reader interface.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	n, err := r.r.Read(p)
	r.count += int64(n)
	r.setError(err)
	return n, r.err
}

func (r *Reader) Count() int64 { return r.count }
func (r *Reader) Err() error   { return r.err }

// IsEOF reports whether the stream ended cleanly on a record boundary.
func (r *Reader) IsEOF() bool { return r.err == io.EOF }

// setError records the first non-nil error.
func (r *Reader) setError(err error) {
	if r.err == nil && err != nil {
		r.err = err
		if err != io.EOF {
			r.log.Debug("rawcodec: reader failed", "count", r.count, "err", err)
		}
	}
}

// Result returns the total bytes read and the final error state.
func (r *Reader) Result() (int64, error) {
	return r.count, r.err
}

// readFull reads exactly n bytes. Running out of data part way is reported
// as ErrOutOfRange; running out before the first byte as io.EOF.
func (r *Reader) readFull(n int) []byte {
	if r.err != nil {
		return nil
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(r.r, buf)
	r.count += int64(read)
	switch {
	case err == nil:
		return buf
	case err == io.ErrUnexpectedEOF:
		r.setError(fmt.Errorf("%w: wanted %d bytes, got %d: %w", ErrOutOfRange, n, read, err))
	default:
		r.setError(err)
	}
	return nil
}

// ReadBytes reads n bytes and returns a new byte slice.
func (r *Reader) ReadBytes(n int) []byte {
	if n <= 0 {
		return nil
	}
	return r.readFull(n)
}

// Discard skips n bytes.
func (r *Reader) Discard(n int64) {
	if r.err != nil {
		return
	}
	skipped, err := Discard(r.r, n)
	r.count += skipped
	r.setError(err)
}

// Align discards bytes until the count is a multiple of n.
func (r *Reader) Align(n int) {
	if err := checkAlignment(n); err != nil {
		r.setError(err)
		return
	}
	if n > 1 {
		r.Discard(Roundup(r.count, int64(n)) - r.count)
	}
}

// ReadRecord reads one record in the reader's byte order. On error it
// returns the zero value and the error is available from Err.
func ReadRecord[T any](r *Reader) T {
	var v T
	if r.err != nil {
		return v
	}
	c, err := codecWith[T](r.order)
	if err != nil {
		r.setError(err)
		return v
	}
	buf := r.readFull(c.Size())
	if r.err != nil {
		return v
	}
	v, err = c.Decode(buf, 0)
	r.setError(err)
	return v
}
