package rawcodec

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Write writes exactly Size bytes holding v to w.
func (c *RecordCodec[T]) Write(w io.Writer, v T) (int, error) {
	if w == nil {
		return 0, ErrNilIO
	}
	size := c.layout.size
	if size == 0 {
		return 0, nil
	}
	p := getScratch(size)
	defer putScratch(p)
	if err := c.encode(*p, &v); err != nil {
		return 0, err
	}
	n, err := w.Write(*p)
	if err != nil {
		return n, err
	}
	if n < size {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// Read reads exactly Size bytes from r and decodes them. A stream that ends
// cleanly before the record yields io.EOF; one that ends inside the record
// yields an error matching both ErrOutOfRange and io.ErrUnexpectedEOF.
func (c *RecordCodec[T]) Read(r io.Reader) (T, error) {
	v, _, err := c.readFrom(r)
	return v, err
}

func (c *RecordCodec[T]) readFrom(r io.Reader) (T, int, error) {
	var v T
	if r == nil {
		return v, 0, ErrNilIO
	}
	size := c.layout.size
	if size == 0 {
		return v, 0, nil
	}
	p := getScratch(size)
	defer putScratch(p)
	n, err := io.ReadFull(r, *p)
	switch {
	case err == io.ErrUnexpectedEOF:
		return v, n, fmt.Errorf("%w: %s got %d of %d bytes: %w", ErrOutOfRange, c.layout.typ, n, size, err)
	case err != nil:
		return v, n, err
	}
	v, err = c.Decode(*p, 0)
	return v, n, err
}

// ReadAt decodes the record stored at off in r, the stream analogue of
// Decode(buf, offset).
func (c *RecordCodec[T]) ReadAt(r io.ReaderAt, off int64) (T, error) {
	var v T
	if r == nil {
		return v, ErrNilIO
	}
	if off < 0 {
		return v, fmt.Errorf("%w: negative offset %d", ErrOutOfRange, off)
	}
	size := c.layout.size
	if size == 0 {
		return v, nil
	}
	p := getScratch(size)
	defer putScratch(p)
	n, err := r.ReadAt(*p, off)
	if n == size {
		// io.ReaderAt may report io.EOF together with the final bytes.
		return c.Decode(*p, 0)
	}
	if err == nil || err == io.EOF {
		return v, fmt.Errorf("%w: %s at offset %d got %d of %d bytes: %w",
			ErrOutOfRange, c.layout.typ, off, n, size, io.ErrUnexpectedEOF)
	}
	return v, err
}

// WriteAt writes the encoding of v at off in w.
func (c *RecordCodec[T]) WriteAt(w io.WriterAt, off int64, v T) (int, error) {
	if w == nil {
		return 0, ErrNilIO
	}
	size := c.layout.size
	if size == 0 {
		return 0, nil
	}
	p := getScratch(size)
	defer putScratch(p)
	if err := c.encode(*p, &v); err != nil {
		return 0, err
	}
	return w.WriteAt(*p, off)
}

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

// WriteContext is Write with cancellation. ctx is checked before any byte is
// written; streams with write deadlines, such as net.Conn, additionally get
// ctx's deadline and are interrupted when ctx is cancelled.
//
// If ctx carries a deadline it replaces the stream's write deadline for the
// call and the stream is left with no deadline afterwards. Otherwise a
// deadline set by the caller stays in place.
func (c *RecordCodec[T]) WriteContext(ctx context.Context, w io.Writer, v T) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if d, ok := w.(writeDeadliner); ok {
		defer bindDeadline(ctx, d.SetWriteDeadline)()
	}
	n, err := c.Write(w, v)
	if err != nil && ctx.Err() != nil {
		return n, fmt.Errorf("%w: %w", ctx.Err(), err)
	}
	return n, err
}

// ReadContext is Read with cancellation. Deadlines are handled as in
// WriteContext, using the stream's read deadline.
func (c *RecordCodec[T]) ReadContext(ctx context.Context, r io.Reader) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	if d, ok := r.(readDeadliner); ok {
		defer bindDeadline(ctx, d.SetReadDeadline)()
	}
	v, err := c.Read(r)
	if err != nil && ctx.Err() != nil {
		return v, fmt.Errorf("%w: %w", ctx.Err(), err)
	}
	return v, err
}

// aLongTimeAgo is a deadline in the past, which unblocks pending I/O at once.
var aLongTimeAgo = time.Unix(1, 0)

// bindDeadline forwards ctx's deadline and cancellation to an I/O primitive.
// The returned func detaches ctx. A deadline taken from ctx is cleared again
// unless ctx already fired; an interrupted stream keeps its expired deadline.
// When ctx has no deadline the stream's own deadline is left alone.
func bindDeadline(ctx context.Context, set func(time.Time) error) func() {
	dl, hasDeadline := ctx.Deadline()
	if hasDeadline {
		_ = set(dl)
	}
	stop := context.AfterFunc(ctx, func() { _ = set(aLongTimeAgo) })
	return func() {
		if stop() && hasDeadline {
			_ = set(time.Time{})
		}
	}
}

// Write writes v to w in the default wire order.
func Write[T any](w io.Writer, v T) (int, error) {
	c, err := NewRecordCodec[T]()
	if err != nil {
		return 0, err
	}
	return c.Write(w, v)
}

// Read reads one T from r in the default wire order.
func Read[T any](r io.Reader) (T, error) {
	c, err := NewRecordCodec[T]()
	if err != nil {
		var zero T
		return zero, err
	}
	return c.Read(r)
}

// WriteContext writes v to w in the default wire order, honoring ctx.
func WriteContext[T any](ctx context.Context, w io.Writer, v T) (int, error) {
	c, err := NewRecordCodec[T]()
	if err != nil {
		return 0, err
	}
	return c.WriteContext(ctx, w, v)
}

// ReadContext reads one T from r in the default wire order, honoring ctx.
func ReadContext[T any](ctx context.Context, r io.Reader) (T, error) {
	c, err := NewRecordCodec[T]()
	if err != nil {
		var zero T
		return zero, err
	}
	return c.ReadContext(ctx, r)
}

// ReadAt reads the T stored at off in r in the default wire order.
func ReadAt[T any](r io.ReaderAt, off int64) (T, error) {
	c, err := NewRecordCodec[T]()
	if err != nil {
		var zero T
		return zero, err
	}
	return c.ReadAt(r, off)
}

// WriteAt writes v at off in w in the default wire order.
func WriteAt[T any](w io.WriterAt, off int64, v T) (int, error) {
	c, err := NewRecordCodec[T]()
	if err != nil {
		return 0, err
	}
	return c.WriteAt(w, off, v)
}
