package rawcodec

import (
	"encoding/binary"
	"fmt"
	"io"
	"reflect"
)

// RecordCodec is the raw codec bound to one record type and one byte order.
// It holds no mutable state and is safe for concurrent use.
type RecordCodec[T any] struct {
	layout *layout
	order  binary.ByteOrder
	fast   bool // memory image may be copied verbatim
}

// NewRecordCodec returns a codec for T using the default wire order.
// It fails with ErrUnsupportedLayout if T has no fixed wire width.
func NewRecordCodec[T any]() (*RecordCodec[T], error) {
	return codecWith[T](Order)
}

// MustRecordCodec is like NewRecordCodec but panics on an unsupported layout.
// It is meant for package-level variables.
func MustRecordCodec[T any]() *RecordCodec[T] {
	c, err := NewRecordCodec[T]()
	if err != nil {
		panic(err)
	}
	return c
}

func codecWith[T any](order binary.ByteOrder) (*RecordCodec[T], error) {
	l, err := layoutOf(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return &RecordCodec[T]{
		layout: l,
		order:  order,
		fast:   l.viewable && sameOrder(order, hostOrder),
	}, nil
}

// WithByteOrder returns a copy of the codec that uses order for multi-byte
// fields. The receiver is left unchanged.
func (c *RecordCodec[T]) WithByteOrder(order binary.ByteOrder) *RecordCodec[T] {
	cc := *c
	cc.order = order
	cc.fast = c.layout.viewable && sameOrder(order, hostOrder)
	return &cc
}

// ByteOrder returns the order used for multi-byte fields.
func (c *RecordCodec[T]) ByteOrder() binary.ByteOrder { return c.order }

// Size returns the wire size of T.
func (c *RecordCodec[T]) Size() int { return c.layout.size }

// Encode returns a freshly allocated buffer of exactly Size bytes holding v.
func (c *RecordCodec[T]) Encode(v T) ([]byte, error) {
	buf := make([]byte, c.layout.size)
	if err := c.encode(buf, &v); err != nil {
		return nil, err
	}
	return buf, nil
}

// EncodeTo writes v into the first Size bytes of dst without allocating.
// dst is left untouched if it is too small.
func (c *RecordCodec[T]) EncodeTo(dst []byte, v T) (int, error) {
	size := c.layout.size
	if len(dst) < size {
		return 0, fmt.Errorf("%w: %s needs %d bytes, have %d", io.ErrShortBuffer, c.layout.typ, size, len(dst))
	}
	if err := c.encode(dst[:size], &v); err != nil {
		return 0, err
	}
	return size, nil
}

// encode fills dst, which must be exactly Size bytes long.
func (c *RecordCodec[T]) encode(dst []byte, v *T) error {
	if c.layout.size == 0 {
		return nil
	}
	if c.fast {
		copy(dst, memory(v, c.layout.size))
		return nil
	}
	_, err := binary.Encode(dst, c.order, v)
	return err
}

// Decode reads exactly Size bytes of buf starting at offset and returns the
// record they hold. The result never aliases buf.
func (c *RecordCodec[T]) Decode(buf []byte, offset int) (T, error) {
	var v T
	size := c.layout.size
	if offset < 0 || offset > len(buf) || len(buf)-offset < size {
		return v, fmt.Errorf("%w: %s needs %d bytes at offset %d, buffer has %d",
			ErrOutOfRange, c.layout.typ, size, offset, len(buf))
	}
	if size == 0 {
		return v, nil
	}
	src := buf[offset : offset+size]
	if c.fast {
		copy(memory(&v, size), src)
		return v, nil
	}
	if _, err := binary.Decode(src, c.order, &v); err != nil {
		return v, err
	}
	return v, nil
}

// SizeOf returns the wire size of T, or ErrUnsupportedLayout naming the
// first field without a fixed width.
func SizeOf[T any]() (int, error) {
	l, err := layoutOf(reflect.TypeFor[T]())
	if err != nil {
		return 0, err
	}
	return l.size, nil
}

// Encode encodes v in the default wire order.
func Encode[T any](v T) ([]byte, error) {
	c, err := NewRecordCodec[T]()
	if err != nil {
		return nil, err
	}
	return c.Encode(v)
}

// EncodeTo encodes v into dst in the default wire order.
func EncodeTo[T any](dst []byte, v T) (int, error) {
	c, err := NewRecordCodec[T]()
	if err != nil {
		return 0, err
	}
	return c.EncodeTo(dst, v)
}

// Decode decodes a T from buf at offset in the default wire order.
func Decode[T any](buf []byte, offset int) (T, error) {
	c, err := NewRecordCodec[T]()
	if err != nil {
		var zero T
		return zero, err
	}
	return c.Decode(buf, offset)
}
