// Package rawcodec converts fixed-layout records to and from flat byte
// buffers with no framing at all: the encoding of a record is exactly
// SizeOf bytes, fields in declaration order, nothing before and nothing
// after.
//
// Wire format:
//
//   - integers use the codec's byte order (little-endian unless changed
//     with WithByteOrder)
//   - float32/float64 and complex64/complex128 are IEEE-754 bit patterns
//   - bool is one byte, 0 for false and 1 for true; any non-zero byte decodes
//     to true
//   - arrays are their elements back to back
//   - blank fields (`_ [3]byte`) are explicit padding, written as zeros and
//     skipped on decode
//
// int, uint, uintptr, pointers, strings, slices, maps, channels, funcs,
// interfaces and unexported named fields have no fixed width on the wire and
// are rejected with ErrUnsupportedLayout.
package rawcodec

import (
	"encoding"
	"io"
)

// Sizer is an interface for types that can report their binary size.
// This is useful for pre-allocating buffers before encoding.
type Sizer interface {
	// Size returns the size of the type in bytes when binary encoded.
	Size() int
}

// Marshaler defines the core methods for encoding an object into a byte stream.
type Marshaler interface {
	encoding.BinaryMarshaler // Method: MarshalBinary() ([]byte, error)
	io.WriterTo              // Method: WriteTo(writer io.Writer) (int64, error)

	// MarshalTo encodes the object into a pre-allocated buffer, returning an
	// error wrapping io.ErrShortBuffer if the buffer is too small.
	MarshalTo(buf []byte) (int, error)
}

// Unmarshaler defines the core methods for decoding a byte stream into an object.
type Unmarshaler interface {
	encoding.BinaryUnmarshaler // Method: UnmarshalBinary(data []byte) error
	io.ReaderFrom              // Method: ReadFrom(r io.Reader) (int64, error)
}

// Codec aggregates all binary serialization and deserialization interfaces.
// A type implementing Codec is a complete, self-sizing binary encoder/decoder.
type Codec interface {
	Sizer
	Marshaler
	Unmarshaler
}

// Packed marks a record type whose memory image may be copied verbatim.
//
// Implementing it is a request, not a guarantee: the fast path is only taken
// when the type has no padding, no bool and no blank fields, and the wire
// byte order matches the host. Everything else silently uses the reflective
// path, which produces the same bytes.
type Packed interface {
	PackedLayout()
}
