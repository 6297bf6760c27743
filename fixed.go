package rawcodec

import (
	"io"
)

// Fixed provides a generic Codec implementation for any record type Payload,
// so a record can be passed wherever an encoding.BinaryMarshaler, io.WriterTo
// and friends are expected.
//
// Constraint: Payload MUST have a fixed wire layout (see SizeOf); otherwise
// Size returns -1 and every other method fails with ErrUnsupportedLayout.
type Fixed[Payload any] struct {
	Payload Payload
}

// Statically assert that Fixed implements Codec.
var _ Codec = (*Fixed[struct{}])(nil)

// Size returns the wire size of Payload, or -1 if it has none.
func (c *Fixed[Payload]) Size() int {
	size, err := SizeOf[Payload]()
	if err != nil {
		return -1
	}
	return size
}

// MarshalBinary implements the standard `encoding.BinaryMarshaler` interface.
// Note: This method allocates a new byte slice. For performance-critical paths,
// use `MarshalTo` or `WriteTo` instead.
func (c *Fixed[Payload]) MarshalBinary() ([]byte, error) {
	return Encode(c.Payload)
}

// MarshalTo marshals the record into the provided slice `p` without allocating.
func (c *Fixed[Payload]) MarshalTo(p []byte) (int, error) {
	return EncodeTo(p, c.Payload)
}

// UnmarshalBinary implements the standard `encoding.BinaryUnmarshaler` interface.
// data must hold the record followed by nothing but zero bytes.
func (c *Fixed[Payload]) UnmarshalBinary(data []byte) error {
	codec, err := NewRecordCodec[Payload]()
	if err != nil {
		return err
	}
	v, err := codec.Decode(data, 0)
	if err != nil {
		return err
	}
	if err := CheckTrailingZeros(data[codec.Size():]); err != nil {
		return err
	}
	c.Payload = v
	return nil
}

// ReadFrom implements `io.ReaderFrom`, reading exactly one record from r.
func (c *Fixed[Payload]) ReadFrom(r io.Reader) (int64, error) {
	codec, err := NewRecordCodec[Payload]()
	if err != nil {
		return 0, err
	}
	v, n, err := codec.readFrom(r)
	if err != nil {
		return int64(n), err
	}
	c.Payload = v
	return int64(n), nil
}

// WriteTo implements `io.WriterTo`, writing exactly one record to w.
func (c *Fixed[Payload]) WriteTo(w io.Writer) (int64, error) {
	n, err := Write(w, c.Payload)
	return int64(n), err
}
