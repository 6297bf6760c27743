package rawcodec

import (
	"fmt"
	"io"
)

// UnmarshalBinaryGeneric provides a generic `UnmarshalBinary` for types implementing `io.ReaderFrom`.
// It adapts a stream-based `ReadFrom` to the slice-based `UnmarshalBinary` interface
// and rejects anything but zero padding after the decoded data.
func UnmarshalBinaryGeneric[T interface {
	io.ReaderFrom
	Size() int
}](v T, data []byte) error {
	n, err := v.ReadFrom(NewBytesReader(data))
	if err != nil {
		return err
	}

	if expectedSize := v.Size(); n < int64(expectedSize) {
		return fmt.Errorf("%w: expected at least %d bytes, but read %d", ErrOutOfRange, expectedSize, n)
	}

	return CheckTrailingZeros(data[n:])
}

// MarshalToGeneric provides a `MarshalTo` for types implementing `io.WriterTo`.
func MarshalToGeneric[T interface {
	Size() int
	io.WriterTo
}](v T, p []byte) (int, error) {
	size := v.Size()
	if len(p) < size {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", io.ErrShortBuffer, size, len(p))
	}
	n, err := v.WriteTo(NewBytesWriter(p[:size:size]))
	if err != nil {
		return int(n), err
	}
	if n < int64(size) {
		return int(n), io.ErrShortWrite
	}
	return int(n), nil
}
