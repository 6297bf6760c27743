package rawcodec

import (
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/exp/constraints"
)

var (
	BE = binary.BigEndian
	LE = binary.LittleEndian
	// Order is the default wire byte order. It is fixed so that encodings are
	// reproducible across hosts of either endianness.
	Order binary.ByteOrder = LE
)

const BUFFER_SIZE = 4096

var (
	empty   [BUFFER_SIZE]byte
	discard [BUFFER_SIZE]byte
)

// Zero is an io.Reader that reads an infinite stream of zero bytes.
var Zero io.Reader = zero{}

type zero struct{}

func (z zero) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

// Discard reads and drops exactly n bytes from r. A stream that ends before
// the first byte yields io.EOF, one that ends part way io.ErrUnexpectedEOF.
func Discard(r io.Reader, n int64) (int64, error) {
	if n == 0 {
		return 0, nil
	}
	if n < 0 {
		return 0, ErrDiscardNegative
	}
	if n <= BUFFER_SIZE {
		skip, err := io.ReadFull(r, discard[:n])
		return int64(skip), err
	}
	skip, err := io.CopyN(io.Discard, r, n)
	if err == io.EOF && skip > 0 {
		err = io.ErrUnexpectedEOF
	}
	return skip, err
}

// Roundup rounds n up to the nearest multiple of align, which must be a power of two.
func Roundup[T constraints.Integer](n, align T) T { return (n + (align - 1)) &^ (align - 1) }

// checkAlignment accepts 0 and 1 as "no alignment" and any power of two.
func checkAlignment(align int) error {
	if align < 0 || align&(align-1) != 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidAlignment, align)
	}
	return nil
}

// CheckTrailingZeros verifies that every byte of data is zero. Decoders use it
// to make sure nothing but padding follows the last record.
func CheckTrailingZeros(data []byte) error {
	for i, b := range data {
		if b != 0 {
			return fmt.Errorf("%w: found non-zero byte 0x%02x at offset %d", ErrTrailingData, b, i)
		}
	}
	return nil
}
