package rawcodec

import (
	"fmt"
	"io"
)

// Array is a contiguous run of records of one type. With Alignment > 1 every
// record except the last is followed by zero padding up to the next multiple
// of Alignment, measured from the start of the array.
type Array[T any] struct {
	Items     []T
	Alignment int
}

// Statically ensure that Array implements Codec.
var _ Codec = (*Array[struct{}])(nil)

// NewArray creates an Array over items. Alignment 0 or 1 packs the records
// back to back; otherwise it must be a power of two.
func NewArray[T any](items []T, alignment int) *Array[T] {
	return &Array[T]{Items: items, Alignment: alignment}
}

// Stride returns the distance between the starts of consecutive records of
// type T in an array with the given alignment.
func Stride[T any](alignment int) (int, error) {
	size, err := SizeOf[T]()
	if err != nil {
		return 0, err
	}
	return stride(size, alignment)
}

func stride(size, alignment int) (int, error) {
	if err := checkAlignment(alignment); err != nil {
		return 0, err
	}
	if alignment > 1 {
		return Roundup(size, alignment), nil
	}
	return size, nil
}

// arraySize is the encoded length of n records; the last one is not padded.
func arraySize(n, size, stride int) int {
	if n == 0 {
		return 0
	}
	return (n-1)*stride + size
}

// fits reports whether n records fit in avail bytes. It divides instead of
// multiplying so a huge n cannot overflow into a small size.
func fits(avail, n, size, stride int) bool {
	if n == 0 {
		return true
	}
	if avail < size {
		return false
	}
	if stride == 0 {
		return true
	}
	return (avail-size)/stride >= n-1
}

// EncodeArray encodes items back to back in the default wire order, padding
// each record but the last to the alignment.
func EncodeArray[T any](items []T, alignment int) ([]byte, error) {
	c, err := NewRecordCodec[T]()
	if err != nil {
		return nil, err
	}
	st, err := stride(c.Size(), alignment)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, arraySize(len(items), c.Size(), st))
	for i, item := range items {
		if _, err := c.EncodeTo(buf[i*st:], item); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// DecodeArray decodes n records laid out by EncodeArray starting at offset.
// The whole array is bounds checked before the first record is read.
// Padding bytes are skipped, not checked.
func DecodeArray[T any](buf []byte, offset, n, alignment int) ([]T, error) {
	c, err := NewRecordCodec[T]()
	if err != nil {
		return nil, err
	}
	st, err := stride(c.Size(), alignment)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative record count %d", ErrOutOfRange, n)
	}
	if offset < 0 || offset > len(buf) || !fits(len(buf)-offset, n, c.Size(), st) {
		return nil, fmt.Errorf("%w: %d records of %d bytes with stride %d at offset %d, buffer has %d",
			ErrOutOfRange, n, c.Size(), st, offset, len(buf))
	}
	items := make([]T, n)
	for i := range items {
		if items[i], err = c.Decode(buf, offset+i*st); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (a *Array[T]) Len() int {
	return len(a.Items)
}

// Size returns the encoded length of the array, or -1 if T has no fixed
// layout or the alignment is invalid.
func (a *Array[T]) Size() int {
	size, err := SizeOf[T]()
	if err != nil {
		return -1
	}
	st, err := stride(size, a.Alignment)
	if err != nil {
		return -1
	}
	return arraySize(len(a.Items), size, st)
}

// WriteTo efficiently writes the entire array to a writer, handling alignment.
func (a *Array[T]) WriteTo(writer io.Writer) (int64, error) {
	if len(a.Items) == 0 {
		return 0, nil
	}
	if err := checkAlignment(a.Alignment); err != nil {
		return 0, err
	}

	w, err := NewWriter(writer)
	if err != nil {
		return 0, err
	}
	lastIndex := len(a.Items) - 1

	for i, item := range a.Items {
		WriteRecord(w, item)

		if i < lastIndex {
			w.Align(a.Alignment)
		}
	}
	return w.Result()
}

// ReadFrom reads and decodes records into the array from a reader.
// The read behavior is determined by the capacity of the `a.Items` slice:
// - If cap(a.Items) > 0, it reads exactly that many records.
// - If cap(a.Items) == 0, it reads records until the reader returns io.EOF.
// Records already in a.Items are replaced.
func (a *Array[T]) ReadFrom(reader io.Reader) (int64, error) {
	c, err := NewRecordCodec[T]()
	if err != nil {
		return 0, err
	}
	st, err := stride(c.Size(), a.Alignment)
	if err != nil {
		return 0, err
	}

	var n int64
	count := cap(a.Items)
	readEOF := count == 0
	if readEOF && c.Size() == 0 {
		// Zero-sized records never reach the end of a stream.
		return 0, nil
	}
	items := a.Items[:0]

	for i := 0; readEOF || i < count; i++ {
		item, read, err := c.readFrom(reader)
		n += int64(read)
		if err != nil {
			if readEOF && err == io.EOF {
				// Clean EOF when reading indefinitely: this is the success termination condition.
				break
			}
			if err == io.EOF {
				err = fmt.Errorf("%w: read %d of %d records: %w", ErrOutOfRange, i, count, io.ErrUnexpectedEOF)
			}
			a.Items = items
			return n, err
		}
		items = append(items, item)

		isLastItem := !readEOF && i == count-1
		if pad := int64(st - c.Size()); !isLastItem && pad > 0 {
			skipped, err := Discard(reader, pad)
			n += skipped
			if err != nil {
				if readEOF && err == io.EOF {
					break
				}
				if err == io.EOF {
					err = fmt.Errorf("%w: padding after record %d: %w", ErrOutOfRange, i, io.ErrUnexpectedEOF)
				}
				a.Items = items
				return n, err
			}
		}
	}

	a.Items = items
	return n, nil
}

// --- Boilerplate implementations ---

func (a *Array[T]) MarshalBinary() ([]byte, error) {
	return EncodeArray(a.Items, a.Alignment)
}

func (a *Array[T]) UnmarshalBinary(data []byte) error {
	return UnmarshalBinaryGeneric(a, data)
}

func (a *Array[T]) MarshalTo(buf []byte) (int, error) {
	return MarshalToGeneric(a, buf)
}
