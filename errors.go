package rawcodec

import "errors"

var (
	// ErrOutOfRange indicates that a buffer or stream held fewer than SizeOf
	// bytes at the requested offset. Nothing is read when it is returned.
	ErrOutOfRange = errors.New("rawcodec: record out of range")

	// ErrUnsupportedLayout indicates a type whose wire width cannot be fixed
	// statically, such as one holding a string, slice, pointer or int.
	ErrUnsupportedLayout = errors.New("rawcodec: unsupported record layout")

	// ErrNotPacked indicates that PackedView was asked for a type whose memory
	// image differs from its wire image on this host.
	ErrNotPacked = errors.New("rawcodec: type has no packed byte view")

	// ErrNilIO indicates that NewReader/NewWriter was called with an nil interface
	ErrNilIO = errors.New("rawcodec: NewReader/NewWriter called with a nil io.Reader/io.Writer")

	// ErrSizeTooSmall indicates a size conflict with bufio
	ErrSizeTooSmall = errors.New("rawcodec: NewReaderSize with a size smaller than 16 conflict with bufio")

	// ErrAlreadyBuffered indicates that NewReader/NewWriter was called with an already-buffered
	// reader/writer, which would lead to unpredictable behavior and performance issues.
	ErrAlreadyBuffered = errors.New("rawcodec: reader or writer is already buffered")

	// ErrDiscardNegative indicates a Discard operation was attempted with a negative byte count.
	ErrDiscardNegative = errors.New("rawcodec: cannot discard negative number of bytes")

	// ErrInvalidAlignment indicates an alignment that is not a power of two.
	ErrInvalidAlignment = errors.New("rawcodec: alignment must be a power of two")

	// ErrTrailingData is returned by UnmarshalBinary when non-zero bytes are found
	// after the expected end of the record.
	ErrTrailingData = errors.New("rawcodec: non-zero trailing data found after decoding")
)
