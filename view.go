package rawcodec

import (
	"fmt"
	"reflect"
	"unsafe"
)

// memory is the byte window over *v. Callers must have checked that size is
// the memory size of T.
func memory[T any](v *T, size int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), size)
}

// IsPacked reports whether records of type T are encoded and decoded by
// copying their memory image in the default wire order on this host.
func IsPacked[T any]() bool {
	l, err := layoutOf(reflect.TypeFor[T]())
	return err == nil && l.viewable && sameOrder(Order, hostOrder)
}

// PackedView returns the encoding of *v without copying: the returned slice
// aliases the record, so writes through it change *v and the other way
// round. It fails with ErrNotPacked unless IsPacked[T] holds.
func PackedView[T Packed](v *T) ([]byte, error) {
	l, err := layoutOf(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	if !l.viewable || !sameOrder(Order, hostOrder) {
		return nil, fmt.Errorf("%w: %s", ErrNotPacked, l.typ)
	}
	if v == nil {
		return nil, fmt.Errorf("%w: nil %s", ErrNotPacked, l.typ)
	}
	return memory(v, l.size), nil
}
