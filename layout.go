package rawcodec

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"unsafe"

	"github.com/puzpuzpuz/xsync/v4"
)

// layout is the frozen wire description of one record type.
type layout struct {
	typ  reflect.Type
	size int // wire size, the sum of all field widths
	err  error

	// viewable reports that the type opted into Packed and that its memory
	// image is byte for byte its wire image in host order.
	viewable bool
}

// layouts avoids walking a type with reflection on every call.
// Failed layouts are cached too so a bad type fails fast every time.
var layouts = xsync.NewMap[reflect.Type, *layout]()

var packedType = reflect.TypeFor[Packed]()

// hostOrder is the byte order of the running machine.
var hostOrder binary.ByteOrder = func() binary.ByteOrder {
	x := uint16(1)
	if *(*byte)(unsafe.Pointer(&x)) == 1 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}()

// sameOrder compares byte orders by name. NativeEndian names itself rather
// than the order it stands for, so it is resolved to hostOrder first.
func sameOrder(a, b binary.ByteOrder) bool {
	if a == nil || b == nil {
		return false
	}
	return resolveOrder(a).String() == resolveOrder(b).String()
}

func resolveOrder(o binary.ByteOrder) binary.ByteOrder {
	if o == binary.NativeEndian {
		return hostOrder
	}
	return o
}

func layoutOf(t reflect.Type) (*layout, error) {
	if l, ok := layouts.Load(t); ok {
		return l, l.err
	}
	l := buildLayout(t)
	layouts.Store(t, l)
	return l, l.err
}

func buildLayout(t reflect.Type) *layout {
	l := &layout{typ: t}
	size, plain, err := measure(t, t.String())
	if err != nil {
		l.err = err
		return l
	}
	l.size = size
	// Any padding the compiler inserted makes the memory image larger than
	// the wire image.
	l.viewable = plain && t.Implements(packedType) && t.Size() == uintptr(size)
	return l
}

// measure returns the wire width of t. plain is false when the memory image
// of t may differ from its wire image even without padding: bools may hold
// any byte on decode and blank fields are never copied.
func measure(t reflect.Type, path string) (size int, plain bool, err error) {
	switch t.Kind() {
	case reflect.Bool:
		return 1, false, nil
	case reflect.Int8, reflect.Uint8:
		return 1, true, nil
	case reflect.Int16, reflect.Uint16:
		return 2, true, nil
	case reflect.Int32, reflect.Uint32, reflect.Float32:
		return 4, true, nil
	case reflect.Int64, reflect.Uint64, reflect.Float64, reflect.Complex64:
		return 8, true, nil
	case reflect.Complex128:
		return 16, true, nil
	case reflect.Array:
		n, plain, err := measure(t.Elem(), path+"[]")
		if err != nil {
			return 0, false, err
		}
		return n * t.Len(), plain, nil
	case reflect.Struct:
		plain = true
		for i := range t.NumField() {
			f := t.Field(i)
			if f.Name == "_" {
				plain = false
			} else if !f.IsExported() {
				return 0, false, fmt.Errorf("%w: %s.%s is unexported", ErrUnsupportedLayout, path, f.Name)
			}
			n, p, err := measure(f.Type, path+"."+f.Name)
			if err != nil {
				return 0, false, err
			}
			size += n
			plain = plain && p
		}
		return size, plain, nil
	}
	return 0, false, fmt.Errorf("%w: %s has kind %s", ErrUnsupportedLayout, path, t.Kind())
}
