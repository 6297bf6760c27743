package rawcodec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// --- Test records ---

// sequential spells out the padding a C-style sequential layout would add.
type sequential struct {
	A bool
	_ [3]byte
	B uint8
	_ [3]byte
	C int32
	_ [4]byte
	D float64
}

// compact holds the same fields with no padding on the wire.
type compact struct {
	A bool
	B uint8
	C int32
	D float64
}

// header has no padding in memory either, so it may take the packed path.
type header struct {
	Magic   uint32
	Version uint16
	Flags   uint16
	Length  uint64
}

func (header) PackedLayout() {}

// plainHeader is header without the Packed marker; it always takes the
// reflective path.
type plainHeader struct {
	Magic   uint32
	Version uint16
	Flags   uint16
	Length  uint64
}

type nested struct {
	Kind   uint8
	Points [2]struct{ X, Y int16 }
	Value  complex64
}

type nothing struct{}

var (
	sampleSequential = sequential{A: true, B: 123, C: 80543, D: 652145.903}
	sampleCompact    = compact{A: true, B: 123, C: 80543, D: 652145.903}
	sampleHeader     = header{Magic: 0x52415743, Version: 1, Flags: 0x8001, Length: 1 << 40}
)

// --- Size ---

func TestSizeOf(t *testing.T) {
	tests := []struct {
		name string
		size func() (int, error)
		want int
	}{
		{"Sequential", SizeOf[sequential], 24},
		{"Compact", SizeOf[compact], 14},
		{"Header", SizeOf[header], 16},
		{"Nested", SizeOf[nested], 1 + 8 + 8},
		{"Empty", SizeOf[nothing], 0},
		{"Scalar", SizeOf[uint32], 4},
		{"Array", SizeOf[[3]uint16], 6},
		{"Complex", SizeOf[complex128], 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, err := tt.size()
			require.NoError(t, err)
			assert.Equal(t, tt.want, size)

			// Type-only: asking again gives the same answer.
			again, err := tt.size()
			require.NoError(t, err)
			assert.Equal(t, size, again)
		})
	}
}

func TestSizeOf_UnsupportedLayout(t *testing.T) {
	type withString struct {
		ID   uint32
		Name string
	}
	type withSlice struct{ Data []byte }
	type withPointer struct{ Next *uint32 }
	type withInt struct{ N int }
	type withMap struct{ M map[uint8]uint8 }
	type withUnexported struct {
		ID     uint32
		secret uint32
	}
	type deep struct {
		Inner [2]struct{ Label string }
	}

	tests := []struct {
		name string
		size func() (int, error)
		path string
	}{
		{"String", SizeOf[withString], "withString.Name"},
		{"Slice", SizeOf[withSlice], "withSlice.Data"},
		{"Pointer", SizeOf[withPointer], "withPointer.Next"},
		{"PlatformInt", SizeOf[withInt], "withInt.N"},
		{"Map", SizeOf[withMap], "withMap.M"},
		{"Unexported", SizeOf[withUnexported], "withUnexported.secret"},
		{"Deep", SizeOf[deep], "deep.Inner[].Label"},
		{"Interface", SizeOf[any], "interface"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.size()
			require.ErrorIs(t, err, ErrUnsupportedLayout)
			assert.Contains(t, err.Error(), tt.path)
		})
	}

	t.Run("EncodeAndDecodeRejectToo", func(t *testing.T) {
		_, err := Encode(withString{ID: 1, Name: "x"})
		assert.ErrorIs(t, err, ErrUnsupportedLayout)

		_, err = Decode[withString](make([]byte, 64), 0)
		assert.ErrorIs(t, err, ErrUnsupportedLayout)

		_, err = NewRecordCodec[withSlice]()
		assert.ErrorIs(t, err, ErrUnsupportedLayout)

		assert.Panics(t, func() { MustRecordCodec[withPointer]() })
	})
}

// --- Concrete scenario ---

func TestEncode_SequentialScenario(t *testing.T) {
	want := []byte{
		0x01, 0x00, 0x00, 0x00, // A + padding
		0x7B, 0x00, 0x00, 0x00, // B + padding
		0x9F, 0x3A, 0x01, 0x00, // C
		0x00, 0x00, 0x00, 0x00, // padding
		0x19, 0x04, 0x56, 0xCE, 0xE3, 0xE6, 0x23, 0x41, // D
	}

	data, err := Encode(sampleSequential)
	require.NoError(t, err)
	assert.Equal(t, want, data)

	got, err := Decode[sequential](want, 0)
	require.NoError(t, err)
	assert.Equal(t, sampleSequential, got)
	assert.True(t, got.A)
	assert.Equal(t, uint8(123), got.B)
	assert.Equal(t, int32(80543), got.C)
	assert.Equal(t, 652145.903, got.D)
}

func TestEncode_CompactScenario(t *testing.T) {
	want := []byte{0x01, 0x7B, 0x9F, 0x3A, 0x01, 0x00, 0x19, 0x04, 0x56, 0xCE, 0xE3, 0xE6, 0x23, 0x41}

	data, err := Encode(sampleCompact)
	require.NoError(t, err)
	assert.Equal(t, want, data)

	got, err := Decode[compact](data, 0)
	require.NoError(t, err)
	assert.Equal(t, sampleCompact, got)
}

// --- Properties ---

func randomCompact(r *rand.Rand) compact {
	return compact{
		A: r.IntN(2) == 1,
		B: uint8(r.Uint32()),
		C: int32(r.Uint32()),
		D: r.NormFloat64() * 1e6,
	}
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	size, err := SizeOf[compact]()
	require.NoError(t, err)

	for range 500 {
		v := randomCompact(r)
		data, err := Encode(v)
		require.NoError(t, err)
		require.Len(t, data, size)

		got, err := Decode[compact](data, 0)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}

	t.Run("Extremes", func(t *testing.T) {
		for _, v := range []nested{
			{},
			{Kind: math.MaxUint8, Value: complex(math.MaxFloat32, -math.SmallestNonzeroFloat32)},
			{Kind: 7, Points: [2]struct{ X, Y int16 }{{math.MinInt16, math.MaxInt16}, {-1, 1}}, Value: complex(float32(math.Inf(1)), 0)},
		} {
			data, err := Encode(v)
			require.NoError(t, err)
			got, err := Decode[nested](data, 0)
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})

	t.Run("NaNKeepsItsBits", func(t *testing.T) {
		nan := math.Float64frombits(0x7FF8_0000_DEAD_BEEF)
		data, err := Encode(nan)
		require.NoError(t, err)
		got, err := Decode[float64](data, 0)
		require.NoError(t, err)
		assert.Equal(t, math.Float64bits(nan), math.Float64bits(got))
	})
}

func TestDeterminism(t *testing.T) {
	first, err := Encode(sampleHeader)
	require.NoError(t, err)
	for range 10 {
		again, err := Encode(sampleHeader)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestInjectivity(t *testing.T) {
	base := sampleCompact
	variants := []compact{
		{A: !base.A, B: base.B, C: base.C, D: base.D},
		{A: base.A, B: base.B + 1, C: base.C, D: base.D},
		{A: base.A, B: base.B, C: base.C ^ math.MinInt32, D: base.D},
		{A: base.A, B: base.B, C: base.C, D: math.Nextafter(base.D, math.Inf(1))},
	}
	baseData, err := Encode(base)
	require.NoError(t, err)
	for i, v := range variants {
		data, err := Encode(v)
		require.NoError(t, err)
		assert.NotEqual(t, baseData, data, "variant %d", i)
	}
}

func TestDecode_Offset(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	data, err := Encode(sampleHeader)
	require.NoError(t, err)

	for _, prefix := range []int{0, 1, 3, 8, 17} {
		buf := make([]byte, prefix, prefix+len(data)+5)
		for i := range buf {
			buf[i] = byte(r.Uint32())
		}
		buf = append(buf, data...)
		buf = append(buf, 1, 2, 3, 4, 5)

		atOffset, err := Decode[header](buf, prefix)
		require.NoError(t, err)
		sliced, err := Decode[header](buf[prefix:], 0)
		require.NoError(t, err)
		assert.Equal(t, sliced, atOffset)
		assert.Equal(t, sampleHeader, atOffset)
	}
}

func TestDecode_Bounds(t *testing.T) {
	size, err := SizeOf[header]()
	require.NoError(t, err)
	buf := make([]byte, size+4)

	tests := []struct {
		name   string
		buf    []byte
		offset int
	}{
		{"Nil", nil, 0},
		{"Short", buf[:size-1], 0},
		{"OffsetTooFar", buf, 5},
		{"OffsetAtEnd", buf, len(buf)},
		{"OffsetPastEnd", buf, len(buf) + 1},
		{"NegativeOffset", buf, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode[header](tt.buf, tt.offset)
			assert.ErrorIs(t, err, ErrOutOfRange)

			_, err = Decode[plainHeader](tt.buf, tt.offset)
			assert.ErrorIs(t, err, ErrOutOfRange)
		})
	}

	t.Run("ExactFit", func(t *testing.T) {
		_, err := Decode[header](buf, 4)
		assert.NoError(t, err)
	})
}

func TestZeroSizedRecord(t *testing.T) {
	data, err := Encode(nothing{})
	require.NoError(t, err)
	assert.NotNil(t, data)
	assert.Empty(t, data)

	got, err := Decode[nothing](nil, 0)
	require.NoError(t, err)
	assert.Equal(t, nothing{}, got)

	_, err = Decode[nothing]([]byte{1, 2}, 2)
	assert.NoError(t, err)
	_, err = Decode[nothing]([]byte{1, 2}, 3)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestBoolDecoding(t *testing.T) {
	data := []byte{0x7F, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	got, err := Decode[compact](data, 0)
	require.NoError(t, err)
	assert.True(t, got.A, "any non-zero byte is true")

	again, err := Encode(got)
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), again[0], "true is always written as 1")
}

func TestDecode_ReturnsFreshValue(t *testing.T) {
	data, err := Encode(sampleHeader)
	require.NoError(t, err)

	got, err := Decode[header](data, 0)
	require.NoError(t, err)
	clear(data)
	assert.Equal(t, sampleHeader, got)
}

func TestEncodeTo(t *testing.T) {
	t.Run("ExactBuffer", func(t *testing.T) {
		buf := make([]byte, 16)
		n, err := EncodeTo(buf, sampleHeader)
		require.NoError(t, err)
		assert.Equal(t, 16, n)

		want, _ := Encode(sampleHeader)
		assert.Equal(t, want, buf)
	})

	t.Run("LargerBufferKeepsTail", func(t *testing.T) {
		buf := bytes.Repeat([]byte{0xEE}, 20)
		n, err := EncodeTo(buf, sampleHeader)
		require.NoError(t, err)
		assert.Equal(t, 16, n)
		assert.Equal(t, []byte{0xEE, 0xEE, 0xEE, 0xEE}, buf[16:])
	})

	t.Run("ShortBufferUntouched", func(t *testing.T) {
		buf := bytes.Repeat([]byte{0xEE}, 15)
		n, err := EncodeTo(buf, sampleHeader)
		assert.ErrorIs(t, err, io.ErrShortBuffer)
		assert.Zero(t, n)
		assert.Equal(t, bytes.Repeat([]byte{0xEE}, 15), buf)
	})
}

func TestRecordCodec_ByteOrder(t *testing.T) {
	le := MustRecordCodec[header]()
	be := le.WithByteOrder(binary.BigEndian)

	assert.Equal(t, binary.ByteOrder(binary.LittleEndian), le.ByteOrder(), "WithByteOrder must not mutate the receiver")
	assert.Equal(t, binary.ByteOrder(binary.BigEndian), be.ByteOrder())
	assert.Equal(t, 16, be.Size())

	data, err := be.Encode(sampleHeader)
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x52, 0x41, 0x57, 0x43,
		0x00, 0x01,
		0x80, 0x01,
		0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00,
	}, data)

	got, err := be.Decode(data, 0)
	require.NoError(t, err)
	assert.Equal(t, sampleHeader, got)

	// The same bytes read little-endian are a different record.
	other, err := le.Decode(data, 0)
	require.NoError(t, err)
	assert.NotEqual(t, sampleHeader, other)
}

// --- Packed byte view ---

func TestPacked_Eligibility(t *testing.T) {
	hostLE := sameOrder(hostOrder, binary.LittleEndian)

	assert.Equal(t, hostLE, IsPacked[header](), "padding-free marked record")
	assert.False(t, IsPacked[plainHeader](), "no marker")
	assert.False(t, IsPacked[compact](), "in-memory padding and a bool")
	assert.False(t, IsPacked[sequential](), "blank fields")
	assert.False(t, IsPacked[string](), "unsupported")
}

func TestPacked_SameBytesAsReflectivePath(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	for range 100 {
		h := header{Magic: r.Uint32(), Version: uint16(r.Uint32()), Flags: uint16(r.Uint32()), Length: r.Uint64()}

		fast, err := Encode(h)
		require.NoError(t, err)
		slow, err := Encode(plainHeader(h))
		require.NoError(t, err)
		require.Equal(t, slow, fast)

		back, err := Decode[header](slow, 0)
		require.NoError(t, err)
		require.Equal(t, h, back)
	}

	t.Run("BigEndianCodecIsNeverFastOnLittleEndianHosts", func(t *testing.T) {
		be := MustRecordCodec[header]().WithByteOrder(binary.BigEndian)
		assert.Equal(t, sameOrder(hostOrder, binary.BigEndian), be.fast)
	})

	t.Run("NativeEndianMatchesHostOrder", func(t *testing.T) {
		native := MustRecordCodec[header]().WithByteOrder(binary.NativeEndian)
		assert.True(t, native.fast)
		assert.True(t, sameOrder(binary.NativeEndian, hostOrder))

		data, err := native.Encode(sampleHeader)
		require.NoError(t, err)
		slow, err := MustRecordCodec[plainHeader]().WithByteOrder(hostOrder).Encode(plainHeader(sampleHeader))
		require.NoError(t, err)
		assert.Equal(t, slow, data)
	})
}

func TestPackedView(t *testing.T) {
	if !IsPacked[header]() {
		h := sampleHeader
		_, err := PackedView(&h)
		assert.ErrorIs(t, err, ErrNotPacked)
		t.Skip("host is not little-endian")
	}

	h := sampleHeader
	view, err := PackedView(&h)
	require.NoError(t, err)

	want, err := Encode(h)
	require.NoError(t, err)
	assert.Equal(t, want, view)

	// The view aliases the record.
	view[0] = 0xFF
	assert.Equal(t, uint32(0x524157FF), h.Magic)

	_, err = PackedView[header](nil)
	assert.ErrorIs(t, err, ErrNotPacked)
}

// --- Concurrency ---

func TestConcurrentUse(t *testing.T) {
	codec := MustRecordCodec[compact]()

	var g errgroup.Group
	for i := range 64 {
		g.Go(func() error {
			for j := range 100 {
				v := compact{A: j%2 == 0, B: uint8(i), C: int32(i*1000 + j), D: float64(j) / 3}
				data, err := codec.Encode(v)
				if err != nil {
					return err
				}
				got, err := Decode[compact](data, 0)
				if err != nil {
					return err
				}
				if got != v {
					return fmt.Errorf("worker %d: got %+v, want %+v", i, got, v)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
