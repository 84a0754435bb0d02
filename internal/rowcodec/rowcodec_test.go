package rowcodec

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

var errShortBuf = errors.New("rowcodec_test: short buffer")

// memWords is a simple WordReader/WordWriter over a byte slice, treating
// every 4 bytes as one big-endian 32-bit image-data word.
type memWords struct {
	buf []byte
	pos int
}

func (m *memWords) ReadWord() (uint32, error) {
	if m.pos+4 > len(m.buf) {
		return 0, errShortBuf
	}
	w := uint32(m.buf[m.pos])<<24 | uint32(m.buf[m.pos+1])<<16 | uint32(m.buf[m.pos+2])<<8 | uint32(m.buf[m.pos+3])
	m.pos += 4
	return w, nil
}

func (m *memWords) WriteWord(w uint32) error {
	m.buf = append(m.buf, byte(w>>24), byte(w>>16), byte(w>>8), byte(w))
	return nil
}

func TestScenarioS1Packed8BitRGB(t *testing.T) {
	p := Params{BitSize: 8, Packing: Packed, Encoding: NoEncoding, Components: 3}
	src := []int32{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC}

	w := &memWords{}
	_, err := EncodeRowInt(w, p, 2, src)
	require.NoError(t, err)
	require.Equal(t, []byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0x00, 0x00}, w.buf)
	require.Equal(t, uint32(8), RowSizeInBytes(3, 2, 8, Packed, true, 0))

	r := &memWords{buf: w.buf}
	dst := make([]int32, 6)
	_, err = DecodeRowInt(r, p, 2, dst)
	require.NoError(t, err)
	require.Equal(t, src, dst)
}

func TestScenarioS2MethodA10BitLTR(t *testing.T) {
	p := Params{BitSize: 10, Packing: MethodA, Encoding: NoEncoding, Components: 3}
	src := []int32{0x3FF, 0x000, 0x155}

	w := &memWords{}
	_, err := EncodeRowInt(w, p, 1, src)
	require.NoError(t, err)
	require.Equal(t, []byte{0xFF, 0xC0, 0x05, 0x54}, w.buf)

	r := &memWords{buf: w.buf}
	dst := make([]int32, 3)
	_, err = DecodeRowInt(r, p, 1, dst)
	require.NoError(t, err)
	require.Equal(t, src, dst)
}

// S3 (12-bit Method B, RTL/flip addressing) round-trips correctly through
// this codec's per-sample 16-bit half-word packing, which pads every
// 12-bit sample individually to 16 bits (two samples per 32-bit word).
// This is the standard Method A/B convention for 12-bit data; it is
// checked here for round-trip fidelity rather than against a literal byte
// string.
func TestScenarioS3MethodB12BitRTL(t *testing.T) {
	p := Params{BitSize: 12, Packing: MethodB, Encoding: NoEncoding, Components: 3, DirectionR2L: true}
	src := []int32{0xABC, 0x123, 0x456}

	w := &memWords{}
	_, err := EncodeRowInt(w, p, 1, src)
	require.NoError(t, err)
	require.Equal(t, 8, len(w.buf)) // three 12-bit+4-bit-pad half-words, plus 16 zero bits of row-end fill

	r := &memWords{buf: w.buf}
	dst := make([]int32, 3)
	_, err = DecodeRowInt(r, p, 1, dst)
	require.NoError(t, err)
	require.Equal(t, src, dst)
}

func TestScenarioS4RLE8BitRGBA(t *testing.T) {
	p := Params{BitSize: 8, Packing: Packed, Encoding: RLE, Components: 4}
	src := []int32{
		1, 2, 3, 4,
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
	}

	w := &memWords{}
	_, err := EncodeRowInt(w, p, 4, src)
	require.NoError(t, err)
	require.Equal(t, []byte{
		0x05, 0x01, 0x02, 0x03, 0x04,
		0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A, 0x0B, 0x0C,
		0x00, 0x00,
	}, w.buf)

	r := &memWords{buf: w.buf}
	dst := make([]int32, 16)
	_, err = DecodeRowInt(r, p, 4, dst)
	require.NoError(t, err)
	require.Equal(t, src, dst)
}

func TestScenarioS5ByteSwap16Bit(t *testing.T) {
	p := Params{BitSize: 16, Packing: Packed, Encoding: NoEncoding, Components: 1, ByteSwap: true}
	src := []int32{0x1234, 0x5678}

	w := &memWords{}
	_, err := EncodeRowInt(w, p, 2, src)
	require.NoError(t, err)
	require.Equal(t, []byte{0x34, 0x12, 0x78, 0x56}, w.buf)

	r := &memWords{buf: w.buf}
	dst := make([]int32, 2)
	_, err = DecodeRowInt(r, p, 2, dst)
	require.NoError(t, err)
	require.Equal(t, src, dst)
}

func TestScenarioS6Float32RGB(t *testing.T) {
	p := Params{BitSize: 32, Packing: Packed, Encoding: NoEncoding, Components: 3}
	src := []float32{1.0, 2.0, 3.0}

	w := &memWords{}
	_, err := EncodeRowF32(w, p, 1, src)
	require.NoError(t, err)
	require.Equal(t, []byte{
		0x3F, 0x80, 0x00, 0x00,
		0x40, 0x00, 0x00, 0x00,
		0x40, 0x40, 0x00, 0x00,
	}, w.buf)

	r := &memWords{buf: w.buf}
	dst := make([]float32, 3)
	_, err = DecodeRowF32(r, p, 1, dst)
	require.NoError(t, err)
	require.Equal(t, src, dst)
}

func TestRoundTripAllPackingDirectionCombinations(t *testing.T) {
	cases := []struct {
		name    string
		bitSize int
		packing Packing
		r2l     bool
	}{
		{"10-packed-ltr", 10, Packed, false},
		{"10-packed-rtl", 10, Packed, true},
		{"10-methodA-ltr", 10, MethodA, false},
		{"10-methodA-rtl", 10, MethodA, true},
		{"10-methodB-ltr", 10, MethodB, false},
		{"10-methodB-rtl", 10, MethodB, true},
		{"12-packed-ltr", 12, Packed, false},
		{"12-methodA-ltr", 12, MethodA, false},
		{"12-methodA-rtl", 12, MethodA, true},
		{"12-methodB-ltr", 12, MethodB, false},
		{"12-methodB-rtl", 12, MethodB, true},
		{"8-packed", 8, Packed, false},
		{"16-packed", 16, Packed, false},
		{"1-packed", 1, Packed, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := Params{BitSize: c.bitSize, Packing: c.packing, Encoding: NoEncoding, Components: 3, DirectionR2L: c.r2l}
			max := int32(1)<<uint(c.bitSize) - 1
			src := []int32{0, max, max / 2, 1, max - 1, max / 3, max, 0, max / 2}

			w := &memWords{}
			_, err := EncodeRowInt(w, p, 3, src)
			require.NoError(t, err)
			require.Equal(t, 0, len(w.buf)%4)

			r := &memWords{buf: w.buf}
			dst := make([]int32, 9)
			_, err = DecodeRowInt(r, p, 3, dst)
			require.NoError(t, err)
			require.Equal(t, src, dst)
		})
	}
}

func TestRLERoundTripWithMixedRuns(t *testing.T) {
	p := Params{BitSize: 8, Packing: Packed, Encoding: RLE, Components: 2}
	src := []int32{
		1, 1,
		1, 1,
		1, 1,
		2, 2,
		3, 3,
		3, 3,
		4, 5,
	}
	width := uint32(len(src) / 2)

	w := &memWords{}
	_, err := EncodeRowInt(w, p, width, src)
	require.NoError(t, err)

	r := &memWords{buf: w.buf}
	dst := make([]int32, len(src))
	_, err = DecodeRowInt(r, p, width, dst)
	require.NoError(t, err)
	require.Equal(t, src, dst)
}

// TestRLESingleComponentRequiresTwoPixelLookahead exercises the
// num_components == 1 branch of the same-run decision: a 1-component
// element must not declare a same-run unless the next *two* pixels both
// match, even though a naive one-ahead check would see a 2-pixel match
// and flag a (wasteful) same-run.
func TestRLESingleComponentRequiresTwoPixelLookahead(t *testing.T) {
	p := Params{BitSize: 8, Packing: Packed, Encoding: RLE, Components: 1}
	src := []int32{5, 5, 3}

	w := &memWords{}
	_, err := EncodeRowInt(w, p, 3, src)
	require.NoError(t, err)
	require.Equal(t, []byte{0x02, 0x05, 0x04, 0x05, 0x03, 0x00, 0x00, 0x00}, w.buf)

	r := &memWords{buf: w.buf}
	dst := make([]int32, 3)
	_, err = DecodeRowInt(r, p, 3, dst)
	require.NoError(t, err)
	require.Equal(t, src, dst)
}

func TestSignedDatumRoundTrip(t *testing.T) {
	p := Params{BitSize: 16, Packing: Packed, Encoding: NoEncoding, Components: 1, Signed: true}
	src := []int32{-1, -32768, 32767, 0}

	w := &memWords{}
	_, err := EncodeRowInt(w, p, 4, src)
	require.NoError(t, err)

	r := &memWords{buf: w.buf}
	dst := make([]int32, 4)
	_, err = DecodeRowInt(r, p, 4, dst)
	require.NoError(t, err)
	require.Equal(t, src, dst)
}

func TestSignedByteSwapRoundTrip(t *testing.T) {
	p := Params{BitSize: 16, Packing: Packed, Encoding: NoEncoding, Components: 1, Signed: true, ByteSwap: true}
	src := []int32{-1, -256, 12345, -12345}

	w := &memWords{}
	_, err := EncodeRowInt(w, p, 4, src)
	require.NoError(t, err)

	r := &memWords{buf: w.buf}
	dst := make([]int32, 4)
	_, err = DecodeRowInt(r, p, 4, dst)
	require.NoError(t, err)
	require.Equal(t, src, dst)
}

func FuzzRowCodecRoundTrip(f *testing.F) {
	f.Add(8, 0, false, false, uint32(4), int32(0x12))
	f.Add(10, 1, false, true, uint32(3), int32(0x155))
	f.Add(12, 2, true, false, uint32(2), int32(0xABC))
	f.Add(16, 0, false, true, uint32(5), int32(-1))

	f.Fuzz(func(t *testing.T, bitSize int, packing int, r2l bool, byteSwap bool, width uint32, seed int32) {
		if width < 1 || width > 8 {
			t.Skip()
		}
		switch bitSize {
		case 1, 8, 10, 12, 16:
		default:
			t.Skip()
		}
		pk := Packing(packing % 3)
		if bitSize != 10 && bitSize != 12 && pk != Packed {
			pk = Packed
		}
		if bitSize != 16 {
			byteSwap = false
		}

		p := Params{BitSize: bitSize, Packing: pk, Encoding: NoEncoding, Components: 2, DirectionR2L: r2l, ByteSwap: byteSwap}
		mask := int32(1)<<uint(bitSize) - 1
		if bitSize == 32 {
			mask = -1
		}
		src := make([]int32, 2*width)
		for i := range src {
			src[i] = (seed + int32(uint32(i)*2654435761)) & mask
		}

		w := &memWords{}
		if _, err := EncodeRowInt(w, p, width, src); err != nil {
			t.Fatalf("encode: %v", err)
		}
		if len(w.buf)%4 != 0 {
			t.Fatalf("row not word-aligned: %d bytes", len(w.buf))
		}
		r := &memWords{buf: w.buf}
		dst := make([]int32, 2*width)
		if _, err := DecodeRowInt(r, p, width, dst); err != nil {
			t.Fatalf("decode: %v", err)
		}
		require.Equal(t, src, dst)
	})
}
