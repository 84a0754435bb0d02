package dpx

import (
	"github.com/deepteams/dpx/internal/descriptor"
	"github.com/deepteams/dpx/internal/rowcodec"
)

// DataSign distinguishes signed and unsigned integer samples.
type DataSign int

const (
	Unsigned DataSign = 0
	Signed   DataSign = 1
)

// Transfer is the transfer-function tag carried by the header. DPX defines
// a closed set of SMPTE/legacy transfer characteristics; this repository
// does not interpret them (transfer-function conversion is a non-goal) —
// it only stores and round-trips the byte.
type Transfer uint8

const (
	TransferUser       Transfer = 0
	TransferDensity    Transfer = 1
	TransferLinear     Transfer = 2
	TransferLogarithmic Transfer = 3
	TransferUnspecifiedVideo Transfer = 4
	TransferSMPTE274M  Transfer = 5
	TransferITUR709    Transfer = 6
	TransferITUR601_625 Transfer = 7
	TransferITUR601_525 Transfer = 8
	TransferNTSCCompositeVideo Transfer = 9
	TransferPALCompositeVideo Transfer = 10
	TransferZLinear    Transfer = 11
	TransferZHomogeneous Transfer = 12
	TransferUndefined  Transfer = 0xFF
)

// Colorimetric is the colorimetric specification tag. Like Transfer, it is
// stored and round-tripped, never interpreted.
type Colorimetric uint8

const (
	ColorimetricUser       Colorimetric = 0
	ColorimetricDensity    Colorimetric = 1
	ColorimetricUnspecifiedVideo Colorimetric = 4
	ColorimetricSMPTE274M  Colorimetric = 5
	ColorimetricITUR709    Colorimetric = 6
	ColorimetricITUR601_625 Colorimetric = 7
	ColorimetricITUR601_525 Colorimetric = 8
	ColorimetricNTSCCompositeVideo Colorimetric = 9
	ColorimetricPALCompositeVideo Colorimetric = 10
	ColorimetricUndefined  Colorimetric = 0xFF
)

// ColorDifferenceSiting records how chroma samples are sited relative to
// their associated luma samples. Only stored; chroma-subsampling geometry
// handling beyond this tag is a non-goal.
type ColorDifferenceSiting uint16

// BitSizeUndefined is the zero value of ImageElementHeader.BitSize: no
// valid DPX bit depth (1, 8, 10, 12, 16, 32, 64) is zero, so it doubles as
// the undefined sentinel OpenForWriting must reject.
const BitSizeUndefined = 0

// UndefinedOffset is the reserved "not yet known" value for DataOffset
// fields, matching the reference's UNDEFINED_U32. A row-0 RLE write with
// this DataOffset falls back to the file map's per-element offset table.
const UndefinedOffset uint32 = 0xFFFFFFFF

// ImageElementHeader carries the per-element fields named in spec.md §6:
// data sign, descriptor, transfer/colorimetric tags, packing geometry, the
// reference low/high data-code and quantity pair, the element's byte
// offset into the file, end-of-line/end-of-image padding byte counts, and
// a free-text description.
type ImageElementHeader struct {
	DataSign     DataSign
	Descriptor   descriptor.Descriptor
	Transfer     Transfer
	Colorimetric Colorimetric
	BitSize      int
	Packing      rowcodec.Packing
	Encoding     rowcodec.Encoding

	DataOffset        uint32
	EndOfLinePadding   uint32
	EndOfImagePadding  uint32

	LowData     uint32 // reinterpret as float32 via math.Float32frombits when BitSize is 32/64
	LowQuantity  float32
	HighData    uint32
	HighQuantity float32

	Description string
}

// FileHeader carries the file-wide fields named in spec.md §6: pixel
// geometry shared by every image element, chroma-subsampling declaration,
// datum mapping direction, and byte-swap detection via the magic number.
type FileHeader struct {
	Magic string // "SDPX" (big-endian on disk) or "XPDS" (little-endian on disk)

	PixelsPerLine       uint32
	LinesPerElement     uint32
	ChromaSubsampling   ColorDifferenceSiting
	DatumMappingDirectionR2L bool

	ImageElements [8]ImageElementHeader
	NumElements   int
}

// ByteSwap reports whether the host must byte-swap 32-bit words read from
// or written to this file, determined from the magic number: "SDPX" is
// stored big-endian, "XPDS" little-endian.
func (h *FileHeader) ByteSwap(hostLittleEndian bool) bool {
	fileBigEndian := h.Magic == "SDPX"
	return fileBigEndian == hostLittleEndian
}
