// Package dpxfile implements a minimal SMPTE 268-1 binary file-header
// reader/writer and an in-memory FileMap, sufficient to open a real .dpx
// file end-to-end. It intentionally does not validate every reserved
// field (no CRC/orientation/timestamp checking); see the package-level
// constants for exactly which byte ranges are read and which are just
// skipped over.
package dpxfile

import (
	"encoding/binary"
	"io"
	"strings"

	"github.com/pkg/errors"
	"math"

	"github.com/deepteams/dpx"
	"github.com/deepteams/dpx/internal/descriptor"
	"github.com/deepteams/dpx/internal/rowcodec"
)

func float32FromBits(b uint32) float32 { return math.Float32frombits(b) }
func float32ToBits(f float32) uint32   { return math.Float32bits(f) }

func descriptorFromByte(b byte) descriptor.Descriptor { return descriptor.Descriptor(b) }

func packingFromUint16(v uint16) rowcodec.Packing {
	switch v {
	case 1:
		return rowcodec.MethodA
	case 2:
		return rowcodec.MethodB
	default:
		return rowcodec.Packed
	}
}

func encodingFromUint16(v uint16) rowcodec.Encoding {
	if v == 1 {
		return rowcodec.RLE
	}
	return rowcodec.NoEncoding
}

// Byte layout of the generic file header, per SMPTE 268-1. Fields this
// package does not interpret (file name, timestamp, creator, project,
// copyright, encryption key, reserved) are skipped but their widths are
// still respected so the image information header lands at the right
// offset.
const (
	genericFileHeaderSize = 768
	imageElementSize      = 72
	imageInfoHeaderSize   = 4 + 2 + 2 + 4 + 4 + 8*imageElementSize + 52
	totalHeaderSize       = genericFileHeaderSize + imageInfoHeaderSize

	offMagic           = 0
	offDataOffset      = 4
	offFileSize        = 16
	offGenericHdrSize  = 24
	offUserHdrSize     = 32

	offOrientation    = genericFileHeaderSize + 0
	offNumElements    = genericFileHeaderSize + 2
	offPixelsPerLine  = genericFileHeaderSize + 4
	offLinesPerElem   = genericFileHeaderSize + 8
	offElementsStart  = genericFileHeaderSize + 12

	// offChromaSubsampling lands in the image information header's
	// trailing reserved region, right after the 8 image-element records.
	offChromaSubsampling = offElementsStart + 8*imageElementSize
)

// Per-element field offsets relative to the start of that element's
// 72-byte record.
const (
	ieOffDataSign      = 0
	ieOffLowData       = 4
	ieOffLowQuantity   = 8
	ieOffHighData      = 12
	ieOffHighQuantity  = 16
	ieOffDescriptor    = 20
	ieOffTransfer      = 21
	ieOffColorimetric  = 22
	ieOffBitSize       = 23
	ieOffPacking       = 24
	ieOffEncoding      = 26
	ieOffDataOffset    = 28
	ieOffEOLPadding    = 32
	ieOffEOIPadding    = 36
	ieOffDescription   = 40
	ieDescriptionLen   = 32
)

// ReadHeader parses a generic file header + image information header from
// r, returning a populated dpx.FileHeader. The stream is left positioned
// immediately after the header (the caller seeks to each element's
// DataOffset for row I/O, so exact trailing position does not matter).
func ReadHeader(r io.Reader) (*dpx.FileHeader, error) {
	buf := make([]byte, totalHeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrap(dpx.ErrShortRead, "dpxfile: reading header")
	}

	magic := string(buf[offMagic : offMagic+4])
	var bo binary.ByteOrder
	switch magic {
	case "SDPX":
		bo = binary.BigEndian
	case "XPDS":
		bo = binary.LittleEndian
	default:
		return nil, errors.Wrapf(dpx.ErrUnrecognizedMagic, "got %q", magic)
	}

	h := &dpx.FileHeader{Magic: magic}
	h.NumElements = int(bo.Uint16(buf[offNumElements:]))
	if h.NumElements < 1 || h.NumElements > 8 {
		h.NumElements = 1
	}
	h.PixelsPerLine = bo.Uint32(buf[offPixelsPerLine:])
	h.LinesPerElement = bo.Uint32(buf[offLinesPerElem:])
	h.DatumMappingDirectionR2L = bo.Uint16(buf[offOrientation:]) == 0
	h.ChromaSubsampling = dpx.ColorDifferenceSiting(bo.Uint16(buf[offChromaSubsampling:]))

	for i := 0; i < 8; i++ {
		base := offElementsStart + i*imageElementSize
		ie := &h.ImageElements[i]
		ie.DataSign = dpx.DataSign(bo.Uint32(buf[base+ieOffDataSign:]))
		ie.LowData = bo.Uint32(buf[base+ieOffLowData:])
		ie.LowQuantity = float32FromBits(bo.Uint32(buf[base+ieOffLowQuantity:]))
		ie.HighData = bo.Uint32(buf[base+ieOffHighData:])
		ie.HighQuantity = float32FromBits(bo.Uint32(buf[base+ieOffHighQuantity:]))
		ie.Descriptor = descriptorFromByte(buf[base+ieOffDescriptor])
		ie.Transfer = dpx.Transfer(buf[base+ieOffTransfer])
		ie.Colorimetric = dpx.Colorimetric(buf[base+ieOffColorimetric])
		ie.BitSize = int(buf[base+ieOffBitSize])
		ie.Packing = packingFromUint16(bo.Uint16(buf[base+ieOffPacking:]))
		ie.Encoding = encodingFromUint16(bo.Uint16(buf[base+ieOffEncoding:]))
		ie.DataOffset = bo.Uint32(buf[base+ieOffDataOffset:])
		ie.EndOfLinePadding = bo.Uint32(buf[base+ieOffEOLPadding:])
		ie.EndOfImagePadding = bo.Uint32(buf[base+ieOffEOIPadding:])
		ie.Description = strings.TrimRight(string(buf[base+ieOffDescription:base+ieOffDescription+ieDescriptionLen]), "\x00")
	}

	return h, nil
}

// WriteHeader serializes h's generic file header + image information
// header to w, byte-order determined by h.Magic.
func WriteHeader(w io.Writer, h *dpx.FileHeader) error {
	buf := make([]byte, totalHeaderSize)
	var bo binary.ByteOrder
	switch h.Magic {
	case "XPDS":
		bo = binary.LittleEndian
	default:
		h.Magic = "SDPX"
		bo = binary.BigEndian
	}
	copy(buf[offMagic:], h.Magic)
	bo.PutUint32(buf[offDataOffset:], h.ImageElements[0].DataOffset)
	bo.PutUint32(buf[offGenericHdrSize:], genericFileHeaderSize)
	bo.PutUint32(buf[offUserHdrSize:], 0)

	bo.PutUint16(buf[offNumElements:], uint16(h.NumElements))
	bo.PutUint32(buf[offPixelsPerLine:], h.PixelsPerLine)
	bo.PutUint32(buf[offLinesPerElem:], h.LinesPerElement)
	if h.DatumMappingDirectionR2L {
		bo.PutUint16(buf[offOrientation:], 0)
	} else {
		bo.PutUint16(buf[offOrientation:], 1)
	}
	bo.PutUint16(buf[offChromaSubsampling:], uint16(h.ChromaSubsampling))

	for i := 0; i < 8; i++ {
		base := offElementsStart + i*imageElementSize
		ie := &h.ImageElements[i]
		bo.PutUint32(buf[base+ieOffDataSign:], uint32(ie.DataSign))
		bo.PutUint32(buf[base+ieOffLowData:], ie.LowData)
		bo.PutUint32(buf[base+ieOffLowQuantity:], float32ToBits(ie.LowQuantity))
		bo.PutUint32(buf[base+ieOffHighData:], ie.HighData)
		bo.PutUint32(buf[base+ieOffHighQuantity:], float32ToBits(ie.HighQuantity))
		buf[base+ieOffDescriptor] = byte(ie.Descriptor)
		buf[base+ieOffTransfer] = byte(ie.Transfer)
		buf[base+ieOffColorimetric] = byte(ie.Colorimetric)
		buf[base+ieOffBitSize] = byte(ie.BitSize)
		bo.PutUint16(buf[base+ieOffPacking:], uint16(ie.Packing))
		bo.PutUint16(buf[base+ieOffEncoding:], uint16(ie.Encoding))
		bo.PutUint32(buf[base+ieOffDataOffset:], ie.DataOffset)
		bo.PutUint32(buf[base+ieOffEOLPadding:], ie.EndOfLinePadding)
		bo.PutUint32(buf[base+ieOffEOIPadding:], ie.EndOfImagePadding)
		copy(buf[base+ieOffDescription:base+ieOffDescription+ieDescriptionLen], ie.Description)
	}

	fileSize := h.ImageElements[0].DataOffset
	bo.PutUint32(buf[offFileSize:], fileSize)

	_, err := w.Write(buf)
	return err
}

// HeaderSize returns the fixed on-disk size, in bytes, of the generic
// file header plus image information header this package writes/reads.
func HeaderSize() uint32 { return totalHeaderSize }
