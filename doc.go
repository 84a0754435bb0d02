// Package dpx implements a pure Go reader/writer for the image-data
// payload of SMPTE 268 (DPX) files: the per-row bit-packing, RLE
// encoding, and descriptor/component-label machinery needed to decode
// and encode one image element at a time.
//
// This package does not parse the generic file header or image
// information header itself — see dpxfile for a minimal SMPTE 268-1
// header reader/writer — it only drives row I/O once a caller has
// supplied a FileHeader, a Stream, and (for RLE elements) a FileMap.
//
// Basic usage for reading:
//
//	var e dpx.Element
//	e.Initialize(header, 0, stream, fileMap)
//	e.OpenForReading(header.ByteSwap(hostLittleEndian))
//	row := make([]int32, e.GetRowSizeInDatums())
//	e.ReadRowInt(0, row)
package dpx
