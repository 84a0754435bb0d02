// Package dpx implements the per-image-element runtime (IERuntime) that
// drives internal/bitfifo, internal/descriptor and internal/rowcodec
// against a caller-supplied Stream and FileMap.
package dpx

import (
	"github.com/pkg/errors"

	"github.com/deepteams/dpx/internal/descriptor"
	"github.com/deepteams/dpx/internal/rowcodec"
)

type openMode int

const (
	closedMode openMode = iota
	readMode
	writeMode
)

// Element is the runtime state for one image element within a DPX file:
// its header, the Stream it reads/writes words through, the FileMap it
// coordinates RLE ownership through, and the RLE byte-cursor that must
// persist across sequential row calls.
type Element struct {
	index   int
	file    *FileHeader
	ie      *ImageElementHeader
	stream  Stream
	fileMap FileMap
	errlog  ErrorLog

	initialized bool
	mode        openMode
	headerLock  bool
	byteSwap    bool

	warn rowcodec.Warnings

	// rleCursor is not updated by the row calls: an RLE element's next row
	// starts at the stream position the previous row call left behind.
	rleCursor   int64
	rleStarted  bool
	nextRLERow  uint32
}

// Initialize binds an Element to its header, index within the file, and
// I/O collaborators. It must be called before any Open* call.
func (e *Element) Initialize(file *FileHeader, index int, stream Stream, fileMap FileMap) error {
	if file == nil || index < 0 || index >= len(file.ImageElements) {
		e.errlog.Log(Fatal, ErrBadParameter, "Initialize: invalid file header or index")
		return errors.WithStack(ErrBadParameter)
	}
	e.file = file
	e.ie = &file.ImageElements[index]
	e.index = index
	e.stream = stream
	e.fileMap = fileMap
	e.initialized = true
	e.mode = closedMode
	e.headerLock = false
	e.errlog.Reset()
	return nil
}

func (e *Element) requireInitialized() error {
	if !e.initialized {
		e.errlog.Log(Fatal, ErrNotInitialized, "")
		return errors.WithStack(ErrNotInitialized)
	}
	return nil
}

// OpenForReading prepares the element for ReadRow* calls. byteSwap should
// reflect the file's on-disk endianness versus host order, typically
// FileHeader.ByteSwap.
func (e *Element) OpenForReading(byteSwap bool) error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	if e.mode != closedMode {
		e.errlog.Log(Error, ErrAlreadyOpen, "")
		return errors.WithStack(ErrAlreadyOpen)
	}
	e.mode = readMode
	e.byteSwap = byteSwap
	e.rleStarted = false
	e.nextRLERow = 0
	e.warn = rowcodec.Warnings{}
	return nil
}

// OpenForWriting prepares the element for WriteRow* calls.
func (e *Element) OpenForWriting(byteSwap bool) error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	if e.mode != closedMode {
		e.errlog.Log(Error, ErrAlreadyOpen, "")
		return errors.WithStack(ErrAlreadyOpen)
	}
	if e.ie.Descriptor == descriptor.DescUndefined {
		e.errlog.Log(Fatal, ErrUnsupportedDatum, "OpenForWriting: cannot write without a descriptor field")
		return errors.WithStack(ErrUnsupportedDatum)
	}
	if e.ie.BitSize == BitSizeUndefined {
		e.errlog.Log(Fatal, ErrUnsupportedDatum, "OpenForWriting: cannot write without a bit depth field")
		return errors.WithStack(ErrUnsupportedDatum)
	}
	e.mode = writeMode
	e.byteSwap = byteSwap
	e.rleStarted = false
	e.nextRLERow = 0
	e.warn = rowcodec.Warnings{}
	return nil
}

// LockHeader freezes header fields against further mutation; callers must
// lock before any row I/O on a write-mode element so the geometry used to
// compute offsets cannot change mid-stream.
func (e *Element) LockHeader() { e.headerLock = true }

// UnlockHeader releases the lock set by LockHeader.
func (e *Element) UnlockHeader() { e.headerLock = false }

func (e *Element) params() rowcodec.Params {
	return rowcodec.Params{
		BitSize:      e.ie.BitSize,
		Packing:      e.ie.Packing,
		Encoding:     e.ie.Encoding,
		Signed:       e.ie.DataSign == Signed,
		DirectionR2L: e.file.DatumMappingDirectionR2L,
		ByteSwap:     e.byteSwap,
		Components:   e.GetNumberOfComponents(),
	}
}

// GetWidth returns the element's row width in pixels.
func (e *Element) GetWidth() uint32 { return e.file.PixelsPerLine }

// GetHeight returns the element's number of rows.
func (e *Element) GetHeight() uint32 { return e.file.LinesPerElement }

// GetNumberOfComponents returns the component count implied by this
// element's descriptor.
func (e *Element) GetNumberOfComponents() int {
	return descriptor.NumComponents(e.ie.Descriptor)
}

// GetDatumLabels returns the ordered component-label list for this
// element's descriptor.
func (e *Element) GetDatumLabels() []descriptor.Label {
	return descriptor.ToDatumList(e.ie.Descriptor)
}

// DatumLabelToName returns the display name for a component label.
func (e *Element) DatumLabelToName(l descriptor.Label) string { return l.String() }

// GetRowSizeInDatums returns width * components, the number of samples in
// one row regardless of how they are packed on disk.
func (e *Element) GetRowSizeInDatums() uint32 {
	return e.GetWidth() * uint32(e.GetNumberOfComponents())
}

// GetRowSizeInBytes returns the on-disk byte size of one row for a non-RLE
// element, optionally including end-of-line padding.
func (e *Element) GetRowSizeInBytes(includePadding bool) uint32 {
	return rowcodec.RowSizeInBytes(e.GetNumberOfComponents(), e.GetWidth(), e.ie.BitSize, e.ie.Packing, includePadding, e.ie.EndOfLinePadding)
}

// GetImageDataSizeInBytes returns the total non-RLE size of this element's
// image data: GetRowSizeInBytes(true) * height, plus end-of-image padding.
// For RLE elements this is only a pre-allocation hint, not the actual size.
func (e *Element) GetImageDataSizeInBytes() uint32 {
	return e.GetRowSizeInBytes(true)*e.GetHeight() + e.ie.EndOfImagePadding
}

// GetOffsetForRow returns the byte offset of the given row's data relative
// to the element's DataOffset, valid only for non-RLE elements where every
// row has a fixed size.
func (e *Element) GetOffsetForRow(row uint32) (uint32, error) {
	if e.ie.Encoding == rowcodec.RLE {
		e.errlog.Log(Error, ErrUnsupportedDatum, "GetOffsetForRow: element is RLE-encoded, rows are not fixed-size")
		return 0, errors.WithStack(ErrUnsupportedDatum)
	}
	if row >= e.GetHeight() {
		e.errlog.Log(Error, ErrRowOutOfRange, "")
		return 0, errors.WithStack(ErrRowOutOfRange)
	}
	return row * e.GetRowSizeInBytes(true), nil
}

// seekForRow positions the stream at the start of the given row's data,
// either by direct offset computation (non-RLE) or by requiring the
// caller to have read/written every prior row in order (RLE).
func (e *Element) seekForRow(row uint32) error {
	if e.ie.Encoding != rowcodec.RLE {
		off, err := e.GetOffsetForRow(row)
		if err != nil {
			return err
		}
		return e.stream.Seek(int64(e.ie.DataOffset) + int64(off))
	}
	if !e.rleStarted {
		if row != 0 {
			e.errlog.Log(Error, ErrRowOutOfRange, "RLE elements must be accessed from row 0 sequentially")
			return errors.WithStack(ErrRowOutOfRange)
		}
		if e.mode == writeMode && e.fileMap.GetActiveRLEIndex() != e.index {
			e.errlog.Log(Warning, ErrRLENotActiveWriter, "write row failed because RLE elements have to be written sequentially")
			return errors.WithStack(ErrRLENotActiveWriter)
		}
		dataOffset := e.ie.DataOffset
		if dataOffset == UndefinedOffset {
			offsets := e.fileMap.GetRLEIEDataOffsets()
			if e.index >= len(offsets) || offsets[e.index] == UndefinedOffset {
				e.errlog.Log(Fatal, ErrBadParameter, "seekForRow: could not find valid image data offset")
				return errors.WithStack(ErrBadParameter)
			}
			dataOffset = offsets[e.index]
			e.ie.DataOffset = dataOffset
		}
		if err := e.stream.Seek(int64(dataOffset)); err != nil {
			return err
		}
		e.rleStarted = true
		e.nextRLERow = 0
	}
	if row != e.nextRLERow {
		e.errlog.Log(Error, ErrRowOutOfRange, "RLE elements must be accessed sequentially")
		return errors.WithStack(ErrRowOutOfRange)
	}
	return nil
}

func (e *Element) advanceRLERow() {
	e.nextRLERow++
}

func (e *Element) mergeWarnings(w rowcodec.Warnings) {
	e.warn.UnexpectedNonZeroPadding = e.warn.UnexpectedNonZeroPadding || w.UnexpectedNonZeroPadding
	e.warn.PaddingWordMask |= w.PaddingWordMask
	e.warn.ZeroRunLength = e.warn.ZeroRunLength || w.ZeroRunLength
	e.warn.RLESamePastEOL = e.warn.RLESamePastEOL || w.RLESamePastEOL
	e.warn.RLEDiffPastEOL = e.warn.RLEDiffPastEOL || w.RLEDiffPastEOL
}

// Warnings returns the warnings accumulated since the element was opened
// or ResetWarnings was last called.
func (e *Element) Warnings() rowcodec.Warnings { return e.warn }

// ResetWarnings clears the accumulated warning flags.
func (e *Element) ResetWarnings() { e.warn = rowcodec.Warnings{} }

// Err returns the element's accumulated error log.
func (e *Element) Err() *ErrorLog { return &e.errlog }

// ReadRowInt decodes row into dst, which must have length >=
// GetRowSizeInDatums(). Valid for bit sizes 1, 8, 10, 12, 16.
func (e *Element) ReadRowInt(row uint32, dst []int32) error {
	if e.mode != readMode {
		e.errlog.Log(Error, ErrNotOpen, "")
		return errors.WithStack(ErrNotOpen)
	}
	if err := e.seekForRow(row); err != nil {
		return err
	}
	w, err := rowcodec.DecodeRowInt(e.stream, e.params(), e.GetWidth(), dst)
	e.mergeWarnings(w)
	if err != nil {
		e.errlog.Log(Error, ErrShortRead, err.Error())
		return errors.Wrapf(ErrShortRead, "row %d: %v", row, err)
	}
	if e.ie.Encoding == rowcodec.RLE {
		e.advanceRLERow()
	}
	return nil
}

// ReadRowF32 decodes row into dst as 32-bit float samples (bit size 32).
func (e *Element) ReadRowF32(row uint32, dst []float32) error {
	if e.mode != readMode {
		e.errlog.Log(Error, ErrNotOpen, "")
		return errors.WithStack(ErrNotOpen)
	}
	if err := e.seekForRow(row); err != nil {
		return err
	}
	w, err := rowcodec.DecodeRowF32(e.stream, e.params(), e.GetWidth(), dst)
	e.mergeWarnings(w)
	if err != nil {
		e.errlog.Log(Error, ErrShortRead, err.Error())
		return errors.Wrapf(ErrShortRead, "row %d: %v", row, err)
	}
	return nil
}

// ReadRowF64 decodes row into dst as 64-bit float samples (bit size 64).
func (e *Element) ReadRowF64(row uint32, dst []float64) error {
	if e.mode != readMode {
		e.errlog.Log(Error, ErrNotOpen, "")
		return errors.WithStack(ErrNotOpen)
	}
	if err := e.seekForRow(row); err != nil {
		return err
	}
	w, err := rowcodec.DecodeRowF64(e.stream, e.params(), e.GetWidth(), dst)
	e.mergeWarnings(w)
	if err != nil {
		e.errlog.Log(Error, ErrShortRead, err.Error())
		return errors.Wrapf(ErrShortRead, "row %d: %v", row, err)
	}
	return nil
}

// WriteRowInt encodes src into row. src must have length >=
// GetRowSizeInDatums(). For an RLE element, writing the last row also
// records the region end in the FileMap and advances its active RLE index.
func (e *Element) WriteRowInt(row uint32, src []int32) error {
	if e.mode != writeMode {
		e.errlog.Log(Error, ErrNotOpen, "")
		return errors.WithStack(ErrNotOpen)
	}
	if err := e.seekForRow(row); err != nil {
		return err
	}
	w, err := rowcodec.EncodeRowInt(e.stream, e.params(), e.GetWidth(), src)
	e.mergeWarnings(w)
	if err != nil {
		e.errlog.Log(Error, ErrShortWrite, err.Error())
		return errors.Wrapf(ErrShortWrite, "row %d: %v", row, err)
	}
	if e.ie.Encoding == rowcodec.RLE {
		e.advanceRLERow()
		if row == e.GetHeight()-1 {
			e.markRLEComplete()
		}
	}
	return nil
}

// WriteRowF32 encodes src into row as 32-bit float samples.
func (e *Element) WriteRowF32(row uint32, src []float32) error {
	if e.mode != writeMode {
		e.errlog.Log(Error, ErrNotOpen, "")
		return errors.WithStack(ErrNotOpen)
	}
	if err := e.seekForRow(row); err != nil {
		return err
	}
	w, err := rowcodec.EncodeRowF32(e.stream, e.params(), e.GetWidth(), src)
	e.mergeWarnings(w)
	if err != nil {
		e.errlog.Log(Error, ErrShortWrite, err.Error())
		return errors.Wrapf(ErrShortWrite, "row %d: %v", row, err)
	}
	return nil
}

// WriteRowF64 encodes src into row as 64-bit float samples.
func (e *Element) WriteRowF64(row uint32, src []float64) error {
	if e.mode != writeMode {
		e.errlog.Log(Error, ErrNotOpen, "")
		return errors.WithStack(ErrNotOpen)
	}
	if err := e.seekForRow(row); err != nil {
		return err
	}
	w, err := rowcodec.EncodeRowF64(e.stream, e.params(), e.GetWidth(), src)
	e.mergeWarnings(w)
	if err != nil {
		e.errlog.Log(Error, ErrShortWrite, err.Error())
		return errors.Wrapf(ErrShortWrite, "row %d: %v", row, err)
	}
	return nil
}

func (e *Element) markRLEComplete() {
	if e.fileMap == nil {
		return
	}
	off, err := e.stream.Tell()
	if err == nil {
		e.fileMap.EditRegionEnd(e.index, uint32(off))
	}
	e.fileMap.AdvanceRLEIE()
}

// BytesUsed reports the number of data bytes this element occupies: for
// non-RLE elements this is always GetImageDataSizeInBytes(); for RLE
// elements it is the file map's recorded region end minus DataOffset, which
// is recorded when the last row is written (0 while that entry is still
// below DataOffset).
func (e *Element) BytesUsed() uint32 {
	if e.ie.Encoding != rowcodec.RLE {
		return e.GetImageDataSizeInBytes()
	}
	if e.fileMap == nil {
		return 0
	}
	offsets := e.fileMap.GetRLEIEDataOffsets()
	if e.index >= len(offsets) {
		return 0
	}
	end := offsets[e.index]
	if end < e.ie.DataOffset {
		return 0
	}
	return end - e.ie.DataOffset
}

// CopyHeaderFrom overwrites this element's header with a copy of src. It
// fails if the header is locked.
func (e *Element) CopyHeaderFrom(src *ImageElementHeader) error {
	if e.headerLock {
		e.errlog.Log(Error, ErrHeaderLocked, "")
		return errors.WithStack(ErrHeaderLocked)
	}
	*e.ie = *src
	return nil
}
