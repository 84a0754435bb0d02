// Package rowcodec implements the per-row translation between a DPX image
// element's packed bitstream and rows of application-level samples. It
// combines a BitFifo, the packing/direction decision table, and the RLE
// flag-datum state machine.
//
// A row call always starts a fresh internal 16-byte FIFO: any bits left
// over in the FIFO at the end of a row (because padding or RLE consumed a
// non-integral number of 32-bit words before the row's datum count was
// satisfied) are discarded, matching the reference decoder which
// constructs a new Fifo on every ReadRow/WriteRow call and only carries
// the byte-stream cursor across rows.
package rowcodec

import (
	"math"

	"github.com/deepteams/dpx/internal/bitfifo"
)

// Packing selects how datums and pad bits are arranged inside an
// image-data word.
type Packing int

const (
	Packed  Packing = 0
	MethodA Packing = 1
	MethodB Packing = 2
)

// Encoding selects whether row data is RLE-compressed.
type Encoding int

const (
	NoEncoding Encoding = 0
	RLE        Encoding = 1
)

// Params describes the fixed, per-element configuration needed to decode
// or encode one row. It never changes between row calls for a given
// image element.
type Params struct {
	BitSize      int // 1, 8, 10, 12, 16, 32, 64
	Packing      Packing
	Encoding     Encoding
	Signed       bool
	DirectionR2L bool // true = RTL (flip addressing), false = LTR (MSb addressing)
	ByteSwap     bool
	Components   int
}

// Warnings accumulates the non-fatal conditions observed during a single
// row call. Callers merge these into the element's persistent warning
// flags (spec calls for warnings to be sticky across row calls).
type Warnings struct {
	UnexpectedNonZeroPadding bool
	PaddingWordMask          uint32
	ZeroRunLength            bool
	RLESamePastEOL           bool
	RLEDiffPastEOL           bool
}

func (w *Warnings) notePadding(word uint32) {
	w.UnexpectedNonZeroPadding = true
	w.PaddingWordMask |= word
}

// WordReader reads one 32-bit image-data word exactly as stored on disk.
// Byte-swap handling lives in the codec, not the Stream implementation,
// since the codec is what knows the wire order for the current element.
type WordReader interface {
	ReadWord() (uint32, error)
}

// WordWriter mirrors WordReader for the encode path.
type WordWriter interface {
	WriteWord(uint32) error
}

func byteSwap32(w uint32) uint32 {
	return (w&0xff)<<24 | (w&0xff00)<<8 | (w&0xff0000)>>8 | (w >> 24)
}

// byteSwap16 reverses the two low bytes of a 16-bit datum value.
func byteSwap16(v uint32) uint32 {
	return (v&0xff)<<8 | (v&0xff00)>>8
}

// wordByteSwap reports whether fill/flush should byte-swap whole 32-bit
// image-data words for this element. 8-bit and 16-bit direct datums pack
// more than one sample per word, so swapping the word would reorder
// samples instead of fixing their byte order; those bit sizes swap each
// datum's own bytes individually instead (see extractDatum/writeDatum).
func wordByteSwap(p Params) bool {
	return p.ByteSwap && p.BitSize != 8 && p.BitSize != 16
}

// padWidth returns the padding width (in bits) used by Method A/B for the
// given bit size: 2 for 10-bit, 4 for 12-bit.
func padWidth(bitSize int) int {
	if bitSize == 10 {
		return 2
	}
	return 4
}

// rowEngine holds the mutable per-call state shared by the decode and
// encode paths: the private FIFO and a running warnings accumulator.
type rowEngine struct {
	fifo     *bitfifo.FIFO
	warn     Warnings
	lastWord uint32
	// pastEnd is set once fill has stood in a zero word for a look-ahead
	// read beyond the end of the stream.
	pastEnd bool
	// groupCount tracks position within the current Method A/B packing
	// unit on the encode side only: 3 datums share one pad for 10-bit (a
	// 32-bit word holds three 10-bit samples plus one 2-bit pad), 1 datum
	// per pad for 12-bit (each 12-bit sample gets its own 16-bit
	// half-word with a 4-bit pad). The decode side derives the same
	// boundary from FIFO fullness instead, since fill() tops the FIFO up
	// to a full 64-bit window each time a new image-data word is started
	// and every 32-bit word holds a whole number of groups.
	groupCount int
}

// packingUnit returns the number of datums that share one Method A/B pad:
// 3 for 10-bit, 1 for 12-bit.
func packingUnit(bitSize int) int {
	if bitSize == 10 {
		return 3
	}
	return 1
}

func newEngine() *rowEngine {
	return &rowEngine{fifo: bitfifo.New(16)}
}

// fill ensures the FIFO holds more than 32 bits by pulling words from r,
// byte-swapping as configured, and pushing them MSb-first. The image-data
// word is always pushed in MSb order regardless of datum mapping
// direction; direction only affects how datums are later extracted from
// the same byte storage.
func (e *rowEngine) fill(r WordReader, byteSwap bool) error {
	for e.fifo.Fullness() <= 32 {
		word, err := r.ReadWord()
		if err != nil {
			if e.pastEnd || e.fifo.Fullness() == 0 {
				return err
			}
			// The look-ahead word lies past the end of the stream: a zero
			// word stands in for it once, so the fullness-keyed padding
			// positions stay where they are.
			e.pastEnd = true
			e.fifo.PutBitsMSb(0, 32)
			continue
		}
		if byteSwap {
			word = byteSwap32(word)
		}
		e.lastWord = word
		e.fifo.PutBitsMSb(word, 32)
	}
	return nil
}

// extractDatum extracts one datum per the bit-size/packing rules (spec
// §4.3 step 2), accumulating padding warnings against the most recently
// loaded image-data word.
func (e *rowEngine) extractDatum(p Params) int32 {
	bpc := p.BitSize
	switch {
	case bpc == 1 || bpc == 8:
		return e.fifo.GetDatum(bpc, p.Signed, p.DirectionR2L)
	case bpc == 16:
		// Byte order must be corrected before sign-extension, since the
		// sign bit lives at a different physical position in the swapped
		// pattern than in the as-stored one.
		raw := e.fifo.GetDatum(bpc, false, p.DirectionR2L)
		if p.ByteSwap {
			raw = int32(byteSwap16(uint32(raw)))
		}
		if p.Signed && raw&0x8000 != 0 {
			raw |= ^int32(0xffff)
		}
		return raw
	case bpc == 10 || bpc == 12:
		pad := padWidth(bpc)
		switch p.Packing {
		case Packed:
			return e.fifo.GetDatum(bpc, p.Signed, p.DirectionR2L)
		case MethodA:
			if p.DirectionR2L {
				if f := e.fifo.Fullness(); f == 48 || f == 64 {
					if e.fifo.GetBitsFlip(pad) != 0 {
						e.warn.notePadding(e.lastWord)
					}
				}
			}
			d := e.fifo.GetDatum(bpc, p.Signed, p.DirectionR2L)
			if !p.DirectionR2L {
				if f := e.fifo.Fullness(); f == 64-30 {
					if e.fifo.GetBitsMSb(2) != 0 {
						e.warn.notePadding(e.lastWord)
					}
				} else if f := e.fifo.Fullness(); f == 64-12 || f == 64-28 {
					if e.fifo.GetBitsMSb(4) != 0 {
						e.warn.notePadding(e.lastWord)
					}
				}
			}
			return d
		case MethodB:
			if !p.DirectionR2L {
				if f := e.fifo.Fullness(); f == 64 || f == 64-16 {
					if e.fifo.GetBitsMSb(pad) != 0 {
						e.warn.notePadding(e.lastWord)
					}
				}
			}
			d := e.fifo.GetDatum(bpc, p.Signed, p.DirectionR2L)
			if p.DirectionR2L {
				if f := e.fifo.Fullness(); f == 64-30 {
					if e.fifo.GetBitsFlip(2) != 0 {
						e.warn.notePadding(e.lastWord)
					}
				} else if f := e.fifo.Fullness(); f == 64-12 || f == 64-28 {
					if e.fifo.GetBitsFlip(4) != 0 {
						e.warn.notePadding(e.lastWord)
					}
				}
			}
			return d
		}
	}
	return 0
}

// DecodeRowInt decodes one row of integer samples (bit sizes 1, 8, 10, 12,
// 16) into dst, which must have length >= width*components. For RLE
// elements the FIFO state does not cross the call boundary: the caller
// positions r at row 0's data offset, and when r also has Seek/Tell
// methods each call hands back the look-ahead words it did not use, leaving
// r at the end of the row it decoded, where the next row starts.
func DecodeRowInt(r WordReader, p Params, width uint32, dst []int32) (Warnings, error) {
	e := newEngine()
	numC := p.Components
	useRLE := p.Encoding == RLE && p.BitSize <= 16

	var xpos uint32
	component := 0
	rowWr := 0

	rleState := 0 // 0 = expecting flag, 1 = mid-run
	var runLength int32
	rleCount := 0
	rleIsSame := false
	rlePixel := make([]int32, numC)

	wordSwap := wordByteSwap(p)
	for xpos < width && component < numC {
		if err := e.fill(r, wordSwap); err != nil {
			return e.warn, err
		}
		datum := e.extractDatum(p)

		if useRLE {
			switch rleState {
			case 0:
				rleState = 1
				runLength = (datum >> 1) & 0x7FFF
				if runLength == 0 {
					e.warn.ZeroRunLength = true
				}
				rleCount = 0
				rleIsSame = datum&1 != 0
			default:
				dst[rowWr] = datum
				rowWr++
				rlePixel[component] = datum
				if component == numC-1 {
					if rleIsSame {
						if xpos+uint32(runLength) > width {
							e.warn.RLESamePastEOL = true
						}
						for i := int32(1); i < runLength; i++ {
							for c := 0; c < numC; c++ {
								dst[rowWr] = rlePixel[c]
								rowWr++
							}
						}
						component = 0
						step := runLength
						if step < 1 {
							step = 1
						}
						xpos += uint32(step)
						rleState = 0
					} else {
						rleCount++
						xpos++
						component = 0
						if int32(rleCount) >= runLength {
							rleState = 0
						} else if xpos >= width {
							e.warn.RLEDiffPastEOL = true
						}
					}
				} else {
					component++
				}
			}
		} else {
			dst[rowWr] = datum
			rowWr++
			component++
			if component == numC {
				component = 0
				xpos++
			}
		}
	}
	if s, ok := r.(interface {
		Seek(int64) error
		Tell() (int64, error)
	}); ok && useRLE {
		unread := int64(e.fifo.Fullness() / 32)
		if e.pastEnd {
			unread--
		}
		pos, err := s.Tell()
		if err == nil && unread > 0 {
			err = s.Seek(pos - 4*unread)
		}
		if err != nil {
			return e.warn, err
		}
	}
	return e.warn, nil
}

// DecodeRowF32 decodes one row of 32-bit IEEE-754 samples. 32-bit
// elements are never RLE-compressed (the encoder only engages RLE for
// bit sizes <= 16), so this always uses the non-RLE placement loop.
func DecodeRowF32(r WordReader, p Params, width uint32, dst []float32) (Warnings, error) {
	e := newEngine()
	numC := p.Components
	idx := 0
	for x := uint32(0); x < width; x++ {
		for c := 0; c < numC; c++ {
			if err := e.fill(r, p.ByteSwap); err != nil {
				return e.warn, err
			}
			bits := e.fifo.GetBitsMSb(32)
			dst[idx] = math.Float32frombits(bits)
			idx++
		}
	}
	return e.warn, nil
}

// DecodeRowF64 decodes one row of 64-bit IEEE-754 samples, each stored as
// two consecutive 32-bit MSb-first datums, high word first.
func DecodeRowF64(r WordReader, p Params, width uint32, dst []float64) (Warnings, error) {
	e := newEngine()
	numC := p.Components
	idx := 0
	for x := uint32(0); x < width; x++ {
		for c := 0; c < numC; c++ {
			if err := e.fill(r, p.ByteSwap); err != nil {
				return e.warn, err
			}
			hi := e.fifo.GetBitsMSb(32)
			if err := e.fill(r, p.ByteSwap); err != nil {
				return e.warn, err
			}
			lo := e.fifo.GetBitsMSb(32)
			bits := uint64(hi)<<32 | uint64(lo)
			dst[idx] = math.Float64frombits(bits)
			idx++
		}
	}
	return e.warn, nil
}

// flush drains every complete 32-bit word currently buffered, byte-swapping
// and writing each to w. It mirrors fill: fill pushes whole words in MSb
// order before extraction; flush removes them the same way after insertion.
func (e *rowEngine) flush(w WordWriter, byteSwap bool) error {
	for e.fifo.Fullness() >= 32 {
		word := e.fifo.GetBitsMSb(32)
		if byteSwap {
			word = byteSwap32(word)
		}
		if err := w.WriteWord(word); err != nil {
			return err
		}
	}
	return nil
}

// writeDatum inserts one datum per the bit-size/packing rules, emitting the
// same zero padding that extractDatum consumes, then flushes whole words.
// Unlike extractDatum, which can key padding off FIFO fullness because
// fill() restores a full 64-bit window each time an image-data word is
// started, the encode side accumulates from empty, so the group boundary is
// tracked explicitly via groupCount instead.
func (e *rowEngine) writeDatum(w WordWriter, p Params, datum int32) error {
	bpc := p.BitSize
	switch {
	case bpc == 1 || bpc == 8 || bpc == 16:
		v := datum
		if bpc == 16 && p.ByteSwap {
			v = int32(byteSwap16(uint32(v) & 0xffff))
		}
		e.fifo.PutDatum(v, bpc, p.DirectionR2L)
	case bpc == 10 || bpc == 12:
		pad := padWidth(bpc)
		unit := packingUnit(bpc)
		groupStart := e.groupCount == 0
		switch p.Packing {
		case Packed:
			e.fifo.PutDatum(datum, bpc, p.DirectionR2L)
		case MethodA:
			if p.DirectionR2L && groupStart {
				e.fifo.PutBitsFlip(0, pad)
			}
			e.fifo.PutDatum(datum, bpc, p.DirectionR2L)
			e.groupCount++
			groupEnd := e.groupCount == unit
			if groupEnd {
				e.groupCount = 0
			}
			if !p.DirectionR2L && groupEnd {
				e.fifo.PutBitsMSb(0, pad)
			}
		case MethodB:
			if !p.DirectionR2L && groupStart {
				e.fifo.PutBitsMSb(0, pad)
			}
			e.fifo.PutDatum(datum, bpc, p.DirectionR2L)
			e.groupCount++
			groupEnd := e.groupCount == unit
			if groupEnd {
				e.groupCount = 0
			}
			if p.DirectionR2L && groupEnd {
				e.fifo.PutBitsFlip(0, pad)
			}
		}
	}
	return e.flush(w, wordByteSwap(p))
}

func (e *rowEngine) writePixelInt(w WordWriter, p Params, pixel []int32) error {
	for _, d := range pixel {
		if err := e.writeDatum(w, p, d); err != nil {
			return err
		}
	}
	return nil
}

// writeLineEnd pads the FIFO to the next 32-bit boundary with zero bits and
// flushes, matching the reference's end-of-row word alignment.
func (e *rowEngine) writeLineEnd(w WordWriter, p Params) error {
	if rem := e.fifo.Fullness() % 32; rem != 0 {
		e.fifo.PutDatum(0, 32-rem, p.DirectionR2L)
	}
	return e.flush(w, wordByteSwap(p))
}

// pixelEquals reports whether the pixel at column pos equals cmp,
// component-by-component.
func pixelEquals(src []int32, numC int, pos uint32, cmp []int32) bool {
	off := int(pos) * numC
	for c := 0; c < numC; c++ {
		if src[off+c] != cmp[c] {
			return false
		}
	}
	return true
}

// EncodeRowInt encodes one row of integer samples (bit sizes 1, 8, 10, 12,
// 16) from src, which must have length >= width*components. RLE is engaged
// only when p.Encoding is RLE and p.BitSize <= 16, matching the decoder's
// policy of never treating 32/64-bit elements as RLE-able.
func EncodeRowInt(w WordWriter, p Params, width uint32, src []int32) (Warnings, error) {
	e := newEngine()
	numC := p.Components
	useRLE := p.Encoding == RLE && p.BitSize <= 16
	maxRun := int32(1)<<uint(p.BitSize-1) - 1

	var xpos uint32
	for xpos < width {
		if !useRLE {
			off := int(xpos) * numC
			if err := e.writePixelInt(w, p, src[off:off+numC]); err != nil {
				return e.warn, err
			}
			xpos++
			continue
		}

		limit := width - xpos
		if maxRun > 1 && uint32(maxRun-1) < limit {
			limit = uint32(maxRun - 1)
		}
		off := int(xpos) * numC
		pixel := src[off : off+numC]
		nextSame := xpos+1 < width && pixelEquals(src, numC, xpos+1, pixel)
		var runType bool
		if numC > 1 {
			runType = nextSame
		} else {
			// A 1-component run isn't worth declaring unless it lasts more
			// than two pixels (original_source/hdr_dpx_image_element.cpp).
			runType = nextSame && xpos+2 < width && pixelEquals(src, numC, xpos+2, pixel)
		}

		runLength := uint32(1)
		if runType {
			// Extend while the next column still matches the anchor pixel.
			for runLength < limit && pixelEquals(src, numC, xpos+runLength, pixel) {
				runLength++
			}
		} else {
			// Extend while the next column would not itself start a new
			// same-run (i.e. would not equal the column right before it);
			// stop short so that repeat gets its own same-run flag instead
			// of being swallowed into this different-run.
			for runLength < limit {
				anchorOff := int(xpos+runLength-1) * numC
				if pixelEquals(src, numC, xpos+runLength, src[anchorOff:anchorOff+numC]) {
					break
				}
				runLength++
			}
		}

		kind := int32(0)
		if runType {
			kind = 1
		}
		flag := (int32(runLength) << 1) | kind
		if err := e.writeDatum(w, p, flag); err != nil {
			return e.warn, err
		}
		if runType {
			if err := e.writePixelInt(w, p, pixel); err != nil {
				return e.warn, err
			}
		} else {
			for i := uint32(0); i < runLength; i++ {
				poff := int(xpos+i) * numC
				if err := e.writePixelInt(w, p, src[poff:poff+numC]); err != nil {
					return e.warn, err
				}
			}
		}
		xpos += runLength
	}
	if err := e.writeLineEnd(w, p); err != nil {
		return e.warn, err
	}
	return e.warn, nil
}

// EncodeRowF32 encodes one row of 32-bit IEEE-754 samples. Never RLE'd.
func EncodeRowF32(w WordWriter, p Params, width uint32, src []float32) (Warnings, error) {
	e := newEngine()
	numC := p.Components
	idx := 0
	for x := uint32(0); x < width; x++ {
		for c := 0; c < numC; c++ {
			bits := math.Float32bits(src[idx])
			e.fifo.PutBitsMSb(bits, 32)
			if err := e.flush(w, p.ByteSwap); err != nil {
				return e.warn, err
			}
			idx++
		}
	}
	return e.warn, nil
}

// EncodeRowF64 encodes one row of 64-bit IEEE-754 samples, each written as
// two consecutive 32-bit MSb-first words, high word first. Never RLE'd.
func EncodeRowF64(w WordWriter, p Params, width uint32, src []float64) (Warnings, error) {
	e := newEngine()
	numC := p.Components
	idx := 0
	for x := uint32(0); x < width; x++ {
		for c := 0; c < numC; c++ {
			bits := math.Float64bits(src[idx])
			hi := uint32(bits >> 32)
			lo := uint32(bits & 0xffffffff)
			e.fifo.PutBitsMSb(hi, 32)
			if err := e.flush(w, p.ByteSwap); err != nil {
				return e.warn, err
			}
			e.fifo.PutBitsMSb(lo, 32)
			if err := e.flush(w, p.ByteSwap); err != nil {
				return e.warn, err
			}
			idx++
		}
	}
	return e.warn, nil
}

// RowSizeInBytes computes the number of bytes one row occupies on disk for
// a non-RLE element, rounded up to whole 32-bit image-data words, optionally
// adding end-of-line padding bytes. RLE elements have no fixed row size;
// callers must track the RLE data-offset table instead (see FileMap).
func RowSizeInBytes(components int, width uint32, bitSize int, packing Packing, includePadding bool, eolPadding uint32) uint32 {
	n := uint64(width) * uint64(components)
	var totalBits uint64
	switch {
	case bitSize == 10 && packing != Packed:
		words := (n + 2) / 3
		totalBits = words * 32
	case bitSize == 12 && packing != Packed:
		totalBits = n * 16
		totalBits = ((totalBits + 31) / 32) * 32
	default:
		totalBits = n * uint64(bitSize)
		totalBits = ((totalBits + 31) / 32) * 32
	}
	bytes := totalBits / 8
	if includePadding {
		bytes += uint64(eolPadding)
	}
	return uint32(bytes)
}
