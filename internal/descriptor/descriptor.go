// Package descriptor implements the DPX descriptor byte <-> component-label
// list mapping. Both directions are pure, total functions with no shared
// mutable state.
package descriptor

// Label identifies one component (one channel of one pixel).
type Label int

const (
	Unspec Label = iota
	R
	G
	B
	A
	Y
	Cb
	Cr
	Z
	Composite
	A2
	Y2
	C
	Unspec2
	Unspec3
	Unspec4
	Unspec5
	Unspec6
	Unspec7
	Unspec8
)

// String returns the display name used in diagnostics, matching the
// reference DatumLabelToName table.
func (l Label) String() string {
	switch l {
	case Unspec:
		return "Unspec"
	case R:
		return "R"
	case G:
		return "G"
	case B:
		return "B"
	case A:
		return "A"
	case Y:
		return "Y"
	case Cb:
		return "Cb"
	case Cr:
		return "Cr"
	case Z:
		return "Z"
	case Composite:
		return "Composite"
	case A2:
		return "A2"
	case Y2:
		return "Y2"
	case C:
		return "C"
	case Unspec2:
		return "Unspec2"
	case Unspec3:
		return "Unspec3"
	case Unspec4:
		return "Unspec4"
	case Unspec5:
		return "Unspec5"
	case Unspec6:
		return "Unspec6"
	case Unspec7:
		return "Unspec7"
	case Unspec8:
		return "Unspec8"
	}
	return "Unrecognized"
}

// Descriptor is the raw byte code identifying which components an image
// element carries and in what order. Values follow SMPTE 268 numbering:
// single components and the CbCr/composite/Z group occupy the low range,
// the legacy ("268-1") packed RGB codes occupy the 50s, the luma/chroma
// groups occupy 100-105, the newer RGB/BGR permutations occupy 120-125, and
// Generic2..Generic8 (user-defined element counts) occupy 150-156.
type Descriptor uint8

const (
	DescUser      Descriptor = 0
	DescR         Descriptor = 1
	DescG         Descriptor = 2
	DescB         Descriptor = 3
	DescA         Descriptor = 4
	DescY         Descriptor = 6
	DescCbCr      Descriptor = 7
	DescZ         Descriptor = 8
	DescComposite Descriptor = 9
	DescCb        Descriptor = 10
	DescCr        Descriptor = 11

	DescRGB268_1  Descriptor = 50
	DescRGBA268_1 Descriptor = 51
	DescABGR268_1 Descriptor = 52

	DescCbYCrY   Descriptor = 100
	DescCbYACrYA Descriptor = 101
	DescCbYCr    Descriptor = 102
	DescCbYCrA   Descriptor = 103
	DescCYY      Descriptor = 104
	DescCYAYA    Descriptor = 105

	DescRGB  Descriptor = 120
	DescRGBA Descriptor = 121
	DescABGR Descriptor = 122
	DescBGR  Descriptor = 123
	DescBGRA Descriptor = 124
	DescARGB Descriptor = 125

	DescGeneric2 Descriptor = 150
	DescGeneric3 Descriptor = 151
	DescGeneric4 Descriptor = 152
	DescGeneric5 Descriptor = 153
	DescGeneric6 Descriptor = 154
	DescGeneric7 Descriptor = 155
	DescGeneric8 Descriptor = 156

	DescUndefined Descriptor = 0xFF
	// DescNone is the sentinel returned by ToDescriptor when no known
	// descriptor matches a given component list.
	DescNone Descriptor = 0xFF
)

// ToDatumList maps a descriptor byte to its ordered component-label list.
// Unknown descriptors map to a single Unspec component, matching the
// reference behavior for eDescUser/eDescUndefined.
func ToDatumList(d Descriptor) []Label {
	switch d {
	case DescUser, DescUndefined:
		return []Label{Unspec}
	case DescR:
		return []Label{R}
	case DescG:
		return []Label{G}
	case DescB:
		return []Label{B}
	case DescA:
		return []Label{A}
	case DescY:
		return []Label{Y}
	case DescCbCr:
		return []Label{Cb, Cr}
	case DescZ:
		return []Label{Z}
	case DescComposite:
		return []Label{Composite}
	case DescCb:
		return []Label{Cb}
	case DescCr:
		return []Label{Cr}
	case DescRGB268_1, DescRGB:
		return []Label{R, G, B}
	case DescRGBA268_1, DescRGBA:
		return []Label{R, G, B, A}
	case DescABGR268_1, DescABGR:
		return []Label{A, B, G, R}
	case DescBGR:
		return []Label{B, G, R}
	case DescBGRA:
		return []Label{B, G, R, A}
	case DescARGB:
		return []Label{A, R, G, B}
	case DescCbYCrY:
		return []Label{Cb, Y, Cr, Y2}
	case DescCbYACrYA:
		return []Label{Cb, Y, A, Cr, Y2, A2}
	case DescCbYCr:
		return []Label{Cb, Y, Cr}
	case DescCbYCrA:
		return []Label{Cb, Y, Cr, A}
	case DescCYY:
		return []Label{C, Y, Y2}
	case DescCYAYA:
		return []Label{C, Y, A, Y2, A2}
	case DescGeneric2:
		return []Label{Unspec, Unspec2}
	case DescGeneric3:
		return []Label{Unspec, Unspec2, Unspec3}
	case DescGeneric4:
		return []Label{Unspec, Unspec2, Unspec3, Unspec4}
	case DescGeneric5:
		return []Label{Unspec, Unspec2, Unspec3, Unspec4, Unspec5}
	case DescGeneric6:
		return []Label{Unspec, Unspec2, Unspec3, Unspec4, Unspec5, Unspec6}
	case DescGeneric7:
		return []Label{Unspec, Unspec2, Unspec3, Unspec4, Unspec5, Unspec6, Unspec7}
	case DescGeneric8:
		return []Label{Unspec, Unspec2, Unspec3, Unspec4, Unspec5, Unspec6, Unspec7, Unspec8}
	}
	return []Label{Unspec}
}

// fromListTable lists, in reference-table order, every canonical label
// sequence that maps back to a single descriptor. ToDescriptor returns the
// first match, matching the original's if/else-if chain — in particular
// the four-component ARGB and ABGR label sequences both resolve to
// DescARGB, reproducing a duplicate-mapping quirk present in the
// reference DatumListToDescriptor. This function is intentionally not a
// strict inverse of ToDatumList (see SPEC_FULL.md §4.2).
var fromListTable = []struct {
	labels []Label
	desc   Descriptor
}{
	{[]Label{Unspec}, DescUser},
	{[]Label{R}, DescR},
	{[]Label{G}, DescG},
	{[]Label{B}, DescB},
	{[]Label{A}, DescA},
	{[]Label{Y}, DescY},
	{[]Label{Z}, DescZ},
	{[]Label{Composite}, DescComposite},
	{[]Label{Cb}, DescCb},
	{[]Label{Cr}, DescCr},
	{[]Label{Cb, Cr}, DescCbCr},
	{[]Label{Unspec, Unspec2}, DescGeneric2},
	{[]Label{B, G, R}, DescBGR},
	{[]Label{R, G, B}, DescRGB},
	{[]Label{Cb, Y, Cr}, DescCbYCr},
	{[]Label{C, Y, Y2}, DescCYY},
	{[]Label{Unspec, Unspec2, Unspec3}, DescGeneric3},
	{[]Label{B, G, R, A}, DescBGRA},
	{[]Label{A, R, G, B}, DescARGB},
	{[]Label{R, G, B, A}, DescRGBA},
	{[]Label{A, B, G, R}, DescARGB}, // reference quirk: ABGR also resolves to eDescARGB here
	{[]Label{Cb, Y, Cr, Y2}, DescCbYCrY},
	{[]Label{Cb, Y, Cr, A}, DescCbYCrA},
	{[]Label{Unspec, Unspec2, Unspec3, Unspec4}, DescGeneric4},
	{[]Label{C, Y, A, Y2, A2}, DescCYAYA},
	{[]Label{Unspec, Unspec2, Unspec3, Unspec4, Unspec5}, DescGeneric5},
	{[]Label{Cb, Y, A, Cr, Y2, A2}, DescCbYACrYA},
	{[]Label{Unspec, Unspec2, Unspec3, Unspec4, Unspec5, Unspec6}, DescGeneric6},
	{[]Label{Unspec, Unspec2, Unspec3, Unspec4, Unspec5, Unspec6, Unspec7}, DescGeneric7},
	{[]Label{Unspec, Unspec2, Unspec3, Unspec4, Unspec5, Unspec6, Unspec7, Unspec8}, DescGeneric8},
}

func sameLabels(a, b []Label) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ToDescriptor maps a component-label list back to a descriptor byte, or
// returns DescNone (0xFF) if the list does not match any known descriptor.
func ToDescriptor(labels []Label) Descriptor {
	if len(labels) == 0 {
		return DescNone
	}
	for _, e := range fromListTable {
		if sameLabels(e.labels, labels) {
			return e.desc
		}
	}
	return DescNone
}

// IsHSubsampled reports whether an element carrying this descriptor is
// horizontally subsampled.
func IsHSubsampled(d Descriptor) bool {
	switch d {
	case DescCb, DescCr, DescCbCr, DescCbYCrY, DescCbYACrYA, DescCYY, DescCYAYA:
		return true
	}
	return false
}

// IsVSubsampled reports whether an element carrying this descriptor is
// vertically subsampled. Only Cb-only and Cr-only elements are.
func IsVSubsampled(d Descriptor) bool {
	return d == DescCb || d == DescCr
}

// NumComponents is a convenience wrapper returning len(ToDatumList(d)).
func NumComponents(d Descriptor) int {
	return len(ToDatumList(d))
}
