package dpxfile

// MemFileMap is an in-memory dpx.FileMap: it tracks which image element
// index currently owns RLE writing and the end-of-data offset recorded
// for each element so far. Only one element may be RLE-active at a time,
// matching the constraint that RLE elements have no fixed size and so
// must be written (or at least have their end located) before any
// element after them can be addressed.
type MemFileMap struct {
	activeRLE int
	offsets   []uint32
}

// NewMemFileMap creates a FileMap for a file with the given number of
// image elements. activeRLE is the index of the first RLE-encoded
// element, or -1 if none of the file's elements use RLE.
func NewMemFileMap(numElements int, activeRLE int) *MemFileMap {
	return &MemFileMap{
		activeRLE: activeRLE,
		offsets:   make([]uint32, numElements),
	}
}

func (m *MemFileMap) GetActiveRLEIndex() int { return m.activeRLE }

func (m *MemFileMap) GetRLEIEDataOffsets() []uint32 { return m.offsets }

func (m *MemFileMap) EditRegionEnd(ieIndex int, endOffset uint32) {
	if ieIndex < 0 || ieIndex >= len(m.offsets) {
		return
	}
	m.offsets[ieIndex] = endOffset
}

func (m *MemFileMap) AdvanceRLEIE() {
	if m.activeRLE < 0 {
		return
	}
	next := m.activeRLE + 1
	if next >= len(m.offsets) {
		m.activeRLE = -1
		return
	}
	m.activeRLE = next
}
