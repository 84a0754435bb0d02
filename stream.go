package dpx

// Stream is the minimal I/O contract an Element needs from its backing
// file or buffer: byte-offset seeking plus whole-32-bit-word reads and
// writes. Implementations decide native vs. byte-swapped wire order
// themselves; the row codec always hands ReadWord/WriteWord native-order
// 4-byte words and applies byte-swap internally per Params.ByteSwap.
type Stream interface {
	Seek(offset int64) error
	Tell() (int64, error)
	ReadWord() (uint32, error)
	WriteWord(v uint32) error
}

// FileMap tracks which image element currently owns RLE-compressed data
// (RLE elements have no fixed row size, so only one element in a file may
// be actively RLE-encoded at a time — the others must have their sizes
// already known) and the data-offset table recording where each element's
// compressed region ends.
type FileMap interface {
	// GetActiveRLEIndex returns the index of the image element currently
	// being RLE-written, or -1 if none is active.
	GetActiveRLEIndex() int
	// GetRLEIEDataOffsets returns the end-of-data byte offset recorded so
	// far for each image element (zero if not yet known).
	GetRLEIEDataOffsets() []uint32
	// EditRegionEnd records the end-of-data byte offset for ieIndex.
	EditRegionEnd(ieIndex int, endOffset uint32)
	// AdvanceRLEIE marks the active RLE element as finished and advances
	// the active index to the next image element, if any.
	AdvanceRLEIE()
}
