package dpxfile

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/deepteams/dpx"
)

// MemStream is an in-memory dpx.Stream backed by a growable byte slice,
// used by tests and the CLI to round-trip a file without touching disk.
type MemStream struct {
	buf []byte
	pos int64
}

// NewMemStream wraps an existing buffer (read path) or starts an empty one
// (write path) for in-memory Stream access.
func NewMemStream(initial []byte) *MemStream {
	buf := make([]byte, len(initial))
	copy(buf, initial)
	return &MemStream{buf: buf}
}

// Bytes returns the stream's current backing buffer.
func (m *MemStream) Bytes() []byte { return m.buf }

func (m *MemStream) Seek(offset int64) error {
	if offset < 0 {
		return errors.WithStack(dpx.ErrBadParameter)
	}
	m.pos = offset
	return nil
}

func (m *MemStream) Tell() (int64, error) { return m.pos, nil }

func (m *MemStream) ReadWord() (uint32, error) {
	if m.pos+4 > int64(len(m.buf)) {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.BigEndian.Uint32(m.buf[m.pos : m.pos+4])
	m.pos += 4
	return v, nil
}

func (m *MemStream) WriteWord(v uint32) error {
	need := m.pos + 4
	if need > int64(len(m.buf)) {
		grown := make([]byte, need)
		copy(grown, m.buf)
		m.buf = grown
	}
	binary.BigEndian.PutUint32(m.buf[m.pos:m.pos+4], v)
	m.pos += 4
	return nil
}
