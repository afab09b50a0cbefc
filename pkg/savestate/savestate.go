// Package savestate implements the chunked save-state container format
// named in spec.md §6: 4-byte tags ("BRD ", "PRGB", "M2 ", "A12 ", ...)
// each carrying a little-endian-packed byte blob, plus a small
// explicit-width field packer matching spec.md §9's "derive-style
// per-struct packer that enumerates fields with explicit widths."
package savestate

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrChunkMissing and ErrChunkSize are the two checked-failure cases
// spec.md §7 calls out for save-state loading ("unexpected size or
// missing required chunk -> load fails atomically").
var (
	ErrChunkMissing = errors.New("savestate: required chunk missing")
	ErrChunkSize    = errors.New("savestate: chunk size mismatch")
)

const tagLen = 4

// Chunk is one named byte blob.
type Chunk struct {
	Tag  string
	Data []byte
}

// Container holds an ordered set of chunks, built up by AddChunk calls
// from each subsystem (board, M2 timer, A12 timer) before Marshal.
type Container struct {
	Chunks []Chunk
}

// AddChunk appends a chunk, padding or validating its tag to exactly 4
// bytes as the format requires.
func (c *Container) AddChunk(tag string, data []byte) {
	c.Chunks = append(c.Chunks, Chunk{Tag: normalizeTag(tag), Data: data})
}

func normalizeTag(tag string) string {
	if len(tag) >= tagLen {
		return tag[:tagLen]
	}
	return tag + string(make([]byte, tagLen-len(tag)))
}

// Find returns the named chunk's data, or ErrChunkMissing.
func (c *Container) Find(tag string) ([]byte, error) {
	tag = normalizeTag(tag)
	for _, ch := range c.Chunks {
		if ch.Tag == tag {
			return ch.Data, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrChunkMissing, tag)
}

// FindExact is Find plus a required-length check, for chunks whose size
// is fixed by their packer layout.
func (c *Container) FindExact(tag string, wantLen int) ([]byte, error) {
	data, err := c.Find(tag)
	if err != nil {
		return nil, err
	}
	if len(data) != wantLen {
		return nil, fmt.Errorf("%w: %q has %d bytes, want %d", ErrChunkSize, tag, len(data), wantLen)
	}
	return data, nil
}

// Marshal serializes every chunk as tag + 4-byte little-endian length +
// data.
func Marshal(c *Container) []byte {
	var out []byte
	for _, ch := range c.Chunks {
		out = append(out, []byte(ch.Tag)...)
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(ch.Data)))
		out = append(out, lenBuf[:]...)
		out = append(out, ch.Data...)
	}
	return out
}

// Unmarshal parses a Marshal-produced buffer back into a Container.
func Unmarshal(buf []byte) (*Container, error) {
	c := &Container{}
	for len(buf) > 0 {
		if len(buf) < tagLen+4 {
			return nil, fmt.Errorf("savestate: truncated chunk header")
		}
		tag := string(buf[:tagLen])
		size := binary.LittleEndian.Uint32(buf[tagLen : tagLen+4])
		buf = buf[tagLen+4:]
		if uint32(len(buf)) < size {
			return nil, fmt.Errorf("savestate: chunk %q truncated body", tag)
		}
		data := make([]byte, size)
		copy(data, buf[:size])
		buf = buf[size:]
		c.Chunks = append(c.Chunks, Chunk{Tag: tag, Data: data})
	}
	return c, nil
}

// Writer packs explicit-width fields into a growing byte slice, little
// endian, mirroring the per-struct STATE_8BIT/STATE_16BIT/STATE_32BIT
// item lists the original implementation hand-wrote per subsystem.
type Writer struct{ buf []byte }

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) U8(v uint8)   { w.buf = append(w.buf, v) }
func (w *Writer) Bool(v bool) {
	if v {
		w.U8(1)
	} else {
		w.U8(0)
	}
}
func (w *Writer) U16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *Writer) U32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *Writer) I32(v int32) { w.U32(uint32(v)) }
func (w *Writer) Bytes(v []byte) {
	w.buf = append(w.buf, v...)
}
func (w *Writer) Bytes16(n int, get func(i int) uint16) {
	for i := 0; i < n; i++ {
		w.U16(get(i))
	}
}
func (w *Writer) Bytes32(n int, get func(i int) uint32) {
	for i := 0; i < n; i++ {
		w.U32(get(i))
	}
}
func (w *Writer) Done() []byte { return w.buf }

// Reader unpacks a Writer-produced blob in the same field order.
type Reader struct {
	buf []byte
	pos int
}

func NewReader(buf []byte) *Reader { return &Reader{buf: buf} }

func (r *Reader) U8() uint8 {
	v := r.buf[r.pos]
	r.pos++
	return v
}
func (r *Reader) Bool() bool { return r.U8() != 0 }
func (r *Reader) U16() uint16 {
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v
}
func (r *Reader) U32() uint32 {
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v
}
func (r *Reader) I32() int32 { return int32(r.U32()) }
func (r *Reader) Bytes(n int) []byte {
	v := r.buf[r.pos : r.pos+n]
	r.pos += n
	return v
}
