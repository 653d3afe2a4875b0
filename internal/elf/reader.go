// Package elf decodes ELF object files into typed records: identification,
// file header, program and section header tables, and the payloads of
// symbol, string and relocation sections.
package elf

import (
	"encoding/binary"
)

// Reader gives bounds-checked access to an immutable byte buffer.
// It holds no cursor, so a single Reader may be shared between goroutines.
type Reader struct {
	data []byte
}

// NewReader wraps data without copying it.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the buffer length in bytes.
func (r *Reader) Len() uint64 {
	return uint64(len(r.data))
}

// Bytes returns length bytes starting at off. The slice aliases the buffer.
func (r *Reader) Bytes(off, length uint64) ([]byte, error) {
	end := off + length
	if end < off || end > r.Len() {
		return nil, newDecodeError(KindOutOfBounds, off,
			"need %d bytes, buffer holds %d", length, r.Len())
	}
	return r.data[off:end:end], nil
}

// Uint reads an unsigned integer of width 1, 2, 4 or 8 bytes at off.
func (r *Reader) Uint(off uint64, width int, order binary.ByteOrder) (uint64, error) {
	b, err := r.Bytes(off, uint64(width))
	if err != nil {
		return 0, err
	}
	switch width {
	case 1:
		return uint64(b[0]), nil
	case 2:
		return uint64(order.Uint16(b)), nil
	case 4:
		return uint64(order.Uint32(b)), nil
	case 8:
		return order.Uint64(b), nil
	}
	return 0, newDecodeError(KindOutOfBounds, off, "unsupported integer width %d", width)
}

// fieldReader walks the fields of one fixed-size record. The first failing
// read is remembered and all later reads return zero, so decoders can read
// a whole record and check err once.
type fieldReader struct {
	r      *Reader
	layout Layout
	off    uint64
	err    error
}

func (l Layout) fields(r *Reader, off uint64) *fieldReader {
	return &fieldReader{r: r, layout: l, off: off}
}

func (f *fieldReader) uint(width int) uint64 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.Uint(f.off, width, f.layout.ByteOrder())
	if err != nil {
		f.err = err
		return 0
	}
	f.off += uint64(width)
	return v
}

func (f *fieldReader) u8() uint8     { return uint8(f.uint(1)) }
func (f *fieldReader) half() uint16  { return uint16(f.uint(2)) }
func (f *fieldReader) word() uint32  { return uint32(f.uint(4)) }
func (f *fieldReader) xword() uint64 { return f.uint(8) }

// addr reads an address, offset or class-sized word.
func (f *fieldReader) addr() uint64 {
	return f.uint(f.layout.AddrSize())
}
