package elf

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Magic is the identification prefix of every ELF file.
var Magic = []byte{0x7f, 'E', 'L', 'F'}

// Identification byte indexes.
const (
	eiClass      = 4
	eiData       = 5
	eiVersion    = 6
	eiOSABI      = 7
	eiABIVersion = 8
)

// Container is one ELF file held in memory together with its decoded
// identification. It is never mutated after construction.
type Container struct {
	Reader     *Reader
	Layout     Layout
	Ident      [identSize]byte
	Version    uint8
	OSABI      OSABI
	ABIVersion uint8
}

// Identify validates the identification bytes of data and returns the
// Container describing it. No header field beyond e_ident is interpreted.
func Identify(data []byte) (*Container, error) {
	r := NewReader(data)
	if r.Len() < uint64(len(Magic)) || !bytes.Equal(data[:len(Magic)], Magic) {
		return nil, newDecodeError(KindInvalidMagic, 0, "first bytes % x", head(data, len(Magic)))
	}
	ident, err := r.Bytes(0, identSize)
	if err != nil {
		return nil, newDecodeError(KindTruncatedHeader, 0,
			"identification needs %d bytes, file has %d", identSize, r.Len())
	}

	class := Class(ident[eiClass])
	if class != Class32 && class != Class64 {
		return nil, newDecodeError(KindUnsupportedClass, eiClass, "class byte %d", ident[eiClass])
	}
	enc := Data(ident[eiData])
	if enc != Data2LSB && enc != Data2MSB {
		return nil, newDecodeError(KindUnsupportedEncoding, eiData, "encoding byte %d", ident[eiData])
	}

	c := &Container{
		Reader:     r,
		Layout:     Layout{Class: class, Data: enc},
		Version:    ident[eiVersion],
		OSABI:      OSABI(ident[eiOSABI]),
		ABIVersion: ident[eiABIVersion],
	}
	copy(c.Ident[:], ident)
	return c, nil
}

// Open reads the file at path in full and identifies it. The file handle is
// released before decoding begins.
func Open(path string) (*Container, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Identify(data)
}

// ReadFile loads path into memory, mapping failures to ErrFileNotFound or
// ErrFileUnreadable.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrFileUnreadable, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	if st, err := f.Stat(); err == nil {
		if st.IsDir() {
			return nil, fmt.Errorf("%w: %s is a directory", ErrFileUnreadable, path)
		}
		buf.Grow(int(st.Size()))
	}
	if _, err := buf.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileUnreadable, err)
	}
	return buf.Bytes(), nil
}

// Size returns the container length in bytes.
func (c *Container) Size() uint64 {
	return c.Reader.Len()
}

func head(b []byte, n int) []byte {
	if len(b) < n {
		return b
	}
	return b[:n]
}
