package elf

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// StringMode selects how invalid UTF-8 in a string table is treated.
type StringMode int

const (
	// BestEffort replaces invalid sequences with the Unicode replacement
	// character.
	BestEffort StringMode = iota
	// Strict rejects a table holding any invalid sequence.
	Strict
)

// StringEntry is one NUL-terminated string and its offset in the table.
type StringEntry struct {
	Offset uint32
	Value  string
}

// StringTable is a NUL-separated string blob addressed by byte offset.
type StringTable struct {
	data []byte
}

// NewStringTable wraps the bytes of a string table section.
func NewStringTable(data []byte) *StringTable {
	return &StringTable{data: data}
}

// Lookup returns the string starting at off, ending at the first NUL or at
// the end of the table. Offset 0 always names the empty string.
func (t *StringTable) Lookup(off uint32) (string, bool) {
	if off == 0 && len(t.data) == 0 {
		return "", true
	}
	if int(off) >= len(t.data) {
		return "", false
	}
	rest := t.data[off:]
	if i := bytes.IndexByte(rest, 0); i >= 0 {
		rest = rest[:i]
	}
	return string(rest), true
}

// Entries splits the table on NUL bytes and returns every non-empty string
// in order. In Strict mode an invalid sequence fails with ErrInvalidString.
func (t *StringTable) Entries(mode StringMode) ([]StringEntry, error) {
	var out []StringEntry
	start := 0
	for start < len(t.data) {
		end := bytes.IndexByte(t.data[start:], 0)
		if end < 0 {
			end = len(t.data)
		} else {
			end += start
		}
		if end > start {
			seg := t.data[start:end]
			if !utf8.Valid(seg) {
				if mode == Strict {
					return nil, &DecodeError{
						Kind:   KindFormatInconsistency,
						Offset: uint64(start),
						Msg:    fmt.Sprintf("string at offset %d is not valid UTF-8", start),
						Err:    ErrInvalidString,
					}
				}
				out = append(out, StringEntry{Offset: uint32(start), Value: strings.ToValidUTF8(string(seg), "�")})
			} else {
				out = append(out, StringEntry{Offset: uint32(start), Value: string(seg)})
			}
		}
		start = end + 1
	}
	return out, nil
}

// Segments returns the number of NUL-separated segments, empty ones included.
func (t *StringTable) Segments() int {
	return bytes.Count(t.data, []byte{0}) + 1
}

// PrintableStrings returns the non-empty segments that are printable after
// trimming spaces and dropping invalid UTF-8.
func PrintableStrings(data []byte) []string {
	var out []string
	for _, seg := range bytes.Split(data, []byte{0}) {
		s := strings.ToValidUTF8(strings.TrimSpace(string(seg)), "")
		if s != "" && isPrintable(s) {
			out = append(out, s)
		}
	}
	return out
}
