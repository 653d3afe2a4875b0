package elf

import (
	"fmt"
	"strings"
	"unicode"
)

// DefaultDumpWidth is the number of bytes rendered per hex dump row.
const DefaultDumpWidth = 16

// HexDumpLine is one rendered row of a hex dump.
type HexDumpLine struct {
	Offset uint64
	Bytes  []byte
	ASCII  string
}

// HexDumper renders byte ranges as offset, hex and ASCII columns.
type HexDumper struct {
	Width       int
	Placeholder byte
}

// NewHexDumper returns a dumper with the given row width. Non-positive
// widths fall back to DefaultDumpWidth.
func NewHexDumper(width int, placeholder byte) *HexDumper {
	if width <= 0 {
		width = DefaultDumpWidth
	}
	if placeholder < 0x20 || placeholder > 0x7e {
		placeholder = '.'
	}
	return &HexDumper{Width: width, Placeholder: placeholder}
}

// Lines splits data into rows. A zero-length input yields no rows.
func (d *HexDumper) Lines(data []byte) []HexDumpLine {
	lines := make([]HexDumpLine, 0, (len(data)+d.Width-1)/d.Width)
	for start := 0; start < len(data); start += d.Width {
		end := start + d.Width
		if end > len(data) {
			end = len(data)
		}
		row := data[start:end]
		ascii := make([]byte, len(row))
		for i, b := range row {
			if b >= 0x20 && b <= 0x7e {
				ascii[i] = b
			} else {
				ascii[i] = d.Placeholder
			}
		}
		lines = append(lines, HexDumpLine{Offset: uint64(start), Bytes: row, ASCII: string(ascii)})
	}
	return lines
}

// Format renders one row. The hex column is padded to the full row width
// so the ASCII column of a short final row stays aligned.
func (d *HexDumper) Format(l HexDumpLine) string {
	hex := make([]string, len(l.Bytes))
	for i, b := range l.Bytes {
		hex[i] = fmt.Sprintf("%02x", b)
	}
	return fmt.Sprintf("%08x: %-*s%*s %s", l.Offset, d.Width*3, strings.Join(hex, " "), d.Width, "", l.ASCII)
}

// Dump renders data as formatted rows.
func (d *HexDumper) Dump(data []byte) []string {
	lines := d.Lines(data)
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = d.Format(l)
	}
	return out
}

func isPrintable(s string) bool {
	for _, r := range s {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
