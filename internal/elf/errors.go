package elf

import (
	"errors"
	"fmt"
)

// ErrorKind classifies decode failures and diagnostics
type ErrorKind string

const (
	KindInvalidMagic          ErrorKind = "InvalidMagic"
	KindUnsupportedClass      ErrorKind = "UnsupportedClass"
	KindUnsupportedEncoding   ErrorKind = "UnsupportedEncoding"
	KindOutOfBounds           ErrorKind = "OutOfBounds"
	KindTruncatedHeader       ErrorKind = "TruncatedHeader"
	KindFormatInconsistency   ErrorKind = "FormatInconsistency"
	KindUnresolvableReference ErrorKind = "UnresolvableReference"
	KindFileNotFound          ErrorKind = "FileNotFound"
	KindFileUnreadable        ErrorKind = "FileUnreadable"
)

var (
	ErrInvalidMagic        = errors.New("invalid ELF magic")
	ErrUnsupportedClass    = errors.New("unsupported ELF class")
	ErrUnsupportedEncoding = errors.New("unsupported ELF data encoding")
	ErrOutOfBounds         = errors.New("read out of bounds")
	ErrTruncatedHeader     = errors.New("truncated ELF header")
	ErrInvalidString       = errors.New("invalid UTF-8 in string table")
	ErrFileNotFound        = errors.New("file not found")
	ErrFileUnreadable      = errors.New("file unreadable")
)

var kindErrors = map[ErrorKind]error{
	KindInvalidMagic:        ErrInvalidMagic,
	KindUnsupportedClass:    ErrUnsupportedClass,
	KindUnsupportedEncoding: ErrUnsupportedEncoding,
	KindOutOfBounds:         ErrOutOfBounds,
	KindTruncatedHeader:     ErrTruncatedHeader,
	KindFileNotFound:        ErrFileNotFound,
	KindFileUnreadable:      ErrFileUnreadable,
}

// DecodeError is a fatal failure at a byte offset of the container.
// Err overrides the sentinel implied by Kind.
type DecodeError struct {
	Kind   ErrorKind
	Offset uint64
	Msg    string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s at offset %#x", e.Unwrap(), e.Offset)
	}
	return fmt.Sprintf("%s: %s (offset %#x)", e.Unwrap(), e.Msg, e.Offset)
}

// Unwrap lets errors.Is match the sentinel of the error's kind.
func (e *DecodeError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	if err, ok := kindErrors[e.Kind]; ok {
		return err
	}
	return errors.New(string(e.Kind))
}

func newDecodeError(kind ErrorKind, off uint64, format string, args ...interface{}) *DecodeError {
	return &DecodeError{Kind: kind, Offset: off, Msg: fmt.Sprintf(format, args...)}
}

// Diagnostic is a non-fatal finding recorded while decoding continues.
type Diagnostic struct {
	Kind    ErrorKind `json:"kind"`
	Section int       `json:"section"`
	Offset  uint64    `json:"offset"`
	Message string    `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Section >= 0 {
		return fmt.Sprintf("%s: section %d: %s", d.Kind, d.Section, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

func inconsistency(section int, off uint64, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Kind:    KindFormatInconsistency,
		Section: section,
		Offset:  off,
		Message: fmt.Sprintf(format, args...),
	}
}

func unresolvable(section int, off uint64, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Kind:    KindUnresolvableReference,
		Section: section,
		Offset:  off,
		Message: fmt.Sprintf(format, args...),
	}
}
