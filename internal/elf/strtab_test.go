package elf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringTableLookup(t *testing.T) {
	st := NewStringTable([]byte("\x00.text\x00.data\x00tail"))

	tests := []struct {
		off  uint32
		want string
		ok   bool
	}{
		{0, "", true},
		{1, ".text", true},
		{3, "ext", true},
		{7, ".data", true},
		{13, "tail", true},
		{15, "il", true},
		{17, "", false},
		{1000, "", false},
	}
	for _, tt := range tests {
		got, ok := st.Lookup(tt.off)
		assert.Equal(t, tt.ok, ok, "offset %d", tt.off)
		assert.Equal(t, tt.want, got, "offset %d", tt.off)
	}

	got, ok := NewStringTable(nil).Lookup(0)
	assert.True(t, ok)
	assert.Equal(t, "", got)

	_, ok = NewStringTable(nil).Lookup(1)
	assert.False(t, ok)
}

func TestStringTableEntries(t *testing.T) {
	st := NewStringTable([]byte("\x00main\x00\x00helper\x00unterminated"))

	first, err := st.Entries(Strict)
	require.NoError(t, err)
	assert.Equal(t, []StringEntry{
		{Offset: 1, Value: "main"},
		{Offset: 7, Value: "helper"},
		{Offset: 14, Value: "unterminated"},
	}, first)
	assert.Equal(t, 5, st.Segments())

	second, err := st.Entries(Strict)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	empty, err := NewStringTable(nil).Entries(BestEffort)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStringTableInvalidUTF8(t *testing.T) {
	st := NewStringTable([]byte("\x00ok\x00bad\xff\xfe\x00"))

	_, err := st.Entries(Strict)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidString)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, uint64(4), de.Offset)

	entries, err := st.Entries(BestEffort)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "ok", entries[0].Value)
	assert.Equal(t, "bad�", entries[1].Value)
}

func TestPrintableStrings(t *testing.T) {
	data := []byte("GCC: (GNU) 13.2\x00\x01\x02\x00  \x00 padded \x00caf\xc3\xa9\x00")
	assert.Equal(t, []string{"GCC: (GNU) 13.2", "padded", "café"}, PrintableStrings(data))
	assert.Empty(t, PrintableStrings(nil))
}
