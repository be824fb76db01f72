package binutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPrimitives(t *testing.T) {
	data := []byte{0x2a, 0x01, 0x00, 0x00, 0x00, 0x78, 0x56, 0x34, 0x12, 0x00, 0x00, 0x00, 0x00}
	r := bytes.NewReader(data)

	u8, err := ReadU8(r, 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x2a), u8)

	u32, err := ReadU32(r, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), u32)

	u64, err := ReadU64(r, 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x12345678), u64)
}

func TestReadU32ShortRead(t *testing.T) {
	r := bytes.NewReader([]byte{0x01, 0x02})
	_, err := ReadU32(r, 0)
	assert.Error(t, err)
}

func TestReadBytes(t *testing.T) {
	r := bytes.NewReader([]byte("evidence.img"))
	got, err := ReadBytes(r, 0, 9)
	require.NoError(t, err)
	assert.Equal(t, []byte("evidence."), got)

	empty, err := ReadBytes(r, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestReadStringTruncatesAtNUL(t *testing.T) {
	r := bytes.NewReader([]byte("case001\x00\x00\x00\x00\x00"))
	s, err := ReadString(r, 0, 12)
	require.NoError(t, err)
	assert.Equal(t, "case001", s)
}

func TestBytesToStringTrimsAndTruncates(t *testing.T) {
	assert.Equal(t, "hello", BytesToString([]byte("  hello\x00garbage")))
	assert.Equal(t, "", BytesToString([]byte{0, 1, 2}))
	assert.Equal(t, "plain", BytesToString([]byte("plain")))
}
