package ewf

import (
	"bytes"
	"crypto/md5"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forensiccase/containerctl/internal/hashing"
)

func putU32(buf []byte, offset int, v uint32) {
	binary.LittleEndian.PutUint32(buf[offset:offset+4], v)
}

func putU64(buf []byte, offset int, v uint64) {
	binary.LittleEndian.PutUint64(buf[offset:offset+8], v)
}

// buildSyntheticEWF assembles a single-segment, single-chunk EWF1
// container with a volume section, a one-entry uncompressed table
// section, and a hash section carrying the MD5 of the chunk content.
func buildSyntheticEWF(t *testing.T, content []byte) string {
	t.Helper()
	require.Equal(t, 512, len(content))

	const (
		volumeDescOff = 13
		tableDescOff  = 200
		chunkDataOff  = 400
	)
	hashDescOff := chunkDataOff + len(content)
	total := hashDescOff + 76 + 16 + 16

	buf := make([]byte, total)
	copy(buf[0:8], signatureV1[:])
	// fields_start/segment_number/fields_end (13-byte file header)

	copy(buf[volumeDescOff:], "volume")
	putU64(buf, volumeDescOff+16, uint64(tableDescOff)) // next_offset
	putU64(buf, volumeDescOff+24, 0)                    // size (unused for volume)
	volBase := volumeDescOff + 76 + 4
	putU32(buf, volBase+0, 1)   // chunk_count
	putU32(buf, volBase+4, 1)   // sectors_per_chunk
	putU32(buf, volBase+8, 512) // bytes_per_sector
	putU64(buf, volBase+12, 1)  // sector_count

	copy(buf[tableDescOff:], "table")
	putU64(buf, tableDescOff+16, uint64(hashDescOff)) // next_offset
	tableBody := tableDescOff + 76
	putU32(buf, tableBody+0, 1) // entry count
	putU64(buf, tableBody+8, 0) // base_offset
	putU32(buf, tableBody+24, uint32(chunkDataOff))

	copy(buf[chunkDataOff:], content)

	copy(buf[hashDescOff:], "hash")
	putU64(buf, hashDescOff+16, 0) // next_offset = stop
	sum := md5.Sum(content)
	copy(buf[hashDescOff+76:], sum[:])

	dir := t.TempDir()
	path := filepath.Join(dir, "case.E01")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestOpenParsesVolumeAndChunks(t *testing.T) {
	content := bytes.Repeat([]byte{0x41}, 512)
	path := buildSyntheticEWF(t, content)

	ok, err := IsEWF(path)
	require.NoError(t, err)
	assert.True(t, ok)

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.EqualValues(t, 1, s.Volume.SectorCount)
	assert.EqualValues(t, 512, s.Volume.BytesPerSector)
	assert.EqualValues(t, 512, s.TotalMediaSize())
	require.Len(t, s.chunks, 1)

	data, err := s.readChunk(0)
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

func TestVerifyMatchesStoredMD5(t *testing.T) {
	content := bytes.Repeat([]byte{0x42}, 512)
	path := buildSyntheticEWF(t, content)

	result, err := Verify(path, "md5")
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, "MD5", result.Algorithm)

	parsedAlgo, err := hashing.ParseAlgorithm("md5")
	require.NoError(t, err)
	assert.Equal(t, hashing.MD5, parsedAlgo)
}

func TestExtractWritesImageFile(t *testing.T) {
	content := bytes.Repeat([]byte{0x43}, 512)
	path := buildSyntheticEWF(t, content)

	outDir := t.TempDir()
	require.NoError(t, Extract(path, outDir))

	extracted, err := os.ReadFile(filepath.Join(outDir, "case.img"))
	require.NoError(t, err)
	assert.Equal(t, content, extracted)
}
