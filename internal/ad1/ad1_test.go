package ad1

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forensiccase/containerctl/internal/cerrors"
	"github.com/forensiccase/containerctl/internal/hashing"
)

func TestBuildSegmentPath(t *testing.T) {
	assert.Equal(t, "/path/to/file.ad1", buildSegmentPath("/path/to/file.ad1", 1))
	assert.Equal(t, "/path/to/file.ad2", buildSegmentPath("/path/to/file.ad1", 2))
	assert.Equal(t, "/path/to/file.ad3", buildSegmentPath("/path/to/file.ad1", 3))
	assert.Equal(t, "/path/to/file.ad10", buildSegmentPath("/path/to/file.ad1", 10))
	assert.Equal(t, "", buildSegmentPath("", 1))
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "file.txt", joinPath("", "file.txt"))
	assert.Equal(t, "folder", joinPath("folder", ""))
	assert.Equal(t, "folder/file.txt", joinPath("folder", "file.txt"))
	assert.Equal(t, "a/b/c.txt", joinPath("a/b", "c.txt"))
}

func TestSegmentSpan(t *testing.T) {
	assert.Equal(t, uint64(0x10000)*segmentBlockSize-logicalMargin, segmentSpan(0x10000))
	assert.Equal(t, uint64(segmentBlockSize-logicalMargin), segmentSpan(1))
	assert.Equal(t, uint64(0), segmentSpan(0))
}

func TestPayloadCacheEvictsOldest(t *testing.T) {
	c := newPayloadCache(2)
	c.put(1, []byte("a"))
	c.put(2, []byte("b"))
	c.put(3, []byte("c"))

	_, ok := c.get(1)
	assert.False(t, ok, "oldest entry should have been evicted")
	v2, ok := c.get(2)
	assert.True(t, ok)
	assert.Equal(t, []byte("b"), v2)
	v3, ok := c.get(3)
	assert.True(t, ok)
	assert.Equal(t, []byte("c"), v3)
}

func putU32(buf []byte, offset int, v uint32) {
	binary.LittleEndian.PutUint32(buf[offset:offset+4], v)
}

func putU64(buf []byte, offset int, v uint64) {
	binary.LittleEndian.PutUint64(buf[offset:offset+8], v)
}

// buildSyntheticAD1 assembles a single-segment AD1 container with one
// root folder holding one compressed file, for exercising the full
// open/verify/extract path without a real FTK Imager output on disk.
func buildSyntheticAD1(t *testing.T, content []byte) string {
	t.Helper()

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	_, err := zw.Write(content)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	const (
		rootItemOff = 0x1000
		childItemOff = 0x1100
		metadataOff  = 0x1200
		chunkTblOff  = 0x1300
		chunkDataOff = 0x1400
	)

	total := logicalMargin + chunkDataOff + compressed.Len() + 64
	buf := make([]byte, total)

	copy(buf[0:], Signature)
	putU32(buf, 0x18, 1) // segment_index
	putU32(buf, 0x1c, 1) // segment_number
	putU32(buf, 0x22, 1) // fragments_size
	putU32(buf, 0x28, 0) // header_size

	copy(buf[logicalMargin:], "AD\x00\x00LOGICALHDR")
	putU32(buf, 0x210, 1) // image_version
	putU32(buf, 0x218, 0) // zlib_chunk_size
	putU64(buf, 0x21c, 0) // logical_metadata_addr
	putU64(buf, 0x224, uint64(rootItemOff))
	putU32(buf, 0x22c, 0) // data_source_name_length
	copy(buf[0x230:], "AD1")
	putU64(buf, 0x234, 0)
	putU64(buf, 0x23c, 0)
	putU64(buf, 0x24c, 0)

	rootPhys := logicalMargin + rootItemOff
	putU64(buf, rootPhys+0x00, 0)                      // next
	putU64(buf, rootPhys+0x08, uint64(childItemOff))    // first_child
	putU64(buf, rootPhys+0x10, 0)                       // first_metadata
	putU64(buf, rootPhys+0x18, 0)                       // zlib_metadata_addr
	putU64(buf, rootPhys+0x20, 0)                       // decompressed_size
	putU32(buf, rootPhys+0x28, folderItemType)          // item_type
	putU32(buf, rootPhys+0x2c, 4)                       // name_length
	copy(buf[rootPhys+0x30:], "root")

	childPhys := logicalMargin + childItemOff
	putU64(buf, childPhys+0x00, 0)                     // next
	putU64(buf, childPhys+0x08, 0)                     // first_child
	putU64(buf, childPhys+0x10, uint64(metadataOff))   // first_metadata
	putU64(buf, childPhys+0x18, uint64(chunkTblOff))   // zlib_metadata_addr
	putU64(buf, childPhys+0x20, uint64(len(content)))  // decompressed_size
	putU32(buf, childPhys+0x28, 0)                      // item_type (file)
	putU32(buf, childPhys+0x2c, 8)                      // name_length
	copy(buf[childPhys+0x30:], "file.txt")

	md5Hex := "5eb63bbbe01eeed093cb22bb8f5acdc3" // md5("hello world")
	metaPhys := logicalMargin + metadataOff
	putU64(buf, metaPhys+0x00, 0)          // next_metadata_addr
	putU32(buf, metaPhys+0x08, categoryHashInfo)
	putU32(buf, metaPhys+0x0c, keyMD5Hash)
	putU32(buf, metaPhys+0x10, uint32(len(md5Hex)))
	copy(buf[metaPhys+0x14:], md5Hex)

	chunkTblPhys := logicalMargin + chunkTblOff
	putU64(buf, chunkTblPhys+0x00, 1) // chunk_count
	putU64(buf, chunkTblPhys+0x08, uint64(chunkDataOff))
	putU64(buf, chunkTblPhys+0x10, uint64(chunkDataOff+compressed.Len()))

	chunkDataPhys := logicalMargin + chunkDataOff
	copy(buf[chunkDataPhys:], compressed.Bytes())

	dir := t.TempDir()
	path := filepath.Join(dir, "case.ad1")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestOpenParsesTreeAndVerifyExtract(t *testing.T) {
	content := []byte("hello world")
	path := buildSyntheticAD1(t, content)

	require.True(t, func() bool { ok, err := IsAD1(path); require.NoError(t, err); return ok }())

	info, err := GetInfo(path, true, Options{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, info.ItemCount)
	require.Len(t, info.Tree, 2)
	assert.Equal(t, "root", info.Tree[0].Path)
	assert.True(t, info.Tree[0].IsDir)
	assert.Equal(t, "root/file.txt", info.Tree[1].Path)
	assert.False(t, info.Tree[1].IsDir)
	assert.EqualValues(t, len(content), info.Tree[1].Size)

	results, err := Verify(path, hashing.MD5, Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ok", results[0].Status)
	assert.Equal(t, "root/file.txt", results[0].Path)

	outDir := t.TempDir()
	require.NoError(t, Extract(path, outDir, Options{}))
	extracted, err := os.ReadFile(filepath.Join(outDir, "root", "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, content, extracted)
}

// newFakeSegmentSession builds a one-segment Session backed by raw on
// disk too small for anything but readBytes/readU64 probing, for
// exercising decompression directly without a full container.
func newFakeSegmentSession(t *testing.T, data []byte) *Session {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "case.ad1")
	padded := append(make([]byte, logicalMargin), data...)
	require.NoError(t, os.WriteFile(path, padded, 0o644))

	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	return &Session{
		SegmentHeader: SegmentHeader{FragmentsSize: 1},
		files:         []*os.File{f},
		fileSizes:     []uint64{uint64(len(data))},
		cache:         newPayloadCache(defaultItemCapacity),
		opts:          Options{ItemCapacity: defaultItemCapacity, ParallelChunkThreshold: 1},
	}
}

func TestDecompressSequentialAndParallelAgreeOnCorruptChunk(t *testing.T) {
	garbage := bytes.Repeat([]byte{0xff, 0x00, 0xde, 0xad}, 16)

	seq := newFakeSegmentSession(t, garbage)
	_, errSeq := seq.decompressSequential([]uint64{0, uint64(len(garbage))}, len(garbage))
	require.Error(t, errSeq)

	par := newFakeSegmentSession(t, garbage)
	_, errPar := par.decompressParallel([]uint64{0, uint64(len(garbage))}, len(garbage))
	require.Error(t, errPar)

	assert.ErrorIs(t, errSeq, cerrors.ErrDecompressionFailed)
	assert.ErrorIs(t, errPar, cerrors.ErrDecompressionFailed)
}
