// Package ewf parses the Expert Witness Format family (E01/Ex01 disk
// images and L01/Lx01 logical containers): a segmented container whose
// first segment opens with a fixed header followed by a linked chain of
// named sections (volume/disk, header/header2, table/table2, hash,
// digest, done) describing compressed sector or file data.
package ewf

import "fmt"

var (
	signatureV1 = [8]byte{'E', 'V', 'F', 0x09, 0x0d, 0x0a, 0xff, 0x00}
	signatureV2 = [8]byte{'E', 'V', 'F', '2', 0x0d, 0x0a, 0x81, 0x00}
)

const (
	sectorSize      = 512
	maxSectionWalks = 1000
	// compressedChunkFlag is the high bit of a table-section chunk
	// offset entry, set when that chunk's data is zlib-compressed.
	compressedChunkFlag = uint32(1) << 31
)

// FormatVersion identifies which generation of the container a session
// was opened from.
type FormatVersion string

const (
	FormatEWF1 FormatVersion = "EWF1"
	FormatEWF2 FormatVersion = "EWF2"
)

// VolumeInfo is the media geometry recovered from a volume/disk section.
type VolumeInfo struct {
	MediaType         uint8
	ChunkCount        uint32
	SectorsPerChunk   uint32
	BytesPerSector    uint32
	SectorCount       uint64
	CompressionLevel  uint8
}

// CompressionName maps the raw compression_level byte to a display name.
func (v VolumeInfo) CompressionName() string {
	switch v.CompressionLevel {
	case 0:
		return "None"
	case 1:
		return "Good (Fast)"
	case 2:
		return "Best"
	default:
		return fmt.Sprintf("Unknown (%d)", v.CompressionLevel)
	}
}

// StoredHash is one whole-image digest recovered from a hash or digest
// section.
type StoredHash struct {
	Algorithm string
	Hash      string
}

// Info is the complete, aggregated description of an EWF container.
type Info struct {
	FormatVersion   FormatVersion
	SegmentCount    int
	Volume          VolumeInfo
	TotalSize       uint64
	HeaderFields    map[string]string
	StoredHashes    []StoredHash
	SegmentFiles    []string
	MissingSegments []string
}

// section is one parsed section descriptor: a 16-byte type literal
// followed by the absolute offset of the next descriptor and this
// section's total size, padded out to a fixed 76 bytes on disk.
type section struct {
	sectionType string
	nextOffset  uint64
	size        uint64
	bodyOffset  uint64 // absolute offset of this section's payload
}

// chunkEntry is one decoded table/table2 offset-table record: the
// absolute file offset of a chunk's data and whether it is compressed.
type chunkEntry struct {
	offset     uint64
	compressed bool
	length     uint64 // filled in once the next entry (or section end) is known
}
