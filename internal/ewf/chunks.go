package ewf

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/forensiccase/containerctl/internal/binutil"
)

// readTableSection decodes a table/table2 chunk offset table: a 24-byte
// header (entry count, a base offset, and a trailing checksum) followed
// by one little-endian uint32 per chunk, whose high bit flags that
// chunk's stored data as zlib-compressed.
func (s *Session) readTableSection(segmentIndex int, sec section) error {
	f := s.segs[segmentIndex].file

	count, err := binutil.ReadU32(f, int64(sec.bodyOffset))
	if err != nil {
		return fmt.Errorf("ewf: read table entry count: %w", err)
	}
	baseOffset, err := binutil.ReadU64(f, int64(sec.bodyOffset)+8)
	if err != nil {
		return fmt.Errorf("ewf: read table base offset: %w", err)
	}
	if count == 0 {
		return nil
	}

	entriesOffset := sec.bodyOffset + 24
	type rawEntry struct {
		offset     uint64
		compressed bool
	}
	entries := make([]rawEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		raw, err := binutil.ReadU32(f, int64(entriesOffset)+int64(i)*4)
		if err != nil {
			return fmt.Errorf("ewf: read table entry %d: %w", i, err)
		}
		compressed := raw&compressedChunkFlag != 0
		rel := raw &^ compressedChunkFlag
		entries = append(entries, rawEntry{offset: baseOffset + uint64(rel), compressed: compressed})
	}

	// Each chunk's stored length is the gap to the next chunk's offset;
	// the final chunk in the table runs to the start of the next
	// section descriptor (table2 immediately follows table, or the
	// chain's next descriptor follows table2).
	sectionEnd := sec.nextOffset
	if sectionEnd == 0 || sectionEnd < entries[len(entries)-1].offset {
		sectionEnd = uint64(s.segs[segmentIndex].size)
	}

	for i, e := range entries {
		var length uint64
		if i+1 < len(entries) {
			length = entries[i+1].offset - e.offset
		} else {
			length = sectionEnd - e.offset
		}
		s.chunks = append(s.chunks, resolvedChunk{
			segmentIndex: segmentIndex,
			offset:       int64(e.offset),
			length:       int64(length),
			compressed:   e.compressed,
		})
	}
	return nil
}

// chunkSize is the decompressed size of a full chunk: sectorsPerChunk
// sectors of bytesPerSector bytes each.
func (s *Session) chunkSize() int64 {
	return int64(s.Volume.SectorsPerChunk) * int64(s.Volume.BytesPerSector)
}

// readChunk returns the decompressed bytes of chunk index.
func (s *Session) readChunk(index int) ([]byte, error) {
	if index < 0 || index >= len(s.chunks) {
		return nil, fmt.Errorf("ewf: chunk %d out of range", index)
	}
	c := s.chunks[index]
	f := s.segs[c.segmentIndex].file
	raw, err := binutil.ReadBytes(f, c.offset, int(c.length))
	if err != nil {
		return nil, fmt.Errorf("ewf: read chunk %d: %w", index, err)
	}
	if !c.compressed {
		return raw, nil
	}
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("ewf: chunk %d: zlib reader: %w", index, err)
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("ewf: chunk %d: zlib inflate: %w", index, err)
	}
	return data, nil
}

// ReadAt implements a virtual-offset random read across the whole
// decompressed media, transparently crossing chunk boundaries.
func (s *Session) ReadAt(buf []byte, off int64) (int, error) {
	size := s.chunkSize()
	if size == 0 {
		return 0, fmt.Errorf("ewf: zero chunk size")
	}

	total := 0
	for total < len(buf) {
		virtualOffset := off + int64(total)
		chunkIdx := int(virtualOffset / size)
		if chunkIdx >= len(s.chunks) {
			break
		}
		chunkData, err := s.readChunk(chunkIdx)
		if err != nil {
			return total, err
		}
		withinChunk := int(virtualOffset % size)
		if withinChunk >= len(chunkData) {
			break
		}
		n := copy(buf[total:], chunkData[withinChunk:])
		total += n
	}
	if total == 0 {
		return 0, io.EOF
	}
	return total, nil
}

// TotalMediaSize is the full decompressed media size implied by the
// volume section's sector count and sector size.
func (s *Session) TotalMediaSize() uint64 {
	return s.Volume.SectorCount * uint64(s.Volume.BytesPerSector)
}
