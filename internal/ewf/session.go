package ewf

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/forensiccase/containerctl/internal/binutil"
	"github.com/forensiccase/containerctl/internal/cerrors"
	"github.com/forensiccase/containerctl/internal/forensiclog"
	"github.com/forensiccase/containerctl/internal/segments"
)

var log = forensiclog.Component("ewf")

type segmentHandle struct {
	path string
	file *os.File
	size int64
}

// Session holds the open segment files and parsed section data of one
// EWF container for the lifetime of an info/verify/extract call.
type Session struct {
	Path          string
	FormatVersion FormatVersion
	Volume        VolumeInfo
	HeaderFields  map[string]string
	StoredHashes  []StoredHash

	segs   []segmentHandle
	chunks []resolvedChunk // in chunk order across the whole acquisition
}

// resolvedChunk records which segment a chunk's compressed bytes live in
// and how large that stored span is.
type resolvedChunk struct {
	segmentIndex int
	offset       int64
	length       int64
	compressed   bool
}

// Open validates the signature of path, discovers every numbered
// segment, and walks each segment's section chain to assemble volume
// geometry, header metadata, stored hashes, and the chunk offset table.
func Open(path string) (*Session, error) {
	sig, err := readSignature(path)
	if err != nil {
		return nil, err
	}
	format := FormatEWF1
	if sig == signatureV2 {
		format = FormatEWF2
	} else if sig != signatureV1 {
		return nil, fmt.Errorf("ewf: %s: %w", path, cerrors.ErrUnrecognizedContainer)
	}

	discovered, err := segments.DiscoverNumberedSegments(path)
	if err != nil || len(discovered) == 0 {
		discovered = []segments.Segment{{Path: path, Ordinal: 1}}
	}

	s := &Session{
		Path:          path,
		FormatVersion: format,
		HeaderFields:  make(map[string]string),
	}

	for i, seg := range discovered {
		f, err := os.Open(seg.Path)
		if err != nil {
			return nil, fmt.Errorf("ewf: open segment %s: %w", seg.Path, err)
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("ewf: stat segment %s: %w", seg.Path, err)
		}
		s.segs = append(s.segs, segmentHandle{path: seg.Path, file: f, size: info.Size()})

		if err := s.walkSections(i); err != nil {
			s.Close()
			return nil, err
		}
	}

	if s.Volume.BytesPerSector == 0 {
		s.Close()
		return nil, fmt.Errorf("ewf: %s: no volume section found: %w", path, cerrors.ErrMalformedHeader)
	}
	return s, nil
}

// Close releases every open segment file handle.
func (s *Session) Close() error {
	var firstErr error
	for _, seg := range s.segs {
		if err := seg.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func readSignature(path string) ([8]byte, error) {
	var sig [8]byte
	f, err := os.Open(path)
	if err != nil {
		return sig, fmt.Errorf("ewf: open %s: %w", path, err)
	}
	defer f.Close()
	raw, err := binutil.ReadBytes(f, 0, 8)
	if err != nil {
		return sig, fmt.Errorf("ewf: read signature: %w", err)
	}
	copy(sig[:], raw)
	return sig, nil
}

// IsEWF reports whether path's leading bytes identify it as an EWF1 or
// EWF2 container.
func IsEWF(path string) (bool, error) {
	sig, err := readSignature(path)
	if err != nil {
		return false, err
	}
	return sig == signatureV1 || sig == signatureV2, nil
}

// walkSections walks the section-descriptor chain of segment
// segmentIndex starting right after its 13-byte file header, following
// each descriptor's next_offset, capped at maxSectionWalks and guarded
// against revisiting an offset (a corrupt or hostile chain cycling back
// on itself).
func (s *Session) walkSections(segmentIndex int) error {
	f := s.segs[segmentIndex].file
	visited := make(map[uint64]bool)
	offset := uint64(13)

	for count := 0; count < maxSectionWalks; count++ {
		if visited[offset] {
			break
		}
		visited[offset] = true

		sec, err := readSectionDescriptor(f, offset)
		if err != nil {
			break
		}

		segSize := uint64(s.segs[segmentIndex].size)
		if offset > segSize || sec.size > segSize-offset {
			return fmt.Errorf("ewf: segment %d: section %q declared size runs past end of file: %w",
				segmentIndex, sec.sectionType, cerrors.ErrMalformedHeader)
		}

		switch sec.sectionType {
		case "volume", "disk":
			vol, err := readVolumeSection(f, sec.bodyOffset)
			if err == nil {
				s.Volume = vol
			}
		case "header", "header2":
			var payloadSize uint64
			if sec.size > 76 {
				payloadSize = sec.size - 76
			}
			fields, err := readHeaderSection(f, sec.bodyOffset, payloadSize)
			if err == nil {
				for k, v := range fields {
					s.HeaderFields[k] = v
				}
			}
		case "hash":
			hashes, err := readHashSection(f, offset+76)
			if err == nil {
				s.StoredHashes = append(s.StoredHashes, hashes...)
			}
		case "digest":
			hashes, err := readDigestSection(f, offset+76, sec.size)
			if err == nil {
				s.StoredHashes = append(s.StoredHashes, hashes...)
			}
		case "table", "table2":
			if err := s.readTableSection(segmentIndex, sec); err != nil {
				log.Warn("failed to read table section", "segment", segmentIndex, "error", err)
			}
		case "done":
			return nil
		}

		if sec.nextOffset == 0 {
			return nil
		}
		offset = sec.nextOffset
	}
	return nil
}

func readSectionDescriptor(f *os.File, offset uint64) (section, error) {
	typeBytes, err := binutil.ReadBytes(f, int64(offset), 16)
	if err != nil {
		return section{}, err
	}
	next, err := binutil.ReadU64(f, int64(offset)+16)
	if err != nil {
		return section{}, err
	}
	size, err := binutil.ReadU64(f, int64(offset)+24)
	if err != nil {
		return section{}, err
	}
	return section{
		sectionType: strings.Trim(binutil.BytesToString(typeBytes), "\x00"),
		nextOffset:  next,
		size:        size,
		bodyOffset:  offset + 76,
	}, nil
}

// readVolumeSection reads either the "standard" volume layout or the
// zero-padded "disk" variant, auto-detected from whether bytes 4..48 of
// the section body are all zero.
func readVolumeSection(f *os.File, bodyOffset uint64) (VolumeInfo, error) {
	probe, err := binutil.ReadBytes(f, int64(bodyOffset), 64)
	if err != nil {
		return VolumeInfo{}, err
	}
	isDiskFormat := true
	for _, b := range probe[4:48] {
		if b != 0 {
			isDiskFormat = false
			break
		}
	}

	if isDiskFormat {
		base := bodyOffset + 48 + 4
		mediaType, err := binutil.ReadU8(f, int64(base))
		if err != nil {
			return VolumeInfo{}, err
		}
		sectorCount, err := binutil.ReadU32(f, int64(base)+4)
		if err != nil {
			return VolumeInfo{}, err
		}
		sectorsPerChunk, err := binutil.ReadU32(f, int64(base)+8)
		if err != nil {
			return VolumeInfo{}, err
		}
		bytesPerSector, err := binutil.ReadU32(f, int64(base)+12)
		if err != nil {
			return VolumeInfo{}, err
		}
		chunkCount := uint32(0)
		if sectorsPerChunk > 0 {
			chunkCount = uint32((uint64(sectorCount) + uint64(sectorsPerChunk) - 1) / uint64(sectorsPerChunk))
		}
		return VolumeInfo{
			MediaType:        mediaType,
			ChunkCount:       chunkCount,
			SectorsPerChunk:  sectorsPerChunk,
			BytesPerSector:   bytesPerSector,
			SectorCount:      uint64(sectorCount),
			CompressionLevel: 1,
		}, nil
	}

	base := bodyOffset + 4
	chunkCount, err := binutil.ReadU32(f, int64(base))
	if err != nil {
		return VolumeInfo{}, err
	}
	sectorsPerChunk, err := binutil.ReadU32(f, int64(base)+4)
	if err != nil {
		return VolumeInfo{}, err
	}
	bytesPerSector, err := binutil.ReadU32(f, int64(base)+8)
	if err != nil {
		return VolumeInfo{}, err
	}
	sectorCount, err := binutil.ReadU64(f, int64(base)+12)
	if err != nil {
		return VolumeInfo{}, err
	}
	mediaType, err := binutil.ReadU8(f, int64(base)+32)
	if err != nil {
		return VolumeInfo{}, err
	}
	return VolumeInfo{
		MediaType:        mediaType,
		ChunkCount:       chunkCount,
		SectorsPerChunk:  sectorsPerChunk,
		BytesPerSector:   bytesPerSector,
		SectorCount:      sectorCount,
		CompressionLevel: 1,
	}, nil
}

// readHeaderSection parses the header/header2 section's NUL-delimited
// key\0value\0 string table.
func readHeaderSection(f *os.File, bodyOffset, size uint64) (map[string]string, error) {
	data, err := binutil.ReadBytes(f, int64(bodyOffset), int(size))
	if err != nil {
		return nil, err
	}
	text := string(data)
	var parts []string
	for _, p := range strings.Split(text, "\x00") {
		if p != "" {
			parts = append(parts, p)
		}
	}

	result := make(map[string]string)
	for i := 0; i+1 < len(parts); i += 2 {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(parts[i])), " ", "_")
		value := strings.TrimSpace(parts[i+1])
		if value != "" {
			result[key] = value
		}
	}
	return result, nil
}

func readHashSection(f *os.File, offset uint64) ([]StoredHash, error) {
	md5Bytes, err := binutil.ReadBytes(f, int64(offset), 16)
	if err != nil {
		return nil, err
	}
	var hashes []StoredHash
	if anyNonZero(md5Bytes) {
		hashes = append(hashes, StoredHash{Algorithm: "MD5", Hash: hexEncode(md5Bytes)})
	}
	return hashes, nil
}

func readDigestSection(f *os.File, offset, size uint64) ([]StoredHash, error) {
	var hashes []StoredHash
	md5Bytes, err := binutil.ReadBytes(f, int64(offset), 16)
	if err == nil && anyNonZero(md5Bytes) {
		hashes = append(hashes, StoredHash{Algorithm: "MD5", Hash: hexEncode(md5Bytes)})
	}
	if size >= 36 {
		sha1Bytes, err := binutil.ReadBytes(f, int64(offset)+16, 20)
		if err == nil && anyNonZero(sha1Bytes) {
			hashes = append(hashes, StoredHash{Algorithm: "SHA1", Hash: hexEncode(sha1Bytes)})
		}
	}
	return hashes, nil
}

func anyNonZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return true
		}
	}
	return false
}

func hexEncode(b []byte) string {
	return hex.EncodeToString(b)
}
