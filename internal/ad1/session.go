package ad1

import (
	"fmt"
	"os"
	"strings"

	"github.com/forensiccase/containerctl/internal/binutil"
	"github.com/forensiccase/containerctl/internal/cerrors"
	"github.com/forensiccase/containerctl/internal/forensiclog"
)

var log = forensiclog.Component("ad1")

// Session holds the open segment files and parsed structure of one AD1
// container for the lifetime of an info/verify/extract call.
type Session struct {
	Path          string
	SegmentHeader SegmentHeader
	LogicalHeader LogicalHeader
	RootItems     []Item
	ItemCount     uint64

	files     []*os.File
	fileSizes []uint64
	cache     *payloadCache
	opts      Options
}

// Open reads every segment header, the logical header, and the full item
// tree of the AD1 container rooted at path, using DefaultOptions() for
// the decompression cache and concurrency threshold. It requires every
// segment file referenced by the segment count to be present.
func Open(path string) (*Session, error) {
	return OpenWithOptions(path, DefaultOptions())
}

// OpenWithOptions is Open with caller-supplied cache/concurrency tuning.
func OpenWithOptions(path string, opts Options) (*Session, error) {
	if err := validateInput(path); err != nil {
		return nil, err
	}
	if opts.ItemCapacity <= 0 {
		opts.ItemCapacity = defaultItemCapacity
	}
	if opts.ParallelChunkThreshold <= 0 {
		opts.ParallelChunkThreshold = defaultParallelChunkThreshold
	}

	headerFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ad1: open %s: %w", path, err)
	}
	defer headerFile.Close()

	segHeader, err := readSegmentHeader(headerFile)
	if err != nil {
		return nil, err
	}
	logHeader, err := readLogicalHeader(headerFile)
	if err != nil {
		return nil, err
	}

	log.Debug("ad1 headers parsed",
		"segment_count", segHeader.SegmentNumber,
		"first_item_addr", logHeader.FirstItemAddr,
	)

	s := &Session{
		Path:          path,
		SegmentHeader: segHeader,
		LogicalHeader: logHeader,
		cache:         newPayloadCache(opts.ItemCapacity),
		opts:          opts,
	}

	for index := uint32(1); index <= segHeader.SegmentNumber; index++ {
		segPath := buildSegmentPath(path, index)
		f, err := os.Open(segPath)
		if err != nil {
			return nil, fmt.Errorf("ad1: open segment %s: %w", segPath, err)
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("ad1: stat segment %s: %w", segPath, err)
		}
		size := uint64(info.Size())
		dataSize := uint64(0)
		if size > logicalMargin {
			dataSize = size - logicalMargin
		}
		s.files = append(s.files, f)
		s.fileSizes = append(s.fileSizes, dataSize)
	}

	root, err := s.readItemChain(logHeader.FirstItemAddr)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.RootItems = root
	log.Debug("parsed root items", "count", len(root))
	return s, nil
}

// Close releases every open segment file handle.
func (s *Session) Close() error {
	var firstErr error
	for _, f := range s.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func readSegmentHeader(f *os.File) (SegmentHeader, error) {
	sig, err := binutil.ReadString(f, 0, len(Signature))
	if err != nil {
		return SegmentHeader{}, fmt.Errorf("ad1: read segment signature: %w", err)
	}
	if sig != Signature {
		return SegmentHeader{}, fmt.Errorf("ad1: %w", cerrors.ErrUnrecognizedContainer)
	}
	index, err := binutil.ReadU32(f, 0x18)
	if err != nil {
		return SegmentHeader{}, fmt.Errorf("ad1: read segment_index: %w", err)
	}
	number, err := binutil.ReadU32(f, 0x1c)
	if err != nil {
		return SegmentHeader{}, fmt.Errorf("ad1: read segment_number: %w", err)
	}
	fragments, err := binutil.ReadU32(f, 0x22)
	if err != nil {
		return SegmentHeader{}, fmt.Errorf("ad1: read fragments_size: %w", err)
	}
	headerSize, err := binutil.ReadU32(f, 0x28)
	if err != nil {
		return SegmentHeader{}, fmt.Errorf("ad1: read header_size: %w", err)
	}
	return SegmentHeader{
		Signature:     sig,
		SegmentIndex:  index,
		SegmentNumber: number,
		FragmentsSize: fragments,
		HeaderSize:    headerSize,
	}, nil
}

func readLogicalHeader(f *os.File) (LogicalHeader, error) {
	sig, err := binutil.ReadString(f, logicalMargin, 15)
	if err != nil {
		return LogicalHeader{}, fmt.Errorf("ad1: read logical signature: %w", err)
	}
	imageVersion, err := binutil.ReadU32(f, 0x210)
	if err != nil {
		return LogicalHeader{}, fmt.Errorf("ad1: read image_version: %w", err)
	}
	chunkSize, err := binutil.ReadU32(f, 0x218)
	if err != nil {
		return LogicalHeader{}, fmt.Errorf("ad1: read zlib_chunk_size: %w", err)
	}
	metadataAddr, err := binutil.ReadU64(f, 0x21c)
	if err != nil {
		return LogicalHeader{}, fmt.Errorf("ad1: read logical_metadata_addr: %w", err)
	}
	firstItemAddr, err := binutil.ReadU64(f, 0x224)
	if err != nil {
		return LogicalHeader{}, fmt.Errorf("ad1: read first_item_addr: %w", err)
	}
	nameLength, err := binutil.ReadU32(f, 0x22c)
	if err != nil {
		return LogicalHeader{}, fmt.Errorf("ad1: read data_source_name_length: %w", err)
	}
	adSignature, err := binutil.ReadString(f, 0x230, 3)
	if err != nil {
		return LogicalHeader{}, fmt.Errorf("ad1: read ad_signature: %w", err)
	}
	nameAddr, err := binutil.ReadU64(f, 0x234)
	if err != nil {
		return LogicalHeader{}, fmt.Errorf("ad1: read data_source_name_addr: %w", err)
	}
	attrGUIDAddr, err := binutil.ReadU64(f, 0x23c)
	if err != nil {
		return LogicalHeader{}, fmt.Errorf("ad1: read attrguid_footer_addr: %w", err)
	}
	locsGUIDAddr, err := binutil.ReadU64(f, 0x24c)
	if err != nil {
		return LogicalHeader{}, fmt.Errorf("ad1: read locsguid_footer_addr: %w", err)
	}
	name, err := binutil.ReadString(f, 0x25c, int(nameLength))
	if err != nil {
		return LogicalHeader{}, fmt.Errorf("ad1: read data_source_name: %w", err)
	}

	return LogicalHeader{
		Signature:            strings.TrimSpace(sig),
		ImageVersion:         imageVersion,
		ZlibChunkSize:        chunkSize,
		LogicalMetadataAddr:  metadataAddr,
		FirstItemAddr:        firstItemAddr,
		DataSourceNameLength: nameLength,
		ADSignature:          adSignature,
		DataSourceNameAddr:   nameAddr,
		AttrGUIDFooterAddr:   attrGUIDAddr,
		LocsGUIDFooterAddr:   locsGUIDAddr,
		DataSourceName:       name,
	}, nil
}

// readInto fills buf from the concatenated logical space at offset,
// transparently crossing segment boundaries using the shared segment
// span derived from the first segment's fragmentsSize.
func (s *Session) readInto(offset uint64, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	span := segmentSpan(s.SegmentHeader.FragmentsSize)
	if span == 0 {
		return fmt.Errorf("ad1: %w: invalid fragment size", cerrors.ErrMalformedHeader)
	}

	remaining := uint64(len(buf))
	bufCursor := 0
	fileCursor := int(offset / span)
	dataCursor := offset - span*uint64(fileCursor)

	for remaining > 0 {
		if fileCursor >= len(s.fileSizes) {
			return fmt.Errorf("ad1: %w", cerrors.ErrOffsetOutOfRange)
		}
		fileSize := s.fileSizes[fileCursor]

		toRead := remaining
		if dataCursor+toRead > fileSize {
			if fileSize > dataCursor {
				toRead = fileSize - dataCursor
			} else {
				toRead = 0
			}
		}
		if toRead == 0 {
			return fmt.Errorf("ad1: %w", cerrors.ErrOffsetOutOfRange)
		}

		f := s.files[fileCursor]
		n, err := f.ReadAt(buf[bufCursor:uint64(bufCursor)+toRead], int64(dataCursor+logicalMargin))
		if err != nil {
			return fmt.Errorf("ad1: read segment data: %w", err)
		}
		if uint64(n) != toRead {
			return fmt.Errorf("ad1: %w: short segment read", cerrors.ErrIOFailed)
		}

		bufCursor += int(toRead)
		remaining -= toRead
		dataCursor = 0
		fileCursor++
	}
	return nil
}

func (s *Session) readU32(offset uint64) (uint32, error) {
	buf := make([]byte, 4)
	if err := s.readInto(offset, buf); err != nil {
		return 0, err
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24, nil
}

func (s *Session) readU64(offset uint64) (uint64, error) {
	buf := make([]byte, 8)
	if err := s.readInto(offset, buf); err != nil {
		return 0, err
	}
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(buf[i])
	}
	return v, nil
}

func (s *Session) readBytes(offset uint64, length int) ([]byte, error) {
	if length == 0 {
		return nil, nil
	}
	buf := make([]byte, length)
	if err := s.readInto(offset, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// readItemChain walks a next-pointer linked list of items starting at
// offset, returning them in list order (0 terminates the chain).
func (s *Session) readItemChain(offset uint64) ([]Item, error) {
	var items []Item
	next := offset
	for next != 0 {
		item, following, err := s.readItem(next)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		next = following
	}
	return items, nil
}

// readItem parses one item prolog and recursively parses its metadata
// and children before assigning this item's own id — ids are therefore
// handed out bottom-up (every descendant's id precedes its ancestor's),
// not in tree pre-order.
func (s *Session) readItem(offset uint64) (Item, uint64, error) {
	nextItemAddr, err := s.readU64(offset)
	if err != nil {
		return Item{}, 0, err
	}
	firstChildAddr, err := s.readU64(offset + 0x08)
	if err != nil {
		return Item{}, 0, err
	}
	firstMetadataAddr, err := s.readU64(offset + 0x10)
	if err != nil {
		return Item{}, 0, err
	}
	zlibMetadataAddr, err := s.readU64(offset + 0x18)
	if err != nil {
		return Item{}, 0, err
	}
	decompressedSize, err := s.readU64(offset + 0x20)
	if err != nil {
		return Item{}, 0, err
	}
	itemType, err := s.readU32(offset + 0x28)
	if err != nil {
		return Item{}, 0, err
	}
	nameLength, err := s.readU32(offset + 0x2c)
	if err != nil {
		return Item{}, 0, err
	}
	nameBytes, err := s.readBytes(offset+0x30, int(nameLength))
	if err != nil {
		return Item{}, 0, err
	}
	name := strings.ReplaceAll(binutil.BytesToString(nameBytes), "/", "_")

	var metadata []Metadata
	if firstMetadataAddr != 0 {
		metadata, err = s.readMetadataList(firstMetadataAddr)
		if err != nil {
			return Item{}, 0, err
		}
	}

	var children []Item
	if firstChildAddr != 0 {
		children, err = s.readItemChain(firstChildAddr)
		if err != nil {
			return Item{}, 0, err
		}
	}

	s.ItemCount++
	item := Item{
		ID:               s.ItemCount,
		Name:             name,
		ItemType:         itemType,
		DecompressedSize: decompressedSize,
		ZlibMetadataAddr: zlibMetadataAddr,
		Metadata:         metadata,
		Children:         children,
	}
	return item, nextItemAddr, nil
}

func (s *Session) readMetadataList(offset uint64) ([]Metadata, error) {
	var list []Metadata
	next := offset
	for next != 0 {
		meta, err := s.readMetadata(next)
		if err != nil {
			return nil, err
		}
		next = meta.NextMetadataAddr
		list = append(list, meta)
	}
	return list, nil
}

func (s *Session) readMetadata(offset uint64) (Metadata, error) {
	next, err := s.readU64(offset)
	if err != nil {
		return Metadata{}, err
	}
	category, err := s.readU32(offset + 0x08)
	if err != nil {
		return Metadata{}, err
	}
	key, err := s.readU32(offset + 0x0c)
	if err != nil {
		return Metadata{}, err
	}
	dataLength, err := s.readU32(offset + 0x10)
	if err != nil {
		return Metadata{}, err
	}
	data, err := s.readBytes(offset+0x14, int(dataLength))
	if err != nil {
		return Metadata{}, err
	}
	return Metadata{
		NextMetadataAddr: next,
		Category:         category,
		Key:              key,
		Data:             data,
	}, nil
}

func metadataString(data []byte) string {
	return strings.TrimSpace(binutil.BytesToString(data))
}

func findHash(metadata []Metadata, key uint32) (string, bool) {
	for _, m := range metadata {
		if m.Category == categoryHashInfo && m.Key == key {
			value := metadataString(m.Data)
			var b strings.Builder
			for _, r := range value {
				if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F') {
					b.WriteRune(r)
				}
			}
			return strings.ToLower(b.String()), true
		}
	}
	return "", false
}
