// Package ad1 parses AccessData's AD1 logical evidence container format,
// as produced by FTK Imager: segmented files carrying a linked-list item
// tree of zlib-compressed file and folder entries.
package ad1

// Signature is the fixed 15-byte literal every AD1 segment opens with.
const Signature = "ADSEGMENTEDFILE"

const (
	// logicalMargin is the fixed header region every segment reserves
	// at its head; segment payload data starts right after it.
	logicalMargin = 512
	// segmentBlockSize is the unit fragmentsSize is expressed in.
	segmentBlockSize = 65536
	// defaultItemCapacity is the FIFO size for decompressed item
	// payloads used when no Options value overrides it.
	defaultItemCapacity = 100
	// defaultParallelChunkThreshold is the chunk count at/above which
	// item decompression switches from sequential to parallel, used
	// when no Options value overrides it.
	defaultParallelChunkThreshold = 4
	// folderItemType marks an item as a directory rather than a file.
	folderItemType = 0x05
)

// Options tunes the per-session decompression cache and concurrency
// threshold; callers typically derive these from the cache section of
// the CLI's configuration rather than constructing them by hand.
type Options struct {
	// ItemCapacity is the fixed FIFO capacity for cached decompressed
	// item payloads.
	ItemCapacity int
	// ParallelChunkThreshold is the chunk count at or above which item
	// decompression switches from sequential to parallel.
	ParallelChunkThreshold int
}

// DefaultOptions returns the Options used when a caller has no
// configuration of its own to supply.
func DefaultOptions() Options {
	return Options{
		ItemCapacity:           defaultItemCapacity,
		ParallelChunkThreshold: defaultParallelChunkThreshold,
	}
}

// Metadata category/key values from the container's internal metadata
// taxonomy: each item carries a linked list of typed key/value records,
// and only a handful of (category, key) pairs are meaningful to a reader
// (stored hashes, timestamps).
const (
	categoryHashInfo  = 0x0007
	keyMD5Hash        = 0x0000
	keySHA1Hash       = 0x0001
	categoryTimestamp = 0x0000
	keyAccessTime     = 0x0002
	keyModifiedTime   = 0x0001
)

// SegmentHeader is the fixed 64-byte header at the start of every segment.
type SegmentHeader struct {
	Signature     string
	SegmentIndex  uint32
	SegmentNumber uint32 // total segment count
	FragmentsSize uint32
	HeaderSize    uint32
}

// LogicalHeader describes the logical image as a whole; present only in
// the first segment, starting at logicalMargin.
type LogicalHeader struct {
	Signature            string
	ImageVersion         uint32
	ZlibChunkSize        uint32
	LogicalMetadataAddr  uint64
	FirstItemAddr        uint64
	DataSourceNameLength uint32
	ADSignature          string
	DataSourceNameAddr   uint64
	AttrGUIDFooterAddr   uint64
	LocsGUIDFooterAddr   uint64
	DataSourceName       string
}

// Metadata is one key/value record attached to an Item.
type Metadata struct {
	NextMetadataAddr uint64
	Category         uint32
	Key              uint32
	Data             []byte
}

// Item is one node (file or folder) in the AD1 logical tree.
type Item struct {
	ID               uint64
	Name             string
	ItemType         uint32
	DecompressedSize uint64
	ZlibMetadataAddr uint64
	Metadata         []Metadata
	Children         []Item
}

// IsFolder reports whether item represents a directory.
func (item Item) IsFolder() bool {
	return item.ItemType == folderItemType
}

// VolumeInfo is the best-effort volume/filesystem description recovered
// from the fixed-offset region following the logical header.
type VolumeInfo struct {
	VolumeLabel  string
	Filesystem   string
	OSInfo       string
	BlockSize    uint32
	VolumeSerial string
}

// IsEmpty reports whether none of the label, filesystem or OS-info
// fields was recovered; BlockSize and VolumeSerial are not consulted.
func (v VolumeInfo) IsEmpty() bool {
	return v.VolumeLabel == "" && v.Filesystem == "" && v.OSInfo == ""
}

// CompanionLogInfo is the AD1-specific `.ad1.txt` sidecar metadata: a
// simpler single key:value dialect than the general multi-format
// companionlog package handles, kept separate because AD1 examiners
// conventionally name it `<image>.ad1.txt` rather than any of the
// general candidate suffixes.
type CompanionLogInfo struct {
	CaseNumber      string
	EvidenceNumber  string
	Examiner        string
	Notes           string
	MD5Hash         string
	SHA1Hash        string
	AcquisitionDate string
}

// IsEmpty reports whether nothing useful was recovered.
func (c CompanionLogInfo) IsEmpty() bool {
	return c.CaseNumber == "" && c.EvidenceNumber == "" && c.Examiner == "" &&
		c.MD5Hash == "" && c.SHA1Hash == ""
}

// TreeEntry is one flattened path/size/type record from a walked item tree.
type TreeEntry struct {
	Path     string
	IsDir    bool
	Size     uint64
	ItemType uint32
}

// VerifyEntry is one hash-verification result for a single file item.
type VerifyEntry struct {
	Path      string
	Status    string // ok|nok|computed|no_hash
	Algorithm string
	Computed  string
	Stored    string
	Size      uint64
}

// Info is the complete, aggregated description of an AD1 container.
type Info struct {
	Segment         SegmentHeader
	Logical         LogicalHeader
	ItemCount       uint64
	Tree            []TreeEntry
	SegmentFiles    []string
	SegmentSizes    []uint64
	TotalSize       uint64
	MissingSegments []string
	Volume          *VolumeInfo
	CompanionLog    *CompanionLogInfo
}
