// Package raw parses plain dd-style disk images: a bare byte stream with
// no embedded metadata, optionally split across numbered segments
// (.001, .002, ...). The only structure raw imposes is segmentation; all
// geometry is whatever the caller already knows about the source media.
package raw

// Info is the aggregated description of one raw acquisition.
type Info struct {
	SegmentFiles []string
	SegmentSizes []int64
	TotalSize    int64
}

// VerifyEntry is the single whole-image hash verification result for a
// raw acquisition (raw has no embedded hash to cross-check against, and
// no companion-log hash is compared either, so the result is always
// reported as "computed").
type VerifyEntry struct {
	Algorithm string
	Computed  string
	Size      int64
}

// ChunkVerifyEntry is one entry of a per-segment verify_chunks pass,
// useful for locating which segment a damaged region falls in.
type ChunkVerifyEntry struct {
	SegmentPath string
	SegmentSize int64
	Computed    string
}
