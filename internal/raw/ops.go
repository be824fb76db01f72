package raw

import (
	"path/filepath"

	"github.com/forensiccase/containerctl/internal/hashing"
	"github.com/forensiccase/containerctl/internal/segments"
)

// GetInfo opens path and returns the segment list and total size of its
// virtual image.
func GetInfo(path string) (*Info, error) {
	s, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	var names []string
	var sizes []int64
	for _, seg := range s.segs {
		names = append(names, filepath.Base(seg.path))
		sizes = append(sizes, seg.size)
	}

	return &Info{
		SegmentFiles: names,
		SegmentSizes: sizes,
		TotalSize:    s.TotalSize,
	}, nil
}

// Verify opens path, streams its virtual image through algo, and returns
// a single whole-image result.
func Verify(path string, algo hashing.Algorithm, progress ProgressFunc) (VerifyEntry, error) {
	s, err := Open(path)
	if err != nil {
		return VerifyEntry{}, err
	}
	defer s.Close()
	return s.Verify(algo, progress)
}

// VerifyChunks opens path and returns a per-segment hash list.
func VerifyChunks(path string, algo hashing.Algorithm) ([]ChunkVerifyEntry, error) {
	s, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.VerifyChunks(algo)
}

// Extract opens path and writes its virtual image to outputDir.
func Extract(path, outputDir string, progress ProgressFunc) error {
	s, err := Open(path)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Extract(outputDir, progress)
}

// DiscoverSegments returns every segment belonging to path's numbering
// family, without opening any of them.
func DiscoverSegments(path string) ([]segments.Segment, error) {
	return segments.DiscoverNumberedSegments(path)
}
