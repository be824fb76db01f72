package ewf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/forensiccase/containerctl/internal/hashing"
	"github.com/forensiccase/containerctl/internal/segments"
)

// GetInfo opens path and returns its full aggregated description.
func GetInfo(path string) (*Info, error) {
	s, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	var segPaths []string
	for _, seg := range s.segs {
		segPaths = append(segPaths, filepath.Base(seg.path))
	}

	return &Info{
		FormatVersion: s.FormatVersion,
		SegmentCount:  len(s.segs),
		Volume:        s.Volume,
		TotalSize:     s.TotalMediaSize(),
		HeaderFields:  s.HeaderFields,
		StoredHashes:  s.StoredHashes,
		SegmentFiles:  segPaths,
	}, nil
}

// QuickInfo is the header-only fast path the façade's InfoFast uses for
// every EWF variant: it walks only the first segment's section chain
// (its table sections included) and skips every non-first segment, for
// a cheap "is this readable and what does it claim to be" check.
func QuickInfo(path string) (*Info, error) {
	sig, err := readSignature(path)
	if err != nil {
		return nil, err
	}
	format := FormatEWF1
	if sig == signatureV2 {
		format = FormatEWF2
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ewf: open %s: %w", path, err)
	}
	defer f.Close()

	s := &Session{
		Path:          path,
		FormatVersion: format,
		HeaderFields:  make(map[string]string),
		segs:          []segmentHandle{{path: path, file: f}},
	}
	if info, statErr := f.Stat(); statErr == nil {
		s.segs[0].size = info.Size()
	}
	if err := s.walkSections(0); err != nil {
		return nil, err
	}

	discovered, _ := segments.DiscoverNumberedSegments(path)

	return &Info{
		FormatVersion: format,
		SegmentCount:  maxInt(len(discovered), 1),
		Volume:        s.Volume,
		TotalSize:     s.TotalMediaSize(),
		HeaderFields:  s.HeaderFields,
	}, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Verify opens path, streams every chunk through algo, and compares the
// result against a stored image-level hash when one is present.
func Verify(path string, algo string) (VerifyEntry, error) {
	s, err := Open(path)
	if err != nil {
		return VerifyEntry{}, err
	}
	defer s.Close()
	parsed, err := parseAlgorithm(algo)
	if err != nil {
		return VerifyEntry{}, err
	}
	return s.Verify(parsed)
}

func parseAlgorithm(name string) (hashing.Algorithm, error) {
	return hashing.ParseAlgorithm(name)
}

// Extract opens path and writes its decompressed media as a single
// `.img` file under outputDir.
func Extract(path, outputDir string) error {
	s, err := Open(path)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Extract(outputDir, nil)
}
