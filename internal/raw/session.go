package raw

import (
	"fmt"
	"os"

	"github.com/forensiccase/containerctl/internal/cerrors"
	"github.com/forensiccase/containerctl/internal/forensiclog"
	"github.com/forensiccase/containerctl/internal/segments"
)

var log = forensiclog.Component("raw")

// segmentHandle is one open segment file with its prefix-sum starting
// offset in the virtual image.
type segmentHandle struct {
	path        string
	file        *os.File
	size        int64
	virtualBase int64
}

// Session holds the open segment files of one raw acquisition, ordered so
// that offset o in the virtual image maps to exactly one (segment,
// intra-segment offset) pair via prefix-sum lookup.
type Session struct {
	Path      string
	TotalSize int64

	segs []segmentHandle
}

// Open discovers every segment sharing path's numbering family (or treats
// path as a single-segment image when it isn't part of one) and opens
// each for random-access reads.
func Open(path string) (*Session, error) {
	discovered, err := segments.DiscoverNumberedSegments(path)
	if err != nil || len(discovered) == 0 {
		info, statErr := os.Stat(path)
		if statErr != nil {
			return nil, fmt.Errorf("raw: stat %s: %w", path, statErr)
		}
		discovered = []segments.Segment{{Path: path, Size: info.Size(), Ordinal: 1}}
	}

	s := &Session{Path: path}
	var base int64
	for _, seg := range discovered {
		f, err := os.Open(seg.Path)
		if err != nil {
			return nil, fmt.Errorf("raw: open segment %s: %w", seg.Path, err)
		}
		s.segs = append(s.segs, segmentHandle{path: seg.Path, file: f, size: seg.Size, virtualBase: base})
		base += seg.Size
	}
	s.TotalSize = base
	log.Debug("raw segments opened", "path", path, "segments", len(s.segs), "total_size", s.TotalSize)
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

// ReadAt reads len(buf) bytes starting at virtual offset off, transparently
// crossing segment boundaries. It returns cerrors.ErrOffsetOutOfRange if
// off is beyond the end of the virtual image.
func (s *Session) ReadAt(buf []byte, off int64) (int, error) {
	if off < 0 || off >= s.TotalSize {
		if len(buf) == 0 && off == s.TotalSize {
			return 0, nil
		}
		return 0, fmt.Errorf("raw: offset %d: %w", off, cerrors.ErrOffsetOutOfRange)
	}

	idx := s.segmentIndexFor(off)
	total := 0
	for total < len(buf) && idx < len(s.segs) {
		seg := s.segs[idx]
		intraOffset := off + int64(total) - seg.virtualBase
		if intraOffset >= seg.size {
			idx++
			continue
		}
		want := len(buf) - total
		available := int(seg.size - intraOffset)
		if want > available {
			want = available
		}
		n, err := seg.file.ReadAt(buf[total:total+want], intraOffset)
		total += n
		if err != nil && n < want {
			return total, fmt.Errorf("raw: read segment %s: %w", seg.path, err)
		}
		if intraOffset+int64(n) >= seg.size {
			idx++
		}
	}
	return total, nil
}

// segmentIndexFor returns the index of the segment containing virtual
// offset off, via linear scan of the prefix-sum table (segment counts are
// small enough that this never needs a binary search).
func (s *Session) segmentIndexFor(off int64) int {
	for i, seg := range s.segs {
		if off < seg.virtualBase+seg.size {
			return i
		}
	}
	return len(s.segs)
}

// IsRaw reports whether path looks like a raw/dd image by extension: a
// plain `.dd`/`.raw`/`.img` file, or any `.NNN` numbered segment.
func IsRaw(path string) bool {
	base := lowerBase(path)
	if hasAnySuffix(base, ".dd", ".raw", ".img") {
		return true
	}
	return segments.IsNumberedSegment(base)
}
