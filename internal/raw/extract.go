package raw

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/forensiccase/containerctl/internal/cerrors"
	"github.com/forensiccase/containerctl/internal/pathsec"
)

// Extract copies the virtual image to <output_dir>/<basename>.img with
// sequential reads in Verify's pipeline buffer size, on the calling
// goroutine; unlike Verify's pipeline it does not overlap reading with
// writing.
func (s *Session) Extract(outputDir string, progress ProgressFunc) error {
	base := filepath.Base(s.Path)
	stem := stripSegmentSuffix(base)
	destPath, err := pathsec.SafeJoin(outputDir, stem+".img")
	if err != nil {
		return fmt.Errorf("raw: %w", cerrors.ErrPathTraversalBlocked)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("raw: mkdir %s: %w", outputDir, err)
	}
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("raw: create %s: %w", destPath, err)
	}
	defer out.Close()

	buf := make([]byte, pipelineBufferSize)
	var offset int64
	for offset < s.TotalSize {
		want := len(buf)
		if remaining := s.TotalSize - offset; int64(want) > remaining {
			want = int(remaining)
		}
		n, err := s.ReadAt(buf[:want], offset)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return fmt.Errorf("raw: write %s: %w", destPath, werr)
			}
			offset += int64(n)
			if progress != nil {
				progress(offset, s.TotalSize)
			}
		}
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
	}
	return nil
}

// stripSegmentSuffix removes a trailing three-digit numeric extension
// (.001, .002, ...) so a segmented image's extracted copy is named after
// the acquisition rather than its first segment.
func stripSegmentSuffix(base string) string {
	ext := filepath.Ext(base)
	if len(ext) == 4 && allDigits(ext[1:]) {
		return base[:len(base)-len(ext)]
	}
	return base
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
