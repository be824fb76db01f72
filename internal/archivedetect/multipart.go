package archivedetect

import (
	"path/filepath"
	"strings"

	"github.com/forensiccase/containerctl/internal/segments"
)

// IsMultiPart reports whether path is itself a split-archive segment
// (.7z.NNN, .zip.NNN, .zNN other than .z01, .rNN other than .r00) or the
// first segment of such a split (.7z.001, .zip.001), per the shared
// family-classification table. .z01 and .r00 alone do not count.
func IsMultiPart(path string) bool {
	lower := strings.ToLower(filepath.Base(path))
	return segments.IsArchiveSegment(lower) ||
		strings.HasSuffix(lower, ".7z.001") || strings.HasSuffix(lower, ".zip.001")
}
