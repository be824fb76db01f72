package ad1

import (
	"os"
	"strconv"
	"strings"

	"github.com/forensiccase/containerctl/internal/binutil"
)

// parseVolumeInfo recovers a best-effort volume/filesystem description
// from the fixed-offset region following the logical header: a
// "C:\:NONAME [NTFS]"-style label, an OS description string, and a
// decimal block size, none of which are guaranteed present.
func parseVolumeInfo(f *os.File) *VolumeInfo {
	info := &VolumeInfo{}

	if volumeStr, err := binutil.ReadString(f, 0x2A8, 64); err == nil {
		trimmed := strings.TrimSpace(volumeStr)
		if trimmed != "" && strings.Contains(trimmed, ":") {
			if start := strings.Index(trimmed, "["); start >= 0 {
				if end := strings.Index(trimmed, "]"); end > start {
					info.Filesystem = trimmed[start+1 : end]
				}
				info.VolumeLabel = strings.TrimSpace(trimmed[:start])
			} else {
				info.VolumeLabel = trimmed
			}
		}
	}

	if osStr, err := binutil.ReadString(f, 0x370, 64); err == nil {
		trimmed := strings.TrimSpace(osStr)
		if trimmed != "" && (strings.Contains(trimmed, "Windows") ||
			strings.Contains(trimmed, "NTFS") || strings.Contains(trimmed, "Linux")) {
			info.OSInfo = trimmed
		}
	}

	if blockStr, err := binutil.ReadString(f, 0x2E8, 8); err == nil {
		trimmed := strings.TrimSpace(blockStr)
		if v, err := strconv.ParseUint(trimmed, 10, 32); err == nil && v > 0 && v <= 65536 {
			info.BlockSize = uint32(v)
		}
	}

	if info.IsEmpty() {
		return nil
	}
	return info
}
