package ad1

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/forensiccase/containerctl/internal/binutil"
	"github.com/forensiccase/containerctl/internal/cerrors"
)

// buildSegmentPath derives the path of segment index (1-based) from the
// first segment's path by replacing its final character with the
// segment's decimal index, e.g. "case.ad1" -> "case.ad2", "case.ad10".
func buildSegmentPath(base string, index uint32) string {
	if base == "" {
		return base
	}
	return base[:len(base)-1] + strconv.FormatUint(uint64(index), 10)
}

// segmentSpan is the logical payload span of every segment, derived from
// the first segment's fragmentsSize field. All segments share one span:
// the container only ever reads fragmentsSize from segment 1.
func segmentSpan(fragmentsSize uint32) uint64 {
	total := uint64(fragmentsSize) * segmentBlockSize
	if total < logicalMargin {
		return 0
	}
	return total - logicalMargin
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	if name == "" {
		return parent
	}
	return parent + "/" + name
}

// validateFormat checks the signature and segment count of path without
// requiring every segment to exist on disk.
func validateFormat(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("ad1: input not found: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("ad1: open %s: %w", path, err)
	}
	defer f.Close()

	sig, err := binutil.ReadString(f, 0, len(Signature))
	if err != nil {
		return fmt.Errorf("ad1: read signature: %w", err)
	}
	if sig != Signature {
		return fmt.Errorf("ad1: %s: %w", path, cerrors.ErrUnrecognizedContainer)
	}
	count, err := binutil.ReadU32(f, 0x1c)
	if err != nil {
		return fmt.Errorf("ad1: read segment count: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("ad1: %s: invalid segment count: %w", path, cerrors.ErrMalformedHeader)
	}
	return nil
}

// validateInput runs validateFormat and additionally requires every
// segment file to exist.
func validateInput(path string) error {
	if err := validateFormat(path); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("ad1: open %s: %w", path, err)
	}
	count, err := binutil.ReadU32(f, 0x1c)
	f.Close()
	if err != nil {
		return fmt.Errorf("ad1: read segment count: %w", err)
	}
	for index := uint32(1); index <= count; index++ {
		segPath := buildSegmentPath(path, index)
		if _, err := os.Stat(segPath); err != nil {
			return fmt.Errorf("ad1: missing segment %s: %w", segPath, cerrors.ErrMissingSegment)
		}
	}
	return nil
}

// segmentFilesWithSizes walks the expected segment chain for
// segmentCount segments, returning present segment names/sizes, their
// combined size, and the names of any segments that are missing.
func segmentFilesWithSizes(path string, segmentCount uint32) (names []string, sizes []uint64, total uint64, missing []string) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	for i := uint32(1); i <= segmentCount; i++ {
		name := fmt.Sprintf("%s.ad%d", stem, i)
		segPath := filepath.Join(dir, name)
		info, err := os.Stat(segPath)
		if err != nil {
			missing = append(missing, name)
			continue
		}
		names = append(names, name)
		sizes = append(sizes, uint64(info.Size()))
		total += uint64(info.Size())
	}
	return names, sizes, total, missing
}

// isAD1 reports whether path's first bytes carry the AD1 signature.
func isAD1(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("ad1: open %s: %w", path, err)
	}
	defer f.Close()
	sig, err := binutil.ReadString(f, 0, len(Signature))
	if err != nil {
		return false, fmt.Errorf("ad1: read signature: %w", err)
	}
	return sig == Signature, nil
}
