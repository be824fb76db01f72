package ad1

import (
	"bufio"
	"fmt"
	"os"

	"github.com/forensiccase/containerctl/internal/hashing"
)

// IsAD1 reports whether path's signature identifies it as an AD1
// container, without validating segment completeness.
func IsAD1(path string) (bool, error) {
	return isAD1(path)
}

// InfoFast reads only the headers of path, tolerating missing segments.
// Use this for quick detection/display where the full item tree is not
// needed.
func InfoFast(path string) (*Info, error) {
	if err := validateFormat(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ad1: open %s: %w", path, err)
	}
	defer f.Close()

	segHeader, err := readSegmentHeader(f)
	if err != nil {
		return nil, err
	}
	logHeader, err := readLogicalHeader(f)
	if err != nil {
		return nil, err
	}

	volume := parseVolumeInfo(f)
	companion := parseCompanionLog(path)
	names, sizes, total, missing := segmentFilesWithSizes(path, segHeader.SegmentNumber)

	return &Info{
		Segment:         segHeader,
		Logical:         logHeader,
		SegmentFiles:    names,
		SegmentSizes:    sizes,
		TotalSize:       total,
		MissingSegments: missing,
		Volume:          volume,
		CompanionLog:    companion,
	}, nil
}

// GetInfo opens path fully (every segment must be present) and returns
// its complete description, walking the item tree when includeTree is
// set. opts tunes the session's decompression cache and concurrency
// threshold; the zero value behaves like DefaultOptions().
func GetInfo(path string, includeTree bool, opts Options) (*Info, error) {
	session, err := OpenWithOptions(path, opts)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	var tree []TreeEntry
	if includeTree {
		collectTree(session.RootItems, "", &tree)
	}

	names, sizes, total, missing := segmentFilesWithSizes(path, session.SegmentHeader.SegmentNumber)

	f, err := os.Open(path)
	var volume *VolumeInfo
	if err == nil {
		volume = parseVolumeInfo(f)
		f.Close()
	}
	companion := parseCompanionLog(path)

	return &Info{
		Segment:         session.SegmentHeader,
		Logical:         session.LogicalHeader,
		ItemCount:       session.ItemCount,
		Tree:            tree,
		SegmentFiles:    names,
		SegmentSizes:    sizes,
		TotalSize:       total,
		MissingSegments: missing,
		Volume:          volume,
		CompanionLog:    companion,
	}, nil
}

func collectTree(items []Item, parentPath string, out *[]TreeEntry) {
	for _, item := range items {
		path := joinPath(parentPath, item.Name)
		size := item.DecompressedSize
		if item.IsFolder() {
			size = 0
		}
		*out = append(*out, TreeEntry{
			Path:     path,
			IsDir:    item.IsFolder(),
			Size:     size,
			ItemType: item.ItemType,
		})
		collectTree(item.Children, path, out)
	}
}

// Verify opens path and computes algo for every file item in its tree.
// opts tunes the session's decompression cache and concurrency
// threshold; the zero value behaves like DefaultOptions().
func Verify(path string, algo hashing.Algorithm, opts Options) ([]VerifyEntry, error) {
	session, err := OpenWithOptions(path, opts)
	if err != nil {
		return nil, err
	}
	defer session.Close()
	return session.VerifyWithProgress(algo, nil)
}

// Extract opens path and writes its full item tree under outputDir.
// opts tunes the session's decompression cache and concurrency
// threshold; the zero value behaves like DefaultOptions().
func Extract(path, outputDir string, opts Options) error {
	session, err := OpenWithOptions(path, opts)
	if err != nil {
		return err
	}
	defer session.Close()
	return session.ExtractWithProgress(outputDir, nil)
}

// HashSegments computes a single whole-image hash over every segment
// file in sequence, for comparison against a companion log's stored
// image-level hash.
func HashSegments(path string, algo hashing.Algorithm, progress func(processed, total uint64)) (string, error) {
	if err := validateInput(path); err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("ad1: open %s: %w", path, err)
	}
	segHeader, err := readSegmentHeader(f)
	f.Close()
	if err != nil {
		return "", err
	}

	var segmentPaths []string
	var totalSize uint64
	for i := uint32(1); i <= segHeader.SegmentNumber; i++ {
		segPath := buildSegmentPath(path, i)
		info, err := os.Stat(segPath)
		if err != nil {
			return "", fmt.Errorf("ad1: missing segment %s", segPath)
		}
		segmentPaths = append(segmentPaths, segPath)
		totalSize += uint64(info.Size())
	}

	hasher, err := hashing.New(algo)
	if err != nil {
		return "", err
	}
	var processed uint64
	buf := make([]byte, 1024*1024)
	for _, segPath := range segmentPaths {
		sf, err := os.Open(segPath)
		if err != nil {
			return "", fmt.Errorf("ad1: open segment %s: %w", segPath, err)
		}
		reader := bufio.NewReaderSize(sf, len(buf))
		for {
			n, rerr := reader.Read(buf)
			if n > 0 {
				if _, herr := hasher.Update(buf[:n]); herr != nil {
					sf.Close()
					return "", herr
				}
				processed += uint64(n)
				if progress != nil {
					progress(processed, totalSize)
				}
			}
			if rerr != nil {
				break
			}
		}
		sf.Close()
	}
	return hasher.Finalize(), nil
}
