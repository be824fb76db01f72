package ufed

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindCollectionUFDX walks up to three parent directories of path looking
// for EvidenceCollection.ufdx, returning the first one found parsed.
func FindCollectionUFDX(path string) *CollectionInfo {
	current := filepath.Dir(path)
	for i := 0; i < 3; i++ {
		candidate := filepath.Join(current, "EvidenceCollection.ufdx")
		if _, err := os.Stat(candidate); err == nil {
			if info, err := ParseUFDX(candidate); err == nil {
				return info
			}
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return nil
}

// FindAssociatedFiles lists every sibling file next to path (skipping
// macOS housekeeping files), attaching a stored hash when storedHashes
// names a matching filename, plus any `.ufdx` collection files one
// directory up.
func FindAssociatedFiles(path string, storedHashes []StoredHash) []AssociatedFile {
	var associated []AssociatedFile

	dir := filepath.Dir(path)
	if entries, err := os.ReadDir(dir); err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if filepath.Join(dir, name) == path {
				continue
			}
			if strings.HasPrefix(name, "._") || name == ".DS_Store" {
				continue
			}

			lower := strings.ToLower(name)
			info, statErr := entry.Info()
			var size int64
			if statErr == nil {
				size = info.Size()
			}
			associated = append(associated, AssociatedFile{
				Filename:   name,
				FileType:   determineFileType(lower),
				Size:       size,
				StoredHash: findStoredHashFor(lower, storedHashes),
			})
		}
	}

	grandparent := filepath.Dir(dir)
	if grandparent != dir {
		if entries, err := os.ReadDir(grandparent); err == nil {
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				name := entry.Name()
				if !strings.HasSuffix(strings.ToLower(name), ".ufdx") {
					continue
				}
				info, statErr := entry.Info()
				var size int64
				if statErr == nil {
					size = info.Size()
				}
				associated = append(associated, AssociatedFile{
					Filename: "../" + name,
					FileType: "UFDX",
					Size:     size,
				})
			}
		}
	}

	sort.Slice(associated, func(i, j int) bool {
		if associated[i].FileType != associated[j].FileType {
			return associated[i].FileType < associated[j].FileType
		}
		return associated[i].Filename < associated[j].Filename
	})
	return associated
}

func findStoredHashFor(entryLower string, hashes []StoredHash) string {
	for _, h := range hashes {
		hLower := strings.ToLower(h.Filename)
		if hLower == entryLower || strings.Contains(entryLower, hLower) {
			return h.Hash
		}
	}
	return ""
}

func determineFileType(lower string) string {
	switch {
	case strings.HasSuffix(lower, ".ufdr"):
		return "UFDR"
	case strings.HasSuffix(lower, ".ufdx"):
		return "UFDX"
	case strings.HasSuffix(lower, ".ufd"):
		return "UFD"
	case strings.HasSuffix(lower, ".zip"):
		return "ZIP"
	case strings.HasSuffix(lower, ".pdf"):
		return "PDF"
	case strings.HasSuffix(lower, ".xml"):
		return "XML"
	case strings.HasSuffix(lower, ".xlsx"):
		return "XLSX"
	default:
		return "Other"
	}
}

// CheckExtractionSet reports whether associated, given format, looks like
// a complete UFED extraction set (UFDR and ZIP-with-sibling are
// self-contained; UFD/UFDX need a ZIP or report alongside them).
func CheckExtractionSet(associated []AssociatedFile, format Format) bool {
	hasZip, hasPDF := false, false
	for _, f := range associated {
		switch f.FileType {
		case "ZIP":
			hasZip = true
		case "PDF":
			hasPDF = true
		}
	}

	switch format {
	case FormatUFD, FormatUFDX:
		return hasZip || hasPDF
	case FormatUFDR, FormatUFDZip:
		return true
	default:
		return false
	}
}
