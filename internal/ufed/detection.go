package ufed

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/forensiccase/containerctl/internal/forensiclog"
)

var log = forensiclog.Component("ufed")

// IsUFED reports whether path is a UFED file: one of the standard
// extensions, or a .zip with a same-basename .ufd sibling.
func IsUFED(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range Extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	if strings.HasSuffix(lower, ".zip") {
		if sibling, ok := FindSiblingUFD(path); ok {
			_, err := os.Stat(sibling)
			return err == nil
		}
	}
	return false
}

// IsUFEDFilename reports whether filename alone carries a UFED
// extension, without touching the filesystem.
func IsUFEDFilename(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range Extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// DetectFormat classifies path by extension (and, for .zip, sibling
// presence), returning ("", false) when path isn't a recognized UFED
// shape.
func DetectFormat(path string) (Format, bool) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".ufdr"):
		return FormatUFDR, true
	case strings.HasSuffix(lower, ".ufdx"):
		return FormatUFDX, true
	case strings.HasSuffix(lower, ".ufd"):
		return FormatUFD, true
	case strings.HasSuffix(lower, ".zip"):
		if sibling, ok := FindSiblingUFD(path); ok {
			if _, err := os.Stat(sibling); err == nil {
				return FormatUFDZip, true
			}
		}
	}
	return "", false
}

// FindSiblingUFD returns the .ufd path that would be path's metadata
// sidecar, sharing its stem and directory, without checking existence.
func FindSiblingUFD(path string) (string, bool) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if stem == "" {
		return "", false
	}
	return filepath.Join(filepath.Dir(path), stem+".ufd"), true
}

var deviceVocabulary = []string{
	"iphone", "ipad", "samsung", "galaxy", "pixel", "android", "apple", "huawei", "oneplus",
}

// ExtractDeviceHint recovers a device name from path: either a direct
// vocabulary match against the filename stem, or, failing that, a walk
// up through UFED's own extraction-folder naming convention
// ("UFED <Device> <YYYY_MM_DD> (NNN)").
func ExtractDeviceHint(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if stem == "" {
		return ""
	}
	lower := strings.ToLower(stem)
	for _, v := range deviceVocabulary {
		if strings.Contains(lower, v) {
			return stem
		}
	}

	parent := filepath.Dir(path)
	parentName := filepath.Base(parent)
	parentLower := strings.ToLower(parentName)
	if strings.Contains(parentLower, "ufed") || strings.Contains(parentLower, "advancedlogical") ||
		strings.Contains(parentLower, "file system") {
		grandparent := filepath.Dir(parent)
		gpName := filepath.Base(grandparent)
		if strings.Contains(strings.ToLower(gpName), "ufed") {
			return extractDeviceFromUFEDFolder(gpName)
		}
	}
	return ""
}

func extractDeviceFromUFEDFolder(folderName string) string {
	name := strings.TrimSpace(folderName)
	withoutPrefix := name
	if strings.HasPrefix(strings.ToLower(name), "ufed ") {
		withoutPrefix = name[5:]
	}

	if pos := findDatePattern(withoutPrefix); pos >= 0 {
		device := strings.TrimSpace(withoutPrefix[:pos])
		if device != "" {
			return device
		}
	}
	return withoutPrefix
}

// findDatePattern locates a YYYY_MM_DD or YYYY-MM-DD date token and
// returns its starting rune index, or -1 if none is found.
func findDatePattern(s string) int {
	runes := []rune(s)
	n := len(runes)
	if n < 10 {
		return -1
	}
	isDigit := func(r rune) bool { return r >= '0' && r <= '9' }
	isSep := func(r rune) bool { return r == '_' || r == '-' }

	for i := 0; i <= n-10; i++ {
		if !isSep(runes[i+4]) || !isSep(runes[i+7]) {
			continue
		}
		year, month, day := true, true, true
		for j := i; j < i+4; j++ {
			year = year && isDigit(runes[j])
		}
		for j := i + 5; j < i+7; j++ {
			month = month && isDigit(runes[j])
		}
		for j := i + 8; j < i+10; j++ {
			day = day && isDigit(runes[j])
		}
		if year && month && day {
			return i
		}
	}
	return -1
}

// ExtractEvidenceNumber walks up path's parent directories looking for an
// evidence/case-number folder name, skipping known extraction-machinery
// folder names along the way.
func ExtractEvidenceNumber(path string) string {
	current := filepath.Dir(path)
	for {
		name := filepath.Base(current)
		lower := strings.ToLower(name)
		if strings.Contains(lower, "ufed") || strings.Contains(lower, "file system") ||
			strings.Contains(lower, "advancedlogical") {
			parent := filepath.Dir(current)
			if parent == current {
				return ""
			}
			current = parent
			continue
		}

		if strings.Contains(name, "_") && strings.Contains(name, "-") && len(name) >= 10 {
			return name
		}
		if digitCount(name) >= 4 && (strings.Contains(name, "-") || strings.Contains(name, "_")) {
			return name
		}

		parent := filepath.Dir(current)
		if parent == current {
			return ""
		}
		current = parent
	}
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
