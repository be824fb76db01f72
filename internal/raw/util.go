package raw

import (
	"path/filepath"
	"strings"
)

func lowerBase(path string) string {
	return strings.ToLower(filepath.Base(path))
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}
