package ad1

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/forensiccase/containerctl/internal/cerrors"
	"github.com/forensiccase/containerctl/internal/pathsec"
)

// ExtractWithProgress writes the full item tree under outputDir,
// recreating folder structure and applying any recovered timestamps.
func (s *Session) ExtractWithProgress(outputDir string, progress ProgressFunc) error {
	total := countFiles(s.RootItems)
	current := 0
	for _, item := range s.RootItems {
		if err := s.extractItem(item, outputDir, &current, total, progress); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) extractItem(item Item, parentDir string, current *int, total int, progress ProgressFunc) error {
	itemPath, err := pathsec.SafeJoin(parentDir, item.Name)
	if err != nil {
		return fmt.Errorf("ad1: item %q: %w", item.Name, cerrors.ErrPathTraversalBlocked)
	}

	switch {
	case item.IsFolder():
		if err := os.MkdirAll(itemPath, 0o755); err != nil {
			return fmt.Errorf("ad1: mkdir %s: %w", itemPath, err)
		}
	default:
		if err := os.MkdirAll(filepath.Dir(itemPath), 0o755); err != nil {
			return fmt.Errorf("ad1: mkdir %s: %w", filepath.Dir(itemPath), err)
		}
		data, err := s.readFileData(item)
		if err != nil {
			return fmt.Errorf("ad1: read data for %s: %w", itemPath, err)
		}
		if err := os.WriteFile(itemPath, data, 0o644); err != nil {
			return fmt.Errorf("ad1: write %s: %w", itemPath, err)
		}
		*current++
		if progress != nil {
			progress(*current, total)
		}
	}

	for _, child := range item.Children {
		if err := s.extractItem(child, itemPath, current, total, progress); err != nil {
			return err
		}
	}

	applyMetadataTimestamps(itemPath, item.Metadata)
	return nil
}

// applyMetadataTimestamps recovers access/modified times from item's
// metadata and applies them to the already-written path. Failures are
// logged, not fatal: a missing or malformed timestamp should never abort
// an otherwise-successful extraction.
func applyMetadataTimestamps(path string, metadata []Metadata) {
	var accessTime, modifiedTime *time.Time

	for _, m := range metadata {
		if m.Category != categoryTimestamp {
			continue
		}
		value := metadataString(m.Data)
		switch m.Key {
		case keyAccessTime:
			accessTime = parseTimestamp(value)
		case keyModifiedTime:
			modifiedTime = parseTimestamp(value)
		}
	}

	if accessTime == nil && modifiedTime == nil {
		return
	}
	now := time.Now()
	atime := now
	if accessTime != nil {
		atime = *accessTime
	}
	mtime := atime
	if modifiedTime != nil {
		mtime = *modifiedTime
	}
	if err := os.Chtimes(path, atime, mtime); err != nil {
		log.Warn("failed to set extracted file times", "path", path, "error", err)
	}
}

// parseTimestamp parses the container's fixed "%Y%m%dT%H%M%S" timestamp
// convention, e.g. "20240115T143022".
func parseTimestamp(value string) *time.Time {
	trimmed := strings.TrimSpace(strings.Trim(value, "\x00"))
	if len(trimmed) < 15 {
		return nil
	}
	t, err := time.ParseInLocation("20060102T150405", trimmed[:15], time.Local)
	if err != nil {
		return nil
	}
	return &t
}
