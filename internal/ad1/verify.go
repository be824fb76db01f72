package ad1

import (
	"fmt"

	"github.com/forensiccase/containerctl/internal/hashing"
)

// countFiles returns the number of non-folder items in items and their
// descendants, used to size verify/extract progress totals.
func countFiles(items []Item) int {
	total := 0
	for _, item := range items {
		if !item.IsFolder() {
			total++
		}
		total += countFiles(item.Children)
	}
	return total
}

// ProgressFunc reports current/total progress during verify or extract.
type ProgressFunc func(current, total int)

// VerifyWithProgress computes algo over every file item in the tree,
// comparing against any stored hash found in the item's own metadata
// (only MD5 and SHA-1 are ever stored by the container format itself).
func (s *Session) VerifyWithProgress(algo hashing.Algorithm, progress ProgressFunc) ([]VerifyEntry, error) {
	total := countFiles(s.RootItems)
	current := 0
	var results []VerifyEntry
	for _, item := range s.RootItems {
		if err := s.verifyItem(item, "", algo, &results, &current, total, progress); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (s *Session) verifyItem(item Item, parentPath string, algo hashing.Algorithm, out *[]VerifyEntry, current *int, total int, progress ProgressFunc) error {
	path := joinPath(parentPath, item.Name)

	if !item.IsFolder() {
		var stored string
		var hasStored bool
		switch algo {
		case hashing.MD5:
			stored, hasStored = findHash(item.Metadata, keyMD5Hash)
		case hashing.SHA1:
			stored, hasStored = findHash(item.Metadata, keySHA1Hash)
		}

		data, err := s.readFileData(item)
		if err != nil {
			return fmt.Errorf("ad1: read data for %s: %w", path, err)
		}
		hasher, err := hashing.New(algo)
		if err != nil {
			return err
		}
		if _, err := hasher.Update(data); err != nil {
			return fmt.Errorf("ad1: hash %s: %w", path, err)
		}
		computed := hasher.Finalize()

		entry := VerifyEntry{
			Path:      path,
			Algorithm: string(algo),
			Computed:  computed,
			Size:      item.DecompressedSize,
		}
		switch {
		case hasStored && hashing.HashesMatch(computed, stored):
			entry.Status = "ok"
			entry.Stored = stored
		case hasStored:
			entry.Status = "nok"
			entry.Stored = stored
			log.Debug("hash mismatch", "path", path, "stored", stored, "computed", computed)
		default:
			entry.Status = "computed"
		}

		*out = append(*out, entry)
		*current++
		if progress != nil {
			progress(*current, total)
		}
	}

	for _, child := range item.Children {
		if err := s.verifyItem(child, path, algo, out, current, total, progress); err != nil {
			return err
		}
	}
	return nil
}
