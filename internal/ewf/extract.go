package ewf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/forensiccase/containerctl/internal/cerrors"
	"github.com/forensiccase/containerctl/internal/pathsec"
)

// Extract writes the full decompressed media as a single raw image file
// under outputDir, named after the container's base filename with a
// `.img` extension.
func (s *Session) Extract(outputDir string, progress func(written, total uint64)) error {
	base := filepath.Base(s.Path)
	ext := filepath.Ext(base)
	stem := base[:len(base)-len(ext)]
	destPath, err := pathsec.SafeJoin(outputDir, stem+".img")
	if err != nil {
		return fmt.Errorf("ewf: %w", cerrors.ErrPathTraversalBlocked)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("ewf: mkdir %s: %w", outputDir, err)
	}
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("ewf: create %s: %w", destPath, err)
	}
	defer out.Close()

	total := s.TotalMediaSize()
	var written uint64
	for idx := range s.chunks {
		data, err := s.readChunk(idx)
		if err != nil {
			return err
		}
		if _, err := out.Write(data); err != nil {
			return fmt.Errorf("ewf: write %s: %w", destPath, err)
		}
		written += uint64(len(data))
		if progress != nil {
			progress(written, total)
		}
	}
	return nil
}
