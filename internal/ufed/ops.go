package ufed

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/forensiccase/containerctl/internal/cerrors"
)

// GetInfo opens path, detects its UFED shape, and aggregates every piece
// of metadata this package recovers: case/device/extraction fields (via
// the UFD sidecar), stored hashes, the sibling-file listing, the
// enclosing collection, and path-derived device/evidence-number hints.
func GetInfo(path string) (*Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("ufed: %s: %w", path, cerrors.ErrNotFound)
	}

	format, ok := DetectFormat(path)
	if !ok {
		return nil, fmt.Errorf("ufed: %s: %w", path, cerrors.ErrUnrecognizedContainer)
	}

	parentFolder := filepath.Base(filepath.Dir(path))
	deviceHint := ExtractDeviceHint(path)
	evidenceNumber := ExtractEvidenceNumber(path)

	var caseInfo *CaseInfo
	var deviceInfo *DeviceInfo
	var extractionInfo *ExtractionInfo
	var storedHashes []StoredHash

	switch format {
	case FormatUFD:
		caseInfo, deviceInfo, extractionInfo, storedHashes, err = ParseUFD(path)
		if err != nil {
			log.Warn("failed to parse UFD metadata", "path", path, "error", err)
		}
	case FormatUFDZip:
		if sibling, ok := FindSiblingUFD(path); ok {
			if _, statErr := os.Stat(sibling); statErr == nil {
				caseInfo, deviceInfo, extractionInfo, storedHashes, err = ParseUFD(sibling)
				if err != nil {
					log.Warn("failed to parse sibling UFD metadata", "path", sibling, "error", err)
				}
			}
		}
	}

	associatedFiles := FindAssociatedFiles(path, storedHashes)
	collectionInfo := FindCollectionUFDX(path)
	isExtractionSet := CheckExtractionSet(associatedFiles, format)

	log.Debug("ufed info loaded",
		"path", path,
		"format", format,
		"size", st.Size(),
		"associated_files", len(associatedFiles),
		"is_extraction_set", isExtractionSet,
	)

	return &Info{
		Format:          format,
		Size:            st.Size(),
		ParentFolder:    parentFolder,
		AssociatedFiles: associatedFiles,
		IsExtractionSet: isExtractionSet,
		DeviceHint:      deviceHint,
		EvidenceNumber:  evidenceNumber,
		CaseInfo:        caseInfo,
		DeviceInfo:      deviceInfo,
		ExtractionInfo:  extractionInfo,
		StoredHashes:    storedHashes,
		CollectionInfo:  collectionInfo,
	}, nil
}
