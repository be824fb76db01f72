package container

import (
	"fmt"
	"strings"

	"github.com/forensiccase/containerctl/internal/ad1"
	"github.com/forensiccase/containerctl/internal/archivedetect"
	"github.com/forensiccase/containerctl/internal/cerrors"
	"github.com/forensiccase/containerctl/internal/ewf"
	"github.com/forensiccase/containerctl/internal/forensiclog"
	"github.com/forensiccase/containerctl/internal/raw"
	"github.com/forensiccase/containerctl/internal/ufed"
)

var log = forensiclog.Component("container")

// Detect inspects path and, when extension alone is ambiguous, reads
// magic bytes, returning which parser the façade's other operations
// should dispatch to. Check order: UFED, EWF (physical), EWF (logical),
// AD1, archive family, raw.
func Detect(path string) (Kind, error) {
	lower := strings.ToLower(path)

	if ufed.IsUFED(path) {
		return KindUFED, nil
	}

	isLogicalExt := strings.HasSuffix(lower, ".l01") || strings.HasSuffix(lower, ".lx01")
	if isEWF, _ := ewf.IsEWF(path); isEWF {
		if isLogicalExt {
			return KindEWFLogical, nil
		}
		return KindEWF, nil
	}

	if ok, _ := ad1.IsAD1(path); ok {
		return KindAD1, nil
	}

	if _, err := archivedetect.DetectFormat(path); err == nil {
		return KindArchive, nil
	}

	if raw.IsRaw(path) {
		return KindRaw, nil
	}

	return "", fmt.Errorf("container: %s: %w", path, cerrors.ErrUnrecognizedContainer)
}
