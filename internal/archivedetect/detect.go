package archivedetect

import (
	"bytes"
	"fmt"
	"os"

	"github.com/forensiccase/containerctl/internal/binutil"
	"github.com/forensiccase/containerctl/internal/cerrors"
	"github.com/forensiccase/containerctl/internal/forensiclog"
)

var log = forensiclog.Component("archivedetect")

var (
	sevenZipSig = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	zipLocalSig = []byte{'P', 'K', 0x03, 0x04}
	zipEOCDSig  = []byte{'P', 'K', 0x05, 0x06}
	zip64LocSig = []byte{'P', 'K', 0x06, 0x07}
	rar4Sig     = []byte{'R', 'a', 'r', '!', 0x1A, 0x07, 0x00}
	rar5Sig     = []byte{'R', 'a', 'r', '!', 0x1A, 0x07, 0x01, 0x00}
	gzipSig     = []byte{0x1F, 0x8B}
	tarMagic    = []byte("ustar")
)

// DetectFormat sniffs path's magic bytes and returns the archive family
// it belongs to, without parsing further.
func DetectFormat(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("archivedetect: open %s: %w", path, err)
	}
	defer f.Close()

	header, err := binutil.ReadBytes(f, 0, 8)
	if err != nil {
		return "", fmt.Errorf("archivedetect: read header: %w", err)
	}

	switch {
	case bytes.HasPrefix(header, sevenZipSig):
		return FormatSevenZip, nil
	case bytes.HasPrefix(header, rar5Sig):
		return FormatRAR5, nil
	case bytes.HasPrefix(header, rar4Sig):
		return FormatRAR4, nil
	case bytes.HasPrefix(header, zipLocalSig), bytes.HasPrefix(header, zipEOCDSig), bytes.HasPrefix(header, zip64LocSig):
		return FormatZip, nil
	case bytes.HasPrefix(header, gzipSig):
		return FormatGzip, nil
	}

	tarTag, err := binutil.ReadBytes(f, 257, 5)
	if err == nil && bytes.Equal(tarTag, tarMagic) {
		return FormatTar, nil
	}

	return "", fmt.Errorf("archivedetect: %s: %w", path, cerrors.ErrUnrecognizedContainer)
}

// Detect sniffs path's format and parses whatever structural metadata
// that family exposes (ZIP's end-of-central-directory record, 7z's start
// header). RAR/GZIP/TAR carry nothing beyond their magic bytes in this
// metadata-only view, so their Info has only Format and MultiPart set.
func Detect(path string) (*Info, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	info := &Info{Format: format}
	switch format {
	case FormatZip:
		if err := parseZIP(path, info); err != nil {
			log.Warn("failed to parse ZIP central directory", "path", path, "error", err)
		}
	case FormatSevenZip:
		if err := parseSevenZipStartHeader(path, info); err != nil {
			log.Warn("failed to parse 7z start header", "path", path, "error", err)
		}
	}
	info.MultiPart = IsMultiPart(path)
	return info, nil
}
