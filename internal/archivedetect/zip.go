package archivedetect

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/forensiccase/containerctl/internal/binutil"
)

const (
	eocdSearchWindow  = 65557 // 22-byte EOCD + max 65535-byte comment
	eocdMinSize       = 22
	cdHeaderFixedSize = 46
	aesExtraFieldID   = 0x9901
	zip32Sentinel     = 0xFFFFFFFF
)

// parseZIP locates the end-of-central-directory record, decodes the
// entry count and central-directory span, flags ZIP64 when any EOCD
// field is saturated, and scans the central directory for the WinZip AES
// extra-field id to flag encryption.
func parseZIP(path string, info *Info) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("archivedetect: open %s: %w", path, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("archivedetect: stat %s: %w", path, err)
	}
	size := stat.Size()

	window := int64(eocdSearchWindow)
	if window > size {
		window = size
	}
	tail, err := binutil.ReadBytes(f, size-window, int(window))
	if err != nil {
		return fmt.Errorf("archivedetect: read trailer: %w", err)
	}

	idx := bytes.LastIndex(tail, zipEOCDSig)
	if idx < 0 || idx+eocdMinSize > len(tail) {
		return fmt.Errorf("archivedetect: no EOCD record found in %s", path)
	}
	eocd := tail[idx : idx+eocdMinSize]

	totalEntries := binary.LittleEndian.Uint16(eocd[10:12])
	cdSize := binary.LittleEndian.Uint32(eocd[12:16])
	cdOffset := binary.LittleEndian.Uint32(eocd[16:20])

	info.TotalEntries = totalEntries
	info.CentralDirSize = cdSize
	info.CentralDirOffset = cdOffset
	info.IsZip64 = totalEntries == 0xFFFF || cdSize == zip32Sentinel || cdOffset == zip32Sentinel

	info.IsAESEncrypted = scanCentralDirectoryForAES(f, int64(cdOffset), int64(cdSize))
	return nil
}

// scanCentralDirectoryForAES walks every central-directory file header
// starting at cdOffset and checks its extra field for the WinZip AES
// extra-field id (0x9901).
func scanCentralDirectoryForAES(f *os.File, cdOffset, cdSize int64) bool {
	if cdSize <= 0 {
		return false
	}
	buf, err := binutil.ReadBytes(f, cdOffset, int(cdSize))
	if err != nil {
		return false
	}

	pos := 0
	for pos+cdHeaderFixedSize <= len(buf) {
		if !bytes.Equal(buf[pos:pos+4], []byte{'P', 'K', 0x01, 0x02}) {
			break
		}
		nameLen := int(binary.LittleEndian.Uint16(buf[pos+28 : pos+30]))
		extraLen := int(binary.LittleEndian.Uint16(buf[pos+30 : pos+32]))
		commentLen := int(binary.LittleEndian.Uint16(buf[pos+32 : pos+34]))

		extraStart := pos + cdHeaderFixedSize + nameLen
		extraEnd := extraStart + extraLen
		if extraEnd <= len(buf) && extraFieldHasAES(buf[extraStart:extraEnd]) {
			return true
		}

		pos = extraEnd + commentLen
	}
	return false
}

func extraFieldHasAES(extra []byte) bool {
	pos := 0
	for pos+4 <= len(extra) {
		id := binary.LittleEndian.Uint16(extra[pos : pos+2])
		size := int(binary.LittleEndian.Uint16(extra[pos+2 : pos+4]))
		if id == aesExtraFieldID {
			return true
		}
		pos += 4 + size
	}
	return false
}
