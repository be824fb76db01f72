package archivedetect

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"

	"github.com/forensiccase/containerctl/internal/binutil"
)

const sevenZipStartHeaderSize = 32

// parseSevenZipStartHeader reads 7z's 32-byte start header: a 6-byte
// signature, a 2-byte format version, a CRC32 of the 20 bytes that
// follow, and the next-header offset/size/CRC describing where the
// archive's real (and possibly itself-encoded or encrypted) header
// lives.
func parseSevenZipStartHeader(path string, info *Info) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("archivedetect: open %s: %w", path, err)
	}
	defer f.Close()

	buf, err := binutil.ReadBytes(f, 0, sevenZipStartHeaderSize)
	if err != nil {
		return fmt.Errorf("archivedetect: read start header: %w", err)
	}

	startHeaderCRC := binary.LittleEndian.Uint32(buf[8:12])
	body := buf[12:32] // next-header offset(8) + size(8) + crc(4)
	info.StartHeaderCRCOK = crc32.ChecksumIEEE(body) == startHeaderCRC

	info.NextHeaderOffset = binary.LittleEndian.Uint64(buf[12:20])
	info.NextHeaderSize = binary.LittleEndian.Uint64(buf[20:28])

	nextHeaderID, err := peekNextHeaderID(f, int64(sevenZipStartHeaderSize)+int64(info.NextHeaderOffset))
	if err == nil {
		info.NextHeaderEncoded = nextHeaderID == kEncodedHeader
	}
	return nil
}

// kEncodedHeader is the 7z property ID marking a header that is itself
// compressed/encrypted rather than stored plain.
const kEncodedHeader = 0x17

func peekNextHeaderID(f *os.File, offset int64) (byte, error) {
	b, err := binutil.ReadU8(f, offset)
	return b, err
}
