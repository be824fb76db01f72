package archivedetect

import (
	"encoding/binary"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestDetectFormatMagicBytes(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name string
		data []byte
		want Format
	}{
		{"a.7z", []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C, 0x00, 0x04}, FormatSevenZip},
		{"a.zip", []byte{'P', 'K', 0x03, 0x04, 0, 0, 0, 0}, FormatZip},
		{"a.rar4", []byte{'R', 'a', 'r', '!', 0x1A, 0x07, 0x00, 0x00}, FormatRAR4},
		{"a.rar5", []byte{'R', 'a', 'r', '!', 0x1A, 0x07, 0x01, 0x00}, FormatRAR5},
		{"a.gz", []byte{0x1F, 0x8B, 0x08, 0x00, 0, 0, 0, 0}, FormatGzip},
	}
	for _, tc := range cases {
		path := writeFile(t, dir, tc.name, tc.data)
		got, err := DetectFormat(path)
		if err != nil {
			t.Fatalf("%s: DetectFormat: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestDetectFormatTarAtOffset257(t *testing.T) {
	dir := t.TempDir()
	buf := make([]byte, 512)
	copy(buf[257:], []byte("ustar"))
	path := writeFile(t, dir, "a.tar", buf)

	got, err := DetectFormat(path)
	if err != nil {
		t.Fatalf("DetectFormat: %v", err)
	}
	if got != FormatTar {
		t.Fatalf("got %s, want %s", got, FormatTar)
	}
}

func TestDetectFormatUnrecognized(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.bin", []byte("not an archive at all, just text"))
	if _, err := DetectFormat(path); err == nil {
		t.Fatal("expected error for unrecognized file")
	}
}

// buildZIP assembles a minimal ZIP with one central-directory entry
// whose extra field optionally carries the WinZip AES id (0x9901).
func buildZIP(t *testing.T, withAES bool) []byte {
	t.Helper()

	localHeader := []byte{'P', 'K', 0x03, 0x04}
	localHeader = append(localHeader, make([]byte, 26)...) // local header fixed part, unused by parseZIP

	name := []byte("file.txt")
	var extra []byte
	if withAES {
		extra = make([]byte, 4)
		binary.LittleEndian.PutUint16(extra[0:2], aesExtraFieldID)
		binary.LittleEndian.PutUint16(extra[2:4], 0)
	}

	cdEntry := make([]byte, cdHeaderFixedSize)
	copy(cdEntry[0:4], []byte{'P', 'K', 0x01, 0x02})
	binary.LittleEndian.PutUint16(cdEntry[28:30], uint16(len(name)))
	binary.LittleEndian.PutUint16(cdEntry[30:32], uint16(len(extra)))
	binary.LittleEndian.PutUint16(cdEntry[32:34], 0)
	cdEntry = append(cdEntry, name...)
	cdEntry = append(cdEntry, extra...)

	cdOffset := len(localHeader) + len(name)
	buf := append([]byte{}, localHeader...)
	buf = append(buf, name...)
	buf = append(buf, cdEntry...)

	eocd := make([]byte, eocdMinSize)
	copy(eocd[0:4], zipEOCDSig)
	binary.LittleEndian.PutUint16(eocd[10:12], 1)
	binary.LittleEndian.PutUint32(eocd[12:16], uint32(len(cdEntry)))
	binary.LittleEndian.PutUint32(eocd[16:20], uint32(cdOffset))
	buf = append(buf, eocd...)

	return buf
}

func TestDetectZipCentralDirectory(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plain.zip", buildZIP(t, false))

	info, err := Detect(path)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if info.Format != FormatZip {
		t.Fatalf("format = %s, want ZIP", info.Format)
	}
	if info.TotalEntries != 1 {
		t.Errorf("TotalEntries = %d, want 1", info.TotalEntries)
	}
	if info.IsAESEncrypted {
		t.Error("IsAESEncrypted = true, want false")
	}
}

func TestDetectZipAESEncrypted(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "aes.zip", buildZIP(t, true))

	info, err := Detect(path)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if !info.IsAESEncrypted {
		t.Error("IsAESEncrypted = false, want true")
	}
}

func TestDetectZipIsZip64(t *testing.T) {
	dir := t.TempDir()
	buf := buildZIP(t, false)
	// Patch the EOCD total-entries field to the ZIP64 sentinel.
	idx := len(buf) - eocdMinSize
	binary.LittleEndian.PutUint16(buf[idx+10:idx+12], 0xFFFF)
	path := writeFile(t, dir, "zip64.zip", buf)

	info, err := Detect(path)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if !info.IsZip64 {
		t.Error("IsZip64 = false, want true")
	}
}

// buildSevenZip assembles a 32-byte 7z start header with a correctly
// computed CRC32 over the next-header offset/size/CRC fields.
func buildSevenZip(t *testing.T, nextHeaderOffset, nextHeaderSize uint64) []byte {
	t.Helper()
	buf := make([]byte, sevenZipStartHeaderSize)
	copy(buf[0:6], sevenZipSig)
	binary.LittleEndian.PutUint16(buf[6:8], 0x0004) // version

	body := make([]byte, 20)
	binary.LittleEndian.PutUint64(body[0:8], nextHeaderOffset)
	binary.LittleEndian.PutUint64(body[8:16], nextHeaderSize)
	binary.LittleEndian.PutUint32(body[16:20], 0) // next-header CRC, unchecked here
	copy(buf[12:32], body)

	binary.LittleEndian.PutUint32(buf[8:12], crc32.ChecksumIEEE(body))
	return buf
}

func TestDetectSevenZipStartHeaderCRC(t *testing.T) {
	dir := t.TempDir()
	buf := buildSevenZip(t, 0, 0)
	path := writeFile(t, dir, "a.7z", buf)

	info, err := Detect(path)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if info.Format != FormatSevenZip {
		t.Fatalf("format = %s, want 7Z", info.Format)
	}
	if !info.StartHeaderCRCOK {
		t.Error("StartHeaderCRCOK = false, want true")
	}
}

func TestDetectSevenZipCorruptCRC(t *testing.T) {
	dir := t.TempDir()
	buf := buildSevenZip(t, 0, 0)
	buf[8] ^= 0xFF // flip a byte of the stored CRC
	path := writeFile(t, dir, "bad.7z", buf)

	info, err := Detect(path)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if info.StartHeaderCRCOK {
		t.Error("StartHeaderCRCOK = true, want false for corrupted header")
	}
}

func TestDetectSevenZipNextHeaderEncoded(t *testing.T) {
	dir := t.TempDir()
	// Next header immediately follows the start header; mark its
	// property ID as kEncodedHeader.
	buf := buildSevenZip(t, 0, 1)
	buf = append(buf, kEncodedHeader)
	path := writeFile(t, dir, "encoded.7z", buf)

	info, err := Detect(path)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if !info.NextHeaderEncoded {
		t.Error("NextHeaderEncoded = false, want true")
	}
}

func TestIsMultiPart(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"evidence.7z.001", true},
		{"evidence.7z.002", true},
		{"evidence.zip.001", true},
		{"evidence.zip.003", true},
		{"evidence.z01", false},
		{"evidence.z02", true},
		{"evidence.r00", false},
		{"evidence.r01", true},
		{"evidence.7z", false},
		{"evidence.zip", false},
	}
	for _, tc := range cases {
		if got := IsMultiPart(tc.name); got != tc.want {
			t.Errorf("IsMultiPart(%s) = %v, want %v", tc.name, got, tc.want)
		}
	}
}
