// Package companionlog parses acquisition-tool sidecar files that carry
// hashes and case metadata alongside a container: FTK-style sectioned
// logs, dc3dd/dcfldd line-oriented output, Guymager info files,
// Forensic-MD5 per-segment records, and plain .md5/.sha1/.sha256 hash
// files.
package companionlog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/forensiccase/containerctl/internal/cerrors"
)

// StoredHash is one whole-image or per-file hash recovered from a
// companion log.
type StoredHash struct {
	Algorithm string
	Value     string
	Verified  *bool // nil when the log made no verification claim
}

// SegmentHash is a per-segment hash record from a Forensic-MD5-style log.
type SegmentHash struct {
	Name   string
	Offset uint64
	Size   uint64
	MD5    string
}

// CompanionLog is the parsed result of a sidecar file.
type CompanionLog struct {
	SourcePath         string
	CreatedBy          string
	CaseNumber         string
	EvidenceNumber     string
	Examiner           string
	Notes              string
	AcquisitionStarted string
	Hashes             []StoredHash
	SegmentHashes      []SegmentHash
	Segments           []string
}

func (c *CompanionLog) hasUsefulData() bool {
	return len(c.Hashes) > 0 || len(c.SegmentHashes) > 0 ||
		c.CaseNumber != "" || c.EvidenceNumber != "" || c.Examiner != "" || c.CreatedBy != ""
}

// CandidatePaths returns, in priority order, the sibling filenames that
// might hold a companion log for containerPath.
func CandidatePaths(containerPath string) []string {
	dir := filepath.Dir(containerPath)
	base := filepath.Base(containerPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stemNoNumeric := stripTrailingNumericExt(stem)

	suffixes := []string{
		".txt", ".log", ".LOG", "_info.txt", ".hash", ".md5", ".sha1", ".sha256",
		".info", "_hash.txt", "_hashes.txt", "_acquisition.txt", "_acquisition.log",
	}

	var out []string
	for _, s := range suffixes {
		out = append(out, filepath.Join(dir, base+s))
		if stem != base {
			out = append(out, filepath.Join(dir, stem+s))
		}
	}
	if stemNoNumeric != stem {
		for _, s := range suffixes {
			out = append(out, filepath.Join(dir, stemNoNumeric+s))
		}
	}
	// Tool-specific patterns.
	out = append(out,
		filepath.Join(dir, stemNoNumeric+".E01.txt"),
		filepath.Join(dir, stemNoNumeric+".ad1.txt"),
		filepath.Join(dir, stemNoNumeric+"_img1.ad1.txt"),
	)
	return out
}

func stripTrailingNumericExt(stem string) string {
	ext := filepath.Ext(stem)
	trimmed := strings.TrimPrefix(ext, ".")
	if len(trimmed) == 3 {
		allDigits := true
		for _, r := range trimmed {
			if r < '0' || r > '9' {
				allDigits = false
				break
			}
		}
		if allDigits {
			return strings.TrimSuffix(stem, ext)
		}
	}
	return stem
}

// Discover tries every CandidatePaths entry for containerPath in order
// and returns the first one that parses with useful data.
func Discover(containerPath string) (*CompanionLog, error) {
	for _, candidate := range CandidatePaths(containerPath) {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		log, err := Parse(candidate)
		if err == nil {
			return log, nil
		}
	}
	return nil, fmt.Errorf("companionlog: %w", cerrors.ErrNoUsefulCompanionData)
}

// Parse reads and parses the companion log at path, dispatching to the
// dialect its content sniffs as. It returns cerrors.ErrNoUsefulCompanionData
// when nothing recognizable was found.
func Parse(path string) (*CompanionLog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("companionlog: read %s: %w", path, err)
	}
	content := string(raw)

	log := &CompanionLog{SourcePath: path}
	lower := strings.ToLower(content)

	switch {
	case strings.Contains(lower, "dc3dd") || strings.Contains(lower, "dcfldd"):
		log.CreatedBy = "dc3dd/dcfldd"
		parseGeneral(content, log)
	case strings.Contains(lower, "guymager"):
		log.CreatedBy = "Guymager"
		parseGeneral(content, log)
	case strings.Contains(lower, "forensic md5") || forensicMD5Pattern.MatchString(content):
		log.CreatedBy = "Forensic-MD5"
		parseForensicMD5(content, log)
		parseGeneral(content, log)
	case isSimpleHashExt(path):
		parseSimpleHashFile(content, log)
	default:
		parseGeneral(content, log)
	}

	if !log.hasUsefulData() {
		return nil, fmt.Errorf("companionlog: %s: %w", path, cerrors.ErrNoUsefulCompanionData)
	}
	return log, nil
}

func isSimpleHashExt(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range []string{".md5", ".sha1", ".sha256", ".hash"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// parseSimpleHashFile handles the plain `<hex>  <filename>` or
// `<hex> *<filename>` one-liner hash-file convention.
func parseSimpleHashFile(content string, log *CompanionLog) {
	algo := "MD5"
	lower := strings.ToLower(log.SourcePath)
	switch {
	case strings.HasSuffix(lower, ".sha1"):
		algo = "SHA-1"
	case strings.HasSuffix(lower, ".sha256"):
		algo = "SHA-256"
	}
	for _, line := range splitLines(content) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 1 {
			continue
		}
		if hexTokenPattern.MatchString(fields[0]) {
			log.Hashes = append(log.Hashes, StoredHash{Algorithm: algo, Value: strings.ToLower(fields[0])})
		}
	}
}

var (
	hexTokenPattern     = regexp.MustCompile(`^[0-9a-fA-F]{32,128}$`)
	hashLinePattern     = regexp.MustCompile(`(?i)(md5|sha-?1|sha-?256|sha-?512|blake[23]b?|xxh(3|64))(?:\s*(?:checksum|hash|digest))?[^0-9a-fA-F]{0,20}([0-9a-fA-F]{32,128})`)
	verificationSuffix  = regexp.MustCompile(`(?i):\s*(verified|failed|mismatch|ok|nok)\s*$`)
	forensicMD5Pattern  = regexp.MustCompile(`(?i)NAME:\s*From:.*To:.*Size:.*MD5 Value:`)
	forensicMD5LinePair = regexp.MustCompile(`(?i)^(.*)\s+NAME:\s*From:\s*(\d+),\s*To:\s*(\d+),\s*Size:\s*(\d+),\s*MD5 Value:\s*([0-9a-fA-F]{32})`)
	kvLinePattern       = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9 /_-]*?):\s*(.+)$`)
)

type parserState int

const (
	stateDefault parserState = iota
	stateSegmentList
	stateComputedHashes
	stateVerificationResults
)

// parseGeneral runs the multi-dialect state machine over content,
// merging any recovered fields into log (additively, so it composes
// with a dialect-specific pre-pass like parseForensicMD5).
func parseGeneral(content string, log *CompanionLog) {
	state := stateDefault

	for _, rawLine := range splitLines(content) {
		line := strings.TrimRight(rawLine, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		switch trimmed {
		case "Segment list:", "[Segment List]":
			state = stateSegmentList
			continue
		case "[Computed Hashes]", "Computed Hashes:":
			state = stateComputedHashes
			continue
		case "Image Verification Results:", "[Verification Results]":
			state = stateVerificationResults
			continue
		}

		switch state {
		case stateSegmentList:
			if looksLikeSegmentName(trimmed) {
				log.Segments = append(log.Segments, trimmed)
				continue
			}
			state = stateDefault
		case stateComputedHashes, stateVerificationResults:
			if m := hashLinePattern.FindStringSubmatch(trimmed); m != nil {
				sh := StoredHash{Algorithm: canonicalAlgoName(m[1]), Value: strings.ToLower(m[3])}
				if vm := verificationSuffix.FindStringSubmatch(trimmed); vm != nil {
					v := strings.EqualFold(vm[1], "verified") || strings.EqualFold(vm[1], "ok")
					sh.Verified = &v
				}
				log.Hashes = append(log.Hashes, sh)
				continue
			}
		}

		// Hash records and key:value pairs can appear in default state too.
		if m := hashLinePattern.FindStringSubmatch(trimmed); m != nil {
			sh := StoredHash{Algorithm: canonicalAlgoName(m[1]), Value: strings.ToLower(m[3])}
			if vm := verificationSuffix.FindStringSubmatch(trimmed); vm != nil {
				v := strings.EqualFold(vm[1], "verified") || strings.EqualFold(vm[1], "ok")
				sh.Verified = &v
			}
			log.Hashes = append(log.Hashes, sh)
			continue
		}

		if m := kvLinePattern.FindStringSubmatch(trimmed); m != nil {
			key := strings.ToLower(strings.TrimSpace(m[1]))
			value := strings.TrimSpace(m[2])
			assignKeyValue(log, key, value)
		}
	}
}

func canonicalAlgoName(raw string) string {
	norm := strings.ToLower(strings.ReplaceAll(raw, "-", ""))
	switch {
	case norm == "md5":
		return "MD5"
	case norm == "sha1":
		return "SHA-1"
	case norm == "sha256":
		return "SHA-256"
	case norm == "sha512":
		return "SHA-512"
	case strings.HasPrefix(norm, "blake2"):
		return "BLAKE2b"
	case strings.HasPrefix(norm, "xxh3"):
		return "XXH3-128"
	case strings.HasPrefix(norm, "xxh64"):
		return "XXH64"
	default:
		return strings.ToUpper(raw)
	}
}

func assignKeyValue(log *CompanionLog, key, value string) {
	switch {
	case strings.Contains(key, "case number") || key == "case":
		log.CaseNumber = value
	case strings.Contains(key, "evidence number") || key == "evidence":
		log.EvidenceNumber = value
	case strings.Contains(key, "examiner"):
		log.Examiner = value
	case strings.Contains(key, "notes") || strings.Contains(key, "comment"):
		log.Notes = value
	case strings.Contains(key, "acquisition started") || strings.Contains(key, "acquiry date") || strings.Contains(key, "acquisition date"):
		log.AcquisitionStarted = value
	case strings.Contains(key, "created by") || strings.Contains(key, "acquisition tool"):
		log.CreatedBy = value
	}
}

func looksLikeSegmentName(line string) bool {
	if strings.Contains(line, ":") {
		return false
	}
	return strings.ContainsAny(line, ".") || strings.HasPrefix(line, "/")
}

// parseForensicMD5 parses `<path> NAME: From: X, To: Y, Size: Z, MD5
// Value: <hex>` two-line-style records into per-segment hash entries.
func parseForensicMD5(content string, log *CompanionLog) {
	for _, line := range splitLines(content) {
		m := forensicMD5LinePair.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		from, _ := strconv.ParseUint(m[2], 10, 64)
		size, _ := strconv.ParseUint(m[4], 10, 64)
		log.SegmentHashes = append(log.SegmentHashes, SegmentHash{
			Name:   strings.TrimSpace(m[1]),
			Offset: from,
			Size:   size,
			MD5:    strings.ToLower(m[5]),
		})
	}
}

func splitLines(content string) []string {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}
