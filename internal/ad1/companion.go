package ad1

import (
	"bufio"
	"os"
	"strings"
)

// parseCompanionLog recovers case metadata from the AD1-specific
// `<image>.txt` / `<image-with-ad1-swapped-for-ad1.txt>` sidecar
// convention: a simple "Key: value" dialect distinct from the general
// multi-tool format the companionlog package handles, plus a trailing
// free-form "Notes:" block that can span multiple lines.
func parseCompanionLog(ad1Path string) *CompanionLogInfo {
	txtPath := ad1Path + ".txt"
	logPath := strings.ReplaceAll(ad1Path, ".ad1", ".ad1.txt")

	var companionPath string
	switch {
	case fileExists(txtPath):
		companionPath = txtPath
	case fileExists(logPath):
		companionPath = logPath
	default:
		return nil
	}

	f, err := os.Open(companionPath)
	if err != nil {
		return nil
	}
	defer f.Close()

	info := &CompanionLogInfo{}
	var notesLines []string
	inNotes := false

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		lower := strings.ToLower(line)

		if strings.Contains(line, ":") && !inNotes {
			parts := strings.SplitN(line, ":", 2)
			if len(parts) == 2 {
				key := strings.ToLower(strings.TrimSpace(parts[0]))
				value := strings.TrimSpace(parts[1])
				if value != "" {
					switch key {
					case "case number", "case", "case #", "case no":
						info.CaseNumber = value
					case "evidence number", "evidence", "evidence #", "evidence no":
						info.EvidenceNumber = value
					case "examiner name", "examiner":
						info.Examiner = value
					case "md5", "md5 hash", "md5 checksum":
						info.MD5Hash = value
					case "sha1", "sha1 hash", "sha-1", "sha1 checksum":
						info.SHA1Hash = value
					case "acquisition date", "acquired", "date":
						info.AcquisitionDate = value
					case "notes":
						notesLines = append(notesLines, value)
						inNotes = true
					}
				}
			}
		} else if inNotes {
			if strings.Contains(line, ":") && !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
				inNotes = false
			} else if strings.TrimSpace(line) != "" {
				notesLines = append(notesLines, strings.TrimSpace(line))
			}
		}

		if strings.HasPrefix(lower, "md5") && info.MD5Hash == "" {
			if hash, ok := extractHash(line, 32); ok {
				info.MD5Hash = hash
			}
		}
		if (strings.HasPrefix(lower, "sha1") || strings.HasPrefix(lower, "sha-1")) && info.SHA1Hash == "" {
			if hash, ok := extractHash(line, 40); ok {
				info.SHA1Hash = hash
			}
		}
	}

	if len(notesLines) > 0 {
		info.Notes = strings.Join(notesLines, "\n")
	}

	if info.IsEmpty() && info.Notes == "" {
		return nil
	}
	return info
}

func extractHash(line string, expectedLen int) (string, bool) {
	var hex strings.Builder
	for _, r := range line {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F') {
			hex.WriteRune(r)
		}
	}
	if hex.Len() >= expectedLen {
		return strings.ToLower(hex.String()[:expectedLen]), true
	}
	return "", false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
