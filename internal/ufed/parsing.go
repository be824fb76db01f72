package ufed

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// ParseUFD reads an INI-style UFD metadata file and returns its
// recognized sections, or nil values for any that weren't present.
func ParseUFD(path string) (*CaseInfo, *DeviceInfo, *ExtractionInfo, []StoredHash, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("ufed: open %s: %w", path, err)
	}
	defer f.Close()

	sections := make(map[string]map[string]string)
	var current string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = line[1 : len(line)-1]
			if _, ok := sections[current]; !ok {
				sections[current] = make(map[string]string)
			}
			continue
		}
		if eq := strings.Index(line, "="); eq >= 0 && current != "" {
			key := strings.TrimSpace(line[:eq])
			value := strings.TrimSpace(line[eq+1:])
			sections[current][key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("ufed: read %s: %w", path, err)
	}

	caseInfo := extractCaseInfo(sections["Crime Case"])
	deviceSection, generalSection := sections["DeviceInfo"], sections["General"]
	deviceInfo := extractDeviceInfo(deviceSection, generalSection)
	extractionInfo := extractExtractionInfo(generalSection)
	storedHashes := extractStoredHashes(sections)

	return caseInfo, deviceInfo, extractionInfo, storedHashes, nil
}

func extractCaseInfo(s map[string]string) *CaseInfo {
	if s == nil {
		return nil
	}
	return &CaseInfo{
		CaseIdentifier: s["Case Identifier"],
		CrimeType:      s["Crime Type"],
		Department:     s["Department"],
		DeviceName:     s["Device Name / Evidence Number"],
		ExaminerName:   s["Examiner Name"],
		Location:       s["Location"],
	}
}

func extractDeviceInfo(device, general map[string]string) *DeviceInfo {
	if device == nil && general == nil {
		return nil
	}
	info := &DeviceInfo{}
	if v := general["Vendor"]; v != "" {
		info.Vendor = v
	} else {
		info.Vendor = device["Vendor"]
	}
	info.Model = device["Model"]
	if v := general["FullName"]; v != "" {
		info.FullName = v
	} else {
		info.FullName = general["Model"]
	}
	if v := device["IMEI1"]; v != "" {
		info.IMEI = v
	} else {
		info.IMEI = device["IMEI"]
	}
	info.IMEI2 = device["IMEI2"]
	info.ICCID = device["ICCID"]
	info.OSVersion = device["OS"]
	info.SerialNumber = device["SerialNumber"]
	return info
}

func extractExtractionInfo(s map[string]string) *ExtractionInfo {
	if s == nil {
		return nil
	}
	return &ExtractionInfo{
		AcquisitionTool: s["AcquisitionTool"],
		ToolVersion:     s["Version"],
		UnitID:          s["UnitId"],
		ExtractionType:  s["ExtractionType"],
		ConnectionType:  s["ConnectionType"],
		StartTime:       s["Date"],
		EndTime:         s["EndTime"],
		GUID:            s["GUID"],
		MachineName:     s["MachineName"],
	}
}

func extractStoredHashes(sections map[string]map[string]string) []StoredHash {
	var hashes []StoredHash
	for _, algo := range []string{"SHA256", "SHA1", "MD5"} {
		section, ok := sections[algo]
		if !ok {
			continue
		}
		names := make([]string, 0, len(section))
		for name := range section {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			hashes = append(hashes, StoredHash{Filename: name, Algorithm: algo, Hash: section[name]})
		}
	}
	return hashes
}

// ParseUFDX reads an EvidenceCollection.ufdx XML file with a small
// attribute-sniffing parser (no DTD, no namespace handling — these files
// never carry either in practice).
func ParseUFDX(path string) (*CollectionInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ufed: read %s: %w", path, err)
	}
	content := string(data)

	info := &CollectionInfo{
		EvidenceID: extractXMLAttr(content, "EvidenceID"),
		Vendor:     extractXMLAttr(content, "Vendor"),
		Model:      extractXMLAttr(content, "Model"),
		DeviceGUID: extractXMLAttr(content, "Guid"),
		UFDXPath:   path,
	}
	for _, line := range strings.Split(content, "\n") {
		if strings.Contains(line, "<Extraction") && strings.Contains(line, "Path=") {
			if v := extractXMLAttr(line, "Path"); v != "" {
				info.Extractions = append(info.Extractions, v)
			}
		}
	}
	return info, nil
}

// extractXMLAttr returns the value of the first attrName="..." occurrence
// in content, or "" if absent.
func extractXMLAttr(content, attrName string) string {
	pattern := attrName + "=\""
	start := strings.Index(content, pattern)
	if start < 0 {
		return ""
	}
	valueStart := start + len(pattern)
	rest := content[valueStart:]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return ""
	}
	return rest[:end]
}
