package companionlog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forensiccase/containerctl/internal/cerrors"
)

func TestParse_VerifiedHashLines(t *testing.T) {
	// Scenario S5 from the testable-properties corpus.
	content := "MD5 checksum:    e0778ff7fb490fc2c9c56824f9ecf448 : verified\n" +
		"SHA1 checksum:   93d522376d89b8dfe6bb61e4abef2bbb7102765a\n"

	dir := t.TempDir()
	path := filepath.Join(dir, "case.E01.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	log, err := Parse(path)
	require.NoError(t, err)
	require.Len(t, log.Hashes, 2)

	assert.Equal(t, "MD5", log.Hashes[0].Algorithm)
	assert.Equal(t, "e0778ff7fb490fc2c9c56824f9ecf448", log.Hashes[0].Value)
	require.NotNil(t, log.Hashes[0].Verified)
	assert.True(t, *log.Hashes[0].Verified)

	assert.Equal(t, "SHA-1", log.Hashes[1].Algorithm)
	assert.Equal(t, "93d522376d89b8dfe6bb61e4abef2bbb7102765a", log.Hashes[1].Value)
}

func TestParse_NoUsefulData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("just some prose, nothing forensic here\n"), 0o644))

	_, err := Parse(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cerrors.ErrNoUsefulCompanionData))
}

func TestParse_CaseMetadata(t *testing.T) {
	content := "Case Number: 24-042\nExaminer: J. Doe\nEvidence Number: EV-01\n"
	dir := t.TempDir()
	path := filepath.Join(dir, "case_info.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	log, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "24-042", log.CaseNumber)
	assert.Equal(t, "J. Doe", log.Examiner)
	assert.Equal(t, "EV-01", log.EvidenceNumber)
}

func TestCandidatePaths_IncludesToolSpecific(t *testing.T) {
	candidates := CandidatePaths("/evidence/case.E01")
	found := false
	for _, c := range candidates {
		if filepath.Base(c) == "case.E01.txt" {
			found = true
		}
	}
	assert.True(t, found)
}
