package container

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forensiccase/containerctl/internal/config"
)

func writeRawSegments(t *testing.T, dir, base string, sizes []int) []byte {
	t.Helper()
	var whole bytes.Buffer
	for i, n := range sizes {
		data := make([]byte, n)
		for j := range data {
			data[j] = byte((i*131 + j) % 256)
		}
		name := fmt.Sprintf("%s.%03d", base, i+1)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
		whole.Write(data)
	}
	return whole.Bytes()
}

func TestDetectRawImage(t *testing.T) {
	dir := t.TempDir()
	writeRawSegments(t, dir, "case", []int{256})

	kind, err := Detect(filepath.Join(dir, "case.001"))
	require.NoError(t, err)
	assert.Equal(t, KindRaw, kind)
}

func TestDetectUnrecognized(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("just a plain text file, not any evidence container"), 0o644))

	_, err := Detect(path)
	assert.Error(t, err)
}

func TestInfoRawAggregatesSegments(t *testing.T) {
	dir := t.TempDir()
	whole := writeRawSegments(t, dir, "case", []int{100, 50})

	info, err := Info(filepath.Join(dir, "case.001"), false, nil)
	require.NoError(t, err)
	require.NotNil(t, info.Raw)
	assert.Equal(t, KindRaw, info.Kind)
	assert.EqualValues(t, len(whole), info.Raw.TotalSize)
	assert.Len(t, info.Raw.SegmentFiles, 2)
}

func TestVerifyRawMatchesSHA256(t *testing.T) {
	dir := t.TempDir()
	whole := writeRawSegments(t, dir, "case", []int{300})

	entries, err := Verify(filepath.Join(dir, "case.001"), "sha256", nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "computed", entries[0].Status)
	assert.Equal(t, fmt.Sprintf("%x", sha256.Sum256(whole)), entries[0].Computed)
}

func TestExtractRawReconstructsImage(t *testing.T) {
	dir := t.TempDir()
	whole := writeRawSegments(t, dir, "case", []int{64, 64})
	outDir := filepath.Join(dir, "out")

	require.NoError(t, Extract(filepath.Join(dir, "case.001"), outDir, nil))

	got, err := os.ReadFile(filepath.Join(outDir, "case.img"))
	require.NoError(t, err)
	assert.Equal(t, whole, got)
}

func TestExtractRejectsTraversalOutputDir(t *testing.T) {
	dir := t.TempDir()
	writeRawSegments(t, dir, "case", []int{32})

	err := Extract(filepath.Join(dir, "case.001"), "../escape", nil)
	assert.Error(t, err)
}

func TestVerifyChunksRejectsNonEWF(t *testing.T) {
	dir := t.TempDir()
	writeRawSegments(t, dir, "case", []int{32})

	_, err := VerifyChunks(filepath.Join(dir, "case.001"), "md5")
	assert.Error(t, err)
}

func TestExtractUsesOutputBaseDirWhenOutputDirEmpty(t *testing.T) {
	dir := t.TempDir()
	whole := writeRawSegments(t, dir, "case", []int{32})
	outDir := filepath.Join(dir, "default-out")

	cfg := config.Default()
	cfg.Output.BaseDir = outDir

	require.NoError(t, Extract(filepath.Join(dir, "case.001"), "", cfg))

	got, err := os.ReadFile(filepath.Join(outDir, "case.img"))
	require.NoError(t, err)
	assert.Equal(t, whole, got)
}

func TestExtractAllowOutsideBaseBypassesTraversalGuard(t *testing.T) {
	root := t.TempDir()
	workDir := filepath.Join(root, "work")
	require.NoError(t, os.Mkdir(workDir, 0o755))
	writeRawSegments(t, workDir, "case", []int{32})

	origWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(workDir))
	t.Cleanup(func() { _ = os.Chdir(origWD) })

	cfg := config.Default()
	cfg.Security.AllowOutsideBase = true

	require.NoError(t, Extract(filepath.Join(workDir, "case.001"), "../outside", cfg))

	_, err = os.Stat(filepath.Join(root, "outside", "case.img"))
	assert.NoError(t, err)
}
