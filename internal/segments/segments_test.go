package segments

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsFirstSegment(t *testing.T) {
	first := []string{"case.ad1", "case.e01", "case.7z", "case.7z.001", "case.zip", "case.z01", "case.rar", "case.r00", "case.001", "plain.txt"}
	for _, f := range first {
		assert.Truef(t, IsFirstSegment(f), "%s should be first segment", f)
	}

	notFirst := []string{"case.ad2", "case.e02", "case.7z.002", "case.z02", "case.r01", "case.002"}
	for _, f := range notFirst {
		assert.Falsef(t, IsFirstSegment(f), "%s should not be first segment", f)
	}
}

func TestGetSegmentBasename(t *testing.T) {
	assert.Equal(t, "case", GetSegmentBasename("case.e01"))
	assert.Equal(t, "case", GetSegmentBasename("case.ad2"))
	assert.Equal(t, "case.001", GetSegmentBasename("case.001.ad3"))
	assert.Equal(t, "archive.7z", GetSegmentBasename("archive.7z.002"))
}

func TestIsArchiveSegment(t *testing.T) {
	assert.True(t, IsArchiveSegment("archive.7z.002"))
	assert.True(t, IsArchiveSegment("archive.7z.001"))
	assert.True(t, IsArchiveSegment("archive.z02"))
	assert.True(t, IsArchiveSegment("archive.r01"))
	assert.False(t, IsArchiveSegment("archive.7z"))
}

func TestDiscoverNumberedSegments(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"001", "002", "003"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "img."+n), []byte("xx"), 0o644))
	}
	segs, err := DiscoverNumberedSegments(filepath.Join(dir, "img.001"))
	require.NoError(t, err)
	require.Len(t, segs, 3)
	assert.Equal(t, 1, segs[0].Ordinal)
	assert.Equal(t, 3, segs[2].Ordinal)
}

func TestDiscoverNumberedSegmentsStopsAtGap(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"001", "002"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "img."+n), []byte("xx"), 0o644))
	}
	// img.004 exists but img.003 does not: discovery must stop at the gap.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "img.004"), []byte("xx"), 0o644))

	segs, err := DiscoverNumberedSegments(filepath.Join(dir, "img.001"))
	require.NoError(t, err)
	assert.Len(t, segs, 2)
}
