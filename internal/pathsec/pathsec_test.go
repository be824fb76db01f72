package pathsec

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsTraversalPattern(t *testing.T) {
	bad := []string{
		"../secret.txt",
		`..\secret.txt`,
		"foo/../bar",
		"/etc/passwd",
		`\Windows\System32`,
		`C:\Windows`,
		"file\x00.txt",
		"%2e%2e/secret",
		"file..name.txt",
	}
	for _, f := range bad {
		assert.Truef(t, ContainsTraversalPattern(f), "expected traversal pattern in %q", f)
	}

	good := []string{
		"file.txt",
		"subdir/file.txt",
		"my-file_2024.pdf",
	}
	for _, f := range good {
		assert.Falsef(t, ContainsTraversalPattern(f), "unexpected traversal pattern in %q", f)
	}
}

func TestSafeJoin(t *testing.T) {
	base := t.TempDir()

	ok, err := SafeJoin(base, "evidence/file.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "evidence", "file.txt"), ok)

	_, err = SafeJoin(base, "../escape.txt")
	assert.ErrorIs(t, err, ErrTraversal)

	_, err = SafeJoin(base, "/etc/passwd")
	assert.ErrorIs(t, err, ErrTraversal)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "normal.txt", SanitizeFilename("normal.txt"))
	assert.Equal(t, "path_to_file.txt", SanitizeFilename("path/to/file.txt"))
	assert.Equal(t, "file.txt", SanitizeFilename(`file<>:"|?*.txt`))
	assert.Equal(t, "hidden", SanitizeFilename("...hidden..."))
	assert.Equal(t, "filename.txt", SanitizeFilename("file\x00name.txt"))
}

func TestIsSafePath(t *testing.T) {
	assert.True(t, IsSafePath("file.txt"))
	assert.True(t, IsSafePath("subdir/file.txt"))
	assert.False(t, IsSafePath("../secret.txt"))
	assert.False(t, IsSafePath("/etc/passwd"))
}

