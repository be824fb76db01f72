package pathutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDirectoryWritableCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "evidence-out")
	require.NoError(t, CheckDirectoryWritable(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCheckDirectoryWritableRejectsFile(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(filePath, []byte("x"), 0o644))

	assert.Error(t, CheckDirectoryWritable(filePath))
}

func TestCheckDirectoryWritableRejectsEmptyPath(t *testing.T) {
	assert.Error(t, CheckDirectoryWritable(""))
}

func TestCheckFileDirectoryWritableEmptyPathIsValid(t *testing.T) {
	assert.NoError(t, CheckFileDirectoryWritable("", "log"))
}

func TestCheckFileDirectoryWritableChecksParent(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "sub", "containerctl.log")
	assert.NoError(t, CheckFileDirectoryWritable(logPath, "log"))

	info, err := os.Stat(filepath.Join(dir, "sub"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
