// Package pathutil checks that extract-destination and log-file
// directories are writable before a long-running operation starts,
// rather than failing partway through a multi-gigabyte image copy.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// CheckDirectoryWritable checks if a directory exists and is writable.
// If the directory doesn't exist, it attempts to create it.
func CheckDirectoryWritable(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(absPath, 0755); err != nil {
				return fmt.Errorf("directory %s does not exist and cannot be created: %w", absPath, err)
			}
		} else {
			return fmt.Errorf("cannot access directory %s: %w", absPath, err)
		}
	} else if !info.IsDir() {
		return fmt.Errorf("path %s exists but is not a directory", absPath)
	}

	testFile := filepath.Join(absPath, ".containerctl-write-test")
	file, err := os.Create(testFile)
	if err != nil {
		return fmt.Errorf("directory %s is not writable: %w", absPath, err)
	}
	_, writeErr := file.Write([]byte("test"))
	file.Close()
	os.Remove(testFile)

	if writeErr != nil {
		return fmt.Errorf("directory %s is not writable: %w", absPath, writeErr)
	}
	return nil
}

// CheckFileDirectoryWritable checks if the directory containing filePath
// is writable, for config options like a log file that may not exist
// yet.
func CheckFileDirectoryWritable(filePath string, fileType string) error {
	if filePath == "" {
		return nil
	}

	dir := filepath.Dir(filePath)
	if dir == "" || dir == "." {
		dir = "./"
	}

	if err := CheckDirectoryWritable(dir); err != nil {
		return fmt.Errorf("%s file directory check failed: %w", fileType, err)
	}
	return nil
}
