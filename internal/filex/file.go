// Package filex contains filesystem helpers for staging uploaded files
// before they are pushed to object storage.
package filex

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// EnsureSubDir creates (if needed) and returns a subdirectory of the current
// working directory.
func EnsureSubDir(dirName string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// StageUpload copies r into a freshly created temp file under dir and returns
// its path. The original file name is only used for its extension, which is
// preserved so the upload layer can derive a content type.
func StageUpload(dir string, r io.Reader, originalName string) (string, error) {
	ext := filepath.Ext(originalName)

	f, err := os.CreateTemp(dir, "upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("stage upload: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("close staged file: %w", err)
	}

	return f.Name(), nil
}

// Discard removes a staged file. Missing files are not an error: staging
// cleanup runs on every exit path and may race with itself.
func Discard(path string) {
	if path == "" {
		return
	}
	_ = os.Remove(path)
}
