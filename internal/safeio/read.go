// Package safeio reads files from the audited tree without following a path
// outside the directory it was asked to stay in.
package safeio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrEscapesRoot = errors.New("path escapes root")

// ReadFileUnder reads targetPath only if it resolves under rootDir.
func ReadFileUnder(rootDir, targetPath string) ([]byte, error) {
	rootAbs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}
	targetAbs, err := filepath.Abs(targetPath)
	if err != nil {
		return nil, fmt.Errorf("resolve target path: %w", err)
	}

	rel, err := filepath.Rel(rootAbs, targetAbs)
	if err != nil {
		return nil, fmt.Errorf("compute relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return nil, fmt.Errorf("%w: %s", ErrEscapesRoot, targetPath)
	}
	return readInRoot(rootAbs, filepath.Clean(rel))
}

// ReadFile reads a single file by opening its parent directory as the root.
func ReadFile(targetPath string) ([]byte, error) {
	targetAbs, err := filepath.Abs(targetPath)
	if err != nil {
		return nil, fmt.Errorf("resolve target path: %w", err)
	}
	return readInRoot(filepath.Dir(targetAbs), filepath.Base(targetAbs))
}

// ReadTextUnder is ReadFileUnder for callers that treat an unreadable file
// as empty.
func ReadTextUnder(rootDir, targetPath string) string {
	data, err := ReadFileUnder(rootDir, targetPath)
	if err != nil {
		return ""
	}
	return string(data)
}

func readInRoot(rootDir, name string) ([]byte, error) {
	root, err := os.OpenRoot(rootDir)
	if err != nil {
		return nil, fmt.Errorf("open root: %w", err)
	}
	defer root.Close()

	file, err := root.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}
