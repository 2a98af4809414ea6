package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateExtractPath prevents directory traversal (Zip Slip) by rejecting
// archive entry names that would land outside targetDir
func ValidateExtractPath(targetDir, entryName string) error {
	if strings.Contains(entryName, "\x00") {
		return fmt.Errorf("entry name contains null byte: %q", entryName)
	}

	cleanPath := filepath.Clean(filepath.FromSlash(entryName))

	if filepath.IsAbs(cleanPath) {
		return fmt.Errorf("absolute path not allowed: %s", entryName)
	}

	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path escapes destination directory: %s", entryName)
	}

	within, err := IsPathWithinDirectory(filepath.Join(targetDir, cleanPath), targetDir)
	if err != nil {
		return err
	}
	if !within {
		return fmt.Errorf("path escapes destination directory: %s", entryName)
	}

	return nil
}

// IsPathWithinDirectory reports whether targetPath is basePath or lies below it.
// Both paths are made absolute first.
func IsPathWithinDirectory(targetPath, basePath string) (bool, error) {
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return false, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	absTarget, err := filepath.Abs(targetPath)
	if err != nil {
		return false, fmt.Errorf("failed to resolve target path: %w", err)
	}

	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil {
		return false, fmt.Errorf("failed to compute relative path: %w", err)
	}

	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, nil
	}

	return true, nil
}
