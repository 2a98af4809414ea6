package fsops

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// CreateTempDir creates a uniquely named directory under root with the
// given prefix. An empty root means the system temp directory.
func CreateTempDir(fs afero.Fs, root, prefix string) (string, error) {
	if root == "" {
		root = os.TempDir()
	}
	dir, err := afero.TempDir(fs, root, prefix)
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	return dir, nil
}

// CheckWritable checks that new entries can be created in dir
func CheckWritable(fs afero.Fs, dir string) error {
	if _, ok := fs.(*afero.OsFs); ok {
		return checkAccess(dir)
	}

	testFile := filepath.Join(dir, ".binstall-write-test")
	f, err := fs.Create(testFile)
	if err != nil {
		return fmt.Errorf("path not writable: %w", err)
	}
	f.Close()
	return fs.Remove(testFile)
}

// EnsureDir ensures a directory exists with the given permissions
func EnsureDir(fs afero.Fs, path string, perm os.FileMode) error {
	if err := fs.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("ensure directory: %w", err)
	}
	return nil
}

// Exists checks if a path exists
func Exists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}

// IsDir checks if a path is a directory
func IsDir(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// ExistingAncestor returns dir itself, or its closest ancestor, whichever
// exists first. The path found must be a directory.
func ExistingAncestor(fs afero.Fs, dir string) (string, error) {
	dir = filepath.Clean(dir)
	for {
		if Exists(fs, dir) {
			if !IsDir(fs, dir) {
				return "", fmt.Errorf("%s is not a directory", dir)
			}
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no existing ancestor of %s", dir)
		}
		dir = parent
	}
}

// ListFiles returns the slash-separated paths of all regular files below
// dir, relative to dir and sorted
func ListFiles(fs afero.Fs, dir string) ([]string, error) {
	var files []string

	err := afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	sort.Strings(files)
	return files, nil
}
