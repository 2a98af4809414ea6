//go:build !unix

package fsops

import (
	"fmt"
	"os"
)

func checkAccess(dir string) error {
	f, err := os.CreateTemp(dir, ".binstall-write-test-*")
	if err != nil {
		return fmt.Errorf("path not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
