//go:build unix

package fsops

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// checkAccess asks the kernel whether the current user may create
// entries in dir
func checkAccess(dir string) error {
	if err := unix.Access(dir, unix.W_OK|unix.X_OK); err != nil {
		return fmt.Errorf("path not writable: %s: %w", dir, err)
	}
	return nil
}
