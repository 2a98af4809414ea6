// Package platform reports the file name tokens that identify prebuilt
// binaries for the machine binstall runs on.
package platform

import (
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// Info holds the signal tokens for one platform
type Info struct {
	OS   []string
	Arch []string
	Libc []string
}

// Detect returns the tokens for the running machine
func Detect() Info {
	arch, err := host.KernelArch()
	if err != nil || strings.TrimSpace(arch) == "" {
		arch = ArchFromGOARCH(runtime.GOARCH)
	}
	return ForTarget(runtime.GOOS, strings.TrimSpace(arch))
}

// ForTarget returns the tokens for an OS name (GOOS spelling) and a
// kernel architecture name (uname -m spelling)
func ForTarget(goos, kernelArch string) Info {
	info := Info{
		OS:   []string{goos},
		Arch: []string{kernelArch},
	}
	if goos == "linux" {
		info.Libc = []string{"gnu", "musl"}
	}
	return info
}

// ArchFromGOARCH maps a GOARCH value to the uname -m spelling used in
// most release asset names
func ArchFromGOARCH(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "i686"
	case "arm":
		return "armv7l"
	default:
		return goarch
	}
}
