package security

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidInstallNameRegex allows alphanumeric, dash, underscore, dot and plus
var ValidInstallNameRegex = regexp.MustCompile(`^[a-zA-Z0-9._+-]+$`)

// ValidateInstallName checks that name can be used as a single file name
// inside the destination directory
func ValidateInstallName(name string) error {
	if name == "" {
		return fmt.Errorf("install name cannot be empty")
	}

	if len(name) > 255 {
		return fmt.Errorf("install name too long (max 255 characters)")
	}

	if name == "." || name == ".." {
		return fmt.Errorf("invalid install name: %q", name)
	}

	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("install name must not contain path separators: %s", name)
	}

	if !ValidInstallNameRegex.MatchString(name) {
		return fmt.Errorf("invalid install name %q: must contain only alphanumeric, dash, underscore, dot, or plus characters", name)
	}

	return nil
}

// ValidateSearchQuery rejects queries the search API cannot take
func ValidateSearchQuery(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return fmt.Errorf("search query cannot be empty")
	}

	// GitHub rejects search queries longer than 256 characters
	if len(query) > 256 {
		return fmt.Errorf("search query too long (max 256 characters)")
	}

	if strings.ContainsAny(query, "\x00\n\r") {
		return fmt.Errorf("search query contains control characters")
	}

	return nil
}
