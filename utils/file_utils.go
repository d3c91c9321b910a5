package utils

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,5}$`)

// GetExtNameWithDot extracts a lowercase extension (".png") from an
// upload name or URL. Anything unusual comes back empty: stored blob
// keys never trust client-supplied names.
func GetExtNameWithDot(name string) string {
	base := path.Base(strings.ToLower(name))
	// strip URL query remnants
	if idx := strings.IndexAny(base, "?#"); idx != -1 {
		base = base[:idx]
	}
	idx := strings.LastIndex(base, ".")
	if idx == -1 {
		return ""
	}
	ext := base[idx:]
	if !extPattern.MatchString(ext) {
		return ""
	}
	return ext
}

// BaseName returns the last path element of an upload name or URL
// path, with query remnants stripped. Display only, never a blob key.
func BaseName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if idx := strings.IndexAny(base, "?#"); idx != -1 {
		base = base[:idx]
	}
	return base
}

// HumanReadableSize renders a byte count the way the index page shows
// it, e.g. "1.24 MB".
func HumanReadableSize(size int64) string {
	kb := float64(size) / 1024
	mb := kb / 1024
	gb := mb / 1024

	switch {
	case size < 1024:
		return fmt.Sprintf("%d B", size)
	case kb < 1024:
		return fmt.Sprintf("%.2f KB", kb)
	case mb < 1024:
		return fmt.Sprintf("%.2f MB", mb)
	default:
		return fmt.Sprintf("%.2f GB", gb)
	}
}
