package util

import (
	"errors"
	"strings"
)

// ErrBadFileName marks upload names that cannot be turned into storage keys.
var ErrBadFileName = errors.New("invalid file name")

// SanitizeFileName normalizes an upload name for use in storage keys and
// download headers. Traversal sequences are rejected outright; path
// separators and control characters are flattened.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrBadFileName
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return "", ErrBadFileName
	}
	return s, nil
}
