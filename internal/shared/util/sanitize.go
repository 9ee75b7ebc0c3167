package util

import (
	"errors"
	"path/filepath"
	"strings"
)

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}

// DisplayName turns an uploaded file name into a label: sanitized and without
// its extension. It returns "" when name is unusable.
func DisplayName(name string) string {
	clean, err := SanitizeFileName(name)
	if err != nil {
		return ""
	}
	base := strings.TrimSpace(strings.TrimSuffix(clean, filepath.Ext(clean)))
	if base == "" {
		return clean
	}
	return base
}
