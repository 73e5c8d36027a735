package storage

import (
	"fmt"
	"path"
	"strings"
)

// NormalizeContentType drops parameters (e.g. charset) and lowercases the media type.
func NormalizeContentType(contentType string) string {
	normalized := strings.Split(contentType, ";")[0]
	return strings.TrimSpace(strings.ToLower(normalized))
}

// ValidateKey rejects keys that are empty, absolute or escape their prefix.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("object key is empty")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("object key %q must be a relative slash-separated path", key)
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return fmt.Errorf("object key %q contains an invalid segment", key)
		}
	}
	if path.Clean(key) != key {
		return fmt.Errorf("object key %q is not canonical", key)
	}
	return nil
}
