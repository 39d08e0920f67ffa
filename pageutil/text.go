package pageutil

import (
	"strings"

	"github.com/pkg/errors"
)

// CleanText trims s and collapses every run of whitespace, newlines included,
// to a single space
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// GUIDFromURL returns the index'th slash separated segment of url, counting the
// scheme as segment 0. For https://osf.io/abc12/files the guid is at index 3.
func GUIDFromURL(url string, index int) (string, error) {
	parts := strings.Split(url, "/")
	if index < 0 || index >= len(parts) {
		return "", errors.Errorf("url %q has no segment %d", url, index)
	}
	return parts[index], nil
}
