// Package sanitize cleans user-provided text before it is stored.
package sanitize

import (
	"path"
	"regexp"
	"strings"
	"unicode"
)

const maxFileNameRunes = 255

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes HTML tags, including tags hidden behind encoded entities.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&quot;", "\"",
		"&#39;", "'",
	).Replace(result)
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// FileName reduces a client-supplied file name to a display-safe base name.
// Directory components and control characters are dropped and the result is
// capped at 255 runes. It is metadata only and never used to build storage keys.
func FileName(s string) string {
	s = strings.ReplaceAll(StripHTML(s), "\\", "/")
	s = path.Base(s)
	if s == "." || s == "/" || s == ".." {
		return ""
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)

	runes := []rune(s)
	if len(runes) > maxFileNameRunes {
		s = string(runes[:maxFileNameRunes])
	}
	return s
}
