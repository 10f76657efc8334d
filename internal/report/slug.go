// Package report lays out a processed lesson on disk: the directory
// derived from the analysis title, the JSON artifacts and the README.
package report

import (
	"regexp"
	"strings"

	"github.com/alnah/go-aula/internal/format"
)

// maxSlugLen caps the slug in bytes. Slugs are ASCII, so bytes are runes.
const maxSlugLen = 50

var (
	titlePrefix = regexp.MustCompile(`(?i)^aula[\s\p{Zs}]*-[\s\p{Zs}]*`)
	slugStrip   = regexp.MustCompile(`[^a-z0-9\s\p{Zs}-]`)
	slugSpaces  = regexp.MustCompile(`[\s\p{Zs}]+`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slug turns a lesson title into a directory-safe name:
// "Aula - Introdução ao Docker!" -> "introducao-ao-docker".
func Slug(title string) string {
	s := titlePrefix.ReplaceAllString(title, "")
	s = format.Fold(strings.ToLower(s))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSlugLen {
		s = s[:maxSlugLen]
	}
	return s
}
