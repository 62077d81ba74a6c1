package storage

import (
	"regexp"
	"strings"
)

// maxNameRunes is how much of a subject name goes into its PDF filename
const maxNameRunes = 50

var (
	// Anything that is not a word character, whitespace or hyphen
	unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}_\s\p{Z}\v-]`)
	separators  = regexp.MustCompile(`[-\s\p{Z}\v]+`)
)

// Sanitize makes s safe to use as a file name. Characters other than
// letters, digits, underscores, whitespace and hyphens are dropped, the
// result is trimmed, and runs of whitespace and hyphens become a single
// hyphen. Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	s = unsafeChars.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	return separators.ReplaceAllString(s, "-")
}

// PDFFilename returns the file name for a subject's guide PDF
func PDFFilename(code, name string) string {
	return Sanitize(code+"_"+truncateRunes(name, maxNameRunes)) + ".pdf"
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
