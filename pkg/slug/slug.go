package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from a product or category name.
// Accented characters are decomposed and stripped so catalog entries like
// "Rosé Bouquet" become "rose-bouquet".
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	// Strip combining marks left over from decomposition (é → e).
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}

	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
