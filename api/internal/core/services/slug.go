package services

import (
	"regexp"
	"strings"
)

var (
	slugStrip   = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	slugSpaces  = regexp.MustCompile(`[\s_]+`)
	slugHyphens = regexp.MustCompile(`-+`)
)

// Slugify derives the URL-stable slug of a listing name.
// "My Cool Agent!!" -> "my-cool-agent", "  A___B  " -> "a-b".
func Slugify(name string) string {
	slug := strings.TrimSpace(strings.ToLower(name))
	slug = slugStrip.ReplaceAllString(slug, "")
	slug = slugSpaces.ReplaceAllString(slug, "-")
	return slugHyphens.ReplaceAllString(slug, "-")
}
