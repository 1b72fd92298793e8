package engine

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxFilenameLen bounds the base name so the final path stays comfortably
// under common filesystem limits.
const maxFilenameLen = 200

var (
	illegalChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	multiSpace   = regexp.MustCompile(`\s+`)
)

// SanitizeFilename replaces characters that are unsafe for filenames with
// underscores and normalizes whitespace. An empty result falls back to
// "video" so a job never produces a nameless file.
func SanitizeFilename(name string) string {
	name = illegalChars.ReplaceAllString(name, "_")
	name = multiSpace.ReplaceAllString(name, " ")
	name = strings.Trim(name, " .")

	if len(name) > maxFilenameLen {
		// Back off to a rune boundary so the cut never splits UTF-8
		cut := maxFilenameLen
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = strings.TrimRight(name[:cut], " .")
	}
	if name == "" {
		return "video"
	}
	return name
}

// EnsureExtension appends ext to name unless it already carries it,
// case-insensitively.
func EnsureExtension(name, ext string) string {
	if strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext)) {
		return name
	}
	return name + ext
}
