package parsers

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// conversationNamespace seeds deterministic ids for exports without one,
// so re-ingesting the same file overwrites rather than duplicates.
var conversationNamespace = uuid.MustParse("6f2b8a54-5d0e-4c61-9f53-2a7f0d9c3e11")

var numericPrefix = regexp.MustCompile(`^\d+_`)

// stableID derives a UUID from the given parts.
func stableID(parts ...string) string {
	return uuid.NewSHA1(conversationNamespace, []byte(strings.Join(parts, "\x00"))).String()
}

// titleFromFilename strips directories, a numeric "NN_" prefix and any of
// the given suffixes.
func titleFromFilename(filename string, suffixes ...string) string {
	if filename == "" {
		return ""
	}
	name := numericPrefix.ReplaceAllString(filepath.Base(filename), "")
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return strings.TrimSuffix(name, s)
		}
	}
	return name
}

// truncateRunes returns the first n runes of s.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
