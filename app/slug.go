package app

import (
	"strconv"
	"strings"
	"time"
)

// Slugify lowercases the title, maps every run of non-alphanumeric
// characters to a single hyphen and trims the ends.
func Slugify(title string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			hyphen = false
		default:
			if !hyphen && b.Len() > 0 {
				b.WriteByte('-')
				hyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// slugSuffix disambiguates a colliding slug deterministically, without a
// retry loop. Two identical titles created in the same millisecond still
// collide and are rejected by the unique index.
func slugSuffix(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 36)
}
