package logging

import (
	"strings"
	"unicode/utf8"
)

// RedactEmail keeps the first two runes of the local part and the domain: "jane@x.com" -> "ja****@x.com".
// Malformed addresses and local parts shorter than three runes come back trimmed but otherwise unchanged.
func RedactEmail(s string) string {
	s = strings.TrimSpace(s)
	local, domain, ok := strings.Cut(s, "@")
	if !ok || local == "" || domain == "" {
		return s
	}
	if utf8.RuneCountInString(local) < 3 {
		return s
	}
	return prefixRunes(local, 2) + "****@" + domain
}

// RedactToken keeps the first four runes of an opaque credential.
func RedactToken(s string) string {
	if s == "" {
		return ""
	}
	if utf8.RuneCountInString(s) <= 8 {
		return "****"
	}
	return prefixRunes(s, 4) + "****"
}

func prefixRunes(s string, n int) string {
	offset := 0
	for count := 0; count < n && offset < len(s); count++ {
		_, size := utf8.DecodeRuneInString(s[offset:])
		offset += size
	}
	return s[:offset]
}
