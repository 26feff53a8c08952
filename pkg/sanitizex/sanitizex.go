package sanitizex

import (
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// CleanSingleLine NFC-normalizes s, turns control characters into spaces and collapses
// every whitespace run into one ASCII space. Use it for names, shop names and ids.
func CleanSingleLine(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if r == '\u007f' || unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// CleanMultiline keeps newlines and tabs, drops other control characters and trims each line.
func CleanMultiline(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(strings.ReplaceAll(s, "\r\n", "\n"))
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r == '\u007f' || unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Email trims and lower-cases an address. Accounts are looked up by this form.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// FileName reduces an uploaded file name to a safe object key segment:
// directory parts dropped, whitespace runs replaced by "_".
func FileName(s string) string {
	s = strings.ReplaceAll(CleanSingleLine(s), "\\", "/")
	s = path.Base(s)
	if s == "." || s == "/" || s == ".." {
		return "file"
	}
	return strings.ReplaceAll(s, " ", "_")
}
