package format

import (
	"fmt"
	"strings"
	"unicode"
)

// FormatBytes formats a byte count into a human-readable string with 1 decimal place.
// Thresholds: <1KB → B, <1MB → KB, else MB. Badge files never get near a gigabyte.
func FormatBytes(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
	)
	switch {
	case bytes < kb:
		return fmt.Sprintf("%d B", bytes)
	case bytes < mb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mb)
	}
}

// spaceClass is a regexp character-class body matching the same runes as
// isSpace. RE2's \s only covers ASCII whitespace.
const spaceClass = `\t\n\v\f\r\x1c-\x1f\x85\p{Z}`

// isSpace reports whether r is whitespace, counting the ASCII information
// separators U+001C–U+001F as whitespace too.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}
