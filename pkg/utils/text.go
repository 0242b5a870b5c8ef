package utils

import "strings"

// Truncate shortens s to at most max runes, appending a marker when text was
// cut. WhatsApp rejects very long message bodies, so previews are capped.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}
