package core

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// NormalizeLabel trims, composes (NFC) and lowers a spreadsheet label so that
// "  HỌ Tên " typed on different keyboards always compares equal to "họ tên".
func NormalizeLabel(s string) string {
	return CleanString(norm.NFC.String(s), true /* lower */)
}
