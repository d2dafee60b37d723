package shell

import "unicode/utf8"

// TruncateLine cuts text to at most max bytes and reports whether anything
// was cut. The cut backs off to a rune boundary so a multi-byte character is
// dropped whole rather than split. A max of zero or less means no bound.
func TruncateLine(text string, max int) (string, bool) {
	if max <= 0 || len(text) <= max {
		return text, false
	}
	return text[:runeBoundary(text, max)], true
}

// runeBoundary returns the largest cut point at or below max that does not
// fall inside an encoded rune. len(s) must exceed max.
func runeBoundary[T string | []byte](s T, max int) int {
	i := max
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
