package internal

// Rune values at or above this code point need a surrogate pair in UTF-16.
const supplementaryPlaneMin = 0x10000

// UTF16Len returns the number of UTF-16 code units needed to encode s.
// Rich-messaging wire protocols index formatting spans by UTF-16 code
// unit, so characters outside the Basic Multilingual Plane (most emoji,
// some CJK extension characters) count as two units, not one.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= supplementaryPlaneMin {
			n += 2
		} else {
			n++
		}
	}
	return n
}
