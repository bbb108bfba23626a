package metadata

import (
	"strings"
)

// ValidateISBN normalizes and checksum-validates an ISBN-10 or ISBN-13.
// Hyphens and spaces are stripped. It returns the normalized ISBN, or ""
// when the input is not a valid ISBN.
func ValidateISBN(raw string) string {
	s := strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	// All-same-digit strings satisfy both checksums but are never real ISBNs.
	if len(s) > 0 && strings.Count(s, s[:1]) == len(s) {
		return ""
	}

	switch len(s) {
	case 10:
		if validISBN10(s) {
			return strings.ToUpper(s)
		}
	case 13:
		if validISBN13(s) {
			return s
		}
	}
	return ""
}

func validISBN10(s string) bool {
	sum := 0
	for i := 0; i < 10; i++ {
		c := s[i]
		var v int
		switch {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case i == 9 && (c == 'X' || c == 'x'):
			v = 10
		default:
			return false
		}
		sum += (10 - i) * v
	}
	return sum%11 == 0
}

func validISBN13(s string) bool {
	sum := 0
	for i := 0; i < 13; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		v := int(c - '0')
		if i%2 == 1 {
			v *= 3
		}
		sum += v
	}
	return sum%10 == 0
}
