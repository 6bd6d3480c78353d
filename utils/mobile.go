package utils

import "strings"

// MinMobileDigits is the shortest mobile number accepted after normalization.
const MinMobileDigits = 10

// NormalizeMobile strips everything but digits from a phone number.
func NormalizeMobile(mobile string) string {
	var b strings.Builder
	b.Grow(len(mobile))
	for _, r := range mobile {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidMobile reports whether a normalized number is long enough.
func ValidMobile(normalized string) bool {
	return len(normalized) >= MinMobileDigits
}

// LastDigits returns up to n trailing characters of s.
func LastDigits(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
