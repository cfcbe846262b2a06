package validation

import "unicode/utf8"

// MobileLength is the number of characters the login screen accepts.
const MobileLength = 10

// ValidateMobile only checks length, like the login form does.
func ValidateMobile(mobile string) bool {
	return utf8.RuneCountInString(mobile) == MobileLength
}

// Present reports whether every value is non-empty.
func Present(values ...string) bool {
	for _, v := range values {
		if v == "" {
			return false
		}
	}
	return true
}
