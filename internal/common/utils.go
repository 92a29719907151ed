package common

import "strings"

// Blank reports whether s is empty or only whitespace.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// AllPresent returns true if none of the values are blank.
func AllPresent(vals ...string) bool {
	for _, v := range vals {
		if Blank(v) {
			return false
		}
	}
	return true
}

// FirstNonBlank returns the first value that is not blank, trimmed, or "".
func FirstNonBlank(vals ...string) string {
	for _, v := range vals {
		if !Blank(v) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
