package model

import (
	"strconv"
	"strings"
)

// Publication year bounds, inclusive.
const (
	MinPublicationYear = 1000
	MaxPublicationYear = 2100
)

// Accepted ISBN lengths.
const (
	ISBN10Length = 10
	ISBN13Length = 13
)

// IsValidID reports whether s is a non-empty run of ASCII letters and digits.
func IsValidID(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isAlnum(s[i]) {
			return false
		}
	}
	return true
}

// IsValidISBN reports whether s holds only digits and 'x'/'X' and has
// exactly 10 or 13 of them. The position of 'x' is not checked.
func IsValidISBN(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isDigit(c) && c != 'x' && c != 'X' {
			return false
		}
	}
	return len(s) == ISBN10Length || len(s) == ISBN13Length
}

// IsValidYear reports whether s is a 4-digit year in
// [MinPublicationYear, MaxPublicationYear].
func IsValidYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return false
	}
	return year >= MinPublicationYear && year <= MaxPublicationYear
}

// EqualFold reports whether a and b have the same length and match
// byte for byte after ASCII lowercasing.
func EqualFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if toLower(a[i]) != toLower(b[i]) {
			return false
		}
	}
	return true
}

// TrimBlanks strips leading and trailing spaces and tabs only.
func TrimBlanks(s string) string {
	return strings.Trim(s, " \t")
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlnum(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
