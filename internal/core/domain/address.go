package domain

import (
	"regexp"
	"strings"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ValidAddress reports whether s is a well-formed 20-byte hex address.
func ValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// NormalizeAddress lowercases an address for use as a map key.
// Cooldown lookups must treat case-different spellings as the same recipient.
func NormalizeAddress(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
