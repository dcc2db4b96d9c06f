package domain

import "strings"

// NormalizeHumanName trims leading/trailing whitespace and collapses internal whitespace runs.
// It is used for participant first/last names.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeEmail trims surrounding whitespace. Case is preserved for display; comparisons
// are case-insensitive.
func NormalizeEmail(s string) string {
	return strings.TrimSpace(s)
}
