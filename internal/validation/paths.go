package validation

import "strings"

// HasTraversal reports whether p contains a parent-directory segment
// anywhere, including percent-encoded forms.
func HasTraversal(p string) bool {
	lower := strings.ToLower(p)
	return strings.Contains(lower, "..") ||
		strings.Contains(lower, "%2e%2e") ||
		strings.Contains(lower, ".%2e") ||
		strings.Contains(lower, "%2e.")
}
