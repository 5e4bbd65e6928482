// Package extract recognizes issue-tracker keys in free text.
package extract

import (
	"regexp"
)

// keyPattern matches issue keys like "ABC-123": one or more uppercase
// letters followed by alphanumerics, a hyphen, then digits.
var keyPattern = regexp.MustCompile(`\b[A-Z][A-Z0-9]*-\d+\b`)

// IssueKeys returns the issue keys found in text, deduplicated, in order of
// first occurrence. It returns nil when the text contains no keys.
func IssueKeys(text string) []string {
	matches := keyPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var keys []string
	for _, m := range matches {
		if seen[m] {
			continue
		}
		seen[m] = true
		keys = append(keys, m)
	}
	return keys
}

// FirstIssueKey returns the first issue key in text, or "" when none exists.
func FirstIssueKey(text string) string {
	return keyPattern.FindString(text)
}
