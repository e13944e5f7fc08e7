// Package tags normalizes the free-form tag lists attached to CRM contacts.
package tags

import "strings"

// Normalize trims each tag, collapses inner runs of whitespace and drops
// empty entries and case-insensitive duplicates. The first spelling of a
// duplicate wins and order is preserved. A list with no usable tag
// normalizes to nil.
func Normalize(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	var result []string
	for _, tag := range raw {
		tag = strings.Join(strings.Fields(tag), " ")
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, tag)
	}
	return result
}
