// Package strings provides small text helpers for CLI output.
package strings

import (
	"fmt"
	stdstrings "strings"
)

// Pluralize returns word for a count of one and word+"s" otherwise.
// Example: Pluralize("course", 2) returns "courses".
func Pluralize(word string, count int) string {
	if count == 1 {
		return word
	}
	return word + "s"
}

// Count formats n with the lower-cased, pluralized noun: Count(1, "Order bump")
// returns "1 order bump".
func Count(n int, noun string) string {
	return fmt.Sprintf("%d %s", n, Pluralize(stdstrings.ToLower(noun), n))
}
