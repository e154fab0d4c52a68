// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email lowers and trims an email address so lookups and the unique
// index agree on a canonical form.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case; display casing
// is the format package's job.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Status lowers and trims a membership status or civil-state value before
// it is checked against the closed enumerations.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
