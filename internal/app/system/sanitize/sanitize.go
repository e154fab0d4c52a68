// Package sanitize cleans free-text input before it enters a document.
// Fields like visit reasons, removal reasons, and invite names are
// stored as plain text; markup is never allowed through.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text strips all markup from s and trims surrounding whitespace.
func Text(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
