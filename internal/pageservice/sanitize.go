package pageservice

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// HTMLSanitizer returns a filter that strips every tag, dropping script and
// style bodies, and returns plain text. Entities bluemonday emits are
// decoded so "&", "<", ">" and quotes are stored as typed.
func HTMLSanitizer() func(string) string {
	policy := bluemonday.StrictPolicy()
	return func(s string) string {
		return html.UnescapeString(policy.Sanitize(s))
	}
}
