package invoker

import "strings"

// RewriteTable maps an exact base URL to the base URL that is actually called.
type RewriteTable map[string]string

// DefaultRewriteTable returns the built-in rewrites.
func DefaultRewriteTable() RewriteTable {
	return RewriteTable{
		"http://34.171.49.45:4443": "https://rival-internal.secretcult.network",
	}
}

// Apply returns the replacement for baseURL and whether one exists. Matching
// is exact.
func (t RewriteTable) Apply(baseURL string) (string, bool) {
	if to, ok := t[baseURL]; ok {
		return to, true
	}
	return baseURL, false
}

// TrimBase trims whitespace and removes a single trailing slash.
func TrimBase(baseURL string) string {
	return strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
}
