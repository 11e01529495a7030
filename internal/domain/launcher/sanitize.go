package launcher

import (
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/store"
	"github.com/microcosm-cc/bluemonday"
)

// Sanitize returns a transform that strips scripts and event handlers from
// the returned document while keeping its structure and styling.
func Sanitize() Transform {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("html", "head", "body", "title", "meta", "main", "section", "header", "footer", "nav", "article")
	policy.AllowAttrs("charset", "name", "content").OnElements("meta")
	policy.AllowAttrs("class", "id", "style").Globally()
	policy.AllowStyling()

	return func(html string, _ store.Config) (string, error) {
		return policy.Sanitize(html), nil
	}
}
