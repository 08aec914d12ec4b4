package cleaner

import (
	"github.com/microcosm-cc/bluemonday"
)

// SanitizeCleaner strips scripts, event handlers and other unsafe markup
// with a bluemonday UGC policy. Generic containers and their class/id
// attributes survive so the semantic converter can still classify them.
type SanitizeCleaner struct {
	policy *bluemonday.Policy
}

// NewSanitizer creates a sanitizing cleaner.
func NewSanitizer() *SanitizeCleaner {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class", "id").Globally()
	p.AllowElements("div", "span", "header", "nav", "main", "section", "article", "footer", "aside")
	return &SanitizeCleaner{policy: p}
}

// Clean removes unsafe markup.
func (c *SanitizeCleaner) Clean(html string) (string, error) {
	return c.policy.Sanitize(html), nil
}

// Name returns the cleaner type.
func (c *SanitizeCleaner) Name() string {
	return "sanitize"
}
