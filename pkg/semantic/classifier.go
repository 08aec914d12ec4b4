package semantic

import (
	"strings"

	"golang.org/x/net/html"
)

// Classifier maps generic elements to semantic tags using an ordered
// keyword table. It is read-only after construction and safe for
// concurrent use.
type Classifier struct {
	rules Rules
}

// NewClassifier builds a classifier over a private copy of rules.
// Keywords are trimmed and lowercased; blank keywords are dropped since
// they would match every element.
func NewClassifier(rules Rules) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	own := make(Rules, 0, len(rules))
	for _, r := range rules {
		kw := strings.ToLower(strings.TrimSpace(r.Keyword))
		if kw == "" {
			continue
		}
		own = append(own, Rule{Keyword: kw, Tag: r.Tag})
	}
	return &Classifier{rules: own}
}

// Rules returns a copy of the table in match order.
func (c *Classifier) Rules() Rules {
	return append(Rules(nil), c.rules...)
}

// Classify returns the tag of the first rule whose keyword occurs in the
// element's signature. Elements without class and id never match.
func (c *Classifier) Classify(n *html.Node) (string, bool) {
	sig := Signature(n)
	if strings.TrimSpace(sig) == "" {
		return "", false
	}
	for _, r := range c.rules {
		if strings.Contains(sig, r.Keyword) {
			return r.Tag, true
		}
	}
	return "", false
}

// Signature is the element's class tokens joined by single spaces, a space,
// then its id, all lowercased.
func Signature(n *html.Node) string {
	class, _ := attr(n, "class")
	id, _ := attr(n, "id")
	return strings.ToLower(strings.Join(strings.Fields(class), " ") + " " + id)
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
