package semantic

import (
	"golang.org/x/net/html"
)

// Rewriter promotes or unwraps every generic element of a tree.
type Rewriter struct {
	classifier *Classifier
}

// NewRewriter creates a rewriter backed by c.
func NewRewriter(c *Classifier) *Rewriter {
	if c == nil {
		c = NewClassifier(nil)
	}
	return &Rewriter{classifier: c}
}

// IsGeneric reports whether n is a div or span element.
func IsGeneric(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.Data == "div" || n.Data == "span")
}

// Collect returns every generic element under root in document order.
func Collect(root *html.Node) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if IsGeneric(n) {
			found = append(found, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return found
}

// Rewrite mutates root in place. All generic elements are collected
// before the first mutation and each one is then processed exactly once;
// elements created by a promotion are never rescanned.
func (r *Rewriter) Rewrite(root *html.Node) *Stats {
	stats := NewStats()
	targets := Collect(root)
	stats.GenericElements = len(targets)

	for _, n := range targets {
		if tag, ok := r.classifier.Classify(n); ok {
			ReplaceWithNewTag(n, tag)
			stats.RecordPromotion(tag)
			continue
		}
		stats.RecordUnwrap(n.Data)
		UnwrapInPlace(n)
	}
	return stats
}
