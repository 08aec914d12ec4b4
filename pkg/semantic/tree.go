package semantic

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// AppendChildrenFrom moves every child of src, in order, to the end of
// dst's children. src is left without children.
func AppendChildrenFrom(dst, src *html.Node) {
	for c := src.FirstChild; c != nil; c = src.FirstChild {
		src.RemoveChild(c)
		dst.AppendChild(c)
	}
}

// ReplaceWithNewTag creates an element named tag that takes over n's
// attributes and children, and puts it where n was. n ends up detached,
// empty and without attributes. The new element is returned.
func ReplaceWithNewTag(n *html.Node, tag string) *html.Node {
	repl := &html.Node{
		Type:      html.ElementNode,
		Data:      tag,
		DataAtom:  atom.Lookup([]byte(tag)),
		Namespace: n.Namespace,
		Attr:      n.Attr,
	}
	n.Attr = nil
	AppendChildrenFrom(repl, n)

	if p := n.Parent; p != nil {
		p.InsertBefore(repl, n)
		p.RemoveChild(n)
	}
	return repl
}

// UnwrapInPlace removes n from its parent and splices its children, in
// order, into the position n occupied. It reports false if n has no parent.
func UnwrapInPlace(n *html.Node) bool {
	p := n.Parent
	if p == nil {
		return false
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		p.InsertBefore(c, n)
	}
	p.RemoveChild(n)
	n.Attr = nil
	return true
}
