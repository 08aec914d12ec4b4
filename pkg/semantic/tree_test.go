package semantic

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func appendAll(parent *html.Node, children ...*html.Node) *html.Node {
	for _, c := range children {
		parent.AppendChild(c)
	}
	return parent
}

func render(t *testing.T, n *html.Node) string {
	t.Helper()
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		t.Fatalf("render: %v", err)
	}
	return sb.String()
}

func TestAppendChildrenFrom(t *testing.T) {
	src := appendAll(element("div"), text("a"), element("b"), text("c"))
	dst := appendAll(element("p"), text("x"))

	AppendChildrenFrom(dst, src)

	if src.FirstChild != nil {
		t.Error("expected source to have no children")
	}
	if got := render(t, dst); got != "<p>xa<b></b>c</p>" {
		t.Errorf("unexpected result: %s", got)
	}
	for c := dst.FirstChild; c != nil; c = c.NextSibling {
		if c.Parent != dst {
			t.Errorf("child %q has wrong parent", c.Data)
		}
	}
}

func TestReplaceWithNewTag(t *testing.T) {
	target := appendAll(element("div", "class", "navbar top", "id", "nav1"), text("X"), element("i"))
	parent := appendAll(element("body"), text("before"), target, text("after"))

	repl := ReplaceWithNewTag(target, "nav")

	want := `<body>before<nav class="navbar top" id="nav1">X<i></i></nav>after</body>`
	if got := render(t, parent); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	if repl.Parent != parent {
		t.Error("expected replacement to be attached to the original parent")
	}
	if target.Parent != nil || target.FirstChild != nil || target.Attr != nil {
		t.Error("expected original element to be detached and emptied")
	}
	if repl.DataAtom.String() != "nav" {
		t.Errorf("expected nav atom, got %q", repl.DataAtom.String())
	}
}

func TestReplaceWithNewTag_Detached(t *testing.T) {
	target := appendAll(element("span", "id", "footer"), text("f"))

	repl := ReplaceWithNewTag(target, "footer")

	if got := render(t, repl); got != `<footer id="footer">f</footer>` {
		t.Errorf("unexpected result: %s", got)
	}
}

func TestUnwrapInPlace(t *testing.T) {
	b := appendAll(element("b"), text("B"))
	target := appendAll(element("div", "class", "wrapper"), text("A"), b)
	parent := appendAll(element("section"), text("1"), target, text("2"))

	if !UnwrapInPlace(target) {
		t.Fatal("expected unwrap to succeed")
	}

	if got := render(t, parent); got != "<section>1A<b>B</b>2</section>" {
		t.Errorf("unexpected result: %s", got)
	}
	if b.Parent != parent {
		t.Error("expected children to be re-parented")
	}
	if target.Attr != nil {
		t.Error("expected attributes to be dropped")
	}
}

func TestUnwrapInPlace_EmptyAndDetached(t *testing.T) {
	t.Run("empty element disappears", func(t *testing.T) {
		target := element("span")
		parent := appendAll(element("p"), text("a"), target, text("b"))
		UnwrapInPlace(target)
		if got := render(t, parent); got != "<p>ab</p>" {
			t.Errorf("unexpected result: %s", got)
		}
	})

	t.Run("detached element is left alone", func(t *testing.T) {
		target := appendAll(element("div"), text("x"))
		if UnwrapInPlace(target) {
			t.Error("expected unwrap of a parentless node to report false")
		}
		if target.FirstChild == nil {
			t.Error("expected children to be kept")
		}
	})
}
