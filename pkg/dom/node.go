// Package dom provides the synthetic document tree the extraction layer
// operates on. Compose surfaces are handed to extractors as *Node regions so
// discovery can be backed by polling, mutation observation, or test fixtures
// without the extractors knowing which.
package dom

import "strings"

// Node is one element in a document tree.
type Node struct {
	Tag      string
	Attrs    map[string]string
	Text     string // direct text content of this node
	Children []*Node

	parent *Node
}

// NewNode builds a node and wires child parent pointers.
func NewNode(tag string, attrs map[string]string, children ...*Node) *Node {
	if attrs == nil {
		attrs = map[string]string{}
	}
	n := &Node{Tag: tag, Attrs: attrs, Children: children}
	for _, c := range children {
		c.parent = n
	}
	return n
}

// Text returns a leaf node carrying only text.
func TextNode(text string) *Node {
	return &Node{Attrs: map[string]string{}, Text: text}
}

// AppendChild adds c as the last child of n.
func (n *Node) AppendChild(c *Node) {
	c.parent = n
	n.Children = append(n.Children, c)
}

// RemoveChild detaches c from n. No-op when c is not a direct child.
func (n *Node) RemoveChild(c *Node) {
	for i, child := range n.Children {
		if child == c {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			c.parent = nil
			return
		}
	}
}

// Parent returns the parent node, nil at the root.
func (n *Node) Parent() *Node { return n.parent }

// Attr returns the attribute value, "" when absent.
func (n *Node) Attr(name string) string { return n.Attrs[name] }

// HasAttr reports whether the attribute is present at all.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attrs[name]
	return ok
}

// SetAttr sets an attribute, used for marker attributes on tracked surfaces.
func (n *Node) SetAttr(name, value string) {
	if n.Attrs == nil {
		n.Attrs = map[string]string{}
	}
	n.Attrs[name] = value
}

// Walk visits the subtree rooted at n in depth-first document order,
// excluding n itself. Return false from fn to stop the walk.
func (n *Node) Walk(fn func(*Node) bool) {
	for _, c := range n.Children {
		if !fn(c) {
			return
		}
		c.Walk(fn)
	}
}

// Query returns the first descendant matching the selector, nil when none
// matches or the selector is invalid.
func (n *Node) Query(selector string) *Node {
	sel, err := Parse(selector)
	if err != nil {
		return nil
	}
	var found *Node
	n.Walk(func(c *Node) bool {
		if sel.Matches(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

// QueryAll returns all descendants matching the selector in document order.
func (n *Node) QueryAll(selector string) []*Node {
	sel, err := Parse(selector)
	if err != nil {
		return nil
	}
	var out []*Node
	n.Walk(func(c *Node) bool {
		if sel.Matches(c) {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Closest returns the nearest ancestor (including n) matching the selector.
func (n *Node) Closest(selector string) *Node {
	sel, err := Parse(selector)
	if err != nil {
		return nil
	}
	for cur := n; cur != nil; cur = cur.parent {
		if sel.Matches(cur) {
			return cur
		}
	}
	return nil
}

// FullText returns the concatenated text of the subtree rooted at n,
// including n's own text, with single spaces between segments.
func (n *Node) FullText() string {
	var parts []string
	if t := strings.TrimSpace(n.Text); t != "" {
		parts = append(parts, t)
	}
	n.Walk(func(c *Node) bool {
		if t := strings.TrimSpace(c.Text); t != "" {
			parts = append(parts, t)
		}
		return true
	})
	return strings.Join(parts, " ")
}
