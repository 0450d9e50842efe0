package dom

import (
	"fmt"
	"strings"
)

// Selector is a parsed selector expression. The supported grammar is the
// subset the extraction strategies need:
//
//	tag                  element name
//	[attr]               attribute present
//	[attr=v]             attribute equals v
//	[attr*=v]            attribute contains v
//	[attr^=v]            attribute starts with v
//	a b                  descendant combinator
//	a, b                 alternatives
//
// Attribute values may be single- or double-quoted.
type Selector struct {
	alternatives [][]compound
}

type compound struct {
	tag   string
	attrs []attrMatch
}

type attrMatch struct {
	name string
	op   byte // 0 presence, '=' equals, '*' contains, '^' prefix
	val  string
}

// Parse compiles a selector expression.
func Parse(s string) (*Selector, error) {
	sel := &Selector{}
	for _, alt := range strings.Split(s, ",") {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			return nil, fmt.Errorf("empty selector alternative in %q", s)
		}
		var chain []compound
		for _, part := range strings.Fields(alt) {
			c, err := parseCompound(part)
			if err != nil {
				return nil, err
			}
			chain = append(chain, c)
		}
		sel.alternatives = append(sel.alternatives, chain)
	}
	return sel, nil
}

func parseCompound(s string) (compound, error) {
	var c compound
	i := 0
	for i < len(s) && s[i] != '[' {
		i++
	}
	c.tag = s[:i]

	for i < len(s) {
		if s[i] != '[' {
			return c, fmt.Errorf("unexpected %q in selector %q", s[i], s)
		}
		end := strings.IndexByte(s[i:], ']')
		if end < 0 {
			return c, fmt.Errorf("unterminated attribute in selector %q", s)
		}
		body := s[i+1 : i+end]
		i += end + 1

		am, err := parseAttr(body, s)
		if err != nil {
			return c, err
		}
		c.attrs = append(c.attrs, am)
	}
	return c, nil
}

func parseAttr(body, whole string) (attrMatch, error) {
	eq := strings.IndexByte(body, '=')
	if eq < 0 {
		if body == "" {
			return attrMatch{}, fmt.Errorf("empty attribute in selector %q", whole)
		}
		return attrMatch{name: body}, nil
	}

	name := body[:eq]
	op := byte('=')
	if strings.HasSuffix(name, "*") || strings.HasSuffix(name, "^") {
		op = name[len(name)-1]
		name = name[:len(name)-1]
	}
	if name == "" {
		return attrMatch{}, fmt.Errorf("empty attribute name in selector %q", whole)
	}

	val := strings.Trim(body[eq+1:], `"'`)
	return attrMatch{name: name, op: op, val: val}, nil
}

// Matches reports whether n matches the selector, checking ancestor chains
// for descendant combinators.
func (s *Selector) Matches(n *Node) bool {
	for _, chain := range s.alternatives {
		if matchChain(n, chain) {
			return true
		}
	}
	return false
}

func matchChain(n *Node, chain []compound) bool {
	if len(chain) == 0 {
		return false
	}
	if !matchCompound(n, chain[len(chain)-1]) {
		return false
	}
	rest := chain[:len(chain)-1]
	cur := n.parent
	for i := len(rest) - 1; i >= 0; i-- {
		for cur != nil && !matchCompound(cur, rest[i]) {
			cur = cur.parent
		}
		if cur == nil {
			return false
		}
		cur = cur.parent
	}
	return true
}

func matchCompound(n *Node, c compound) bool {
	if c.tag != "" && !strings.EqualFold(c.tag, n.Tag) {
		return false
	}
	for _, am := range c.attrs {
		val, ok := n.Attrs[am.name]
		if !ok {
			return false
		}
		switch am.op {
		case 0:
			// presence only
		case '=':
			if val != am.val {
				return false
			}
		case '*':
			if !strings.Contains(val, am.val) {
				return false
			}
		case '^':
			if !strings.HasPrefix(val, am.val) {
				return false
			}
		}
	}
	return true
}
