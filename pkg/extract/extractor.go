// Package extract turns a compose-surface DOM region into a normalized
// EmailDraft. Each platform carries an ordered list of selector strategies
// per field; the first strategy producing a plausible value wins. Extraction
// never fails hard -- an unusable region yields nil.
package extract

import (
	"regexp"
	"strings"

	"github.com/involex/involex/pkg/dom"
	"github.com/involex/involex/pkg/types"
)

// emailToken matches the first email-shaped token inside free text.
var emailToken = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// Extractor reads one platform's compose region.
type Extractor interface {
	Platform() types.Platform

	// Extract returns the draft or nil when the region holds nothing usable.
	// It never panics across this boundary.
	Extract(region *dom.Node) *types.EmailDraft
}

// Registry maps platform names to extractors.
type Registry struct {
	extractors map[types.Platform]Extractor
}

func NewRegistry() *Registry {
	return &Registry{extractors: make(map[types.Platform]Extractor)}
}

func (r *Registry) Register(e Extractor) {
	if e == nil {
		return
	}
	r.extractors[e.Platform()] = e
}

func (r *Registry) Get(p types.Platform) (Extractor, bool) {
	e, ok := r.extractors[p]
	return e, ok
}

// fieldStrategy is one prioritized attempt at extracting a field value.
type fieldStrategy struct {
	selector string
	// attrs are tried in order on each matching node before its text.
	attrs []string
	// requireAt keeps only values containing "@" (recipient/sender fields).
	requireAt bool
}

// firstValue runs strategies in order against scope and returns the first
// non-empty (and, when required, email-shaped) value, trimmed.
func firstValue(scope *dom.Node, strategies []fieldStrategy) string {
	for _, s := range strategies {
		for _, n := range scope.QueryAll(s.selector) {
			for _, a := range s.attrs {
				if v := strings.TrimSpace(n.Attr(a)); v != "" {
					if !s.requireAt || strings.Contains(v, "@") {
						return v
					}
				}
			}
			if v := strings.TrimSpace(n.FullText()); v != "" {
				if !s.requireAt || strings.Contains(v, "@") {
					return v
				}
			}
		}
	}
	return ""
}

// scanForEmail is the generic recipient fallback: the first email-shaped
// token in any span or div of the subtree. Only the recipient field has a
// generic fallback; body and subject do not.
func scanForEmail(scope *dom.Node) string {
	var found string
	for _, sel := range []string{"span", "div"} {
		for _, n := range scope.QueryAll(sel) {
			if m := emailToken.FindString(n.FullText()); m != "" {
				found = m
				break
			}
		}
		if found != "" {
			break
		}
	}
	return found
}

// documentRoot climbs to the top of the tree the region belongs to, for the
// sender lookups that live outside the compose region.
func documentRoot(n *dom.Node) *dom.Node {
	cur := n
	for cur.Parent() != nil {
		cur = cur.Parent()
	}
	return cur
}

// emptyDraft reports whether extraction produced nothing usable at all.
func emptyDraft(d *types.EmailDraft) bool {
	return d.Body == "" && d.RecipientAddress == "" && d.SenderAddress == "" && d.Subject == ""
}
