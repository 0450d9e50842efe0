package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/involex/involex/pkg/dom"
	"github.com/involex/involex/pkg/types"
)

// gmailDocument builds a document with account chrome and one compose dialog,
// returning (document, composeRegion).
func gmailDocument(compose *dom.Node) (*dom.Node, *dom.Node) {
	doc := dom.NewNode("html", nil,
		dom.NewNode("div", map[string]string{"data-hovercard-id": "lawyer@example.com"}),
		compose,
	)
	return doc, compose
}

func TestGmailExtract_PreferredSelectors(t *testing.T) {
	compose := dom.NewNode("div", map[string]string{"role": "dialog"},
		dom.NewNode("input", map[string]string{"type": "email", "value": "client@example.com"}),
		dom.NewNode("input", map[string]string{"name": "subjectbox", "value": "Smith Contract"}),
		dom.NewNode("div", map[string]string{"contenteditable": "true", "role": "textbox"},
			dom.TextNode("Please review the attached contract terms"),
		),
	)
	_, region := gmailDocument(compose)

	draft := NewGmailExtractor().Extract(region)
	require.NotNil(t, draft)
	assert.Equal(t, "client@example.com", draft.RecipientAddress)
	assert.Equal(t, "Smith Contract", draft.Subject)
	assert.Equal(t, "Please review the attached contract terms", draft.Body)
	assert.Equal(t, "lawyer@example.com", draft.SenderAddress)
}

func TestGmailExtract_FallbackOrder(t *testing.T) {
	// No input[type=email]; recipient only present as a span[email] chip.
	compose := dom.NewNode("div", map[string]string{"role": "dialog"},
		dom.NewNode("span", map[string]string{"email": "chip@example.com"}),
		dom.NewNode("div", map[string]string{"contenteditable": "true", "role": "textbox"},
			dom.TextNode("body text"),
		),
	)
	_, region := gmailDocument(compose)

	draft := NewGmailExtractor().Extract(region)
	require.NotNil(t, draft)
	assert.Equal(t, "chip@example.com", draft.RecipientAddress)
}

func TestGmailExtract_SkipsNonEmailValues(t *testing.T) {
	// input[type=email] exists but holds no @-value; the chip should win.
	compose := dom.NewNode("div", map[string]string{"role": "dialog"},
		dom.NewNode("input", map[string]string{"type": "email", "value": "typing..."}),
		dom.NewNode("span", map[string]string{"email": "real@example.com"}),
	)
	_, region := gmailDocument(compose)

	draft := NewGmailExtractor().Extract(region)
	require.NotNil(t, draft)
	assert.Equal(t, "real@example.com", draft.RecipientAddress)
}

func TestGmailExtract_TextScanFallback(t *testing.T) {
	// No selector strategy hits; recipient appears as plain text in a span.
	compose := dom.NewNode("div", map[string]string{"role": "dialog"},
		dom.NewNode("span", nil, dom.TextNode("to someone@example.com today")),
	)
	_, region := gmailDocument(compose)

	draft := NewGmailExtractor().Extract(region)
	require.NotNil(t, draft)
	assert.Equal(t, "someone@example.com", draft.RecipientAddress)
}

func TestGmailExtract_MissingFieldsAreEmptyStrings(t *testing.T) {
	compose := dom.NewNode("div", map[string]string{"role": "dialog"},
		dom.NewNode("div", map[string]string{"contenteditable": "true", "role": "textbox"},
			dom.TextNode("only a body"),
		),
	)
	doc := dom.NewNode("html", nil, compose) // no account chrome
	_ = doc

	draft := NewGmailExtractor().Extract(compose)
	require.NotNil(t, draft)
	assert.Equal(t, "", draft.RecipientAddress)
	assert.Equal(t, "", draft.SenderAddress)
	assert.Equal(t, "", draft.Subject)
	assert.Equal(t, "only a body", draft.Body)
}

func TestGmailExtract_EmptyRegion(t *testing.T) {
	e := NewGmailExtractor()
	assert.Nil(t, e.Extract(nil))
	assert.Nil(t, e.Extract(dom.NewNode("div", map[string]string{"role": "dialog"})))
}

func TestOutlookExtract(t *testing.T) {
	compose := dom.NewNode("div", map[string]string{"data-app-section": "MailCompose"},
		dom.NewNode("div", map[string]string{"data-automation-id": "to-field"},
			dom.NewNode("input", map[string]string{"value": "client@example.com"}),
		),
		dom.NewNode("div", map[string]string{"data-automation-id": "subject-field"},
			dom.NewNode("input", map[string]string{"value": "Quarterly review"}),
		),
		dom.NewNode("div", map[string]string{"data-automation-id": "editor"},
			dom.NewNode("div", map[string]string{"contenteditable": "true"},
				dom.TextNode("Attached are the figures."),
			),
		),
	)
	doc := dom.NewNode("html", nil,
		dom.NewNode("div", map[string]string{
			"data-automation-id": "primaryAccountDisplayName",
			"title":              "me@example.com",
		}),
		compose,
	)
	_ = doc

	draft := NewOutlookExtractor().Extract(compose)
	require.NotNil(t, draft)
	assert.Equal(t, "client@example.com", draft.RecipientAddress)
	assert.Equal(t, "Quarterly review", draft.Subject)
	assert.Equal(t, "Attached are the figures.", draft.Body)
	assert.Equal(t, "me@example.com", draft.SenderAddress)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(NewGmailExtractor())
	r.Register(NewOutlookExtractor())

	e, ok := r.Get(types.PlatformGmail)
	require.True(t, ok)
	assert.Equal(t, types.PlatformGmail, e.Platform())

	_, ok = r.Get(types.Platform("yahoo"))
	assert.False(t, ok)
}
