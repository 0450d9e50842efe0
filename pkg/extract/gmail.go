package extract

import (
	"strings"

	"github.com/involex/involex/pkg/dom"
	"github.com/involex/involex/pkg/types"
)

// Gmail selector chains. The compose DOM is not ours and shifts between
// releases and locales, so each field tries selectors in priority order and
// takes the first plausible hit rather than merging matches.
var (
	gmailRecipientStrategies = []fieldStrategy{
		{selector: `input[type=email]`, attrs: []string{"value"}, requireAt: true},
		{selector: `[data-hovercard-id*=@]`, attrs: []string{"data-hovercard-id"}, requireAt: true},
		{selector: `input[name=to]`, attrs: []string{"value"}, requireAt: true},
		{selector: `span[email]`, attrs: []string{"email"}, requireAt: true},
		{selector: `div[email]`, attrs: []string{"email"}, requireAt: true},
		{selector: `[aria-label*=To] input`, attrs: []string{"value"}, requireAt: true},
		{selector: `div[data-name=to] input`, attrs: []string{"value"}, requireAt: true},
	}

	gmailSubjectStrategies = []fieldStrategy{
		{selector: `input[name=subjectbox]`, attrs: []string{"value"}},
		{selector: `[placeholder*=Subject]`, attrs: []string{"value"}},
		{selector: `input[aria-label*=Subject]`, attrs: []string{"value"}},
	}

	gmailBodyStrategies = []fieldStrategy{
		{selector: `[contenteditable=true][role=textbox]`},
		{selector: `[contenteditable=true] div[dir=ltr]`},
		{selector: `[role=textbox][contenteditable=true]`},
	}

	// Sender lives outside the compose region, in the account chrome.
	gmailSenderStrategies = []fieldStrategy{
		{selector: `[data-hovercard-id*=@]`, attrs: []string{"data-hovercard-id"}, requireAt: true},
		{selector: `[title*=@]`, attrs: []string{"title"}, requireAt: true},
		{selector: `[aria-label*=Account]`, attrs: []string{"aria-label"}, requireAt: true},
		{selector: `[data-email*=@]`, attrs: []string{"data-email"}, requireAt: true},
	}
)

type GmailExtractor struct{}

func NewGmailExtractor() *GmailExtractor { return &GmailExtractor{} }

func (e *GmailExtractor) Platform() types.Platform { return types.PlatformGmail }

func (e *GmailExtractor) Extract(region *dom.Node) *types.EmailDraft {
	if region == nil {
		return nil
	}

	recipient := firstValue(region, gmailRecipientStrategies)
	if recipient == "" {
		recipient = scanForEmail(region)
	}

	subject := firstValue(region, gmailSubjectStrategies)

	body := ""
	for _, s := range gmailBodyStrategies {
		if n := region.Query(s.selector); n != nil {
			body = strings.TrimSpace(n.FullText())
			break
		}
	}

	sender := firstValue(documentRoot(region), gmailSenderStrategies)

	draft := &types.EmailDraft{
		Body:             body,
		SenderAddress:    sender,
		RecipientAddress: recipient,
		Subject:          subject,
	}
	if emptyDraft(draft) {
		return nil
	}
	return draft
}
